package dto

import "github.com/danielpj17/junior-ledger/internal/models"

// AccountRef names one side of a posting; the type matters only the first
// time an account is seen.
type AccountRef struct {
	Account string             `json:"account" validate:"required"`
	Type    models.AccountType `json:"type" validate:"required,accounttype"`
}

// LedgerEntryRequest posts one double-entry transaction to the practice
// ledger. Validation runs in the service, not at bind time.
type LedgerEntryRequest struct {
	Date        string     `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string     `json:"description" validate:"required"`
	Debit       AccountRef `json:"debit" validate:"required"`
	Credit      AccountRef `json:"credit" validate:"required"`
	AmountCents int64      `json:"amountCents" validate:"required,gt=0"`
}

// LedgerResponse is the whole practice ledger with derived balances.
type LedgerResponse struct {
	Accounts     []AccountBalance     `json:"accounts"`
	Entries      []models.LedgerEntry `json:"entries"`
	TotalDebits  int64                `json:"totalDebits"`
	TotalCredits int64                `json:"totalCredits"`
	Balanced     bool                 `json:"balanced"`
}

// AccountBalance is one T-account with its column totals and the balance on
// its normal side.
type AccountBalance struct {
	Name         string             `json:"name"`
	Type         models.AccountType `json:"type"`
	DebitCents   int64              `json:"debitCents"`
	CreditCents  int64              `json:"creditCents"`
	BalanceCents int64              `json:"balanceCents"`
}
