package models

import "time"

// AccountType classifies a ledger account by its normal balance side.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// DebitNormal reports whether the account type grows on the debit side.
func (t AccountType) DebitNormal() bool {
	return t == AccountAsset || t == AccountExpense
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense:
		return true
	}
	return false
}

// LedgerAccount is a named T-account in the practice ledger.
type LedgerAccount struct {
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// LedgerEntry is one double-entry posting. Amounts are cents to keep the
// books exact.
type LedgerEntry struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Debit       string    `json:"debit"`
	Credit      string    `json:"credit"`
	AmountCents int64     `json:"amount_cents"`
	PostedAt    time.Time `json:"posted_at"`
}

// LedgerState is the whole practice ledger as persisted in the store.
type LedgerState struct {
	Accounts []LedgerAccount `json:"accounts"`
	Entries  []LedgerEntry   `json:"entries"`
}
