package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// LedgerService runs the double-entry practice sandbox. Accounts come into
// existence the first time an entry names them; the declared type sticks
// and later postings to the same name ignore any restated type.
type LedgerService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedgerService constructs the service.
func NewLedgerService(st store.Store, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LedgerService{store: st, validator: validate, logger: logger, now: time.Now}
	svc.validator.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		return models.AccountType(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// Ledger returns the sandbox with per-account balances and column totals.
func (s *LedgerService) Ledger(ctx context.Context) (*dto.LedgerResponse, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	return buildLedgerResponse(state), nil
}

// Post validates and records one debit/credit pair, then returns the
// updated sandbox.
func (s *LedgerService) Post(ctx context.Context, req dto.LedgerEntryRequest) (*dto.LedgerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ledger entry")
	}

	debitName := strings.TrimSpace(req.Debit.Account)
	creditName := strings.TrimSpace(req.Credit.Account)
	if debitName == "" || creditName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "account names cannot be blank")
	}
	if strings.EqualFold(debitName, creditName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "debit and credit must hit different accounts")
	}

	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}

	debitName = ensureAccount(&state, debitName, normalizeType(req.Debit.Type))
	creditName = ensureAccount(&state, creditName, normalizeType(req.Credit.Type))

	date := req.Date
	if date == "" {
		date = s.now().In(time.Local).Format("2006-01-02")
	}

	state.Entries = append(state.Entries, models.LedgerEntry{
		ID:          uuid.NewString(),
		Date:        date,
		Description: req.Description,
		Debit:       debitName,
		Credit:      creditName,
		AmountCents: req.AmountCents,
		PostedAt:    s.now().UTC(),
	})

	if err := s.store.Set(ctx, store.KeyLedger, state); err != nil {
		return nil, err
	}
	return buildLedgerResponse(state), nil
}

// Reset wipes the sandbox.
func (s *LedgerService) Reset(ctx context.Context) error {
	return s.store.Remove(ctx, store.KeyLedger)
}

func (s *LedgerService) loadState(ctx context.Context) (models.LedgerState, error) {
	var state models.LedgerState
	if err := s.store.Get(ctx, store.KeyLedger, &state); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return models.LedgerState{}, nil
		}
		return models.LedgerState{}, err
	}
	return state, nil
}

// ensureAccount finds or creates the named account, returning the stored
// casing so entries always reference one canonical name.
func ensureAccount(state *models.LedgerState, name string, accountType models.AccountType) string {
	for _, account := range state.Accounts {
		if strings.EqualFold(account.Name, name) {
			return account.Name
		}
	}
	state.Accounts = append(state.Accounts, models.LedgerAccount{Name: name, Type: accountType})
	return name
}

func normalizeType(t models.AccountType) models.AccountType {
	return models.AccountType(strings.ToLower(string(t)))
}

// buildLedgerResponse derives per-account column totals, the balance on
// each account's normal side, and the trial-balance check.
func buildLedgerResponse(state models.LedgerState) *dto.LedgerResponse {
	type columns struct {
		debit  int64
		credit int64
	}
	totals := make(map[string]*columns, len(state.Accounts))
	for _, account := range state.Accounts {
		totals[account.Name] = &columns{}
	}

	var totalDebits, totalCredits int64
	for _, entry := range state.Entries {
		if cols, ok := totals[entry.Debit]; ok {
			cols.debit += entry.AmountCents
		}
		if cols, ok := totals[entry.Credit]; ok {
			cols.credit += entry.AmountCents
		}
		totalDebits += entry.AmountCents
		totalCredits += entry.AmountCents
	}

	accounts := make([]dto.AccountBalance, 0, len(state.Accounts))
	for _, account := range state.Accounts {
		cols := totals[account.Name]
		balance := dto.AccountBalance{
			Name:        account.Name,
			Type:        account.Type,
			DebitCents:  cols.debit,
			CreditCents: cols.credit,
		}
		if account.Type.DebitNormal() {
			balance.BalanceCents = cols.debit - cols.credit
		} else {
			balance.BalanceCents = cols.credit - cols.debit
		}
		accounts = append(accounts, balance)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	entries := state.Entries
	if entries == nil {
		entries = []models.LedgerEntry{}
	}

	return &dto.LedgerResponse{
		Accounts:     accounts,
		Entries:      entries,
		TotalDebits:  totalDebits,
		TotalCredits: totalCredits,
		Balanced:     totalDebits == totalCredits,
	}
}
