package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/money"
)

const defaultHistoryLimit = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service debits and credits user wallets. Every mutation appends a ledger entry.
type Service interface {
	ApplyWalletDebit(ctx context.Context, tx *gorm.DB, input DebitInput) (decimal.Decimal, error)
	Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.WalletTransaction, error)
	GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error)
	SeedSignupBonus(ctx context.Context, userID string) (*SignupResult, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

// DebitInput describes a wallet spend against a booking.
type DebitInput struct {
	UserID          string
	BookingID       string
	RequestedAmount decimal.Decimal
	OriginalAmount  decimal.Decimal
}

// CreditInput describes a wallet top-up.
type CreditInput struct {
	UserID      string
	Amount      decimal.Decimal
	Type        enums.WalletTxnType
	ReferenceID string
	Description string
}

// SignupResult reports the wallet after registration seeding.
type SignupResult struct {
	Wallet  models.Wallet
	Created bool
}

type service struct {
	repo       Repository
	tx         txRunner
	maxShare   decimal.Decimal
	signupSeed decimal.Decimal
}

// NewService builds a wallet service.
func NewService(repo Repository, tx txRunner, cfg config.WalletConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.MaxBookingSharePercent.IsNegative() || cfg.MaxBookingSharePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("wallet booking share must be between 0 and 100")
	}
	if cfg.SignupBonus.IsNegative() {
		return nil, fmt.Errorf("signup bonus must not be negative")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		maxShare:   cfg.MaxBookingSharePercent,
		signupSeed: cfg.SignupBonus,
	}, nil
}

// ApplyWalletDebit spends at most MaxBookingSharePercent of the original amount
// and never more than the balance. A missing or empty wallet debits nothing.
// It must run inside the caller's booking transaction.
func (s *service) ApplyWalletDebit(ctx context.Context, tx *gorm.DB, input DebitInput) (decimal.Decimal, error) {
	if tx == nil {
		return decimal.Zero, errors.New("transaction required")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.RequestedAmount.IsPositive() {
		return decimal.Zero, nil
	}

	capped := money.Min(input.RequestedAmount, money.Share(money.NonNegative(input.OriginalAmount), s.maxShare))

	repo := s.repo.WithTx(tx)
	w, err := repo.FindByUserIDForUpdate(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	if !w.Balance.IsPositive() {
		return decimal.Zero, nil
	}
	if w.Status != enums.WalletStatusActive {
		return decimal.Zero, pkgerrors.Refuse(pkgerrors.ReasonWalletInactive, "wallet is not active")
	}

	debit := money.Floor(money.Min(capped, w.Balance))
	if !debit.IsPositive() {
		return decimal.Zero, nil
	}

	balance := w.Balance.Sub(debit)
	if err := repo.UpdateBalance(ctx, w.ID, balance); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet balance")
	}
	ref := input.BookingID
	entry := &models.WalletTransaction{
		ID:              uuid.New(),
		WalletID:        w.ID,
		Type:            enums.WalletTxnBookingPayment,
		Amount:          debit,
		Direction:       enums.WalletTxnDebit,
		ReferenceID:     &ref,
		Description:     "Booking " + input.BookingID,
		Status:          enums.WalletTxnSuccess,
		BalanceAfterTxn: balance,
	}
	if err := repo.InsertTransaction(ctx, entry); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert wallet transaction")
	}
	return debit, nil
}

// Credit adds funds, creating the wallet when the user has none yet.
func (s *service) Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid wallet transaction type")
	}

	repo := s.repo.WithTx(tx)
	w, err := repo.FindByUserIDForUpdate(ctx, input.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = newWallet(input.UserID, decimal.Zero)
		err = repo.Create(ctx, w)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}

	amount := money.Round(input.Amount)
	balance := w.Balance.Add(amount)
	if err := repo.UpdateBalance(ctx, w.ID, balance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet balance")
	}
	entry := &models.WalletTransaction{
		ID:              uuid.New(),
		WalletID:        w.ID,
		Type:            input.Type,
		Amount:          amount,
		Direction:       enums.WalletTxnCredit,
		Description:     input.Description,
		Status:          enums.WalletTxnSuccess,
		BalanceAfterTxn: balance,
	}
	if input.ReferenceID != "" {
		ref := input.ReferenceID
		entry.ReferenceID = &ref
	}
	if err := repo.InsertTransaction(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert wallet transaction")
	}
	return entry, nil
}

// GetOrCreate returns the user's wallet, creating an empty active one on first use.
func (s *service) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	w, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	w = newWallet(userID, decimal.Zero)
	if err := s.repo.Create(ctx, w); err != nil {
		if db.IsUniqueViolation(err, "") {
			return s.repo.FindByUserID(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet")
	}
	return w, nil
}

// SeedSignupBonus creates the wallet with the configured bonus. Users that
// already own a wallet are left untouched.
func (s *service) SeedSignupBonus(ctx context.Context, userID string) (*SignupResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	var result SignupResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByUserID(ctx, userID)
		if err == nil {
			result = SignupResult{Wallet: *existing}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		w := newWallet(userID, money.Round(s.signupSeed))
		if err := repo.Create(ctx, w); err != nil {
			return err
		}
		if w.Balance.IsPositive() {
			entry := &models.WalletTransaction{
				ID:              uuid.New(),
				WalletID:        w.ID,
				Type:            enums.WalletTxnSignupBonus,
				Amount:          w.Balance,
				Direction:       enums.WalletTxnCredit,
				Description:     "Signup bonus",
				Status:          enums.WalletTxnSuccess,
				BalanceAfterTxn: w.Balance,
			}
			if err := repo.InsertTransaction(ctx, entry); err != nil {
				return err
			}
		}
		result = SignupResult{Wallet: *w, Created: true}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			existing, findErr := s.repo.FindByUserID(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load wallet")
			}
			return &SignupResult{Wallet: *existing}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed signup bonus")
	}
	return &result, nil
}

func (s *service) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.repo.ListTransactions(ctx, walletID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return rows, nil
}

func newWallet(userID string, balance decimal.Decimal) *models.Wallet {
	return &models.Wallet{
		ID:      uuid.New(),
		UserID:  userID,
		Balance: balance,
		Status:  enums.WalletStatusActive,
	}
}
