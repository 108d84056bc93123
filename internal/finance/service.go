package finance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/metrics"
	"github.com/angelmondragon/staybook-backend/pkg/money"
	"github.com/angelmondragon/staybook-backend/pkg/outbox"
	"github.com/angelmondragon/staybook-backend/pkg/outbox/payloads"
)

const defaultPayoutComment = "User Requested Payment"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service aggregates partner revenue and processes payout requests.
type Service interface {
	GetPartnerFinanceSummary(ctx context.Context, partnerID string) (*Summary, error)
	RequestPayout(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*PayoutResult, error)
	ListTransactions(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error)
	UpdateBankDetails(ctx context.Context, in BankDetails) (*models.PartnerFinance, error)
	MarkNotificationViewed(ctx context.Context, partnerID string) error
	SettlePayout(ctx context.Context, partnerID, transactionID, status string) (*models.PartnerTransaction, error)
}

// Summary is the partner's revenue and payout position. Only COMPLETED
// bookings count as recognized revenue.
type Summary struct {
	PartnerID            string           `json:"partner_id"`
	TotalRevenue         decimal.Decimal  `json:"total_revenue"`
	ProvisionalRevenue   decimal.Decimal  `json:"provisional_revenue"`
	CommissionPercentage decimal.Decimal  `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal  `json:"commission_amount"`
	NetRevenue           decimal.Decimal  `json:"net_revenue"`
	PendingPayout        decimal.Decimal  `json:"pending_payout"`
	PaidPayout           decimal.Decimal  `json:"paid_payout"`
	TotalBookings        int              `json:"total_bookings"`
	CompletedBookings    int              `json:"completed_bookings"`
	CancelledBookings    int              `json:"cancelled_bookings"`
	ProvisionalBookings  int              `json:"provisional_bookings"`
	Bank                 BankDetails      `json:"bank_details"`
	LastPayoutDate       *time.Time       `json:"last_payout_date,omitempty"`
	NotificationViewed   bool             `json:"notification_viewed"`
	Bookings             []BookingRevenue `json:"bookings"`
}

// BookingRevenue is one booking's share of the partner's revenue.
type BookingRevenue struct {
	BookingID        string              `json:"booking_id"`
	HotelID          string              `json:"hotel_id"`
	HotelName        string              `json:"hotel_name"`
	GuestName        string              `json:"guest_name"`
	BookingStatus    enums.BookingStatus `json:"booking_status"`
	PaymentStatus    enums.PaymentStatus `json:"payment_status"`
	CheckInDate      time.Time           `json:"check_in_date"`
	CheckOutDate     *time.Time          `json:"check_out_date,omitempty"`
	OriginalAmount   decimal.Decimal     `json:"original_amount"`
	CommissionAmount decimal.Decimal     `json:"commission_amount"`
	NetRevenue       decimal.Decimal     `json:"net_revenue"`
}

// BankDetails are the payout destination of a partner.
type BankDetails struct {
	PartnerID         string `json:"partner_id"`
	AccountHolderName string `json:"account_holder_name"`
	BankName          string `json:"bank_name"`
	AccountNumber     string `json:"account_number"`
	IFSCSwift         string `json:"ifsc_swift"`
	AccountType       string `json:"account_type"`
	PANTaxID          string `json:"pan_tax_id"`
	PayoutType        string `json:"payout_type"`
}

// PayoutResult describes an accepted payout request.
type PayoutResult struct {
	TransactionID    string                         `json:"transaction_id"`
	Status           enums.PartnerTransactionStatus `json:"status"`
	WithdrawalAmount decimal.Decimal                `json:"withdrawal_amount"`
	BalanceAmount    decimal.Decimal                `json:"balance_amount"`
	NetRevenue       decimal.Decimal                `json:"net_revenue"`
	PaidPayout       decimal.Decimal                `json:"paid_payout"`
}

type service struct {
	repo              Repository
	tx                txRunner
	outbox            outboxPublisher
	ledger            *metrics.LedgerMetrics
	minWithdrawal     decimal.Decimal
	fallbackPercent   decimal.Decimal
	fallbackOnSummary bool
	now               func() time.Time
}

// NewService builds the partner finance engine.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, cfg config.FinanceConfig, ledger *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("finance repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if cfg.MinWithdrawal.IsNegative() {
		return nil, fmt.Errorf("minimum withdrawal must not be negative")
	}
	if cfg.CommissionFallbackPercent.IsNegative() || cfg.CommissionFallbackPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("commission fallback must be between 0 and 100")
	}
	return &service{
		repo:              repo,
		tx:                tx,
		outbox:            outbox,
		ledger:            ledger,
		minWithdrawal:     cfg.MinWithdrawal,
		fallbackPercent:   cfg.CommissionFallbackPercent,
		fallbackOnSummary: cfg.ApplyFallbackOnSummary,
		now:               time.Now,
	}, nil
}

func (s *service) GetPartnerFinanceSummary(ctx context.Context, partnerID string) (*Summary, error) {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner_id is required")
	}
	row, err := s.repo.FindFinance(ctx, partnerID)
	if err != nil {
		return nil, mapPartnerError(err)
	}
	bookings, err := s.repo.ListPartnerBookings(ctx, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner bookings")
	}

	pct := s.commissionPercent(row.CommissionPercentage, s.fallbackOnSummary)
	summary := &Summary{
		PartnerID:            partnerID,
		TotalRevenue:         decimal.Zero,
		ProvisionalRevenue:   decimal.Zero,
		CommissionPercentage: pct,
		PaidPayout:           row.PaidPayout,
		TotalBookings:        len(bookings),
		Bank:                 bankDetailsOf(row),
		LastPayoutDate:       row.LastPayoutDate,
		NotificationViewed:   row.NotificationViewed,
		Bookings:             make([]BookingRevenue, 0, len(bookings)),
	}
	for _, b := range bookings {
		switch b.BookingStatus {
		case enums.BookingStatusCompleted:
			summary.CompletedBookings++
			summary.TotalRevenue = summary.TotalRevenue.Add(b.OriginalAmount)
		case enums.BookingStatusCancelled:
			summary.CancelledBookings++
		default:
			summary.ProvisionalBookings++
			summary.ProvisionalRevenue = summary.ProvisionalRevenue.Add(b.OriginalAmount)
		}
		commission := money.Percent(b.OriginalAmount, pct)
		summary.Bookings = append(summary.Bookings, BookingRevenue{
			BookingID:        b.ID,
			HotelID:          b.HotelID,
			HotelName:        b.HotelName,
			GuestName:        b.GuestName,
			BookingStatus:    b.BookingStatus,
			PaymentStatus:    b.PaymentStatus,
			CheckInDate:      b.CheckInDate,
			CheckOutDate:     b.CheckOutDate,
			OriginalAmount:   b.OriginalAmount,
			CommissionAmount: commission,
			NetRevenue:       money.Round(b.OriginalAmount.Sub(commission)),
		})
	}
	summary.TotalRevenue = money.Round(summary.TotalRevenue)
	summary.ProvisionalRevenue = money.Round(summary.ProvisionalRevenue)
	summary.CommissionAmount = money.Percent(summary.TotalRevenue, pct)
	summary.NetRevenue = money.Round(summary.TotalRevenue.Sub(summary.CommissionAmount))
	summary.PendingPayout = money.NonNegative(summary.NetRevenue.Sub(row.PaidPayout))
	return summary, nil
}

// RequestPayout withdraws from the partner's unpaid net revenue. The finance
// row stays locked from the first read until the transaction row is written.
func (s *service) RequestPayout(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*PayoutResult, error) {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner_id is required")
	}
	amount = money.Round(amount)
	if amount.LessThan(s.minWithdrawal) {
		s.ledger.IncPayout("rejected")
		return nil, pkgerrors.Invalid(pkgerrors.ReasonBelowMinimum, fmt.Sprintf("minimum withdrawal is %s", s.minWithdrawal.StringFixed(2)))
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		comment = defaultPayoutComment
	}

	var result *PayoutResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindFinanceForUpdate(ctx, partnerID)
		if err != nil {
			return mapPartnerError(err)
		}
		if err := s.reverseFailedPayouts(ctx, repo, row); err != nil {
			return err
		}

		recognized, err := repo.RecognizedAmounts(ctx, partnerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum recognized revenue")
		}
		revenue := money.Round(money.Sum(recognized...))
		commission := money.Percent(revenue, s.commissionPercent(row.CommissionPercentage, true))
		net := money.Round(revenue.Sub(commission))

		committedRows, err := repo.CommittedWithdrawals(ctx, partnerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum committed withdrawals")
		}
		committed := money.Sum(committedRows...)
		available := money.NonNegative(net.Sub(committed))
		if amount.GreaterThan(available) {
			return pkgerrors.Refuse(pkgerrors.ReasonExceedsAvailable,
				fmt.Sprintf("requested amount exceeds available payout (%s)", available.StringFixed(2)))
		}

		now := s.now().UTC()
		balance := money.NonNegative(available.Sub(amount))
		paid := committed.Add(amount)
		if err := repo.UpdateFinance(ctx, partnerID, map[string]any{
			"total_revenue":    revenue,
			"net_revenue":      net,
			"pending_payout":   balance,
			"paid_payout":      paid,
			"last_payout_date": now,
			"updated_at":       now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update partner finance")
		}

		txn := &models.PartnerTransaction{
			ID:               transactionID(partnerID, now),
			PartnerID:        partnerID,
			TransactionDate:  now,
			TotalAmount:      net,
			WithdrawalAmount: amount,
			BalanceAmount:    balance,
			Status:           enums.PartnerTxnRequested,
			TransactionType:  enums.PartnerTransactionTypePayout,
			Comments:         comment,
		}
		if err := repo.InsertTransaction(ctx, txn); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a payout was just requested; retry shortly")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert partner transaction")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutRequested,
			AggregateType: enums.AggregatePartnerPayout,
			AggregateID:   txn.ID,
			Data: payloads.PayoutRequestedEvent{
				TransactionID:    txn.ID,
				PartnerID:        partnerID,
				WithdrawalAmount: amount,
				BalanceAmount:    balance,
				NetRevenue:       net,
			},
		}); err != nil {
			return err
		}

		result = &PayoutResult{
			TransactionID:    txn.ID,
			Status:           txn.Status,
			WithdrawalAmount: amount,
			BalanceAmount:    balance,
			NetRevenue:       net,
			PaidPayout:       paid,
		}
		return nil
	})
	if err != nil {
		if pkgerrors.ReasonOf(err) == pkgerrors.ReasonExceedsAvailable {
			s.ledger.IncPayout("rejected")
		}
		return nil, err
	}
	s.ledger.IncPayout("requested")
	return result, nil
}

// ListTransactions returns payouts newest first, crediting back any failed
// payout before reading.
func (s *service) ListTransactions(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error) {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner_id is required")
	}
	var rows []models.PartnerTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindFinanceForUpdate(ctx, partnerID)
		switch {
		case err == nil:
			if err := s.reverseFailedPayouts(ctx, repo, row); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock partner finance")
		}
		rows, err = repo.ListTransactions(ctx, partnerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner transactions")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateBankDetails creates or updates the partner's payout destination.
func (s *service) UpdateBankDetails(ctx context.Context, in BankDetails) (*models.PartnerFinance, error) {
	in = trimBankDetails(in)
	if in.PartnerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner_id is required")
	}
	payoutType, err := enums.ParsePayoutType(in.PayoutType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout_type must be one of Daily, Weekly, Fornight, Monthly, Quarterly")
	}

	var stored *models.PartnerFinance
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		taken, err := repo.BankDetailsTaken(ctx, in.PartnerID, in.AccountNumber, in.PANTaxID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check bank details")
		}
		if taken {
			return duplicateBankDetails()
		}

		row, err := repo.FindFinanceForUpdate(ctx, in.PartnerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner finance")
		}
		now := s.now().UTC()
		if row == nil {
			row = &models.PartnerFinance{
				PartnerID:            in.PartnerID,
				CommissionPercentage: decimal.Zero,
				TotalRevenue:         decimal.Zero,
				NetRevenue:           decimal.Zero,
				PendingPayout:        decimal.Zero,
				PaidPayout:           decimal.Zero,
				CreatedAt:            now,
			}
			applyBankDetails(row, in, payoutType)
			row.UpdatedAt = now
			if err := repo.CreateFinance(ctx, row); err != nil {
				return mapBankWriteError(err)
			}
			stored = row
			return nil
		}

		applyBankDetails(row, in, payoutType)
		if err := repo.UpdateFinance(ctx, in.PartnerID, map[string]any{
			"account_holder_name": row.AccountHolderName,
			"bank_name":           row.BankName,
			"account_number":      row.AccountNumber,
			"ifsc_swift":          row.IFSCSwift,
			"account_type":        row.AccountType,
			"pan_tax_id":          row.PANTaxID,
			"payout_type":         row.PayoutType,
			"updated_at":          now,
		}); err != nil {
			return mapBankWriteError(err)
		}
		row.UpdatedAt = now
		stored = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *service) MarkNotificationViewed(ctx context.Context, partnerID string) error {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "partner_id is required")
	}
	if _, err := s.repo.FindFinance(ctx, partnerID); err != nil {
		return mapPartnerError(err)
	}
	if err := s.repo.UpdateFinance(ctx, partnerID, map[string]any{"notification_viewed": true}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification viewed")
	}
	return nil
}

// SettlePayout moves a Requested payout to Success or Failed. A failed payout
// is credited back to the partner in the same transaction.
func (s *service) SettlePayout(ctx context.Context, partnerID, transactionID, status string) (*models.PartnerTransaction, error) {
	partnerID = strings.TrimSpace(partnerID)
	transactionID = strings.TrimSpace(transactionID)
	if partnerID == "" || transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner_id and transaction_id are required")
	}
	next, err := enums.ParsePartnerTransactionStatus(status)
	if err != nil || next == enums.PartnerTxnRequested {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be Success or Failed")
	}

	var settled *models.PartnerTransaction
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindFinanceForUpdate(ctx, partnerID)
		if err != nil {
			return mapPartnerError(err)
		}
		txn, err := repo.FindTransaction(ctx, partnerID, transactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner transaction")
		}
		if txn.Status != enums.PartnerTxnRequested {
			return pkgerrors.Refuse(pkgerrors.ReasonActionNotAllowed,
				fmt.Sprintf("transaction is already %s", txn.Status))
		}
		if err := repo.UpdateTransactionStatus(ctx, txn.ID, string(next)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update partner transaction")
		}
		withdrawal := txn.WithdrawalAmount
		txn.Status = next
		if next == enums.PartnerTxnFailed {
			if err := s.reverseFailedPayouts(ctx, repo, row); err != nil {
				return err
			}
			txn.WithdrawalAmount = decimal.Zero
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutSettled,
			AggregateType: enums.AggregatePartnerPayout,
			AggregateID:   txn.ID,
			Data: payloads.PayoutSettledEvent{
				TransactionID:    txn.ID,
				PartnerID:        partnerID,
				Status:           next,
				WithdrawalAmount: withdrawal,
			},
		}); err != nil {
			return err
		}
		settled = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ledger.IncPayout(strings.ToLower(string(next)))
	return settled, nil
}

// reverseFailedPayouts credits every failed, not yet reversed withdrawal back
// to pending and zeroes it on the transaction row. row must be locked.
func (s *service) reverseFailedPayouts(ctx context.Context, repo Repository, row *models.PartnerFinance) error {
	failures, err := repo.ListUnreversedFailures(ctx, row.PartnerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list failed payouts")
	}
	if len(failures) == 0 {
		return nil
	}
	pending, paid := row.PendingPayout, row.PaidPayout
	for _, f := range failures {
		pending = pending.Add(f.WithdrawalAmount)
		paid = money.NonNegative(paid.Sub(f.WithdrawalAmount))
		if err := repo.ZeroWithdrawal(ctx, f.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reverse failed payout")
		}
	}
	if err := repo.UpdateFinance(ctx, row.PartnerID, map[string]any{
		"pending_payout": pending,
		"paid_payout":    paid,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reverse failed payout")
	}
	row.PendingPayout = pending
	row.PaidPayout = paid
	s.ledger.IncPayout("reversed")
	return nil
}

func (s *service) commissionPercent(stored decimal.Decimal, useFallback bool) decimal.Decimal {
	if stored.IsPositive() {
		return stored
	}
	if useFallback {
		return s.fallbackPercent
	}
	return decimal.Zero
}

// transactionID is unique per partner and millisecond; the partner row lock
// serializes requests of one partner.
func transactionID(partnerID string, now time.Time) string {
	return "TX_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + partnerID
}

func bankDetailsOf(row *models.PartnerFinance) BankDetails {
	details := BankDetails{
		PartnerID:         row.PartnerID,
		AccountHolderName: row.AccountHolderName,
		BankName:          row.BankName,
		IFSCSwift:         row.IFSCSwift,
		AccountType:       row.AccountType,
		PayoutType:        string(row.PayoutType),
	}
	if row.AccountNumber != nil {
		details.AccountNumber = *row.AccountNumber
	}
	if row.PANTaxID != nil {
		details.PANTaxID = *row.PANTaxID
	}
	return details
}

func trimBankDetails(in BankDetails) BankDetails {
	in.PartnerID = strings.TrimSpace(in.PartnerID)
	in.AccountHolderName = strings.TrimSpace(in.AccountHolderName)
	in.BankName = strings.TrimSpace(in.BankName)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.IFSCSwift = strings.ToUpper(strings.TrimSpace(in.IFSCSwift))
	in.AccountType = strings.TrimSpace(in.AccountType)
	in.PANTaxID = strings.ToUpper(strings.TrimSpace(in.PANTaxID))
	return in
}

func applyBankDetails(row *models.PartnerFinance, in BankDetails, payoutType enums.PayoutType) {
	row.AccountHolderName = in.AccountHolderName
	row.BankName = in.BankName
	row.AccountNumber = optional(in.AccountNumber)
	row.IFSCSwift = in.IFSCSwift
	row.AccountType = in.AccountType
	row.PANTaxID = optional(in.PANTaxID)
	row.PayoutType = payoutType
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func mapPartnerError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner finance")
}

func mapBankWriteError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return duplicateBankDetails()
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save bank details")
}

func duplicateBankDetails() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "account number or PAN is already registered to another partner")
}
