package rewards

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/internal/coupons"
	"github.com/angelmondragon/staybook-backend/internal/wallet"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
)

const (
	referralPrefix     = "HB-"
	referralSalt       = "|REFERRAL_SALT"
	transactionsLimit  = 50
	refundHistoryLimit = 50
)

// Service assembles a user's wallet, coupon and referral position.
type Service interface {
	GetSummary(ctx context.Context, userID string) (*Summary, error)
	ValidateCoupon(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*coupons.Validation, error)
}

// Summary is everything the rewards page shows.
type Summary struct {
	UserID       string                  `json:"user_id"`
	WalletID     string                  `json:"wallet_id"`
	Balance      decimal.Decimal         `json:"balance"`
	Transactions []wallet.TransactionDTO `json:"transactions"`
	Refunds      []Refund                `json:"refunds"`
	Coupons      []coupons.CouponDTO     `json:"coupons"`
	ReferralCode string                  `json:"referral_code"`
	Referrals    ReferralStats           `json:"referrals"`
}

// Refund is one refunded payment attempt.
type Refund struct {
	PaymentRecordID string          `json:"payment_record_id"`
	BookingID       string          `json:"booking_id"`
	Amount          decimal.Decimal `json:"amount"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ReferralStats struct {
	Count    int             `json:"count"`
	Earnings decimal.Decimal `json:"earnings"`
}

type service struct {
	repo    Repository
	wallets wallet.Service
	coupons coupons.Service
	now     func() time.Time
}

func NewService(repo Repository, wallets wallet.Service, couponSvc coupons.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rewards repository required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	return &service{repo: repo, wallets: wallets, coupons: couponSvc, now: time.Now}, nil
}

func (s *service) GetSummary(ctx context.Context, userID string) (*Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}
	w, err := s.wallets.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.wallets.ListTransactions(ctx, w.ID, transactionsLimit)
	if err != nil {
		return nil, err
	}
	refundRows, err := s.repo.ListRefunds(ctx, userID, refundHistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list refunds")
	}
	eligible, err := s.coupons.ListActiveWithUsage(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.ReferralStats(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referral stats")
	}

	refunds := make([]Refund, 0, len(refundRows))
	for _, row := range refundRows {
		refunds = append(refunds, Refund{
			PaymentRecordID: row.ID.String(),
			BookingID:       row.BookingID,
			Amount:          row.Amount,
			RefundAmount:    row.RefundAmount,
			CreatedAt:       row.CreatedAt,
		})
	}
	return &Summary{
		UserID:       userID,
		WalletID:     w.ID.String(),
		Balance:      w.Balance,
		Transactions: wallet.ToTransactionDTOs(txns),
		Refunds:      refunds,
		Coupons:      coupons.ToCouponDTOs(eligible),
		ReferralCode: ReferralCode(userID),
		Referrals:    stats,
	}, nil
}

func (s *service) ValidateCoupon(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*coupons.Validation, error) {
	return s.coupons.ValidateCoupon(ctx, userID, code, baseAmount)
}

// ReferralCode derives a stable, shareable code from the user id.
func ReferralCode(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID + referralSalt))
	sum := h.Sum32()
	base36 := strings.ToUpper(strconv.FormatUint(uint64(sum), 36))
	if len(base36) > 5 {
		base36 = base36[:5]
	}
	return fmt.Sprintf("%s%s%03d", referralPrefix, base36, sum%1000)
}
