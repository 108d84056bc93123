package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/staybook-backend/internal/finance"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
)

type stubFinanceService struct {
	summary      func(ctx context.Context, partnerID string) (*finance.Summary, error)
	payout       func(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*finance.PayoutResult, error)
	transactions func(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error)
	bank         func(ctx context.Context, in finance.BankDetails) (*models.PartnerFinance, error)
	viewed       func(ctx context.Context, partnerID string) error
	settle       func(ctx context.Context, partnerID, transactionID, status string) (*models.PartnerTransaction, error)
}

func (s stubFinanceService) GetPartnerFinanceSummary(ctx context.Context, partnerID string) (*finance.Summary, error) {
	return s.summary(ctx, partnerID)
}

func (s stubFinanceService) RequestPayout(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*finance.PayoutResult, error) {
	return s.payout(ctx, partnerID, amount, comment)
}

func (s stubFinanceService) ListTransactions(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error) {
	return s.transactions(ctx, partnerID)
}

func (s stubFinanceService) UpdateBankDetails(ctx context.Context, in finance.BankDetails) (*models.PartnerFinance, error) {
	return s.bank(ctx, in)
}

func (s stubFinanceService) MarkNotificationViewed(ctx context.Context, partnerID string) error {
	return s.viewed(ctx, partnerID)
}

func (s stubFinanceService) SettlePayout(ctx context.Context, partnerID, transactionID, status string) (*models.PartnerTransaction, error) {
	return s.settle(ctx, partnerID, transactionID, status)
}

func TestPartnerBookingStatusParsesTarget(t *testing.T) {
	svc := stubBookingService{transition: func(ctx context.Context, partnerID, id string, to enums.BookingStatus) (*models.Booking, error) {
		assert.Equal(t, "P1", partnerID)
		assert.Equal(t, "BKG123456", id)
		assert.Equal(t, enums.BookingStatusCompleted, to)
		b := sampleBooking()
		b.BookingStatus = to
		return &b, nil
	}}
	req := newRequest(http.MethodPost, "/api/v1/partners/P1/bookings/BKG123456/status", `{"status":"completed"}`,
		map[string]string{"partnerId": "P1", "bookingId": "BKG123456"})
	resp := serve(PartnerBookingStatus(svc, nil), req)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestPartnerBookingStatusRejectsUnknownStatus(t *testing.T) {
	req := newRequest(http.MethodPost, "/api/v1/partners/P1/bookings/BKG123456/status", `{"status":"ARCHIVED"}`,
		map[string]string{"partnerId": "P1", "bookingId": "BKG123456"})
	resp := serve(PartnerBookingStatus(stubBookingService{}, nil), req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPartnerBookingsList(t *testing.T) {
	req := newRequest(http.MethodGet, "/api/v1/partners/P1/bookings", "", map[string]string{"partnerId": "P1"})
	resp := serve(PartnerBookings(stubBookingService{}, nil), req)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestPartnerRequestPayoutCreated(t *testing.T) {
	svc := stubFinanceService{payout: func(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*finance.PayoutResult, error) {
		assert.True(t, amount.Equal(decimal.NewFromInt(6000)))
		assert.Equal(t, "March payout", comment)
		return &finance.PayoutResult{
			TransactionID:    "TX_1761000000000",
			Status:           enums.PartnerTxnRequested,
			WithdrawalAmount: amount,
			BalanceAmount:    decimal.NewFromInt(2500),
		}, nil
	}}
	req := newRequest(http.MethodPost, "/api/v1/partners/P1/payouts", `{"amount":"6000","comment":"March payout"}`,
		map[string]string{"partnerId": "P1"})
	resp := serve(PartnerRequestPayout(svc, nil), req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var out finance.PayoutResult
	decodeData(t, resp, &out)
	assert.Equal(t, "TX_1761000000000", out.TransactionID)
	assert.True(t, out.BalanceAmount.Equal(decimal.NewFromInt(2500)))
}

func TestPartnerRequestPayoutRejectsNonPositiveAmount(t *testing.T) {
	svc := stubFinanceService{payout: func(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*finance.PayoutResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	req := newRequest(http.MethodPost, "/api/v1/partners/P1/payouts", `{"amount":0}`, map[string]string{"partnerId": "P1"})
	resp := serve(PartnerRequestPayout(svc, nil), req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	details, ok := decodeError(t, resp).Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "must be greater than zero", details["amount"])
}

func TestPartnerRequestPayoutExceedsAvailable(t *testing.T) {
	svc := stubFinanceService{payout: func(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*finance.PayoutResult, error) {
		return nil, pkgerrors.Refuse(pkgerrors.ReasonExceedsAvailable, "withdrawal exceeds available balance")
	}}
	req := newRequest(http.MethodPost, "/api/v1/partners/P1/payouts", `{"amount":99999}`, map[string]string{"partnerId": "P1"})
	resp := serve(PartnerRequestPayout(svc, testLogger()), req)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	details, ok := decodeError(t, resp).Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "EXCEEDS_AVAILABLE", details["reason"])
}

func TestPartnerFinanceSummary(t *testing.T) {
	svc := stubFinanceService{summary: func(ctx context.Context, partnerID string) (*finance.Summary, error) {
		return &finance.Summary{PartnerID: partnerID, NetRevenue: decimal.NewFromInt(8500)}, nil
	}}
	req := newRequest(http.MethodGet, "/api/v1/partners/P1/finance", "", map[string]string{"partnerId": "P1"})
	resp := serve(PartnerFinanceSummary(svc, nil), req)

	require.Equal(t, http.StatusOK, resp.Code)
	var out finance.Summary
	decodeData(t, resp, &out)
	assert.Equal(t, "P1", out.PartnerID)
	assert.True(t, out.NetRevenue.Equal(decimal.NewFromInt(8500)))
}

func TestPartnerBankDetailsBindsPathPartner(t *testing.T) {
	svc := stubFinanceService{bank: func(ctx context.Context, in finance.BankDetails) (*models.PartnerFinance, error) {
		assert.Equal(t, "P1", in.PartnerID)
		account := in.AccountNumber
		return &models.PartnerFinance{PartnerID: in.PartnerID, AccountNumber: &account, PayoutType: enums.PayoutType(in.PayoutType)}, nil
	}}
	body := `{"account_holder_name":"Asha","bank_name":"SBI","account_number":"001122","ifsc_swift":"SBIN0001","pan_tax_id":"ABCDE1234F","payout_type":"Weekly"}`
	req := newRequest(http.MethodPut, "/api/v1/partners/P1/finance/bank-details", body, map[string]string{"partnerId": "P1"})
	resp := serve(PartnerBankDetails(svc, nil), req)

	require.Equal(t, http.StatusOK, resp.Code)
	var out finance.BankDetails
	decodeData(t, resp, &out)
	assert.Equal(t, "001122", out.AccountNumber)
}

func TestPartnerBankDetailsConflict(t *testing.T) {
	svc := stubFinanceService{bank: func(ctx context.Context, in finance.BankDetails) (*models.PartnerFinance, error) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "bank details already registered")
	}}
	body := `{"account_holder_name":"Asha","bank_name":"SBI","account_number":"001122","ifsc_swift":"SBIN0001","pan_tax_id":"ABCDE1234F","payout_type":"Weekly"}`
	req := newRequest(http.MethodPut, "/api/v1/partners/P1/finance/bank-details", body, map[string]string{"partnerId": "P1"})
	resp := serve(PartnerBankDetails(svc, nil), req)
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestPartnerNotificationViewed(t *testing.T) {
	called := false
	svc := stubFinanceService{viewed: func(ctx context.Context, partnerID string) error {
		called = true
		return nil
	}}
	req := newRequest(http.MethodPost, "/api/v1/partners/P1/finance/notification-viewed", "", map[string]string{"partnerId": "P1"})
	resp := serve(PartnerNotificationViewed(svc, nil), req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, called)
}

func TestPartnerPayoutsList(t *testing.T) {
	svc := stubFinanceService{transactions: func(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error) {
		return []models.PartnerTransaction{{
			ID:               "TX_2",
			PartnerID:        partnerID,
			TransactionDate:  time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC),
			WithdrawalAmount: decimal.NewFromInt(5000),
			Status:           enums.PartnerTxnRequested,
		}}, nil
	}}
	req := newRequest(http.MethodGet, "/api/v1/partners/P1/payouts", "", map[string]string{"partnerId": "P1"})
	resp := serve(PartnerPayouts(svc, nil), req)

	require.Equal(t, http.StatusOK, resp.Code)
	var rows []finance.TransactionDTO
	decodeData(t, resp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.PartnerTxnRequested, rows[0].Status)
}

func TestAdminSettlePayout(t *testing.T) {
	svc := stubFinanceService{settle: func(ctx context.Context, partnerID, transactionID, status string) (*models.PartnerTransaction, error) {
		assert.Equal(t, "TX_2", transactionID)
		return &models.PartnerTransaction{ID: transactionID, PartnerID: partnerID, Status: enums.PartnerTransactionStatus(status)}, nil
	}}
	req := newRequest(http.MethodPost, "/api/v1/admin/partners/P1/payouts/TX_2/settle", `{"status":"Failed"}`,
		map[string]string{"partnerId": "P1", "transactionId": "TX_2"})
	resp := serve(AdminSettlePayout(svc, nil), req)

	require.Equal(t, http.StatusOK, resp.Code)
	var out finance.TransactionDTO
	decodeData(t, resp, &out)
	assert.Equal(t, enums.PartnerTxnFailed, out.Status)
}

func TestAdminSettlePayoutRejectsRequestedStatus(t *testing.T) {
	req := newRequest(http.MethodPost, "/api/v1/admin/partners/P1/payouts/TX_2/settle", `{"status":"Requested"}`,
		map[string]string{"partnerId": "P1", "transactionId": "TX_2"})
	resp := serve(AdminSettlePayout(stubFinanceService{}, nil), req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
