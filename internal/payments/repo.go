package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CountAttempts(ctx context.Context, bookingID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("booking_id = ?", bookingID).
		Count(&n).Error
	return int(n), err
}

func (r *repository) InsertAttempt(ctx context.Context, attempt *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *repository) ListAttempts(ctx context.Context, bookingID string) ([]models.PaymentTransaction, error) {
	var rows []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("attempt_no ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBookingIDByOrder matches a gateway order to its booking, first through
// the booking's transaction id and then through earlier attempts.
func (r *repository) FindBookingIDByOrder(ctx context.Context, orderID string) (string, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Select("booking_id").
		Where("transaction_id = ?", orderID).
		Order("created_at DESC").
		Limit(1).
		Find(&booking).Error
	if err != nil {
		return "", err
	}
	if booking.ID != "" {
		return booking.ID, nil
	}

	var attempt models.PaymentTransaction
	err = r.db.WithContext(ctx).
		Select("booking_id").
		Where("gateway_order_id = ?", orderID).
		Order("created_at DESC").
		Limit(1).
		Find(&attempt).Error
	if err != nil {
		return "", err
	}
	if attempt.BookingID == "" {
		return "", gorm.ErrRecordNotFound
	}
	return attempt.BookingID, nil
}
