package bookings

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Booking{}).Where("booking_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateVersioned applies updates only when the stored version still equals
// version, bumping it. It reports false when another writer got there first.
func (r *repository) UpdateVersioned(ctx context.Context, id string, version int, updates map[string]any) (bool, error) {
	values := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")
	values["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("booking_id = ? AND version = ?", id, version).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByPartner(ctx context.Context, partnerID string) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("check_in_date DESC").
		Order("booking_id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in_date DESC").
		Order("booking_id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListCompletable(ctx context.Context, today time.Time, limit int) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("booking_status = ?", enums.BookingStatusConfirmed).
		Where("check_out_date IS NOT NULL AND check_out_date <= ?", DateOnly(today)).
		Order("check_out_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
