package bookings

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
)

// Repository persists bookings. Mutations go through UpdateVersioned so a
// stale read never overwrites a newer write.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateVersioned(ctx context.Context, id string, version int, updates map[string]any) (bool, error)
	ListByPartner(ctx context.Context, partnerID string) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListCompletable(ctx context.Context, today time.Time, limit int) ([]models.Booking, error)
}
