package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// Wallet holds a user's spendable balance. One row per user.
type Wallet struct {
	ID        uuid.UUID          `gorm:"column:wallet_id;type:uuid;primaryKey"`
	UserID    string             `gorm:"column:user_id;not null;uniqueIndex"`
	Balance   decimal.Decimal    `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	Status    enums.WalletStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// WalletTransaction is an append-only wallet ledger entry.
type WalletTransaction struct {
	ID              uuid.UUID                `gorm:"column:txn_id;type:uuid;primaryKey"`
	WalletID        uuid.UUID                `gorm:"column:wallet_id;type:uuid;not null"`
	Type            enums.WalletTxnType      `gorm:"column:type;type:text;not null"`
	Amount          decimal.Decimal          `gorm:"column:amount;type:numeric(14,2);not null"`
	Direction       enums.WalletTxnDirection `gorm:"column:direction;type:text;not null"`
	ReferenceID     *string                  `gorm:"column:reference_id"`
	Description     string                   `gorm:"column:description;not null;default:''"`
	Status          enums.WalletTxnStatus    `gorm:"column:status;type:text;not null"`
	BalanceAfterTxn decimal.Decimal          `gorm:"column:balance_after_txn;type:numeric(14,2);not null"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
}
