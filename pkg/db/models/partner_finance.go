package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// PartnerFinance is a partner's running finance row. It is locked for every
// payout mutation.
type PartnerFinance struct {
	PartnerID            string           `gorm:"column:partner_id;primaryKey"`
	AccountHolderName    string           `gorm:"column:account_holder_name;not null;default:''"`
	BankName             string           `gorm:"column:bank_name;not null;default:''"`
	AccountNumber        *string          `gorm:"column:account_number"`
	IFSCSwift            string           `gorm:"column:ifsc_swift;not null;default:''"`
	AccountType          string           `gorm:"column:account_type;not null;default:''"`
	PANTaxID             *string          `gorm:"column:pan_tax_id"`
	PayoutType           enums.PayoutType `gorm:"column:payout_type;type:text;not null;default:'Monthly'"`
	CommissionPercentage decimal.Decimal  `gorm:"column:commission_percentage;type:numeric(5,2);not null;default:0"`
	TotalRevenue         decimal.Decimal  `gorm:"column:total_revenue;type:numeric(14,2);not null;default:0"`
	NetRevenue           decimal.Decimal  `gorm:"column:net_revenue;type:numeric(14,2);not null;default:0"`
	PendingPayout        decimal.Decimal  `gorm:"column:pending_payout;type:numeric(14,2);not null;default:0"`
	PaidPayout           decimal.Decimal  `gorm:"column:paid_payout;type:numeric(14,2);not null;default:0"`
	LastPayoutDate       *time.Time       `gorm:"column:last_payout_date"`
	NotificationViewed   bool             `gorm:"column:notification_viewed;not null;default:false"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (PartnerFinance) TableName() string { return "partner_finance" }

// PartnerTransaction is one payout request.
type PartnerTransaction struct {
	ID               string                         `gorm:"column:transaction_id;primaryKey"`
	PartnerID        string                         `gorm:"column:partner_id;not null;index"`
	TransactionDate  time.Time                      `gorm:"column:transaction_date;not null"`
	TotalAmount      decimal.Decimal                `gorm:"column:total_amount;type:numeric(14,2);not null"`
	WithdrawalAmount decimal.Decimal                `gorm:"column:withdrawal_amount;type:numeric(14,2);not null"`
	BalanceAmount    decimal.Decimal                `gorm:"column:balance_amount;type:numeric(14,2);not null"`
	Status           enums.PartnerTransactionStatus `gorm:"column:status;type:text;not null"`
	TransactionType  string                         `gorm:"column:transaction_type;not null"`
	Comments         string                         `gorm:"column:comments;not null;default:''"`
}
