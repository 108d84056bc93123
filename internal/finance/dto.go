package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// TransactionDTO is the public shape of a payout transaction.
type TransactionDTO struct {
	TransactionID    string                         `json:"transaction_id"`
	PartnerID        string                         `json:"partner_id"`
	TransactionDate  time.Time                      `json:"transaction_date"`
	TotalAmount      decimal.Decimal                `json:"total_amount"`
	WithdrawalAmount decimal.Decimal                `json:"withdrawal_amount"`
	BalanceAmount    decimal.Decimal                `json:"balance_amount"`
	Status           enums.PartnerTransactionStatus `json:"status"`
	TransactionType  string                         `json:"transaction_type"`
	Comments         string                         `json:"comments"`
}

func ToTransactionDTO(row models.PartnerTransaction) TransactionDTO {
	return TransactionDTO{
		TransactionID:    row.ID,
		PartnerID:        row.PartnerID,
		TransactionDate:  row.TransactionDate,
		TotalAmount:      row.TotalAmount,
		WithdrawalAmount: row.WithdrawalAmount,
		BalanceAmount:    row.BalanceAmount,
		Status:           row.Status,
		TransactionType:  row.TransactionType,
		Comments:         row.Comments,
	}
}

func ToTransactionDTOs(rows []models.PartnerTransaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToTransactionDTO(row))
	}
	return out
}

func ToBankDetails(row models.PartnerFinance) BankDetails {
	return bankDetailsOf(&row)
}
