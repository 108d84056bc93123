package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// WalletDTO is the public shape of a wallet.
type WalletDTO struct {
	WalletID string             `json:"wallet_id"`
	UserID   string             `json:"user_id"`
	Balance  decimal.Decimal    `json:"balance"`
	Status   enums.WalletStatus `json:"status"`
}

// TransactionDTO is the public shape of a wallet ledger entry.
type TransactionDTO struct {
	TxnID           string                   `json:"txn_id"`
	Type            enums.WalletTxnType      `json:"type"`
	Amount          decimal.Decimal          `json:"amount"`
	Direction       enums.WalletTxnDirection `json:"direction"`
	ReferenceID     *string                  `json:"reference_id,omitempty"`
	Description     string                   `json:"description"`
	Status          enums.WalletTxnStatus    `json:"status"`
	BalanceAfterTxn decimal.Decimal          `json:"balance_after_txn"`
	CreatedAt       time.Time                `json:"created_at"`
}

func ToWalletDTO(w models.Wallet) WalletDTO {
	return WalletDTO{
		WalletID: w.ID.String(),
		UserID:   w.UserID,
		Balance:  w.Balance,
		Status:   w.Status,
	}
}

func ToTransactionDTOs(rows []models.WalletTransaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TransactionDTO{
			TxnID:           row.ID.String(),
			Type:            row.Type,
			Amount:          row.Amount,
			Direction:       row.Direction,
			ReferenceID:     row.ReferenceID,
			Description:     row.Description,
			Status:          row.Status,
			BalanceAfterTxn: row.BalanceAfterTxn,
			CreatedAt:       row.CreatedAt,
		})
	}
	return out
}
