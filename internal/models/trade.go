package models

import "time"

type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeCompleted TradeStatus = "completed"
	TradeCancelled TradeStatus = "cancelled"
)

// Trade is a peer-to-peer escrow transfer. The amount is debited from the
// sender when the trade is created and held outside both wallets until the
// receiver accepts (credit) or either party cancels (refund).
type Trade struct {
	ID          string      `json:"id"`
	SenderID    int         `json:"senderId"`
	ReceiverID  int         `json:"receiverId"`
	Amount      int64       `json:"amount"` // cents
	Message     string      `json:"message"`
	Status      TradeStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}
