package models

import "time"

// Transaction categories. Every wallet mutation is tagged with exactly one.
const (
	CategoryGameWin         = "game_win"
	CategoryGameLoss        = "game_loss"
	CategoryTradePending    = "trade_pending"
	CategoryTradeReceive    = "trade_receive"
	CategoryTradeRefund     = "trade_refund"
	CategoryBankDeposit     = "bank_deposit"
	CategoryBankWithdrawal  = "bank_withdrawal"
	CategoryAdminAdjustment = "admin_adjustment"
	CategoryWelcomeBonus    = "welcome_bonus"
	CategoryCodeRedeem      = "code_redeem"
)

// WalletTransaction is one immutable row of the wallet audit trail. Rows are
// appended by the ledger inside the same database transaction that moves the
// balance, and are never updated or deleted afterwards.
type WalletTransaction struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Amount      int64     `json:"amount"` // signed cents
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
