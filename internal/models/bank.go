package models

import "time"

// DefaultAnnualRate is the interest rate a bank account opens with (5% p.a.).
const DefaultAnnualRate = 0.05

// Bank transaction categories.
const (
	BankTxDeposit    = "deposit"
	BankTxWithdrawal = "withdrawal"
	BankTxInterest   = "interest"
)

// BankAccount is the per-user savings balance, created lazily on first
// access. Interest accrues in place at most once per 24-hour window; the
// credited coins are newly minted, not moved from any other ledger.
type BankAccount struct {
	UserID         int       `json:"userId"`
	Balance        int64     `json:"balance"` // cents, separate from the wallet
	AnnualRate     float64   `json:"interestRate"`
	LastInterestAt time.Time `json:"lastInterestCalculation"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BankTransaction mirrors WalletTransaction for the bank ledger.
type BankTransaction struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Amount    int64     `json:"amount"` // signed cents
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}
