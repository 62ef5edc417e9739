package models

import "time"

// CodeLength is the fixed length of promotional codes, e.g. "ABC123".
const CodeLength = 6

// RedeemCode is a single-use-per-user promotional credit with a global cap.
// UsedCount is monotonic and never exceeds UsageLimit.
type RedeemCode struct {
	Code       string    `json:"code"`
	Amount     int64     `json:"amount"` // cents credited per redemption
	UsageLimit int       `json:"usageLimit"`
	UsedCount  int       `json:"usedCount"`
	CreatedBy  int       `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CodeRedemption records one (code, user) pair; at most one row may exist
// per pair, which is what makes redemption idempotent per user.
type CodeRedemption struct {
	Code      string    `json:"code"`
	UserID    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
