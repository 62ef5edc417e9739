package models

import "errors"

// Economy errors. Services return these unwrapped (or wrapped with %w) so the
// HTTP edge can map each kind to a distinct status code.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum balance")
	ErrConflict          = errors.New("concurrent balance update detected")
	ErrInvalidParams     = errors.New("invalid game parameters")
)

// Trade errors.
var (
	ErrTradeNotFound   = errors.New("trade not found")
	ErrTradeNotPending = errors.New("trade is not pending")
	ErrNotTradeParty   = errors.New("caller is not a party to this trade")
	ErrSelfTrade       = errors.New("cannot trade with yourself")
)

// Redeem code errors.
var (
	ErrInvalidCode     = errors.New("invalid code")
	ErrCodeExhausted   = errors.New("code usage limit reached")
	ErrAlreadyRedeemed = errors.New("code already redeemed by this user")
)

// Authorization and account-state errors.
var (
	ErrForbidden      = errors.New("insufficient privileges")
	ErrAccountBanned  = errors.New("account is banned")
	ErrGameBanned     = errors.New("user is banned from this game")
	ErrBankNotCovered = errors.New("bank balance does not cover withdrawal")
)
