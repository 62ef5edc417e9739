package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/go-chi/chi/v5"
)

// LedgerService owns every wallet balance mutation. All writes go through
// ApplyDeltaTx or SetBalanceTx so the transaction log and balance stay in
// step, balances never leave [0, MaxBalance], and concurrent writers are
// serialized by a row lock plus an optimistic version column.
type LedgerService struct {
	db    *sql.DB
	audit *AuditLogger
}

type lockedWallet struct {
	UserID  int
	Balance int64
	Version int
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{
		db:    db,
		audit: NewAuditLogger(),
	}
}

// ApplyDelta applies a signed balance change in its own transaction.
func (s *LedgerService) ApplyDelta(userID int, delta int64, category, description string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := s.ApplyDeltaTx(tx, userID, delta, category, description)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ApplyDeltaTx applies a signed balance change inside an existing
// transaction. A negative delta that would take the balance below zero
// returns ErrInsufficientFunds; a positive one past the cap returns
// ErrAmountTooLarge.
func (s *LedgerService) ApplyDeltaTx(tx *sql.Tx, userID int, delta int64, category, description string) (int64, error) {
	wallet, err := s.lockWallet(tx, userID)
	if err != nil {
		return 0, err
	}

	newBalance := wallet.Balance + delta
	if newBalance < 0 {
		return 0, models.ErrInsufficientFunds
	}
	if newBalance > models.MaxBalance {
		return 0, models.ErrAmountTooLarge
	}

	if err := s.recordTransactionTx(tx, userID, delta, category, description); err != nil {
		return 0, err
	}

	if err := s.updateBalanceTx(tx, userID, newBalance, wallet.Version); err != nil {
		return 0, err
	}

	s.audit.LogBalanceChange(userID, userID, delta, category)
	return newBalance, nil
}

// SetBalanceTx overwrites a balance outright. Reserved for privileged
// adjustments; the difference is still journaled.
func (s *LedgerService) SetBalanceTx(tx *sql.Tx, userID int, balance int64, category, description string) (int64, error) {
	if balance < 0 || balance > models.MaxBalance {
		return 0, models.ErrAmountTooLarge
	}

	wallet, err := s.lockWallet(tx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.recordTransactionTx(tx, userID, balance-wallet.Balance, category, description); err != nil {
		return 0, err
	}

	if err := s.updateBalanceTx(tx, userID, balance, wallet.Version); err != nil {
		return 0, err
	}

	return balance, nil
}

// Transfer moves funds between two wallets atomically.
func (s *LedgerService) Transfer(fromUserID, toUserID int, amount int64, category, description string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.TransferTx(tx, fromUserID, toUserID, amount, category, description); err != nil {
		return err
	}

	return tx.Commit()
}

// TransferTx debits one wallet and credits another inside an existing
// transaction. Wallets are locked in ascending user ID order to prevent
// deadlocks.
func (s *LedgerService) TransferTx(tx *sql.Tx, fromUserID, toUserID int, amount int64, category, description string) error {
	if amount <= 0 {
		return models.ErrInvalidAmount
	}

	firstLock, secondLock := fromUserID, toUserID
	if fromUserID > toUserID {
		firstLock, secondLock = toUserID, fromUserID
	}

	first, err := s.lockWallet(tx, firstLock)
	if err != nil {
		return err
	}
	second, err := s.lockWallet(tx, secondLock)
	if err != nil {
		return err
	}

	from, to := first, second
	if firstLock != fromUserID {
		from, to = second, first
	}

	if from.Balance < amount {
		return models.ErrInsufficientFunds
	}
	if to.Balance+amount > models.MaxBalance {
		return models.ErrAmountTooLarge
	}

	if err := s.recordTransactionTx(tx, from.UserID, -amount, category, description); err != nil {
		return err
	}
	if err := s.recordTransactionTx(tx, to.UserID, amount, category, description); err != nil {
		return err
	}

	if err := s.updateBalanceTx(tx, from.UserID, from.Balance-amount, from.Version); err != nil {
		return err
	}
	if err := s.updateBalanceTx(tx, to.UserID, to.Balance+amount, to.Version); err != nil {
		return err
	}

	s.audit.LogBalanceChange(from.UserID, to.UserID, amount, category)
	return nil
}

// GetBalance returns the caller's wallet balance
// @Summary Get wallet balance
// @Description Retrieve the authenticated user's coin balance
// @Tags wallet
// @Produce json
// @Success 200 {object} object{userId=int,balance=number}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /wallet/balance [get]
func (s *LedgerService) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var balance int64
	err := s.db.QueryRow(`SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		} else {
			log.Printf("[LEDGER] Failed to fetch balance for user %d: %v", userID, err)
			SendErrorResponse(w, "Failed to fetch balance", http.StatusInternalServerError, nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": models.FromCents(balance),
	})
}

// GetUserBalance returns another user's balance by ID
// @Summary Get a user's balance
// @Description Retrieve any user's coin balance by user ID
// @Tags wallet
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} object{userId=int,username=string,balance=number}
// @Failure 404 {object} ErrorResponse
// @Router /wallet/balance/{userId} [get]
func (s *LedgerService) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	var username string
	var balance int64
	err = s.db.QueryRow(`SELECT username, balance FROM users WHERE id = $1`, targetID).Scan(&username, &balance)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		} else {
			SendErrorResponse(w, "Failed to fetch balance", http.StatusInternalServerError, nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":   targetID,
		"username": username,
		"balance":  models.FromCents(balance),
	})
}

// GetTransactions lists the caller's wallet transactions
// @Summary List wallet transactions
// @Description Get the authenticated user's transaction history, newest first
// @Tags wallet
// @Produce json
// @Param limit query int false "Number of transactions to return (default: 50, max: 200)"
// @Param category query string false "Filter by transaction category"
// @Success 200 {object} object{transactions=[]models.WalletTransaction,count=int}
// @Failure 401 {object} ErrorResponse
// @Router /wallet/transactions [get]
func (s *LedgerService) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}
	category := r.URL.Query().Get("category")

	query := `
		SELECT id, user_id, amount, category, description, created_at
		FROM wallet_transactions
		WHERE user_id = $1`
	args := []any{userID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Printf("[LEDGER] Failed to fetch transactions for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	transactions := []models.WalletTransaction{}
	for rows.Next() {
		var t models.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Description, &t.CreatedAt); err != nil {
			SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
			return
		}
		transactions = append(transactions, t)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

func (s *LedgerService) lockWallet(tx *sql.Tx, userID int) (*lockedWallet, error) {
	var wallet lockedWallet
	err := tx.QueryRow(`
		SELECT id, balance, version
		FROM users
		WHERE id = $1
		FOR UPDATE`, userID).Scan(&wallet.UserID, &wallet.Balance, &wallet.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (s *LedgerService) recordTransactionTx(tx *sql.Tx, userID int, amount int64, category, description string) error {
	_, err := tx.Exec(`
		INSERT INTO wallet_transactions (user_id, amount, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, amount, category, description, time.Now())
	return err
}

func (s *LedgerService) updateBalanceTx(tx *sql.Tx, userID int, newBalance int64, version int) error {
	result, err := tx.Exec(`
		UPDATE users
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, time.Now(), userID, version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %d", models.ErrConflict, userID)
	}

	return nil
}
