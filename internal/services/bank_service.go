package services

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
)

// BankService manages interest-bearing bank accounts alongside the spendable
// wallet. Interest accrues lazily: any operation that touches the account
// after a day or more has passed first credits a single day's interest.
type BankService struct {
	db        *sql.DB
	ledger    *LedgerService
	audit     *AuditLogger
	validator *ValidationHelper
}

type BankAmountRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0" example:"100.00"` // coins
}

func NewBankService(db *sql.DB, ledger *LedgerService) *BankService {
	return &BankService{
		db:        db,
		ledger:    ledger,
		audit:     NewAuditLogger(),
		validator: NewValidationHelper(),
	}
}

// GetAccount returns the caller's bank account
// @Summary Get bank account
// @Description Retrieve the authenticated user's bank account, accruing any pending interest first
// @Tags bank
// @Produce json
// @Success 200 {object} models.BankAccount
// @Failure 401 {object} ErrorResponse
// @Router /bank [get]
func (s *BankService) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		SendErrorResponse(w, "Failed to fetch account", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	account, err := s.lockAccountTx(tx, userID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	if err := s.accrueInterestTx(tx, account); err != nil {
		SendErrorResponse(w, "Failed to accrue interest", http.StatusInternalServerError, nil)
		return
	}
	if err := tx.Commit(); err != nil {
		SendErrorResponse(w, "Failed to fetch account", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Deposit moves coins from the wallet into the bank
// @Summary Deposit into bank
// @Description Move coins from the wallet into the interest-bearing bank account
// @Tags bank
// @Accept json
// @Produce json
// @Param request body BankAmountRequest true "Deposit amount"
// @Success 200 {object} models.BankAccount
// @Failure 400 {object} ErrorResponse
// @Router /bank/deposit [post]
func (s *BankService) Deposit(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, true)
}

// Withdraw moves coins from the bank back to the wallet
// @Summary Withdraw from bank
// @Description Move coins from the bank account back into the spendable wallet
// @Tags bank
// @Accept json
// @Produce json
// @Param request body BankAmountRequest true "Withdrawal amount"
// @Success 200 {object} models.BankAccount
// @Failure 400 {object} ErrorResponse
// @Router /bank/withdraw [post]
func (s *BankService) Withdraw(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, false)
}

// GetHistory lists bank transactions
// @Summary List bank transactions
// @Description Get the authenticated user's bank transaction history, newest first
// @Tags bank
// @Produce json
// @Success 200 {object} object{transactions=[]models.BankTransaction,count=int}
// @Failure 401 {object} ErrorResponse
// @Router /bank/transactions [get]
func (s *BankService) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, amount, category, created_at
		FROM bank_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 50`, userID)
	if err != nil {
		log.Printf("[BANK] Failed to fetch history for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	transactions := []models.BankTransaction{}
	for rows.Next() {
		var t models.BankTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.CreatedAt); err != nil {
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

func (s *BankService) move(w http.ResponseWriter, r *http.Request, deposit bool) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req BankAmountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	amount := models.ToCents(req.Amount)
	if amount <= 0 || amount > models.MaxBalance {
		SendErrorResponse(w, "Invalid amount", http.StatusBadRequest, nil)
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		SendErrorResponse(w, "Failed to process request", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	account, err := s.lockAccountTx(tx, userID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	if err := s.accrueInterestTx(tx, account); err != nil {
		SendErrorResponse(w, "Failed to accrue interest", http.StatusInternalServerError, nil)
		return
	}

	if deposit {
		if account.Balance+amount > models.MaxBalance {
			SendErrorResponse(w, models.ErrAmountTooLarge.Error(), http.StatusBadRequest, nil)
			return
		}
		if _, err := s.ledger.ApplyDeltaTx(tx, userID, -amount, models.CategoryBankDeposit, "bank deposit"); err != nil {
			SendErrorResponse(w, err.Error(), statusForError(err), nil)
			return
		}
		account.Balance += amount
		if err := s.recordBankTx(tx, userID, amount, models.BankTxDeposit); err != nil {
			SendErrorResponse(w, "Failed to process deposit", http.StatusInternalServerError, nil)
			return
		}
	} else {
		if account.Balance < amount {
			SendErrorResponse(w, "Bank balance does not cover withdrawal", http.StatusBadRequest, nil)
			return
		}
		if _, err := s.ledger.ApplyDeltaTx(tx, userID, amount, models.CategoryBankWithdrawal, "bank withdrawal"); err != nil {
			SendErrorResponse(w, err.Error(), statusForError(err), nil)
			return
		}
		account.Balance -= amount
		if err := s.recordBankTx(tx, userID, -amount, models.BankTxWithdrawal); err != nil {
			SendErrorResponse(w, "Failed to process withdrawal", http.StatusInternalServerError, nil)
			return
		}
	}

	if _, err := tx.Exec(`
		UPDATE bank_accounts SET balance = $1 WHERE user_id = $2`,
		account.Balance, userID); err != nil {
		SendErrorResponse(w, "Failed to process request", http.StatusInternalServerError, nil)
		return
	}

	if err := tx.Commit(); err != nil {
		SendErrorResponse(w, "Failed to process request", http.StatusInternalServerError, nil)
		return
	}

	action := "BANK_WITHDRAWAL"
	if deposit {
		action = "BANK_DEPOSIT"
	}
	s.audit.LogBalanceChange(userID, userID, amount, action)
	writeJSON(w, http.StatusOK, account)
}

// lockAccountTx fetches the bank account row for update, creating it with
// the default rate on first touch.
func (s *BankService) lockAccountTx(tx *sql.Tx, userID int) (*models.BankAccount, error) {
	var account models.BankAccount
	err := tx.QueryRow(`
		SELECT user_id, balance, annual_rate, last_interest_at, created_at
		FROM bank_accounts
		WHERE user_id = $1
		FOR UPDATE`, userID).Scan(
		&account.UserID, &account.Balance, &account.AnnualRate, &account.LastInterestAt, &account.CreatedAt)
	if err == nil {
		return &account, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now()
	account = models.BankAccount{
		UserID:         userID,
		Balance:        0,
		AnnualRate:     models.DefaultAnnualRate,
		LastInterestAt: now,
		CreatedAt:      now,
	}
	_, err = tx.Exec(`
		INSERT INTO bank_accounts (user_id, balance, annual_rate, last_interest_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		account.UserID, account.Balance, account.AnnualRate, account.LastInterestAt, account.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// accrueInterestTx credits a single day's simple interest once at least 24
// hours have passed since the last accrual, then stamps the accrual time to
// now. A long-idle account gets exactly one day's worth on its next touch,
// never back-pay for every elapsed day.
func (s *BankService) accrueInterestTx(tx *sql.Tx, account *models.BankAccount) error {
	if time.Since(account.LastInterestAt) < 24*time.Hour || account.Balance <= 0 {
		return nil
	}

	interest := int64(float64(account.Balance) * account.AnnualRate / 365)
	if headroom := models.MaxBalance - account.Balance; interest > headroom {
		interest = headroom
	}
	account.LastInterestAt = time.Now()
	if interest <= 0 {
		_, err := tx.Exec(`UPDATE bank_accounts SET last_interest_at = $1 WHERE user_id = $2`,
			account.LastInterestAt, account.UserID)
		return err
	}

	account.Balance += interest

	if err := s.recordBankTx(tx, account.UserID, interest, models.BankTxInterest); err != nil {
		return err
	}
	_, err := tx.Exec(`
		UPDATE bank_accounts SET balance = $1, last_interest_at = $2 WHERE user_id = $3`,
		account.Balance, account.LastInterestAt, account.UserID)
	if err != nil {
		return err
	}

	log.Printf("[BANK] Accrued %d interest for user %d", interest, account.UserID)
	return nil
}

func (s *BankService) recordBankTx(tx *sql.Tx, userID int, amount int64, category string) error {
	_, err := tx.Exec(`
		INSERT INTO bank_transactions (user_id, amount, category, created_at)
		VALUES ($1, $2, $3, $4)`,
		userID, amount, category, time.Now())
	return err
}
