package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func bankRows(userID int, balance int64, rate float64, lastInterest time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "balance", "annual_rate", "last_interest_at", "created_at"}).
		AddRow(userID, balance, rate, lastInterest, lastInterest)
}

func TestBankService_lockAccountTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewBankService(db, NewLedgerService(db))

	t.Run("existing account", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		last := time.Now().Add(-2 * time.Hour)
		mock.ExpectQuery("SELECT user_id, balance, annual_rate, last_interest_at, created_at").
			WithArgs(1).
			WillReturnRows(bankRows(1, 10_000, models.DefaultAnnualRate, last))

		account, err := service.lockAccountTx(tx, 1)
		assert.NoError(t, err)
		assert.Equal(t, int64(10_000), account.Balance)
		assert.Equal(t, models.DefaultAnnualRate, account.AnnualRate)
	})

	t.Run("account created on first touch", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		mock.ExpectQuery("SELECT user_id, balance, annual_rate, last_interest_at, created_at").
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance", "annual_rate", "last_interest_at", "created_at"}))

		mock.ExpectExec("INSERT INTO bank_accounts").
			WithArgs(2, int64(0), models.DefaultAnnualRate, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		account, err := service.lockAccountTx(tx, 2)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), account.Balance)
		assert.Equal(t, models.DefaultAnnualRate, account.AnnualRate)
	})
}

func TestBankService_accrueInterestTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewBankService(db, NewLedgerService(db))

	t.Run("credits a single day's simple interest", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		account := &models.BankAccount{
			UserID:         1,
			Balance:        1_000_000, // 10,000.00 coins
			AnnualRate:     models.DefaultAnnualRate,
			LastInterestAt: time.Now().Add(-25 * time.Hour),
		}

		// 1_000_000 * 0.05 / 365 = 136 cents, truncated.
		mock.ExpectExec("INSERT INTO bank_transactions").
			WithArgs(1, int64(136), models.BankTxInterest, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE bank_accounts SET balance = \\$1, last_interest_at = \\$2").
			WithArgs(int64(1_000_136), sqlmock.AnyArg(), 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := service.accrueInterestTx(tx, account)
		assert.NoError(t, err)
		assert.Equal(t, int64(1_000_136), account.Balance)
		assert.WithinDuration(t, time.Now(), account.LastInterestAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("long idle still earns only one day's worth", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		// Ten days untouched pays the same as one; the cursor resets to
		// now rather than crediting back-pay per elapsed day.
		account := &models.BankAccount{
			UserID:         1,
			Balance:        1_000_000,
			AnnualRate:     models.DefaultAnnualRate,
			LastInterestAt: time.Now().Add(-10 * 24 * time.Hour),
		}

		mock.ExpectExec("INSERT INTO bank_transactions").
			WithArgs(1, int64(136), models.BankTxInterest, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE bank_accounts SET balance = \\$1, last_interest_at = \\$2").
			WithArgs(int64(1_000_136), sqlmock.AnyArg(), 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := service.accrueInterestTx(tx, account)
		assert.NoError(t, err)
		assert.Equal(t, int64(1_000_136), account.Balance)
		assert.WithinDuration(t, time.Now(), account.LastInterestAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no accrual inside the first day", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		account := &models.BankAccount{
			UserID:         1,
			Balance:        1_000_000,
			AnnualRate:     models.DefaultAnnualRate,
			LastInterestAt: time.Now().Add(-6 * time.Hour),
		}

		err := service.accrueInterestTx(tx, account)
		assert.NoError(t, err)
		assert.Equal(t, int64(1_000_000), account.Balance)
	})

	t.Run("zero balance accrues nothing", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		account := &models.BankAccount{
			UserID:         1,
			Balance:        0,
			AnnualRate:     models.DefaultAnnualRate,
			LastInterestAt: time.Now().Add(-72 * time.Hour),
		}

		err := service.accrueInterestTx(tx, account)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), account.Balance)
	})

	t.Run("tiny balance still advances the cursor", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		account := &models.BankAccount{
			UserID:         1,
			Balance:        5, // interest rounds to zero
			AnnualRate:     models.DefaultAnnualRate,
			LastInterestAt: time.Now().Add(-25 * time.Hour),
		}

		mock.ExpectExec("UPDATE bank_accounts SET last_interest_at = \\$1").
			WithArgs(sqlmock.AnyArg(), 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := service.accrueInterestTx(tx, account)
		assert.NoError(t, err)
		assert.Equal(t, int64(5), account.Balance)
		assert.WithinDuration(t, time.Now(), account.LastInterestAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("interest never pushes the balance past the cap", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		account := &models.BankAccount{
			UserID:         1,
			Balance:        models.MaxBalance - 50,
			AnnualRate:     models.DefaultAnnualRate,
			LastInterestAt: time.Now().Add(-25 * time.Hour),
		}

		// Full interest would overshoot; only the headroom is credited.
		mock.ExpectExec("INSERT INTO bank_transactions").
			WithArgs(1, int64(50), models.BankTxInterest, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE bank_accounts SET balance = \\$1, last_interest_at = \\$2").
			WithArgs(models.MaxBalance, sqlmock.AnyArg(), 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := service.accrueInterestTx(tx, account)
		assert.NoError(t, err)
		assert.Equal(t, models.MaxBalance, account.Balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBankService_Deposit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewBankService(db, NewLedgerService(db))

	t.Run("deposit past the bank cap is refused", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT user_id, balance, annual_rate, last_interest_at, created_at").
			WithArgs(1).
			WillReturnRows(bankRows(1, models.MaxBalance-500, models.DefaultAnnualRate, time.Now()))

		mock.ExpectRollback()

		req := httptest.NewRequest(http.MethodPost, "/bank/deposit", strings.NewReader(`{"amount": 10.00}`))
		req = req.WithContext(context.WithValue(req.Context(), "userID", 1))
		w := httptest.NewRecorder()

		service.Deposit(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), models.ErrAmountTooLarge.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
