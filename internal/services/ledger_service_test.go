package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func walletRows(userID int, balance int64, version int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "balance", "version"}).
		AddRow(userID, balance, version)
}

func TestLedgerService_ApplyDelta(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewLedgerService(db)

	t.Run("successful credit", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, 5000, 3))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(1, int64(2500), models.CategoryGameWin, "slots payout", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(7500), sqlmock.AnyArg(), 1, 3).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectCommit()

		newBalance, err := service.ApplyDelta(1, 2500, models.CategoryGameWin, "slots payout")
		assert.NoError(t, err)
		assert.Equal(t, int64(7500), newBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient funds", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, 1000, 1))

		mock.ExpectRollback()

		_, err := service.ApplyDelta(1, -2000, models.CategoryGameLoss, "roulette bet")
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("credit past the balance cap is refused", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, models.MaxBalance-100, 2))

		mock.ExpectRollback()

		_, err := service.ApplyDelta(1, 50_000, models.CategoryAdminAdjustment, "grant")
		assert.ErrorIs(t, err, models.ErrAmountTooLarge)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("credit that lands exactly on the cap succeeds", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, models.MaxBalance-100, 2))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(1, int64(100), models.CategoryAdminAdjustment, "grant", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(models.MaxBalance, sqlmock.AnyArg(), 1, 2).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectCommit()

		newBalance, err := service.ApplyDelta(1, 100, models.CategoryAdminAdjustment, "grant")
		assert.NoError(t, err)
		assert.Equal(t, models.MaxBalance, newBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("optimistic lock conflict", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, 5000, 3))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(1, int64(100), models.CategoryGameWin, "cups payout", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(5100), sqlmock.AnyArg(), 1, 3).
			WillReturnResult(sqlmock.NewResult(1, 0)) // No rows affected

		mock.ExpectRollback()

		_, err := service.ApplyDelta(1, 100, models.CategoryGameWin, "cups payout")
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance", "version"}))

		mock.ExpectRollback()

		_, err := service.ApplyDelta(42, 100, models.CategoryGameWin, "payout")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerService_Transfer(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewLedgerService(db)

	t.Run("locks wallets in ascending id order", func(t *testing.T) {
		// Sender has the higher id, so the receiver's row is locked first.
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(2).
			WillReturnRows(walletRows(2, 1000, 1))

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(7).
			WillReturnRows(walletRows(7, 9000, 4))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(7, int64(-300), models.CategoryTradePending, "escrow", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(2, int64(300), models.CategoryTradePending, "escrow", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(8700), sqlmock.AnyArg(), 7, 4).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(1300), sqlmock.AnyArg(), 2, 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectCommit()

		err := service.Transfer(7, 2, 300, models.CategoryTradePending, "escrow")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient sender balance", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, 200, 1))

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(2).
			WillReturnRows(walletRows(2, 0, 1))

		mock.ExpectRollback()

		err := service.Transfer(1, 2, 500, models.CategoryTradePending, "escrow")
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := service.Transfer(1, 2, 0, models.CategoryTradePending, "escrow")
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
