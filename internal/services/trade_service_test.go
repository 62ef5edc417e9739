package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func tradeRows(id string, senderID, receiverID int, amount int64, status models.TradeStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "amount", "message", "status", "created_at"}).
		AddRow(id, senderID, receiverID, amount, "", status, time.Now())
}

func TestTradeService_settleTrade(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ledger := NewLedgerService(db)
	service := NewTradeService(db, ledger)

	t.Run("receiver accepts and escrow is released", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, message, status, created_at").
			WithArgs("trade-1").
			WillReturnRows(tradeRows("trade-1", 1, 2, 500, models.TradePending))

		// Credit to the receiver through the ledger.
		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(2).
			WillReturnRows(walletRows(2, 100, 1))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(2, int64(500), models.CategoryTradeReceive, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(600), sqlmock.AnyArg(), 2, 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE trades").
			WithArgs(models.TradeCompleted, sqlmock.AnyArg(), "trade-1", models.TradePending).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectCommit()

		trade, err := service.settleTrade("trade-1", 2, true)
		assert.NoError(t, err)
		assert.Equal(t, models.TradeCompleted, trade.Status)
		assert.NotNil(t, trade.CompletedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sender cannot accept their own trade", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, message, status, created_at").
			WithArgs("trade-2").
			WillReturnRows(tradeRows("trade-2", 1, 2, 500, models.TradePending))

		mock.ExpectRollback()

		_, err := service.settleTrade("trade-2", 1, true)
		assert.ErrorIs(t, err, models.ErrNotTradeParty)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sender cancels and escrow is refunded", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, message, status, created_at").
			WithArgs("trade-3").
			WillReturnRows(tradeRows("trade-3", 1, 2, 500, models.TradePending))

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, 100, 2))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(1, int64(500), models.CategoryTradeRefund, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(600), sqlmock.AnyArg(), 1, 2).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE trades").
			WithArgs(models.TradeCancelled, sqlmock.AnyArg(), "trade-3", models.TradePending).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectCommit()

		trade, err := service.settleTrade("trade-3", 1, false)
		assert.NoError(t, err)
		assert.Equal(t, models.TradeCancelled, trade.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("receiver may also cancel", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, message, status, created_at").
			WithArgs("trade-4").
			WillReturnRows(tradeRows("trade-4", 1, 2, 250, models.TradePending))

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, 0, 1))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(1, int64(250), models.CategoryTradeRefund, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(250), sqlmock.AnyArg(), 1, 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE trades").
			WithArgs(models.TradeCancelled, sqlmock.AnyArg(), "trade-4", models.TradePending).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectCommit()

		trade, err := service.settleTrade("trade-4", 2, false)
		assert.NoError(t, err)
		assert.Equal(t, models.TradeCancelled, trade.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("outsider cannot touch the trade", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, message, status, created_at").
			WithArgs("trade-5").
			WillReturnRows(tradeRows("trade-5", 1, 2, 250, models.TradePending))

		mock.ExpectRollback()

		_, err := service.settleTrade("trade-5", 9, false)
		assert.ErrorIs(t, err, models.ErrNotTradeParty)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already settled trade", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, message, status, created_at").
			WithArgs("trade-6").
			WillReturnRows(tradeRows("trade-6", 1, 2, 250, models.TradeCompleted))

		mock.ExpectRollback()

		_, err := service.settleTrade("trade-6", 2, true)
		assert.ErrorIs(t, err, models.ErrTradeNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown trade", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, sender_id, receiver_id, amount, message, status, created_at").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "amount", "message", "status", "created_at"}))

		mock.ExpectRollback()

		_, err := service.settleTrade("missing", 2, true)
		assert.ErrorIs(t, err, models.ErrTradeNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
