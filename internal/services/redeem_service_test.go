package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRedeemService_redeem(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewRedeemService(db, nil, NewLedgerService(db))

	codeRow := func(code string, amount int64, limit, used int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"code", "amount", "usage_limit", "used_count"}).
			AddRow(code, amount, limit, used)
	}

	t.Run("successful redemption", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT code, amount, usage_limit, used_count").
			WithArgs("AB12CD").
			WillReturnRows(codeRow("AB12CD", 5000, 10, 3))

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM code_redemptions").
			WithArgs("AB12CD", 1).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		mock.ExpectExec("INSERT INTO code_redemptions").
			WithArgs("AB12CD", 1, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE redeem_codes SET used_count = used_count \\+ 1").
			WithArgs("AB12CD").
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectQuery("SELECT id, balance, version").
			WithArgs(1).
			WillReturnRows(walletRows(1, 1000, 1))

		mock.ExpectExec("INSERT INTO wallet_transactions").
			WithArgs(1, int64(5000), models.CategoryCodeRedeem, "code AB12CD", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec("UPDATE users SET balance = \\$1, version = version \\+ 1").
			WithArgs(int64(6000), sqlmock.AnyArg(), 1, 1).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectCommit()

		amount, balance, err := service.redeem(1, "AB12CD")
		assert.NoError(t, err)
		assert.Equal(t, int64(5000), amount)
		assert.Equal(t, int64(6000), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown code", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT code, amount, usage_limit, used_count").
			WithArgs("ZZZZZZ").
			WillReturnRows(sqlmock.NewRows([]string{"code", "amount", "usage_limit", "used_count"}))

		mock.ExpectRollback()

		_, _, err := service.redeem(1, "ZZZZZZ")
		assert.ErrorIs(t, err, models.ErrInvalidCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exhausted code", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT code, amount, usage_limit, used_count").
			WithArgs("AB12CD").
			WillReturnRows(codeRow("AB12CD", 5000, 10, 10))

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM code_redemptions").
			WithArgs("AB12CD", 1).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		mock.ExpectRollback()

		_, _, err := service.redeem(1, "AB12CD")
		assert.ErrorIs(t, err, models.ErrCodeExhausted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second redemption by the same user", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT code, amount, usage_limit, used_count").
			WithArgs("AB12CD").
			WillReturnRows(codeRow("AB12CD", 5000, 10, 4))

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM code_redemptions").
			WithArgs("AB12CD", 1).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		mock.ExpectRollback()

		_, _, err := service.redeem(1, "AB12CD")
		assert.ErrorIs(t, err, models.ErrAlreadyRedeemed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// A single-use code that has been consumed answers differently per
	// caller: its redeemer hears "already redeemed", everyone else hears
	// "exhausted".
	t.Run("used-up code and its own redeemer", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT code, amount, usage_limit, used_count").
			WithArgs("ONCE01").
			WillReturnRows(codeRow("ONCE01", 5000, 1, 1))

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM code_redemptions").
			WithArgs("ONCE01", 7).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		mock.ExpectRollback()

		_, _, err := service.redeem(7, "ONCE01")
		assert.ErrorIs(t, err, models.ErrAlreadyRedeemed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("used-up code and a new user", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT code, amount, usage_limit, used_count").
			WithArgs("ONCE01").
			WillReturnRows(codeRow("ONCE01", 5000, 1, 1))

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM code_redemptions").
			WithArgs("ONCE01", 8).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		mock.ExpectRollback()

		_, _, err := service.redeem(8, "ONCE01")
		assert.ErrorIs(t, err, models.ErrCodeExhausted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := generateCode()
		assert.Len(t, code, models.CodeLength)
		for _, c := range code {
			isUpper := c >= 'A' && c <= 'Z'
			isDigit := c >= '0' && c <= '9'
			assert.True(t, isUpper || isDigit, "unexpected character %q in %s", c, code)
		}
		seen[code] = true
	}
	// 100 draws from a 36^6 space should not collide.
	assert.Greater(t, len(seen), 90)
}
