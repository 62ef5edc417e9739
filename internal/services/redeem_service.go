package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
)

// RedeemService manages promotional codes: admins mint them, users redeem
// them once each until the usage limit runs out. Codes can be shared as QR
// images whose payloads are cached in Redis.
type RedeemService struct {
	db        *sql.DB
	redis     *redis.Client
	ledger    *LedgerService
	audit     *AuditLogger
	validator *ValidationHelper
}

type CreateCodeRequest struct {
	Amount     float64 `json:"amount" validate:"required,gt=0" example:"50.00"` // coins per redemption
	UsageLimit int     `json:"usageLimit" validate:"required,gt=0" example:"100"`
}

func NewRedeemService(db *sql.DB, redisClient *redis.Client, ledger *LedgerService) *RedeemService {
	return &RedeemService{
		db:        db,
		redis:     redisClient,
		ledger:    ledger,
		audit:     NewAuditLogger(),
		validator: NewValidationHelper(),
	}
}

// CreateCode mints a new redeem code
// @Summary Create a redeem code
// @Description Mint a promotional code with a coin value and a global usage limit (owner only)
// @Tags redeem
// @Accept json
// @Produce json
// @Param request body CreateCodeRequest true "Code parameters"
// @Success 201 {object} models.RedeemCode
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /redeem/codes [post]
func (s *RedeemService) CreateCode(w http.ResponseWriter, r *http.Request) {
	adminID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreateCodeRequest
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

	code := models.RedeemCode{
		Amount:     amount,
		UsageLimit: req.UsageLimit,
		CreatedBy:  adminID,
		CreatedAt:  time.Now(),
	}

	// Retry on the rare collision with an existing code.
	for attempt := 0; attempt < 5; attempt++ {
		code.Code = generateCode()
		_, err := s.db.Exec(`
			INSERT INTO redeem_codes (code, amount, usage_limit, used_count, created_by, created_at)
			VALUES ($1, $2, $3, 0, $4, $5)`,
			code.Code, code.Amount, code.UsageLimit, code.CreatedBy, code.CreatedAt)
		if err == nil {
			s.audit.LogAdminAction(adminID, 0, "CODE_CREATED", code.Code)
			log.Printf("[REDEEM] Code %s created by admin %d: %d cents x %d uses", code.Code, adminID, amount, req.UsageLimit)
			writeJSON(w, http.StatusCreated, code)
			return
		}
		log.Printf("[REDEEM] Code insert failed (attempt %d): %v", attempt+1, err)
	}

	SendErrorResponse(w, "Failed to create code", http.StatusInternalServerError, nil)
}

// RedeemCode credits a code to the caller's wallet
// @Summary Redeem a code
// @Description Redeem a promotional code; each user may redeem a given code once
// @Tags redeem
// @Produce json
// @Param code path string true "Redeem code"
// @Success 200 {object} object{code=string,amount=number,balance=number}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /redeem/{code} [post]
func (s *RedeemService) RedeemCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if len(code) != models.CodeLength {
		SendErrorResponse(w, "Invalid code", http.StatusNotFound, nil)
		return
	}

	amount, balance, err := s.redeem(userID, code)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	log.Printf("[REDEEM] User %d redeemed code %s for %d cents", userID, code, amount)
	writeJSON(w, http.StatusOK, map[string]any{
		"code":    code,
		"amount":  models.FromCents(amount),
		"balance": models.FromCents(balance),
	})
}

// ListCodes lists redeem codes with usage counters
// @Summary List redeem codes
// @Description Get all redeem codes with their usage counters (admin only)
// @Tags redeem
// @Produce json
// @Success 200 {object} object{codes=[]models.RedeemCode,count=int}
// @Failure 403 {object} ErrorResponse
// @Router /redeem/codes [get]
func (s *RedeemService) ListCodes(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT code, amount, usage_limit, used_count, created_by, created_at
		FROM redeem_codes
		ORDER BY created_at DESC
		LIMIT 100`)
	if err != nil {
		log.Printf("[REDEEM] Failed to list codes: %v", err)
		SendErrorResponse(w, "Failed to fetch codes", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	codes := []models.RedeemCode{}
	for rows.Next() {
		var c models.RedeemCode
		if err := rows.Scan(&c.Code, &c.Amount, &c.UsageLimit, &c.UsedCount, &c.CreatedBy, &c.CreatedAt); err != nil {
			SendErrorResponse(w, "Failed to fetch codes", http.StatusInternalServerError, nil)
			return
		}
		codes = append(codes, c)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"codes": codes,
		"count": len(codes),
	})
}

// GenerateCodeQR renders a code as a shareable QR image. The payload is
// cached in Redis so scanners can resolve it without hitting Postgres.
func (s *RedeemService) GenerateCodeQR(ctx context.Context, code string) (string, error) {
	var exists bool
	if err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM redeem_codes WHERE code = $1)`, code).Scan(&exists); err != nil {
		return "", err
	}
	if !exists {
		return "", models.ErrInvalidCode
	}

	payload, err := json.Marshal(map[string]any{
		"code":      code,
		"timestamp": time.Now().Unix(),
	})
	if err != nil {
		return "", err
	}

	if s.redis != nil {
		key := fmt.Sprintf("redeem_qr:%s", code)
		if err := s.redis.Set(ctx, key, payload, 24*time.Hour).Err(); err != nil {
			log.Printf("[REDEEM] Failed to cache QR payload for %s: %v", code, err)
		}
	}

	qr, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// redeem performs the redemption atomically: the code row lock serializes
// concurrent redemptions, the unique (code, user) row enforces once per
// user, and the usage counter enforces the global cap.
func (s *RedeemService) redeem(userID int, code string) (int64, int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var rc models.RedeemCode
	err = tx.QueryRow(`
		SELECT code, amount, usage_limit, used_count
		FROM redeem_codes
		WHERE code = $1
		FOR UPDATE`, code).Scan(&rc.Code, &rc.Amount, &rc.UsageLimit, &rc.UsedCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, models.ErrInvalidCode
		}
		return 0, 0, err
	}

	// Check the caller's own redemption before the global counter, so a
	// prior redeemer of a fully used code hears "already redeemed" rather
	// than "exhausted".
	var redeemed bool
	if err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM code_redemptions WHERE code = $1 AND user_id = $2)`,
		code, userID).Scan(&redeemed); err != nil {
		return 0, 0, err
	}
	if redeemed {
		return 0, 0, models.ErrAlreadyRedeemed
	}

	if rc.UsedCount >= rc.UsageLimit {
		return 0, 0, models.ErrCodeExhausted
	}

	if _, err := tx.Exec(`
		INSERT INTO code_redemptions (code, user_id, created_at)
		VALUES ($1, $2, $3)`, code, userID, time.Now()); err != nil {
		return 0, 0, err
	}

	if _, err := tx.Exec(`
		UPDATE redeem_codes SET used_count = used_count + 1 WHERE code = $1`, code); err != nil {
		return 0, 0, err
	}

	balance, err := s.ledger.ApplyDeltaTx(tx, userID, rc.Amount, models.CategoryCodeRedeem, fmt.Sprintf("code %s", code))
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return rc.Amount, balance, nil
}

// generateCode returns a 6-character uppercase alphanumeric code. Ambiguous
// characters are kept; codes are matched case-insensitively at the edge.
func generateCode() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, models.CodeLength)
	rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
