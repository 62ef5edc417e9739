package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TradeService runs the escrowed coin trade flow. Creating a trade debits
// the sender immediately so the offered amount cannot be spent twice;
// accepting releases the escrow to the receiver, cancelling refunds the
// sender.
type TradeService struct {
	db        *sql.DB
	ledger    *LedgerService
	audit     *AuditLogger
	validator *ValidationHelper
}

type CreateTradeRequest struct {
	ReceiverID int     `json:"receiverId" validate:"required,gt=0" example:"42"`
	Amount     float64 `json:"amount" validate:"required,gt=0" example:"25.50"` // coins
	Message    string  `json:"message" validate:"max=200" example:"for the slots tip"`
}

func NewTradeService(db *sql.DB, ledger *LedgerService) *TradeService {
	return &TradeService{
		db:        db,
		ledger:    ledger,
		audit:     NewAuditLogger(),
		validator: NewValidationHelper(),
	}
}

// CreateTrade opens a new escrowed trade
// @Summary Create a trade offer
// @Description Offer coins to another user; the amount is held in escrow until accepted or cancelled
// @Tags trades
// @Accept json
// @Produce json
// @Param request body CreateTradeRequest true "Trade offer"
// @Success 201 {object} models.Trade
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /trades [post]
func (s *TradeService) CreateTrade(w http.ResponseWriter, r *http.Request) {
	senderID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreateTradeRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if req.ReceiverID == senderID {
		SendErrorResponse(w, "Cannot trade with yourself", http.StatusBadRequest, nil)
		return
	}

	amount := models.ToCents(req.Amount)
	if amount <= 0 || amount > models.MaxBalance {
		SendErrorResponse(w, "Invalid amount", http.StatusBadRequest, nil)
		return
	}

	var receiverExists bool
	if err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, req.ReceiverID).Scan(&receiverExists); err != nil || !receiverExists {
		SendErrorResponse(w, "Receiver not found", http.StatusNotFound, nil)
		return
	}

	tradeID := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("[TRADE] Failed to begin transaction: %v", err)
		SendErrorResponse(w, "Failed to create trade", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	// Escrow: debit the sender up front.
	desc := fmt.Sprintf("trade %s to user %d", tradeID, req.ReceiverID)
	if _, err := s.ledger.ApplyDeltaTx(tx, senderID, -amount, models.CategoryTradePending, desc); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	trade := models.Trade{
		ID:         tradeID,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Amount:     amount,
		Message:    req.Message,
		Status:     models.TradePending,
		CreatedAt:  time.Now(),
	}
	_, err = tx.Exec(`
		INSERT INTO trades (id, sender_id, receiver_id, amount, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		trade.ID, trade.SenderID, trade.ReceiverID, trade.Amount, trade.Message, trade.Status, trade.CreatedAt)
	if err != nil {
		log.Printf("[TRADE] Failed to store trade %s: %v", tradeID, err)
		SendErrorResponse(w, "Failed to create trade", http.StatusInternalServerError, nil)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[TRADE] Failed to commit trade %s: %v", tradeID, err)
		SendErrorResponse(w, "Failed to create trade", http.StatusInternalServerError, nil)
		return
	}

	s.audit.LogAdminAction(senderID, req.ReceiverID, "TRADE_CREATED", tradeID)
	log.Printf("[TRADE] Trade %s created: %d -> %d, amount %d", tradeID, senderID, req.ReceiverID, amount)
	writeJSON(w, http.StatusCreated, trade)
}

// AcceptTrade releases an escrowed trade to the receiver
// @Summary Accept a trade
// @Description Accept a pending trade offered to the authenticated user
// @Tags trades
// @Produce json
// @Param tradeId path string true "Trade ID"
// @Success 200 {object} models.Trade
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /trades/{tradeId}/accept [post]
func (s *TradeService) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	tradeID := chi.URLParam(r, "tradeId")

	trade, err := s.settleTrade(tradeID, userID, true)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	log.Printf("[TRADE] Trade %s accepted by user %d", tradeID, userID)
	writeJSON(w, http.StatusOK, trade)
}

// CancelTrade refunds an escrowed trade to the sender
// @Summary Cancel a trade
// @Description Cancel a pending trade; either party may cancel, the escrowed amount returns to the sender
// @Tags trades
// @Produce json
// @Param tradeId path string true "Trade ID"
// @Success 200 {object} models.Trade
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /trades/{tradeId}/cancel [post]
func (s *TradeService) CancelTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	tradeID := chi.URLParam(r, "tradeId")

	trade, err := s.settleTrade(tradeID, userID, false)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	log.Printf("[TRADE] Trade %s cancelled by user %d", tradeID, userID)
	writeJSON(w, http.StatusOK, trade)
}

// ListTrades lists the caller's trades
// @Summary List trades
// @Description Get trades where the authenticated user is sender or receiver
// @Tags trades
// @Produce json
// @Param status query string false "Filter by status (pending, completed, cancelled)"
// @Success 200 {object} object{trades=[]models.Trade,count=int}
// @Failure 401 {object} ErrorResponse
// @Router /trades [get]
func (s *TradeService) ListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	query := `
		SELECT id, sender_id, receiver_id, amount, message, status, created_at, completed_at
		FROM trades
		WHERE (sender_id = $1 OR receiver_id = $1)`
	args := []any{userID}
	if status := r.URL.Query().Get("status"); status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT 50`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Printf("[TRADE] Failed to list trades for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch trades", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		var t models.Trade
		if err := rows.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.Message, &t.Status, &t.CreatedAt, &t.CompletedAt); err != nil {
			SendErrorResponse(w, "Failed to fetch trades", http.StatusInternalServerError, nil)
			return
		}
		trades = append(trades, t)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"count":  len(trades),
	})
}

// settleTrade resolves a pending trade. accept=true pays the receiver,
// accept=false refunds the sender. The trade row is locked so double
// settlement is impossible.
func (s *TradeService) settleTrade(tradeID string, userID int, accept bool) (*models.Trade, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var trade models.Trade
	err = tx.QueryRow(`
		SELECT id, sender_id, receiver_id, amount, message, status, created_at
		FROM trades
		WHERE id = $1
		FOR UPDATE`, tradeID).Scan(
		&trade.ID, &trade.SenderID, &trade.ReceiverID, &trade.Amount, &trade.Message, &trade.Status, &trade.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTradeNotFound
		}
		return nil, err
	}

	if trade.Status != models.TradePending {
		return nil, models.ErrTradeNotPending
	}

	if accept {
		// Only the receiver may accept.
		if userID != trade.ReceiverID {
			return nil, models.ErrNotTradeParty
		}
		desc := fmt.Sprintf("trade %s from user %d", trade.ID, trade.SenderID)
		if _, err := s.ledger.ApplyDeltaTx(tx, trade.ReceiverID, trade.Amount, models.CategoryTradeReceive, desc); err != nil {
			return nil, err
		}
		trade.Status = models.TradeCompleted
	} else {
		if userID != trade.SenderID && userID != trade.ReceiverID {
			return nil, models.ErrNotTradeParty
		}
		desc := fmt.Sprintf("trade %s refund", trade.ID)
		if _, err := s.ledger.ApplyDeltaTx(tx, trade.SenderID, trade.Amount, models.CategoryTradeRefund, desc); err != nil {
			return nil, err
		}
		trade.Status = models.TradeCancelled
	}

	now := time.Now()
	trade.CompletedAt = &now
	result, err := tx.Exec(`
		UPDATE trades
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4`,
		trade.Status, now, trade.ID, models.TradePending)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.ErrTradeNotPending
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &trade, nil
}
