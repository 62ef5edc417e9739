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

// AdminService exposes the privileged operations: balance adjustments,
// platform and per-game bans, role changes. Route-level middleware gates the
// minimum role; the service additionally refuses any action against a target
// of equal or higher rank, so admins can never touch other admins or the
// owner.
type AdminService struct {
	db        *sql.DB
	ledger    *LedgerService
	audit     *AuditLogger
	validator *ValidationHelper
}

type AdjustBalanceRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0" example:"50.00"` // coins added
	Reason string  `json:"reason" validate:"required,max=200" example:"refund for voided round"`
}

type SetBalanceRequest struct {
	Balance float64 `json:"balance" validate:"gte=0" example:"1000.00"` // coins
	Reason  string  `json:"reason" validate:"required,max=200"`
}

type GameBanRequest struct {
	GameType models.GameType `json:"gameType" validate:"required" example:"mines"`
	Reason   string          `json:"reason" validate:"max=200"`
}

type SetRoleRequest struct {
	Role models.Role `json:"role" validate:"required" example:"admin"`
}

type SetVIPRequest struct {
	VIP bool `json:"vip" example:"true"`
}

func NewAdminService(db *sql.DB, ledger *LedgerService) *AdminService {
	return &AdminService{
		db:        db,
		ledger:    ledger,
		audit:     NewAuditLogger(),
		validator: NewValidationHelper(),
	}
}

// ListUsers lists all accounts
// @Summary List users
// @Description List user accounts with balances and roles (admin only)
// @Tags admin
// @Produce json
// @Param limit query int false "Number of users to return (default: 50, max: 200)"
// @Success 200 {object} object{users=[]models.User,count=int}
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (s *AdminService) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	rows, err := s.db.Query(`
		SELECT id, username, email, role, vip, banned, balance, created_at
		FROM users
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		log.Printf("[ADMIN] Failed to list users: %v", err)
		SendErrorResponse(w, "Failed to fetch users", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.VIP, &u.Banned, &u.Balance, &u.CreatedAt); err != nil {
			SendErrorResponse(w, "Failed to fetch users", http.StatusInternalServerError, nil)
			return
		}
		users = append(users, u)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// AdjustBalance credits coins to a user's wallet. Admin adjustments are
// additive only; removing coins is an owner-level SetBalance.
// @Summary Credit a user's balance
// @Description Add coins to a user's wallet with an audited reason (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Param userId path int true "Target user ID"
// @Param request body AdjustBalanceRequest true "Amount and reason"
// @Success 200 {object} object{userId=int,balance=number}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{userId}/adjust [post]
func (s *AdminService) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := s.actorAndTarget(w, r)
	if !ok {
		return
	}

	var req AdjustBalanceRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	delta := models.ToCents(req.Amount)
	if delta <= 0 {
		SendErrorResponse(w, "Amount must be positive", http.StatusBadRequest, nil)
		return
	}

	if err := s.requireOutranks(actorID, targetID); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	desc := fmt.Sprintf("admin %d: %s", actorID, req.Reason)
	balance, err := s.ledger.ApplyDelta(targetID, delta, models.CategoryAdminAdjustment, desc)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	s.audit.LogAdminAction(actorID, targetID, "BALANCE_ADJUSTED", req.Reason)
	log.Printf("[ADMIN] User %d adjusted balance of user %d by %d", actorID, targetID, delta)
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  targetID,
		"balance": models.FromCents(balance),
	})
}

// SetBalance overwrites a user's wallet balance
// @Summary Set a user's balance
// @Description Overwrite a user's wallet balance outright (owner only)
// @Tags admin
// @Accept json
// @Produce json
// @Param userId path int true "Target user ID"
// @Param request body SetBalanceRequest true "New balance and reason"
// @Success 200 {object} object{userId=int,balance=number}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /owner/users/{userId}/balance [put]
func (s *AdminService) SetBalance(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := s.actorAndTarget(w, r)
	if !ok {
		return
	}

	var req SetBalanceRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		SendErrorResponse(w, "Failed to set balance", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	desc := fmt.Sprintf("owner %d: %s", actorID, req.Reason)
	balance, err := s.ledger.SetBalanceTx(tx, targetID, models.ToCents(req.Balance), models.CategoryAdminAdjustment, desc)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	if err := tx.Commit(); err != nil {
		SendErrorResponse(w, "Failed to set balance", http.StatusInternalServerError, nil)
		return
	}

	s.audit.LogAdminAction(actorID, targetID, "BALANCE_SET", req.Reason)
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  targetID,
		"balance": models.FromCents(balance),
	})
}

// BanUser bans an account from the platform
// @Summary Ban a user
// @Description Ban a user from the whole platform; banned users cannot authenticate (admin only)
// @Tags admin
// @Produce json
// @Param userId path int true "Target user ID"
// @Success 200 {object} object{userId=int,banned=bool}
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{userId}/ban [post]
func (s *AdminService) BanUser(w http.ResponseWriter, r *http.Request) {
	s.setBanned(w, r, true)
}

// UnbanUser lifts a platform ban
// @Summary Unban a user
// @Description Lift a platform ban (admin only)
// @Tags admin
// @Produce json
// @Param userId path int true "Target user ID"
// @Success 200 {object} object{userId=int,banned=bool}
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{userId}/unban [post]
func (s *AdminService) UnbanUser(w http.ResponseWriter, r *http.Request) {
	s.setBanned(w, r, false)
}

// BanFromGame bans a user from one game type
// @Summary Ban a user from a game
// @Description Ban a user from a single game type; other games stay available (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Param userId path int true "Target user ID"
// @Param request body GameBanRequest true "Game type and reason"
// @Success 201 {object} models.GameBan
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{userId}/game-bans [post]
func (s *AdminService) BanFromGame(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := s.actorAndTarget(w, r)
	if !ok {
		return
	}

	var req GameBanRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if !req.GameType.Valid() {
		SendErrorResponse(w, "Unknown game type", http.StatusBadRequest, nil)
		return
	}

	if err := s.requireOutranks(actorID, targetID); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	ban := models.GameBan{
		UserID:    targetID,
		GameType:  req.GameType,
		Reason:    req.Reason,
		BannedBy:  actorID,
		CreatedAt: time.Now(),
	}
	_, err := s.db.Exec(`
		INSERT INTO game_bans (user_id, game_type, reason, banned_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, game_type) DO NOTHING`,
		ban.UserID, ban.GameType, ban.Reason, ban.BannedBy, ban.CreatedAt)
	if err != nil {
		log.Printf("[ADMIN] Failed to ban user %d from %s: %v", targetID, req.GameType, err)
		SendErrorResponse(w, "Failed to create game ban", http.StatusInternalServerError, nil)
		return
	}

	s.audit.LogAdminAction(actorID, targetID, "GAME_BAN", string(req.GameType))
	writeJSON(w, http.StatusCreated, ban)
}

// UnbanFromGame lifts a game ban
// @Summary Lift a game ban
// @Description Remove a user's ban from one game type (admin only)
// @Tags admin
// @Produce json
// @Param userId path int true "Target user ID"
// @Param gameType path string true "Game type"
// @Success 200 {object} object{userId=int,gameType=string}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{userId}/game-bans/{gameType} [delete]
func (s *AdminService) UnbanFromGame(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := s.actorAndTarget(w, r)
	if !ok {
		return
	}
	gameType := models.GameType(chi.URLParam(r, "gameType"))
	if !gameType.Valid() {
		SendErrorResponse(w, "Unknown game type", http.StatusBadRequest, nil)
		return
	}

	result, err := s.db.Exec(`
		DELETE FROM game_bans WHERE user_id = $1 AND game_type = $2`,
		targetID, gameType)
	if err != nil {
		SendErrorResponse(w, "Failed to lift game ban", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "Game ban not found", http.StatusNotFound, nil)
		return
	}

	s.audit.LogAdminAction(actorID, targetID, "GAME_UNBAN", string(gameType))
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":   targetID,
		"gameType": gameType,
	})
}

// SetRole changes a user's role
// @Summary Set a user's role
// @Description Promote or demote a user between user and admin (owner only)
// @Tags admin
// @Accept json
// @Produce json
// @Param userId path int true "Target user ID"
// @Param request body SetRoleRequest true "New role"
// @Success 200 {object} object{userId=int,role=string}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /owner/users/{userId}/role [put]
func (s *AdminService) SetRole(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := s.actorAndTarget(w, r)
	if !ok {
		return
	}

	var req SetRoleRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	// The owner role is singular and never granted over the API.
	if !req.Role.Valid() || req.Role == models.RoleOwner {
		SendErrorResponse(w, "Role must be user or admin", http.StatusBadRequest, nil)
		return
	}
	if targetID == actorID {
		SendErrorResponse(w, "Cannot change your own role", http.StatusBadRequest, nil)
		return
	}

	targetRole, err := s.fetchRole(targetID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	if targetRole == models.RoleOwner {
		SendErrorResponse(w, "Cannot change the owner's role", http.StatusForbidden, nil)
		return
	}

	if _, err := s.db.Exec(`
		UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
		req.Role, time.Now(), targetID); err != nil {
		SendErrorResponse(w, "Failed to update role", http.StatusInternalServerError, nil)
		return
	}

	s.audit.LogAdminAction(actorID, targetID, "ROLE_CHANGED", string(req.Role))
	log.Printf("[ADMIN] User %d set role of user %d to %s", actorID, targetID, req.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": targetID,
		"role":   req.Role,
	})
}

// SetVIP toggles a user's VIP flag
// @Summary Set VIP status
// @Description Grant or revoke a user's cosmetic VIP status (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Param userId path int true "Target user ID"
// @Param request body SetVIPRequest true "VIP flag"
// @Success 200 {object} object{userId=int,vip=bool}
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{userId}/vip [put]
func (s *AdminService) SetVIP(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := s.actorAndTarget(w, r)
	if !ok {
		return
	}

	var req SetVIPRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := s.requireOutranks(actorID, targetID); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	result, err := s.db.Exec(`
		UPDATE users SET vip = $1, updated_at = $2 WHERE id = $3`,
		req.VIP, time.Now(), targetID)
	if err != nil {
		SendErrorResponse(w, "Failed to update user", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		return
	}

	s.audit.LogAdminAction(actorID, targetID, "VIP_CHANGED", strconv.FormatBool(req.VIP))
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": targetID,
		"vip":    req.VIP,
	})
}

func (s *AdminService) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	actorID, targetID, ok := s.actorAndTarget(w, r)
	if !ok {
		return
	}

	if err := s.requireOutranks(actorID, targetID); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	result, err := s.db.Exec(`
		UPDATE users SET banned = $1, updated_at = $2 WHERE id = $3`,
		banned, time.Now(), targetID)
	if err != nil {
		SendErrorResponse(w, "Failed to update user", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		return
	}

	action := "USER_UNBANNED"
	if banned {
		action = "USER_BANNED"
	}
	s.audit.LogAdminAction(actorID, targetID, action, "")
	log.Printf("[ADMIN] User %d set banned=%t on user %d", actorID, banned, targetID)
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": targetID,
		"banned": banned,
	})
}

func (s *AdminService) actorAndTarget(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	actorID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return 0, 0, false
	}
	targetID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return 0, 0, false
	}
	return actorID, targetID, true
}

// requireOutranks refuses any action where the actor does not strictly
// outrank the target.
func (s *AdminService) requireOutranks(actorID, targetID int) error {
	actorRole, err := s.fetchRole(actorID)
	if err != nil {
		return err
	}
	targetRole, err := s.fetchRole(targetID)
	if err != nil {
		return err
	}
	if actorRole.Level() <= targetRole.Level() {
		return models.ErrForbidden
	}
	return nil
}

func (s *AdminService) fetchRole(userID int) (models.Role, error) {
	var role models.Role
	err := s.db.QueryRow(`SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", models.ErrUserNotFound
		}
		return "", err
	}
	return role, nil
}
