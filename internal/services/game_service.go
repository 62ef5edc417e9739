package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/games"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"
)

// GameService settles plays: it checks the wallet covers the bet, runs the
// pure outcome engine, applies the round's net delta, and journals the
// session. The engines never see the database; this service never computes
// odds.
type GameService struct {
	db        *sql.DB
	ledger    *LedgerService
	jackpot   *JackpotPool
	audit     *AuditLogger
	validator *ValidationHelper

	rngMu sync.Mutex
	rng   *rand.Rand

	minBet int64
	maxBet int64
}

type PlayRequest struct {
	Bet    float64         `json:"bet" validate:"gte=0" example:"10.00"` // coins; ignored for cases
	Params json.RawMessage `json:"params,omitempty"`
}

type PlayResponse struct {
	GameType   models.GameType `json:"gameType"`
	BetAmount  float64         `json:"betAmount"`
	WinAmount  float64         `json:"winAmount"`
	Multiplier float64         `json:"multiplier"`
	Result     games.Result    `json:"result"`
	JackpotWon float64         `json:"jackpotWon,omitempty"`
	Details    map[string]any  `json:"details"`
	Balance    float64         `json:"balance"`
}

func NewGameService(db *sql.DB, ledger *LedgerService, jackpot *JackpotPool) *GameService {
	viper.SetDefault("games.min_bet", 1.00)
	viper.SetDefault("games.max_bet", 10_000.00)

	return &GameService{
		db:        db,
		ledger:    ledger,
		jackpot:   jackpot,
		audit:     NewAuditLogger(),
		validator: NewValidationHelper(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		minBet:    models.ToCents(viper.GetFloat64("games.min_bet")),
		maxBet:    models.ToCents(viper.GetFloat64("games.max_bet")),
	}
}

// Reseed swaps in a fresh randomness source. Wired to a daily cron job.
func (s *GameService) Reseed() {
	s.rngMu.Lock()
	s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	s.rngMu.Unlock()
	log.Printf("[GAME] RNG reseeded")
}

// Play resolves one round of a game
// @Summary Play a game
// @Description Place a bet on one of the ten games and settle the outcome atomically
// @Tags games
// @Accept json
// @Produce json
// @Param gameType path string true "Game type (plinko, cups, roulette, slide, jackpot, blackjack, poker, mines, cases, towers)"
// @Param request body PlayRequest true "Bet and game parameters"
// @Success 200 {object} PlayResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /games/{gameType}/play [post]
func (s *GameService) Play(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	gameType := models.GameType(chi.URLParam(r, "gameType"))
	if !gameType.Valid() {
		SendErrorResponse(w, "Unknown game type", http.StatusNotFound, nil)
		return
	}

	var req PlayRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	banned, err := s.isGameBanned(userID, gameType)
	if err != nil {
		log.Printf("[GAME] Ban check failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to process play", http.StatusInternalServerError, nil)
		return
	}
	if banned {
		SendErrorResponse(w, "You are banned from this game", http.StatusForbidden, nil)
		return
	}

	bet := models.ToCents(req.Bet)
	if gameType == models.GameCases {
		// Cases have fixed prices; the posted bet is ignored.
		var p games.CasesParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		bet, err = games.CaseCost(p.CaseType)
		if err != nil {
			SendErrorResponse(w, err.Error(), statusForError(err), nil)
			return
		}
	} else if bet < s.minBet || bet > s.maxBet {
		SendErrorResponse(w, fmt.Sprintf("Bet must be between %.2f and %.2f",
			models.FromCents(s.minBet), models.FromCents(s.maxBet)), http.StatusBadRequest, nil)
		return
	}

	// The wallet must cover the bet before any randomness is drawn.
	var walletBalance int64
	if err := s.db.QueryRow(`SELECT balance FROM users WHERE id = $1`, userID).Scan(&walletBalance); err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		} else {
			log.Printf("[GAME] Balance check failed for user %d: %v", userID, err)
			SendErrorResponse(w, "Failed to process play", http.StatusInternalServerError, nil)
		}
		return
	}
	if walletBalance < bet {
		SendErrorResponse(w, models.ErrInsufficientFunds.Error(), http.StatusBadRequest, nil)
		return
	}

	outcome, err := s.runEngine(gameType, bet, req.Params)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	// A crown triple on jackpot slots pays the whole pool.
	var jackpotWon int64
	if outcome.JackpotHit {
		jackpotWon = s.jackpot.Claim(r.Context())
		outcome.WinAmount = jackpotWon
	}

	balance, err := s.settle(userID, gameType, bet, outcome)
	if err != nil {
		if jackpotWon > 0 {
			// Settlement failed after the pot was taken; put it back.
			s.jackpot.Restore(r.Context(), jackpotWon)
		}
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	if gameType == models.GameJackpot {
		s.jackpot.Feed(r.Context(), bet)
	}

	log.Printf("[GAME] User %d played %s: bet %d, win %d, result %s", userID, gameType, bet, outcome.WinAmount, outcome.Result)
	writeJSON(w, http.StatusOK, PlayResponse{
		GameType:   gameType,
		BetAmount:  models.FromCents(bet),
		WinAmount:  models.FromCents(outcome.WinAmount),
		Multiplier: outcome.Multiplier,
		Result:     outcome.Result,
		JackpotWon: models.FromCents(jackpotWon),
		Details:    outcome.Details,
		Balance:    models.FromCents(balance),
	})
}

// GetJackpot returns the current jackpot pool
// @Summary Get jackpot pool
// @Description Get the current progressive jackpot pool balance
// @Tags games
// @Produce json
// @Success 200 {object} object{pool=number}
// @Router /games/jackpot [get]
func (s *GameService) GetJackpot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"pool": models.FromCents(s.jackpot.Current(r.Context())),
	})
}

// GetStats returns the caller's play statistics
// @Summary Get player statistics
// @Description Get win counts, totals and biggest win for the authenticated user
// @Tags games
// @Produce json
// @Success 200 {object} models.PlayerStats
// @Failure 401 {object} ErrorResponse
// @Router /games/stats [get]
func (s *GameService) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	s.writeStats(w, userID)
}

// GetUserStats returns another player's statistics
// @Summary Get a player's statistics
// @Description Get play statistics for any user by ID
// @Tags games
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.PlayerStats
// @Failure 404 {object} ErrorResponse
// @Router /games/stats/{userId} [get]
func (s *GameService) GetUserStats(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}
	s.writeStats(w, targetID)
}

// GetLeaderboard lists the top winners
// @Summary Get leaderboard
// @Description Get the top players ranked by total winnings
// @Tags games
// @Produce json
// @Param limit query int false "Number of entries (default: 10, max: 50)"
// @Success 200 {object} object{leaderboard=[]object{userId=int,username=string,totalWinnings=number,totalWins=int}}
// @Router /games/leaderboard [get]
func (s *GameService) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	rows, err := s.db.Query(`
		SELECT u.id, u.username,
		       COALESCE(SUM(g.win_amount), 0) AS total_winnings,
		       COUNT(*) FILTER (WHERE g.result = 'win') AS total_wins
		FROM users u
		JOIN game_sessions g ON g.user_id = u.id
		GROUP BY u.id, u.username
		ORDER BY total_winnings DESC
		LIMIT $1`, limit)
	if err != nil {
		log.Printf("[GAME] Failed to fetch leaderboard: %v", err)
		SendErrorResponse(w, "Failed to fetch leaderboard", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	leaderboard := []map[string]any{}
	for rows.Next() {
		var id, wins int
		var username string
		var winnings int64
		if err := rows.Scan(&id, &username, &winnings, &wins); err != nil {
			SendErrorResponse(w, "Failed to fetch leaderboard", http.StatusInternalServerError, nil)
			return
		}
		leaderboard = append(leaderboard, map[string]any{
			"userId":        id,
			"username":      username,
			"totalWinnings": models.FromCents(winnings),
			"totalWins":     wins,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": leaderboard})
}

// GetHistory lists the caller's recent plays
// @Summary List game history
// @Description Get the authenticated user's recent game sessions, newest first
// @Tags games
// @Produce json
// @Param limit query int false "Number of sessions (default: 20, max: 100)"
// @Success 200 {object} object{sessions=[]models.GameSession,count=int}
// @Failure 401 {object} ErrorResponse
// @Router /games/history [get]
func (s *GameService) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, game_type, bet_amount, win_amount, outcome, result, created_at
		FROM game_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		log.Printf("[GAME] Failed to fetch history for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch history", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	sessions := []models.GameSession{}
	for rows.Next() {
		var g models.GameSession
		if err := rows.Scan(&g.ID, &g.UserID, &g.GameType, &g.BetAmount, &g.WinAmount, &g.Outcome, &g.Result, &g.CreatedAt); err != nil {
			SendErrorResponse(w, "Failed to fetch history", http.StatusInternalServerError, nil)
			return
		}
		sessions = append(sessions, g)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// runEngine dispatches to the right outcome engine under the RNG lock.
func (s *GameService) runEngine(gameType models.GameType, bet int64, params json.RawMessage) (*games.Outcome, error) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	switch gameType {
	case models.GameRoulette:
		var p games.RouletteParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return games.PlayRoulette(bet, p, s.rng)
	case models.GameSlide:
		var p games.SlideParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return games.PlaySlide(bet, p, s.rng)
	case models.GamePlinko:
		var p games.PlinkoParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return games.PlayPlinko(bet, p, s.rng)
	case models.GameCups:
		var p games.CupsParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return games.PlayCups(bet, p, s.rng)
	case models.GameJackpot:
		return games.PlaySlots(bet, s.rng)
	case models.GameMines:
		var p games.MinesParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return games.PlayMines(bet, p, s.rng)
	case models.GameBlackjack:
		return games.PlayBlackjack(bet, s.rng)
	case models.GamePoker:
		return games.PlayPoker(bet, s.rng)
	case models.GameCases:
		var p games.CasesParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return games.PlayCases(p, s.rng)
	case models.GameTowers:
		var p games.TowersParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return games.PlayTowers(bet, p, s.rng)
	default:
		return nil, models.ErrInvalidParams
	}
}

// settle applies the round's net balance change and journals the session in
// one database transaction, so a crash can never take the bet without
// recording the outcome. The ledger sees exactly one entry per round.
func (s *GameService) settle(userID int, gameType models.GameType, bet int64, outcome *games.Outcome) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	net := outcome.WinAmount - bet
	category := models.CategoryGameLoss
	if net >= 0 {
		category = models.CategoryGameWin
	}
	balance, err := s.ledger.ApplyDeltaTx(tx, userID, net, category, fmt.Sprintf("%s round", gameType))
	if err != nil {
		return 0, err
	}

	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`
		INSERT INTO game_sessions (user_id, game_type, bet_amount, win_amount, outcome, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, gameType, bet, outcome.WinAmount, outcomeJSON, outcome.Result, time.Now()); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *GameService) writeStats(w http.ResponseWriter, userID int) {
	var stats models.PlayerStats
	err := s.db.QueryRow(`
		SELECT COUNT(*) FILTER (WHERE result = 'win'),
		       COALESCE(SUM(win_amount), 0),
		       COUNT(*),
		       COALESCE(MAX(win_amount), 0)
		FROM game_sessions
		WHERE user_id = $1`, userID).Scan(
		&stats.TotalWins, &stats.TotalWinnings, &stats.GamesPlayed, &stats.BiggestWin)
	if err != nil {
		log.Printf("[GAME] Failed to fetch stats for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch stats", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *GameService) isGameBanned(userID int, gameType models.GameType) (bool, error) {
	var banned bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM game_bans WHERE user_id = $1 AND game_type = $2)`,
		userID, gameType).Scan(&banned)
	return banned, err
}

func unmarshalParams(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidParams, err)
	}
	return nil
}
