package services

import (
	"context"
	cryptorand "crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"
)

// WelcomeBonus is credited once when an account is created.
const WelcomeBonus int64 = 100_000 // cents, 1,000.00 coins

type AuthService struct {
	db        *sql.DB
	redis     *redis.Client
	ledger    *LedgerService
	validator *validator.Validate
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum" example:"highroller99"` // Display / login name
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`               // User email address
	Password string `json:"password" validate:"required,min=6" example:"password123"`                 // User password
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"highroller99"`      // Login name
	Password string `json:"password" validate:"required,min=6" example:"password123"` // User password
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	User  models.User `json:"user"`                                                    // User information
}

func NewAuthService(db *sql.DB, redisClient *redis.Client, ledger *LedgerService) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		ledger:    ledger,
		validator: validator.New(),
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new account; the wallet opens with the welcome bonus
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 200 {object} AuthResponse "Registration successful"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Username or email already exists"
// @Router /auth/register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	var req RegisterRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		log.Printf("[AUTH] Registration validation failed: %v", err)
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed for %s: %v", req.Username, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("[AUTH] Transaction start failed for %s: %v", req.Username, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	var userID int
	err = tx.QueryRow(`
		INSERT INTO users (username, email, password, role, vip, banned, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, 'user', false, false, 0, 1, NOW(), NOW())
		RETURNING id`,
		req.Username, strings.ToLower(req.Email), hashedPassword).Scan(&userID)
	if err != nil {
		log.Printf("[AUTH] User creation failed for %s: %v", req.Username, err)
		SendErrorResponse(w, "Username or email already exists", http.StatusConflict, nil)
		return
	}

	// Welcome bonus goes through the ledger so the journal starts at row one.
	balance, err := s.ledger.ApplyDeltaTx(tx, userID, WelcomeBonus, models.CategoryWelcomeBonus, "welcome bonus")
	if err != nil {
		log.Printf("[AUTH] Welcome bonus failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	if err = tx.Commit(); err != nil {
		log.Printf("[AUTH] Transaction commit failed for %s: %v", req.Username, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] User created successfully - ID: %d, Username: %s", userID, req.Username)

	token, err := generateJWT(userID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Token: token,
		User: models.User{
			ID:       userID,
			Username: req.Username,
			Email:    strings.ToLower(req.Email),
			Role:     models.RoleUser,
			Balance:  balance,
		},
	})
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Account banned"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	var req LoginRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		log.Printf("[AUTH] Login validation failed: %v", err)
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	var user models.User
	var hashedPassword string
	err := s.db.QueryRow(`
		SELECT id, username, email, password, role, vip, banned, balance
		FROM users
		WHERE username = $1`,
		req.Username).Scan(&user.ID, &user.Username, &user.Email, &hashedPassword, &user.Role, &user.VIP, &user.Banned, &user.Balance)
	if err != nil {
		log.Printf("[AUTH] User not found: %s", req.Username)
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	if !verifyPassword(req.Password, hashedPassword) {
		log.Printf("[AUTH] Invalid password for user: %s", req.Username)
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	if user.Banned {
		log.Printf("[AUTH] Banned user attempted login: %s", req.Username)
		SendErrorResponse(w, "Account is banned", http.StatusForbidden, nil)
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Login successful for user %d", user.ID)
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout user and blacklist the presented token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	if token != "" && len(token) > 7 {
		token = token[7:] // Remove "Bearer " prefix

		if s.redis != nil {
			ctx := context.Background()
			key := fmt.Sprintf("blacklist:%s", token)
			// Blacklist token until its expiration
			expiry := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
			if err := s.redis.Set(ctx, key, "1", expiry).Err(); err != nil {
				log.Printf("[AUTH] Failed to blacklist token: %v", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// GetProfile returns the authenticated user's account
// @Summary Get own profile
// @Description Get the authenticated user's account details
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/profile [get]
func (s *AuthService) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var user models.User
	err := s.db.QueryRow(`
		SELECT id, username, email, role, vip, banned, balance, created_at
		FROM users
		WHERE id = $1`,
		userID).Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.VIP, &user.Banned, &user.Balance, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		} else {
			log.Printf("[AUTH] Failed to fetch profile for user %d: %v", userID, err)
			SendErrorResponse(w, "Failed to fetch profile", http.StatusInternalServerError, nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func generateJWT(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, viper.GetInt("argon2.salt_length"))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return string(hash) == string(computedHash)
}
