package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

var (
	redisClient *redis.Client
	db          *sql.DB
)

// InitAuthMiddleware wires the token blacklist and the user store into the
// auth middleware.
func InitAuthMiddleware(rdb *redis.Client, database *sql.DB) {
	redisClient = rdb
	db = database
}

// AuthMiddleware validates the bearer token, rejects blacklisted tokens,
// and loads the caller's current role and ban state from the database on
// every request, so platform bans and demotions take effect immediately.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}
		token := parts[1]

		if redisClient != nil {
			key := fmt.Sprintf("blacklist:%s", token)
			if exists, err := redisClient.Exists(r.Context(), key).Result(); err == nil && exists > 0 {
				http.Error(w, "Token revoked", http.StatusUnauthorized)
				return
			}
		}

		userID, err := validateToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		var role models.Role
		var banned bool
		err = db.QueryRow(`SELECT role, banned FROM users WHERE id = $1`, userID).Scan(&role, &banned)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if banned {
			http.Error(w, "Account is banned", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", userID)
		ctx = context.WithValue(ctx, "userRole", role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route group behind a minimum role.
func RequireRole(required models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value("userRole").(models.Role)
			if !ok || !role.HasAtLeast(required) {
				http.Error(w, "Insufficient privileges", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validateToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	})

	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("missing user_id claim")
	}
	return int(userID), nil
}
