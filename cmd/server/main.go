package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/PillowXYXx/bamerCoinHub-sub000/docs"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/database"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/handlers"
	mW "github.com/PillowXYXx/bamerCoinHub-sub000/internal/middleware"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/models"
	"github.com/PillowXYXx/bamerCoinHub-sub000/internal/services"
)

// @title Coin Casino Backend API
// @version 1.0
// @description API for the virtual coin casino economy
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()        // read .env file

	// Set environment variable prefix
	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("games.min_bet", "GAMES_MIN_BET")
	viper.BindEnv("games.max_bet", "GAMES_MAX_BET")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Coin Casino Backend API"
	docs.SwaggerInfo.Description = "API for the virtual coin casino economy"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	ledgerService := services.NewLedgerService(db)
	jackpotPool := services.NewJackpotPool(redisClient)
	gameService := services.NewGameService(db, ledgerService, jackpotPool)
	tradeService := services.NewTradeService(db, ledgerService)
	bankService := services.NewBankService(db, ledgerService)
	redeemService := services.NewRedeemService(db, redisClient, ledgerService)
	adminService := services.NewAdminService(db, ledgerService)
	authService := services.NewAuthService(db, redisClient, ledgerService)
	marketService := services.NewMarketService(redisClient)
	qrHandler := handlers.NewQRHandler(redeemService)

	// Initialize auth middleware with Redis and the user store
	mW.InitAuthMiddleware(redisClient, db)

	// Scheduled jobs: market price walk every minute, RNG reseed daily
	scheduler := cron.New()
	scheduler.AddFunc("@every 1m", marketService.Tick)
	scheduler.AddFunc("@daily", gameService.Reseed)
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)
		r.Get("/market/price", marketService.GetPrice)
		r.Get("/games/jackpot", gameService.GetJackpot)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/profile", authService.GetProfile)

			r.Get("/wallet/balance", ledgerService.GetBalance)
			r.Get("/wallet/balance/{userId}", ledgerService.GetUserBalance)
			r.Get("/wallet/transactions", ledgerService.GetTransactions)

			r.Post("/trades", tradeService.CreateTrade)
			r.Get("/trades", tradeService.ListTrades)
			r.Post("/trades/{tradeId}/accept", tradeService.AcceptTrade)
			r.Post("/trades/{tradeId}/cancel", tradeService.CancelTrade)

			r.Get("/bank", bankService.GetAccount)
			r.Post("/bank/deposit", bankService.Deposit)
			r.Post("/bank/withdraw", bankService.Withdraw)
			r.Get("/bank/transactions", bankService.GetHistory)

			r.Post("/redeem/{code}", redeemService.RedeemCode)

			r.Post("/games/{gameType}/play", gameService.Play)
			r.Get("/games/stats", gameService.GetStats)
			r.Get("/games/stats/{userId}", gameService.GetUserStats)
			r.Get("/games/leaderboard", gameService.GetLeaderboard)
			r.Get("/games/history", gameService.GetHistory)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(mW.RequireRole(models.RoleAdmin))

				r.Get("/admin/users", adminService.ListUsers)
				r.Post("/admin/users/{userId}/adjust", adminService.AdjustBalance)
				r.Post("/admin/users/{userId}/ban", adminService.BanUser)
				r.Post("/admin/users/{userId}/unban", adminService.UnbanUser)
				r.Put("/admin/users/{userId}/vip", adminService.SetVIP)
				r.Post("/admin/users/{userId}/game-bans", adminService.BanFromGame)
				r.Delete("/admin/users/{userId}/game-bans/{gameType}", adminService.UnbanFromGame)

				r.Get("/redeem/codes", redeemService.ListCodes)
				r.Get("/redeem/codes/{code}/qr", qrHandler.GenerateCodeQR)
			})

			// Owner endpoints
			r.Group(func(r chi.Router) {
				r.Use(mW.RequireRole(models.RoleOwner))

				r.Put("/owner/users/{userId}/balance", adminService.SetBalance)
				r.Put("/owner/users/{userId}/role", adminService.SetRole)
				r.Post("/redeem/codes", redeemService.CreateCode)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
