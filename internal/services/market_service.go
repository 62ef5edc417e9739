package services

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	marketPriceKey = "market:price"
	// Price bounds in micro-dollars per coin; the walk reflects off them.
	marketFloor   = 100_000    // $0.10
	marketCeiling = 10_000_000 // $10.00
	marketStart   = 1_000_000  // $1.00
	// marketMaxStepPct bounds one tick's relative move.
	marketMaxStepPct = 0.03
)

// MarketService simulates a cosmetic exchange rate for the coin. A cron job
// nudges the price every minute with a bounded random walk; the current
// value is published to Redis so all instances quote the same rate. The
// price buys nothing, it exists for flavor.
type MarketService struct {
	redis *redis.Client
	rng   *rand.Rand

	mu    sync.RWMutex
	price int64 // micro-dollars per coin
}

func NewMarketService(redisClient *redis.Client) *MarketService {
	s := &MarketService{
		redis: redisClient,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		price: marketStart,
	}
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if val, err := redisClient.Get(ctx, marketPriceKey).Result(); err == nil {
			if p, err := strconv.ParseInt(val, 10, 64); err == nil {
				s.price = p
			}
		}
	}
	return s
}

// Tick advances the random walk one step. Wired to a 60-second cron job.
func (s *MarketService) Tick() {
	s.mu.Lock()
	step := (s.rng.Float64()*2 - 1) * marketMaxStepPct
	price := int64(float64(s.price) * (1 + step))
	if price < marketFloor {
		price = marketFloor
	}
	if price > marketCeiling {
		price = marketCeiling
	}
	s.price = price
	s.mu.Unlock()

	if s.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redis.Set(ctx, marketPriceKey, price, 0).Err(); err != nil {
			log.Printf("[MARKET] Failed to publish price: %v", err)
		}
	}
}

// GetPrice returns the current simulated exchange rate
// @Summary Get market price
// @Description Get the current simulated coin exchange rate in USD
// @Tags market
// @Produce json
// @Success 200 {object} object{price=number,currency=string,updatedAt=string}
// @Router /market/price [get]
func (s *MarketService) GetPrice(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	price := s.price
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"price":     float64(price) / 1_000_000,
		"currency":  "USD",
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}
