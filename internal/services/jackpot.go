package services

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	jackpotPoolKey = "jackpot:pool"
	// jackpotSeed is what the pool resets to after a win, so the next
	// winner is never paid zero.
	jackpotSeed int64 = 100_000 // cents
	// jackpotFeedRate is the share of every jackpot slots bet fed into
	// the pool.
	jackpotFeedRate = 0.05
)

// JackpotPool is the shared progressive pot for the jackpot slots game. The
// balance lives in Redis so it survives restarts and is shared across
// instances; a local pool stands in when Redis is unavailable.
type JackpotPool struct {
	redis *redis.Client

	mu    sync.Mutex
	local int64
}

func NewJackpotPool(redisClient *redis.Client) *JackpotPool {
	p := &JackpotPool{
		redis: redisClient,
		local: jackpotSeed,
	}
	if redisClient != nil {
		// Seed only if the key does not exist yet.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.SetNX(ctx, jackpotPoolKey, jackpotSeed, 0).Err(); err != nil {
			log.Printf("[JACKPOT] Failed to seed pool: %v", err)
		}
	}
	return p
}

// Feed adds the pool's cut of a bet.
func (p *JackpotPool) Feed(ctx context.Context, bet int64) {
	cut := int64(float64(bet) * jackpotFeedRate)
	if cut <= 0 {
		return
	}
	if p.redis != nil {
		if err := p.redis.IncrBy(ctx, jackpotPoolKey, cut).Err(); err != nil {
			log.Printf("[JACKPOT] Failed to feed pool: %v", err)
		}
		return
	}
	p.mu.Lock()
	p.local += cut
	p.mu.Unlock()
}

// Current returns the pool balance without changing it.
func (p *JackpotPool) Current(ctx context.Context) int64 {
	if p.redis != nil {
		val, err := p.redis.Get(ctx, jackpotPoolKey).Result()
		if err != nil {
			if err != redis.Nil {
				log.Printf("[JACKPOT] Failed to read pool: %v", err)
			}
			return jackpotSeed
		}
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.local
}

// Restore returns a claimed amount to the pool after a failed settlement.
func (p *JackpotPool) Restore(ctx context.Context, amount int64) {
	if amount <= jackpotSeed {
		return
	}
	if p.redis != nil {
		if err := p.redis.IncrBy(ctx, jackpotPoolKey, amount-jackpotSeed).Err(); err != nil {
			log.Printf("[JACKPOT] Failed to restore pool: %v", err)
		}
		return
	}
	p.mu.Lock()
	p.local += amount - jackpotSeed
	p.mu.Unlock()
}

// Claim empties the pool back to the seed and returns what was claimed.
// The swap is atomic so two simultaneous crown triples cannot both take the
// full pot.
func (p *JackpotPool) Claim(ctx context.Context) int64 {
	if p.redis != nil {
		val, err := p.redis.GetSet(ctx, jackpotPoolKey, jackpotSeed).Result()
		if err != nil {
			if err != redis.Nil {
				log.Printf("[JACKPOT] Failed to claim pool: %v", err)
			}
			return jackpotSeed
		}
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	won := p.local
	p.local = jackpotSeed
	return won
}
