package games

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTowersMultiplier(t *testing.T) {
	t.Run("one easy level", func(t *testing.T) {
		assert.InDelta(t, 0.96/0.75, TowersMultiplier("easy", 1), 1e-9)
	})

	t.Run("expected value is house factor to the level count", func(t *testing.T) {
		for difficulty, p := range towersSafeProb {
			for levels := 1; levels <= towersMaxLevels; levels++ {
				ev := math.Pow(p, float64(levels)) * TowersMultiplier(difficulty, levels)
				want := math.Pow(towersHouseEdge, float64(levels))
				assert.InDeltaf(t, want, ev, 1e-9, "%s levels=%d", difficulty, levels)
				assert.Less(t, ev, 1.0)
			}
		}
	})
}

func TestPlayTowers(t *testing.T) {
	t.Run("rejects unknown difficulty", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		_, err := PlayTowers(100, TowersParams{Difficulty: "brutal", Levels: 3}, rng)
		assert.Error(t, err)
	})

	t.Run("rejects bad level count", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		_, err := PlayTowers(100, TowersParams{Difficulty: "easy", Levels: 0}, rng)
		assert.Error(t, err)
		_, err = PlayTowers(100, TowersParams{Difficulty: "easy", Levels: 9}, rng)
		assert.Error(t, err)
	})

	t.Run("partial climb pays nothing", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 500; i++ {
			out, err := PlayTowers(100, TowersParams{Difficulty: "hard", Levels: 8}, rng)
			assert.NoError(t, err)
			cleared := out.Details["cleared"].(int)
			if cleared < 8 {
				assert.Equal(t, ResultLose, out.Result)
				assert.Zero(t, out.WinAmount)
			} else {
				assert.Equal(t, ResultWin, out.Result)
				assert.Equal(t, payout(100, TowersMultiplier("hard", 8)), out.WinAmount)
			}
		}
	})

	t.Run("long run return stays below stake", func(t *testing.T) {
		rng := rand.New(rand.NewSource(21))
		var total int64
		const rounds = 20000
		for i := 0; i < rounds; i++ {
			out, err := PlayTowers(100, TowersParams{Difficulty: "normal", Levels: 4}, rng)
			assert.NoError(t, err)
			total += out.WinAmount
		}
		ev := float64(total) / float64(100*rounds)
		assert.Less(t, ev, 1.0)
		assert.Greater(t, ev, 0.7)
	})
}
