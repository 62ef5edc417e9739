package games

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func slotsReels(a, b, c int64) *rand.Rand {
	return rand.New(&seqSource{values: []int64{a, b, c}})
}

func TestPlaySlots(t *testing.T) {
	t.Run("triple pays the symbol multiplier", func(t *testing.T) {
		out, err := PlaySlots(100, slotsReels(6, 6, 6)) // diamond
		assert.NoError(t, err)
		assert.Equal(t, ResultWin, out.Result)
		assert.Equal(t, float64(50), out.Multiplier)
		assert.Equal(t, int64(5000), out.WinAmount)
	})

	t.Run("pair pays 1.5x", func(t *testing.T) {
		out, err := PlaySlots(100, slotsReels(0, 0, 3))
		assert.NoError(t, err)
		assert.Equal(t, ResultWin, out.Result)
		assert.Equal(t, int64(150), out.WinAmount)
	})

	t.Run("outer pair counts", func(t *testing.T) {
		out, err := PlaySlots(100, slotsReels(4, 2, 4))
		assert.NoError(t, err)
		assert.Equal(t, slotsPairMultiplier, out.Multiplier)
	})

	t.Run("no match loses", func(t *testing.T) {
		out, err := PlaySlots(100, slotsReels(0, 1, 2))
		assert.NoError(t, err)
		assert.Equal(t, ResultLose, out.Result)
		assert.Zero(t, out.WinAmount)
	})

	t.Run("crown triple raises jackpot without fixed payout", func(t *testing.T) {
		out, err := PlaySlots(100, slotsReels(7, 7, 7))
		assert.NoError(t, err)
		assert.True(t, out.JackpotHit)
		assert.Equal(t, ResultWin, out.Result)
		assert.Zero(t, out.WinAmount)
		assert.Zero(t, out.Multiplier)
	})

	t.Run("expected value below one excluding jackpot", func(t *testing.T) {
		// Exhaustive over all 512 reel combinations.
		var total int64
		jackpots := 0
		for a := int64(0); a < 8; a++ {
			for b := int64(0); b < 8; b++ {
				for c := int64(0); c < 8; c++ {
					out, err := PlaySlots(512, slotsReels(a, b, c))
					assert.NoError(t, err)
					if out.JackpotHit {
						jackpots++
					}
					total += out.WinAmount
				}
			}
		}
		assert.Equal(t, 1, jackpots)
		ev := float64(total) / float64(512*512)
		assert.Less(t, ev, 1.0)
		assert.Greater(t, ev, 0.5)
	})
}
