package models

import (
	"encoding/json"
	"time"
)

type GameType string

const (
	GamePlinko    GameType = "plinko"
	GameCups      GameType = "cups"
	GameRoulette  GameType = "roulette"
	GameSlide     GameType = "slide"
	GameJackpot   GameType = "jackpot"
	GameBlackjack GameType = "blackjack"
	GamePoker     GameType = "poker"
	GameMines     GameType = "mines"
	GameCases     GameType = "cases"
	GameTowers    GameType = "towers"
)

var allGameTypes = map[GameType]bool{
	GamePlinko: true, GameCups: true, GameRoulette: true, GameSlide: true,
	GameJackpot: true, GameBlackjack: true, GamePoker: true, GameMines: true,
	GameCases: true, GameTowers: true,
}

// Valid reports whether g names one of the ten supported games.
func (g GameType) Valid() bool {
	return allGameTypes[g]
}

// GameSession is the append-only record of one play, kept for statistics.
type GameSession struct {
	ID        int             `json:"id"`
	UserID    int             `json:"userId"`
	GameType  GameType        `json:"gameType"`
	BetAmount int64           `json:"betAmount"` // cents
	WinAmount int64           `json:"winAmount"` // cents, 0 on loss
	Outcome   json.RawMessage `json:"outcome"`   // game-specific payload
	Result    string          `json:"result"`    // win | lose | draw
	CreatedAt time.Time       `json:"createdAt"`
}

// GameBan is a per-game denylist entry; its presence means the user may not
// play that game type.
type GameBan struct {
	UserID    int       `json:"userId"`
	GameType  GameType  `json:"gameType"`
	Reason    string    `json:"reason"`
	BannedBy  int       `json:"bannedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerStats is derived from the game session log.
type PlayerStats struct {
	TotalWins     int   `json:"totalWins"`
	TotalWinnings int64 `json:"totalWinnings"` // cents
	GamesPlayed   int   `json:"gamesPlayed"`
	BiggestWin    int64 `json:"biggestWin"` // cents
}
