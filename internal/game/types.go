// internal/game/types.go
//
// Core type definitions for the Unscramble game engine.
// Defines:
//   - State: coarse phase of a session (in_round/complete).
//   - Config: per-session knobs (word pool, rounds, score increment, RNG).
//   - Snapshot: the display-ready view handed to presentation layers.
//   - Sentinel errors for pool misconfiguration and finished sessions.

package game

import (
	"errors"
	"math/rand/v2"
)

// State is the coarse phase of a session.
type State string

const (
	StateInRound  State = "in_round"
	StateComplete State = "complete"
)

const (
	// DefaultMaxRounds is the number of words presented per game.
	DefaultMaxRounds = 10
	// DefaultScoreIncrease is awarded for every correct guess.
	DefaultScoreIncrease = 20
)

var (
	ErrPoolTooSmall   = errors.New("game: word pool smaller than max rounds")
	ErrUnscrambleable = errors.New("game: word cannot be scrambled")
	ErrPoolExhausted  = errors.New("game: no unused words left in pool")
	ErrFinished       = errors.New("game finished")
)

// Config describes a session. Zero values fall back to the defaults above;
// a nil Rand is replaced by a crypto-seeded ChaCha8 source.
type Config struct {
	Words         []string   // candidate pool; copied on New
	MaxRounds     int        // words per game
	ScoreIncrease int        // points per correct guess
	Rand          *rand.Rand // source for word choice and shuffling
}

// Snapshot is everything a presentation layer may render.
// The current word is never included.
type Snapshot struct {
	ID            string `json:"id"`
	Score         int    `json:"score"`
	Round         int    `json:"round"`
	MaxRounds     int    `json:"maxRounds"`
	ScoreIncrease int    `json:"scoreIncrease"`
	Scrambled     string `json:"scrambled"`
	Spelled       string `json:"spelled"` // letters separated by spaces, read verbatim by screen readers
	State         State  `json:"state"`
}
