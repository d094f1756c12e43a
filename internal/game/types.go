// internal/game/types.go
//
// Core type definitions for the number-guessing round engine.
// Defines:
//   - State: Pending → Active → Finished.
//   - Outcome: how a finished round ended (success / abandoned).
//   - Record: the immutable summary handed to the session ledger.
//   - GuessOutcome / AbandonOutcome: results reported back to callers.
//   - Clock / RandomSource: injected capabilities.

package game

import (
	"errors"
	"time"

	"github.com/robalobadob/numguess/internal/scoring"
)

var (
	// ErrInvalidLevel is returned when a round is created with level < 1.
	ErrInvalidLevel = errors.New("level must be at least 1")
	// ErrInvalidGuess marks a guess that is not an integer in [1, level].
	ErrInvalidGuess = errors.New("invalid guess")
	// ErrWrongState is returned for operations the round's state does not allow.
	ErrWrongState = errors.New("operation not allowed in current round state")
)

// State is the lifecycle position of a Round.
type State string

const (
	StatePending  State = "pending"  // level chosen, no target yet
	StateActive   State = "active"   // target drawn, guesses accepted
	StateFinished State = "finished" // terminal
)

// Outcome tells how a finished round ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeAbandoned Outcome = "abandoned"
)

// Record is produced exactly once when a round finishes.
type Record struct {
	RoundID    string          `json:"roundId"`
	PlayerName string          `json:"name"`
	Level      int             `json:"level"`
	Score      int             `json:"score"`
	ElapsedMs  *int64          `json:"elapsedMs"` // nil when no time was taken
	Outcome    Outcome         `json:"outcome"`
	Quality    scoring.Quality `json:"quality"`
}

// GuessKind discriminates GuessOutcome.
type GuessKind string

const (
	GuessInvalid  GuessKind = "invalid"
	GuessContinue GuessKind = "continue"
	GuessSuccess  GuessKind = "success"
)

// GuessOutcome is the result of SubmitGuess.
//
//   - GuessInvalid:  Reason is set; nothing else changed.
//   - GuessContinue: TooLow, GuessCount and Hue are set.
//   - GuessSuccess:  Score, ElapsedMs, Quality and Record are set.
type GuessOutcome struct {
	Kind       GuessKind       `json:"kind"`
	Reason     error           `json:"-"`
	Guess      int             `json:"guess,omitempty"`
	TooLow     bool            `json:"tooLow,omitempty"`
	GuessCount int             `json:"guessCount"`
	Hue        *int            `json:"hue,omitempty"` // nil for invalid guesses
	Score      int             `json:"score,omitempty"`
	ElapsedMs  *int64          `json:"elapsedMs,omitempty"`
	Quality    scoring.Quality `json:"quality,omitempty"`
	Record     *Record         `json:"-"`
}

// AbandonOutcome is the result of GiveUp.
type AbandonOutcome struct {
	Score          int             `json:"score"`
	ElapsedMs      *int64          `json:"elapsedMs"`
	RevealedTarget int             `json:"revealedTarget"`
	Quality        scoring.Quality `json:"quality"`
	Record         Record          `json:"-"`
}

// Clock supplies monotonic timestamps.
type Clock interface {
	Now() time.Time
}

// RandomSource draws uniform integers in [0, n).
type RandomSource interface {
	Intn(n int) int
}

// Round holds the state of a single round.
type Round struct {
	ID         string
	Player     string
	Level      int
	GuessCount int
	StartedAt  time.Time
	State      State

	target int
	clock  Clock
	record *Record
}
