// internal/game/engine.go
//
// State machine for a single number-guessing round.
// Responsibilities:
//   - Create rounds for a level (Pending) and start them (Active).
//   - Validate and apply guesses; decide continue / success.
//   - Handle give-up (abandon) with the worst-case score.
//   - Produce exactly one Record when the round finishes.
//
// Notes:
//   - Randomness and time are injected (RandomSource, Clock); the engine
//     never reads ambient globals, so rounds are deterministic under test.
//   - Invalid guesses are reported as an outcome value, not an error;
//     errors are reserved for calling an operation in the wrong state.
package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/robalobadob/numguess/internal/scoring"
)

// NewRound constructs a Pending round for player at level.
func NewRound(player string, level int, clock Clock) (*Round, error) {
	if level < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Round{
		ID:     uuid.NewString(),
		Player: player,
		Level:  level,
		State:  StatePending,
		clock:  clock,
	}, nil
}

// StartRound creates a round and starts it immediately.
func StartRound(player string, level int, rng RandomSource, clock Clock) (*Round, error) {
	r, err := NewRound(player, level, clock)
	if err != nil {
		return nil, err
	}
	if err := r.Start(rng); err != nil {
		return nil, err
	}
	return r, nil
}

// Start draws the target uniformly from [1, Level] and begins timing.
// Only valid in StatePending.
func (r *Round) Start(rng RandomSource) error {
	if r.State != StatePending {
		return fmt.Errorf("start: %w (%s)", ErrWrongState, r.State)
	}
	if rng == nil {
		rng = CryptoRand{}
	}
	r.target = rng.Intn(r.Level) + 1
	r.StartedAt = r.clock.Now()
	r.State = StateActive
	return nil
}

// SubmitGuess validates raw and applies it.
// Returns ErrWrongState unless the round is Active.
//
// Validation:
//   - raw must parse as a base-10 integer (surrounding spaces allowed).
//   - the value must lie in [1, Level].
//
// A rejected guess yields GuessInvalid and does not count.
func (r *Round) SubmitGuess(raw string) (GuessOutcome, error) {
	if r.State != StateActive {
		return GuessOutcome{}, fmt.Errorf("guess: %w (%s)", ErrWrongState, r.State)
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return GuessOutcome{
			Kind:       GuessInvalid,
			Reason:     fmt.Errorf("%w: %q is not a number", ErrInvalidGuess, raw),
			GuessCount: r.GuessCount,
		}, nil
	}
	if v < 1 || v > r.Level {
		return GuessOutcome{
			Kind:       GuessInvalid,
			Reason:     fmt.Errorf("%w: %d is outside 1-%d", ErrInvalidGuess, v, r.Level),
			Guess:      v,
			GuessCount: r.GuessCount,
		}, nil
	}

	r.GuessCount++
	if v != r.target {
		return GuessOutcome{
			Kind:       GuessContinue,
			Guess:      v,
			TooLow:     v < r.target,
			GuessCount: r.GuessCount,
			Hue:        r.hue(v),
		}, nil
	}

	rec := r.finish(OutcomeSuccess, scoring.OnSuccess(r.GuessCount))
	return GuessOutcome{
		Kind:       GuessSuccess,
		Guess:      v,
		GuessCount: r.GuessCount,
		Hue:        r.hue(v),
		Score:      rec.Score,
		ElapsedMs:  rec.ElapsedMs,
		Quality:    rec.Quality,
		Record:     rec,
	}, nil
}

// hue is the hint hue for guess v.
func (r *Round) hue(v int) *int {
	h := scoring.HintHue(v, r.target, r.Level)
	return &h
}

// GiveUp abandons an Active round, scoring it as the level and revealing the target.
func (r *Round) GiveUp() (AbandonOutcome, error) {
	if r.State != StateActive {
		return AbandonOutcome{}, fmt.Errorf("give up: %w (%s)", ErrWrongState, r.State)
	}
	rec := r.finish(OutcomeAbandoned, scoring.OnAbandon(r.Level))
	return AbandonOutcome{
		Score:          rec.Score,
		ElapsedMs:      rec.ElapsedMs,
		RevealedTarget: r.target,
		Quality:        rec.Quality,
		Record:         *rec,
	}, nil
}

// Record returns the finished round's record, or nil while the round is running.
func (r *Round) Record() *Record {
	if r.record == nil {
		return nil
	}
	c := *r.record
	return &c
}

// Target reveals the secret once the round is over; 0 before that.
func (r *Round) Target() int {
	if r.State != StateFinished {
		return 0
	}
	return r.target
}

// Elapsed returns milliseconds since Start, or nil if the round never started.
func (r *Round) Elapsed() *int64 {
	if r.StartedAt.IsZero() {
		return nil
	}
	ms := r.clock.Now().Sub(r.StartedAt).Milliseconds()
	return &ms
}

// finish moves the round to StateFinished and builds its Record.
func (r *Round) finish(o Outcome, score int) *Record {
	r.State = StateFinished
	r.record = &Record{
		RoundID:    r.ID,
		PlayerName: r.Player,
		Level:      r.Level,
		Score:      score,
		ElapsedMs:  r.Elapsed(),
		Outcome:    o,
		Quality:    scoring.Classify(score, r.Level),
	}
	c := *r.record
	return &c
}
