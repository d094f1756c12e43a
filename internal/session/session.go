// internal/session/session.go
//
// One player's game session: the state a browser page used to keep in globals.
// Responsibilities:
//   - Play: normalize the player name, run the start countdown, start a round.
//   - Guess / GiveUp: drive the current round and record finished rounds.
//   - Keep the status message current through the elapsed-time ticker.
//   - Render a View (message, controls, stats, leaderboard) for the client.
//
// Concurrency: requests and ticker callbacks arrive on different goroutines;
// every exported method takes s.mu. Ticker callbacks carry the generation
// they were started in and do nothing once a newer Play (or Close) has
// bumped it, so a cancelled ticker can never write to the display.

package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/internal/config"
	"github.com/robalobadob/numguess/internal/format"
	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/ledger"
	"github.com/robalobadob/numguess/internal/schedule"
	"github.com/robalobadob/numguess/internal/scoring"
)

// hintDuration is how long the background hint stays visible after a guess.
const hintDuration = time.Second

// Options carries the capabilities a Session depends on.
// Zero values fall back to the system clock, crypto/rand and a real ticker.
type Options struct {
	Game      config.Game
	Clock     game.Clock
	Rand      game.RandomSource
	Scheduler schedule.Scheduler
}

// Session is a single player's game state.
type Session struct {
	ID string

	mu     sync.Mutex
	cfg    config.Game
	clock  game.Clock
	rng    game.RandomSource
	sched  schedule.Scheduler
	ledger *ledger.Ledger

	player string
	level  int
	round  *game.Round

	gen       uint64
	countdown schedule.Handle
	elapsed   schedule.Handle
	remaining int

	msgBase   string
	message   string
	hue       int
	hueUntil  time.Time
	celebrate bool

	lastSeen time.Time
}

// New builds an idle session.
func New(id string, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = game.SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = game.CryptoRand{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewTicker()
	}
	return &Session{
		ID:       id,
		cfg:      opts.Game,
		clock:    opts.Clock,
		rng:      opts.Rand,
		sched:    opts.Scheduler,
		ledger:   ledger.New(),
		level:    opts.Game.DefaultLevel,
		lastSeen: opts.Clock.Now(),
	}
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.clock.Now()
}

// LastSeen is the time of the most recent Touch (or creation).
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Play starts a new round for rawName at level.
// Any countdown or elapsed ticker from a previous Play is cancelled first;
// an unfinished previous round is discarded without a record.
// On error nothing changes.
func (s *Session) Play(rawName string, level int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := format.PlayerName(rawName)
	if err != nil {
		return s.viewLocked(), err
	}
	r, err := game.NewRound(name, level, s.clock)
	if err != nil {
		return s.viewLocked(), err
	}

	s.stopTimersLocked()
	s.gen++
	s.player, s.level, s.round = name, level, r
	s.celebrate = false
	s.hueUntil = time.Time{}
	s.remaining = s.cfg.CountdownTicks

	log.Debug().Str("session", s.ID).Str("player", name).Int("gameLevel", level).Msg("countdown started")

	s.countdownStepLocked()
	if s.round.State == game.StatePending {
		gen := s.gen
		s.countdown = s.sched.Every(s.cfg.CountdownInterval, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.gen != gen {
				return
			}
			s.countdownStepLocked()
		})
	}
	return s.viewLocked(), nil
}

// countdownStepLocked shows the remaining count, or starts the round at zero.
func (s *Session) countdownStepLocked() {
	if s.remaining <= 0 {
		schedule.Cancel(s.countdown)
		s.countdown = nil
		s.startRoundLocked()
		return
	}
	s.msgBase = fmt.Sprintf("%s, starting in %d...", s.player, s.remaining)
	s.message = s.msgBase
	s.remaining--
}

func (s *Session) startRoundLocked() {
	if err := s.round.Start(s.rng); err != nil {
		log.Error().Err(err).Str("session", s.ID).Msg("start round")
		return
	}
	s.msgBase = fmt.Sprintf("%s, guess a number from 1-%d.", s.player, s.level)
	s.message = s.msgBase + " Time: " + format.Duration(new(float64))

	gen := s.gen
	s.elapsed = s.sched.Every(s.cfg.ElapsedInterval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.round == nil || s.round.State != game.StateActive {
			return
		}
		s.message = s.msgBase + " Time: " + format.DurationMs(s.round.Elapsed())
	})
	log.Info().Str("session", s.ID).Str("round", s.round.ID).Int("gameLevel", s.level).Msg("round started")
}

// Guess submits raw to the active round.
// Returns game.ErrWrongState if no round is accepting guesses.
func (s *Session) Guess(raw string) (game.GuessOutcome, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return game.GuessOutcome{}, s.viewLocked(), fmt.Errorf("guess: %w (no round)", game.ErrWrongState)
	}
	out, err := s.round.SubmitGuess(raw)
	if err != nil {
		return out, s.viewLocked(), err
	}

	elapsed := format.DurationMs(s.round.Elapsed())
	switch out.Kind {
	case game.GuessInvalid:
		s.msgBase = fmt.Sprintf("%s, enter a valid number 1-%d", s.player, s.level)
		s.message = s.msgBase + " Time: " + elapsed
	case game.GuessContinue:
		s.showHintLocked(*out.Hue)
		dir := "high"
		if out.TooLow {
			dir = "low"
		}
		motivation := scoring.Motivation(scoring.MoodFor(out.GuessCount, s.level), s.rng)
		s.msgBase = fmt.Sprintf("%s, you guessed %d. Too %s. %s", s.player, out.Guess, dir, motivation)
		s.message = s.msgBase + " Time: " + elapsed
	case game.GuessSuccess:
		s.showHintLocked(*out.Hue)
		s.celebrate = out.Score == 1
		s.finalizeLocked(*out.Record, fmt.Sprintf(
			"%s, correct! Nice Job! You got it in %d guesses (%s). Press play to try again.",
			s.player, out.Score, format.DurationMs(out.ElapsedMs)))
	}
	return out, s.viewLocked(), nil
}

// GiveUp abandons the active round.
// Returns game.ErrWrongState if no round is active.
func (s *Session) GiveUp() (game.AbandonOutcome, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return game.AbandonOutcome{}, s.viewLocked(), fmt.Errorf("give up: %w (no round)", game.ErrWrongState)
	}
	out, err := s.round.GiveUp()
	if err != nil {
		return out, s.viewLocked(), err
	}
	s.finalizeLocked(out.Record, fmt.Sprintf(
		"%s, you gave up. Nice Try! The correct number was %d. Score: %d, time %s. Press play to try again.",
		s.player, out.RevealedTarget, out.Score, format.DurationMs(out.ElapsedMs)))
	return out, s.viewLocked(), nil
}

// finalizeLocked stops the tickers, records the round and sets the final message.
func (s *Session) finalizeLocked(rec game.Record, msg string) {
	s.stopTimersLocked()
	s.ledger.Record(rec)
	s.msgBase = fmt.Sprintf("%s (%s)", msg, rec.Quality)
	s.message = s.msgBase

	ev := log.Info().Str("session", s.ID).Str("round", rec.RoundID).
		Str("outcome", string(rec.Outcome)).Int("score", rec.Score).Str("quality", string(rec.Quality))
	if rec.ElapsedMs != nil {
		ev = ev.Int64("elapsedMs", *rec.ElapsedMs)
	}
	ev.Msg("round finished")
}

func (s *Session) showHintLocked(hue int) {
	s.hue = hue
	s.hueUntil = s.clock.Now().Add(hintDuration)
}

func (s *Session) stopTimersLocked() {
	schedule.Cancel(s.countdown)
	schedule.Cancel(s.elapsed)
	s.countdown, s.elapsed = nil, nil
}

// Close cancels the session's tickers. The ledger stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
	s.gen++
}

// View renders the session for the client.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Snapshot returns the ledger snapshot.
func (s *Session) Snapshot() ledger.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}
