package session

import (
	"github.com/robalobadob/numguess/internal/format"
	"github.com/robalobadob/numguess/internal/game"
)

// StateIdle is reported before the first Play.
const StateIdle game.State = "idle"

// View is everything the page needs to redraw itself.
type View struct {
	Player      string     `json:"player"`
	Level       int        `json:"level"`
	State       game.State `json:"state"`
	Message     string     `json:"message"`
	Hue         *int       `json:"hue"` // nil: no hint showing
	Celebrate   bool       `json:"celebrate"`
	Controls    Controls   `json:"controls"`
	Stats       Stats      `json:"stats"`
	Leaderboard []Row      `json:"leaderboard"`
}

// Controls says which inputs are enabled.
type Controls struct {
	Play   bool `json:"play"`
	Guess  bool `json:"guess"`
	GiveUp bool `json:"giveUp"`
	Levels bool `json:"levels"`
}

// Stats are the formatted session aggregates.
type Stats struct {
	Wins         int    `json:"wins"`
	AverageScore string `json:"averageScore"`
	Fastest      string `json:"fastest"`
	AverageTime  string `json:"averageTime"`
}

// Row is one leaderboard line. Empty slots carry the placeholder.
type Row struct {
	Name  string `json:"name"`
	Score int    `json:"score,omitempty"`
	Time  string `json:"time"`
}

func (s *Session) viewLocked() View {
	v := View{
		Player:  s.player,
		Level:   s.level,
		State:   StateIdle,
		Message: s.message,
	}
	if s.round != nil {
		v.State = s.round.State
	}

	switch v.State {
	case game.StatePending:
	case game.StateActive:
		v.Controls = Controls{Guess: true, GiveUp: true}
	default:
		v.Controls = Controls{Play: true, Levels: true}
		v.Celebrate = s.celebrate
	}

	if s.clock.Now().Before(s.hueUntil) {
		h := s.hue
		v.Hue = &h
	}

	snap := s.ledger.Snapshot()
	v.Stats = Stats{
		Wins:         snap.Wins,
		AverageScore: format.Average(snap.AverageScore),
		Fastest:      format.NotAvailable,
		AverageTime:  format.NotAvailable,
	}
	if snap.FastestMs != nil {
		v.Stats.Fastest = format.DurationMs(snap.FastestMs)
	}
	if snap.AverageMs != nil {
		v.Stats.AverageTime = format.Duration(snap.AverageMs)
	}

	v.Leaderboard = make([]Row, s.cfg.LeaderboardSize)
	top := s.ledger.Top(s.cfg.LeaderboardSize)
	for i := range v.Leaderboard {
		if i < len(top) {
			v.Leaderboard[i] = Row{Name: top[i].PlayerName, Score: top[i].Score, Time: format.DurationMs(top[i].ElapsedMs)}
		} else {
			v.Leaderboard[i] = Row{Name: format.Placeholder, Time: format.Placeholder}
		}
	}
	return v
}
