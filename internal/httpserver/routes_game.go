// internal/httpserver/routes_game.go
//
// Game routes, all under /api and bound to the caller's session:
//   - GET  /api/config       → levels and leaderboard size for the page
//   - GET  /api/clock        → header clock text
//   - GET  /api/state        → current View (polled while a round runs)
//   - POST /api/play         → start a countdown + round
//   - POST /api/guess        → submit a guess
//   - POST /api/giveup       → abandon the round
//   - GET  /api/leaderboard  → full ledger snapshot

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/internal/format"
	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/ledger"
	"github.com/robalobadob/numguess/internal/session"
)

// mountGame registers all /api routes.
func (s *Server) mountGame() {
	s.r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.Get("/clock", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"now": format.Clock(time.Now())})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/state", s.handleState)
			r.Post("/play", s.handlePlay)
			r.Post("/guess", s.handleGuess)
			r.Post("/giveup", s.handleGiveUp)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Game)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).View())
}

// playReq is the payload for POST /api/play. A missing level means the default.
type playReq struct {
	Name  string `json:"name"`
	Level *int   `json:"level"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	level := s.cfg.Game.DefaultLevel
	if req.Level != nil {
		level = *req.Level
	}
	v, err := sessionFrom(r).Play(req.Name, level)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// guessValue accepts either a JSON string or a JSON number.
type guessValue string

func (g *guessValue) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*g = guessValue(str)
		return nil
	}
	*g = guessValue(strings.TrimSpace(string(b)))
	return nil
}

type guessReq struct {
	Guess guessValue `json:"guess"`
}

// outcomeRes flattens game.GuessOutcome for the wire (Reason as text).
type outcomeRes struct {
	game.GuessOutcome
	Reason string `json:"reason,omitempty"`
}

type guessRes struct {
	Outcome outcomeRes   `json:"outcome"`
	View    session.View `json:"view"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, v, err := sessionFrom(r).Guess(string(req.Guess))
	if err != nil {
		writeGameError(w, err)
		return
	}
	res := guessRes{Outcome: outcomeRes{GuessOutcome: out}, View: v}
	if out.Reason != nil {
		res.Outcome.Reason = out.Reason.Error()
	}
	writeJSON(w, http.StatusOK, res)
}

type giveUpRes struct {
	Outcome game.AbandonOutcome `json:"outcome"`
	View    session.View        `json:"view"`
}

func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	out, v, err := sessionFrom(r).GiveUp()
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, giveUpRes{Outcome: out, View: v})
}

// leaderboardRes adds display strings to the raw ledger snapshot.
type leaderboardRes struct {
	ledger.Snapshot
	AverageScoreText string   `json:"averageScoreText"`
	FastestText      string   `json:"fastestText"`
	AverageTimeText  string   `json:"averageTimeText"`
	Times            []string `json:"times"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).Snapshot()
	res := leaderboardRes{
		Snapshot:         snap,
		AverageScoreText: format.Average(snap.AverageScore),
		FastestText:      format.NotAvailable,
		AverageTimeText:  format.NotAvailable,
		Times:            make([]string, len(snap.Leaderboard)),
	}
	if snap.FastestMs != nil {
		res.FastestText = format.DurationMs(snap.FastestMs)
		res.AverageTimeText = format.Duration(snap.AverageMs)
	}
	for i, rec := range snap.Leaderboard {
		res.Times[i] = format.DurationMs(rec.ElapsedMs)
	}
	writeJSON(w, http.StatusOK, res)
}

// writeGameError maps core errors to HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, format.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "Please enter your name before playing.")
	case errors.Is(err, game.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrWrongState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("game request")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
