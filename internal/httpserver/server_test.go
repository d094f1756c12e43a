package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numguess/internal/config"
	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/schedule"
	"github.com/robalobadob/numguess/internal/session"
	"github.com/robalobadob/numguess/internal/store"
)

type fixedRand int

func (f fixedRand) Intn(n int) int { return (int(f) - 1) % n }

type testEnv struct {
	srv   *Server
	sched *schedule.Manual
	st    store.Store
}

func newTestEnv(t *testing.T, target int) *testEnv {
	t.Helper()
	cfg := config.Config{
		ClientOrigin:  "http://localhost:5173",
		SessionSecret: "test-secret",
		CookieName:    "numguess_session",
		Game: config.Game{
			Levels: []int{3, 10}, DefaultLevel: 3, CountdownTicks: 1,
			CountdownInterval: time.Second, ElapsedInterval: 100 * time.Millisecond, LeaderboardSize: 3,
		},
	}
	env := &testEnv{sched: schedule.NewManual(), st: store.NewMemoryStore()}
	env.srv = New(env.st, cfg, func(id string) *session.Session {
		return session.New(id, session.Options{Game: cfg.Game, Rand: fixedRand(target), Scheduler: env.sched})
	})
	return env
}

// do sends a request carrying the given cookie (if any) and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "numguess_session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthAndIndex(t *testing.T) {
	env := newTestEnv(t, 1)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Guess the Number")

	rec = env.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfigAndClock(t *testing.T) {
	env := newTestEnv(t, 1)

	rec := env.do(t, http.MethodGet, "/api/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[map[string]any](t, rec)
	assert.Equal(t, []any{3.0, 10.0}, cfg["levels"])
	assert.Equal(t, 3.0, cfg["defaultLevel"])

	rec = env.do(t, http.MethodGet, "/api/clock", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["now"])
}

func TestSessionCookieIsIssuedAndReused(t *testing.T) {
	env := newTestEnv(t, 1)

	rec := env.do(t, http.MethodGet, "/api/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(t, rec)
	assert.NotEmpty(t, rec.Header().Get(tokenHeader))
	assert.Equal(t, 1, env.st.Len())

	rec = env.do(t, http.MethodGet, "/api/state", "", c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "known session keeps its cookie")
	assert.Equal(t, 1, env.st.Len())

	// bearer works too
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Authorization", "Bearer "+c.Value)
	rr := httptest.NewRecorder()
	env.srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, env.st.Len())

	// forged token → fresh session
	rec = env.do(t, http.MethodGet, "/api/state", "", &http.Cookie{Name: "numguess_session", Value: "garbage"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.st.Len())
}

func TestPlayGuessFlow(t *testing.T) {
	env := newTestEnv(t, 3)

	rec := env.do(t, http.MethodGet, "/api/state", "", nil)
	c := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, "/api/play", `{"name":"  ann ","level":10}`, c)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decode[session.View](t, rec)
	assert.Equal(t, "Ann", v.Player)
	assert.Equal(t, game.StatePending, v.State)

	rec = env.do(t, http.MethodPost, "/api/guess", `{"guess":"3"}`, c)
	assert.Equal(t, http.StatusConflict, rec.Code, "no guesses during the countdown")

	env.sched.Fire(time.Second)

	rec = env.do(t, http.MethodPost, "/api/guess", `{"guess":"abc"}`, c)
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, "invalid", g["outcome"]["kind"])
	assert.Contains(t, g["outcome"]["reason"], "invalid guess")

	rec = env.do(t, http.MethodPost, "/api/guess", `{"guess":5}`, c)
	require.Equal(t, http.StatusOK, rec.Code)
	g = decode[map[string]map[string]any](t, rec)
	assert.Equal(t, "continue", g["outcome"]["kind"])
	assert.Equal(t, 1.0, g["outcome"]["guessCount"])

	rec = env.do(t, http.MethodPost, "/api/guess", `{"guess":"3"}`, c)
	require.Equal(t, http.StatusOK, rec.Code)
	g = decode[map[string]map[string]any](t, rec)
	assert.Equal(t, "success", g["outcome"]["kind"])
	assert.Equal(t, 2.0, g["outcome"]["score"])
	assert.Equal(t, "Good", g["outcome"]["quality"])
	assert.Equal(t, "finished", g["view"]["state"])

	rec = env.do(t, http.MethodGet, "/api/leaderboard", "", c)
	require.Equal(t, http.StatusOK, rec.Code)
	lb := decode[map[string]any](t, rec)
	assert.Equal(t, 1.0, lb["wins"])
	assert.Equal(t, "2.00", lb["averageScoreText"])
	rows := lb["leaderboard"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ann", rows[0].(map[string]any)["name"])
}

func TestGiveUp(t *testing.T) {
	env := newTestEnv(t, 2)
	c := sessionCookie(t, env.do(t, http.MethodGet, "/api/state", "", nil))

	rec := env.do(t, http.MethodPost, "/api/giveup", "", c)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/play", `{"name":"bo"}`, c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[session.View](t, rec).Level, "default level")
	env.sched.Fire(time.Second)

	rec = env.do(t, http.MethodPost, "/api/giveup", "", c)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, 3.0, res["outcome"]["score"])
	assert.Equal(t, 2.0, res["outcome"]["revealedTarget"])
	assert.Equal(t, "Bad", res["outcome"]["quality"])
}

func TestPlayValidation(t *testing.T) {
	env := newTestEnv(t, 1)
	c := sessionCookie(t, env.do(t, http.MethodGet, "/api/state", "", nil))

	rec := env.do(t, http.MethodPost, "/api/play", `{"name":"   ","level":3}`, c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter your name before playing.", decode[map[string]string](t, rec)["error"])

	rec = env.do(t, http.MethodPost, "/api/play", `{"name":"ann","level":0}`, c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/play", `not json`, c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// levels outside the configured list are still playable
	rec = env.do(t, http.MethodPost, "/api/play", `{"name":"ann","level":7}`, c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[session.View](t, rec).Level)
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	env := newTestEnv(t, 1)

	for i := 0; i < 5; i++ {
		rec := env.do(t, http.MethodPost, "/api/play", `{"name":"x"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, 5, env.st.Len())
	require.Equal(t, 5, env.sched.Live())

	kept := sessionCookie(t, env.do(t, http.MethodGet, "/api/state", "", nil))
	require.Equal(t, 6, env.st.Len())

	// nothing is idle yet
	assert.Equal(t, 0, env.st.EvictIdle(time.Now(), SessionTTL))

	later := time.Now().Add(SessionTTL + time.Minute)
	assert.Equal(t, 6, env.st.EvictIdle(later, SessionTTL))
	assert.Equal(t, 0, env.st.Len())
	assert.Equal(t, 0, env.sched.Live(), "evicted sessions stop their tickers")

	// an evicted session's cookie gets a fresh session
	rec := env.do(t, http.MethodGet, "/api/state", "", kept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, kept.Value, sessionCookie(t, rec).Value)
	assert.Equal(t, 1, env.st.Len())
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, 1)
	rec := env.do(t, http.MethodOptions, "/api/play", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
