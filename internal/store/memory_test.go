package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numguess/internal/config"
	"github.com/robalobadob/numguess/internal/schedule"
	"github.com/robalobadob/numguess/internal/session"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newSession(id string, sched schedule.Scheduler) *session.Session {
	return newSessionAt(id, sched, nil)
}

func newSessionAt(id string, sched schedule.Scheduler, clk *fakeClock) *session.Session {
	opts := session.Options{
		Game: config.Game{
			Levels: []int{3}, DefaultLevel: 3, CountdownTicks: 1,
			CountdownInterval: time.Second, ElapsedInterval: time.Second, LeaderboardSize: 1,
		},
		Scheduler: sched,
	}
	if clk != nil {
		opts.Clock = clk
	}
	return session.New(id, opts)
}

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := newSession("a", schedule.NewManual())

	_, err := st.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Save(ctx, s))
	got, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := NewMemoryStore()
	assert.ErrorIs(t, st.Save(ctx, newSession("a", schedule.NewManual())), context.Canceled)
	_, err := st.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseStopsTickers(t *testing.T) {
	ctx := context.Background()
	sched := schedule.NewManual()
	st := NewMemoryStore()
	s := newSession("a", sched)
	require.NoError(t, st.Save(ctx, s))

	_, err := s.Play("ann", 3)
	require.NoError(t, err)
	require.Equal(t, 1, sched.Live())

	st.Close()
	assert.Equal(t, 0, sched.Live())
}

func TestEvictIdleClosesStaleSessions(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	sched := schedule.NewManual()
	st := NewMemoryStore()

	stale := newSessionAt("stale", sched, clk)
	require.NoError(t, st.Save(ctx, stale))
	_, err := stale.Play("ann", 3)
	require.NoError(t, err)
	sched.Fire(time.Second) // countdown done, elapsed ticker running
	require.Equal(t, 1, sched.Live())

	clk.Advance(20 * time.Hour)
	fresh := newSessionAt("fresh", sched, clk)
	require.NoError(t, st.Save(ctx, fresh))
	_, err = fresh.Play("bob", 3)
	require.NoError(t, err)
	require.Equal(t, 2, sched.Live())

	clk.Advance(5 * time.Hour)
	assert.Equal(t, 1, st.EvictIdle(clk.Now(), 24*time.Hour))
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, 1, sched.Live(), "evicted session's ticker is cancelled")

	_, err = st.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := st.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Same(t, fresh, got)
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	st := NewMemoryStore()
	s := newSessionAt("a", schedule.NewManual(), clk)
	require.NoError(t, st.Save(ctx, s))

	clk.Advance(23 * time.Hour)
	s.Touch()
	clk.Advance(23 * time.Hour)
	assert.Equal(t, 0, st.EvictIdle(clk.Now(), 24*time.Hour))
	assert.Equal(t, 1, st.Len())

	clk.Advance(2 * time.Hour)
	assert.Equal(t, 1, st.EvictIdle(clk.Now(), 24*time.Hour))
	assert.Equal(t, 0, st.Len())
}
