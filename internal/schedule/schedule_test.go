package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTickerRunsUntilCancelled(t *testing.T) {
	tk := NewTicker()
	var n atomic.Int32
	h := tk.Every(5*time.Millisecond, func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	h.Cancel()
	h.Cancel() // idempotent
	tk.Wait()

	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}

func TestTickerTaskCanCancelItself(t *testing.T) {
	tk := NewTicker()
	var n atomic.Int32
	var h Handle
	ready := make(chan struct{})
	h = tk.Every(time.Millisecond, func() {
		<-ready
		if n.Add(1) == 2 {
			h.Cancel()
		}
	})
	close(ready)
	tk.Wait()
	assert.Equal(t, int32(2), n.Load())
}

func TestCancelNil(t *testing.T) {
	assert.NotPanics(t, func() { Cancel(nil) })
}

func TestManual(t *testing.T) {
	m := NewManual()
	var fast, slow int
	hf := m.Every(100*time.Millisecond, func() { fast++ })
	m.Every(time.Second, func() { slow++ })

	m.Tick()
	assert.Equal(t, 1, fast)
	assert.Equal(t, 1, slow)

	m.Fire(time.Second)
	assert.Equal(t, 1, fast)
	assert.Equal(t, 2, slow)
	assert.Equal(t, 2, m.Live())

	hf.Cancel()
	m.Tick()
	assert.Equal(t, 1, fast)
	assert.Equal(t, 3, slow)
	assert.Equal(t, 1, m.Live())
}

func TestManualRegisterDuringTick(t *testing.T) {
	m := NewManual()
	var inner int
	m.Every(time.Second, func() {
		m.Every(time.Second, func() { inner++ })
	})
	m.Tick()
	assert.Equal(t, 0, inner)
	m.Tick()
	assert.Equal(t, 1, inner)
}
