package game

import (
	"crypto/rand"
	"math/big"
	"time"
)

// SystemClock is the wall clock. time.Now carries a monotonic reading,
// so differences between two Now calls are immune to clock adjustments.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// CryptoRand draws uniform integers from crypto/rand.
type CryptoRand struct{}

// Intn returns a uniform value in [0, n). n must be > 0.
func (CryptoRand) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is unusable.
		panic("game: crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}
