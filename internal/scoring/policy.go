// internal/scoring/policy.go
//
// Scoring rules for a finished round.
//   - Quality tiers: Perfect / Good / OK / Bad, relative to the level.
//   - Final score: guesses taken on success, the level itself on give-up.
//   - Motivation and hint hue used while a round is still running.

package scoring

import (
	"math"
	"math/bits"
)

// Quality is the coarse rating of a finished round.
type Quality string

const (
	Perfect Quality = "Perfect"
	Good    Quality = "Good"
	OK      Quality = "OK"
	Bad     Quality = "Bad"
)

// Classify rates score against level. level must be >= 1.
// Tiers: 1 guess → Perfect; ≤ ceil(log2(level)) → Good; ≤ ceil(level/2) → OK.
// ceil(log2(1)) is 0, so level 1 never rates Good.
func Classify(score, level int) Quality {
	switch {
	case score == 1:
		return Perfect
	case score <= CeilLog2(level):
		return Good
	case score <= level/2+level%2:
		return OK
	}
	return Bad
}

// CeilLog2 returns ceil(log2(n)) for n >= 1, and 0 for n <= 1.
func CeilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// OnSuccess is the score for a round solved in guessCount guesses.
func OnSuccess(guessCount int) int { return guessCount }

// OnAbandon is the score for giving up: the worst possible for the level.
func OnAbandon(level int) int { return level }

// HintHue maps the distance between guess and target to a hue in degrees:
// 120 (green) on target, 0 (red) a whole level away.
// Computed in float64 so huge levels cannot overflow.
func HintHue(guess, target, level int) int {
	if level < 1 {
		return 0
	}
	d := math.Abs(float64(guess) - float64(target))
	hue := 120 - int(d*120/float64(level))
	return max(0, min(120, hue))
}
