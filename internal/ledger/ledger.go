// internal/ledger/ledger.go
//
// Session ledger: every finished round of one session, in leaderboard order,
// plus running aggregates (wins, average score, fastest and average time).
//
// The ledger is append-only and not safe for concurrent use; the owning
// session serializes access.

package ledger

import (
	"sort"

	"github.com/robalobadob/numguess/internal/game"
)

// Ledger accumulates finished rounds.
type Ledger struct {
	entries []game.Record

	scoreSum  int
	timeSum   int64
	timed     int
	fastestMs *int64
}

// Snapshot is a point-in-time copy of the ledger.
// Pointer fields are nil when there is no data to aggregate.
type Snapshot struct {
	Leaderboard  []game.Record `json:"leaderboard"`
	Wins         int           `json:"wins"`
	AverageScore *float64      `json:"averageScore"`
	FastestMs    *int64        `json:"fastestMs"`
	AverageMs    *float64      `json:"averageMs"`
}

// New returns an empty ledger.
func New() *Ledger { return &Ledger{} }

// Record appends a finished round and refreshes the aggregates and ordering.
func (l *Ledger) Record(r game.Record) {
	l.entries = append(l.entries, r)
	l.scoreSum += r.Score
	if r.ElapsedMs != nil {
		ms := *r.ElapsedMs
		l.timeSum += ms
		l.timed++
		if l.fastestMs == nil || ms < *l.fastestMs {
			l.fastestMs = &ms
		}
	}
	sort.SliceStable(l.entries, func(i, j int) bool {
		return less(l.entries[i], l.entries[j])
	})
}

// less orders by score, then elapsed time with a missing time sorting last.
func less(a, b game.Record) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	switch {
	case a.ElapsedMs == nil:
		return false
	case b.ElapsedMs == nil:
		return true
	}
	return *a.ElapsedMs < *b.ElapsedMs
}

// Len reports the number of recorded rounds.
func (l *Ledger) Len() int { return len(l.entries) }

// Top returns up to n leading leaderboard rows.
func (l *Ledger) Top(n int) []game.Record {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n < 0 {
		n = 0
	}
	out := make([]game.Record, n)
	copy(out, l.entries[:n])
	return out
}

// Snapshot copies the leaderboard and computes the aggregates.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		Leaderboard: l.Top(len(l.entries)),
		Wins:        len(l.entries),
	}
	if s.Wins > 0 {
		avg := float64(l.scoreSum) / float64(s.Wins)
		s.AverageScore = &avg
	}
	if l.timed > 0 {
		fastest := *l.fastestMs
		s.FastestMs = &fastest
		avg := float64(l.timeSum) / float64(l.timed)
		s.AverageMs = &avg
	}
	return s
}
