// internal/format/format.go
//
// Display helpers for the game view.
// Responsibilities:
//   - Render round durations ("12.34s", "1:05.20") and averages.
//   - Normalize player names to their canonical display form.
//   - Render the header clock ("October 18th, 2026 09:05:03").
//
// Everything here is pure: no state, no I/O.

package format

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Placeholder is shown wherever a value is absent.
const Placeholder = "—"

// NotAvailable is shown for aggregates that have no data yet.
const NotAvailable = "N/A"

// ErrEmptyName is returned by PlayerName for blank input.
var ErrEmptyName = errors.New("player name is empty")

// Duration renders milliseconds for display.
// nil → Placeholder. Below one minute → seconds with two decimals ("12.34s").
// Otherwise minutes:seconds.hundredths with zero-padded seconds ("1:05.20").
func Duration(ms *float64) string {
	if ms == nil {
		return Placeholder
	}
	v := *ms
	if v < 60000 {
		return fmt.Sprintf("%.2fs", v/1000)
	}
	// Work in whole hundredths so rounding can't produce "1:60.00".
	h := int64(v/10 + 0.5)
	m, rem := h/6000, h%6000
	return fmt.Sprintf("%d:%02d.%02d", m, rem/100, rem%100)
}

// DurationMs is Duration for integer milliseconds.
func DurationMs(ms *int64) string {
	if ms == nil {
		return Placeholder
	}
	f := float64(*ms)
	return Duration(&f)
}

// Average renders an optional mean with two decimals, or NotAvailable.
func Average(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", *v)
}

// PlayerName trims, lowercases and capitalizes the first letter of raw.
func PlayerName(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyName
	}
	s = strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:], nil
}

// Clock renders t as "January 2nd, 2006 15:04:05" with an English ordinal day.
func Clock(t time.Time) string {
	d := t.Day()
	return fmt.Sprintf("%s %d%s, %d %02d:%02d:%02d",
		t.Month(), d, ordinal(d), t.Year(), t.Hour(), t.Minute(), t.Second())
}

// ordinal returns the English suffix for a day of month.
func ordinal(n int) string {
	if m := n % 100; m >= 11 && m <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
