package scoring

// Mood buckets a running round by how many guesses it has taken so far.
type Mood string

const (
	MoodStart      Mood = "start"
	MoodMiddle     Mood = "middle"
	MoodStruggling Mood = "struggling"
)

var motivations = map[Mood][]string{
	MoodStart:      {"You can do it!", "Good luck!", "Think strategically!"},
	MoodMiddle:     {"Getting closer!", "Keep going!", "You're on the right track!"},
	MoodStruggling: {"Don't give up!", "Take a deep breath!", "You'll get it soon!"},
}

// MoodFor returns the mood after attempts guesses at level.
// Thresholds are half of ceil(log2(level)) and ceil(log2(level)) itself.
func MoodFor(attempts, level int) Mood {
	t := CeilLog2(level)
	switch {
	case attempts <= t/2:
		return MoodStart
	case attempts <= t:
		return MoodMiddle
	}
	return MoodStruggling
}

// Picker chooses an index in [0, n).
type Picker interface {
	Intn(n int) int
}

// Motivation picks one of the fixed phrases for mood.
func Motivation(mood Mood, p Picker) string {
	list := motivations[mood]
	if len(list) == 0 {
		return ""
	}
	return list[p.Intn(len(list))]
}
