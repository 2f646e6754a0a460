package models

// Mood is the emotional tag attached to a post at creation time.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodExcited Mood = "excited"
	MoodCalm    Mood = "calm"
	MoodAnxious Mood = "anxious"
	MoodLonely  Mood = "lonely"
	MoodAmused  Mood = "amused"
)

// Moods lists every valid mood in display order.
var Moods = []Mood{
	MoodHappy,
	MoodSad,
	MoodAngry,
	MoodExcited,
	MoodCalm,
	MoodAnxious,
	MoodLonely,
	MoodAmused,
}

// MoodNames returns every valid mood as a plain string slice.
func MoodNames() []string {
	names := make([]string, len(Moods))
	for i, m := range Moods {
		names[i] = string(m)
	}
	return names
}

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mood) String() string {
	return string(m)
}
