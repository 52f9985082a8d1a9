package reltime

import (
	"fmt"
	"strings"
	"time"
)

// Frequency describes a fixed sampling interval in calendar terms.
type Frequency struct {
	// Count is the number of Units per step.
	Count int64
	// Unit is one of "D", "H", "T", "S", "L", "U", "N".
	Unit string
	// Weekly frequencies are anchored to a weekday.
	Weekly  bool
	Weekday time.Weekday
}

var units = []struct {
	code string
	size time.Duration
	name string
}{
	{"D", 24 * time.Hour, "day"},
	{"H", time.Hour, "hour"},
	{"T", time.Minute, "minute"},
	{"S", time.Second, "second"},
	{"L", time.Millisecond, "millisecond"},
	{"U", time.Microsecond, "microsecond"},
	{"N", time.Nanosecond, "nanosecond"},
}

// InferFrequency derives the frequency of evenly spaced instants. It
// returns false for fewer than three instants or uneven spacing.
func InferFrequency(instants []time.Time) (Frequency, bool) {
	if len(instants) < 3 {
		return Frequency{}, false
	}
	delta := instants[1].Sub(instants[0])
	if delta <= 0 {
		return Frequency{}, false
	}
	for i := 2; i < len(instants); i++ {
		if instants[i].Sub(instants[i-1]) != delta {
			return Frequency{}, false
		}
	}
	if delta == 7*24*time.Hour && isMidnight(instants[0]) {
		return Frequency{Count: 1, Unit: "D", Weekly: true, Weekday: instants[0].Weekday()}, true
	}
	for _, u := range units {
		if delta%u.size == 0 {
			return Frequency{Count: int64(delta / u.size), Unit: u.code}, true
		}
	}
	return Frequency{}, false
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// Alias returns the compact code, e.g. "12D", "6H", "D" or "W-SUN".
func (f Frequency) Alias() string {
	if f.Weekly {
		return "W-" + strings.ToUpper(f.Weekday.String()[:3])
	}
	if f.Count == 1 {
		return f.Unit
	}
	return fmt.Sprintf("%d%s", f.Count, f.Unit)
}

// String returns a readable description such as "every 12 days".
func (f Frequency) String() string {
	if f.Weekly {
		return "weekly on " + f.Weekday.String()
	}
	name := f.Unit
	for _, u := range units {
		if u.code == f.Unit {
			name = u.name
			break
		}
	}
	if f.Count == 1 {
		return "every " + name
	}
	return fmt.Sprintf("every %d %ss", f.Count, name)
}

// Duration returns the length of one step.
func (f Frequency) Duration() time.Duration {
	if f.Weekly {
		return 7 * 24 * time.Hour
	}
	for _, u := range units {
		if u.code == f.Unit {
			return time.Duration(f.Count) * u.size
		}
	}
	return 0
}
