package table

import (
	"strconv"
	"strings"
	"time"
)

// LabelKind identifies the value type held by a Label.
type LabelKind uint8

const (
	// IntLabel holds an integer such as a relative step.
	IntLabel LabelKind = iota
	// TimeLabel holds an absolute instant.
	TimeLabel
	// StringLabel holds a name such as a feature or object id.
	StringLabel
)

// String returns the string representation of the kind
func (k LabelKind) String() string {
	switch k {
	case IntLabel:
		return "int"
	case TimeLabel:
		return "time"
	case StringLabel:
		return "string"
	default:
		return "unknown"
	}
}

// Label is one component of a composite row or column key.
type Label struct {
	kind LabelKind
	n    int64
	t    time.Time
	s    string
}

// Int creates an integer label.
func Int(n int64) Label {
	return Label{kind: IntLabel, n: n}
}

// Time creates a time label. The instant is normalized to UTC.
func Time(t time.Time) Label {
	return Label{kind: TimeLabel, t: t.UTC()}
}

// String creates a string label.
func String(s string) Label {
	return Label{kind: StringLabel, s: s}
}

// Kind returns the label's kind
func (l Label) Kind() LabelKind { return l.kind }

// AsInt returns the integer value; zero for other kinds.
func (l Label) AsInt() int64 { return l.n }

// AsTime returns the time value; the zero time for other kinds.
func (l Label) AsTime() time.Time { return l.t }

// AsString returns the string value; empty for other kinds.
func (l Label) AsString() string { return l.s }

// Compare orders labels by kind first (int < time < string), then by value.
func (l Label) Compare(o Label) int {
	if l.kind != o.kind {
		if l.kind < o.kind {
			return -1
		}
		return 1
	}
	switch l.kind {
	case IntLabel:
		switch {
		case l.n < o.n:
			return -1
		case l.n > o.n:
			return 1
		}
		return 0
	case TimeLabel:
		return l.t.Compare(o.t)
	default:
		return strings.Compare(l.s, o.s)
	}
}

// Equal reports whether two labels have the same kind and value.
func (l Label) Equal(o Label) bool {
	return l.Compare(o) == 0
}

// String renders the label for headers and messages. Midnight instants are
// printed as dates.
func (l Label) String() string {
	switch l.kind {
	case IntLabel:
		return strconv.FormatInt(l.n, 10)
	case TimeLabel:
		if l.t.Hour() == 0 && l.t.Minute() == 0 && l.t.Second() == 0 && l.t.Nanosecond() == 0 {
			return l.t.Format(time.DateOnly)
		}
		return l.t.Format(time.RFC3339Nano)
	default:
		return l.s
	}
}

// hashKey is an unambiguous encoding used for map lookups.
func (l Label) hashKey() string {
	switch l.kind {
	case IntLabel:
		return "i" + strconv.FormatInt(l.n, 10)
	case TimeLabel:
		return "t" + strconv.FormatInt(l.t.UnixNano(), 10)
	default:
		return "s" + l.s
	}
}

// Key is an ordered tuple of labels identifying a row or a column.
type Key []Label

// Compare orders keys lexicographically by level.
func (k Key) Compare(o Key) int {
	n := len(k)
	if len(o) < n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		if c := k[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(k) < len(o):
		return -1
	case len(k) > len(o):
		return 1
	}
	return 0
}

// Equal reports whether two keys are identical
func (k Key) Equal(o Key) bool {
	return k.Compare(o) == 0
}

// String joins the label renderings with "|".
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, l := range k {
		parts[i] = l.String()
	}
	return strings.Join(parts, "|")
}

// with returns a new key with l appended.
func (k Key) with(l Label) Key {
	out := make(Key, len(k)+1)
	copy(out, k)
	out[len(k)] = l
	return out
}

// without returns a new key with the label at position i removed.
func (k Key) without(i int) Key {
	out := make(Key, 0, len(k)-1)
	out = append(out, k[:i]...)
	return append(out, k[i+1:]...)
}

// permute returns a new key whose level j is k[perm[j]].
func (k Key) permute(perm []int) Key {
	out := make(Key, len(perm))
	for j, p := range perm {
		out[j] = k[p]
	}
	return out
}

func (k Key) hashKey() string {
	var b strings.Builder
	for i, l := range k {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(l.hashKey())
	}
	return b.String()
}
