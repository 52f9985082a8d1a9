package table

import (
	"fmt"

	"github.com/tidwall/btree"

	apperrors "roicli/internal/errors"
)

// Index is a list of composite keys sharing the same named levels.
// Index values are immutable once built.
type Index struct {
	names []string
	keys  []Key
}

// NewIndex creates an index, checking that every key has one label per level
// and that level names are distinct.
func NewIndex(names []string, keys []Key) (Index, error) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return Index{}, apperrors.NewNonUniqueKeyError(fmt.Sprintf("level name %q is used twice", n))
		}
		seen[n] = true
	}
	for i, k := range keys {
		if len(k) != len(names) {
			return Index{}, apperrors.NewValidationError(
				fmt.Sprintf("key %d has %d labels, index has %d levels", i, len(k), len(names)))
		}
	}
	return Index{
		names: append([]string(nil), names...),
		keys:  append([]Key(nil), keys...),
	}, nil
}

// SingleLevel creates a one-level index from labels.
func SingleLevel(name string, labels ...Label) Index {
	keys := make([]Key, len(labels))
	for i, l := range labels {
		keys[i] = Key{l}
	}
	return Index{names: []string{name}, keys: keys}
}

// Names returns a copy of the level names
func (ix Index) Names() []string {
	return append([]string(nil), ix.names...)
}

// Len returns the number of keys
func (ix Index) Len() int { return len(ix.keys) }

// Levels returns the number of levels
func (ix Index) Levels() int { return len(ix.names) }

// Key returns the key at position i
func (ix Index) Key(i int) Key { return ix.keys[i] }

// Keys returns a copy of the key list
func (ix Index) Keys() []Key {
	return append([]Key(nil), ix.keys...)
}

// Level returns the position of the named level, or -1.
func (ix Index) Level(name string) int {
	for i, n := range ix.names {
		if n == name {
			return i
		}
	}
	return -1
}

// LevelValues returns the label of the named level for every key, in index order.
func (ix Index) LevelValues(name string) ([]Label, error) {
	li := ix.Level(name)
	if li < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("level %q", name))
	}
	out := make([]Label, len(ix.keys))
	for i, k := range ix.keys {
		out[i] = k[li]
	}
	return out, nil
}

// Distinct returns the distinct labels of the named level in ascending order.
func (ix Index) Distinct(name string) ([]Label, error) {
	values, err := ix.LevelValues(name)
	if err != nil {
		return nil, err
	}
	return distinctLabels(values), nil
}

// IsUnique reports whether no two keys are equal.
func (ix Index) IsUnique() bool {
	return len(ix.Duplicates()) == 0
}

// Duplicates returns every key that occurs more than once, once each, in ascending order.
func (ix Index) Duplicates() []Key {
	tree := newKeyTree()
	dups := newKeyTree()
	for _, k := range ix.keys {
		if _, replaced := tree.Set(keyEntry{key: k}); replaced {
			dups.Set(keyEntry{key: k})
		}
	}
	out := make([]Key, 0, dups.Len())
	dups.Scan(func(e keyEntry) bool {
		out = append(out, e.key)
		return true
	})
	return out
}

// Equal reports whether two indexes have the same names and keys in the same order.
func (ix Index) Equal(o Index) bool {
	if len(ix.names) != len(o.names) || len(ix.keys) != len(o.keys) {
		return false
	}
	for i := range ix.names {
		if ix.names[i] != o.names[i] {
			return false
		}
	}
	for i := range ix.keys {
		if !ix.keys[i].Equal(o.keys[i]) {
			return false
		}
	}
	return true
}

// positions maps each key to its position. Later duplicates win.
func (ix Index) positions() map[string]int {
	m := make(map[string]int, len(ix.keys))
	for i, k := range ix.keys {
		m[k.hashKey()] = i
	}
	return m
}

// sortedOrder returns the permutation that sorts the keys ascending.
// Equal keys keep their relative order.
func (ix Index) sortedOrder() []int {
	tree := btree.NewBTreeGOptions(func(a, b keyEntry) bool {
		if c := a.key.Compare(b.key); c != 0 {
			return c < 0
		}
		return a.pos < b.pos
	}, btree.Options{NoLocks: true})
	for i, k := range ix.keys {
		tree.Set(keyEntry{key: k, pos: i})
	}
	order := make([]int, 0, len(ix.keys))
	tree.Scan(func(e keyEntry) bool {
		order = append(order, e.pos)
		return true
	})
	return order
}

// take builds a new index from the keys at the given positions.
func (ix Index) take(order []int) Index {
	keys := make([]Key, len(order))
	for i, p := range order {
		keys[i] = ix.keys[p]
	}
	return Index{names: ix.names, keys: keys}
}

// permutation returns perm such that names[j] == ix.names[perm[j]].
func (ix Index) permutation(names []string) ([]int, error) {
	if len(names) != len(ix.names) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("level names %v do not match %v", names, ix.names))
	}
	perm := make([]int, len(names))
	used := make([]bool, len(names))
	for j, n := range names {
		p := ix.Level(n)
		if p < 0 || used[p] {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("level names %v do not match %v", names, ix.names))
		}
		used[p] = true
		perm[j] = p
	}
	return perm, nil
}

// Reorder returns an index with levels arranged as names.
func (ix Index) Reorder(names ...string) (Index, error) {
	perm, err := ix.permutation(names)
	if err != nil {
		return Index{}, err
	}
	keys := make([]Key, len(ix.keys))
	for i, k := range ix.keys {
		keys[i] = k.permute(perm)
	}
	return Index{names: append([]string(nil), names...), keys: keys}, nil
}

type keyEntry struct {
	key Key
	pos int
}

func newKeyTree() *btree.BTreeG[keyEntry] {
	return btree.NewBTreeGOptions(func(a, b keyEntry) bool {
		return a.key.Compare(b.key) < 0
	}, btree.Options{NoLocks: true})
}

// distinctLabels returns the distinct labels in ascending order.
func distinctLabels(values []Label) []Label {
	tree := btree.NewBTreeGOptions(func(a, b Label) bool {
		return a.Compare(b) < 0
	}, btree.Options{NoLocks: true})
	for _, v := range values {
		tree.Set(v)
	}
	return tree.Items()
}

// distinctKeys returns the distinct keys in ascending order.
func distinctKeys(keys []Key) []Key {
	tree := newKeyTree()
	for _, k := range keys {
		tree.Set(keyEntry{key: k})
	}
	out := make([]Key, 0, tree.Len())
	tree.Scan(func(e keyEntry) bool {
		out = append(out, e.key)
		return true
	})
	return out
}
