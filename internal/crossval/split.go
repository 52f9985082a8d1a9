package crossval

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	apperrors "roicli/internal/errors"
)

// Split is one train/test partition, as row positions.
type Split struct {
	Train []int
	Test  []int
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// StratifiedKFold partitions the positions of y into k disjoint test folds,
// each holding about the same share of both classes. Class members are
// shuffled with seed before being dealt out.
func StratifiedKFold(y []bool, k int, seed uint64) ([]Split, error) {
	if k < 2 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("stratified k-fold needs at least 2 folds, got %d", k))
	}
	if k > len(y) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot split %d samples into %d folds", len(y), k))
	}

	// members[0] holds the negatives, members[1] the positives.
	var members [2][]int
	for i, v := range y {
		c := 0
		if v {
			c = 1
		}
		members[c] = append(members[c], i)
	}

	// Dealing the class-sorted samples round robin fixes how many of each
	// class every fold receives.
	alloc := make([][2]int, k)
	pos := 0
	for c := 0; c < 2; c++ {
		for range members[c] {
			alloc[pos%k][c]++
			pos++
		}
	}

	fold := make([]int, len(y))
	rng := newRand(seed)
	for c := 0; c < 2; c++ {
		idx := append([]int(nil), members[c]...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		next := 0
		for f := 0; f < k; f++ {
			for n := 0; n < alloc[f][c]; n++ {
				fold[idx[next]] = f
				next++
			}
		}
	}

	splits := make([]Split, k)
	for i, f := range fold {
		for g := range splits {
			if g == f {
				splits[g].Test = append(splits[g].Test, i)
			} else {
				splits[g].Train = append(splits[g].Train, i)
			}
		}
	}
	return splits, nil
}

// HasMissing reports whether m holds a NaN or infinite value.
func HasMissing(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// ImputeMean returns a copy of x with every NaN replaced by the mean of the
// present values in its column. Columns without any value become zero.
func ImputeMean(x *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(x)
	r, c := out.Dims()
	for j := 0; j < c; j++ {
		var sum float64
		var n int
		for i := 0; i < r; i++ {
			if v := out.At(i, j); !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		fill := 0.0
		if n > 0 {
			fill = sum / float64(n)
		}
		for i := 0; i < r; i++ {
			if math.IsNaN(out.At(i, j)) {
				out.Set(i, j, fill)
			}
		}
	}
	return out
}

// RandomOversample draws minority rows with replacement until both classes
// have the same count. The drawn rows are appended after the originals.
func RandomOversample(x *mat.Dense, y []bool, seed uint64) (*mat.Dense, []bool) {
	var pos, neg []int
	for i, v := range y {
		if v {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	minority, missing := pos, len(neg)-len(pos)
	if missing < 0 {
		minority, missing = neg, -missing
	}
	if missing == 0 || len(minority) == 0 {
		return mat.DenseCopyOf(x), append([]bool(nil), y...)
	}

	rng := newRand(seed)
	draws := make([]int, missing)
	for i := range draws {
		draws[i] = minority[rng.IntN(len(minority))]
	}
	sort.Ints(draws)

	r, c := x.Dims()
	out := mat.NewDense(r+missing, c, nil)
	out.Copy(x)
	labels := append(make([]bool, 0, r+missing), y...)
	for i, src := range draws {
		out.SetRow(r+i, x.RawRowView(src))
		labels = append(labels, y[src])
	}
	return out, labels
}
