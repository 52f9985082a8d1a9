package crossval

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// Dataset is a feature matrix with one class and one stratum per row.
type Dataset struct {
	IDs      []string
	Features []string
	X        *mat.Dense
	Y        []bool
	// Strata is nil when the rows carry no stratum.
	Strata []string
}

// FromTable builds a Dataset from a table with one row per sample. The
// column classColumn holds the class, rows equal to positive are the
// positive class. strataLevel names a row level holding the stratum and may
// be empty. Every other column becomes a feature.
func FromTable(t *table.Table, classColumn, strataLevel string, positive float64) (*Dataset, error) {
	rows, cols := t.Shape()
	classIdx := -1
	var features []string
	var featureIdx []int
	for j := 0; j < cols; j++ {
		name := t.Columns().Key(j).String()
		if name == classColumn {
			classIdx = j
			continue
		}
		features = append(features, name)
		featureIdx = append(featureIdx, j)
	}
	if classIdx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("class column %q", classColumn))
	}
	if rows == 0 || len(features) == 0 {
		return nil, apperrors.NewValidationError("dataset needs at least one row and one feature")
	}

	d := &Dataset{
		IDs:      make([]string, rows),
		Features: features,
		X:        mat.NewDense(rows, len(features), nil),
		Y:        make([]bool, rows),
	}
	for i := 0; i < rows; i++ {
		d.IDs[i] = t.Rows().Key(i).String()
		class := t.At(i, classIdx)
		if math.IsNaN(class) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("row %s has no class", d.IDs[i]))
		}
		d.Y[i] = class == positive
		for k, j := range featureIdx {
			d.X.Set(i, k, t.At(i, j))
		}
	}
	if strataLevel != "" {
		labels, err := t.Rows().LevelValues(strataLevel)
		if err != nil {
			return nil, err
		}
		d.Strata = make([]string, rows)
		for i, l := range labels {
			d.Strata[i] = l.String()
		}
	}
	return d, nil
}

// View returns a view over every row and feature of d.
func (d *Dataset) View() View {
	rows, cols := d.X.Dims()
	return View{data: d, rows: seq(rows), cols: seq(cols)}
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// View is a row and column subset of a Dataset. Views share the dataset's
// arrays; selecting never copies values.
type View struct {
	data *Dataset
	rows []int
	cols []int
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.rows) }

// Features returns the feature names in view order.
func (v View) Features() []string {
	out := make([]string, len(v.cols))
	for i, c := range v.cols {
		out[i] = v.data.Features[c]
	}
	return out
}

// IDs returns the row ids in view order.
func (v View) IDs() []string {
	out := make([]string, len(v.rows))
	for i, r := range v.rows {
		out[i] = v.data.IDs[r]
	}
	return out
}

// Labels returns the classes in view order.
func (v View) Labels() []bool {
	out := make([]bool, len(v.rows))
	for i, r := range v.rows {
		out[i] = v.data.Y[r]
	}
	return out
}

// Strata returns the strata in view order, or nil.
func (v View) Strata() []string {
	if v.data.Strata == nil {
		return nil
	}
	out := make([]string, len(v.rows))
	for i, r := range v.rows {
		out[i] = v.data.Strata[r]
	}
	return out
}

// Matrix copies the selected values into a new dense matrix. An empty view
// yields an empty matrix.
func (v View) Matrix() *mat.Dense {
	if len(v.rows) == 0 || len(v.cols) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(v.rows), len(v.cols), nil)
	for i, r := range v.rows {
		for j, c := range v.cols {
			m.Set(i, j, v.data.X.At(r, c))
		}
	}
	return m
}

// Rows returns the view restricted to the given positions of the view.
func (v View) Rows(positions []int) View {
	rows := make([]int, len(positions))
	for i, p := range positions {
		rows[i] = v.rows[p]
	}
	return View{data: v.data, rows: rows, cols: v.cols}
}

// SelectStrata keeps the rows belonging to any of the given strata.
func (v View) SelectStrata(strata ...string) View {
	want := make(map[string]bool, len(strata))
	for _, s := range strata {
		want[s] = true
	}
	var rows []int
	if v.data.Strata != nil {
		for _, r := range v.rows {
			if want[v.data.Strata[r]] {
				rows = append(rows, r)
			}
		}
	}
	return View{data: v.data, rows: rows, cols: v.cols}
}

// SelectFeatures keeps the features whose name contains substr, or with
// exclude the features whose name does not.
func (v View) SelectFeatures(substr string, exclude bool) View {
	var cols []int
	for _, c := range v.cols {
		if strings.Contains(v.data.Features[c], substr) != exclude {
			cols = append(cols, c)
		}
	}
	return View{data: v.data, rows: v.rows, cols: cols}
}

// SelectByFeatureRange keeps the rows whose value of feature lies in
// [minimum, maximum]. Missing values are dropped.
func (v View) SelectByFeatureRange(feature string, minimum, maximum float64) (View, error) {
	col := -1
	for _, c := range v.cols {
		if v.data.Features[c] == feature {
			col = c
			break
		}
	}
	if col < 0 {
		return View{}, apperrors.NewNotFoundError(fmt.Sprintf("feature %q", feature))
	}
	var rows []int
	for _, r := range v.rows {
		x := v.data.X.At(r, col)
		if x >= minimum && x <= maximum {
			rows = append(rows, r)
		}
	}
	return View{data: v.data, rows: rows, cols: v.cols}, nil
}
