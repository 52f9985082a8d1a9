// Package trf builds Temporal Relationship Format tables: every feature is
// repeated once per named time shift so that a row carries the values of
// its neighbours in time.
package trf

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// LabelLevel is the column level holding shift labels.
const LabelLevel = "trf_label"

// Passthrough selects columns that are copied unshifted into every label
// block. A column is selected when its object is listed in Objects and its
// feature in Features; an empty list matches everything. Both lists empty
// selects nothing.
type Passthrough struct {
	Features []string `yaml:"features"`
	Objects  []string `yaml:"objects"`
}

func (p Passthrough) empty() bool {
	return len(p.Features) == 0 && len(p.Objects) == 0
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithPassthrough protects a range of columns from shifting.
func WithPassthrough(p Passthrough) Option {
	return func(t *Transformer) {
		t.passthrough = p
	}
}

// Transformer converts an intermediate table (rows (time..., id), columns
// feature) into TRF (rows (time..., id), columns (feature, trf_label)).
type Transformer struct {
	spec        ShiftSpec
	idLevel     string
	passthrough Passthrough
	logger      *slog.Logger
}

// NewTransformer validates spec and creates a transformer that moves the
// idLevel row level out of the way while shifting.
func NewTransformer(spec ShiftSpec, idLevel string, opts ...Option) (*Transformer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if idLevel == "" {
		return nil, apperrors.NewValidationError("id level name is required")
	}
	t := &Transformer{
		spec:    spec,
		idLevel: idLevel,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Spec returns the transformer's shift spec
func (tr *Transformer) Spec() ShiftSpec { return tr.spec }

// Transform builds the TRF table. For a shift with label L and steps v, the
// cell (row r, column (f, L)) holds feature f of the same object v rows
// after r in time order. The shift is positional: when the series skips a
// step of its time base, the neighbour across the gap is used. Cells shifted
// past either end of the series are NaN.
//
// The input may also be wide, with the id level already on the columns; the
// result then covers every time and object combination. Otherwise the
// result holds exactly the input's row keys. The input is not modified.
func (tr *Transformer) Transform(ctx context.Context, t *table.Table) (*table.Table, error) {
	var (
		wide      *table.Table
		reference *table.Index
		err       error
	)
	switch {
	case t.Rows().Level(tr.idLevel) >= 0:
		rows := t.Rows()
		reference = &rows
		wide, err = t.SortAxes().Unstack(tr.idLevel)
		if err != nil {
			return nil, fmt.Errorf("move %s onto columns: %w", tr.idLevel, err)
		}
	case t.Columns().Level(tr.idLevel) >= 0:
		wide = t.SortAxes()
	default:
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("id level %q", tr.idLevel))
	}

	keep := tr.passthroughMask(wide.Columns())

	blocks := make([]*table.Table, 0, len(tr.spec.Shifts))
	for _, sh := range tr.spec.Shifts {
		// A label referencing v steps later is a physical shift by -v.
		shifted := wide.ShiftMasked(-sh.Steps, keep)
		tagged, err := shifted.AppendRowLevel(LabelLevel, table.String(sh.Label))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, tagged)
	}

	combined, err := table.Concat(blocks...)
	if err != nil {
		return nil, err
	}
	stacked, err := combined.SortAxes().Stack(tr.idLevel)
	if err != nil {
		return nil, fmt.Errorf("move %s back onto rows: %w", tr.idLevel, err)
	}
	out, err := stacked.Unstack(LabelLevel)
	if err != nil {
		return nil, fmt.Errorf("move %s onto columns: %w", LabelLevel, err)
	}

	if reference != nil {
		out, err = out.ReorderRowLevels(reference.Names()...)
		if err != nil {
			return nil, err
		}
		out, err = out.Reindex(*reference)
		if err != nil {
			return nil, err
		}
	}

	n, m := out.Shape()
	tr.logger.DebugContext(ctx, "built TRF table",
		slog.String("shifts", tr.spec.String()),
		slog.Int("rows", n),
		slog.Int("columns", m),
		slog.Int("missing", out.CountMissing()))
	return out, nil
}

// passthroughMask returns the column filter for unshifted columns, or nil.
func (tr *Transformer) passthroughMask(cols table.Index) func(table.Key) bool {
	if tr.passthrough.empty() {
		return nil
	}
	idPos := cols.Level(tr.idLevel)
	objects := toSet(tr.passthrough.Objects)
	features := toSet(tr.passthrough.Features)

	return func(k table.Key) bool {
		if len(objects) > 0 && !objects[k[idPos].String()] {
			return false
		}
		if len(features) == 0 {
			return true
		}
		for i, l := range k {
			if i != idPos && features[l.String()] {
				return true
			}
		}
		return false
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
