package pipeline

import (
	"context"
	"log/slog"

	"roicli/internal/config"
	"roicli/internal/doy"
	"roicli/internal/reltime"
	"roicli/internal/selection"
	"roicli/internal/taf"
	"roicli/internal/trf"
)

// Stage IDs
const (
	StageIDParse     = "parse"
	StageIDRelTime   = "reltime"
	StageIDDayOfYear = "doy"
	StageIDTRF       = "trf"
	StageIDSelection = "selection"
)

// ParseStage turns a TAF table into rows (time, id) and feature columns,
// naming the id level idLevel.
type ParseStage struct {
	BaseStage
	opts    taf.Options
	idLevel string
}

// NewParseStage creates the parse stage. An empty idLevel keeps the input's
// level name.
func NewParseStage(opts taf.Options, idLevel string) *ParseStage {
	return &ParseStage{
		BaseStage: NewBaseStage(StageIDParse, "Parse TAF columns", true),
		opts:      opts,
		idLevel:   idLevel,
	}
}

// Execute runs the parse stage
func (s *ParseStage) Execute(ctx context.Context, state *State) error {
	long, err := taf.ParseColumns(state.Table, s.opts)
	if err != nil {
		return err
	}
	actual := long.Rows().Names()[1]
	if s.idLevel != "" && s.idLevel != actual {
		if long, err = long.RenameRowLevel(actual, s.idLevel); err != nil {
			return err
		}
		actual = s.idLevel
	}
	state.Table = long
	state.IDLevel = actual
	return nil
}

// RelTimeStage adds the relative step row level.
type RelTimeStage struct {
	BaseStage
	normalizer *reltime.Normalizer
}

// NewRelTimeStage creates the relative time stage
func NewRelTimeStage(enabled bool, logger *slog.Logger) *RelTimeStage {
	return &RelTimeStage{
		BaseStage:  NewBaseStage(StageIDRelTime, "Normalize relative time", enabled),
		normalizer: reltime.NewNormalizer(logger),
	}
}

// Execute runs the relative time stage
func (s *RelTimeStage) Execute(ctx context.Context, state *State) error {
	out, res, err := s.normalizer.AppendStepLevel(ctx, state.Table, taf.TimeLevel)
	if err != nil {
		return err
	}
	state.Table = out
	if res.Frequency.Count > 0 {
		state.Frequency = res.Frequency.String()
	}
	return nil
}

// DayOfYearStage appends the cyclic day of year features.
type DayOfYearStage struct {
	BaseStage
	opts doy.Options
}

// NewDayOfYearStage creates the day of year stage
func NewDayOfYearStage(enabled bool, opts doy.Options) *DayOfYearStage {
	return &DayOfYearStage{
		BaseStage: NewBaseStage(StageIDDayOfYear, "Encode day of year", enabled),
		opts:      opts,
	}
}

// Execute runs the day of year stage
func (s *DayOfYearStage) Execute(ctx context.Context, state *State) error {
	out, err := doy.AppendFeatures(state.Table, taf.TimeLevel, s.opts)
	if err != nil {
		return err
	}
	state.Table = out
	return nil
}

// TRFStage pivots the table into the time relative format.
type TRFStage struct {
	BaseStage
	spec        trf.ShiftSpec
	passthrough trf.Passthrough
	logger      *slog.Logger
}

// NewTRFStage creates the TRF stage. The id level is taken from the state.
func NewTRFStage(spec trf.ShiftSpec, passthrough trf.Passthrough, logger *slog.Logger) *TRFStage {
	return &TRFStage{
		BaseStage:   NewBaseStage(StageIDTRF, "Build time relative format", true),
		spec:        spec,
		passthrough: passthrough,
		logger:      logger,
	}
}

// Execute runs the TRF stage
func (s *TRFStage) Execute(ctx context.Context, state *State) error {
	tr, err := trf.NewTransformer(s.spec, state.IDLevel,
		trf.WithLogger(s.logger),
		trf.WithPassthrough(s.passthrough))
	if err != nil {
		return err
	}
	out, err := tr.Transform(ctx, state.Table)
	if err != nil {
		return err
	}
	state.Table = out
	return nil
}

// SelectionStage drops columns correlated with an earlier column.
type SelectionStage struct {
	BaseStage
	drop selection.DropCorrelated
}

// NewSelectionStage creates the selection stage from cfg
func NewSelectionStage(cfg config.SelectionConfig, logger *slog.Logger) *SelectionStage {
	return &SelectionStage{
		BaseStage: NewBaseStage(StageIDSelection, "Drop correlated columns", true),
		drop: selection.DropCorrelated{
			Threshold: cfg.Threshold,
			Absolute:  cfg.Absolute,
			Logger:    logger,
		},
	}
}

// Execute runs the selection stage
func (s *SelectionStage) Execute(ctx context.Context, state *State) error {
	corr, err := selection.CorrelationMatrix(state.Table)
	if err != nil {
		return err
	}
	out, err := s.drop.Transform(ctx, state.Table, corr)
	if err != nil {
		return err
	}
	state.Table = out
	return nil
}
