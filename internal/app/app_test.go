package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roicli/internal/config"
	apperrors "roicli/internal/errors"
	"roicli/internal/infrastructure"
	"roicli/internal/pipeline"
	"roicli/internal/shared/testutil"
)

// writeFixture splits the fixture TAF into one CSV file per feature.
func writeFixture(t *testing.T, dir string) {
	t.Helper()
	for feature := 1; feature <= 2; feature++ {
		var b strings.Builder
		b.WriteString("ID")
		for _, jd := range testutil.FixtureJulianDays {
			fmt.Fprintf(&b, ",Feature_%d_%s", feature, jd)
		}
		b.WriteString("\n")
		for _, id := range testutil.FixtureIDs {
			b.WriteString(id)
			for step := range testutil.FixtureJulianDays {
				fmt.Fprintf(&b, ",%g", testutil.FixtureValue(id, feature, step))
			}
			b.WriteString("\n")
		}
		name := filepath.Join(dir, fmt.Sprintf("feature_%d", feature), "taf.csv")
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0755))
		require.NoError(t, os.WriteFile(name, []byte(b.String()), 0644))
	}
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Telemetry.MetricsFile = "roicli.prom"
	writeFixture(t, cfg.Paths.InputDir)

	a, err := NewApplicationWithConfig("taf2trf", cfg, io.Discard)
	require.NoError(t, err)
	return a
}

func TestApplication_LoadTAF(t *testing.T) {
	a := newTestApplication(t)

	taf, inputs, err := a.LoadTAF(context.Background())
	require.NoError(t, err)
	assert.Len(t, inputs, 2)

	n, m := taf.Shape()
	assert.Equal(t, 3, n)
	assert.Equal(t, 10, m)
	assert.Equal(t, []string{"ID"}, taf.Rows().Names())
}

func TestApplication_RunAndWrite(t *testing.T) {
	a := newTestApplication(t)
	ctx := context.Background()

	taf, _, err := a.LoadTAF(ctx)
	require.NoError(t, err)
	p, err := pipeline.FromConfig(a.Config.Transform, a.PipelineOptions()...)
	require.NoError(t, err)
	out, _, err := p.Run(ctx, taf)
	require.NoError(t, err)

	path, err := a.WriteFile("trf/out.txt", func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%d rows\n", out.Rows().Len())
		return err
	})
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "15 rows\n", string(content))

	require.NoError(t, a.Close(ctx))
	metrics, err := os.ReadFile(filepath.Join(a.Config.Paths.OutputDir, "roicli.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "stage_runs_total")
}

func TestApplication_WriteFileError(t *testing.T) {
	a := newTestApplication(t)
	boom := errors.New("boom")
	_, err := a.WriteFile("x.csv", func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestApplication_LoadTAFNoInputs(t *testing.T) {
	a := newTestApplication(t)
	a.Config.Paths.Extension = ".xlsx"
	_, _, err := a.LoadTAF(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestNewApplicationWithConfig_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = ""
	_, err := NewApplicationWithConfig("taf2trf", cfg, io.Discard)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
