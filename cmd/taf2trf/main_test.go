package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roicli/internal/exporter"
	"roicli/internal/infrastructure"
	"roicli/internal/reltime"
	"roicli/internal/shared/testutil"
	"roicli/internal/taf"
	"roicli/internal/trf"
	"roicli/pkg/contracts/domain"
)

func writeTAF(t *testing.T, dir string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("ID")
	for feature := 1; feature <= 2; feature++ {
		for _, jd := range testutil.FixtureJulianDays {
			fmt.Fprintf(&b, ",Feature_%d_%s", feature, jd)
		}
	}
	b.WriteString("\n")
	for _, id := range testutil.FixtureIDs {
		b.WriteString(id)
		for feature := 1; feature <= 2; feature++ {
			for step := range testutil.FixtureJulianDays {
				fmt.Fprintf(&b, ",%g", testutil.FixtureValue(id, feature, step))
			}
		}
		b.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taf.csv"), []byte(b.String()), 0644))
}

func setEnv(t *testing.T, in, out string) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	t.Setenv("ROI_LOGGING_LEVEL", "error")
	t.Setenv("ROI_PATHS_INPUT_DIR", in)
	t.Setenv("ROI_PATHS_OUTPUT_DIR", out)
	t.Setenv("ROI_TRANSFORM_RELATIVE_TIME", "true")
}

func TestRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeTAF(t, in)
	setEnv(t, in, out)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-shifts", "m1=0,p1=1"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "15 rows, 4 columns")

	f, err := os.Open(filepath.Join(out, "trf.csv"))
	require.NoError(t, err)
	defer f.Close()
	got, err := exporter.ReadTable(f, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{taf.TimeLevel, reltime.StepLevel, "original_id"}, got.Rows().Names())
	assert.Equal(t, []string{taf.FeatureLevel, trf.LabelLevel}, got.Columns().Names())

	data, err := os.ReadFile(filepath.Join(out, "run_report.json"))
	require.NoError(t, err)
	var report domain.RunReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "every 12 days", report.Frequency)
	assert.Equal(t, in, report.Input)
	assert.Len(t, report.Stages, 4)
	assert.NotEmpty(t, report.TraceID)
}

func TestRun_GroundTruth(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeTAF(t, in)
	setEnv(t, in, out)
	truthPath := filepath.Join(t.TempDir(), "truth.csv")
	require.NoError(t, os.WriteFile(truthPath, []byte("time,class\n2015-11-23,1\n2015-12-05,0\n"), 0644))

	var stdout bytes.Buffer
	args := []string{"-shifts", "m1=0", "-truth", truthPath, "-report", ""}
	require.NoError(t, run(context.Background(), args, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "15 rows, 3 columns")

	f, err := os.Open(filepath.Join(out, "trf.csv"))
	require.NoError(t, err)
	defer f.Close()
	got, err := exporter.ReadTable(f, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "class|", got.Columns().Key(2).String())

	times, err := got.Rows().LevelValues(taf.TimeLevel)
	require.NoError(t, err)
	for i, l := range times {
		switch l.String() {
		case "2015-11-23":
			assert.Equal(t, 1.0, got.At(i, 2))
		case "2015-12-05":
			assert.Equal(t, 0.0, got.At(i, 2))
		default:
			assert.True(t, math.IsNaN(got.At(i, 2)), "row %s", got.Rows().Key(i))
		}
	}

	err = run(context.Background(), []string{"-truth", filepath.Join(t.TempDir(), "missing.csv")}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_Version(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "taf2trf")
}

func TestRun_NoInputs(t *testing.T) {
	setEnv(t, t.TempDir(), t.TempDir())
	err := run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_BadFlag(t *testing.T) {
	err := run(context.Background(), []string{"-nope"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
