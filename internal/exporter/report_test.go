package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roicli/pkg/contracts/domain"
)

func TestWriteFoldReport(t *testing.T) {
	folds := []domain.FoldReport{
		{Fold: 0, Train: 10, Test: 5, Measures: domain.Measures{Recall: 1, Precision: 0.5, Kappa: math.NaN()}, ROCAUC: 0.75},
		{Fold: 1, Train: 10, Test: 5, Measures: domain.Measures{Recall: 0.5}, ROCAUC: 1},
	}
	mean := domain.Measures{Recall: 0.75}

	var buf bytes.Buffer
	require.NoError(t, WriteFoldReport(&buf, folds, &mean))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, FoldReportHeaders(), records[0])
	assert.Len(t, records[0], 3+len(domain.MeasureNames)+1)

	assert.Equal(t, []string{"0", "10", "5"}, records[1][:3])
	assert.Equal(t, "1", records[1][4])
	assert.Equal(t, "0.5", records[1][5])
	assert.Equal(t, Missing, records[1][10])
	assert.Equal(t, "0.75", records[1][11])
	assert.Equal(t, "mean", records[3][0])
	assert.Equal(t, "0.75", records[3][4])
	assert.Equal(t, "", records[3][11])
}

func TestWriteFoldReport_NoMean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFoldReport(&buf, nil, nil))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteImportances(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteImportances(&buf, []domain.FeatureImportance{
		{Feature: "B2_m1", Importance: 0.25},
		{Feature: "B3_p1", Importance: 0.125},
	}))
	assert.Equal(t, "feature,importance\nB2_m1,0.25\nB3_p1,0.125\n", buf.String())
}
