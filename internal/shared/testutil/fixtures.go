package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roicli/internal/table"
)

// FixtureJulianDays are the acquisition dates of the TAF fixture, 12 days apart.
var FixtureJulianDays = []string{
	"2457350.0000000000",
	"2457362.0000000000",
	"2457374.0000000000",
	"2457386.0000000000",
	"2457398.0000000000",
}

// FixtureIDs lists the fixture objects in their source order.
var FixtureIDs = []string{"ID_1", "ID_7", "ID_5"}

// FixtureDates are FixtureJulianDays decoded with the noon correction.
func FixtureDates() []time.Time {
	start := time.Date(2015, time.November, 23, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, len(FixtureJulianDays))
	for i := range out {
		out[i] = start.AddDate(0, 0, 12*i)
	}
	return out
}

// FixtureValue returns the fixture cell for an object, feature (1 or 2) and step.
func FixtureValue(id string, feature, step int) float64 {
	base := map[string]float64{"ID_1": 10, "ID_7": 70, "ID_5": 50}[id]
	return base + float64(5*(feature-1)+step)
}

// FixtureTAF builds the three objects by two features by five dates TAF table:
// rows "ID", columns "Feature_<n>_<julian day>", integer values.
func FixtureTAF(t testing.TB) *table.Table {
	t.Helper()

	labels := make([]table.Label, 0, 2*len(FixtureJulianDays))
	for feature := 1; feature <= 2; feature++ {
		for _, jd := range FixtureJulianDays {
			labels = append(labels, table.String(fmt.Sprintf("Feature_%d_%s", feature, jd)))
		}
	}
	ids := make([]table.Label, len(FixtureIDs))
	cells := make([][]float64, len(FixtureIDs))
	for i, id := range FixtureIDs {
		ids[i] = table.String(id)
		for feature := 1; feature <= 2; feature++ {
			for step := range FixtureJulianDays {
				cells[i] = append(cells[i], FixtureValue(id, feature, step))
			}
		}
	}

	tbl, err := table.New(table.SingleLevel("ID", ids...), table.SingleLevel("Feature_Time", labels...), cells, table.IntKind)
	require.NoError(t, err)
	return tbl
}
