package exporter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"roicli/internal/table"
)

// Missing is written for NaN cells.
const Missing = "NA"

// formatCell formats a cell with the shortest exact representation.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return Missing
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseCell is the inverse of formatCell.
func parseCell(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, Missing) || strings.EqualFold(text, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(text, 64)
}

// parseLabel types a label by its text: integers first, then dates and
// timestamps, anything else is a string. A typed label is only used when it
// writes back to the same text, so "001" or "+1" stay strings.
func parseLabel(text string) table.Label {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil && strconv.FormatInt(n, 10) == text {
		return table.Int(n)
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if l := table.Time(t); l.String() == text {
			return l
		}
	}
	return table.String(text)
}
