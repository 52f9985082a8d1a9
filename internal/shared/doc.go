// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides:
//
//   - A buffered slog handler for asserting on log records
//   - The three object, two feature, five date TAF fixture and its
//     expected cell values
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    tbl := testutil.FixtureTAF(t)
//	    ...
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "detected time base")
//	}
package shared
