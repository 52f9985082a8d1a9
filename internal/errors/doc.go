// Package errors defines the error taxonomy shared by every stage of the
// feature reshaping pipeline.
//
// All errors are *AppError values tagged with an ErrorType. The three core
// failure classes are:
//
//   - NON_UNIQUE_KEY: a composite row or column key is not unique after a
//     reshape that requires uniqueness.
//   - IRREGULAR_TIME_BASE: the time sequence is not an even progression of a
//     single step size.
//   - INVALID_CONFIGURATION: an unrecognized mode or direction argument.
//
// Callers match them with the standard library:
//
//	if errors.Is(err, apperrors.ErrNonUniqueKey) {
//	    // duplicate (feature, time) for an id
//	}
//
// Errors are raised at the point of detection and are never recovered
// inside the core.
package errors
