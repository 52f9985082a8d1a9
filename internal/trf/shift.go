package trf

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "roicli/internal/errors"
	"roicli/internal/validation"
)

// Shift names a relative time offset. Steps > 0 refers to a later row,
// Steps < 0 to an earlier one, 0 to the row itself.
type Shift struct {
	Label string `yaml:"label" validate:"required"`
	Steps int    `yaml:"steps"`
}

// ShiftSpec is an ordered list of shifts with unique labels.
type ShiftSpec struct {
	Shifts []Shift `yaml:"shifts" validate:"required,min=1,unique=Label,dive"`
}

// Validate checks that the spec is non-empty and that labels are set and unique.
func (s ShiftSpec) Validate() error {
	return validation.Struct(s)
}

// Labels returns the shift labels in spec order.
func (s ShiftSpec) Labels() []string {
	out := make([]string, len(s.Shifts))
	for i, sh := range s.Shifts {
		out[i] = sh.Label
	}
	return out
}

// String renders the spec in the form accepted by ParseShiftSpec.
func (s ShiftSpec) String() string {
	parts := make([]string, len(s.Shifts))
	for i, sh := range s.Shifts {
		parts[i] = fmt.Sprintf("%s=%d", sh.Label, sh.Steps)
	}
	return strings.Join(parts, ",")
}

// ParseShiftSpec parses "m2=-1,m1=0,p1=1" into a validated spec.
func ParseShiftSpec(text string) (ShiftSpec, error) {
	var spec ShiftSpec
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, steps, ok := strings.Cut(part, "=")
		if !ok {
			return ShiftSpec{}, apperrors.NewParsingError(fmt.Sprintf("shift %q is not of the form label=steps", part), nil)
		}
		n, err := strconv.Atoi(strings.TrimSpace(steps))
		if err != nil {
			return ShiftSpec{}, apperrors.NewParsingError(fmt.Sprintf("shift %q has a non-integer step count", part), err)
		}
		spec.Shifts = append(spec.Shifts, Shift{Label: strings.TrimSpace(label), Steps: n})
	}
	if err := spec.Validate(); err != nil {
		return ShiftSpec{}, err
	}
	return spec, nil
}
