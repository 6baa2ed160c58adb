package shootdate

import (
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ErrFutureDate is returned by Validate for timestamps later than now.
var ErrFutureDate = errors.New("timestamp is in the future")

// Validate parses candidate with layout (Layout when empty) in the engine's
// location and reports why it cannot be used as a shooting date.
func (e *Engine) Validate(candidate, layout string) error {
	if layout == "" {
		layout = Layout
	}

	t, err := time.ParseInLocation(layout, candidate, e.location())
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", candidate, err)
	}
	if t.After(e.now()) {
		return fmt.Errorf("%s: %w", candidate, ErrFutureDate)
	}
	return nil
}

// IsValid reports whether candidate parses with layout and is not in the future.
func (e *Engine) IsValid(candidate, layout string) bool {
	return e.Validate(candidate, layout) == nil
}

// Validate checks candidate against layout using the local clock and zone.
func Validate(candidate, layout string) error {
	return defaultEngine.Validate(candidate, layout)
}

// IsValid checks candidate against layout using the local clock and zone.
func IsValid(candidate, layout string) bool {
	return defaultEngine.IsValid(candidate, layout)
}

// ParseTimestamp turns an inference result back into a time. Filename rules
// produce Layout, the EXIF passthrough produces ExifLayout, and the PNG
// "Creation Time" text can be in whatever format the writing app chose.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{Layout, ExifLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
