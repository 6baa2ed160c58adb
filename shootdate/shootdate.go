// Package shootdate infers when a photo or video was shot from its embedded
// metadata or, failing that, from the naming conventions cameras and apps use
// for the file name.
//
// Results are canonical "YYYYMMDD_HHMMSS" strings in local time. The only
// exceptions are the two embedded metadata values, which are passed through
// in the format they were stored in.
package shootdate

import (
	"errors"
	"path/filepath"
	"time"
)

const (
	// Layout is the canonical timestamp layout.
	Layout = "20060102_150405"
	// ExifLayout is the layout of EXIF DateTime* tags.
	ExifLayout = "2006:01:02 15:04:05"
	// CreationTimeKey is the PNG text key some apps store the capture time under.
	CreationTimeKey = "Creation Time"
)

// Names of the two embedded metadata rules, as reported in Result.Rule.
const (
	RuleDateTimeOriginal = "exif-datetime-original"
	RuleCreationTime     = "creation-time-text"
)

// ErrNoMetadata is returned by metadata readers when a file carries no
// embedded metadata at all. Any other reader error means the reader failed.
var ErrNoMetadata = errors.New("no embedded metadata")

// Metadata is embedded metadata already extracted from a file.
type Metadata struct {
	// DateTimeOriginal is the raw EXIF value, "YYYY:MM:DD HH:MM:SS" when well formed.
	DateTimeOriginal string
	// Text holds free-text key/value fields such as PNG tEXt chunks.
	Text map[string]string
}

// Result is an inferred timestamp and the rule that produced it.
type Result struct {
	Timestamp string
	Rule      string
}

// Engine holds the clock and zone used for validation and epoch conversion.
// The zero value uses time.Now and time.Local. An Engine is safe for
// concurrent use.
type Engine struct {
	Now      func() time.Time
	Location *time.Location
}

var defaultEngine = &Engine{}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) location() *time.Location {
	if e.Location != nil {
		return e.Location
	}
	return time.Local
}

// Infer returns the best guess shooting time for path. meta may be nil when
// no embedded metadata is available. Only the base name of path is matched.
func (e *Engine) Infer(path string, meta *Metadata) (Result, bool) {
	if meta != nil {
		if meta.DateTimeOriginal != "" {
			return Result{Timestamp: meta.DateTimeOriginal, Rule: RuleDateTimeOriginal}, true
		}
		if v := meta.Text[CreationTimeKey]; v != "" {
			return Result{Timestamp: v, Rule: RuleCreationTime}, true
		}
	}

	name := StripIdentifiers(filepath.Base(path))
	for _, r := range filenameRules {
		if ts, ok := r.match(e, name); ok {
			return Result{Timestamp: ts, Rule: r.Name}, true
		}
	}
	return Result{}, false
}

// Infer runs the default engine and returns only the timestamp.
func Infer(path string, meta *Metadata) (string, bool) {
	res, ok := defaultEngine.Infer(path, meta)
	return res.Timestamp, ok
}
