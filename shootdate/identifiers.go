package shootdate

import (
	"regexp"
)

var (
	hyphenatedUUID = regexp.MustCompile(`[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}`)
	hexRun         = regexp.MustCompile(`[a-fA-F0-9]{32,}`)
	leadingDigits  = regexp.MustCompile(`^\d{10,}`)
	trailingDigits = regexp.MustCompile(`\d{10,}$`)
)

const uuidHexLen = 32

// StripIdentifiers removes the first UUID-like segment from a file name so
// the hex digits cannot be mistaken for a timestamp. A hyphenated UUID wins
// over bare hex runs. A bare run of 42 or more hex digits is assumed to be a
// 32 digit identifier glued to a decimal timestamp, and only the identifier
// half is removed.
func StripIdentifiers(name string) string {
	if loc := hyphenatedUUID.FindStringIndex(name); loc != nil {
		return name[:loc[0]] + name[loc[1]:]
	}

	for _, loc := range hexRun.FindAllStringIndex(name, -1) {
		start, end := loc[0], loc[1]
		run := name[start:end]

		switch {
		case len(run) == uuidHexLen:
			return name[:start] + name[end:]
		case len(run) >= uuidHexLen+10:
			if leadingDigits.MatchString(run) {
				// timestamp first, identifier last
				return name[:end-uuidHexLen] + name[end:]
			}
			if trailingDigits.MatchString(run) {
				return name[:start] + name[start+uuidHexLen:]
			}
		}
	}

	return name
}
