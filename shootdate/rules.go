package shootdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rule is one file name pattern. match receives the name with identifiers
// already stripped and returns a canonical timestamp.
type Rule struct {
	Name  string
	match func(e *Engine, name string) (string, bool)
}

// Match applies the rule to an already stripped file name.
func (r Rule) Match(e *Engine, name string) (string, bool) {
	return r.match(e, name)
}

// Rules returns the file name rules in the order Infer tries them.
func Rules() []Rule {
	rules := make([]Rule, len(filenameRules))
	copy(rules, filenameRules)
	return rules
}

var (
	// MYXJ_20180317141344_fast.jpg
	underscore14Re = regexp.MustCompile(`_(\d{14})_`)
	// 2021-05-12-21-48-15-930.mp4
	hyphenMillisRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}-\d{3}`)
	// IMG_20180317_141344.jpg
	dateUnderscoreTimeRe = regexp.MustCompile(`\d{8}_\d{6}`)
	// 2021-05-12-214815930.mp4
	hyphenDateTimeMillisRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})-(\d{6})(\d{3})`)
	// 2303221954461692.jpg
	shortYearRe = regexp.MustCompile(`(\d{2})(\d{2})(\d{2})(\d{6})(\d{4})`)
	// 照片20121128 172927.jpg
	dateSpaceTimeRe         = regexp.MustCompile(`(\d{8})\s(\d{6})`)
	dateUnderscoreTimeAltRe = regexp.MustCompile(`(\d{8})_(\d{6})`)
	// mmexport20180317141344.jpg
	jpg14Re = regexp.MustCompile(`(20\d{12})\.jpg`)
	// 2021-05-12-214709.mp4
	hyphenDateTimeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})-(\d{6})`)
	// Screenshot_2015-04-27-09-24-58.jpeg
	screenshotRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})-(\d{2}-\d{2}-\d{2})`)
	digitRunRe   = regexp.MustCompile(`\d+`)
)

var filenameRules = []Rule{
	{
		Name: "underscore-14-digits",
		match: func(e *Engine, name string) (string, bool) {
			m := underscore14Re.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			return e.canonical(m[1], "20060102150405")
		},
	},
	{
		// Taken as is; only the calendar is checked.
		Name: "hyphen-millis",
		match: func(e *Engine, name string) (string, bool) {
			m := hyphenMillisRe.FindString(name)
			if m == "" {
				return "", false
			}
			return e.reformat(m[:19], "2006-01-02-15-04-05")
		},
	},
	{
		Name: "date-underscore-time",
		match: func(e *Engine, name string) (string, bool) {
			m := dateUnderscoreTimeRe.FindString(name)
			if m == "" {
				return "", false
			}
			return e.canonical(m, Layout)
		},
	},
	{
		// Taken as is; only the calendar is checked.
		Name: "hyphen-date-time-millis",
		match: func(e *Engine, name string) (string, bool) {
			m := hyphenDateTimeMillisRe.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			return e.reformat(m[1]+"-"+m[2], "2006-01-02-150405")
		},
	},
	{
		Name: "short-year-16-digits",
		match: func(e *Engine, name string) (string, bool) {
			m := shortYearRe.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			yy, _ := strconv.Atoi(m[1])
			return e.canonical(fmt.Sprintf("%d%s%s_%s", yy+2000, m[2], m[3], m[4]), Layout)
		},
	},
	{
		Name: "date-space-time",
		match: func(e *Engine, name string) (string, bool) {
			m := dateSpaceTimeRe.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			return e.canonical(m[1]+"_"+m[2], Layout)
		},
	},
	{
		Name: "date-underscore-time-alt",
		match: func(e *Engine, name string) (string, bool) {
			m := dateUnderscoreTimeAltRe.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			return e.canonical(m[1]+"_"+m[2], Layout)
		},
	},
	{
		Name: "jpg-14-digits",
		match: func(e *Engine, name string) (string, bool) {
			m := jpg14Re.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			return e.canonical(m[1][:8]+"_"+m[1][8:], Layout)
		},
	},
	{
		Name: "hyphen-date-time",
		match: func(e *Engine, name string) (string, bool) {
			m := hyphenDateTimeRe.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			return e.canonical(strings.ReplaceAll(m[1]+"_"+m[2], "-", ""), Layout)
		},
	},
	{
		Name: "screenshot-hyphens",
		match: func(e *Engine, name string) (string, bool) {
			m := screenshotRe.FindStringSubmatch(name)
			if m == nil {
				return "", false
			}
			return e.canonical(strings.ReplaceAll(m[1]+"_"+m[2], "-", ""), Layout)
		},
	},
	{
		Name:  "epoch-millis",
		match: (*Engine).epochMillis,
	},
}

// epochMillis reads the longest digit run in name (the first one on ties)
// as milliseconds since the Unix epoch. Only 13 and 16 digit runs are
// considered; a 16 digit run only survives validation if it really is
// milliseconds, which in practice it never is.
func (e *Engine) epochMillis(name string) (string, bool) {
	var longest string
	for _, run := range digitRunRe.FindAllString(name, -1) {
		if len(run) > len(longest) {
			longest = run
		}
	}
	if len(longest) != 16 && len(longest) != 13 {
		return "", false
	}

	ms, err := strconv.ParseInt(longest, 10, 64)
	if err != nil {
		return "", false
	}
	return e.canonical(time.UnixMilli(ms).In(e.location()).Format(Layout), Layout)
}

// canonical validates candidate against layout and reformats it to Layout.
func (e *Engine) canonical(candidate, layout string) (string, bool) {
	if e.Validate(candidate, layout) != nil {
		return "", false
	}
	return e.reformat(candidate, layout)
}

// reformat converts candidate to Layout without the future check. The
// digits are kept as written: parsing in UTC, which has no DST gaps, means
// a wall clock time the engine's zone skips is not moved.
func (e *Engine) reformat(candidate, layout string) (string, bool) {
	t, err := time.Parse(layout, candidate)
	if err != nil {
		return "", false
	}
	return t.Format(Layout), true
}
