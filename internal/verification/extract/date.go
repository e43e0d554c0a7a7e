package extract

import (
	"regexp"
	"strconv"
	"time"
)

// DateField is a date found in report text plus the index of the pattern
// that produced it, for diagnostics.
type DateField struct {
	Value   time.Time
	Pattern int
}

// datePattern pairs a matcher with a pure transform of its capture groups.
// The transform reports ParseRejected for candidates like 45/13/2025 so
// the chain can move on to the next template.
type datePattern struct {
	re    *regexp.Regexp
	parse func(groups []string) (time.Time, Outcome)
}

var datePatterns = []datePattern{
	// Date directly after one of the labeled phrases, day/month/year.
	{
		re:    regexp.MustCompile(`(?i)(?:وقت الحادث|Accident Time|تاريخ الإصدار|Version Date)[^\d]*(\d{1,2})[/-](\d{1,2})[/-](20\d{2})`),
		parse: parseDMY,
	},
	// Strict Najm shape: DD/MM/YYYY.
	{
		re:    regexp.MustCompile(`(\d{2})/(\d{2})/(20\d{2})`),
		parse: parseDMY,
	},
	// Loose numeric shape: D/M/YYYY with / or - separators.
	{
		re:    regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](20\d{2})`),
		parse: parseDMY,
	},
	// ISO shape: YYYY/MM/DD, distinguished by the leading 4-digit group.
	{
		re:    regexp.MustCompile(`(20\d{2})[/-](\d{1,2})[/-](\d{1,2})`),
		parse: parseYMD,
	},
}

// Date extracts the accident date from report text. The ordered template
// list is evaluated first-match-wins: the first template that matches
// anywhere in the text wins, and later templates are only consulted when
// an earlier match parses to an invalid calendar date.
func Date(text string) (DateField, bool) {
	for i, p := range datePatterns {
		groups := p.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		if value, outcome := p.parse(groups); outcome == Found {
			return DateField{Value: value, Pattern: i}, true
		}
		// ParseRejected: abandon this template, try the next one.
	}
	return DateField{}, false
}

func parseDMY(groups []string) (time.Time, Outcome) {
	day, _ := strconv.Atoi(groups[1])
	month, _ := strconv.Atoi(groups[2])
	year, _ := strconv.Atoi(groups[3])
	return makeDate(year, month, day)
}

func parseYMD(groups []string) (time.Time, Outcome) {
	year, _ := strconv.Atoi(groups[1])
	month, _ := strconv.Atoi(groups[2])
	day, _ := strconv.Atoi(groups[3])
	return makeDate(year, month, day)
}

// makeDate builds a UTC midnight date, rejecting candidates that do not
// name a real calendar day (time.Date would silently normalise them).
func makeDate(year, month, day int) (time.Time, Outcome) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ParseRejected
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, ParseRejected
	}
	return t, Found
}
