package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeField is a time-of-day found in report text, always formatted as
// zero-padded HH:MM, plus the index of the pattern that produced it.
type TimeField struct {
	Value   string
	Pattern int
}

type timePattern struct {
	re    *regexp.Regexp
	parse func(groups []string) (string, Outcome)
}

var timePatterns = []timePattern{
	// Najm timestamp: a full date immediately before the time, e.g.
	// "وقت الحادث 02/09/2025 17:34:26". Seconds are ignored.
	{
		re:    regexp.MustCompile(`(?i)(?:وقت الحادث|Accident Time)[^\d]*\d{1,2}/\d{1,2}/\d{4}\s+(\d{1,2}):(\d{2}):?(?:\d{2})?`),
		parse: parse24h,
	},
	// 24h with seconds: 17:34:26, seconds discarded.
	{
		re:    regexp.MustCompile(`(\d{1,2}):(\d{2}):(?:\d{2})`),
		parse: parse24h,
	},
	// HH:MM with an optional AM/PM marker in Arabic or Latin script.
	{
		re:    regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(ص|م|AM|PM|صباح|مساء)?`),
		parse: parseWithPeriod,
	},
	// Labeled form: "الساعة 5" or "الساعة 5:30 مساء".
	{
		re:    regexp.MustCompile(`الساعة\s*(\d{1,2}):?(\d{2})?\s*(ص|م|صباح|مساء)?`),
		parse: parseWithPeriod,
	},
}

// Time extracts the accident time-of-day from report text, evaluated as
// an ordered first-match-wins template chain like the date extractor.
func Time(text string) (TimeField, bool) {
	for i, p := range timePatterns {
		groups := p.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		if value, outcome := p.parse(groups); outcome == Found {
			return TimeField{Value: value, Pattern: i}, true
		}
	}
	return TimeField{}, false
}

func parse24h(groups []string) (string, Outcome) {
	return formatTime(groups[1], groups[2], "")
}

func parseWithPeriod(groups []string) (string, Outcome) {
	period := ""
	if len(groups) > 3 {
		period = groups[3]
	}
	return formatTime(groups[1], groups[2], period)
}

// formatTime applies the 12-hour marker rules: a PM-equivalent marker adds
// 12 hours unless the hour is already 12, an AM-equivalent marker maps 12
// to 0, and no marker leaves the hour as parsed (assumed 24-hour).
func formatTime(hourStr, minuteStr, period string) (string, Outcome) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return "", ParseRejected
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil {
			return "", ParseRejected
		}
	}
	if hour > 23 || minute > 59 {
		return "", ParseRejected
	}

	switch {
	case isPMMarker(period) && hour != 12:
		hour += 12
	case isAMMarker(period) && hour == 12:
		hour = 0
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), Found
}

func isPMMarker(period string) bool {
	switch strings.ToUpper(period) {
	case "م", "PM", "مساء":
		return true
	}
	return false
}

func isAMMarker(period string) bool {
	switch strings.ToUpper(period) {
	case "ص", "AM", "صباح":
		return true
	}
	return false
}
