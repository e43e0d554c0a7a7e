package compare

import (
	"fmt"
	"strconv"
	"strings"
)

// Times compares the extracted report time (HH:MM) against the user's
// declared window [userStart, userEnd]. The tolerance is applied
// symmetrically to both boundaries: a match means
// start - tolerance <= extracted <= end + tolerance.
// On mismatch the message reports the smaller boundary gap in whole
// hours (truncated, not rounded).
func Times(extracted, userStart, userEnd string, toleranceHours int) (bool, string) {
	extractedMin, err := toMinutes(extracted)
	if err != nil {
		return false, msgCannotCompare
	}
	startMin, err := toMinutes(userStart)
	if err != nil {
		return false, msgCannotCompare
	}
	endMin, err := toMinutes(userEnd)
	if err != nil {
		return false, msgCannotCompare
	}

	tolerance := toleranceHours * 60
	if startMin-tolerance <= extractedMin && extractedMin <= endMin+tolerance {
		return true, "مطابق للنطاق الزمني"
	}

	diff := min(abs(extractedMin-startMin), abs(extractedMin-endMin)) / 60
	return false, fmt.Sprintf("خارج النطاق بـ %d ساعة", diff)
}

// toMinutes converts HH:MM to minutes since midnight.
func toMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("malformed time %q", hhmm)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, err
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, err
	}
	return hour*60 + minute, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
