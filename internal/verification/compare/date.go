package compare

import (
	"fmt"
	"time"
)

// Messages shared by the comparators. "cannot compare" covers malformed
// user input; per contract it yields a false match, never an error.
const msgCannotCompare = "تعذر المقارنة"

// Dates compares the extracted report date against the user-declared
// date (YYYY-MM-DD), allowing toleranceDays of slack in either direction.
// The message reports the exact day difference when nonzero.
func Dates(extracted time.Time, userDate string, toleranceDays int) (bool, string) {
	userTime, err := time.ParseInLocation("2006-01-02", userDate, time.UTC)
	if err != nil {
		return false, msgCannotCompare
	}

	diff := int(extracted.Sub(userTime).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}

	if diff <= toleranceDays {
		if diff > 0 {
			return true, fmt.Sprintf("مطابق (فرق %d يوم)", diff)
		}
		return true, "مطابق"
	}
	return false, fmt.Sprintf("غير مطابق (فرق %d يوم)", diff)
}
