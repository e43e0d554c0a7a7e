package extract

import "regexp"

// Source labels for the two issuing authorities recognised in reports.
const (
	SourceNajm    = "نجم"
	SourceTraffic = "المرور"
)

// najmPatterns is the vocabulary of the Najm accident-report format
// (headings and field labels that appear in real Najm liability reports).
var najmPatterns = compileAll([]string{
	`نجم`,
	`najm`,
	`تقرير تحديد المسؤولية`,
	`Liability Determination Report`,
	`التقرير النهائي`,
	`Final Report`,
	`رقم الحالة`,
	`Case Number`,
	`وقت الحادث`,
	`Accident Time`,
	`مكان الحادث`,
	`Accident Location`,
	`أحداثيات الحادث`,
	`Coordinate`,
	`نسبة المسؤولية`,
	`سبب الحادث`,
	`Cause of Acc`,
})

// trafficPatterns is the vocabulary of General Traffic Department reports.
var trafficPatterns = compileAll([]string{
	`المرور`,
	`إدارة المرور`,
	`traffic`,
	`الإدارة العامة للمرور`,
	`مخالفة مرورية`,
	`تقرير مروري`,
})

func compileAll(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}

// DetectSource scores the text against the two authority vocabularies and
// reports whether the document looks like a genuine report, and from whom.
//
// Two or more Najm hits classify the report as Najm outright. Otherwise any
// Traffic hit wins. A single Najm hit is still accepted as a last resort;
// this lenient fallback is intentionally asymmetric (there is no
// single-hit path for Traffic) and is kept for compatibility with the
// historical behavior. Worth revisiting: a lone generic hit like
// "Coordinate" currently passes as Najm.
func DetectSource(text string) (bool, string) {
	najmScore := 0
	for _, re := range najmPatterns {
		if re.MatchString(text) {
			najmScore++
		}
	}

	if najmScore >= 2 {
		return true, SourceNajm
	}

	for _, re := range trafficPatterns {
		if re.MatchString(text) {
			return true, SourceTraffic
		}
	}

	if najmScore >= 1 {
		return true, SourceNajm
	}

	return false, ""
}
