package extract

// Outcome classifies a single pattern attempt. Failing to parse a match
// is a different thing from not matching at all: a ParseRejected pattern
// is abandoned and the next template in the ordered list is tried, while
// exhausting the list yields "absent".
type Outcome int

const (
	// NoMatch means the pattern did not match anywhere in the text.
	NoMatch Outcome = iota
	// ParseRejected means the pattern matched but the captured value
	// was invalid (e.g. an out-of-range calendar day).
	ParseRejected
	// Found means the pattern matched and produced a valid value.
	Found
)
