package domain

import "time"

// Claim carries the user-declared incident details that the report is
// checked against. It is built once per verification call and never mutated.
type Claim struct {
	// ReportPath points at the uploaded report PDF.
	ReportPath string
	// Date is the declared incident date, YYYY-MM-DD.
	Date string
	// StartTime and EndTime bound the declared incident window, HH:MM (24h).
	StartTime string
	EndTime   string
	// Address is the user's national address (short code or free text).
	Address string
}

// Location is the extractor's view of where the report says the accident
// happened. Either slot may be empty; both empty means "not found".
type Location struct {
	// City holds a city name from the gazetteer or a national address
	// token (4 letters + 4 digits).
	City string
	// Coordinates holds a raw "lat, lng" decimal-degree pair as printed
	// in the report.
	Coordinates string
}

// IsEmpty reports whether the extractor found no location signal at all.
func (l Location) IsEmpty() bool {
	return l.City == "" && l.Coordinates == ""
}

// String returns the most specific non-empty slot for diagnostics.
func (l Location) String() string {
	if l.City != "" {
		return l.City
	}
	return l.Coordinates
}

// Result is the outcome of verifying one report against one claim.
// Immutable once returned by the verifier.
type Result struct {
	IsValidSource bool   `json:"is_valid_source"`
	SourceName    string `json:"source_name"`

	DateMatch     bool `json:"date_match"`
	TimeMatch     bool `json:"time_match"`
	LocationMatch bool `json:"location_match"`

	// Confidence is always the gated sum of the four fixed weights
	// (source 30, date 30, time 20, location 20), capped at 100.
	Confidence int    `json:"confidence"`
	Message    string `json:"message"`

	// Matches holds a per-field human-readable explanation. Keys:
	// "source", "date", "time", "location". A field appears only when
	// it was actually evaluated.
	Matches map[string]string `json:"matches"`

	// Diagnostic copies of the extractor output.
	ExtractedDate     *time.Time `json:"extracted_date,omitempty"`
	ExtractedTime     string     `json:"extracted_time,omitempty"`
	ExtractedLocation string     `json:"extracted_location,omitempty"`

	// RawText keeps the first part of the extracted text for debugging.
	RawText string `json:"-"`
}
