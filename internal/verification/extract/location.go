package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/watheeq/watheeq-backend/internal/verification/domain"
)

// Location pattern tiers, recorded for diagnostics.
const (
	LocationPatternNationalAddress = iota
	LocationPatternLabeledCity
	LocationPatternGazetteer
	LocationPatternCoordinatesOnly
)

// LocationField is the location signal found in report text plus the tier
// that filled the city slot.
type LocationField struct {
	Location domain.Location
	Pattern  int
}

var (
	// National short address: 4 letters + 4 digits, e.g. RRQD2929.
	nationalAddressRe = regexp.MustCompile(`(?i)([A-Za-z]{4}\d{4})`)
	// Decimal-degree pair, e.g. "24.7136, 46.6753".
	coordinatesRe = regexp.MustCompile(`(\d{1,2}\.\d+)\s*,\s*(\d{1,2}\.\d+)`)
	// Rest of the line after one of the two location labels.
	locationLabelRe = regexp.MustCompile(`(?:مكان الحادث|Accident Location)([^\n]*)`)
)

// LocationExtractor finds where the report says the accident happened.
// The gazetteer of recognised city names is injected so tests and
// deployments can vary it.
type LocationExtractor struct {
	cities []string
}

// NewLocationExtractor creates a location extractor with the given
// city gazetteer.
func NewLocationExtractor(cities []string) *LocationExtractor {
	return &LocationExtractor{cities: cities}
}

// Extract returns the (city, coordinates) pair found in the text. Either
// slot may be empty; callers must treat both-empty as absent.
//
// The city slot is filled by the first applicable tier: a national
// address token beats everything because it is the most specific
// machine-readable locator, then a gazetteer city following a location
// label, then a bare gazetteer hit anywhere in the text. Coordinates are
// captured independently of the city tiers.
func (e *LocationExtractor) Extract(text string) (LocationField, bool) {
	field := LocationField{Pattern: LocationPatternCoordinatesOnly}

	if m := coordinatesRe.FindStringSubmatch(text); m != nil {
		field.Location.Coordinates = fmt.Sprintf("%s, %s", m[1], m[2])
	}

	if m := nationalAddressRe.FindStringSubmatch(text); m != nil {
		field.Location.City = strings.ToUpper(m[1])
		field.Pattern = LocationPatternNationalAddress
		return field, true
	}

	if m := locationLabelRe.FindStringSubmatch(text); m != nil {
		for _, city := range e.cities {
			if strings.Contains(m[1], city) {
				field.Location.City = city
				field.Pattern = LocationPatternLabeledCity
				break
			}
		}
	}

	if field.Location.City == "" {
		for _, city := range e.cities {
			if strings.Contains(text, city) {
				field.Location.City = city
				field.Pattern = LocationPatternGazetteer
				break
			}
		}
	}

	return field, !field.Location.IsEmpty()
}
