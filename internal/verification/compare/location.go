package compare

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/watheeq/watheeq-backend/internal/verification/domain"
	"github.com/watheeq/watheeq-backend/internal/verification/geo"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

// Geocoder resolves addresses to coordinates and back. *geo.Client
// satisfies it; tests plug in fakes.
type Geocoder interface {
	Forward(ctx context.Context, address string) (geo.Point, error)
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// LocationComparator checks the report's location signal against the
// user's national address through a multi-tier fallback chain. Geocoding
// errors are collapsed to sentinels here, so the comparator itself never
// fails: a dead geocoder just pushes evaluation down the tiers.
type LocationComparator struct {
	geocoder      Geocoder
	maxDistanceKM float64
	logger        *logger.Logger
}

// NewLocationComparator creates a location comparator
func NewLocationComparator(geocoder Geocoder, maxDistanceKM float64, log *logger.Logger) *LocationComparator {
	return &LocationComparator{
		geocoder:      geocoder,
		maxDistanceKM: maxDistanceKM,
		logger:        log,
	}
}

// Compare evaluates the tiers in order, first applicable tier wins:
//
//  1. report coordinates + resolved user address: Haversine distance
//     against the configured maximum.
//  2. report coordinates only: matching by construction, the report
//     itself is authoritative.
//  3. report city + resolved user address: geocode the city and compare
//     with doubled tolerance, reflecting city-level granularity.
//  4. report city only: matching by construction.
//  5. nothing resolves: no match.
func (c *LocationComparator) Compare(ctx context.Context, loc domain.Location, userAddress string) (bool, string) {
	if loc.IsEmpty() {
		return false, "لم يُعثر على موقع في التقرير"
	}

	reportPoint, hasReportCoords := c.parseCoordinates(loc.Coordinates)
	userPoint := c.forward(ctx, userAddress)

	if userPoint.IsZero() {
		// National address codes often fail as free text; the 4-char
		// prefix is the area code and geocodes more reliably.
		userPoint = c.forward(ctx, addressPrefix(userAddress))
	}

	if hasReportCoords && !userPoint.IsZero() {
		distance := geo.DistanceKM(reportPoint.Lat, reportPoint.Lng, userPoint.Lat, userPoint.Lng)

		label := c.reverse(ctx, reportPoint.Lat, reportPoint.Lng)
		if label == "" {
			label = loc.City
		}

		c.logger.Info().
			Float64("distance_km", distance).
			Float64("max_km", c.maxDistanceKM).
			Msg("comparing report and user coordinates")

		if distance <= c.maxDistanceKM {
			if label == "" {
				label = "موقع قريب"
			}
			return true, fmt.Sprintf("مطابق - المسافة %.1f كم (%s)", distance, label)
		}
		return false, fmt.Sprintf("غير مطابق - المسافة %.1f كم (الحد الأقصى %.1f كم)", distance, c.maxDistanceKM)
	}

	if hasReportCoords {
		if label := c.reverse(ctx, reportPoint.Lat, reportPoint.Lng); label != "" {
			return true, fmt.Sprintf("إحداثيات التقرير: %s (%.4f, %.4f)", label, reportPoint.Lat, reportPoint.Lng)
		}
		return true, fmt.Sprintf("إحداثيات: %.4f, %.4f", reportPoint.Lat, reportPoint.Lng)
	}

	if loc.City != "" && !userPoint.IsZero() {
		cityPoint := c.forward(ctx, loc.City)
		if !cityPoint.IsZero() {
			distance := geo.DistanceKM(cityPoint.Lat, cityPoint.Lng, userPoint.Lat, userPoint.Lng)
			if distance <= c.maxDistanceKM*2 {
				return true, fmt.Sprintf("نفس المنطقة - %s (%.1f كم)", loc.City, distance)
			}
			return false, fmt.Sprintf("مناطق مختلفة - التقرير: %s, المسافة: %.1f كم", loc.City, distance)
		}
	}

	if loc.City != "" {
		return true, fmt.Sprintf("المدينة: %s", loc.City)
	}

	return false, "تعذر التحقق من الموقع"
}

// forward collapses geocoding failures to the zero-point sentinel.
func (c *LocationComparator) forward(ctx context.Context, address string) geo.Point {
	point, err := c.geocoder.Forward(ctx, address)
	if err != nil {
		c.logger.Warn().Err(err).Str("address", address).Msg("forward geocode failed")
		return geo.Point{}
	}
	return point
}

// reverse collapses geocoding failures to the empty-string sentinel.
func (c *LocationComparator) reverse(ctx context.Context, lat, lng float64) string {
	name, err := c.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		c.logger.Warn().Err(err).Msg("reverse geocode failed")
		return ""
	}
	return name
}

// parseCoordinates parses the extractor's "lat, lng" slot. A malformed
// or zero pair counts as absent.
func (c *LocationComparator) parseCoordinates(raw string) (geo.Point, bool) {
	if raw == "" {
		return geo.Point{}, false
	}

	parts := strings.Split(strings.ReplaceAll(raw, " ", ""), ",")
	if len(parts) != 2 {
		c.logger.Warn().Str("coordinates", raw).Msg("malformed report coordinates")
		return geo.Point{}, false
	}

	lat, errLat := strconv.ParseFloat(parts[0], 64)
	lng, errLng := strconv.ParseFloat(parts[1], 64)
	if errLat != nil || errLng != nil {
		c.logger.Warn().Str("coordinates", raw).Msg("malformed report coordinates")
		return geo.Point{}, false
	}

	point := geo.Point{Lat: lat, Lng: lng}
	return point, !point.IsZero()
}

// addressPrefix returns the first 4 characters of a national address
// (the area code), uppercased. Short addresses are returned whole.
func addressPrefix(address string) string {
	runes := []rune(address)
	if len(runes) < 4 {
		return address
	}
	return strings.ToUpper(string(runes[:4]))
}
