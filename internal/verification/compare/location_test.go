package compare

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/watheeq/watheeq-backend/internal/verification/domain"
	"github.com/watheeq/watheeq-backend/internal/verification/geo"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

// fakeGeocoder scripts geocoding answers per address / coordinate pair.
type fakeGeocoder struct {
	forward func(address string) (geo.Point, error)
	reverse func(lat, lng float64) (string, error)
}

func (f *fakeGeocoder) Forward(_ context.Context, address string) (geo.Point, error) {
	if f.forward == nil {
		return geo.Point{}, fmt.Errorf("forward geocoding disabled")
	}
	return f.forward(address)
}

func (f *fakeGeocoder) Reverse(_ context.Context, lat, lng float64) (string, error) {
	if f.reverse == nil {
		return "", fmt.Errorf("reverse geocoding disabled")
	}
	return f.reverse(lat, lng)
}

const (
	riyadhLat = 24.7136
	riyadhLng = 46.6753
	// cos(riyadhLat) scaled into km-per-degree of longitude.
	kmPerLngDegree = 111.32 * 0.9085
)

// lngOffsetForKM returns the longitude delta that puts a point roughly km
// kilometers east of a reference at Riyadh's latitude. Used to place test
// points at known Haversine distances without exact boundary values.
func lngOffsetForKM(_, km float64) float64 {
	return km / kmPerLngDegree
}

// latOffsetForKM returns the latitude delta whose great-circle distance
// from a reference point is exactly km, independent of longitude.
func latOffsetForKM(km float64) float64 {
	return km / 6371.0 * 180 / math.Pi
}

func TestLocationCompareBothCoordinates(t *testing.T) {
	ctx := context.Background()

	t.Run("close points match", func(t *testing.T) {
		g := &fakeGeocoder{
			forward: func(string) (geo.Point, error) {
				return geo.Point{Lat: riyadhLat, Lng: riyadhLng, DisplayName: "الرياض"}, nil
			},
			reverse: func(float64, float64) (string, error) { return "حي النرجس", nil },
		}
		c := NewLocationComparator(g, 5.0, logger.Nop())

		loc := domain.Location{
			Coordinates: fmt.Sprintf("%f, %f", riyadhLat, riyadhLng+lngOffsetForKM(riyadhLat, 1.0)),
		}
		match, msg := c.Compare(ctx, loc, "RRQD2929")
		if !match {
			t.Fatalf("Compare() match = false, msg = %q", msg)
		}
		if !strings.Contains(msg, "مطابق - المسافة") || !strings.Contains(msg, "حي النرجس") {
			t.Errorf("Compare() msg = %q", msg)
		}
	})

	t.Run("distant points mismatch", func(t *testing.T) {
		g := &fakeGeocoder{
			forward: func(string) (geo.Point, error) {
				return geo.Point{Lat: riyadhLat, Lng: riyadhLng}, nil
			},
			reverse: func(float64, float64) (string, error) { return "", fmt.Errorf("down") },
		}
		c := NewLocationComparator(g, 5.0, logger.Nop())

		loc := domain.Location{
			Coordinates: fmt.Sprintf("%f, %f", riyadhLat, riyadhLng+lngOffsetForKM(riyadhLat, 12.0)),
		}
		match, msg := c.Compare(ctx, loc, "RRQD2929")
		if match {
			t.Fatalf("Compare() match = true, msg = %q", msg)
		}
		if !strings.Contains(msg, "غير مطابق - المسافة") || !strings.Contains(msg, "الحد الأقصى 5.0 كم") {
			t.Errorf("Compare() msg = %q", msg)
		}
	})
}

func TestLocationCompareDistanceLimitInclusive(t *testing.T) {
	ctx := context.Background()
	g := &fakeGeocoder{
		forward: func(string) (geo.Point, error) {
			return geo.Point{Lat: riyadhLat, Lng: riyadhLng}, nil
		},
		reverse: func(float64, float64) (string, error) { return "", fmt.Errorf("down") },
	}
	c := NewLocationComparator(g, 5.0, logger.Nop())

	t.Run("at the limit", func(t *testing.T) {
		// Shaved by a relative 1e-9 (micrometres on the ground) so float
		// rounding in the Haversine round trip cannot tip the distance
		// past the inclusive 5.0 km limit.
		lat := riyadhLat + latOffsetForKM(5.0)*(1-1e-9)
		loc := domain.Location{Coordinates: fmt.Sprintf("%.12f, %.4f", lat, riyadhLng)}

		match, msg := c.Compare(ctx, loc, "RRQD2929")
		if !match {
			t.Fatalf("Compare() match = false, msg = %q", msg)
		}
		if !strings.HasPrefix(msg, "مطابق - المسافة 5.0 كم") {
			t.Errorf("Compare() msg = %q", msg)
		}
	})

	t.Run("just past the limit", func(t *testing.T) {
		// Half a metre beyond 5.0 km.
		lat := riyadhLat + latOffsetForKM(5.0)*(1+1e-4)
		loc := domain.Location{Coordinates: fmt.Sprintf("%.12f, %.4f", lat, riyadhLng)}

		match, msg := c.Compare(ctx, loc, "RRQD2929")
		if match {
			t.Fatalf("Compare() match = true, msg = %q", msg)
		}
		if !strings.HasPrefix(msg, "غير مطابق - المسافة 5.0 كم (الحد الأقصى 5.0 كم)") {
			t.Errorf("Compare() msg = %q", msg)
		}
	})
}

func TestLocationCompareReportCoordinatesOnly(t *testing.T) {
	ctx := context.Background()

	t.Run("reverse geocode names the spot", func(t *testing.T) {
		g := &fakeGeocoder{
			reverse: func(float64, float64) (string, error) { return "طريق الملك فهد", nil },
		}
		c := NewLocationComparator(g, 5.0, logger.Nop())

		match, msg := c.Compare(ctx, domain.Location{Coordinates: "24.7136, 46.6753"}, "RRQD2929")
		if !match {
			t.Fatalf("Compare() match = false, msg = %q", msg)
		}
		if !strings.Contains(msg, "إحداثيات التقرير: طريق الملك فهد") {
			t.Errorf("Compare() msg = %q", msg)
		}
	})

	t.Run("geocoder fully down still trusts coordinates", func(t *testing.T) {
		c := NewLocationComparator(&fakeGeocoder{}, 5.0, logger.Nop())

		match, msg := c.Compare(ctx, domain.Location{Coordinates: "24.7136, 46.6753"}, "RRQD2929")
		if !match {
			t.Fatalf("Compare() match = false, msg = %q", msg)
		}
		if msg != "إحداثيات: 24.7136, 46.6753" {
			t.Errorf("Compare() msg = %q", msg)
		}
	})
}

func TestLocationCompareCityTiers(t *testing.T) {
	ctx := context.Background()

	t.Run("same area within doubled tolerance", func(t *testing.T) {
		g := &fakeGeocoder{
			forward: func(address string) (geo.Point, error) {
				if strings.Contains(address, "الرياض") {
					return geo.Point{Lat: riyadhLat, Lng: riyadhLng + lngOffsetForKM(riyadhLat, 8.0)}, nil
				}
				return geo.Point{Lat: riyadhLat, Lng: riyadhLng}, nil
			},
		}
		c := NewLocationComparator(g, 5.0, logger.Nop())

		match, msg := c.Compare(ctx, domain.Location{City: "الرياض"}, "RRQD2929")
		if !match {
			t.Fatalf("Compare() match = false, msg = %q", msg)
		}
		if !strings.Contains(msg, "نفس المنطقة - الرياض") {
			t.Errorf("Compare() msg = %q", msg)
		}
	})

	t.Run("different areas beyond doubled tolerance", func(t *testing.T) {
		g := &fakeGeocoder{
			forward: func(address string) (geo.Point, error) {
				if strings.Contains(address, "جدة") {
					return geo.Point{Lat: 21.4858, Lng: 39.1925}, nil
				}
				return geo.Point{Lat: riyadhLat, Lng: riyadhLng}, nil
			},
		}
		c := NewLocationComparator(g, 5.0, logger.Nop())

		match, msg := c.Compare(ctx, domain.Location{City: "جدة"}, "RRQD2929")
		if match {
			t.Fatalf("Compare() match = true, msg = %q", msg)
		}
		if !strings.Contains(msg, "مناطق مختلفة - التقرير: جدة") {
			t.Errorf("Compare() msg = %q", msg)
		}
	})

	t.Run("city name alone when geocoding fails", func(t *testing.T) {
		c := NewLocationComparator(&fakeGeocoder{}, 5.0, logger.Nop())

		match, msg := c.Compare(ctx, domain.Location{City: "الدمام"}, "RRQD2929")
		if !match {
			t.Fatalf("Compare() match = false, msg = %q", msg)
		}
		if msg != "المدينة: الدمام" {
			t.Errorf("Compare() msg = %q", msg)
		}
	})
}

func TestLocationCompareEmptyLocation(t *testing.T) {
	c := NewLocationComparator(&fakeGeocoder{}, 5.0, logger.Nop())

	match, msg := c.Compare(context.Background(), domain.Location{}, "RRQD2929")
	if match {
		t.Fatal("Compare() match = true, want false")
	}
	if msg != "لم يُعثر على موقع في التقرير" {
		t.Errorf("Compare() msg = %q", msg)
	}
}

func TestLocationComparePrefixRetry(t *testing.T) {
	// The full national address fails to geocode; the 4-character area
	// code succeeds.
	var calls []string
	g := &fakeGeocoder{
		forward: func(address string) (geo.Point, error) {
			calls = append(calls, address)
			if address == "RRQD" {
				return geo.Point{Lat: riyadhLat, Lng: riyadhLng}, nil
			}
			return geo.Point{}, fmt.Errorf("no results")
		},
		reverse: func(float64, float64) (string, error) { return "", fmt.Errorf("down") },
	}
	c := NewLocationComparator(g, 5.0, logger.Nop())

	loc := domain.Location{Coordinates: fmt.Sprintf("%f, %f", riyadhLat, riyadhLng)}
	match, _ := c.Compare(context.Background(), loc, "rrqd2929 شارع العليا")
	if !match {
		t.Fatal("Compare() match = false, want true via prefix retry")
	}
	if len(calls) != 2 || calls[1] != "RRQD" {
		t.Fatalf("forward calls = %v, want full address then RRQD", calls)
	}
}

func TestLocationCompareMalformedCoordinatesFallThrough(t *testing.T) {
	// Unparseable coordinates drop to the city tiers.
	c := NewLocationComparator(&fakeGeocoder{}, 5.0, logger.Nop())

	match, msg := c.Compare(context.Background(), domain.Location{City: "تبوك", Coordinates: "not-a-pair"}, "RRQD2929")
	if !match {
		t.Fatalf("Compare() match = false, msg = %q", msg)
	}
	if msg != "المدينة: تبوك" {
		t.Errorf("Compare() msg = %q", msg)
	}
}
