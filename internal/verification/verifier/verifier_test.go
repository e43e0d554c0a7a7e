package verifier_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/watheeq/watheeq-backend/internal/verification/domain"
	"github.com/watheeq/watheeq-backend/internal/verification/geo"
	"github.com/watheeq/watheeq-backend/internal/verification/verifier"
	"github.com/watheeq/watheeq-backend/pkg/config"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

type fakeText struct {
	text string
}

func (f fakeText) ExtractText(string) string { return f.text }

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

func testConfig() config.VerificationConfig {
	return config.VerificationConfig{
		MaxDistanceKM:      5.0,
		DateToleranceDays:  1,
		TimeToleranceHours: 2,
		Cities: []string{
			"الرياض", "جدة", "مكة", "المدينة", "الدمام",
			"الخبر", "الطائف", "تبوك", "أبها", "القصيم",
		},
	}
}

func testClaim() domain.Claim {
	return domain.Claim{
		ReportPath: "report.pdf",
		Date:       "2025-09-02",
		StartTime:  "17:00",
		EndTime:    "18:00",
		Address:    "RRQD2929",
	}
}

const najmReport = `تقرير تحديد المسؤولية
رقم الحالة: 250912345
وقت الحادث 02/09/2025 17:34:26
مكان الحادث طريق الملك فهد، الرياض
أحداثيات الحادث 24.7136, 46.6753`

func TestVerifyFullMatch(t *testing.T) {
	g := &fakeGeocoder{
		forward: func(string) (geo.Point, error) {
			return geo.Point{Lat: 24.7136, Lng: 46.6753, DisplayName: "الرياض"}, nil
		},
		reverse: func(float64, float64) (string, error) { return "حي العليا", nil },
	}
	v := verifier.New(fakeText{najmReport}, g, testConfig(), logger.Nop())

	result := v.Verify(context.Background(), testClaim())

	if !result.IsValidSource || result.SourceName != "نجم" {
		t.Errorf("source = (%v, %q), want (true, نجم)", result.IsValidSource, result.SourceName)
	}
	if !result.DateMatch || !result.TimeMatch || !result.LocationMatch {
		t.Errorf("matches = date %v, time %v, location %v, want all true",
			result.DateMatch, result.TimeMatch, result.LocationMatch)
	}
	if result.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", result.Confidence)
	}
	if result.Message != "تم التحقق من التقرير بنجاح - البيانات متطابقة" {
		t.Errorf("message = %q", result.Message)
	}
	for _, key := range []string{"source", "date", "time", "location"} {
		if result.Matches[key] == "" {
			t.Errorf("matches[%q] missing", key)
		}
	}
	if result.ExtractedTime != "17:34" {
		t.Errorf("extracted time = %q, want 17:34", result.ExtractedTime)
	}
	if result.ExtractedDate == nil {
		t.Error("extracted date missing")
	}
}

func TestVerifyUnrecognisedText(t *testing.T) {
	v := verifier.New(fakeText{"هذا نص عشوائي بلا أي بيانات"}, &fakeGeocoder{}, testConfig(), logger.Nop())

	result := v.Verify(context.Background(), testClaim())

	if result.IsValidSource {
		t.Error("source should not be recognised")
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %d, want 0", result.Confidence)
	}
	if result.Message != "تحذير - التقرير قد لا يكون صحيحاً" {
		t.Errorf("message = %q", result.Message)
	}
	if result.Matches["date"] != "لم يُعثر على تاريخ في التقرير" {
		t.Errorf("matches[date] = %q", result.Matches["date"])
	}
	if result.Matches["time"] != "لم يُعثر على وقت في التقرير" {
		t.Errorf("matches[time] = %q", result.Matches["time"])
	}
	if result.Matches["location"] != "لم يُعثر على موقع في التقرير" {
		t.Errorf("matches[location] = %q", result.Matches["location"])
	}
}

func TestVerifyPartialMatch(t *testing.T) {
	// Source and date only: 30 + 30 = 60, partial verdict.
	text := "تقرير تحديد المسؤولية\nتاريخ الإصدار 02/09/2025\nرقم الحالة 1"
	v := verifier.New(fakeText{text}, &fakeGeocoder{}, testConfig(), logger.Nop())

	result := v.Verify(context.Background(), testClaim())

	if !result.IsValidSource || !result.DateMatch {
		t.Fatalf("source %v date %v, want both true", result.IsValidSource, result.DateMatch)
	}
	if result.TimeMatch || result.LocationMatch {
		t.Fatalf("time %v location %v, want both false", result.TimeMatch, result.LocationMatch)
	}
	if result.Confidence != 60 {
		t.Errorf("confidence = %d, want 60", result.Confidence)
	}
	if result.Message != "تحقق جزئي - بعض البيانات غير متطابقة" {
		t.Errorf("message = %q", result.Message)
	}
}

func TestVerifyCoordinatesSurviveDeadGeocoder(t *testing.T) {
	// The report carries coordinates; with geocoding down they are
	// trusted as-is instead of failing the location check.
	text := "نجم\nتقرير تحديد المسؤولية\nالموقع: 24.7136, 46.6753"
	v := verifier.New(fakeText{text}, &fakeGeocoder{}, testConfig(), logger.Nop())

	result := v.Verify(context.Background(), testClaim())

	if !result.LocationMatch {
		t.Fatal("location match = false, want true from report coordinates")
	}
	if !strings.Contains(result.Matches["location"], "إحداثيات: 24.7136, 46.6753") {
		t.Errorf("matches[location] = %q", result.Matches["location"])
	}
}

func TestVerifyDemoMode(t *testing.T) {
	g := &fakeGeocoder{
		forward: func(string) (geo.Point, error) {
			return geo.Point{Lat: 24.7136, Lng: 46.6753, DisplayName: "الرياض"}, nil
		},
		reverse: func(float64, float64) (string, error) { return "حي النرجس", nil },
	}
	v := verifier.New(fakeText{""}, g, testConfig(), logger.Nop())

	result := v.Verify(context.Background(), testClaim())

	if !result.IsValidSource || result.SourceName != "نجم" {
		t.Errorf("source = (%v, %q), want (true, نجم)", result.IsValidSource, result.SourceName)
	}
	if !result.DateMatch || !result.TimeMatch {
		t.Error("demo mode must assume date and time match")
	}
	// Simulated coordinates stay well inside the 5 km limit.
	if !result.LocationMatch {
		t.Error("demo mode location should match")
	}
	if result.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", result.Confidence)
	}
	if result.ExtractedLocation == "" {
		t.Error("demo mode should record simulated coordinates")
	}
	if !strings.Contains(result.Matches["date"], "2025-09-02") {
		t.Errorf("matches[date] = %q", result.Matches["date"])
	}
	if !strings.Contains(result.Matches["time"], "17:00 - 18:00") {
		t.Errorf("matches[time] = %q", result.Matches["time"])
	}
}

func TestVerifyDemoModeGeocoderDown(t *testing.T) {
	v := verifier.New(fakeText{""}, &fakeGeocoder{}, testConfig(), logger.Nop())

	result := v.Verify(context.Background(), testClaim())

	if !result.LocationMatch {
		t.Error("location must fall back to matching when geocoding is down")
	}
	if !strings.Contains(result.Matches["location"], "RRQD") {
		t.Errorf("matches[location] = %q, want address prefix fallback", result.Matches["location"])
	}
	if result.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", result.Confidence)
	}
}

func TestVerifyRawTextTruncated(t *testing.T) {
	// Multi-byte Arabic text: a byte-offset cut would leave the kept
	// prefix ending inside a rune.
	long := "نجم " + strings.Repeat("صدم", 400)
	v := verifier.New(fakeText{long}, &fakeGeocoder{}, testConfig(), logger.Nop())

	result := v.Verify(context.Background(), testClaim())
	if got := utf8.RuneCountInString(result.RawText); got != 500 {
		t.Errorf("raw text runes = %d, want 500", got)
	}
	if !utf8.ValidString(result.RawText) {
		t.Error("raw text is not valid UTF-8")
	}
	if !strings.HasPrefix(long, result.RawText) {
		t.Error("raw text must be a prefix of the extracted text")
	}
}
