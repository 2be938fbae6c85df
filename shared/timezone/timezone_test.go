package timezone_test

import (
	"inncore/shared/timezone"
	"testing"
	"time"
)

func TestTimezoneInit(t *testing.T) {
	// Test Now() function
	now := timezone.Now()
	if now.IsZero() {
		t.Error("Now() returned zero time")
	}

	// Test GetLocation()
	loc := timezone.GetLocation()
	if loc == nil {
		t.Error("GetLocation() returned nil")
	}
}

func TestTimezoneWithStandardLocation(t *testing.T) {
	utcTime := time.Now().UTC()
	appTime := timezone.ToAppTime(utcTime)

	if appTime.Location() == nil {
		t.Error("Expected converted time to have a location")
	}
}

func TestTimezoneFormat(t *testing.T) {
	testTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	formatted := timezone.Format(testTime, "2006-01-02 15:04:05 MST")

	if formatted == "" {
		t.Error("Format() returned empty string")
	}

	parsed, err := timezone.Parse("2006-01-02", "2024-01-01")
	if err != nil {
		t.Errorf("Parse() failed: %v", err)
	}

	if parsed == (time.Time{}) {
		t.Error("Parse() returned a zero time")
	}
}

func TestStartOfDay(t *testing.T) {
	loc := timezone.GetLocation()
	evening := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)

	day := timezone.StartOfDay(evening)

	if day.Location() != time.UTC {
		t.Errorf("expected UTC location, got %s", day.Location())
	}

	if day.Year() != 2024 || day.Month() != time.March || day.Day() != 10 {
		t.Errorf("expected 2024-03-10, got %s", day.Format(time.DateOnly))
	}

	if day.Hour() != 0 || day.Minute() != 0 {
		t.Errorf("expected midnight, got %s", day.Format(time.TimeOnly))
	}
}

func TestParseDay(t *testing.T) {
	day, err := timezone.ParseDay("2024-03-14")
	if err != nil {
		t.Fatalf("ParseDay() failed: %v", err)
	}

	if !day.Equal(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected day %s", day)
	}

	if _, err := timezone.ParseDay("14/03/2024"); err == nil {
		t.Error("expected error for malformed day")
	}

	if timezone.Today().IsZero() {
		t.Error("Today() returned zero time")
	}
}
