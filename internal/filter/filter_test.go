package filter

import (
	"testing"
	"time"

	"github.com/constadinisio/huntly/internal/model"
)

func TestParseAge(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"Hace 15 minutos", 15 * time.Minute},
		{"Hace 3 horas", 3 * time.Hour},
		{"Hace una hora", time.Hour},
		{"Ayer", 24 * time.Hour},
		{"Hace 2 días", 48 * time.Hour},
		{"Hace 2 dias", 48 * time.Hour},
		{"N/A", unknownAge},
		{"", unknownAge},
	}
	for _, tc := range cases {
		if got := ParseAge(tc.in); got != tc.want {
			t.Errorf("ParseAge(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFreshnessFilter(t *testing.T) {
	f := NewFreshnessFilter(24 * time.Hour)

	if !f.Match(model.RawJob{PostedAt: "Hace 3 horas"}) {
		t.Error("expected a 3-hour-old listing to pass a 24h window")
	}
	if f.Match(model.RawJob{PostedAt: "Hace 3 días"}) {
		t.Error("expected a 3-day-old listing to be dropped")
	}
	if f.Match(model.RawJob{PostedAt: "quién sabe"}) {
		t.Error("expected an unparseable age to be dropped")
	}
}

func TestFreshnessFilterZeroMaxAgePassesAll(t *testing.T) {
	f := NewFreshnessFilter(0)
	if !f.Match(model.RawJob{PostedAt: "Hace 9 días"}) {
		t.Error("zero max age should pass everything")
	}
}
