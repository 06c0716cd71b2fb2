package utils

import (
	"testing"
	"time"
)

func TestNormalizePhone(t *testing.T) {
	ok := map[string]string{
		"9876543210":      "9876543210",
		"+91 98765 43210": "9876543210",
		"09876543210":     "9876543210",
		"91-98765-43210":  "9876543210",
		"(987) 654-3210":  "9876543210",
	}
	for in, want := range ok {
		got, err := NormalizePhone(in)
		if err != nil || got != want {
			t.Fatalf("NormalizePhone(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "12345", "5876543210", "98765x3210", "+1 415 555 0100"} {
		if _, err := NormalizePhone(in); err == nil {
			t.Fatalf("NormalizePhone(%q) should fail", in)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("9876543210"); got != "******3210" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskPhone("12"); got != "**" {
		t.Fatalf("unexpected short mask %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Raipur":           "raipur",
		"  Raipur (C.G.) ": "raipur-c-g",
		"Navi   Mumbai":    "navi-mumbai",
		"bilaspur":         "bilaspur",
		"":                 "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestFormatINR(t *testing.T) {
	cases := map[int64]string{
		900:     "Rs 900",
		1400:    "Rs 1,400",
		123456:  "Rs 1,23,456",
		-2500:   "-Rs 2,500",
		1000000: "Rs 10,00,000",
	}
	for in, want := range cases {
		if got := FormatINR(in); got != want {
			t.Fatalf("FormatINR(%d) = %q; want %q", in, got, want)
		}
	}
}

func TestPercentRoundsHalfAwayFromZero(t *testing.T) {
	if got := Percent(1400, 10); got != 140 {
		t.Fatalf("expected 140, got %d", got)
	}
	if got := Percent(1005, 10); got != 101 {
		t.Fatalf("expected 101 (100.5 rounded), got %d", got)
	}
}

func TestParsePickup(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)

	got, err := ParsePickup("2025-03-11T10:00:00+05:30", ist)
	if err != nil || !got.Equal(time.Date(2025, 3, 11, 4, 30, 0, 0, time.UTC)) {
		t.Fatalf("RFC3339: %v %v", got, err)
	}
	got, err = ParsePickup("2025-03-11T10:00", ist)
	if err != nil || !got.Equal(time.Date(2025, 3, 11, 4, 30, 0, 0, time.UTC)) {
		t.Fatalf("local form: %v %v", got, err)
	}
	if _, err := ParsePickup("tomorrow", ist); err == nil {
		t.Fatalf("expected garbage to fail")
	}
}

func TestParseUTMCookie(t *testing.T) {
	u := ParseUTMCookie(`{"utm_source":"google","utm_medium":"cpc","utm_campaign":"raipur-launch"}`)
	if u.Source != "google" || u.Medium != "cpc" || u.Campaign != "raipur-launch" {
		t.Fatalf("json cookie: %+v", u)
	}
	u = ParseUTMCookie("%7B%22source%22%3A%22fb%22%7D")
	if u.Source != "fb" {
		t.Fatalf("encoded json cookie: %+v", u)
	}
	u = ParseUTMCookie("utm_source=newsletter&utm_term=cab")
	if u.Source != "newsletter" || u.Term != "cab" {
		t.Fatalf("query cookie: %+v", u)
	}
	if !ParseUTMCookie("{broken").Empty() {
		t.Fatalf("malformed cookie should be empty")
	}
}
