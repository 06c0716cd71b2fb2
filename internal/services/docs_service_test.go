package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestDocsServiceGenerateConfirmation(t *testing.T) {
	loader := func(_ context.Context, id int64) (confirmationData, error) {
		return confirmationData{
			BookingID:     id,
			Status:        "ASSIGNED",
			CustomerName:  "Asha Verma",
			CustomerPhone: "9876543210",
			Origin:        "Raipur",
			Destination:   "Bilaspur",
			PickupAt:      time.Now().Add(24 * time.Hour),
			CarType:       "SEDAN",
			DistanceKM:    118,
			DurationMin:   150,
			FareBaseINR:   1400,
			FareLockedINR: 1300,
			DiscountCode:  "WELCOME100",
			PaymentMode:   "COD",
			DriverName:    "Ravi",
			DriverPhone:   "9123456789",
			VehicleNo:     "CG04AB1234",
			CreatedAt:     time.Now(),
		}, nil
	}

	svc := DocsService{Loader: loader, Location: ist}
	pdf, filename, err := svc.GenerateConfirmation(context.Background(), 42)
	if err != nil {
		t.Fatalf("GenerateConfirmation returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "BOOKING_42_Asha_Verma.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := safeFilenamePart(""); got != "NA" {
		t.Fatalf("empty: %q", got)
	}
	if got := safeFilenamePart(`a/b:c*d`); got != "a_b_c_d" {
		t.Fatalf("unsafe chars: %q", got)
	}
	if got := safeFilenamePart(strings.Repeat("x", 60)); len(got) != 40 {
		t.Fatalf("expected truncation to 40, got %d", len(got))
	}
}
