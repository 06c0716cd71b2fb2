package services

import (
	"context"
	"testing"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

func newQuoteService(clock *fakeClock) QuoteService {
	cat := testCatalog()
	return QuoteService{
		Routes:         cat,
		Fares:          cat,
		Offers:         testOffers(),
		NightStartHour: 22,
		NightEndHour:   6,
		Location:       ist,
		Now:            clock.Now,
	}
}

func dayPickup() time.Time {
	return time.Date(2025, 3, 12, 10, 0, 0, 0, ist)
}

func TestQuoteWithoutDiscount(t *testing.T) {
	svc := newQuoteService(newClock())
	q, err := svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Raipur", DestinationText: "Bilaspur", PickupAt: dayPickup(), CarType: models.CarSedan,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.RouteID == nil || *q.RouteID != 1 {
		t.Fatalf("unexpected route %v", q.RouteID)
	}
	if q.FareBaseINR != 1400 || q.FareAfterDiscountINR != 1400 || q.NightSurchargeINR != 0 {
		t.Fatalf("unexpected fares %+v", q)
	}
	if !q.DiscountValid || q.AppliedDiscount != nil {
		t.Fatalf("no code should be a valid, empty discount: %+v", q)
	}
	if q.DistanceKM != 118 || q.DurationMin != 150 {
		t.Fatalf("route metrics not carried: %+v", q)
	}
}

func TestQuoteLookupIsSlugNormalised(t *testing.T) {
	svc := newQuoteService(newClock())
	q, err := svc.Quote(context.Background(), QuoteRequest{
		OriginText: "  RAIPUR ", DestinationText: "bilaspur", PickupAt: dayPickup(), CarType: models.CarSedan,
	})
	if err != nil || q.RouteID == nil {
		t.Fatalf("expected route match, got %+v %v", q, err)
	}
}

func TestQuoteFlatDiscountWithMinFare(t *testing.T) {
	svc := newQuoteService(newClock())
	q, err := svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Raipur", DestinationText: "Bilaspur", PickupAt: dayPickup(), CarType: models.CarSedan, DiscountCode: "welcome100",
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !q.DiscountValid || q.FareAfterDiscountINR != 1300 {
		t.Fatalf("expected 1300 with valid discount, got %+v", q)
	}
	if q.AppliedDiscount == nil || q.AppliedDiscount.Code != "WELCOME100" || q.AppliedDiscount.AmountINR != 100 {
		t.Fatalf("unexpected applied discount %+v", q.AppliedDiscount)
	}

	q, err = svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Durg", DestinationText: "Bhilai", PickupAt: dayPickup(), CarType: models.CarHatchback, DiscountCode: "WELCOME100",
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.DiscountValid || q.FareAfterDiscountINR != 900 || q.AppliedDiscount != nil {
		t.Fatalf("discount below min fare must not apply: %+v", q)
	}
	if q.DiscountReason != "condition_minFare" {
		t.Fatalf("unexpected reason %q", q.DiscountReason)
	}
}

func TestQuotePercentDiscountCapped(t *testing.T) {
	svc := newQuoteService(newClock())
	q, err := svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Raipur", DestinationText: "Nagpur", PickupAt: dayPickup(), CarType: models.CarSUV, DiscountCode: "RAIPUR20",
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.FareBaseINR != 4000 || q.FareAfterDiscountINR != 3500 || q.AppliedDiscount.AmountINR != 500 {
		t.Fatalf("expected cap at 500, got %+v", q)
	}
}

func TestQuoteCityConditionRejectsOtherOrigin(t *testing.T) {
	svc := newQuoteService(newClock())
	q, _ := svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Durg", DestinationText: "Bhilai", PickupAt: dayPickup(), CarType: models.CarHatchback, DiscountCode: "RAIPUR20",
	})
	if q.DiscountValid || q.DiscountReason != "condition_city" {
		t.Fatalf("expected city condition failure, got %+v", q)
	}
}

func TestQuoteUnknownAndInactiveCodes(t *testing.T) {
	svc := newQuoteService(newClock())
	req := QuoteRequest{OriginText: "Raipur", DestinationText: "Bilaspur", PickupAt: dayPickup(), CarType: models.CarSedan}

	req.DiscountCode = "NOPE"
	q, err := svc.Quote(context.Background(), req)
	if err != nil || q.DiscountValid || q.DiscountReason != DiscountUnknown || q.FareAfterDiscountINR != 1400 {
		t.Fatalf("unknown code: %+v %v", q, err)
	}

	req.DiscountCode = "OLD50"
	q, _ = svc.Quote(context.Background(), req)
	if q.DiscountValid || q.DiscountReason != DiscountInactive {
		t.Fatalf("inactive code: %+v", q)
	}
}

func TestQuoteOfferValidityWindow(t *testing.T) {
	clock := newClock()
	svc := newQuoteService(clock)
	from := clock.Now().Add(24 * time.Hour)
	svc.Offers = offerTable{{Code: "SOON", Type: models.DiscountFlat, Value: 200, Active: true, ValidFrom: &from}}

	req := QuoteRequest{OriginText: "Raipur", DestinationText: "Bilaspur", PickupAt: dayPickup(), CarType: models.CarSedan, DiscountCode: "SOON"}
	q, _ := svc.Quote(context.Background(), req)
	if q.DiscountValid || q.DiscountReason != DiscountExpired {
		t.Fatalf("offer not yet valid: %+v", q)
	}
	clock.Advance(25 * time.Hour)
	q, _ = svc.Quote(context.Background(), req)
	if !q.DiscountValid || q.FareAfterDiscountINR != 1200 {
		t.Fatalf("offer now valid: %+v", q)
	}
}

func TestQuoteDiscountFloorsAtZero(t *testing.T) {
	svc := newQuoteService(newClock())
	svc.Offers = offerTable{{Code: "FREE", Type: models.DiscountFlat, Value: 5000, Active: true}}
	q, _ := svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Raipur", DestinationText: "Bilaspur", PickupAt: dayPickup(), CarType: models.CarSedan, DiscountCode: "FREE",
	})
	if q.FareAfterDiscountINR != 0 || q.AppliedDiscount.AmountINR != 1400 {
		t.Fatalf("expected floor at zero, got %+v", q)
	}
}

func TestQuoteNightSurcharge(t *testing.T) {
	svc := newQuoteService(newClock())
	cases := []struct {
		name  string
		at    time.Time
		night bool
	}{
		{"late evening", time.Date(2025, 3, 12, 22, 30, 0, 0, ist), true},
		{"early morning", time.Date(2025, 3, 12, 5, 59, 0, 0, ist), true},
		{"six sharp", time.Date(2025, 3, 12, 6, 0, 0, 0, ist), false},
		{"evening", time.Date(2025, 3, 12, 21, 59, 0, 0, ist), false},
		// 17:00 UTC is 22:30 IST
		{"utc input", time.Date(2025, 3, 12, 17, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := svc.Quote(context.Background(), QuoteRequest{
				OriginText: "Raipur", DestinationText: "Bilaspur", PickupAt: tc.at, CarType: models.CarSedan,
			})
			if err != nil {
				t.Fatalf("quote: %v", err)
			}
			want := int64(1400)
			if tc.night {
				want = 1540
			}
			if q.FareBaseINR != want {
				t.Fatalf("fare_base_inr = %d, want %d", q.FareBaseINR, want)
			}
		})
	}
}

func TestQuoteMissingRouteAndFare(t *testing.T) {
	svc := newQuoteService(newClock())
	q, err := svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Raipur", DestinationText: "Mumbai", PickupAt: dayPickup(), CarType: models.CarSedan,
	})
	if err != nil || q.RouteID != nil {
		t.Fatalf("expected nil route id, got %+v %v", q, err)
	}

	q, err = svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Bilaspur", DestinationText: "Korba", PickupAt: dayPickup(), CarType: models.CarSedan,
	})
	if err != nil || q.RouteID != nil {
		t.Fatalf("inactive route must not quote, got %+v %v", q, err)
	}

	_, err = svc.Quote(context.Background(), QuoteRequest{
		OriginText: "Raipur", DestinationText: "Bilaspur", PickupAt: dayPickup(), CarType: models.CarTempo,
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND for missing fare, got %v", err)
	}
}
