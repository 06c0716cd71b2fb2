package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"cabbooking/internal/analytics"
	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// catalog is an in-memory stand-in for the route, fare and offer tables.
type catalog struct {
	routes []models.Route
	fares  []models.Fare
	offers []models.Offer
}

func (c *catalog) FindActiveBySlugs(_ context.Context, o, d string) (models.Route, error) {
	for _, r := range c.routes {
		if r.OriginSlug == o && r.DestinationSlug == d && r.Active {
			return r, nil
		}
	}
	return models.Route{}, domain.NotFoundError{Resource: "route"}
}

func (c *catalog) GetByID(_ context.Context, id int64) (models.Route, error) {
	for _, r := range c.routes {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Route{}, domain.NotFoundError{Resource: "route"}
}

func (c *catalog) Get(_ context.Context, routeID int64, ct models.CarType) (models.Fare, error) {
	for _, f := range c.fares {
		if f.RouteID == routeID && f.CarType == ct {
			return f, nil
		}
	}
	return models.Fare{}, domain.NotFoundError{Resource: "fare"}
}

type offerTable []models.Offer

func (t offerTable) GetByCode(_ context.Context, code string) (models.Offer, error) {
	for _, o := range t {
		if o.Code == strings.ToUpper(code) {
			return o, nil
		}
	}
	return models.Offer{}, domain.NotFoundError{Resource: "offer"}
}

func int64p(v int64) *int64 { return &v }

func testCatalog() *catalog {
	return &catalog{
		routes: []models.Route{
			{ID: 1, OriginCity: "Raipur", DestinationCity: "Bilaspur", OriginSlug: "raipur", DestinationSlug: "bilaspur", DistanceKM: 118, DurationMin: 150, Active: true},
			{ID: 2, OriginCity: "Raipur", DestinationCity: "Nagpur", OriginSlug: "raipur", DestinationSlug: "nagpur", DistanceKM: 290, DurationMin: 330, Active: true},
			{ID: 3, OriginCity: "Durg", DestinationCity: "Bhilai", OriginSlug: "durg", DestinationSlug: "bhilai", DistanceKM: 12, DurationMin: 25, Active: true},
			{ID: 4, OriginCity: "Bilaspur", DestinationCity: "Korba", OriginSlug: "bilaspur", DestinationSlug: "korba", DistanceKM: 90, DurationMin: 120, Active: false},
		},
		fares: []models.Fare{
			{ID: 1, RouteID: 1, CarType: models.CarSedan, BaseFareINR: 1400, NightSurchargePct: 10},
			{ID: 2, RouteID: 2, CarType: models.CarSUV, BaseFareINR: 4000},
			{ID: 3, RouteID: 3, CarType: models.CarHatchback, BaseFareINR: 900},
			{ID: 4, RouteID: 4, CarType: models.CarSedan, BaseFareINR: 1200},
		},
	}
}

func testOffers() offerTable {
	return offerTable{
		{Code: "WELCOME100", Type: models.DiscountFlat, Value: 100, Active: true,
			Conditions: models.Conditions{models.MinFareRule{MinINR: 1000}}},
		{Code: "RAIPUR20", Type: models.DiscountPct, Value: 20, CapINR: int64p(500), Active: true,
			Conditions: models.Conditions{models.CityRule{Slug: "raipur"}}},
		{Code: "OLD50", Type: models.DiscountFlat, Value: 50, Active: false},
	}
}

// bookingTable records inserted bookings.
type bookingTable struct {
	mu   sync.Mutex
	rows []models.Booking
	err  error
}

func (t *bookingTable) Create(_ context.Context, b models.Booking) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return 0, t.err
	}
	for _, r := range t.rows {
		if b.IdempotencyKey != "" && r.IdempotencyKey == b.IdempotencyKey {
			return 0, domain.ConflictError{Resource: "booking", Code: "duplicate"}
		}
	}
	b.ID = int64(len(t.rows) + 100)
	t.rows = append(t.rows, b)
	return b.ID, nil
}

func (t *bookingTable) GetByIdempotencyKey(_ context.Context, key string) (models.Booking, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.IdempotencyKey == key {
			return r, nil
		}
	}
	return models.Booking{}, domain.NotFoundError{Resource: "booking"}
}

func (t *bookingTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (e *recordingEmitter) Emit(_ context.Context, ev analytics.Event) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *recordingEmitter) Hash(v string) string { return analytics.HashID("test", v) }
