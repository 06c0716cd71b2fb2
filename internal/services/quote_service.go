package services

import (
	"context"
	"strings"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/utils"
)

// Reasons a supplied discount code was not applied.
const (
	DiscountUnknown  = "unknown_code"
	DiscountInactive = "inactive"
	DiscountExpired  = "outside_validity"
)

type QuoteRequest struct {
	OriginText      string
	DestinationText string
	PickupAt        time.Time
	CarType         models.CarType
	DiscountCode    string
}

type AppliedDiscount struct {
	Code      string              `json:"code"`
	Type      models.DiscountType `json:"type"`
	Value     float64             `json:"value"`
	AmountINR int64               `json:"amount_inr"`
}

// Quote is a fare breakdown. RouteID is nil when no active route matched.
type Quote struct {
	RouteID              *int64           `json:"route_id"`
	OriginCity           string           `json:"origin_city,omitempty"`
	DestinationCity      string           `json:"destination_city,omitempty"`
	CarType              models.CarType   `json:"car_type"`
	PickupAt             time.Time        `json:"pickup_datetime"`
	ListedFareINR        int64            `json:"listed_fare_inr"`
	NightSurchargeINR    int64            `json:"night_surcharge_inr"`
	FareBaseINR          int64            `json:"fare_base_inr"`
	FareAfterDiscountINR int64            `json:"fare_after_discount_inr"`
	AppliedDiscount      *AppliedDiscount `json:"applied_discount"`
	DiscountValid        bool             `json:"discount_valid"`
	DiscountReason       string           `json:"discount_reason,omitempty"`
	DistanceKM           float64          `json:"distance_km"`
	DurationMin          int              `json:"duration_min"`
}

type RouteFinder interface {
	FindActiveBySlugs(ctx context.Context, originSlug, destinationSlug string) (models.Route, error)
}

type FareFinder interface {
	Get(ctx context.Context, routeID int64, carType models.CarType) (models.Fare, error)
}

type OfferFinder interface {
	GetByCode(ctx context.Context, code string) (models.Offer, error)
}

type QuoteService struct {
	Routes RouteFinder
	Fares  FareFinder
	Offers OfferFinder

	NightStartHour int
	NightEndHour   int
	Location       *time.Location

	Now       func() time.Time
	RequestID string
}

func (s QuoteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Night reports whether pickup falls in the surcharge window, evaluated in
// the service time zone. Equal start and end hours disable the window.
func (s QuoteService) Night(pickup time.Time) bool {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	h := pickup.In(loc).Hour()
	start, end := s.NightStartHour, s.NightEndHour
	switch {
	case start == end:
		return false
	case start > end:
		return h >= start || h < end
	default:
		return h >= start && h < end
	}
}

// Quote prices req. A missing route yields a quote with nil RouteID; a
// missing fare is NotFoundError. An unusable discount code never errors; it
// clears DiscountValid instead.
func (s QuoteService) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	code := strings.ToUpper(strings.TrimSpace(req.DiscountCode))
	q := Quote{
		CarType:       req.CarType,
		PickupAt:      req.PickupAt,
		DiscountValid: code == "",
	}

	route, err := s.Routes.FindActiveBySlugs(ctx, utils.Slugify(req.OriginText), utils.Slugify(req.DestinationText))
	if err != nil {
		if domain.IsNotFound(err) {
			return q, nil
		}
		return Quote{}, err
	}
	routeID := route.ID
	q.RouteID = &routeID
	q.OriginCity = route.OriginCity
	q.DestinationCity = route.DestinationCity
	q.DistanceKM = route.DistanceKM
	q.DurationMin = route.DurationMin

	fare, err := s.Fares.Get(ctx, route.ID, req.CarType)
	if err != nil {
		return Quote{}, err
	}
	q.ListedFareINR = fare.BaseFareINR
	if s.Night(req.PickupAt) {
		q.NightSurchargeINR = utils.Percent(fare.BaseFareINR, fare.NightSurchargePct)
	}
	q.FareBaseINR = q.ListedFareINR + q.NightSurchargeINR
	q.FareAfterDiscountINR = q.FareBaseINR

	if code == "" {
		return q, nil
	}

	offer, reason, err := s.offer(ctx, code)
	if err != nil {
		return Quote{}, err
	}
	if reason == "" {
		failed := offer.Conditions.Evaluate(models.RuleInput{
			FareINR:    q.FareBaseINR,
			OriginSlug: route.OriginSlug,
			CarType:    req.CarType,
		})
		if failed != "" {
			reason = "condition_" + failed
		}
	}
	if reason != "" {
		q.DiscountReason = reason
		utils.LogEvent(s.RequestID, "quote", "discount", "discount "+code+" not applied: "+reason)
		return q, nil
	}

	amount := offer.Amount(q.FareBaseINR)
	q.FareAfterDiscountINR = max(q.FareBaseINR-amount, 0)
	q.AppliedDiscount = &AppliedDiscount{
		Code:      offer.Code,
		Type:      offer.Type,
		Value:     offer.Value,
		AmountINR: q.FareBaseINR - q.FareAfterDiscountINR,
	}
	q.DiscountValid = true
	return q, nil
}

func (s QuoteService) offer(ctx context.Context, code string) (models.Offer, string, error) {
	if s.Offers == nil {
		return models.Offer{}, DiscountUnknown, nil
	}
	offer, err := s.Offers.GetByCode(ctx, code)
	switch {
	case domain.IsNotFound(err):
		return models.Offer{}, DiscountUnknown, nil
	case err != nil:
		return models.Offer{}, "", err
	case !offer.Active:
		return offer, DiscountInactive, nil
	case !offer.ValidAt(s.now()):
		return offer, DiscountExpired, nil
	}
	return offer, "", nil
}
