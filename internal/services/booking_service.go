package services

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cabbooking/internal/analytics"
	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/utils"
)

const bookingReceivedMessage = "Booking received. Our team will call you shortly to confirm your driver."

// BookingRequest is a validated booking submission.
type BookingRequest struct {
	RouteID         int64
	OriginText      string
	DestinationText string
	PickupAt        time.Time
	CarType         models.CarType
	FareQuoteINR    int64
	CustomerName    string
	CustomerPhone   string
	OTPToken        string
	DiscountCode    string
	PaymentMode     string
}

// BookingContext carries request-scoped values into the transaction.
type BookingContext struct {
	RequestID      string
	ClientIP       string
	UserAgent      string
	UTM            utils.UTM
	IdempotencyKey string
}

type BookingResult struct {
	BookingID     int64                `json:"booking_id"`
	Status        models.BookingStatus `json:"status"`
	PaymentMode   string               `json:"payment_mode"`
	FareLockedINR int64                `json:"fare_locked_inr"`
	Message       string               `json:"message"`
}

type SessionConsumer interface {
	Consume(ctx context.Context, token string) (ConsumeResult, error)
}

type RouteGetter interface {
	GetByID(ctx context.Context, id int64) (models.Route, error)
}

type Quoter interface {
	Quote(ctx context.Context, req QuoteRequest) (Quote, error)
}

type BookingStore interface {
	Create(ctx context.Context, b models.Booking) (int64, error)
	GetByIdempotencyKey(ctx context.Context, key string) (models.Booking, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, ev analytics.Event)
	Hash(v string) string
}

type BookingService struct {
	Sessions  SessionConsumer
	Routes    RouteGetter
	Quotes    Quoter
	Bookings  BookingStore
	Analytics EventEmitter

	ToleranceINR int64
	Now          func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Validate checks the shape of req before any side effect runs. It does not
// depend on the clock, so a replayed request that passed once passes again.
func (s BookingService) Validate(req BookingRequest) error {
	switch {
	case req.RouteID <= 0:
		return domain.ValidationError{Field: "route_id", Msg: "required"}
	case strings.TrimSpace(req.OriginText) == "":
		return domain.ValidationError{Field: "origin_text", Msg: "required"}
	case strings.TrimSpace(req.DestinationText) == "":
		return domain.ValidationError{Field: "destination_text", Msg: "required"}
	case req.PickupAt.IsZero():
		return domain.ValidationError{Field: "pickup_datetime", Msg: "required"}
	case req.FareQuoteINR <= 0:
		return domain.ValidationError{Field: "fare_quote_inr", Msg: "must be positive"}
	case strings.TrimSpace(req.OTPToken) == "":
		return domain.ValidationError{Field: "otp_token", Msg: "required"}
	case req.PaymentMode != models.PaymentCOD:
		return domain.ValidationError{Field: "payment_mode", Msg: "only COD is supported"}
	}
	if _, ok := models.ParseCarType(string(req.CarType)); !ok {
		return domain.ValidationError{Field: "car_type", Msg: "unknown car type"}
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.CustomerName)); n < 2 || n > 80 {
		return domain.ValidationError{Field: "customer_name", Msg: "must be 2 to 80 characters"}
	}
	if _, err := utils.NormalizePhone(req.CustomerPhone); err != nil {
		return domain.ValidationError{Field: "customer_phone", Msg: "invalid mobile number", Err: err}
	}
	return nil
}

// Create runs one booking transaction. Any error before the insert leaves
// no row behind; analytics never fails the booking.
func (s BookingService) Create(ctx context.Context, req BookingRequest, bc BookingContext) (BookingResult, error) {
	if err := s.Validate(req); err != nil {
		return BookingResult{}, err
	}
	phone, _ := utils.NormalizePhone(req.CustomerPhone)

	// a row written under this key by an earlier process is the answer
	if bc.IdempotencyKey != "" {
		existing, err := s.Bookings.GetByIdempotencyKey(ctx, bc.IdempotencyKey)
		if err == nil {
			utils.LogEvent(bc.RequestID, "booking", "create", "booking already stored for idempotency key")
			return replayOf(existing, phone)
		}
		if !domain.IsNotFound(err) {
			return BookingResult{}, err
		}
	}

	if req.PickupAt.Before(s.now().Add(-5 * time.Minute)) {
		return BookingResult{}, domain.ValidationError{Field: "pickup_datetime", Msg: "must not be in the past"}
	}

	consumed, err := s.Sessions.Consume(ctx, req.OTPToken)
	if err != nil {
		return BookingResult{}, err
	}
	if err := consumed.Err(); err != nil {
		return BookingResult{}, err
	}
	if consumed.Phone != phone {
		return BookingResult{}, domain.UnauthorizedError{Msg: "otp session does not match customer phone"}
	}

	route, err := s.Routes.GetByID(ctx, req.RouteID)
	if err != nil {
		return BookingResult{}, err
	}
	if !route.Active {
		return BookingResult{}, domain.NotFoundError{Resource: "route"}
	}

	quote, err := s.Quotes.Quote(ctx, QuoteRequest{
		OriginText:      req.OriginText,
		DestinationText: req.DestinationText,
		PickupAt:        req.PickupAt,
		CarType:         req.CarType,
		DiscountCode:    req.DiscountCode,
	})
	if err != nil {
		return BookingResult{}, err
	}
	if quote.RouteID == nil {
		return BookingResult{}, domain.NotFoundError{Resource: "route"}
	}
	if *quote.RouteID != route.ID {
		return BookingResult{}, domain.ConflictError{
			Resource: "booking",
			Code:     "route_mismatch",
			Msg:      "route does not match origin and destination",
			Details:  map[string]any{"route_id": *quote.RouteID},
		}
	}

	if diff := quote.FareAfterDiscountINR - req.FareQuoteINR; diff > s.ToleranceINR || -diff > s.ToleranceINR {
		utils.LogEvent(bc.RequestID, "booking", "create", "fare mismatch, client "+strconv.FormatInt(req.FareQuoteINR, 10)+
			" server "+strconv.FormatInt(quote.FareAfterDiscountINR, 10))
		return BookingResult{}, domain.ConflictError{
			Resource: "booking",
			Code:     "fare_mismatch",
			Msg:      "fare has changed, please review the new fare",
			Details: map[string]any{
				"server_fare_inr": quote.FareAfterDiscountINR,
				"client_fare_inr": req.FareQuoteINR,
				"tolerance_inr":   s.ToleranceINR,
			},
		}
	}

	b := models.Booking{
		RouteID:         route.ID,
		OriginText:      utils.NormalizeSpace(req.OriginText),
		DestinationText: utils.NormalizeSpace(req.DestinationText),
		PickupAt:        req.PickupAt,
		CarType:         req.CarType,
		FareBaseINR:     quote.FareBaseINR,
		FareLockedINR:   quote.FareAfterDiscountINR,
		PaymentMode:     models.PaymentCOD,
		Status:          models.StatusPending,
		CustomerName:    utils.NormalizeSpace(req.CustomerName),
		CustomerPhone:   phone,
		UTMSource:       bc.UTM.Source,
		UTMMedium:       bc.UTM.Medium,
		UTMCampaign:     bc.UTM.Campaign,
		UTMTerm:         bc.UTM.Term,
		UTMContent:      bc.UTM.Content,
		IdempotencyKey:  bc.IdempotencyKey,
	}
	if quote.AppliedDiscount != nil {
		b.DiscountCode = quote.AppliedDiscount.Code
	}

	id, err := s.Bookings.Create(ctx, b)
	if err != nil {
		if domain.IsConflict(err) && bc.IdempotencyKey != "" {
			if existing, gerr := s.Bookings.GetByIdempotencyKey(ctx, bc.IdempotencyKey); gerr == nil {
				return replayOf(existing, phone)
			}
		}
		return BookingResult{}, err
	}
	b.ID = id
	utils.LogEvent(bc.RequestID, "booking", "create", "booking "+strconv.FormatInt(id, 10)+" created")

	s.emit(ctx, b, quote, bc)
	return resultFor(b), nil
}

func (s BookingService) emit(ctx context.Context, b models.Booking, q Quote, bc BookingContext) {
	if s.Analytics == nil {
		return
	}
	params := map[string]any{
		"booking_id_hash":  s.Analytics.Hash(strconv.FormatInt(b.ID, 10)),
		"route_id":         b.RouteID,
		"car_type":         string(b.CarType),
		"value":            b.FareLockedINR,
		"currency":         "INR",
		"payment_mode":     b.PaymentMode,
		"discount_applied": q.AppliedDiscount != nil,
		"distance_km":      q.DistanceKM,
	}
	if !bc.UTM.Empty() {
		params["utm_source"] = bc.UTM.Source
		params["utm_medium"] = bc.UTM.Medium
		params["utm_campaign"] = bc.UTM.Campaign
	}
	s.Analytics.Emit(ctx, analytics.Event{
		Name:       "booking_created",
		ClientID:   s.Analytics.Hash(bc.ClientIP + "|" + bc.UserAgent),
		Params:     params,
		OccurredAt: s.now().UTC(),
	})
}

// replayOf answers a repeated key with the stored booking, unless the key
// belongs to another customer.
func replayOf(existing models.Booking, phone string) (BookingResult, error) {
	if existing.CustomerPhone != phone {
		return BookingResult{}, domain.ConflictError{
			Resource: "booking",
			Code:     "idempotency_key_reused",
			Msg:      "idempotency key was already used for a different booking",
		}
	}
	return resultFor(existing), nil
}

func resultFor(b models.Booking) BookingResult {
	return BookingResult{
		BookingID:     b.ID,
		Status:        b.Status,
		PaymentMode:   b.PaymentMode,
		FareLockedINR: b.FareLockedINR,
		Message:       bookingReceivedMessage,
	}
}
