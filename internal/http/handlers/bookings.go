package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/http/middleware"
	"cabbooking/internal/idempotency"
	"cabbooking/internal/services"
	"cabbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

const utmCookie = "utm_first"

type createBookingRequest struct {
	RouteID         int64  `json:"route_id"`
	OriginText      string `json:"origin_text"`
	DestinationText string `json:"destination_text"`
	PickupDatetime  string `json:"pickup_datetime"`
	CarType         string `json:"car_type"`
	FareQuoteINR    int64  `json:"fare_quote_inr"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	OTPToken        string `json:"otp_token"`
	DiscountCode    string `json:"discount_code"`
	PaymentMode     string `json:"payment_mode"`
}

type bookingResponse struct {
	OK bool `json:"ok"`
	services.BookingResult
}

// CreateBooking runs the booking transaction at most once per
// (customer phone, Idempotency-Key). Replays get the stored bytes back.
func (h *Handlers) CreateBooking(c *gin.Context) {
	key := c.GetHeader("Idempotency-Key")
	if !idempotency.ValidKey(key) {
		respondValidation(c, "Idempotency-Key", "header is required (1 to 128 printable characters)")
		return
	}

	var body createBookingRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	pickup, err := utils.ParsePickup(body.PickupDatetime, h.Env.Location())
	if err != nil {
		respondValidation(c, "pickup_datetime", "must be an RFC3339 date-time")
		return
	}
	carType, ok := models.ParseCarType(body.CarType)
	if !ok {
		respondValidation(c, "car_type", "unknown car type")
		return
	}
	mode := strings.ToUpper(strings.TrimSpace(body.PaymentMode))
	if mode == "" {
		mode = models.PaymentCOD
	}

	req := services.BookingRequest{
		RouteID:         body.RouteID,
		OriginText:      body.OriginText,
		DestinationText: body.DestinationText,
		PickupAt:        pickup,
		CarType:         carType,
		FareQuoteINR:    body.FareQuoteINR,
		CustomerName:    body.CustomerName,
		CustomerPhone:   body.CustomerPhone,
		OTPToken:        strings.TrimSpace(body.OTPToken),
		DiscountCode:    body.DiscountCode,
		PaymentMode:     mode,
	}
	svc := h.bookingService(c)
	if err := svc.Validate(req); err != nil {
		RespondDomainError(c, err)
		return
	}
	phone, _ := utils.NormalizePhone(req.CustomerPhone)

	rawUTM, _ := c.Cookie(utmCookie)
	bc := services.BookingContext{
		RequestID:      middleware.GetRequestID(c),
		ClientIP:       c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
		UTM:            utils.ParseUTMCookie(rawUTM),
		IdempotencyKey: key,
	}

	resp, replayed, err := h.Stores.Bookings.Do(c.Request.Context(), phone+":"+key,
		func(ctx context.Context) (idempotency.Response, error) {
			res, err := svc.Create(ctx, req, bc)
			if err != nil {
				return idempotency.Response{}, err
			}
			out, err := json.Marshal(bookingResponse{OK: true, BookingResult: res})
			if err != nil {
				return idempotency.Response{}, domain.InternalError{Msg: "encode booking response", Err: err}
			}
			return idempotency.Response{Status: http.StatusCreated, Body: out}, nil
		})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if replayed {
		c.Header("Idempotent-Replayed", "true")
		utils.LogEvent(bc.RequestID, "booking", "create", "idempotent replay served")
	}
	c.Data(resp.Status, "application/json; charset=utf-8", resp.Body)
}
