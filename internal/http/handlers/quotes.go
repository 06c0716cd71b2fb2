package handlers

import (
	"net/http"
	"strings"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/services"
	"cabbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	OriginText      string `json:"origin_text"`
	DestinationText string `json:"destination_text"`
	PickupDatetime  string `json:"pickup_datetime"`
	CarType         string `json:"car_type"`
	DiscountCode    string `json:"discount_code"`
}

// CreateQuote prices a trip. An unusable discount code is a 409 that still
// carries the undiscounted quote.
func (h *Handlers) CreateQuote(c *gin.Context) {
	var req quoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.OriginText) == "" {
		respondValidation(c, "origin_text", "required")
		return
	}
	if strings.TrimSpace(req.DestinationText) == "" {
		respondValidation(c, "destination_text", "required")
		return
	}
	pickup, err := utils.ParsePickup(req.PickupDatetime, h.Env.Location())
	if err != nil {
		respondValidation(c, "pickup_datetime", "must be an RFC3339 date-time")
		return
	}
	carType, ok := models.ParseCarType(req.CarType)
	if !ok {
		respondValidation(c, "car_type", "unknown car type")
		return
	}

	q, err := h.quoteService(c).Quote(c.Request.Context(), services.QuoteRequest{
		OriginText:      req.OriginText,
		DestinationText: req.DestinationText,
		PickupAt:        pickup,
		CarType:         carType,
		DiscountCode:    req.DiscountCode,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if q.RouteID == nil {
		RespondDomainError(c, domain.NotFoundError{Resource: "route"})
		return
	}
	if !q.DiscountValid {
		RespondDomainError(c, domain.ConflictError{
			Resource: "quote",
			Code:     "discount_invalid",
			Msg:      "discount code cannot be applied",
			Details:  map[string]any{"reason": q.DiscountReason, "quote": q},
		})
		return
	}
	respondOK(c, http.StatusOK, gin.H{"quote": q})
}
