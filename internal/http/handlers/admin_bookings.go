package handlers

import (
	"net/http"
	"strconv"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListBookings(c *gin.Context) {
	var f models.BookingFilter
	if raw := c.Query("status"); raw != "" {
		st, ok := models.ParseBookingStatus(raw)
		if !ok {
			respondValidation(c, "status", "unknown booking status")
			return
		}
		f.Status = st
	}
	if raw := c.Query("phone"); raw != "" {
		phone, err := utils.NormalizePhone(raw)
		if err != nil {
			respondValidation(c, "phone", "invalid mobile number")
			return
		}
		f.Phone = phone
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))

	list, p, err := h.bookingAdminService(c).List(c.Request.Context(), f, domain.Pagination{Page: page, PageSize: size})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"bookings": list, "pagination": p})
}

func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookingAdminService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"booking": b})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	next, ok := models.ParseBookingStatus(req.Status)
	if !ok {
		respondValidation(c, "status", "unknown booking status")
		return
	}
	b, err := h.bookingAdminService(c).UpdateStatus(c.Request.Context(), id, next)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"booking": b})
}

type assignDriverRequest struct {
	DriverID int64 `json:"driver_id"`
}

func (h *Handlers) AssignDriver(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req assignDriverRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.DriverID <= 0 {
		respondValidation(c, "driver_id", "required")
		return
	}
	b, err := h.bookingAdminService(c).Assign(c.Request.Context(), id, req.DriverID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"booking": b})
}

// GetBookingConfirmation renders the booking confirmation PDF inline.
func (h *Handlers) GetBookingConfirmation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.docsService(c).GenerateConfirmation(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
