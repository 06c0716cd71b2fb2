package handlers

import (
	"net/http"

	"cabbooking/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// activeOnly reads ?active=true; the back office lists everything by default.
func activeOnly(c *gin.Context) bool {
	return c.Query("active") == "true" || c.Query("active") == "1"
}

// ===== Cities =====

func (h *Handlers) ListCities(c *gin.Context) {
	list, err := h.catalogService(c).ListCities(c.Request.Context(), activeOnly(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"cities": list})
}

func (h *Handlers) CreateCity(c *gin.Context) {
	var city models.City
	if !BindJSONOrError(c, &city) {
		return
	}
	city.ID = 0
	saved, err := h.catalogService(c).SaveCity(c.Request.Context(), city)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"city": saved})
}

func (h *Handlers) UpdateCity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var city models.City
	if !BindJSONOrError(c, &city) {
		return
	}
	city.ID = id
	saved, err := h.catalogService(c).SaveCity(c.Request.Context(), city)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"city": saved})
}

func (h *Handlers) DeleteCity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService(c).DeleteCity(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deactivated": id})
}

// ===== Routes =====

func (h *Handlers) ListRoutes(c *gin.Context) {
	list, err := h.catalogService(c).ListRoutes(c.Request.Context(), activeOnly(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"routes": list})
}

func (h *Handlers) GetRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rt, err := h.catalogService(c).GetRoute(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"route": rt})
}

func (h *Handlers) CreateRoute(c *gin.Context) {
	var rt models.Route
	if !BindJSONOrError(c, &rt) {
		return
	}
	rt.ID = 0
	saved, err := h.catalogService(c).SaveRoute(c.Request.Context(), rt)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"route": saved})
}

func (h *Handlers) UpdateRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var rt models.Route
	if !BindJSONOrError(c, &rt) {
		return
	}
	rt.ID = id
	saved, err := h.catalogService(c).SaveRoute(c.Request.Context(), rt)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"route": saved})
}

func (h *Handlers) DeleteRoute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService(c).DeleteRoute(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deactivated": id})
}

// ===== Fares =====

func (h *Handlers) ListFares(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	fares, err := h.catalogService(c).ListFares(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"route_id": id, "fares": fares})
}

type putFaresRequest struct {
	Fares []models.Fare `json:"fares"`
}

func (h *Handlers) PutFares(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req putFaresRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	fares, err := h.catalogService(c).PutFares(c.Request.Context(), id, req.Fares)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"route_id": id, "fares": fares})
}

// ===== Offers =====

func (h *Handlers) ListOffers(c *gin.Context) {
	list, err := h.catalogService(c).ListOffers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"offers": list})
}

func (h *Handlers) GetOffer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.catalogService(c).GetOffer(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"offer": o})
}

func (h *Handlers) CreateOffer(c *gin.Context) {
	var o models.Offer
	if !BindJSONOrError(c, &o) {
		return
	}
	o.ID = 0
	saved, err := h.catalogService(c).SaveOffer(c.Request.Context(), o)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"offer": saved})
}

func (h *Handlers) UpdateOffer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var o models.Offer
	if !BindJSONOrError(c, &o) {
		return
	}
	o.ID = id
	saved, err := h.catalogService(c).SaveOffer(c.Request.Context(), o)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"offer": saved})
}

func (h *Handlers) DeleteOffer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService(c).DeleteOffer(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deactivated": id})
}

// ===== Drivers =====

func (h *Handlers) ListDrivers(c *gin.Context) {
	list, err := h.catalogService(c).ListDrivers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"drivers": list})
}

func (h *Handlers) CreateDriver(c *gin.Context) {
	var d models.Driver
	if !BindJSONOrError(c, &d) {
		return
	}
	d.ID = 0
	saved, err := h.catalogService(c).SaveDriver(c.Request.Context(), d)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"driver": saved})
}

func (h *Handlers) UpdateDriver(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var d models.Driver
	if !BindJSONOrError(c, &d) {
		return
	}
	d.ID = id
	saved, err := h.catalogService(c).SaveDriver(c.Request.Context(), d)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"driver": saved})
}

func (h *Handlers) DeleteDriver(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService(c).DeleteDriver(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deactivated": id})
}
