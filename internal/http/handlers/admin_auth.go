package handlers

import (
	"net/http"

	"cabbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	token, user, err := h.authService(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"token": token, "admin": user})
}

// AdminMe echoes the authenticated admin back to the dashboard.
func (h *Handlers) AdminMe(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	respondOK(c, http.StatusOK, gin.H{"admin": admin})
}
