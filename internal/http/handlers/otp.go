package handlers

import (
	"net/http"
	"strings"

	"cabbooking/internal/domain"
	"cabbooking/internal/http/middleware"
	"cabbooking/internal/ratelimit"
	"cabbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type verifyOTPRequest struct {
	Phone   string `json:"phone"`
	OTP     string `json:"otp"`
	Context string `json:"context"`
}

// SendOTP issues a one-time code, limited per phone and per client IP.
func (h *Handlers) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		respondValidation(c, "phone", "invalid mobile number")
		return
	}

	if err := h.limit(c, phone); err != nil {
		RespondDomainError(c, err)
		return
	}

	res, err := h.otpService(c).Issue(c.Request.Context(), phone)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	payload := gin.H{"ttl_seconds": int(res.TTL.Seconds())}
	if res.Code != "" {
		payload["mock_otp"] = res.Code
	}
	respondOK(c, http.StatusOK, payload)
}

// limit counts the request against both limiters and returns the stricter
// denial. A limiter backend failure lets the request through.
func (h *Handlers) limit(c *gin.Context, phone string) error {
	checks := []struct {
		scope   string
		limiter ratelimit.Limiter
		key     string
	}{
		{"phone", h.Stores.PhoneLimiter, phone},
		{"ip", h.Stores.IPLimiter, c.ClientIP()},
	}

	var denied *domain.RateLimitedError
	for _, chk := range checks {
		if chk.limiter.Counter == nil {
			continue
		}
		d, err := chk.limiter.Allow(c.Request.Context(), chk.key)
		if err != nil {
			utils.LogWarn(middleware.GetRequestID(c), "ratelimit", chk.scope, "limiter unavailable, allowing request", err)
			continue
		}
		if d.Allowed {
			continue
		}
		if denied == nil || d.RetryAfter > denied.RetryAfter {
			denied = &domain.RateLimitedError{Scope: chk.scope, RetryAfter: d.RetryAfter}
		}
	}
	if denied != nil {
		utils.LogEvent(middleware.GetRequestID(c), "ratelimit", denied.Scope, "otp send limited for "+utils.MaskPhone(phone))
		return *denied
	}
	return nil
}

// VerifyOTP checks a code and opens a single-use booking session on success.
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		respondValidation(c, "phone", "invalid mobile number")
		return
	}
	code := strings.TrimSpace(req.OTP)
	if !digitsOnly(code) || len(code) < 4 || len(code) > 8 {
		respondValidation(c, "otp", "must be 4 to 8 digits")
		return
	}

	ctx := c.Request.Context()
	if err := h.otpService(c).Verify(ctx, phone, code); err != nil {
		RespondDomainError(c, err)
		return
	}

	token, ttl, err := h.sessionService(c).Create(ctx, phone)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"valid":               true,
		"token":               token,
		"ttl_seconds":         int(ttl.Seconds()),
		"session_established": true,
	})
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
