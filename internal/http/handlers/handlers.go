package handlers

import (
	"database/sql"
	"time"

	"cabbooking/internal/analytics"
	intconfig "cabbooking/internal/config"
	"cabbooking/internal/ephemeral"
	"cabbooking/internal/http/middleware"
	"cabbooking/internal/idempotency"
	"cabbooking/internal/ratelimit"
	"cabbooking/internal/repositories"
	"cabbooking/internal/services"

	"github.com/gin-gonic/gin"
)

// Stores groups the ephemeral state shared by the public endpoints.
// Every field must be set; each use site owns its own instance.
type Stores struct {
	OTPCodes      ephemeral.Store[services.OTPRecord]
	OTPUsed       ephemeral.Store[bool]
	Sessions      ephemeral.Store[services.OTPSession]
	SessionClaims ephemeral.Store[bool]
	PhoneLimiter  ratelimit.Limiter
	IPLimiter     ratelimit.Limiter
	Bookings      *idempotency.Guard[idempotency.Response]
}

// Handlers holds what request handlers need. Services are built per request
// so they carry the request id.
type Handlers struct {
	Env       intconfig.Env
	DB        *sql.DB
	Stores    Stores
	Sender    services.OTPSender
	Analytics *analytics.Dispatcher
	Now       func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handlers) otpService(c *gin.Context) services.OTPService {
	return services.OTPService{
		Codes:       h.Stores.OTPCodes,
		Used:        h.Stores.OTPUsed,
		Sender:      h.Sender,
		Length:      h.Env.OTPLength,
		TTL:         h.Env.OTPTTL,
		MaxAttempts: h.Env.OTPMaxAttempts,
		Echo:        h.Env.OTPEcho,
		Bypass:      h.Env.OTPBypass,
		Production:  h.Env.IsProduction(),
		Now:         h.Now,
		RequestID:   middleware.GetRequestID(c),
	}
}

func (h *Handlers) sessionService(c *gin.Context) services.SessionService {
	return services.SessionService{
		Sessions:  h.Stores.Sessions,
		Claims:    h.Stores.SessionClaims,
		TTL:       h.Env.OTPSessionTTL,
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) quoteService(c *gin.Context) services.QuoteService {
	return services.QuoteService{
		Routes:         repositories.RouteRepository{DB: h.DB},
		Fares:          repositories.FareRepository{DB: h.DB},
		Offers:         repositories.OfferRepository{DB: h.DB},
		NightStartHour: h.Env.NightStartHour,
		NightEndHour:   h.Env.NightEndHour,
		Location:       h.Env.Location(),
		Now:            h.Now,
		RequestID:      middleware.GetRequestID(c),
	}
}

func (h *Handlers) bookingService(c *gin.Context) services.BookingService {
	svc := services.BookingService{
		Sessions:     h.sessionService(c),
		Routes:       repositories.RouteRepository{DB: h.DB},
		Quotes:       h.quoteService(c),
		Bookings:     repositories.BookingRepository{DB: h.DB},
		ToleranceINR: h.Env.FareToleranceINR,
		Now:          h.Now,
	}
	// a nil *Dispatcher must not become a non-nil interface
	if h.Analytics != nil {
		svc.Analytics = h.Analytics
	}
	return svc
}

func (h *Handlers) authService(c *gin.Context) services.AuthService {
	return services.AuthService{
		Admins:    repositories.AdminUserRepository{DB: h.DB},
		Secret:    []byte(h.Env.JWTSecret),
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) catalogService(c *gin.Context) services.CatalogService {
	return services.CatalogService{
		Cities:    repositories.CityRepository{DB: h.DB},
		Routes:    repositories.RouteRepository{DB: h.DB},
		Fares:     repositories.FareRepository{DB: h.DB},
		Offers:    repositories.OfferRepository{DB: h.DB},
		Drivers:   repositories.DriverRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) bookingAdminService(c *gin.Context) services.BookingAdminService {
	return services.BookingAdminService{
		Bookings:  repositories.BookingRepository{DB: h.DB},
		Drivers:   repositories.DriverRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) docsService(c *gin.Context) services.DocsService {
	return services.DocsService{
		Bookings:  repositories.BookingRepository{DB: h.DB},
		Routes:    repositories.RouteRepository{DB: h.DB},
		Drivers:   repositories.DriverRepository{DB: h.DB},
		Location:  h.Env.Location(),
		RequestID: middleware.GetRequestID(c),
	}
}

// TokenParser exposes admin token validation to the auth middleware.
func (h *Handlers) TokenParser() middleware.TokenParser {
	return services.AuthService{Secret: []byte(h.Env.JWTSecret), Now: h.Now}
}
