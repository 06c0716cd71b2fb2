package api

import (
	intconfig "cabbooking/internal/config"
	h "cabbooking/internal/http/handlers"
	"cabbooking/internal/http/middleware"
	"cabbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, hs *h.Handlers) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(h.NoRoute)
	r.NoMethod(h.NoMethod)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hs.DBCheck)

		otp := api.Group("/otp")
		otp.POST("/send", hs.SendOTP)
		otp.POST("/verify", hs.VerifyOTP)

		api.POST("/quotes", hs.CreateQuote)
		api.POST("/bookings", hs.CreateBooking)

		api.POST("/admin/login", hs.AdminLogin)

		admin := api.Group("/admin", middleware.RequireAdmin(hs.TokenParser()))
		admin.GET("/me", hs.AdminMe)

		admin.GET("/cities", hs.ListCities)
		admin.POST("/cities", hs.CreateCity)
		admin.PUT("/cities/:id", hs.UpdateCity)
		admin.DELETE("/cities/:id", hs.DeleteCity)

		admin.GET("/routes", hs.ListRoutes)
		admin.POST("/routes", hs.CreateRoute)
		admin.GET("/routes/:id", hs.GetRoute)
		admin.PUT("/routes/:id", hs.UpdateRoute)
		admin.DELETE("/routes/:id", hs.DeleteRoute)
		admin.GET("/routes/:id/fares", hs.ListFares)
		admin.PUT("/routes/:id/fares", hs.PutFares)

		admin.GET("/offers", hs.ListOffers)
		admin.POST("/offers", hs.CreateOffer)
		admin.GET("/offers/:id", hs.GetOffer)
		admin.PUT("/offers/:id", hs.UpdateOffer)
		admin.DELETE("/offers/:id", hs.DeleteOffer)

		admin.GET("/drivers", hs.ListDrivers)
		admin.POST("/drivers", hs.CreateDriver)
		admin.PUT("/drivers/:id", hs.UpdateDriver)
		admin.DELETE("/drivers/:id", hs.DeleteDriver)

		bookings := admin.Group("/bookings")
		bookings.GET("", hs.ListBookings)
		bookings.GET("/:id", hs.GetBooking)
		bookings.GET("/:id/confirmation", hs.GetBookingConfirmation)

		// lifecycle changes need an operations role
		ops := bookings.Group("", middleware.RequireRoles("admin", "ops"))
		ops.PATCH("/:id/status", hs.UpdateBookingStatus)
		ops.PATCH("/:id/assign", hs.AssignDriver)
	}

	return r
}
