package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabbooking/internal/analytics"
	intconfig "cabbooking/internal/config"
	intdb "cabbooking/internal/db"
	"cabbooking/internal/ephemeral"
	router "cabbooking/internal/http"
	"cabbooking/internal/http/handlers"
	"cabbooking/internal/idempotency"
	"cabbooking/internal/ratelimit"
	"cabbooking/internal/services"
	"cabbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, err := utils.InitLogger(env.LogLevel, env.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range env.Warnings {
		logger.Warn(w)
	}
	if err := env.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer intconfig.CloseDB()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if env.DBAutoMigrate {
		created, err := intdb.Migrate(ctx, db)
		if err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		logger.Info("schema ready", zap.Strings("created", created))
	}

	stores, rdb, err := buildStores(ctx, env)
	if err != nil {
		logger.Fatal("ephemeral stores", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var sender services.OTPSender = services.LogSender{}
	if env.SMSGatewayURL != "" {
		sender = services.HTTPSender{URL: env.SMSGatewayURL, Timeout: 5 * time.Second}
	} else if env.IsProduction() {
		logger.Warn("SMS_GATEWAY_URL not set, OTP codes are only logged")
	}

	dispatcher := analytics.NewDispatcher(env.AnalyticsURL, env.AnalyticsTimeout, env.AnalyticsSalt)

	hs := &handlers.Handlers{
		Env:       env,
		DB:        db,
		Stores:    stores,
		Sender:    sender,
		Analytics: dispatcher,
	}
	r := router.NewRouter(env, hs)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr), zap.String("env", env.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	dispatcher.Wait()
	logger.Info("server stopped")
}

// buildStores backs every ephemeral store with Redis when REDIS_URL is set,
// otherwise with process memory swept by a janitor.
func buildStores(ctx context.Context, env intconfig.Env) (handlers.Stores, *redis.Client, error) {
	if env.RedisURL != "" {
		rdb, err := ephemeral.OpenRedis(ctx, env.RedisURL)
		if err != nil {
			return handlers.Stores{}, nil, err
		}
		return handlers.Stores{
			OTPCodes:      ephemeral.NewRedis[services.OTPRecord](rdb, "otp:code:"),
			OTPUsed:       ephemeral.NewRedis[bool](rdb, "otp:used:"),
			Sessions:      ephemeral.NewRedis[services.OTPSession](rdb, "otp:session:"),
			SessionClaims: ephemeral.NewRedis[bool](rdb, "otp:claim:"),
			PhoneLimiter:  ratelimit.New(ephemeral.NewRedisCounter(rdb, "rl:"), "otp:phone:", 15*time.Minute, 3),
			IPLimiter:     ratelimit.New(ephemeral.NewRedisCounter(rdb, "rl:"), "otp:ip:", time.Hour, 10),
			Bookings:      idempotency.NewGuard[idempotency.Response](ephemeral.NewRedis[idempotency.Response](rdb, "idem:booking:"), env.IdempotencyTTL),
		}, rdb, nil
	}

	var (
		codes    = ephemeral.NewMemory[services.OTPRecord]()
		used     = ephemeral.NewMemory[bool]()
		sessions = ephemeral.NewMemory[services.OTPSession]()
		claims   = ephemeral.NewMemory[bool]()
		idem     = ephemeral.NewMemory[idempotency.Response]()
		counter  = ephemeral.NewMemoryCounter()
	)
	ephemeral.StartJanitor(ctx, time.Minute, codes, used, sessions, claims, idem, counter)
	utils.Logger().Warn("REDIS_URL not set, ephemeral state is per-process")

	return handlers.Stores{
		OTPCodes:      codes,
		OTPUsed:       used,
		Sessions:      sessions,
		SessionClaims: claims,
		PhoneLimiter:  ratelimit.New(counter, "otp:phone:", 15*time.Minute, 3),
		IPLimiter:     ratelimit.New(counter, "otp:ip:", time.Hour, 10),
		Bookings:      idempotency.NewGuard[idempotency.Response](idem, env.IdempotencyTTL),
	}, nil, nil
}
