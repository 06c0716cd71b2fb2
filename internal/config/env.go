package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr  string
	GinMode  string
	AppEnv   string
	LogLevel string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBAutoMigrate bool

	RedisURL           string
	CORSAllowedOrigins []string
	JWTSecret          string

	OTPLength        int
	OTPTTL           time.Duration
	OTPSessionTTL    time.Duration
	OTPEcho          bool
	OTPBypass        bool
	OTPMaxAttempts   int
	SMSGatewayURL    string
	FareToleranceINR int64
	NightStartHour   int
	NightEndHour     int
	Timezone         string
	IdempotencyTTL   time.Duration
	AnalyticsURL     string
	AnalyticsTimeout time.Duration
	AnalyticsSalt    string

	// Warnings collected while loading; logged once the logger exists.
	Warnings []string
}

// IsProduction reports whether test-only switches must stay off.
func (e Env) IsProduction() bool {
	return strings.EqualFold(e.AppEnv, "production") || strings.EqualFold(e.AppEnv, "prod")
}

// Location resolves Timezone, falling back to IST.
func (e Env) Location() *time.Location {
	if loc, err := time.LoadLocation(e.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*60*60+30*60)
}

// devJWTSecret signs admin tokens in local development only.
const devJWTSecret = "change-me-in-production"

// ErrWeakJWTSecret means a production process would sign admin tokens with a
// guessable key.
var ErrWeakJWTSecret = errors.New("JWT_SECRET must be set to a private value of at least 32 characters in production")

// Validate rejects settings a production process must not start with.
func (e Env) Validate() error {
	if e.IsProduction() && (e.JWTSecret == devJWTSecret || len(e.JWTSecret) < 32) {
		return ErrWeakJWTSecret
	}
	return nil
}

func LoadEnv() Env {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	env := Env{
		AppAddr:  str("APP_ADDR", ":8080"),
		GinMode:  str("GIN_MODE", ""),
		AppEnv:   str("APP_ENV", "development"),
		LogLevel: str("LOG_LEVEL", "info"),

		DBHost:        str("DB_HOST", "127.0.0.1"),
		DBPort:        str("DB_PORT", "3306"),
		DBUser:        str("DB_USER", "root"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        str("DB_NAME", "cab_booking"),
		DBAutoMigrate: boolean("DB_AUTO_MIGRATE", false),

		RedisURL:           str("REDIS_URL", ""),
		CORSAllowedOrigins: list("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"}),
		JWTSecret:          str("JWT_SECRET", devJWTSecret),

		OTPLength:        integer("OTP_LENGTH", 6),
		OTPTTL:           seconds("OTP_TTL_SECONDS", 300),
		OTPSessionTTL:    seconds("OTP_SESSION_TTL_SECONDS", 600),
		OTPEcho:          boolean("OTP_ECHO", false),
		OTPBypass:        boolean("OTP_BYPASS", false),
		OTPMaxAttempts:   integer("OTP_MAX_ATTEMPTS", 5),
		SMSGatewayURL:    str("SMS_GATEWAY_URL", ""),
		FareToleranceINR: int64(integer("FARE_TOLERANCE_INR", 50)),
		NightStartHour:   integer("NIGHT_START_HOUR", 22),
		NightEndHour:     integer("NIGHT_END_HOUR", 6),
		Timezone:         str("TIMEZONE", "Asia/Kolkata"),
		IdempotencyTTL:   seconds("IDEMPOTENCY_TTL_SECONDS", 24*60*60),
		AnalyticsURL:     str("ANALYTICS_URL", ""),
		AnalyticsTimeout: time.Duration(integer("ANALYTICS_TIMEOUT_MS", 1500)) * time.Millisecond,
		AnalyticsSalt:    str("ANALYTICS_SALT", ""),
	}

	if env.OTPLength < 4 || env.OTPLength > 8 {
		env.OTPLength = 6
	}

	if env.IsProduction() {
		if env.OTPBypass || env.OTPEcho {
			env.Warnings = append(env.Warnings, "OTP_BYPASS/OTP_ECHO ignored in production")
		}
		env.OTPBypass = false
		env.OTPEcho = false
	}

	return env
}

func str(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func seconds(key string, def int) time.Duration {
	return time.Duration(integer(key, def)) * time.Second
}

func list(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
