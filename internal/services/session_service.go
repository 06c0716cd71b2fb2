package services

import (
	"context"
	"strings"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/ephemeral"
	"cabbooking/internal/utils"

	"github.com/google/uuid"
)

// Reasons a session token cannot be consumed.
const (
	SessionUsed    = "used"
	SessionExpired = "expired"
	SessionInvalid = "invalid"
)

// OTPSession binds a verified phone to a single-use booking token.
type OTPSession struct {
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ConsumeResult struct {
	OK     bool
	Phone  string
	Reason string
}

// Err maps a failed consumption to the client-facing error.
func (r ConsumeResult) Err() error {
	switch {
	case r.OK:
		return nil
	case r.Reason == SessionUsed:
		return domain.AlreadyUsedError{Resource: "otp session"}
	case r.Reason == SessionExpired:
		return domain.UnauthorizedError{Msg: "otp session expired"}
	default:
		return domain.UnauthorizedError{Msg: "invalid otp session"}
	}
}

type SessionService struct {
	Sessions ephemeral.Store[OTPSession]
	Claims   ephemeral.Store[bool]
	TTL      time.Duration
	// Grace keeps expired records around so they read as expired, not invalid.
	Grace time.Duration

	Now       func() time.Time
	NewToken  func() string
	RequestID string
}

func (s SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return 10 * time.Minute
	}
	return s.TTL
}

func (s SessionService) retention() time.Duration {
	grace := s.Grace
	if grace <= 0 {
		grace = time.Hour
	}
	return s.ttl() + grace
}

// Create mints a token for phone.
func (s SessionService) Create(ctx context.Context, phone string) (string, time.Duration, error) {
	token := uuid.NewString()
	if s.NewToken != nil {
		token = s.NewToken()
	}
	ttl := s.ttl()
	sess := OTPSession{Phone: phone, ExpiresAt: s.now().Add(ttl)}
	ok, err := s.Sessions.SetNX(ctx, token, sess, s.retention())
	if err != nil {
		return "", 0, domain.InternalError{Msg: "session store unavailable", Err: err}
	}
	if !ok {
		return "", 0, domain.InternalError{Msg: "session token collision"}
	}
	utils.LogEvent(s.RequestID, "session", "create", "otp session established for "+utils.MaskPhone(phone))
	return token, ttl, nil
}

// Consume claims token. Of any number of concurrent callers exactly one gets OK.
func (s SessionService) Consume(ctx context.Context, token string) (ConsumeResult, error) {
	if strings.TrimSpace(token) == "" || len(token) > 128 {
		return ConsumeResult{Reason: SessionInvalid}, nil
	}

	sess, ok, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return ConsumeResult{}, domain.InternalError{Msg: "session store unavailable", Err: err}
	}
	if !ok {
		return ConsumeResult{Reason: SessionInvalid}, nil
	}

	if !s.now().Before(sess.ExpiresAt) {
		_, claimed, err := s.Claims.Get(ctx, token)
		if err != nil {
			return ConsumeResult{}, domain.InternalError{Msg: "session store unavailable", Err: err}
		}
		if claimed {
			return ConsumeResult{Reason: SessionUsed}, nil
		}
		return ConsumeResult{Reason: SessionExpired}, nil
	}

	won, err := s.Claims.SetNX(ctx, token, true, s.retention())
	if err != nil {
		return ConsumeResult{}, domain.InternalError{Msg: "session store unavailable", Err: err}
	}
	if !won {
		return ConsumeResult{Reason: SessionUsed}, nil
	}
	utils.LogEvent(s.RequestID, "session", "consume", "otp session consumed")
	return ConsumeResult{OK: true, Phone: sess.Phone}, nil
}
