package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/ephemeral"
	"cabbooking/internal/utils"

	"go.uber.org/zap"
)

// OTPRecord is the stored state of one issued code.
type OTPRecord struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// OTPSender delivers a code to the phone owner.
type OTPSender interface {
	Send(ctx context.Context, phone, code string, ttl time.Duration) error
}

// LogSender only logs that a code was issued. Used outside production.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phone, _ string, ttl time.Duration) error {
	utils.Logger().Info("otp issued",
		zap.String("module", "OTP"),
		zap.String("phone", utils.MaskPhone(phone)),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// HTTPSender posts {phone, message} as JSON to an SMS gateway.
type HTTPSender struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func (s HTTPSender) Send(ctx context.Context, phone, code string, ttl time.Duration) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{
		"phone":   "+91" + phone,
		"message": fmt.Sprintf("%s is your booking OTP. Valid for %d minutes.", code, int(ttl.Minutes())),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway status %d", resp.StatusCode)
	}
	return nil
}

// IssueResult is returned by OTPService.Issue. Code is set only when echo is on.
type IssueResult struct {
	Code string
	TTL  time.Duration
}

type OTPService struct {
	Codes ephemeral.Store[OTPRecord]
	// Used remembers consumed phone/code pairs so a replay is reported as ALREADY_USED.
	Used   ephemeral.Store[bool]
	Sender OTPSender

	Length      int
	TTL         time.Duration
	MaxAttempts int
	Echo        bool
	Bypass      bool
	Production  bool

	Now       func() time.Time
	RequestID string
}

func (s OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s OTPService) ttl() time.Duration {
	if s.TTL <= 0 {
		return 5 * time.Minute
	}
	return s.TTL
}

// Issue generates a fresh code for phone, replacing any earlier one.
func (s OTPService) Issue(ctx context.Context, phone string) (IssueResult, error) {
	code, err := GenerateOTP(s.Length)
	if err != nil {
		return IssueResult{}, domain.InternalError{Msg: "otp generation failed", Err: err}
	}
	ttl := s.ttl()
	rec := OTPRecord{Code: code, ExpiresAt: s.now().Add(ttl)}
	if _, err := s.Used.Delete(ctx, usedKey(phone, code)); err != nil {
		return IssueResult{}, domain.InternalError{Msg: "otp store unavailable", Err: err}
	}
	if err := s.Codes.Set(ctx, phone, rec, ttl); err != nil {
		return IssueResult{}, domain.InternalError{Msg: "otp store unavailable", Err: err}
	}

	if s.Sender != nil {
		if err := s.Sender.Send(ctx, phone, code, ttl); err != nil {
			// the code is useless if it never reached the phone
			_, _ = s.Codes.Delete(ctx, phone)
			utils.LogWarn(s.RequestID, "otp", "issue", "otp delivery failed", err)
			return IssueResult{}, domain.InternalError{Msg: "otp delivery failed", Err: err}
		}
	}
	utils.LogEvent(s.RequestID, "otp", "issue", "otp issued for "+utils.MaskPhone(phone))

	out := IssueResult{TTL: ttl}
	if s.Echo && !s.Production {
		out.Code = code
	}
	return out, nil
}

// Verify succeeds at most once per issued code. Failures are
// UnauthorizedError, or AlreadyUsedError for a replay of a consumed code.
func (s OTPService) Verify(ctx context.Context, phone, code string) error {
	if s.Bypass && !s.Production {
		utils.LogEvent(s.RequestID, "otp", "verify", "otp bypass accepted")
		return nil
	}

	rec, ok, err := s.Codes.Get(ctx, phone)
	if err != nil {
		return domain.InternalError{Msg: "otp store unavailable", Err: err}
	}
	if !ok || !s.now().Before(rec.ExpiresAt) {
		return s.rejection(ctx, phone, code)
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		s.countFailure(ctx, phone, rec)
		return s.rejection(ctx, phone, code)
	}

	// claim the guard before deleting the record; a verifier racing the
	// delete then always finds one of the two
	won, err := s.Used.SetNX(ctx, usedKey(phone, code), true, s.ttl())
	if err != nil {
		return domain.InternalError{Msg: "otp store unavailable", Err: err}
	}
	if !won {
		return domain.AlreadyUsedError{Resource: "otp"}
	}
	if _, err := s.Codes.Delete(ctx, phone); err != nil {
		return domain.InternalError{Msg: "otp store unavailable", Err: err}
	}
	utils.LogEvent(s.RequestID, "otp", "verify", "otp verified for "+utils.MaskPhone(phone))
	return nil
}

func (s OTPService) rejection(ctx context.Context, phone, code string) error {
	used, ok, err := s.Used.Get(ctx, usedKey(phone, code))
	if err == nil && ok && used {
		return domain.AlreadyUsedError{Resource: "otp"}
	}
	return domain.UnauthorizedError{Msg: "invalid or expired otp"}
}

func (s OTPService) countFailure(ctx context.Context, phone string, rec OTPRecord) {
	rec.Attempts++
	if s.MaxAttempts > 0 && rec.Attempts >= s.MaxAttempts {
		_, _ = s.Codes.Delete(ctx, phone)
		utils.LogEvent(s.RequestID, "otp", "verify", "otp burned after too many attempts")
		return
	}
	remaining := rec.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return
	}
	_ = s.Codes.Set(ctx, phone, rec, remaining)
}

// usedKey avoids putting raw codes into store keys.
func usedKey(phone, code string) string {
	sum := sha256.Sum256([]byte(phone + "|" + code))
	return hex.EncodeToString(sum[:])
}

// GenerateOTP returns a uniformly random numeric code of length digits.
func GenerateOTP(length int) (string, error) {
	if length <= 0 || length > 18 {
		length = 6
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
