package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 12 * time.Hour

// AdminClaims is the JWT payload for back-office sessions.
type AdminClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

type AdminLookup interface {
	GetByEmail(ctx context.Context, email string) (models.AdminUser, error)
}

type AuthService struct {
	Admins    AdminLookup
	Secret    []byte
	TTL       time.Duration
	Now       func() time.Time
	RequestID string
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login checks credentials and returns a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s AuthService) Login(ctx context.Context, email, password string) (string, models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", models.AdminUser{}, domain.ValidationError{Msg: "email and password are required"}
	}
	badLogin := domain.UnauthorizedError{Msg: "wrong email or password"}

	user, err := s.Admins.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.AdminUser{}, badLogin
		}
		return "", models.AdminUser{}, err
	}
	if !user.Active {
		return "", models.AdminUser{}, badLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		utils.LogEvent(s.RequestID, "auth", "login", "failed login for admin "+utils.FirstNonEmpty(user.Email, email))
		return "", models.AdminUser{}, badLogin
	}

	token, err := s.Issue(user)
	if err != nil {
		return "", models.AdminUser{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "login", "admin logged in")
	return token, user, nil
}

// Issue signs a token for user.
func (s AuthService) Issue(user models.AdminUser) (string, error) {
	if len(s.Secret) == 0 {
		return "", domain.InternalError{Msg: "jwt secret not configured"}
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = adminTokenTTL
	}
	now := s.now()
	claims := AdminClaims{
		AdminID: user.ID,
		Email:   user.Email,
		Role:    user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   user.Email,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "token signing failed", Err: err}
	}
	return signed, nil
}

// Parse validates a bearer token and returns its claims.
func (s AuthService) Parse(token string) (AdminClaims, error) {
	var claims AdminClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AdminClaims{}, domain.UnauthorizedError{Msg: "session expired, please log in again", Err: err}
		}
		return AdminClaims{}, domain.UnauthorizedError{Msg: "invalid token", Err: err}
	}
	if !parsed.Valid {
		return AdminClaims{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash suitable for admin_users.password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.InternalError{Msg: "password hashing failed", Err: err}
	}
	return string(b), nil
}
