package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrEmailTokenInvalid is returned for malformed, forged or expired tokens.
var ErrEmailTokenInvalid = errors.New("invalid email confirmation token")

const emailConfirmationPurpose = "email_confirmation"

// EmailClaims is the payload of an email confirmation token.
type EmailClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// EmailTokenService issues and checks signed email confirmation tokens.
type EmailTokenService struct {
	secret []byte
	expiry time.Duration
	clock  Clock
}

// NewEmailTokenService creates a new EmailTokenService.
func NewEmailTokenService(secret string, expiry time.Duration, clock Clock) *EmailTokenService {
	return &EmailTokenService{secret: []byte(secret), expiry: expiry, clock: clock}
}

// Issue signs a confirmation token for userID.
func (s *EmailTokenService) Issue(userID int) (string, error) {
	now := s.clock.Now()
	claims := EmailClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		Purpose: emailConfirmationPurpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates tokenStr and returns the user it was issued for.
func (s *EmailTokenService) Parse(tokenStr string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &EmailClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEmailTokenInvalid, err)
	}

	claims, ok := token.Claims.(*EmailClaims)
	if !ok || !token.Valid || claims.Purpose != emailConfirmationPurpose {
		return 0, ErrEmailTokenInvalid
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return 0, ErrEmailTokenInvalid
	}
	return userID, nil
}
