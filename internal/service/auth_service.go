package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
	"github.com/stemsi/schoolhub-backend/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

// Authentication and registration errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRequired      = errors.New("email or login is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrLoginExists        = errors.New("login already exists")
	ErrEmailInvalid       = errors.New("email is invalid")
	ErrEmailExists        = errors.New("email already exists")
	ErrPhoneExists        = errors.New("phone number already exists")
	ErrWeakPassword       = errors.New("password does not meet the policy")
	ErrInvalidBirthDate   = errors.New("invalid birth date")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAccountExists      = errors.New("account already exists")
)

// AccountStore persists user accounts.
type AccountStore interface {
	UserStore
	GetByEmailOrLogin(ctx context.Context, email, login string) (*model.User, error)
	ExistsByLogin(ctx context.Context, login string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Create(ctx context.Context, u *model.User, addr *model.Address) error
	ConfirmEmail(ctx context.Context, id int) error
}

// AuthService handles login, registration and email confirmation.
type AuthService struct {
	accounts    AccountStore
	sessions    *SessionService
	emailTokens *EmailTokenService
	bcryptCost  int
	log         zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts AccountStore, sessions *SessionService, emailTokens *EmailTokenService, bcryptCost int, log zerolog.Logger) *AuthService {
	return &AuthService{
		accounts:    accounts,
		sessions:    sessions,
		emailTokens: emailTokens,
		bcryptCost:  bcryptCost,
		log:         log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login authenticates by email (preferred) or login and opens a session.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.Session, error) {
	if req.Email == "" && req.Login == "" {
		return nil, nil, ErrLoginRequired
	}
	if req.Password == "" {
		return nil, nil, ErrPasswordRequired
	}

	user, err := s.accounts.GetByEmailOrLogin(ctx, req.Email, req.Login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.log.Debug().Int("user_id", user.ID).Msg("Password mismatch")
		return nil, nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return user, sess, nil
}

// Register creates a student account with an unconfirmed email address and
// returns it together with the email confirmation token.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, string, error) {
	if err := s.checkAvailability(ctx, req); err != nil {
		return nil, "", err
	}

	birthDate, err := ParseDate(req.BirthDate)
	if err != nil {
		return nil, "", ErrInvalidBirthDate
	}

	user := &model.User{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       req.Email,
		Login:       req.Login,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   birthDate,
		Role:        ability.RoleStudent,
	}
	addr := &model.Address{
		Street:  req.Street,
		House:   req.House,
		City:    req.City,
		Zip:     req.Zip,
		Country: req.Country,
	}

	if err := s.createAccount(ctx, user, addr, req.Password); err != nil {
		return nil, "", err
	}

	token, err := s.emailTokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("User registered, email confirmation pending")
	s.log.Debug().Int("user_id", user.ID).Str("confirmation_token", token).Msg("Email confirmation token issued")
	return user, token, nil
}

// checkAvailability validates uniqueness and the password policy in the
// order the client reports them.
func (s *AuthService) checkAvailability(ctx context.Context, req *model.RegisterRequest) error {
	exists, err := s.accounts.ExistsByLogin(ctx, req.Login)
	if err != nil {
		return fmt.Errorf("check login: %w", err)
	}
	if exists {
		return ErrLoginExists
	}

	if !validator.IsEmail(req.Email) {
		return ErrEmailInvalid
	}
	if exists, err = s.accounts.ExistsByEmail(ctx, req.Email); err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrEmailExists
	}

	if exists, err = s.accounts.ExistsByPhone(ctx, req.PhoneNumber); err != nil {
		return fmt.Errorf("check phone: %w", err)
	}
	if exists {
		return ErrPhoneExists
	}

	if !validator.StrongPassword(req.Password) {
		return ErrWeakPassword
	}
	return nil
}

// CreateAccount creates a user with the given role directly, without the
// self-service checks. Used by operator tooling.
func (s *AuthService) CreateAccount(ctx context.Context, user *model.User, password string) error {
	if !user.Role.Valid() {
		return ErrInvalidRole
	}
	if !validator.StrongPassword(password) {
		return ErrWeakPassword
	}
	user.IsEmailConfirmed = true
	return s.createAccount(ctx, user, nil, password)
}

func (s *AuthService) createAccount(ctx context.Context, user *model.User, addr *model.Address, password string) error {
	hash, err := s.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ErrWeakPassword
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.accounts.Create(ctx, user, addr); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAccountExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ConfirmEmail marks the email of the user a valid token was issued for as confirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	userID, err := s.emailTokens.Parse(token)
	if err != nil {
		return err
	}
	if err := s.accounts.ConfirmEmail(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailTokenInvalid
		}
		return err
	}
	s.log.Info().Int("user_id", userID).Msg("Email confirmed")
	return nil
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
