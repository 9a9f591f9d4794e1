package model

import (
	"time"

	"github.com/stemsi/schoolhub-backend/internal/ability"
)

// User is a student, teacher or administrator account.
type User struct {
	ID               int          `json:"id"`
	FirstName        string       `json:"first_name"`
	LastName         string       `json:"last_name"`
	Email            string       `json:"email"`
	Login            string       `json:"login"`
	PasswordHash     string       `json:"-"`
	IsEmailConfirmed bool         `json:"is_email_confirmed"`
	PhoneNumber      string       `json:"phone_number"`
	BirthDate        time.Time    `json:"birth_date"`
	AddressID        *int         `json:"address_id,omitempty"`
	Role             ability.Role `json:"role"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Actor returns the view of u the ability policy works with.
func (u *User) Actor() ability.Actor {
	return ability.Actor{ID: u.ID, Role: u.Role}
}

// SubjectType implements ability.Subject.
func (u *User) SubjectType() ability.SubjectType { return ability.SubjectUser }

// Attr implements ability.Subject. Users carry no condition attributes.
func (u *User) Attr(ability.Field) (int, bool) { return 0, false }

// Address is the postal address collected at registration.
type Address struct {
	ID      int    `json:"id"`
	Street  string `json:"street"`
	House   string `json:"house"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// LoginRequest authenticates with either email or login plus password.
// Presence is checked by the handler so the two messages stay distinct.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Login    string `json:"login" binding:"omitempty,max=100"`
	Password string `json:"password" binding:"max=128"`
}

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,max=255"`
	Login       string `json:"login" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required,max=30"`
	BirthDate   string `json:"birth_date" binding:"required"`
	Street      string `json:"street" binding:"required,max=200"`
	House       string `json:"house" binding:"required,max=50"`
	City        string `json:"city" binding:"required,max=100"`
	Zip         string `json:"zip" binding:"required,max=20"`
	Country     string `json:"country" binding:"required,max=100"`
}

// ConfirmEmailRequest carries an email confirmation token.
type ConfirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
}
