package model

import (
	"time"

	"github.com/stemsi/schoolhub-backend/internal/ability"
)

// Message is a private note from one user to one or more receivers.
type Message struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int       `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageReceiver is one receiver of a message and whether they opened it.
type MessageReceiver struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	IsRead bool   `json:"is_read"`
}

// ReceivedMessageHeader is an inbox entry.
type ReceivedMessageHeader struct {
	MessageID  int       `json:"message_id"`
	Title      string    `json:"title"`
	Preview    string    `json:"preview"`
	Date       time.Time `json:"date"`
	IsRead     bool      `json:"is_read"`
	SenderID   int       `json:"sender_id"`
	SenderName string    `json:"sender_name"`
}

// SentMessageHeader is an outbox entry.
type SentMessageHeader struct {
	MessageID int               `json:"message_id"`
	Title     string            `json:"title"`
	Preview   string            `json:"preview"`
	Date      time.Time         `json:"date"`
	Receivers []MessageReceiver `json:"receivers"`
}

// MessageContent is a full message with its sender and receivers.
type MessageContent struct {
	ID         int               `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Date       time.Time         `json:"date"`
	SenderID   int               `json:"sender_id"`
	SenderName string            `json:"sender_name"`
	Receivers  []MessageReceiver `json:"receivers"`
}

// SendMessageRequest is the payload for sending a message.
type SendMessageRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=200"`
	Content   string `json:"content" binding:"required,min=1,max=10000"`
	Receivers []int  `json:"receivers" binding:"required,min=1,max=100,dive,gt=0"`
}

// UserSummary is the public view of a user returned by the receiver search.
type UserSummary struct {
	ID        int          `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Role      ability.Role `json:"role"`
}
