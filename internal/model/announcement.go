package model

import (
	"time"

	"github.com/stemsi/schoolhub-backend/internal/ability"
)

// Announcement is a school-wide notice.
type Announcement struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	AuthorID        int       `json:"author_id"`
	AuthorFirstName string    `json:"author_first_name"`
	AuthorLastName  string    `json:"author_last_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubjectType implements ability.Subject.
func (a *Announcement) SubjectType() ability.SubjectType { return ability.SubjectAnnouncement }

// Attr implements ability.Subject. No rule conditions reference announcements.
func (a *Announcement) Attr(ability.Field) (int, bool) { return 0, false }

// CreateAnnouncementRequest is the payload for publishing an announcement.
type CreateAnnouncementRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required,min=1,max=10000"`
}
