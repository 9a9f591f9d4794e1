package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

const recentAnnouncements = 50

// AnnouncementStore persists announcements.
type AnnouncementStore interface {
	GetByID(ctx context.Context, id int) (*model.Announcement, error)
	ListRecent(ctx context.Context, limit int) ([]model.Announcement, error)
	Create(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id int) error
}

// AnnouncementPublisher notifies live clients of a new announcement.
type AnnouncementPublisher interface {
	Publish(ctx context.Context, a *model.Announcement) error
}

// AnnouncementService handles announcement business logic.
type AnnouncementService struct {
	store     AnnouncementStore
	publisher AnnouncementPublisher
	log       zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService.
func NewAnnouncementService(store AnnouncementStore, publisher AnnouncementPublisher, log zerolog.Logger) *AnnouncementService {
	return &AnnouncementService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "announcement_service").Logger(),
	}
}

// List returns the most recent announcements.
func (s *AnnouncementService) List(ctx context.Context) ([]model.Announcement, error) {
	return s.store.ListRecent(ctx, recentAnnouncements)
}

// Create stores an announcement authored by the caller and broadcasts it.
// A failed broadcast does not fail the request.
func (s *AnnouncementService) Create(ctx context.Context, ab *ability.Ability, req *model.CreateAnnouncementRequest) (*model.Announcement, error) {
	a := &model.Announcement{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: ab.Actor().ID,
	}
	if err := authorize(ab, ability.Create, a); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, a); err != nil {
		s.log.Warn().Err(err).Int("announcement_id", a.ID).Msg("Failed to broadcast announcement")
	}
	return a, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, ab *ability.Ability, id int) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ab, ability.Delete, a); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
