package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

const (
	// MessagePageSize is how many headers one inbox or outbox page holds.
	MessagePageSize = 20
	// UserSearchLimit caps the receiver search.
	UserSearchLimit = 10
)

// Messaging errors.
var (
	ErrInvalidOffset = errors.New("offset must be a non-negative integer")
	ErrEmptyQuery    = errors.New("search query is required")
)

// MessageStore persists private messages.
type MessageStore interface {
	ListReceived(ctx context.Context, userID, offset, limit int) ([]model.ReceivedMessageHeader, error)
	ListSent(ctx context.Context, authorID, offset, limit int) ([]model.SentMessageHeader, error)
	GetContent(ctx context.Context, id int) (*model.MessageContent, error)
	MarkRead(ctx context.Context, messageID, userID int) error
	Create(ctx context.Context, m *model.Message, receivers []int) error
	AuthorID(ctx context.Context, id int) (int, error)
	Delete(ctx context.Context, id int) error
	SearchUsers(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
}

// MessageService handles private messages between users. Messages are not
// governed by role abilities: any signed-in user may write to any other, and
// only the author and receivers of a message may see it.
type MessageService struct {
	messages MessageStore
	log      zerolog.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages MessageStore, log zerolog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		log:      log.With().Str("component", "message_service").Logger(),
	}
}

// Inbox returns a page of the messages userID received. Callers may only
// read their own inbox.
func (s *MessageService) Inbox(ctx context.Context, caller *model.User, userID, offset int) ([]model.ReceivedMessageHeader, error) {
	if caller.ID != userID {
		return nil, ErrForbidden
	}
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	return s.messages.ListReceived(ctx, userID, offset, MessagePageSize)
}

// Outbox returns a page of the messages userID sent.
func (s *MessageService) Outbox(ctx context.Context, caller *model.User, userID, offset int) ([]model.SentMessageHeader, error) {
	if caller.ID != userID {
		return nil, ErrForbidden
	}
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	return s.messages.ListSent(ctx, userID, offset, MessagePageSize)
}

// ReadReceived returns a message the caller received and marks it read.
// A message the caller did not receive is reported as ErrForbidden whether
// or not it exists.
func (s *MessageService) ReadReceived(ctx context.Context, caller *model.User, id int) (*model.MessageContent, error) {
	m, err := s.messages.GetContent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, r := range m.Receivers {
		if r.UserID == caller.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrForbidden
	}

	if !m.Receivers[idx].IsRead {
		if err := s.messages.MarkRead(ctx, id, caller.ID); err != nil {
			return nil, err
		}
		m.Receivers[idx].IsRead = true
	}
	return m, nil
}

// ReadSent returns a message the caller wrote.
func (s *MessageService) ReadSent(ctx context.Context, caller *model.User, id int) (*model.MessageContent, error) {
	m, err := s.messages.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.SenderID != caller.ID {
		return nil, ErrForbidden
	}
	return m, nil
}

// Send delivers a message from caller to every receiver. Repeated receivers
// get one copy. ErrNotFound is returned, and nothing is sent, when any
// receiver does not exist.
func (s *MessageService) Send(ctx context.Context, caller *model.User, req *model.SendMessageRequest) (*model.Message, error) {
	m := &model.Message{Title: req.Title, Content: req.Content, AuthorID: caller.ID}
	receivers := uniqueSortedIDs(req.Receivers)

	if err := s.messages.Create(ctx, m, receivers); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.log.Info().Int("message_id", m.ID).Int("author_id", caller.ID).Int("receivers", len(receivers)).
		Msg("Message sent")
	return m, nil
}

// Delete removes a message the caller wrote.
func (s *MessageService) Delete(ctx context.Context, caller *model.User, id int) error {
	authorID, err := s.messages.AuthorID(ctx, id)
	if err != nil {
		return err
	}
	if authorID != caller.ID {
		return ErrForbidden
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("message_id", id).Int("author_id", caller.ID).Msg("Message deleted")
	return nil
}

// SearchReceivers finds users to address a message to.
func (s *MessageService) SearchReceivers(ctx context.Context, query string) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return s.messages.SearchUsers(ctx, query, UserSearchLimit)
}

func uniqueSortedIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
