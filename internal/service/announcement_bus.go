package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/config"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// AnnouncementBus fans new announcements out to every server instance over
// Redis Pub/Sub.
type AnnouncementBus struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAnnouncementBus creates a new AnnouncementBus.
func NewAnnouncementBus(rdb *redis.Client, log zerolog.Logger) *AnnouncementBus {
	return &AnnouncementBus{
		rdb: rdb,
		log: log.With().Str("component", "announcement_bus").Logger(),
	}
}

// Publish broadcasts a.
func (b *AnnouncementBus) Publish(ctx context.Context, a *model.Announcement) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	return b.rdb.Publish(ctx, config.CacheKey.AnnouncementChannel(), payload).Err()
}

// Subscribe delivers announcements published after the subscription is
// confirmed. The channel is closed when ctx is done.
func (b *AnnouncementBus) Subscribe(ctx context.Context) (<-chan model.Announcement, error) {
	pubsub := b.rdb.Subscribe(ctx, config.CacheKey.AnnouncementChannel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan model.Announcement, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var a model.Announcement
				if err := json.Unmarshal([]byte(msg.Payload), &a); err != nil {
					b.log.Warn().Err(err).Msg("Dropping malformed announcement")
					continue
				}
				select {
				case out <- a:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
