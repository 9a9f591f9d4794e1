package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// AnnouncementRepository handles announcement data access.
type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

// NewAnnouncementRepository creates a new AnnouncementRepository.
func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

const announcementSelect = `SELECT a.id, a.title, a.content, a.author_id, u.first_name, u.last_name, a.created_at
	FROM announcements a
	JOIN users u ON u.id = a.author_id`

func scanAnnouncement(row pgx.Row) (*model.Announcement, error) {
	a := &model.Announcement{}
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.AuthorFirstName, &a.AuthorLastName, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// GetByID retrieves an announcement with its author name.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int) (*model.Announcement, error) {
	return scanAnnouncement(r.pool.QueryRow(ctx, announcementSelect+` WHERE a.id = $1`, id))
}

// ListRecent retrieves the newest announcements.
func (r *AnnouncementRepository) ListRecent(ctx context.Context, limit int) ([]model.Announcement, error) {
	rows, err := r.pool.Query(ctx, announcementSelect+` ORDER BY a.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Create inserts an announcement and reloads it with the author name.
func (r *AnnouncementRepository) Create(ctx context.Context, a *model.Announcement) error {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO announcements (title, content, author_id) VALUES ($1, $2, $3) RETURNING id`,
		a.Title, a.Content, a.AuthorID,
	).Scan(&id)
	if err != nil {
		return mapErr(err)
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id))
}
