package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// MessagePreviewLength is how many characters of the body a header carries.
const MessagePreviewLength = 50

// MessageRepository handles private message data access.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// ListReceived retrieves a page of userID's inbox, newest first.
func (r *MessageRepository) ListReceived(ctx context.Context, userID, offset, limit int) ([]model.ReceivedMessageHeader, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.title, LEFT(m.content, $4), m.updated_at, mr.is_read,
		        u.id, u.first_name || ' ' || u.last_name
		 FROM messages m
		 JOIN message_receivers mr ON mr.message_id = m.id AND mr.user_id = $1
		 JOIN users u ON u.id = m.author_id
		 ORDER BY m.updated_at DESC, m.id DESC
		 OFFSET $2 LIMIT $3`, userID, offset, limit, MessagePreviewLength)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReceivedMessageHeader{}
	for rows.Next() {
		var h model.ReceivedMessageHeader
		if err := rows.Scan(&h.MessageID, &h.Title, &h.Preview, &h.Date, &h.IsRead,
			&h.SenderID, &h.SenderName); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListSent retrieves a page of the messages authorID sent, newest first, each
// with its receivers.
func (r *MessageRepository) ListSent(ctx context.Context, authorID, offset, limit int) ([]model.SentMessageHeader, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.title, LEFT(m.content, $4), m.updated_at
		 FROM messages m
		 WHERE m.author_id = $1
		 ORDER BY m.updated_at DESC, m.id DESC
		 OFFSET $2 LIMIT $3`, authorID, offset, limit, MessagePreviewLength)
	if err != nil {
		return nil, err
	}

	out := []model.SentMessageHeader{}
	ids := []int{}
	for rows.Next() {
		h := model.SentMessageHeader{Receivers: []model.MessageReceiver{}}
		if err := rows.Scan(&h.MessageID, &h.Title, &h.Preview, &h.Date); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, h)
		ids = append(ids, h.MessageID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	receivers, err := r.receivers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if rs, ok := receivers[out[i].MessageID]; ok {
			out[i].Receivers = rs
		}
	}
	return out, nil
}

// receivers loads the receivers of every message in ids, keyed by message.
func (r *MessageRepository) receivers(ctx context.Context, ids []int) (map[int][]model.MessageReceiver, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT mr.message_id, mr.user_id, u.first_name || ' ' || u.last_name, mr.is_read
		 FROM message_receivers mr
		 JOIN users u ON u.id = mr.user_id
		 WHERE mr.message_id = ANY($1)
		 ORDER BY mr.message_id, u.last_name, u.first_name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]model.MessageReceiver, len(ids))
	for rows.Next() {
		var messageID int
		var rc model.MessageReceiver
		if err := rows.Scan(&messageID, &rc.UserID, &rc.Name, &rc.IsRead); err != nil {
			return nil, err
		}
		out[messageID] = append(out[messageID], rc)
	}
	return out, rows.Err()
}

// GetContent retrieves a full message with its sender and receivers.
func (r *MessageRepository) GetContent(ctx context.Context, id int) (*model.MessageContent, error) {
	m := &model.MessageContent{Receivers: []model.MessageReceiver{}}
	err := r.pool.QueryRow(ctx,
		`SELECT m.id, m.title, m.content, m.updated_at, u.id, u.first_name || ' ' || u.last_name
		 FROM messages m
		 JOIN users u ON u.id = m.author_id
		 WHERE m.id = $1`, id,
	).Scan(&m.ID, &m.Title, &m.Content, &m.Date, &m.SenderID, &m.SenderName)
	if err != nil {
		return nil, mapErr(err)
	}

	receivers, err := r.receivers(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	if rs, ok := receivers[id]; ok {
		m.Receivers = rs
	}
	return m, nil
}

// MarkRead records that userID opened the message.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, userID int) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE message_receivers SET is_read = TRUE WHERE message_id = $1 AND user_id = $2`,
		messageID, userID))
}

// Create inserts a message and its receivers in one transaction.
// ErrInvalidReference is returned when a receiver does not exist.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message, receivers []int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO messages (title, content, author_id) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		m.Title, m.Content, m.AuthorID,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO message_receivers (message_id, user_id)
		 SELECT $1, unnest($2::int[])`, m.ID, receivers); err != nil {
		return mapErr(err)
	}

	return tx.Commit(ctx)
}

// AuthorID returns who wrote the message.
func (r *MessageRepository) AuthorID(ctx context.Context, id int) (int, error) {
	var authorID int
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM messages WHERE id = $1`, id).Scan(&authorID)
	return authorID, mapErr(err)
}

// Delete removes a message for every receiver.
func (r *MessageRepository) Delete(ctx context.Context, id int) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchUsers finds users whose first name, last name or email contains
// query, ignoring case.
func (r *MessageRepository) SearchUsers(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, role
		 FROM users
		 WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
		 ORDER BY last_name, first_name, id
		 LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
