package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// UserRepository handles user and address data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, email, login, password_hash, is_email_confirmed,
	phone_number, birth_date, address_id, role, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Login, &u.PasswordHash,
		&u.IsEmailConfirmed, &u.PhoneNumber, &u.BirthDate, &u.AddressID, &u.Role,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmailOrLogin retrieves a user by email when given, otherwise by login.
func (r *UserRepository) GetByEmailOrLogin(ctx context.Context, email, login string) (*model.User, error) {
	if email != "" {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	}
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = $1`, login))
}

func (r *UserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM users WHERE %s = $1)`, column), value,
	).Scan(&found)
	return found, err
}

// ExistsByLogin reports whether a user with the given login exists.
func (r *UserRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	return r.exists(ctx, "login", login)
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

// ExistsByPhone reports whether a user with the given phone number exists.
func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone_number", phone)
}

// Create inserts a user and, when addr is non-nil, its address in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *model.User, addr *model.Address) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if addr != nil {
		err = tx.QueryRow(ctx,
			`INSERT INTO addresses (street, house, city, zip, country)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			addr.Street, addr.House, addr.City, addr.Zip, addr.Country,
		).Scan(&addr.ID)
		if err != nil {
			return mapErr(err)
		}
		u.AddressID = &addr.ID
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, login, password_hash, is_email_confirmed,
		                    phone_number, birth_date, address_id, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		u.FirstName, u.LastName, u.Email, u.Login, u.PasswordHash, u.IsEmailConfirmed,
		u.PhoneNumber, u.BirthDate, u.AddressID, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	return tx.Commit(ctx)
}

// ConfirmEmail marks the user's email address as confirmed.
func (r *UserRepository) ConfirmEmail(ctx context.Context, id int) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE users SET is_email_confirmed = TRUE, updated_at = NOW() WHERE id = $1`, id))
}
