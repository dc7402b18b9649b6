package repo

import (
	"context"

	dom "github.com/suchockipawel/nottodo/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	Create(ctx context.Context, username, email, passwordHash string) (dom.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) (dom.User, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// GetByID returns the user by ID.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByUsername returns the user by username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, username, email, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, username, email, passwordHash))
}

// UpdateEmail changes where the user's reminders are delivered.
func (r *PGUserRepo) UpdateEmail(ctx context.Context, id int64, email string) (dom.User, error) {
	query := `
		UPDATE users SET email = $2 WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, email))
}
