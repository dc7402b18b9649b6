package repo

import (
	"context"

	dom "github.com/suchockipawel/nottodo/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ShareRepo provides persistence for shares and their comments.
type ShareRepo interface {
	Create(ctx context.Context, nottodoID, sharedWith int64) (dom.SharedNotToDo, error)
	GetForUser(ctx context.Context, userID, shareID int64) (dom.SharedWithItem, error)
	GetByItemAndUser(ctx context.Context, nottodoID, userID int64) (dom.SharedWithItem, error)
	ListForUser(ctx context.Context, userID int64) ([]dom.SharedWithItem, error)
	Delete(ctx context.Context, userID, shareID int64) error
	AddComment(ctx context.Context, shareID, userID int64, text string) (dom.Comment, error)
	ListComments(ctx context.Context, shareID int64) ([]dom.Comment, error)
}

type PGShareRepo struct {
	db *pgxpool.Pool
}

func NewPGShareRepo(db *pgxpool.Pool) *PGShareRepo {
	return &PGShareRepo{db: db}
}

const sharedJoinColumns = `
	s.id, s.nottodo_id, s.shared_with, s.created_at,
	n.id, n.user_id, n.title, n.description, n.context,
	n.scheduled_start_time, n.scheduled_end_time, n.repeat, n.created_at, n.updated_at`

func scanSharedWithItem(row interface{ Scan(...any) error }) (dom.SharedWithItem, error) {
	var v dom.SharedWithItem
	err := row.Scan(
		&v.Share.ID, &v.Share.NotToDoID, &v.Share.SharedWith, &v.Share.CreatedAt,
		&v.Item.ID, &v.Item.UserID, &v.Item.Title, &v.Item.Description, &v.Item.Context,
		&v.Item.ScheduledStart, &v.Item.ScheduledEnd, &v.Item.Repeat,
		&v.Item.CreatedAt, &v.Item.UpdatedAt,
	)
	return v, err
}

func (r *PGShareRepo) Create(ctx context.Context, nottodoID, sharedWith int64) (dom.SharedNotToDo, error) {
	query := `
		INSERT INTO shared_nottodos (nottodo_id, shared_with)
		VALUES ($1, $2)
		RETURNING id, nottodo_id, shared_with, created_at`
	var s dom.SharedNotToDo
	err := r.db.QueryRow(ctx, query, nottodoID, sharedWith).Scan(
		&s.ID, &s.NotToDoID, &s.SharedWith, &s.CreatedAt,
	)
	return s, err
}

func (r *PGShareRepo) GetForUser(ctx context.Context, userID, shareID int64) (dom.SharedWithItem, error) {
	query := `
		SELECT ` + sharedJoinColumns + `
		FROM shared_nottodos s
		JOIN nottodos n ON n.id = s.nottodo_id
		WHERE s.id = $1 AND s.shared_with = $2`
	return scanSharedWithItem(r.db.QueryRow(ctx, query, shareID, userID))
}

func (r *PGShareRepo) GetByItemAndUser(ctx context.Context, nottodoID, userID int64) (dom.SharedWithItem, error) {
	query := `
		SELECT ` + sharedJoinColumns + `
		FROM shared_nottodos s
		JOIN nottodos n ON n.id = s.nottodo_id
		WHERE s.nottodo_id = $1 AND s.shared_with = $2`
	return scanSharedWithItem(r.db.QueryRow(ctx, query, nottodoID, userID))
}

func (r *PGShareRepo) ListForUser(ctx context.Context, userID int64) ([]dom.SharedWithItem, error) {
	query := `
		SELECT ` + sharedJoinColumns + `
		FROM shared_nottodos s
		JOIN nottodos n ON n.id = s.nottodo_id
		WHERE s.shared_with = $1
		ORDER BY s.created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.SharedWithItem
	for rows.Next() {
		v, err := scanSharedWithItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *PGShareRepo) Delete(ctx context.Context, userID, shareID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM shared_nottodos WHERE id = $1 AND shared_with = $2`, shareID, userID)
	return err
}

func (r *PGShareRepo) AddComment(ctx context.Context, shareID, userID int64, text string) (dom.Comment, error) {
	query := `
		INSERT INTO comments (shared_nottodo_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, shared_nottodo_id, user_id, text, created_at`
	var c dom.Comment
	err := r.db.QueryRow(ctx, query, shareID, userID, text).Scan(
		&c.ID, &c.SharedNotToDoID, &c.UserID, &c.Text, &c.CreatedAt,
	)
	return c, err
}

func (r *PGShareRepo) ListComments(ctx context.Context, shareID int64) ([]dom.Comment, error) {
	query := `
		SELECT id, shared_nottodo_id, user_id, text, created_at
		FROM comments WHERE shared_nottodo_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, shareID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Comment
	for rows.Next() {
		var c dom.Comment
		if err := rows.Scan(&c.ID, &c.SharedNotToDoID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
