package repo

import (
	"context"
	"time"

	dom "github.com/suchockipawel/nottodo/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotToDoRepo provides Not To Do persistence. All reads and writes except
// ListActive are scoped to the owning user.
type NotToDoRepo interface {
	Create(ctx context.Context, n dom.NotToDo) (dom.NotToDo, error)
	GetByID(ctx context.Context, userID, id int64) (dom.NotToDo, error)
	List(ctx context.Context, userID int64, context dom.Context) ([]dom.NotToDo, error)
	Update(ctx context.Context, userID, id int64, patch dom.NotToDo) (dom.NotToDo, error)
	Delete(ctx context.Context, userID, id int64) error
	HasUpcoming(ctx context.Context, userID int64, now time.Time) (bool, error)
	ListActive(ctx context.Context, now time.Time) ([]dom.NotToDo, error)
}

type PGNotToDoRepo struct {
	db *pgxpool.Pool
}

func NewPGNotToDoRepo(db *pgxpool.Pool) *PGNotToDoRepo {
	return &PGNotToDoRepo{db: db}
}

const nottodoColumns = `id, user_id, title, description, context, scheduled_start_time, scheduled_end_time, repeat, created_at, updated_at`

func scanNotToDo(row interface{ Scan(...any) error }) (dom.NotToDo, error) {
	var n dom.NotToDo
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Context,
		&n.ScheduledStart, &n.ScheduledEnd, &n.Repeat, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (r *PGNotToDoRepo) Create(ctx context.Context, n dom.NotToDo) (dom.NotToDo, error) {
	query := `
		INSERT INTO nottodos (user_id, title, description, context, scheduled_start_time, scheduled_end_time, repeat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + nottodoColumns
	return scanNotToDo(r.db.QueryRow(ctx, query,
		n.UserID, n.Title, n.Description, n.Context, n.ScheduledStart, n.ScheduledEnd, n.Repeat))
}

func (r *PGNotToDoRepo) GetByID(ctx context.Context, userID, id int64) (dom.NotToDo, error) {
	query := `SELECT ` + nottodoColumns + ` FROM nottodos WHERE id = $1 AND user_id = $2`
	return scanNotToDo(r.db.QueryRow(ctx, query, id, userID))
}

func (r *PGNotToDoRepo) List(ctx context.Context, userID int64, context dom.Context) ([]dom.NotToDo, error) {
	query := `SELECT ` + nottodoColumns + ` FROM nottodos WHERE user_id = $1`
	args := []any{userID}
	if context != "" {
		query += ` AND context = $2`
		args = append(args, context)
	}
	query += ` ORDER BY scheduled_start_time ASC NULLS LAST, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.NotToDo
	for rows.Next() {
		n, err := scanNotToDo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *PGNotToDoRepo) Update(ctx context.Context, userID, id int64, patch dom.NotToDo) (dom.NotToDo, error) {
	query := `
		UPDATE nottodos
		SET title = $3, description = $4, context = $5,
		    scheduled_start_time = $6, scheduled_end_time = $7, repeat = $8,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + nottodoColumns
	return scanNotToDo(r.db.QueryRow(ctx, query, id, userID,
		patch.Title, patch.Description, patch.Context,
		patch.ScheduledStart, patch.ScheduledEnd, patch.Repeat))
}

// Delete removes the item; shares, comments and email log rows cascade in the
// schema, which also drops the item from future dispatch consideration.
func (r *PGNotToDoRepo) Delete(ctx context.Context, userID, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM nottodos WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// HasUpcoming reports whether the user has any item with a start time after now.
func (r *PGNotToDoRepo) HasUpcoming(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM nottodos WHERE user_id = $1 AND scheduled_start_time > $2)`,
		userID, now,
	).Scan(&exists)
	return exists, err
}

// ListActive returns every scheduled item that may still produce occurrences:
// either the schedule has no end yet, or its end plus the monthly one-year
// look-ahead has not passed. The dispatcher narrows further per item.
func (r *PGNotToDoRepo) ListActive(ctx context.Context, now time.Time) ([]dom.NotToDo, error) {
	query := `SELECT ` + nottodoColumns + `
		FROM nottodos
		WHERE scheduled_start_time IS NOT NULL
		  AND (scheduled_end_time IS NULL OR scheduled_end_time + INTERVAL '1 year' >= $1)
		ORDER BY scheduled_start_time ASC`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.NotToDo
	for rows.Next() {
		n, err := scanNotToDo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
