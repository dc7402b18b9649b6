package repo

import (
	"context"
	"time"

	dom "github.com/suchockipawel/nottodo/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailLogRepo provides the append-only reminder delivery log.
type EmailLogRepo interface {
	Append(ctx context.Context, e dom.EmailLog) (dom.EmailLog, error)
	WasSent(ctx context.Context, nottodoID int64, occurrenceStart time.Time) (bool, error)
	ListForItem(ctx context.Context, userID, nottodoID int64) ([]dom.EmailLog, error)
}

type PGEmailLogRepo struct {
	db *pgxpool.Pool
}

func NewPGEmailLogRepo(db *pgxpool.Pool) *PGEmailLogRepo {
	return &PGEmailLogRepo{db: db}
}

func (r *PGEmailLogRepo) Append(ctx context.Context, e dom.EmailLog) (dom.EmailLog, error) {
	query := `
		INSERT INTO email_log (nottodo_id, user_id, email, subject, message, occurrence_start, sent_at, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, nottodo_id, user_id, email, subject, message, occurrence_start, sent_at, success, error_message`
	var out dom.EmailLog
	err := r.db.QueryRow(ctx, query,
		e.NotToDoID, e.UserID, e.Email, e.Subject, e.Message,
		e.OccurrenceStart, e.SentAt, e.Success, e.ErrorMessage,
	).Scan(&out.ID, &out.NotToDoID, &out.UserID, &out.Email, &out.Subject, &out.Message,
		&out.OccurrenceStart, &out.SentAt, &out.Success, &out.ErrorMessage)
	return out, err
}

// WasSent reports whether a successful reminder already went out for this
// item's occurrence. Failed attempts do not count, so they are retried on the
// next tick while the window is still open.
func (r *PGEmailLogRepo) WasSent(ctx context.Context, nottodoID int64, occurrenceStart time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM email_log WHERE nottodo_id = $1 AND occurrence_start = $2 AND success)`,
		nottodoID, occurrenceStart,
	).Scan(&exists)
	return exists, err
}

func (r *PGEmailLogRepo) ListForItem(ctx context.Context, userID, nottodoID int64) ([]dom.EmailLog, error) {
	query := `
		SELECT id, nottodo_id, user_id, email, subject, message, occurrence_start, sent_at, success, error_message
		FROM email_log
		WHERE nottodo_id = $1 AND user_id = $2
		ORDER BY sent_at DESC`
	rows, err := r.db.Query(ctx, query, nottodoID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.EmailLog
	for rows.Next() {
		var e dom.EmailLog
		if err := rows.Scan(&e.ID, &e.NotToDoID, &e.UserID, &e.Email, &e.Subject, &e.Message,
			&e.OccurrenceStart, &e.SentAt, &e.Success, &e.ErrorMessage); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
