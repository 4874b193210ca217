package reservationrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicate = errors.New("active reservation already exists")

// Candidate is the next reservation in line for a returned book,
// joined with the reserver's contact details.
type Candidate struct {
	ID        int64
	UserID    int64
	BookID    int64
	Username  string
	Email     string
	CreatedAt time.Time
}

type Repo interface {
	// Insert creates an active, un-notified reservation. A partial
	// unique index on (user_id, printed_book_id) WHERE is_active maps
	// to ErrDuplicate.
	Insert(ctx context.Context, userID, bookID int64) error
	HasActive(ctx context.Context, userID, bookID int64) (bool, error)

	// OldestUnnotifiedForUpdate picks the head of the queue. SKIP LOCKED
	// keeps two concurrent return flows from notifying the same row.
	OldestUnnotifiedForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*Candidate, error)
	MarkNotified(ctx context.Context, tx *sql.Tx, reservationID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, userID, bookID int64) error {
	const q = `
		INSERT INTO reservations (user_id, printed_book_id)
		VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, q, userID, bookID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *repo) HasActive(ctx context.Context, userID, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE user_id = $1
			AND printed_book_id = $2
			AND is_active
		)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, userID, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) OldestUnnotifiedForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*Candidate, error) {
	const q = `
		SELECT r.id, r.user_id, r.printed_book_id, u.username, u.email, r.reservation_date
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.printed_book_id = $1
		AND r.is_active
		AND NOT r.notified
		ORDER BY r.reservation_date, r.id
		FOR UPDATE OF r SKIP LOCKED
		LIMIT 1`
	c := &Candidate{}
	err := tx.QueryRowContext(ctx, q, bookID).Scan(
		&c.ID, &c.UserID, &c.BookID, &c.Username, &c.Email, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) MarkNotified(ctx context.Context, tx *sql.Tx, reservationID int64) error {
	const q = `
		UPDATE reservations
		SET notified = TRUE
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, reservationID)
	return err
}
