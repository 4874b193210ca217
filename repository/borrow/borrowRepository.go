package borrowrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/DharaPatel007/NexusLibrary/model"
)

type HistoryRow struct {
	BorrowID   int64      `json:"borrow_id"`
	ItemKind   string     `json:"item_kind"`
	ItemID     int64      `json:"item_id"`
	Title      string     `json:"title"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Fine       float64    `json:"fine"`
}

type ItemCount struct {
	Kind  model.ItemKind
	ID    int64
	Count int64
}

type TitleCount struct {
	Title string `json:"title"`
	Total int64  `json:"total"`
}

type GenreCount struct {
	Genre string `json:"genre"`
	Total int64  `json:"total"`
}

type Repo interface {
	// Ledger, transactional.
	OpenCount(ctx context.Context, tx *sql.Tx, userID int64) (int, error)
	HasOpen(ctx context.Context, tx *sql.Tx, userID int64, ref model.ItemRef) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, b *model.Borrowing) error
	FindOpenForUpdate(ctx context.Context, tx *sql.Tx, userID int64, ref model.ItemRef) (*model.Borrowing, error)
	Close(ctx context.Context, tx *sql.Tx, borrowID int64, returnDate time.Time, fine float64) error

	// History & analytics, read-only.
	ListMyBorrowings(ctx context.Context, userID int64) ([]HistoryRow, error)
	BorrowedItemIDs(ctx context.Context, userID int64, kind model.ItemKind) (map[int64]bool, error)
	UserGenres(ctx context.Context, userID int64) ([]string, error)
	TrendingCounts(ctx context.Context, since *time.Time, limit int) ([]ItemCount, error)
	MostBorrowedTitles(ctx context.Context, limit int) ([]TitleCount, error)
	PopularGenres(ctx context.Context, limit int) ([]GenreCount, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// allItems flattens the four catalog tables into (kind, id, title, genre)
// so ledger rows can be joined back to their items.
const allItems = `
	SELECT 'ebook' AS kind, id, title, genre FROM ebooks
	UNION ALL SELECT 'printedbook', id, title, genre FROM printed_books
	UNION ALL SELECT 'researchpaper', id, title, genre FROM research_papers
	UNION ALL SELECT 'audiobook', id, title, genre FROM audiobooks`

func (r *repo) OpenCount(ctx context.Context, tx *sql.Tx, userID int64) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM borrowings
		WHERE user_id = $1
		AND return_date IS NULL`
	var n int
	err := tx.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

func (r *repo) HasOpen(ctx context.Context, tx *sql.Tx, userID int64, ref model.ItemRef) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM borrowings
			WHERE user_id = $1
			AND item_kind = $2
			AND item_id = $3
			AND return_date IS NULL
		)`
	var ok bool
	err := tx.QueryRowContext(ctx, q, userID, string(ref.Kind), ref.ID).Scan(&ok)
	return ok, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, b *model.Borrowing) error {
	const q = `
		INSERT INTO borrowings (user_id, item_kind, item_id, borrow_date, due_date, fine)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id`
	return tx.QueryRowContext(ctx, q, b.UserID, string(b.ItemKind), b.ItemID, b.BorrowDate, b.DueDate).Scan(&b.ID)
}

func (r *repo) FindOpenForUpdate(ctx context.Context, tx *sql.Tx, userID int64, ref model.ItemRef) (*model.Borrowing, error) {
	const q = `
		SELECT id, user_id, item_kind, item_id, borrow_date, due_date, fine
		FROM borrowings
		WHERE user_id = $1
		AND item_kind = $2
		AND item_id = $3
		AND return_date IS NULL
		FOR UPDATE`
	b := &model.Borrowing{}
	var kind string
	err := tx.QueryRowContext(ctx, q, userID, string(ref.Kind), ref.ID).Scan(
		&b.ID, &b.UserID, &kind, &b.ItemID, &b.BorrowDate, &b.DueDate, &b.Fine,
	)
	if err != nil {
		return nil, err
	}
	b.ItemKind = model.ItemKind(kind)
	return b, nil
}

func (r *repo) Close(ctx context.Context, tx *sql.Tx, borrowID int64, returnDate time.Time, fine float64) error {
	const q = `
		UPDATE borrowings
		SET return_date = $2,
			fine = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, borrowID, returnDate, fine)
	return err
}

// History & analytics

func (r *repo) ListMyBorrowings(ctx context.Context, userID int64) ([]HistoryRow, error) {
	q := `
		SELECT
			b.id          AS borrow_id,
			b.item_kind   AS item_kind,
			b.item_id     AS item_id,
			COALESCE(t.title, 'Unknown Item') AS title,
			b.borrow_date AS borrow_date,
			b.due_date    AS due_date,
			b.return_date AS return_date,
			b.fine        AS fine
		FROM borrowings b
		LEFT JOIN (` + allItems + `) t
			ON t.kind = b.item_kind AND t.id = b.item_id
		WHERE b.user_id = $1
		ORDER BY b.borrow_date DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.BorrowID, &h.ItemKind, &h.ItemID, &h.Title,
			&h.BorrowDate, &h.DueDate, &h.ReturnDate, &h.Fine,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repo) BorrowedItemIDs(ctx context.Context, userID int64, kind model.ItemKind) (map[int64]bool, error) {
	const q = `
		SELECT DISTINCT item_id
		FROM borrowings
		WHERE user_id = $1
		AND item_kind = $2`
	rows, err := r.db.QueryContext(ctx, q, userID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *repo) UserGenres(ctx context.Context, userID int64) ([]string, error) {
	q := `
		SELECT DISTINCT t.genre
		FROM borrowings b
		JOIN (` + allItems + `) t
			ON t.kind = b.item_kind AND t.id = b.item_id
		WHERE b.user_id = $1`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repo) TrendingCounts(ctx context.Context, since *time.Time, limit int) ([]ItemCount, error) {
	q := `
		SELECT item_kind, item_id, COUNT(*) AS total
		FROM borrowings
		WHERE item_kind IN ('ebook', 'printedbook', 'audiobook')`
	args := []any{}
	if since != nil {
		q += ` AND borrow_date >= $1`
		args = append(args, *since)
	}
	q += `
		GROUP BY item_kind, item_id
		ORDER BY total DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemCount
	for rows.Next() {
		var kind string
		var c ItemCount
		if err := rows.Scan(&kind, &c.ID, &c.Count); err != nil {
			return nil, err
		}
		c.Kind = model.ItemKind(kind)
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

func (r *repo) MostBorrowedTitles(ctx context.Context, limit int) ([]TitleCount, error) {
	q := `
		SELECT t.title, COUNT(*) AS total
		FROM borrowings b
		JOIN (` + allItems + `) t
			ON t.kind = b.item_kind AND t.id = b.item_id
		GROUP BY t.title
		ORDER BY total DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TitleCount
	for rows.Next() {
		var tc TitleCount
		if err := rows.Scan(&tc.Title, &tc.Total); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (r *repo) PopularGenres(ctx context.Context, limit int) ([]GenreCount, error) {
	q := `
		SELECT t.genre, COUNT(*) AS total
		FROM borrowings b
		JOIN (` + allItems + `) t
			ON t.kind = b.item_kind AND t.id = b.item_id
		GROUP BY t.genre
		ORDER BY total DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenreCount
	for rows.Next() {
		var gc GenreCount
		if err := rows.Scan(&gc.Genre, &gc.Total); err != nil {
			return nil, err
		}
		out = append(out, gc)
	}
	return out, rows.Err()
}
