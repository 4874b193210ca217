package catalogrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/DharaPatel007/NexusLibrary/model"
)

// Each item kind lives in its own table; ids are serial per table, so a
// reference is always (kind, id).
var tables = map[model.ItemKind]string{
	model.KindEBook:         "ebooks",
	model.KindPrintedBook:   "printed_books",
	model.KindResearchPaper: "research_papers",
	model.KindAudiobook:     "audiobooks",
}

type Repo interface {
	// Resolve maps a (kind, id) reference to the catalog row.
	// Returns sql.ErrNoRows when the item does not exist.
	Resolve(ctx context.Context, ref model.ItemRef) (*model.Item, error)
	CreateItem(ctx context.Context, it *model.Item) (int64, error)

	// Printed-book stock. TryDecrementCopies is a guarded
	// compare-and-decrement: it only succeeds while copies > 0.
	TryDecrementCopies(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	IncrementCopies(ctx context.Context, tx *sql.Tx, bookID int64) error
	LockPrintedBook(ctx context.Context, tx *sql.Tx, bookID int64) (int, error)
	CopiesAvailable(ctx context.Context, bookID int64) (int, error)

	// Browsing queries.
	BookGenres(ctx context.Context) ([]string, error)
	ByGenre(ctx context.Context, kind model.ItemKind, genre string) ([]model.Item, error)
	ByGenres(ctx context.Context, kind model.ItemKind, genres []string, limit int) ([]model.Item, error)
	Papers(ctx context.Context, limit int) ([]model.Item, error)
	Search(ctx context.Context, kind model.ItemKind, mode, q string) ([]model.Item, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func selectCols(kind model.ItemKind) string {
	common := "id, title, author, genre, publication_date"
	switch kind {
	case model.KindEBook:
		return common + ", file_url, file_size_mb"
	case model.KindPrintedBook:
		return common + ", isbn, copies_available"
	case model.KindResearchPaper:
		return common + ", doi, access_level"
	case model.KindAudiobook:
		return common + ", duration_seconds, narrator"
	}
	return common
}

func scanItem(kind model.ItemKind, row interface{ Scan(...any) error }) (*model.Item, error) {
	it := &model.Item{Kind: kind}
	var err error
	switch kind {
	case model.KindEBook:
		err = row.Scan(&it.ID, &it.Title, &it.Author, &it.Genre, &it.PublicationDate, &it.FileURL, &it.FileSizeMB)
	case model.KindPrintedBook:
		err = row.Scan(&it.ID, &it.Title, &it.Author, &it.Genre, &it.PublicationDate, &it.ISBN, &it.CopiesAvailable)
	case model.KindResearchPaper:
		err = row.Scan(&it.ID, &it.Title, &it.Author, &it.Genre, &it.PublicationDate, &it.DOI, &it.AccessLevel)
	case model.KindAudiobook:
		err = row.Scan(&it.ID, &it.Title, &it.Author, &it.Genre, &it.PublicationDate, &it.DurationSeconds, &it.Narrator)
	default:
		err = fmt.Errorf("unknown item kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *repo) Resolve(ctx context.Context, ref model.ItemRef) (*model.Item, error) {
	table, ok := tables[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown item kind %q", ref.Kind)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectCols(ref.Kind), table)
	return scanItem(ref.Kind, r.db.QueryRowContext(ctx, q, ref.ID))
}

func (r *repo) CreateItem(ctx context.Context, it *model.Item) (int64, error) {
	var q string
	var args []any
	switch it.Kind {
	case model.KindEBook:
		q = `INSERT INTO ebooks (title, author, genre, publication_date, file_url, file_size_mb)
			VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
		args = []any{it.Title, it.Author, it.Genre, it.PublicationDate, it.FileURL, it.FileSizeMB}
	case model.KindPrintedBook:
		q = `INSERT INTO printed_books (title, author, genre, publication_date, isbn, copies_available)
			VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
		args = []any{it.Title, it.Author, it.Genre, it.PublicationDate, it.ISBN, it.CopiesAvailable}
	case model.KindResearchPaper:
		q = `INSERT INTO research_papers (title, author, genre, publication_date, doi, access_level)
			VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
		args = []any{it.Title, it.Author, it.Genre, it.PublicationDate, it.DOI, it.AccessLevel}
	case model.KindAudiobook:
		q = `INSERT INTO audiobooks (title, author, genre, publication_date, duration_seconds, narrator)
			VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
		args = []any{it.Title, it.Author, it.Genre, it.PublicationDate, it.DurationSeconds, it.Narrator}
	default:
		return 0, fmt.Errorf("unknown item kind %q", it.Kind)
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Stock

func (r *repo) TryDecrementCopies(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	// Guard: never decrement below zero.
	const q = `
		UPDATE printed_books
		SET copies_available = copies_available - 1
		WHERE id = $1
		AND copies_available > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) IncrementCopies(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
		UPDATE printed_books
		SET copies_available = copies_available + 1
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

func (r *repo) LockPrintedBook(ctx context.Context, tx *sql.Tx, bookID int64) (int, error) {
	const q = `
		SELECT copies_available
		FROM printed_books
		WHERE id = $1
		FOR UPDATE`
	var copies int
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&copies)
	return copies, err
}

func (r *repo) CopiesAvailable(ctx context.Context, bookID int64) (int, error) {
	const q = `
		SELECT copies_available
		FROM printed_books
		WHERE id = $1`
	var copies int
	err := r.db.QueryRowContext(ctx, q, bookID).Scan(&copies)
	return copies, err
}

// Browsing

func (r *repo) BookGenres(ctx context.Context) ([]string, error) {
	const q = `
		SELECT DISTINCT genre FROM ebooks
		UNION
		SELECT DISTINCT genre FROM printed_books
		UNION
		SELECT DISTINCT genre FROM audiobooks
		ORDER BY genre`
	rows, err := r.db.QueryContext(ctx, q)
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

func (r *repo) queryItems(ctx context.Context, kind model.ItemKind, where string, limit int, args ...any) ([]model.Item, error) {
	q := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY id", selectCols(kind), tables[kind], where)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		it, err := scanItem(kind, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *repo) ByGenre(ctx context.Context, kind model.ItemKind, genre string) ([]model.Item, error) {
	return r.queryItems(ctx, kind, "WHERE lower(genre) = lower($1)", 0, genre)
}

func (r *repo) ByGenres(ctx context.Context, kind model.ItemKind, genres []string, limit int) ([]model.Item, error) {
	if len(genres) == 0 {
		return nil, nil
	}
	ph := make([]string, len(genres))
	args := make([]any, len(genres))
	for i, g := range genres {
		ph[i] = fmt.Sprintf("lower($%d)", i+1)
		args[i] = g
	}
	where := fmt.Sprintf("WHERE lower(genre) IN (%s)", strings.Join(ph, ","))
	return r.queryItems(ctx, kind, where, limit, args...)
}

func (r *repo) Papers(ctx context.Context, limit int) ([]model.Item, error) {
	return r.queryItems(ctx, model.KindResearchPaper, "", limit)
}

func (r *repo) Search(ctx context.Context, kind model.ItemKind, mode, q string) ([]model.Item, error) {
	pat := "%" + q + "%"
	switch mode {
	case "genre":
		return r.queryItems(ctx, kind, "WHERE genre ILIKE $1", 0, pat)
	case "author":
		return r.queryItems(ctx, kind, "WHERE author ILIKE $1", 0, pat)
	default: // keyword
		return r.queryItems(ctx, kind, "WHERE title ILIKE $1 OR author ILIKE $1 OR genre ILIKE $1", 0, pat)
	}
}
