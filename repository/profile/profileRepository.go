package profilerepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DharaPatel007/NexusLibrary/model"
)

// One profile row per user; user_profiles.user_id carries a UNIQUE
// constraint so a user can never hold two roles at once.
type Repo interface {
	RoleOf(ctx context.Context, userID int64) (model.Role, error)
	RoleOfTx(ctx context.Context, tx *sql.Tx, userID int64) (model.Role, error)
	Create(ctx context.Context, userID int64, role model.Role) error
	CreateTx(ctx context.Context, tx *sql.Tx, userID int64, role model.Role) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func roleOf(ctx context.Context, q querier, userID int64) (model.Role, error) {
	const query = `
		SELECT role
		FROM user_profiles
		WHERE user_id = $1`
	var role string
	err := q.QueryRowContext(ctx, query, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoleUnknown, nil
	}
	if err != nil {
		return model.RoleUnknown, err
	}
	return model.ParseRole(role), nil
}

func create(ctx context.Context, q querier, userID int64, role model.Role) error {
	const query = `
		INSERT INTO user_profiles (user_id, role)
		VALUES ($1, $2)`
	_, err := q.ExecContext(ctx, query, userID, string(role))
	return err
}

func (r *repo) RoleOf(ctx context.Context, userID int64) (model.Role, error) {
	return roleOf(ctx, r.db, userID)
}

func (r *repo) RoleOfTx(ctx context.Context, tx *sql.Tx, userID int64) (model.Role, error) {
	return roleOf(ctx, tx, userID)
}

func (r *repo) Create(ctx context.Context, userID int64, role model.Role) error {
	return create(ctx, r.db, userID, role)
}

func (r *repo) CreateTx(ctx context.Context, tx *sql.Tx, userID int64, role model.Role) error {
	return create(ctx, tx, userID, role)
}
