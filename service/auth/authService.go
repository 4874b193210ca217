package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DharaPatel007/NexusLibrary/model"
	profilerepo "github.com/DharaPatel007/NexusLibrary/repository/profile"
	userrepo "github.com/DharaPatel007/NexusLibrary/repository/user"
	"github.com/DharaPatel007/NexusLibrary/util/hash"
	jwtutil "github.com/DharaPatel007/NexusLibrary/util/jwt"
)

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
	ErrBadInput      = errors.New("bad input")
	ErrInvalidCreds  = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	pr     profilerepo.Repo
	secret string
}

func New(ur userrepo.Repo, pr profilerepo.Repo, secret string) Service {
	return &service{ur: ur, pr: pr, secret: secret}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || len(req.Password) < 6 {
		return nil, "", ErrBadInput
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	// Invalid role choices fall back to Student, like the signup form.
	role := model.ParseRole(req.UserType)
	if role == model.RoleUnknown {
		role = model.RoleStudent
	}
	if err := s.pr.Create(ctx, u.ID, role); err != nil {
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return ErrEmailTaken
		}
		if strings.Contains(cn, "users_username") || strings.Contains(msg, "username") {
			return ErrUsernameTaken
		}
		return ErrBadInput
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.ur.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}

	role, err := s.pr.RoleOf(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
