package authsvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/DharaPatel007/NexusLibrary/model"
	"github.com/DharaPatel007/NexusLibrary/util/hash"
	jwtutil "github.com/DharaPatel007/NexusLibrary/util/jwt"
)

const testSecret = "test-secret"

type fakeUsers struct {
	users     map[string]*model.User // keyed by email
	nextID    int64
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*model.User{}}
}

func (f *fakeUsers) Create(ctx context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[u.Email]; ok {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_uniq"}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUsers) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeProfiles struct {
	roles map[int64]model.Role
}

func (f *fakeProfiles) RoleOf(ctx context.Context, userID int64) (model.Role, error) {
	if r, ok := f.roles[userID]; ok {
		return r, nil
	}
	return model.RoleUnknown, nil
}
func (f *fakeProfiles) RoleOfTx(ctx context.Context, tx *sql.Tx, userID int64) (model.Role, error) {
	return f.RoleOf(ctx, userID)
}
func (f *fakeProfiles) Create(ctx context.Context, userID int64, role model.Role) error {
	f.roles[userID] = role
	return nil
}
func (f *fakeProfiles) CreateTx(ctx context.Context, tx *sql.Tx, userID int64, role model.Role) error {
	return f.Create(ctx, userID, role)
}

func newTestService() (Service, *fakeUsers, *fakeProfiles) {
	ur := newFakeUsers()
	pr := &fakeProfiles{roles: map[int64]model.Role{}}
	return New(ur, pr, testSecret), ur, pr
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, ur, pr := newTestService()

	u, token, err := svc.Register(ctx, model.RegisterReq{
		Username: " dhara ",
		Email:    "Dhara@Example.COM",
		Password: "hunter22",
		UserType: "Researcher",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "dhara@example.com", u.Email, "email is normalized")
	require.Equal(t, "dhara", u.Username)
	require.Equal(t, model.RoleResearcher, pr.roles[u.ID])

	claims, err := jwtutil.ParseAuth(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, float64(u.ID), claims["sub"])
	require.Equal(t, "Researcher", claims["role"])

	stored, err := ur.ByEmail(ctx, "dhara@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", stored.PasswordHash, "password is hashed")
}

func TestRegister_BadInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	cases := []model.RegisterReq{
		{Username: "x", Email: "", Password: "hunter22"},
		{Username: "", Email: "x@example.com", Password: "hunter22"},
		{Username: "x", Email: "x@example.com", Password: "short"},
	}
	for _, req := range cases {
		_, _, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, ErrBadInput)
	}
}

func TestRegister_InvalidRoleFallsBackToStudent(t *testing.T) {
	ctx := context.Background()
	svc, _, pr := newTestService()

	u, _, err := svc.Register(ctx, model.RegisterReq{
		Username: "x", Email: "x@example.com", Password: "hunter22", UserType: "Wizard",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleStudent, pr.roles[u.ID])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	req := model.RegisterReq{Username: "x", Email: "x@example.com", Password: "hunter22"}
	_, _, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Username = "y"
	_, _, err = svc.Register(ctx, req)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, ur, _ := newTestService()

	ur.createErr = &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_uniq"}
	_, _, err := svc.Register(ctx, model.RegisterReq{
		Username: "taken", Email: "new@example.com", Password: "hunter22",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, ur, pr := newTestService()

	hashed, err := hash.HashPassword("hunter22")
	require.NoError(t, err)
	ur.users["x@example.com"] = &model.User{ID: 1, Username: "x", Email: "x@example.com", PasswordHash: hashed}
	pr.roles[1] = model.RoleFaculty

	u, token, err := svc.Login(ctx, model.LoginReq{Email: "x@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)

	claims, err := jwtutil.ParseAuth(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "Faculty", claims["role"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, ur, _ := newTestService()

	hashed, _ := hash.HashPassword("hunter22")
	ur.users["x@example.com"] = &model.User{ID: 1, Email: "x@example.com", PasswordHash: hashed}

	_, _, err := svc.Login(ctx, model.LoginReq{Email: "nobody@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrInvalidCreds)

	_, _, err = svc.Login(ctx, model.LoginReq{Email: "x@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
