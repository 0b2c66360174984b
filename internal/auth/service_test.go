package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sugarmaple/bakehouse-backend/internal/users"
	pkgauth "github.com/sugarmaple/bakehouse-backend/pkg/auth"
	"github.com/sugarmaple/bakehouse-backend/pkg/config"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "bakehouse-test",
		ExpirationMinutes: 60,
	}
	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	return jwtCfg, passwordCfg
}

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	jwtCfg, passwordCfg := testConfigs()
	svc, err := NewService(users.NewRepository(db), jwtCfg, passwordCfg)
	require.NoError(t, err)
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{
		Email:     "Ada@Example.com",
		Password:  "correct horse battery",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", session.Email)
	require.Equal(t, enums.UserRoleCustomer, session.Role)

	jwtCfg, _ := testConfigs()
	claims, err := pkgauth.ParseAccessToken(jwtCfg, session.Token)
	require.NoError(t, err)
	require.Equal(t, session.UserID, claims.UserID)
	require.False(t, claims.IsAdmin())

	login, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "correct horse battery"})
	require.NoError(t, err)
	require.Equal(t, session.UserID, login.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	req := RegisterRequest{
		Email:     "ada@example.com",
		Password:  "correct horse battery",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email:     "ada@example.com",
		Password:  "correct horse battery",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong password!!"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever password"})
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestRegisterWeakPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "ada@example.com",
		Password:  "short",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
