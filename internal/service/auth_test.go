package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
)

func registerRequest(name string) RegisterRequest {
	return RegisterRequest{
		Email:     name + "@example.com",
		Username:  name,
		FirstName: "Test",
		LastName:  "User",
		Password:  "correct-horse",
	}
}

func TestAuthService_RegisterLoginVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, registerRequest("anna"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "ANNA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID, resp.User.ID)

	verified, claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_Register_LowercasesEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := registerRequest("julia")
	req.Email = "  Julia@Example.COM "
	user, err := env.auth.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "julia@example.com", user.Email)

	stored, err := env.store.GetUserByEmail(ctx, "julia@example.com")
	require.NoError(t, err)
	assert.Equal(t, "julia@example.com", stored.Email)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := registerRequest("me")
	_, err := env.auth.Register(ctx, req)
	assert.Contains(t, fieldErrors(t, err)["username"], "reserved")

	req = registerRequest("Me")
	_, err = env.auth.Register(ctx, req)
	assert.Contains(t, fieldErrors(t, err), "username")

	req = registerRequest("bad name")
	req.Password = "short"
	fields := fieldErrors(t, func() error { _, err := env.auth.Register(ctx, req); return err }())
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, registerRequest("anna"))
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, registerRequest("anna"))
	requireCode(t, err, domainerrors.CodeConflict)

	other := registerRequest("other")
	other.Email = "anna@example.com"
	_, err = env.auth.Register(ctx, other)
	requireCode(t, err, domainerrors.CodeConflict)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, registerRequest("anna"))
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "wrong-password"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, registerRequest("anna"))
	require.NoError(t, err)
	resp, err := env.auth.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, claims.SessionID))
	require.NoError(t, env.auth.Logout(ctx, claims.SessionID))

	_, _, err = env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	requireCode(t, err, domainerrors.CodeUnauthorized)

	_, _, err = env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	requireCode(t, err, domainerrors.CodeUnauthorized)
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, registerRequest("anna"))
	require.NoError(t, err)
	actor := domain.ActorFor(user)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	err = env.auth.ChangePassword(ctx, actor, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "battery-staple"})
	assert.Equal(t, "is incorrect", fieldErrors(t, err)["current_password"])

	require.NoError(t, env.auth.ChangePassword(ctx, actor, ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	}))

	// Existing sessions are revoked.
	_, _, err = env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	requireCode(t, err, domainerrors.CodeUnauthorized)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "correct-horse"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "battery-staple"})
	require.NoError(t, err)

	err = env.auth.ChangePassword(ctx, domain.Anonymous(), ChangePasswordRequest{CurrentPassword: "x", NewPassword: "longenough"})
	requireCode(t, err, domainerrors.CodeUnauthorized)
}
