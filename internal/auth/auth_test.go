package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"webgenie/internal/model"
	"webgenie/internal/repository/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), store.Users(), "test-secret", time.Hour)
	s.cost = bcrypt.MinCost
	return s
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	resp, err := s.Signup(ctx, model.SignupRequest{Email: " Ada@Example.com ", Password: "correct horse", Name: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEqual(t, "correct horse", resp.User.PasswordHash)

	claims, err := s.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	login, err := s.Login(ctx, model.LoginRequest{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = s.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Signup(ctx, model.SignupRequest{Email: "ada@example.com", Password: "another password"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignup_Validation(t *testing.T) {
	s := newTestService(t)

	testCases := []struct {
		name string
		req  model.SignupRequest
	}{
		{name: "Bad Email", req: model.SignupRequest{Email: "not-an-email", Password: "long enough"}},
		{name: "Short Password", req: model.SignupRequest{Email: "a@example.com", Password: "short"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Signup(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidSignup)
		})
	}
}

func TestValidateToken(t *testing.T) {
	s := newTestService(t)
	user := &model.User{ID: "user-1", Email: "u@example.com"}

	t.Run("Expired", func(t *testing.T) {
		token, err := s.IssueToken(user)
		require.NoError(t, err)

		s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { s.now = time.Now }()

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other := *s
		other.secret = []byte("other-secret")
		token, err := other.IssueToken(user)
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Unsigned", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &model.UserClaims{UserID: "user-1"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
