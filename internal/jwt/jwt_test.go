package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sportlink-dev/sportlink/internal/domain"
	internal_errors "github.com/sportlink-dev/sportlink/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account() domain.Account {
	return domain.Account{
		Id:            7,
		Email:         "player@example.com",
		EmailVerified: true,
		Admin:         false,
	}
}

func TestRoundTrip(t *testing.T) {
	j := New("secret", time.Hour)

	token, err := j.NewToken(account())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := j.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.AccountId)
	assert.Equal(t, "player@example.com", session.Email)
	assert.True(t, session.Verified)
	assert.False(t, session.Admin)
}

func TestDecodeToken(t *testing.T) {
	assertUnauthorized := func(t *testing.T, err error) {
		t.Helper()
		var e *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 401, e.StatusCode)
		assert.Equal(t, "Unauthorized", e.Message)
	}

	t.Run("expired token", func(t *testing.T) {
		j := New("secret", -time.Minute)
		token, err := j.NewToken(account())
		require.NoError(t, err)

		_, err = j.DecodeToken(token)
		assertUnauthorized(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := New("secret", time.Hour).NewToken(account())
		require.NoError(t, err)

		_, err = New("other-secret", time.Hour).DecodeToken(token)
		assertUnauthorized(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := New("secret", time.Hour).DecodeToken("not-a-jwt")
		assertUnauthorized(t, err)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": float64(7)})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = New("secret", time.Hour).DecodeToken(token)
		assertUnauthorized(t, err)
	})

	t.Run("missing identity claim", func(t *testing.T) {
		claims := jwt.MapClaims{"email": "player@example.com", "exp": time.Now().Add(time.Hour).Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = New("secret", time.Hour).DecodeToken(token)
		assertUnauthorized(t, err)
	})
}
