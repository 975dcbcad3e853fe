package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sportlink-dev/sportlink/internal/domain"
	internal_errors "github.com/sportlink-dev/sportlink/internal/errors"
	"github.com/sportlink-dev/sportlink/internal/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockJwtService struct {
	NewTokenFunc    func(account domain.Account) (string, error)
	DecodeTokenFunc func(jwtStr string) (*jwt.Session, error)
}

func (m *MockJwtService) NewToken(account domain.Account) (string, error) {
	if m.NewTokenFunc != nil {
		return m.NewTokenFunc(account)
	}
	return "token", nil
}

func (m *MockJwtService) DecodeToken(jwtStr string) (*jwt.Session, error) {
	if m.DecodeTokenFunc != nil {
		return m.DecodeTokenFunc(jwtStr)
	}
	return &jwt.Session{AccountId: 1, Email: "player@example.com", Verified: true}, nil
}

func TestAuth(t *testing.T) {
	protected := func(jwtService jwt.JwtService, adminOnly bool, captured **jwt.Session) http.Handler {
		return Auth(jwtService, adminOnly)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*captured = GetSessionFromContext(r)
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("no cookie", func(t *testing.T) {
		var session *jwt.Session
		handler := protected(&MockJwtService{}, false, &session)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, session)
	})

	t.Run("invalid token", func(t *testing.T) {
		var session *jwt.Session
		jwtService := &MockJwtService{
			DecodeTokenFunc: func(jwtStr string) (*jwt.Session, error) {
				return nil, &internal_errors.ErrorWithStatusCode{Message: "Unauthorized", StatusCode: http.StatusUnauthorized}
			},
		}
		handler := protected(jwtService, false, &session)

		req := httptest.NewRequest("GET", "/v1/me", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "stale"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, session)
	})

	t.Run("valid cookie reaches the handler with a session", func(t *testing.T) {
		var session *jwt.Session
		jwtService := &MockJwtService{
			DecodeTokenFunc: func(jwtStr string) (*jwt.Session, error) {
				assert.Equal(t, "good", jwtStr)
				return &jwt.Session{AccountId: 42, Email: "player@example.com", Verified: true}, nil
			},
		}
		handler := protected(jwtService, false, &session)

		req := httptest.NewRequest("GET", "/v1/me", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "good"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, session)
		assert.Equal(t, int64(42), session.AccountId)
	})

	t.Run("admin gate", func(t *testing.T) {
		var session *jwt.Session
		jwtService := &MockJwtService{
			DecodeTokenFunc: func(jwtStr string) (*jwt.Session, error) {
				return &jwt.Session{AccountId: 1, Admin: jwtStr == "admin"}, nil
			},
		}
		handler := protected(jwtService, true, &session)

		req := httptest.NewRequest("GET", "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "plain"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req = httptest.NewRequest("GET", "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "admin"})
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, session)
		assert.True(t, session.Admin)
	})
}

func TestGetSessionFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, GetSessionFromContext(req))
}
