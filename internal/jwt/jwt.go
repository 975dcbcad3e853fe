package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sportlink-dev/sportlink/internal/domain"
	internal_errors "github.com/sportlink-dev/sportlink/internal/errors"
	"github.com/sportlink-dev/sportlink/internal/logger"
)

// Session is the decoded identity carried by a valid credential.
type Session struct {
	AccountId domain.AccountId
	Email     domain.Email
	Verified  bool
	Admin     bool
}

type JwtService interface {
	NewToken(account domain.Account) (string, error)
	DecodeToken(jwtStr string) (*Session, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey, ttl}
}

func (j *Jwt) NewToken(account domain.Account) (string, error) {
	claims := jwt.MapClaims{}
	claims["uid"] = account.Id
	claims["email"] = account.Email
	claims["verified"] = account.EmailVerified
	claims["admin"] = account.Admin
	claims["exp"] = time.Now().Add(j.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign session token", "error", err)
		return "", errors.New("can't create token")
	}

	return tokenString, nil
}

// unauthorized is the only error shape callers see; the concrete failure
// reason is logged server-side to keep the outward surface uniform.
func unauthorized() *internal_errors.ErrorWithStatusCode {
	return &internal_errors.ErrorWithStatusCode{Message: "Unauthorized", StatusCode: http.StatusUnauthorized}
}

func (j *Jwt) DecodeToken(jwtStr string) (*Session, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			logger.Log.Info("session token expired")
		case errors.Is(err, jwt.ErrTokenUnverifiable), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			logger.Log.Warn("session token signature invalid", "error", err)
		default:
			logger.Log.Warn("session token rejected", "error", err)
		}
		return nil, unauthorized()
	}
	if !token.Valid {
		logger.Log.Warn("session token invalid")
		return nil, unauthorized()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		logger.Log.Warn("session token has unexpected claims type")
		return nil, unauthorized()
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		logger.Log.Warn("session token missing identity claim")
		return nil, unauthorized()
	}
	email, _ := claims["email"].(string)
	verified, _ := claims["verified"].(bool)
	admin, _ := claims["admin"].(bool)

	return &Session{
		AccountId: int64(uid),
		Email:     email,
		Verified:  verified,
		Admin:     admin,
	}, nil
}
