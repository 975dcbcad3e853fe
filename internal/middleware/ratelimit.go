package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sportlink-dev/sportlink/internal/ratelimiter"
	"github.com/sportlink-dev/sportlink/internal/utils"

	internal_errors "github.com/sportlink-dev/sportlink/internal/errors"
)

// RateLimit admits a request only if the limiter allows it for the identity
// extracted by getIdentity. Denials carry Retry-After guidance.
func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			allowed, retryAfter := rl.Allow(identity)
			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
				utils.WriteErrorAndStatusCode(w, internal_errors.New(
					fmt.Sprintf("Too many requests, try again in %s", formatRetry(retryAfter)),
					http.StatusTooManyRequests,
					internal_errors.CodeRateLimited,
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func formatRetry(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%d minutes", int(math.Ceil(d.Minutes())))
	}
	return fmt.Sprintf("%d seconds", int(math.Ceil(d.Seconds())))
}

// GetIP extracts the real client IP from RemoteAddr
// Does NOT trust X-Real-IP or X-Forwarded-For headers (no reverse proxy)
func GetIP(r *http.Request) (string, error) {
	// Only trust RemoteAddr - can't be spoofed (comes from TCP connection)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Fallback: if RemoteAddr doesn't have port, use it directly
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}

// GetEmailFromBody extracts the email field from a JSON request body and
// restores the body so the handler can read it again. Falls back to the
// client IP when the body has no email: abuse of email-keyed endpoints is
// per-victim, but a missing key should still be counted against someone.
func GetEmailFromBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", errors.New("failed to read request body")
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &data); err == nil && data.Email != "" {
		return "email_" + data.Email, nil
	}

	return GetIP(r)
}
