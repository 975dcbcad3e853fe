package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sportlink-dev/sportlink/internal/middleware"
	"github.com/sportlink-dev/sportlink/internal/middleware/metrics"
	"github.com/sportlink-dev/sportlink/internal/ratelimiter"
	"github.com/sportlink-dev/sportlink/internal/setup"
)

// New wires the HTTP surface. Admission control sits in front of every
// lifecycle endpoint: register/login/verify count per client IP, resend
// counts per target email so abuse of one victim cannot be spread across IPs.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders(deps.Config.Public.SecureCookies))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.Config.Public.AppBaseURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Get("/health", deps.Handler.Health)
	r.Method("GET", "/metrics", promhttp.Handler())

	limits := deps.Config.Public.RateLimits
	store := deps.Counters
	registerLimit := ratelimiter.New(store, "register", limits.Register.Limit, limits.Register.Window())
	loginLimit := ratelimiter.New(store, "login", limits.Login.Limit, limits.Login.Window())
	verifyLimit := ratelimiter.New(store, "verify", limits.Verify.Limit, limits.Verify.Window())
	resendLimit := ratelimiter.New(store, "resend", limits.Resend.Limit, limits.Resend.Window())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(registerLimit, middleware.GetIP)).
				Post("/register", deps.Handler.Register)
			r.With(middleware.RateLimit(loginLimit, middleware.GetIP)).
				Post("/login", deps.Handler.Login)
			r.With(middleware.RateLimit(verifyLimit, middleware.GetIP)).
				Post("/verify-email", deps.Handler.VerifyEmail)
			r.With(middleware.RateLimit(resendLimit, middleware.GetEmailFromBody)).
				Post("/resend-verification", deps.Handler.ResendVerification)
			r.Post("/forgot-password", deps.Handler.ForgotPassword)
			r.Post("/reset-password", deps.Handler.ResetPassword)
			r.Post("/logout", deps.Handler.Logout)
		})

		r.With(middleware.NeedAuth(deps.Jwt)).Get("/me", deps.Handler.Me)
	})

	return r
}
