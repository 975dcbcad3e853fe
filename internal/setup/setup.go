package setup

import (
	"github.com/sportlink-dev/sportlink/internal/config"
	"github.com/sportlink-dev/sportlink/internal/email"
	"github.com/sportlink-dev/sportlink/internal/handler"
	"github.com/sportlink-dev/sportlink/internal/jwt"
	"github.com/sportlink-dev/sportlink/internal/logger"
	"github.com/sportlink-dev/sportlink/internal/ratelimiter"
	"github.com/sportlink-dev/sportlink/internal/service"
	"github.com/sportlink-dev/sportlink/internal/storage/pg"
)

// Dependencies holds all initialized collaborators.
type Dependencies struct {
	Config   *config.Config
	Storage  *pg.Storage
	Handler  *handler.Handler
	Jwt      jwt.JwtService
	Counters *ratelimiter.MemoryStore
}

// SetupDependencies initializes everything the application needs.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	notifier := email.New(&cfg.Private.Email, cfg.Public.AppBaseURL)
	jwtService := jwt.New(cfg.JwtKey(), cfg.SessionTTL())

	accounts := service.NewAccounts(storage, notifier, jwtService, cfg)

	h := handler.New(accounts, cfg)

	return &Dependencies{
		Config:   cfg,
		Storage:  storage,
		Handler:  h,
		Jwt:      jwtService,
		Counters: ratelimiter.NewMemoryStore(),
	}, nil
}

// Cleanup releases resources held by the dependencies.
func (d *Dependencies) Cleanup() {
	if d.Counters != nil {
		d.Counters.Stop()
	}
	if d.Storage != nil {
		if err := d.Storage.Cleanup(); err != nil {
			logger.Log.Warn("failed to close storage", "error", err)
		}
	}
}
