package handler

import (
	"net/http"

	"github.com/sportlink-dev/sportlink/internal/config"
	"github.com/sportlink-dev/sportlink/internal/service"
	"github.com/sportlink-dev/sportlink/internal/utils"
)

type Handler struct {
	accounts service.AccountService
	cfg      *config.Config
}

func New(accounts service.AccountService, cfg *config.Config) *Handler {
	return &Handler{accounts: accounts, cfg: cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "ok"})
}
