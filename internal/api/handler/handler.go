package handler

import (
	"confusense/backend/internal/config"
	"confusense/backend/internal/meetinghub"
	"confusense/backend/internal/storage"
)

// Handler holds what the HTTP endpoints read from: the live relay state and
// the persistence gateway.
type Handler struct {
	Lifecycle *meetinghub.Lifecycle
	Storage   storage.Storage
	Config    *config.Config
}

func NewHandler(lifecycle *meetinghub.Lifecycle, s storage.Storage, cfg *config.Config) *Handler {
	return &Handler{Lifecycle: lifecycle, Storage: s, Config: cfg}
}

func (h *Handler) registry() *meetinghub.Registry {
	return h.Lifecycle.Router().Registry()
}
