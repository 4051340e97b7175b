package handler

import (
	"go.uber.org/zap"

	"popin/backend/internal/chathub"
	"popin/backend/internal/proximity"
	"popin/backend/internal/storage"
)

// Handler carries the collaborators shared by all HTTP endpoints.
type Handler struct {
	Hub       *chathub.Hub
	Watcher   *proximity.Watcher
	Storage   storage.Storage
	JWTSecret []byte

	log *zap.Logger
}

func NewHandler(hub *chathub.Hub, watcher *proximity.Watcher, store storage.Storage, jwtSecret string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Hub:       hub,
		Watcher:   watcher,
		Storage:   store,
		JWTSecret: []byte(jwtSecret),
		log:       log,
	}
}
