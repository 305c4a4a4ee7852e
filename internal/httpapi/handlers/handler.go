package handlers

import (
	"github.com/brainfish/brainfish-chat/internal/chat"
	"github.com/brainfish/brainfish-chat/internal/config"
)

type Handler struct {
	Cfg     config.Config
	ChatSvc *chat.Service
}

func NewHandler(cfg config.Config, svc *chat.Service) *Handler {
	return &Handler{Cfg: cfg, ChatSvc: svc}
}
