package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/theshibabasement/neuroflow/internal/data/repos"
	"github.com/theshibabasement/neuroflow/internal/http/response"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	"github.com/theshibabasement/neuroflow/internal/services"
)

type ChatHandler struct {
	chat    services.ChatService
	history repos.ChatHistoryRepo
}

func NewChatHandler(chat services.ChatService, history repos.ChatHistoryRepo) *ChatHandler {
	return &ChatHandler{chat: chat, history: history}
}

// POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, 400, "invalid_request", err)
		return
	}
	result, err := h.chat.Ask(c.Request.Context(), req)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// GET /api/v1/sessions/:id/history?limit=50
func (h *ChatHandler) SessionHistory(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("id"))
	limit := 50
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.history.ListBySession(dbc, sessionID, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": sessionID, "history": rows})
}
