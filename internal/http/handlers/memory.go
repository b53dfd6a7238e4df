package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/theshibabasement/neuroflow/internal/http/response"
	"github.com/theshibabasement/neuroflow/internal/services"
)

type MemoryHandler struct {
	mem services.MemoryService
}

func NewMemoryHandler(mem services.MemoryService) *MemoryHandler {
	return &MemoryHandler{mem: mem}
}

// GET /api/v1/memory/:scope_type/:scope_id/context?query=...&limit=5
func (h *MemoryHandler) GetContext(c *gin.Context) {
	scopeType := c.Param("scope_type")
	scopeID := c.Param("scope_id")
	query := strings.TrimSpace(c.Query("query"))

	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	text, err := h.mem.GetContext(c.Request.Context(), scopeType, scopeID, query, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"scope_type": scopeType,
		"scope_id":   scopeID,
		"context":    text,
		"found":      text != "",
	})
}

type addMemoryReq struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Context  string `json:"context"`
}

// POST /api/v1/memory/:scope_type/:scope_id
func (h *MemoryHandler) AddMemory(c *gin.Context) {
	var req addMemoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, 400, "invalid_request", err)
		return
	}
	err := h.mem.AddMemory(c.Request.Context(), c.Param("scope_type"), c.Param("scope_id"), req.Question, req.Answer, req.Context)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stored": true})
}

// DELETE /api/v1/memory/:scope_type/:scope_id
//
// Deletes memory records only. Derived entities and relationships stay; the
// clear is partial by design of the data model.
func (h *MemoryHandler) ClearScope(c *gin.Context) {
	deleted, err := h.mem.ClearScope(c.Request.Context(), c.Param("scope_type"), c.Param("scope_id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cleared": true, "deleted_records": deleted})
}

// GET /api/v1/memory/:scope_type/:scope_id/graph?limit=100
func (h *MemoryHandler) KnowledgeGraph(c *gin.Context) {
	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	snapshot, err := h.mem.KnowledgeGraph(c.Request.Context(), c.Param("scope_type"), c.Param("scope_id"), limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"entities":      snapshot.Entities,
		"relationships": snapshot.Relationships,
	})
}

// GET /api/v1/memory/:scope_type/:scope_id/stats
func (h *MemoryHandler) Stats(c *gin.Context) {
	stats, err := h.mem.Stats(c.Request.Context(), c.Param("scope_type"), c.Param("scope_id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"memories":      stats.Memories,
		"entities":      stats.Entities,
		"relationships": stats.Relationships,
	})
}
