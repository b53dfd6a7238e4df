package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/theshibabasement/neuroflow/internal/data/repos"
	"github.com/theshibabasement/neuroflow/internal/http/response"
	"github.com/theshibabasement/neuroflow/internal/memory"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	"github.com/theshibabasement/neuroflow/internal/services"
)

// AdminHandler manages company records and company-scope memory. All routes
// sit behind the admin key.
type AdminHandler struct {
	companies repos.CompanyRepo
	mem       services.MemoryService
}

func NewAdminHandler(companies repos.CompanyRepo, mem services.MemoryService) *AdminHandler {
	return &AdminHandler{companies: companies, mem: mem}
}

type upsertCompanyReq struct {
	CompanyID string         `json:"company_id" binding:"required"`
	Name      string         `json:"name" binding:"required"`
	Settings  map[string]any `json:"settings"`
}

// POST /api/v1/admin/companies
func (h *AdminHandler) UpsertCompany(c *gin.Context) {
	var req upsertCompanyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, 400, "invalid_request", err)
		return
	}
	var settings datatypes.JSON
	if len(req.Settings) > 0 {
		if raw, err := json.Marshal(req.Settings); err == nil {
			settings = datatypes.JSON(raw)
		}
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	company, err := h.companies.Upsert(dbc, req.CompanyID, req.Name, settings)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"company": company})
}

// GET /api/v1/admin/companies?limit=100
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	companies, err := h.companies.List(dbc, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"companies": companies})
}

// GET /api/v1/admin/companies/:id/context
func (h *AdminHandler) CompanyContext(c *gin.Context) {
	companyID := c.Param("id")
	text, err := h.mem.CompanyContext(c.Request.Context(), companyID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"company_id": companyID,
		"context":    text,
		"found":      text != "",
	})
}

type addCompanyMemoryReq struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Context  string `json:"context"`
}

// POST /api/v1/admin/companies/:id/memory
func (h *AdminHandler) AddCompanyMemory(c *gin.Context) {
	var req addCompanyMemoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, 400, "invalid_request", err)
		return
	}
	err := h.mem.AddMemory(c.Request.Context(), string(memory.ScopeCompany), c.Param("id"), req.Question, req.Answer, req.Context)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stored": true})
}
