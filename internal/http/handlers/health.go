package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/theshibabasement/neuroflow/internal/clients/flowise"
	"github.com/theshibabasement/neuroflow/internal/platform/neo4jdb"
	"github.com/theshibabasement/neuroflow/internal/tasks"
)

type HealthHandler struct {
	db      *gorm.DB
	neo4j   *neo4jdb.Client
	rdb     *goredis.Client
	flowise *flowise.Client
	queue   *tasks.Queue
}

func NewHealthHandler(db *gorm.DB, neo4j *neo4jdb.Client, rdb *goredis.Client, fw *flowise.Client, queue *tasks.Queue) *HealthHandler {
	return &HealthHandler{db: db, neo4j: neo4j, rdb: rdb, flowise: fw, queue: queue}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}

	if h.neo4j != nil && h.neo4j.Driver != nil {
		if err := h.neo4j.Driver.VerifyConnectivity(ctx); err != nil {
			checks["neo4j"] = "down"
			healthy = false
		} else {
			checks["neo4j"] = "ok"
		}
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "ok"
			if h.queue != nil {
				if depth, err := h.queue.Depth(ctx); err == nil {
					checks["memory_queue_depth"] = depth
				}
			}
		}
	}

	if h.flowise != nil {
		if err := h.flowise.Health(ctx); err != nil {
			// Flowise being down degrades chat but not memory endpoints.
			checks["flowise"] = "down"
		} else {
			checks["flowise"] = "ok"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
