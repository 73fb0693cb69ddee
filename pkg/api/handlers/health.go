package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lmsync/pkg/api/types"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	engine Engine
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(engine Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health of the service and whether the last poll reached the media server
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Service is degraded"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	snap := h.engine.Snapshot()

	mediaServer := "reachable"
	switch {
	case snap.LastPoll.IsZero():
		mediaServer = "pending"
	case snap.LastError != "":
		mediaServer = "unreachable"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if mediaServer != "reachable" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:      status,
		MediaServer: mediaServer,
		Players:     len(snap.Players),
		LastPoll:    snap.LastPoll,
		LastError:   snap.LastError,
		Timestamp:   time.Now(),
	})
}
