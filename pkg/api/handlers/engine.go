package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lmsync/pkg/api/types"
	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/engine"
	"github.com/urmzd/lmsync/pkg/lms"
)

// Engine is the part of engine.Engine the handlers use.
type Engine interface {
	Snapshot() engine.Snapshot
	Store() device.Store
	Reconcile(ctx context.Context) error
	Dispatch(ctx context.Context, cmd engine.Command) (device.CommandRecord, error)
	RecentCommands(ctx context.Context, limit int) ([]device.CommandRecord, error)
}

// writeError maps an engine or store error to a status code.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, device.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, device.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, engine.ErrInvalidSelection):
		status, code = http.StatusUnprocessableEntity, "invalid_selection"
	case errors.Is(err, engine.ErrConfiguration):
		status, code = http.StatusUnprocessableEntity, "configuration_error"
	case errors.Is(err, engine.ErrNoPlayers):
		status, code = http.StatusConflict, "no_players"
	case errors.Is(err, lms.ErrTransport):
		status, code = http.StatusBadGateway, "media_server_error"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	}
	c.JSON(status, types.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
