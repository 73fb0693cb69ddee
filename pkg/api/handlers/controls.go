package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lmsync/pkg/api/types"
	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/device/schema"
	"github.com/urmzd/lmsync/pkg/engine"
)

// ControlsHandler handles control listing and command endpoints
type ControlsHandler struct {
	engine    Engine
	validator *schema.Validator
}

// NewControlsHandler creates a new controls handler
func NewControlsHandler(engine Engine, validator *schema.Validator) *ControlsHandler {
	return &ControlsHandler{engine: engine, validator: validator}
}

// ListControls handles GET /controls
// @Summary      List controls
// @Description  Returns all controls, optionally only those of one player
// @Tags         controls
// @Produce      json
// @Param        player  query     string  false  "Player id"
// @Success      200     {object}  types.ListControlsResponse
// @Failure      500     {object}  types.ErrorResponse  "Store error"
// @Router       /controls [get]
func (h *ControlsHandler) ListControls(c *gin.Context) {
	ctx := c.Request.Context()
	store := h.engine.Store()

	var (
		controls []device.Control
		err      error
	)
	if player, ok := c.GetQuery("player"); ok {
		controls, err = store.FindByTag(ctx, player)
	} else {
		controls, err = store.List(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]types.ControlWithSchema, 0, len(controls))
	for _, ctrl := range controls {
		out = append(out, types.NewControlWithSchema(ctrl))
	}
	c.JSON(http.StatusOK, types.ListControlsResponse{
		Controls: out,
		Count:    len(out),
	})
}

// GetControl handles GET /controls/:id
// @Summary      Get control
// @Description  Returns one control and the JSON schema of the commands it accepts
// @Tags         controls
// @Produce      json
// @Param        id   path      int  true  "Control id"
// @Success      200  {object}  types.ControlResponse
// @Failure      400  {object}  types.ErrorResponse  "Invalid id"
// @Failure      404  {object}  types.ErrorResponse  "Control not found"
// @Router       /controls/{id} [get]
func (h *ControlsHandler) GetControl(c *gin.Context) {
	id, ok := controlID(c)
	if !ok {
		return
	}
	ctrl, err := h.engine.Store().Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ControlResponse{Control: types.NewControlWithSchema(*ctrl)})
}

// SendCommand handles POST /controls/:id/command
// @Summary      Send command
// @Description  Validates a command against the control's schema and dispatches it to the media server
// @Tags         controls
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Control id"
// @Param        request  body      types.CommandRequest  true  "Command"
// @Success      200      {object}  types.CommandResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Control not found"
// @Failure      422      {object}  types.ErrorResponse  "Command rejected"
// @Failure      502      {object}  types.ErrorResponse  "Media server error"
// @Router       /controls/{id}/command [post]
func (h *ControlsHandler) SendCommand(c *gin.Context) {
	id, ok := controlID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}
	if verb, ok := req["command"].(string); ok {
		req["command"] = engine.NormalizeVerb(verb)
	}

	ctrl, err := h.engine.Store().Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.validator.ValidateCommand(ctrl, req); err != nil {
		writeError(c, err)
		return
	}

	cmd := engine.Command{ControlID: id, Source: "api"}
	cmd.Verb, _ = req["command"].(string)
	if level, ok := req["level"].(float64); ok {
		cmd.Level = int(level)
	}

	rec, err := h.engine.Dispatch(ctx, cmd)
	if err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.engine.Store().Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.CommandResponse{
		Command: rec,
		Control: *updated,
	})
}

// ListCommands handles GET /commands
// @Summary      Command history
// @Description  Returns the most recent dispatched commands, newest first
// @Tags         controls
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of entries (default 50)"
// @Success      200    {object}  types.ListCommandsResponse
// @Failure      500    {object}  types.ErrorResponse  "Store error"
// @Router       /commands [get]
func (h *ControlsHandler) ListCommands(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "limit must be a positive integer",
		})
		return
	}

	records, err := h.engine.RecentCommands(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []device.CommandRecord{}
	}
	c.JSON(http.StatusOK, types.ListCommandsResponse{
		Commands: records,
		Count:    len(records),
	})
}

func controlID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "control id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}
