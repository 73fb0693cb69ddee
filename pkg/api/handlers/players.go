package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lmsync/pkg/api/types"
	"github.com/urmzd/lmsync/pkg/engine"
)

// PlayersHandler serves the players and playlists seen by the last poll
type PlayersHandler struct {
	engine Engine
}

// NewPlayersHandler creates a new players handler
func NewPlayersHandler(engine Engine) *PlayersHandler {
	return &PlayersHandler{engine: engine}
}

// ListPlayers handles GET /players
// @Summary      List players
// @Description  Returns the players found by the last poll with their control ids
// @Tags         players
// @Produce      json
// @Success      200  {object}  types.ListPlayersResponse
// @Router       /players [get]
func (h *PlayersHandler) ListPlayers(c *gin.Context) {
	snap := h.engine.Snapshot()

	groups := make(map[string]engine.Group, len(snap.Groups))
	for _, g := range snap.Groups {
		groups[g.PlayerID] = g
	}

	players := make([]types.PlayerWithControls, 0, len(snap.Players))
	for _, p := range snap.Players {
		entry := types.PlayerWithControls{Player: p}
		if g, ok := groups[p.ID]; ok {
			entry.Controls = &g
		}
		players = append(players, entry)
	}

	c.JSON(http.StatusOK, types.ListPlayersResponse{
		Players:  players,
		Count:    len(players),
		LastPoll: snap.LastPoll,
	})
}

// ListPlaylists handles GET /playlists
// @Summary      List playlists
// @Description  Returns the playlist catalog with the selector level of each entry
// @Tags         players
// @Produce      json
// @Success      200  {object}  types.ListPlaylistsResponse
// @Router       /playlists [get]
func (h *PlayersHandler) ListPlaylists(c *gin.Context) {
	playlists := h.engine.Snapshot().Playlists
	if playlists == nil {
		playlists = []engine.PlaylistEntry{}
	}
	c.JSON(http.StatusOK, types.ListPlaylistsResponse{
		Playlists: playlists,
		Count:     len(playlists),
	})
}

// Poll handles POST /poll
// @Summary      Poll now
// @Description  Runs a reconciliation cycle immediately
// @Tags         players
// @Produce      json
// @Success      200  {object}  types.PollResponse
// @Failure      502  {object}  types.ErrorResponse  "Media server unreachable"
// @Router       /poll [post]
func (h *PlayersHandler) Poll(c *gin.Context) {
	if err := h.engine.Reconcile(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	snap := h.engine.Snapshot()
	c.JSON(http.StatusOK, types.PollResponse{
		Status:    "ok",
		Players:   len(snap.Players),
		Timestamp: snap.LastPoll,
	})
}
