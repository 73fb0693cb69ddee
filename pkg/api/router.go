package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/urmzd/lmsync/pkg/api/handlers"
	"github.com/urmzd/lmsync/pkg/device/schema"
	"github.com/urmzd/lmsync/pkg/notify"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine    *gin.Engine
	lms       handlers.Engine
	hub       *notify.Hub
	validator *schema.Validator
}

// NewRouter creates a new API router. The event stream is only served when
// hub is non-nil.
func NewRouter(lms handlers.Engine, hub *notify.Hub, validator *schema.Validator) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:    engine,
		lms:       lms,
		hub:       hub,
		validator: validator,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.lms)
	r.engine.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		// Health
		v1.GET("/health", healthHandler.Health)

		// Players, playlists and polling
		playersHandler := handlers.NewPlayersHandler(r.lms)
		v1.GET("/players", playersHandler.ListPlayers)
		v1.GET("/playlists", playersHandler.ListPlaylists)
		v1.POST("/poll", playersHandler.Poll)

		// Controls
		controlsHandler := handlers.NewControlsHandler(r.lms, r.validator)
		controls := v1.Group("/controls")
		{
			controls.GET("", controlsHandler.ListControls)
			controls.GET("/:id", controlsHandler.GetControl)
			controls.POST("/:id/command", controlsHandler.SendCommand)
		}
		v1.GET("/commands", controlsHandler.ListCommands)

		if r.hub != nil {
			v1.GET("/events", handlers.NewEventsHandler(r.hub).Events)
		}
	}
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
