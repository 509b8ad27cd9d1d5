package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/config"
	"github.com/parlor-chat/parlor/internal/core"
	"github.com/parlor-chat/parlor/internal/store"
)

// NewServer builds the HTTP server: registration API, health check and the
// WebSocket endpoint.
func NewServer(hub *core.Hub, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg.ClientBuffer, logger)))

	api := router.Group("/api")
	handlers := NewAPIHandlers(hub, st, logger)
	api.POST("/register", handlers.Register)
	api.GET("/users", handlers.ListUsers)
	api.GET("/presence", handlers.Presence)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
