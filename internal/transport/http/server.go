package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/threadchat/threadchat-server/internal/auth"
	"github.com/threadchat/threadchat-server/internal/config"
	"github.com/threadchat/threadchat-server/internal/core"
)

// NewServer builds the HTTP server: auth REST endpoints, the synchronous
// query surface, and the websocket upgrade. The upgrade lives on a plain
// mux in front of the gin router because it hijacks the connection and
// gin's wrapped ResponseWriter would reject that.
func NewServer(hub *core.Hub, authService *auth.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, hub, logger)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	authorized := api.Group("")
	authorized.Use(AuthMiddleware(authService, logger))
	authorized.GET("/users", apiHandlers.OnlineUsers)
	authorized.GET("/threads", apiHandlers.Threads)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, authService, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
