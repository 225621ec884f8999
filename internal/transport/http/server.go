// Package http adapts the room hub to its two transports: the WebSocket
// gateway and a bounded long-poll API.
package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/clubchat/clubchat-server/internal/config"
	"github.com/clubchat/clubchat-server/internal/core"
)

// NewServer builds the HTTP server with all routes.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	lp := &longPoll{hub: hub, timeout: cfg.LongPollTimeout}
	api := router.Group("/api")
	api.GET("/history", lp.history)
	api.GET("/users", lp.users)
	api.GET("/pinned", lp.pinned)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// pollInterval is how often a waiting long-poll rechecks shared state.
const pollInterval = 100 * time.Millisecond
