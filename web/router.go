package web

import (
	"context"
	"net/http"
	"time"

	"clockzy.com/clockzy/slackbot"
	"clockzy.com/clockzy/web/common"
	"clockzy.com/clockzy/web/handlers"
	"clockzy.com/clockzy/web/middlewares"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

// NewRouter mounts the Slack endpoint, the web API under /api/v1 and the
// /ping health check.
func NewRouter(logger *zap.Logger, db Pinger, bot *slackbot.Bot, api *handlers.Endpoint) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.Logger(logger), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, common.NewErrorResponse("database unavailable"))
			return
		}
		c.JSON(http.StatusOK, common.NewSuccessResponse("pong"))
	})

	slackbot.Register(r, bot)
	handlers.Register(r.Group("/api/v1"), api)
	return r
}
