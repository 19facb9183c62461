package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/model"
	"clockzy.com/clockzy/report"
	"clockzy.com/clockzy/store"
	"clockzy.com/clockzy/web/common"
	"clockzy.com/clockzy/web/middlewares"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Repository is the persistence used by the web API.
type Repository interface {
	FindUser(ctx context.Context, id string) (*model.User, error)
	GetUserConfig(ctx context.Context, userID string) (*model.UserConfig, error)
	CheckTemporaryCredentials(ctx context.Context, userID, password string, now time.Time) (bool, error)

	ListClocks(ctx context.Context, userID string, filter store.ClockFilter) ([]model.Clock, error)
	GetClock(ctx context.Context, userID string, id int32) (*model.Clock, error)
	AddClock(ctx context.Context, clock *model.Clock) error
	UpdateClock(ctx context.Context, clock *model.Clock) error
	DeleteClock(ctx context.Context, userID string, id int32) error
}

type Options struct {
	Secret          []byte
	TokenTTL        time.Duration
	DefaultTimezone string
	SecureCookie    bool
	// Now defaults to time.Now.
	Now func() time.Time
}

type Endpoint struct {
	repo    Repository
	service *clocking.Service
	archive *report.Archive
	logger  *zap.Logger
	options Options
}

// NewEndpoint wires the web API. archive may be nil when exports are not
// archived.
func NewEndpoint(repo Repository, service *clocking.Service, archive *report.Archive, logger *zap.Logger, options Options) *Endpoint {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.DefaultTimezone == "" {
		options.DefaultTimezone = clocking.DefaultTimezone
	}
	return &Endpoint{repo: repo, service: service, archive: archive, logger: logger, options: options}
}

func Register(r *gin.RouterGroup, ep *Endpoint) {
	r.POST("/login", ep.Login)

	protected := r.Group("")
	protected.Use(middlewares.Authentication(ep.options.Secret))
	protected.GET("/clocks", ep.ListClocks)
	protected.POST("/clocks", ep.AddClock)
	protected.PUT("/clocks/:id", ep.UpdateClock)
	protected.DELETE("/clocks/:id", ep.DeleteClock)

	protected.GET("/worked-time", ep.WorkedTime)
	protected.GET("/history", ep.History)
	protected.GET("/history/export", ep.ExportHistory)
	protected.GET("/history/exports", ep.ListExports)
}

// reference pins now and the timezone configured for the user.
func (ep *Endpoint) reference(ctx context.Context, userID string) (clocking.Reference, error) {
	tz := ep.options.DefaultTimezone
	cfg, err := ep.repo.GetUserConfig(ctx, userID)
	if err != nil {
		return clocking.Reference{}, err
	}
	if cfg != nil && cfg.TimeZone != "" {
		tz = cfg.TimeZone
	}
	return clocking.NewReference(ep.options.Now(), tz)
}

// fail maps err to a status and hides internal failures from the caller.
func (ep *Endpoint) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, common.NewErrorResponse("clock not found"))
	case errors.Is(err, store.ErrDuplicateClock):
		c.JSON(http.StatusConflict, common.NewCodedErrorResponse("duplicate_clock", err.Error()))
	default:
		ep.logger.Error("web request failed",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("user_id", middlewares.UserID(c)))
		c.Error(err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("internal error"))
	}
}
