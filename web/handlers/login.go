package handlers

import (
	"net/http"
	"time"

	"clockzy.com/clockzy/security"
	"clockzy.com/clockzy/web/common"
	"clockzy.com/clockzy/web/middlewares"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login exchanges the temporary credentials issued by /management for a
// web token, returned in the body and as session cookie.
func (ep *Endpoint) Login(c *gin.Context) {
	var login LoginDTO
	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	ctx := c.Request.Context()
	now := ep.options.Now()

	ok, err := ep.repo.CheckTemporaryCredentials(ctx, login.UserID, login.Password, now)
	if err != nil {
		ep.fail(c, err)
		return
	}
	if !ok {
		ep.logger.Warn("rejected web login", zap.String("user_id", login.UserID))
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired credentials"))
		return
	}

	user, err := ep.repo.FindUser(ctx, login.UserID)
	if err != nil {
		ep.fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("user is not registered"))
		return
	}

	token, err := security.CreateIdentityToken(security.Identity{UserID: user.ID, UserName: user.UserName}, ep.options.Secret, now, ep.options.TokenTTL)
	if err != nil {
		ep.fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, token, int(ep.options.TokenTTL/time.Second), "/", "", ep.options.SecureCookie, true)
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"token":     token,
		"expiresAt": now.Add(ep.options.TokenTTL).Unix(),
		"userName":  user.UserName,
	}))
}
