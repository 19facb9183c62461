package handlers

import (
	"fmt"
	"net/http"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/report"
	"clockzy.com/clockzy/security"
	"clockzy.com/clockzy/web/common"
	"clockzy.com/clockzy/web/middlewares"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// query reads either a named range or explicit from/to bounds.
func (ep *Endpoint) query(c *gin.Context, ref clocking.Reference) (clocking.Query, bool) {
	var params RangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return clocking.Query{}, false
	}

	if params.From == "" {
		sel, err := clocking.ParseRangeSelector(params.Range)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
			return clocking.Query{}, false
		}
		return clocking.Query{Range: sel}, true
	}

	from, err := clocking.ParseTimestamp(params.From, ref.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return clocking.Query{}, false
	}
	to, err := clocking.ParseTimestamp(params.To, ref.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return clocking.Query{}, false
	}
	return clocking.Query{From: &from, To: &to}, true
}

func (ep *Endpoint) WorkedTime(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middlewares.UserID(c)
	ref, err := ep.reference(ctx, userID)
	if err != nil {
		ep.fail(c, err)
		return
	}

	q, ok := ep.query(c, ref)
	if !ok {
		return
	}
	w, err := q.Window(ref)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}

	worked, err := ep.service.CalculateWorkedTime(ctx, userID, q, ref)
	if err != nil {
		ep.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(WorkedTimeDTO{
		From:       common.NewLocalDateTime(w.From, ref.Location),
		To:         common.NewLocalDateTime(w.To, ref.Location),
		TimeZone:   ref.Location.String(),
		WorkedTime: worked.String(),
		Seconds:    int64(worked),
	}))
}

// history resolves the range parameter and computes the per-day history.
func (ep *Endpoint) history(c *gin.Context) (clocking.History, clocking.RangeSelector, clocking.Reference, bool) {
	ctx := c.Request.Context()
	userID := middlewares.UserID(c)
	ref, err := ep.reference(ctx, userID)
	if err != nil {
		ep.fail(c, err)
		return clocking.History{}, "", ref, false
	}

	sel, err := clocking.ParseRangeSelector(c.Query("range"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return clocking.History{}, "", ref, false
	}

	h, err := ep.service.History(ctx, userID, sel, ref)
	if err != nil {
		ep.fail(c, err)
		return clocking.History{}, "", ref, false
	}
	return h, sel, ref, true
}

func (ep *Endpoint) History(c *gin.Context) {
	h, _, ref, ok := ep.history(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(newHistoryDTO(h, ref.Location)))
}

// ExportHistory downloads the history as xlsx and archives a copy when an
// archive is configured.
func (ep *Endpoint) ExportHistory(c *gin.Context) {
	h, sel, ref, ok := ep.history(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := middlewares.UserID(c)
	userName := userID
	if claims, ok := c.Get(middlewares.ClaimsKey); ok {
		if identity, ok := claims.(*security.IdentityClaims); ok && identity.UserName != "" {
			userName = identity.UserName
		}
	}

	buf, err := report.HistoryWorkbook(h, ref, userName)
	if err != nil {
		ep.fail(c, err)
		return
	}

	if ep.archive != nil {
		key, err := ep.archive.Save(ctx, userID, string(sel), ref.Now, buf.Bytes())
		if err != nil {
			// the download still succeeds
			ep.logger.Warn("failed to archive history export", zap.Error(err), zap.String("user_id", userID))
		} else {
			c.Header("X-Archive-Key", key)
		}
	}

	filename := fmt.Sprintf("clockzy-%s-%s.xlsx", sel, ref.Now.Format(clocking.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}

func (ep *Endpoint) ListExports(c *gin.Context) {
	if ep.archive == nil {
		c.JSON(http.StatusOK, common.NewSearchResponse[string](nil))
		return
	}

	keys, err := ep.archive.List(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		ep.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(keys))
}
