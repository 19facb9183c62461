package handlers

import (
	"net/http"
	"strconv"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/model"
	"clockzy.com/clockzy/store"
	"clockzy.com/clockzy/utils"
	"clockzy.com/clockzy/web/common"
	"clockzy.com/clockzy/web/middlewares"
	"github.com/gin-gonic/gin"
)

// ListClocks returns the clocks of the authenticated user. from and to are
// read in the user's timezone.
func (ep *Endpoint) ListClocks(c *gin.Context) {
	var params ClockSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	ctx := c.Request.Context()
	userID := middlewares.UserID(c)
	ref, err := ep.reference(ctx, userID)
	if err != nil {
		ep.fail(c, err)
		return
	}

	filter := store.ClockFilter{Action: params.Action}
	if params.From != "" {
		from, err := clocking.ParseTimestamp(params.From, ref.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
			return
		}
		filter.From = &from
	}
	if params.To != "" {
		to, err := clocking.ParseTimestamp(params.To, ref.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
			return
		}
		filter.To = &to
	}

	clocks, err := ep.repo.ListClocks(ctx, userID, filter)
	if err != nil {
		ep.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(utils.Map(clocks, func(m model.Clock) ClockDTO {
		return newClockDTO(m, ref.Location)
	})))
}

// AddClock inserts a clock at a chosen time. Edits do not go through the
// transition rules; only the unique (user, date time) index applies.
func (ep *Endpoint) AddClock(c *gin.Context) {
	var input ClockInputDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	ctx := c.Request.Context()
	userID := middlewares.UserID(c)
	ref, err := ep.reference(ctx, userID)
	if err != nil {
		ep.fail(c, err)
		return
	}

	at := input.DateTime.In(ref.Location)
	clock := model.Clock{
		UserID:        userID,
		Action:        input.Action,
		DateTime:      at,
		LocalDateTime: at.In(ref.Location),
	}
	if err := ep.repo.AddClock(ctx, &clock); err != nil {
		ep.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(newClockDTO(clock, ref.Location)))
}

func (ep *Endpoint) UpdateClock(c *gin.Context) {
	id, ok := clockID(c)
	if !ok {
		return
	}

	var input ClockInputDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	ctx := c.Request.Context()
	userID := middlewares.UserID(c)
	ref, err := ep.reference(ctx, userID)
	if err != nil {
		ep.fail(c, err)
		return
	}

	at := input.DateTime.In(ref.Location)
	clock := model.Clock{
		ID:            id,
		UserID:        userID,
		Action:        input.Action,
		DateTime:      at,
		LocalDateTime: at.In(ref.Location),
	}
	if err := ep.repo.UpdateClock(ctx, &clock); err != nil {
		ep.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(newClockDTO(clock, ref.Location)))
}

func (ep *Endpoint) DeleteClock(c *gin.Context) {
	id, ok := clockID(c)
	if !ok {
		return
	}

	if err := ep.repo.DeleteClock(c.Request.Context(), middlewares.UserID(c), id); err != nil {
		ep.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func clockID(c *gin.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid id"))
		return 0, false
	}
	return int32(id), true
}
