package handlers

import (
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/model"
	"clockzy.com/clockzy/web/common"
)

type LoginDTO struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ClockDTO struct {
	ID     int32  `json:"id"`
	Action string `json:"action"`
	// DateTime is the instant rendered in the user's timezone.
	DateTime      common.LocalDateTime `json:"dateTime"`
	LocalDateTime common.LocalDateTime `json:"localDateTime"`
}

func newClockDTO(c model.Clock, loc *time.Location) ClockDTO {
	return ClockDTO{
		ID:            c.ID,
		Action:        c.Action,
		DateTime:      common.NewLocalDateTime(c.DateTime, loc),
		LocalDateTime: common.LocalDateTime{Time: c.LocalDateTime},
	}
}

type ClockInputDTO struct {
	Action   string                `json:"action" binding:"required,oneof=in pause return out"`
	DateTime *common.LocalDateTime `json:"dateTime" binding:"required"`
}

type ClockSearchParams struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Action string `form:"action" binding:"omitempty,oneof=in pause return out"`
}

type RangeParams struct {
	Range string `form:"range" binding:"omitempty,oneof=today week month"`
	From  string `form:"from" binding:"required_with=To"`
	To    string `form:"to" binding:"required_with=From"`
}

type WorkedTimeDTO struct {
	From       common.LocalDateTime `json:"from"`
	To         common.LocalDateTime `json:"to"`
	TimeZone   string               `json:"timeZone"`
	WorkedTime string               `json:"workedTime"`
	Seconds    int64                `json:"seconds"`
}

type DayTotalDTO struct {
	Date       common.DateOnly `json:"date"`
	WorkedTime string          `json:"workedTime"`
	Seconds    int64           `json:"seconds"`
}

type HistoryDTO struct {
	From         common.LocalDateTime `json:"from"`
	To           common.LocalDateTime `json:"to"`
	TimeZone     string               `json:"timeZone"`
	Total        string               `json:"total"`
	TotalSeconds int64                `json:"totalSeconds"`
	Days         []DayTotalDTO        `json:"days"`
}

func newHistoryDTO(h clocking.History, loc *time.Location) HistoryDTO {
	dto := HistoryDTO{
		From:         common.NewLocalDateTime(h.From, loc),
		To:           common.NewLocalDateTime(h.To, loc),
		TimeZone:     loc.String(),
		Total:        h.Total.String(),
		TotalSeconds: int64(h.Total),
		Days:         make([]DayTotalDTO, 0, len(h.Days)),
	}
	for _, d := range h.Days {
		local := d.Date.In(loc)
		dto.Days = append(dto.Days, DayTotalDTO{
			Date:       common.DateOnly{Time: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)},
			WorkedTime: d.Worked.String(),
			Seconds:    int64(d.Worked),
		})
	}
	return dto
}
