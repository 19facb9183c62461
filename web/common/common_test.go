package common

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDateTimeJSON(t *testing.T) {
	var payload struct {
		At LocalDateTime `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2026-10-14 09:05:00"}`), &payload))

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	at := payload.At.In(loc)
	assert.True(t, time.Date(2026, 10, 14, 7, 5, 0, 0, time.UTC).Equal(at))

	out, err := json.Marshal(NewLocalDateTime(at, loc))
	require.NoError(t, err)
	assert.Equal(t, `"2026-10-14 09:05:00"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"at":"2026-10-14T09:05:00"}`), &payload))
}

func TestDateOnlyJSON(t *testing.T) {
	out, err := json.Marshal(DateOnly{Time: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, `"2026-10-14"`, string(out))

	out, err = json.Marshal(DateOnly{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(out))
}

func TestFormatBindingError(t *testing.T) {
	type request struct {
		Action string `json:"action" binding:"required,oneof=in pause return out"`
		Note   string `json:"note" binding:"max=5"`
	}

	err := binding.Validator.ValidateStruct(&request{Action: "lunch", Note: "too long"})
	require.Error(t, err)
	assert.Equal(t, "Field 'action' must be one of [in pause return out], Field 'note' must be at most 5", FormatBindingError(err))

	err = binding.Validator.ValidateStruct(&request{})
	assert.Equal(t, "Field 'action' is required", FormatBindingError(err))

	var input struct {
		At LocalDateTime `json:"at"`
	}
	err = json.Unmarshal([]byte(`{"at":"14/10/2026 09:05"}`), &input)
	assert.Equal(t, "Invalid date time '14/10/2026 09:05', expected the format 2006-01-02 15:04:05", FormatBindingError(err))

	assert.Equal(t, "Request body is empty", FormatBindingError(io.EOF))
	assert.Equal(t, "", FormatBindingError(nil))
}

func TestSearchResponse(t *testing.T) {
	res := NewSearchResponse[int](nil)
	assert.NotNil(t, res.Data)
	assert.Zero(t, res.Pagination.Total)

	res = NewSearchResponse([]int{1, 2, 3})
	assert.EqualValues(t, 3, res.Pagination.Total)
}
