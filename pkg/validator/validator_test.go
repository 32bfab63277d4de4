package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seekInput struct {
	RoomID string  `json:"roomId" validate:"required,alphanum,max=16"`
	Time   float64 `json:"time" validate:"gte=0"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	_, ok := v.Validate(seekInput{RoomID: "AB12C", Time: 3})
	assert.True(t, ok)

	errs, ok := v.Validate(seekInput{RoomID: "", Time: -1})
	require.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "roomId", errs[0].Field)
	assert.Equal(t, "REQUIRED", errs[0].Code)
	assert.Equal(t, "time", errs[1].Field)
	assert.Equal(t, "GTE", errs[1].Code)
}
