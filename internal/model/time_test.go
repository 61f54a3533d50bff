package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTime_JSON(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

	data, err := json.Marshal(LocalTime(at))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09 14:05:07"`, string(data))

	var back LocalTime
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, at.Equal(back.Time()))

	data, err = json.Marshal(LocalTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	require.NoError(t, json.Unmarshal([]byte("null"), &back))
	assert.True(t, back.Time().IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"03/09/2024"`), &back))
}
