package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{33, 1},
		{99, 1},
		{100, 2},
		{133, 2},
		{199, 2},
		{200, 3},
		{2850, 29},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelForXPNegativeClamped(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(-50))
}

func TestRequestStatusValid(t *testing.T) {
	assert.True(t, RequestStatusOpen.Valid())
	assert.True(t, RequestStatusAccepted.Valid())
	assert.True(t, RequestStatusCompleted.Valid())
	assert.False(t, RequestStatus("CANCELLED").Valid())
}

func TestRoomIDDeterministic(t *testing.T) {
	a := &HelpRequest{ID: "abc"}
	b := &HelpRequest{ID: "abc"}
	assert.Equal(t, a.RoomID(), b.RoomID())
	assert.Equal(t, "room-abc", a.RoomID())
}

func TestFocusPointsForDuration(t *testing.T) {
	assert.Equal(t, 50, FocusPointsForDuration(25))
	assert.Equal(t, 2, FocusPointsForDuration(1))
}
