package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

func newFocus() (*FocusService, *memUserRepo) {
	users := newMemUserRepo()
	return NewFocusService(newMemFocusRepo(), users), users
}

func TestRecordFocusSession(t *testing.T) {
	svc, users := newFocus()

	session, err := svc.Record(context.Background(), "U1", "linear algebra", 25)
	require.NoError(t, err)
	assert.Equal(t, "linear algebra", session.Topic)
	assert.Equal(t, 25, session.Duration)
	assert.Equal(t, 50, session.FocusPoints)
	assert.NotEmpty(t, session.ID)

	// the participant record exists even if it never earned xp
	_, err = users.GetByID(context.Background(), "U1")
	assert.NoError(t, err)
}

func TestRecordRejectsNonPositiveDuration(t *testing.T) {
	svc, _ := newFocus()

	_, err := svc.Record(context.Background(), "U1", "reading", 0)
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = svc.Record(context.Background(), "U1", "reading", -5)
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}

func TestRecordDefaultsBlankTopic(t *testing.T) {
	svc, _ := newFocus()

	session, err := svc.Record(context.Background(), "U1", "   ", 10)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", session.Topic)
}

func TestListReturnsNewestFirst(t *testing.T) {
	svc, _ := newFocus()

	_, err := svc.Record(context.Background(), "U1", "first", 10)
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), "U1", "second", 15)
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), "U2", "other user", 20)
	require.NoError(t, err)

	sessions, err := svc.List(context.Background(), "U1", 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "second", sessions[0].Topic)
	assert.Equal(t, "first", sessions[1].Topic)
}

func TestResetClearsSessions(t *testing.T) {
	svc, _ := newFocus()

	_, err := svc.Record(context.Background(), "U1", "algebra", 30)
	require.NoError(t, err)
	require.NoError(t, svc.Reset(context.Background()))

	sessions, err := svc.List(context.Background(), "U1", 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
