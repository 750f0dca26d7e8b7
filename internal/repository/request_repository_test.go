package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

// Ids are opaque to callers but UUID-typed in storage. A string that cannot
// be a UUID must read as an unknown id, not as an encode error, and the
// screen has to reject it before anything reaches the pool.
func TestMalformedRequestIDReadsAsNoRows(t *testing.T) {
	repo := NewRequestRepository(nil)
	ctx := context.Background()

	for _, id := range []string{"abc", "", "123", "room-1", "not-a-uuid-at-all"} {
		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, "GetByID(%q)", id)

		_, err = repo.Accept(ctx, id, "U2")
		assert.ErrorIs(t, err, pgx.ErrNoRows, "Accept(%q)", id)

		_, err = repo.CompleteIfAccepted(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, "CompleteIfAccepted(%q)", id)
	}
}

func TestWellFormedRequestIDPassesScreen(t *testing.T) {
	assert.True(t, isRequestID("3f2f4cbb-6c2e-4f39-9c8e-2f55f6f3a8d1"))
	assert.False(t, isRequestID("3f2f4cbb-6c2e-4f39-9c8e"))
}
