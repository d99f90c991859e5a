package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentacrush_server/models"
	"mentacrush_server/repositories/memory"
)

func TestActivityFeed(t *testing.T) {
	svc := &ActivityService{Store: memory.NewActivityStore()}
	ctx := context.Background()

	svc.Record(ctx, "alice", "Alice", models.ActivityTypeNewUser, "joined MentaCrush")
	svc.Record(ctx, "bob", "Bob", models.ActivityTypeNewUser, "joined MentaCrush")
	svc.Record(ctx, "alice", "Alice", models.ActivityTypeSentHint, "sent a hint")

	recent, err := svc.GetRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	forAlice, err := svc.GetForUser(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, forAlice, 2)
	for _, activity := range forAlice {
		assert.Equal(t, "alice", activity.UserID)
	}

	limited, err := svc.GetRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
