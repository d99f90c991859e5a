package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentacrush_server/models"
	"mentacrush_server/repositories/memory"
)

func newTestProfileService() *UserProfileService {
	return &UserProfileService{
		Store:      memory.NewProfileStore(),
		Activities: &ActivityService{Store: memory.NewActivityStore()},
	}
}

func stringPtr(s string) *string { return &s }

func TestProfileCRUD(t *testing.T) {
	svc := newTestProfileService()
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, models.UserProfile{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	created, err := svc.CreateProfile(ctx, models.UserProfile{UserID: "alice", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.CreatedAt)

	fetched, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", fetched.DisplayName)

	_, err = svc.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile_PatchesNamedFields(t *testing.T) {
	svc := newTestProfileService()
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, models.UserProfile{UserID: "alice", DisplayName: "Alice", Bio: "hello"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "alice", models.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	updated, err := svc.UpdateProfile(ctx, "alice", models.ProfileUpdate{
		Bio: stringPtr("new bio"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	// Untouched fields survive the patch.
	assert.Equal(t, "Alice", updated.DisplayName)

	_, err = svc.UpdateProfile(ctx, "nobody", models.ProfileUpdate{Bio: stringPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProfiles_ExcludesCaller(t *testing.T) {
	svc := newTestProfileService()
	ctx := context.Background()

	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := svc.CreateProfile(ctx, models.UserProfile{UserID: id})
		require.NoError(t, err)
	}

	profiles, err := svc.ListProfiles(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	for _, profile := range profiles {
		assert.NotEqual(t, "alice", profile.UserID)
	}
}

func TestBumpHintCounters(t *testing.T) {
	svc := newTestProfileService()
	ctx := context.Background()

	for _, id := range []string{"alice", "bob"} {
		_, err := svc.CreateProfile(ctx, models.UserProfile{UserID: id})
		require.NoError(t, err)
	}

	require.NoError(t, svc.BumpHintCounters(ctx, "alice", "bob"))
	require.NoError(t, svc.BumpHintCounters(ctx, "alice", "bob"))

	alice, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, alice.HintsSent)
	assert.Equal(t, 0, alice.HintsReceived)

	bob, err := svc.GetProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, bob.HintsReceived)
}
