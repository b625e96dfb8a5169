package stubs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postbot/internal/buttons"
	"postbot/internal/models"
	"postbot/internal/storage"
)

func TestMockStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewMockStore()

	rows, err := buttons.Parse("Hi | msg:welcome", "p1")
	require.NoError(t, err)

	posts := map[string]models.Post{
		"p1": {UserID: 1, Text: "body", Buttons: rows},
	}
	require.NoError(t, store.SaveUserPosts(1, posts))

	loaded := store.LoadUserPosts(1)
	assert.Equal(t, posts, loaded)
}

func TestMockStore_AvailabilityAndDelete(t *testing.T) {
	store := NewMockStore()

	assert.True(t, store.IsPostAvailable("p1"))
	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"p1": {UserID: 1, Text: "body"},
	}))
	assert.False(t, store.IsPostAvailable("p1"))

	deleted, err := store.DeleteUserPost(1, "p1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, store.IsPostAvailable("p1"))

	deleted, err = store.DeleteUserPost(1, "p1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMockStore_NotificationLifecycle(t *testing.T) {
	store := NewMockStore()

	rows, err := buttons.Parse("A | msg:hi | 3 | msg:no", "p1")
	require.NoError(t, err)
	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"p1": {UserID: 1, Text: "body", Buttons: rows},
	}))

	n, ok := store.GetNotification("show_alert_p1_0_0")
	require.True(t, ok)
	assert.Equal(t, "hi", n.Text)
	assert.False(t, n.Allows(4))
	assert.True(t, n.Allows(3))

	deleted, err := store.DeleteUserPost(1, "p1")
	require.NoError(t, err)
	require.True(t, deleted)
	_, ok = store.GetNotification("show_alert_p1_0_0")
	assert.False(t, ok)
}

func TestMockStore_GlobalIDNamespace(t *testing.T) {
	store := NewMockStore()

	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"shared": {UserID: 1, Text: "mine"},
	}))

	// Another user sees the id as taken.
	assert.False(t, store.IsPostAvailable("shared"))

	post, ok := store.GetPost("shared")
	require.True(t, ok)
	assert.Equal(t, int64(1), post.UserID)

	// A save claiming the id for another user is rejected outright.
	err := store.SaveUserPosts(2, map[string]models.Post{
		"shared": {UserID: 2, Text: "theirs"},
	})
	require.ErrorIs(t, err, storage.ErrPostIDTaken)
	assert.Empty(t, store.LoadUserPosts(2))
	post, ok = store.GetPost("shared")
	require.True(t, ok)
	assert.Equal(t, int64(1), post.UserID)
}

func TestMockStore_LoadAllRebuilds(t *testing.T) {
	store := NewMockStore()

	rows, err := buttons.Parse("A | ntf:ping", "p1")
	require.NoError(t, err)
	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"p1": {UserID: 1, Text: "body", Buttons: rows},
	}))

	require.NoError(t, store.LoadAll())

	_, ok := store.GetPost("p1")
	assert.True(t, ok)
	n, ok := store.GetNotification("bt_p1_0_0")
	require.True(t, ok)
	assert.Equal(t, "ping", n.Text)
}
