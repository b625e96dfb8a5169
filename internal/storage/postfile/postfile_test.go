package postfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"postbot/internal/buttons"
	"postbot/internal/models"
	"postbot/internal/storage"
)

func newTestStore(t *testing.T) *PostStore {
	t.Helper()
	store, err := NewPostStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func buttonRows(t *testing.T, text, postID string) [][]models.Button {
	t.Helper()
	rows, err := buttons.Parse(text, postID)
	require.NoError(t, err)
	return rows
}

func TestPostStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	posts := map[string]models.Post{
		"greeting": {
			UserID:  1,
			Text:    "<b>hello</b>",
			Image:   "https://example.com/pic.png",
			Buttons: buttonRows(t, "Hi | msg:welcome | 1,2 | msg:nope", "greeting"),
			Private: true,
		},
	}
	require.NoError(t, store.SaveUserPosts(1, posts))

	loaded := store.LoadUserPosts(1)
	assert.Equal(t, posts, loaded)
}

func TestPostStore_IsPostAvailable(t *testing.T) {
	store := newTestStore(t)

	assert.True(t, store.IsPostAvailable("pid"))

	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"pid": {UserID: 1, Text: "body"},
	}))
	assert.False(t, store.IsPostAvailable("pid"))

	deleted, err := store.DeleteUserPost(1, "pid")
	require.NoError(t, err)
	require.True(t, deleted)
	assert.True(t, store.IsPostAvailable("pid"))
}

func TestPostStore_SaveRegistersNotifications(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"p1": {UserID: 1, Text: "body", Buttons: buttonRows(t, "Hit | msg:boom | 7 | msg:denied", "p1")},
	}))

	n, ok := store.GetNotification("show_alert_p1_0_0")
	require.True(t, ok)
	assert.Equal(t, "boom", n.Text)
	assert.True(t, n.ShowAlert)
	assert.Equal(t, []int64{7}, n.AllowedIDs)
	assert.Equal(t, "denied", n.UnauthorizedMessage)
}

func TestPostStore_CopyButtonsAnsweredAsAlerts(t *testing.T) {
	store := newTestStore(t)

	rows := buttonRows(t, "Copy | copy:the secret", "p1")
	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"p1": {UserID: 1, Text: "body", Buttons: rows},
	}))

	n, ok := store.GetNotification(rows[0][0].CallbackData)
	require.True(t, ok)
	assert.Equal(t, "the secret", n.Text)
	assert.True(t, n.ShowAlert)
}

func TestPostStore_DeleteRemovesOnlyOwnNotifications(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"doomed": {UserID: 1, Text: "a", Buttons: buttonRows(t, "A | msg:one", "doomed")},
		"keeper": {UserID: 1, Text: "b", Buttons: buttonRows(t, "B | ntf:two", "keeper")},
	}))

	deleted, err := store.DeleteUserPost(1, "doomed")
	require.NoError(t, err)
	require.True(t, deleted)

	_, ok := store.GetNotification("show_alert_doomed_0_0")
	assert.False(t, ok)
	n, ok := store.GetNotification("bt_keeper_0_0")
	require.True(t, ok)
	assert.Equal(t, "two", n.Text)
}

func TestPostStore_DeleteUnknownPost(t *testing.T) {
	store := newTestStore(t)

	deleted, err := store.DeleteUserPost(1, "ghost")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPostStore_SavePurgesStaleCacheEntries(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"old": {UserID: 1, Text: "old"},
	}))
	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"new": {UserID: 1, Text: "new"},
	}))

	assert.True(t, store.IsPostAvailable("old"))
	assert.False(t, store.IsPostAvailable("new"))
}

func TestPostStore_SaveRejectsInvalidID(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveUserPosts(1, map[string]models.Post{
		"bad id!": {UserID: 1, Text: "x"},
	})
	require.Error(t, err)

	// Nothing was persisted or cached.
	assert.Empty(t, store.LoadUserPosts(1))
	assert.True(t, store.IsPostAvailable("bad id!"))
}

func TestPostStore_SaveRejectsForeignID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPostStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"dup": {UserID: 1, Text: "first"},
	}))

	// A second user claiming the same id is rejected and nothing of theirs
	// is persisted.
	err = store.SaveUserPosts(2, map[string]models.Post{
		"dup": {UserID: 2, Text: "second"},
	})
	require.ErrorIs(t, err, storage.ErrPostIDTaken)

	_, statErr := os.Stat(filepath.Join(dir, "posts_2.json"))
	assert.True(t, os.IsNotExist(statErr))
	post, ok := store.GetPost("dup")
	require.True(t, ok)
	assert.Equal(t, int64(1), post.UserID)
	assert.Equal(t, "first", post.Text)
}

func TestPostStore_WriteFailureLeavesRegistryAndCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPostStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.SaveUserPosts(3, map[string]models.Post{
		"p1": {UserID: 3, Text: "body", Buttons: buttonRows(t, "A | msg:old", "p1")},
	}))

	// Replace the user's file with a directory so the next write fails.
	path := filepath.Join(dir, "posts_3.json")
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	err = store.SaveUserPosts(3, map[string]models.Post{
		"p2": {UserID: 3, Text: "new", Buttons: buttonRows(t, "B | msg:new", "p2")},
	})
	require.Error(t, err)

	// The registry and the cache still reflect the durable state.
	n, ok := store.GetNotification("show_alert_p1_0_0")
	require.True(t, ok)
	assert.Equal(t, "old", n.Text)
	_, ok = store.GetNotification("show_alert_p2_0_0")
	assert.False(t, ok)
	assert.False(t, store.IsPostAvailable("p1"))
	assert.True(t, store.IsPostAvailable("p2"))
}

func TestPostStore_LoadUserPostsDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPostStore(dir, zap.NewNop())
	require.NoError(t, err)

	// Absent file.
	assert.Empty(t, store.LoadUserPosts(42))

	// Corrupt file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts_42.json"), []byte("{not json"), 0o644))
	assert.Empty(t, store.LoadUserPosts(42))
}

func TestPostStore_LoadAllRebuildsCacheAndRegistry(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPostStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.SaveUserPosts(1, map[string]models.Post{
		"p1": {UserID: 1, Text: "one", Buttons: buttonRows(t, "A | msg:hi", "p1")},
	}))
	require.NoError(t, store.SaveUserPosts(2, map[string]models.Post{
		"p2": {UserID: 2, Text: "two", Private: true},
	}))

	// A second store over the same directory sees everything.
	reopened, err := NewPostStore(dir, zap.NewNop())
	require.NoError(t, err)

	post, ok := reopened.GetPost("p1")
	require.True(t, ok)
	assert.Equal(t, int64(1), post.UserID)
	post, ok = reopened.GetPost("p2")
	require.True(t, ok)
	assert.True(t, post.Private)

	n, ok := reopened.GetNotification("show_alert_p1_0_0")
	require.True(t, ok)
	assert.Equal(t, "hi", n.Text)

	assert.Len(t, reopened.AllPosts(), 2)
}

func TestPostStore_LoadAllSynthesizesMissingCallbackIDs(t *testing.T) {
	dir := t.TempDir()

	// Simulate a hand-edited file whose notification button has no
	// callback id.
	raw := `{
    "manual": {
        "user_id": 5,
        "text": "edited by hand",
        "image": "",
        "buttons": [[{"text": "Ping", "notification": "pong", "show_alert": true}]],
        "private": false
    }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts_5.json"), []byte(raw), 0o644))

	store, err := NewPostStore(dir, zap.NewNop())
	require.NoError(t, err)

	n, ok := store.GetNotification("show_alert_manual_0_0")
	require.True(t, ok)
	assert.Equal(t, "pong", n.Text)
}

func TestPostStore_LoadAllSkipsUnexpectedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts_abc.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644))

	store, err := NewPostStore(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, store.AllPosts())
}
