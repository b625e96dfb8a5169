package storage

import (
	"errors"

	"postbot/internal/models"
)

// ErrPostIDTaken reports a save that would claim a post id already held by
// another user. Id uniqueness is global, so the id must be re-chosen.
var ErrPostIDTaken = errors.New("post id already taken")

// Storage defines the interface for post persistence operations.
//
// Implementations own the cross-user post cache and drive the notification
// registry: saving or deleting a post re-derives the registry entries for
// that post's buttons, and LoadAll rebuilds both from persisted state.
type Storage interface {
	// LoadUserPosts reads the persisted posts of one user. A missing,
	// unreadable or structurally invalid file degrades to an empty mapping;
	// the anomaly is logged, never surfaced to the caller.
	LoadUserPosts(userID int64) map[string]models.Post

	// SaveUserPosts persists the full post mapping of one user, re-derives
	// notification registrations for every contained post and refreshes the
	// global cache. A mapping claiming an id another user holds fails with
	// ErrPostIDTaken. On any error the save is aborted and the cache and
	// registry are left unmodified.
	SaveUserPosts(userID int64, posts map[string]models.Post) error

	// DeleteUserPost removes one post, its cache entry and its notification
	// registrations. Returns false when the post does not exist.
	DeleteUserPost(userID int64, postID string) (bool, error)

	// IsPostAvailable reports whether no post anywhere currently holds the
	// id. Id uniqueness is global, not per-user.
	IsPostAvailable(postID string) bool

	// GetPost returns a post from the global cache.
	GetPost(postID string) (models.Post, bool)

	// AllPosts returns a snapshot of the global cache.
	AllPosts() map[string]models.Post

	// GetNotification resolves a callback id against the notification
	// registry.
	GetNotification(callbackID string) (models.Notification, bool)

	// LoadAll rebuilds the cache and the notification registry from
	// persisted state.
	LoadAll() error
}
