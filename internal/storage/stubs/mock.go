// Package stubs provides an in-memory implementation of the storage
// interface, used in tests and selectable with POSTS_IN_MEMORY for local
// development. Nothing survives a restart.
package stubs

import (
	"fmt"
	"sync"

	"postbot/internal/models"
	"postbot/internal/notify"
	"postbot/internal/storage"
)

// MockStore mirrors the file store contract on plain maps.
type MockStore struct {
	mu       sync.RWMutex
	users    map[int64]map[string]models.Post
	cache    map[string]models.Post
	registry *notify.Registry
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[int64]map[string]models.Post),
		cache:    make(map[string]models.Post),
		registry: notify.NewRegistry(),
	}
}

// LoadUserPosts returns a copy of one user's posts.
func (m *MockStore) LoadUserPosts(userID int64) map[string]models.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posts := make(map[string]models.Post, len(m.users[userID]))
	for postID, post := range m.users[userID] {
		posts[postID] = post
	}
	return posts
}

// SaveUserPosts replaces one user's post mapping and re-derives notification
// registrations for the contained posts.
func (m *MockStore) SaveUserPosts(userID int64, posts map[string]models.Post) error {
	if posts == nil {
		return fmt.Errorf("nil posts mapping for user %d", userID)
	}
	for postID := range posts {
		if !models.IsValidPostID(postID) {
			return fmt.Errorf("invalid post id %q", postID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for postID := range posts {
		if cached, ok := m.cache[postID]; ok && cached.UserID != userID {
			return fmt.Errorf("post id %q: %w", postID, storage.ErrPostIDTaken)
		}
	}

	for postID, cached := range m.cache {
		if cached.UserID != userID {
			continue
		}
		if _, kept := posts[postID]; !kept {
			m.unregisterButtons(cached.Buttons)
			delete(m.cache, postID)
		}
	}

	stored := make(map[string]models.Post, len(posts))
	for postID, post := range posts {
		post.UserID = userID
		if cached, ok := m.cache[postID]; ok {
			m.unregisterButtons(cached.Buttons)
		}
		registerNotifications(postID, post.Buttons, m.registry.Register)
		stored[postID] = post
		m.cache[postID] = post
	}
	m.users[userID] = stored
	return nil
}

// DeleteUserPost removes one post together with its notifications.
func (m *MockStore) DeleteUserPost(userID int64, postID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	post, ok := posts[postID]
	if !ok {
		return false, nil
	}
	m.unregisterButtons(post.Buttons)
	delete(posts, postID)
	delete(m.cache, postID)
	return true, nil
}

// IsPostAvailable reports whether no post currently holds the id.
func (m *MockStore) IsPostAvailable(postID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, taken := m.cache[postID]
	return !taken
}

// GetPost returns a post from the cache.
func (m *MockStore) GetPost(postID string) (models.Post, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	post, ok := m.cache[postID]
	return post, ok
}

// AllPosts returns a snapshot of the cache.
func (m *MockStore) AllPosts() map[string]models.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := make(map[string]models.Post, len(m.cache))
	for postID, post := range m.cache {
		snapshot[postID] = post
	}
	return snapshot
}

// GetNotification resolves a callback id against the registry.
func (m *MockStore) GetNotification(callbackID string) (models.Notification, bool) {
	return m.registry.Lookup(callbackID)
}

// LoadAll rebuilds the cache and registry from the per-user maps.
func (m *MockStore) LoadAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cache := make(map[string]models.Post)
	notifications := make(map[string]models.Notification)
	for userID, posts := range m.users {
		for postID, post := range posts {
			post.UserID = userID
			registerNotifications(postID, post.Buttons, func(callbackID string, n models.Notification) {
				notifications[callbackID] = n
			})
			cache[postID] = post
		}
	}
	m.cache = cache
	m.registry.Reset(notifications)
	return nil
}

func registerNotifications(postID string, rows [][]models.Button, register func(string, models.Notification)) {
	for _, row := range rows {
		for _, btn := range row {
			if btn.CallbackData == "" {
				continue
			}
			switch {
			case btn.Notification != "":
				register(btn.CallbackData, models.Notification{
					Text:                btn.Notification,
					ShowAlert:           btn.ShowAlert,
					AllowedIDs:          btn.AllowedIDs,
					UnauthorizedMessage: btn.UnauthorizedMessage,
				})
			case btn.CopyText != "":
				register(btn.CallbackData, models.Notification{
					Text:      btn.CopyText,
					ShowAlert: true,
				})
			}
		}
	}
}

func (m *MockStore) unregisterButtons(rows [][]models.Button) {
	for _, row := range rows {
		for _, btn := range row {
			if btn.CallbackData == "" {
				continue
			}
			if btn.Notification != "" || btn.CopyText != "" {
				m.registry.Unregister(btn.CallbackData)
			}
		}
	}
}
