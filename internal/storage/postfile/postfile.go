// Package postfile implements post storage on per-user JSON files.
//
// Each user owns one file named posts_<userID>.json holding a mapping from
// post id to post record. A process-wide cache indexes every persisted post
// by id for availability checks and inline search, and a notification
// registry is kept in sync with the buttons of the stored posts.
package postfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"postbot/internal/buttons"
	"postbot/internal/models"
	"postbot/internal/notify"
	"postbot/internal/storage"
)

const (
	filePrefix = "posts_"
	fileSuffix = ".json"
)

// PostStore persists posts to per-user JSON files under a single directory.
//
// The mutex guards the cache and serializes the availability-check-then-claim
// sequence: IsPostAvailable and the cache refresh inside a save both run
// under it, so two concurrent authoring sessions cannot claim the same id.
type PostStore struct {
	dir      string
	logger   *zap.Logger
	registry *notify.Registry

	mu    sync.RWMutex
	cache map[string]models.Post
}

// NewPostStore creates the posts directory if needed and loads all persisted
// posts into the cache.
func NewPostStore(dir string, logger *zap.Logger) (*PostStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create posts dir: %w", err)
	}
	s := &PostStore{
		dir:      dir,
		logger:   logger,
		registry: notify.NewRegistry(),
		cache:    make(map[string]models.Post),
	}
	if err := s.LoadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostStore) userFile(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", filePrefix, userID, fileSuffix))
}

// LoadUserPosts reads one user's posts file. A missing, unreadable or
// structurally invalid file degrades to an empty mapping.
func (s *PostStore) LoadUserPosts(userID int64) map[string]models.Post {
	path := s.userFile(userID)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("Failed to read posts file",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return map[string]models.Post{}
	}

	var posts map[string]models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		s.logger.Error("Invalid posts file",
			zap.String("path", path),
			zap.Error(err),
		)
		return map[string]models.Post{}
	}
	if posts == nil {
		posts = map[string]models.Post{}
	}
	return posts
}

// SaveUserPosts validates and persists the full post mapping of one user,
// re-derives notification registrations for every contained post and
// refreshes the global cache for exactly the ids present in the mapping.
func (s *PostStore) SaveUserPosts(userID int64, posts map[string]models.Post) error {
	if posts == nil {
		return fmt.Errorf("nil posts mapping for user %d", userID)
	}
	for postID := range posts {
		if !models.IsValidPostID(postID) {
			return fmt.Errorf("invalid post id %q", postID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(userID, posts)
}

// saveLocked is the save path shared with DeleteUserPost; s.mu must be held.
func (s *PostStore) saveLocked(userID int64, posts map[string]models.Post) error {
	// Id uniqueness is global: an id cached for another user cannot be
	// claimed, no matter what the caller's availability check saw earlier.
	for postID := range posts {
		if cached, ok := s.cache[postID]; ok && cached.UserID != userID {
			return fmt.Errorf("post id %q: %w", postID, storage.ErrPostIDTaken)
		}
	}

	for postID, post := range posts {
		post.UserID = userID
		fillCallbackIDs(postID, post.Buttons)
		posts[postID] = post
	}

	data, err := json.MarshalIndent(posts, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal posts for user %d: %w", userID, err)
	}
	path := s.userFile(userID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("Failed to write posts file",
			zap.String("path", path),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("write posts for user %d: %w", userID, err)
	}

	// Registry entries for the affected posts are rebuilt, not merged, and
	// only once the file write succeeded; a failed write leaves the registry
	// and the cache exactly as they were.
	for postID, cached := range s.cache {
		if cached.UserID != userID {
			continue
		}
		if _, kept := posts[postID]; !kept {
			s.unregisterButtons(cached.Buttons)
			delete(s.cache, postID)
		}
	}
	for postID, post := range posts {
		if cached, ok := s.cache[postID]; ok {
			s.unregisterButtons(cached.Buttons)
		}
		registerButtons(post.Buttons, s.registry.Register)
		s.cache[postID] = post
	}

	s.logger.Info("Saved posts",
		zap.Int64("user_id", userID),
		zap.Int("count", len(posts)),
	)
	return nil
}

// DeleteUserPost removes the post from the user's persisted mapping,
// unregisters its button notifications and purges the cache entry.
func (s *PostStore) DeleteUserPost(userID int64, postID string) (bool, error) {
	posts := s.LoadUserPosts(userID)
	if _, ok := posts[postID]; !ok {
		s.logger.Warn("Post not found",
			zap.String("post_id", postID),
			zap.Int64("user_id", userID),
		)
		return false, nil
	}
	delete(posts, postID)

	s.mu.Lock()
	defer s.mu.Unlock()
	// saveLocked unregisters the removed post's buttons and purges its cache
	// entry after the shrunk mapping is durably written.
	if err := s.saveLocked(userID, posts); err != nil {
		return false, err
	}

	s.logger.Info("Deleted post",
		zap.String("post_id", postID),
		zap.Int64("user_id", userID),
	)
	return true, nil
}

// IsPostAvailable reports whether no post anywhere currently holds the id.
func (s *PostStore) IsPostAvailable(postID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.cache[postID]
	return !taken
}

// GetPost returns a post from the global cache.
func (s *PostStore) GetPost(postID string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.cache[postID]
	return post, ok
}

// AllPosts returns a snapshot of the global cache.
func (s *PostStore) AllPosts() map[string]models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]models.Post, len(s.cache))
	for postID, post := range s.cache {
		snapshot[postID] = post
	}
	return snapshot
}

// GetNotification resolves a callback id against the notification registry.
func (s *PostStore) GetNotification(callbackID string) (models.Notification, bool) {
	return s.registry.Lookup(callbackID)
}

// LoadAll rebuilds the cache and the notification registry by scanning every
// per-user posts file in the directory. The fresh cache and registry are
// swapped in whole, so concurrent readers never see a half-built state.
func (s *PostStore) LoadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("Failed to scan posts directory",
			zap.String("dir", s.dir),
			zap.Error(err),
		)
		return fmt.Errorf("scan posts dir: %w", err)
	}

	cache := make(map[string]models.Post)
	notifications := make(map[string]models.Notification)
	files := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		userID, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix), 10, 64)
		if err != nil {
			s.logger.Warn("Skipping posts file with unexpected name", zap.String("file", name))
			continue
		}

		for postID, post := range s.LoadUserPosts(userID) {
			post.UserID = userID
			fillCallbackIDs(postID, post.Buttons)
			registerButtons(post.Buttons, func(callbackID string, n models.Notification) {
				notifications[callbackID] = n
			})
			cache[postID] = post
		}
		files++
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
	s.registry.Reset(notifications)

	s.logger.Info("Loaded posts",
		zap.Int("posts", len(cache)),
		zap.Int("files", files),
	)
	return nil
}

// fillCallbackIDs synthesizes callback ids for notification and copy buttons
// that lack one, covering hand-edited files. The filled rows are what gets
// persisted, so the ids stay stable across reloads.
func fillCallbackIDs(postID string, rows [][]models.Button) {
	for rowIdx, row := range rows {
		for colIdx, btn := range row {
			if btn.CallbackData != "" {
				continue
			}
			switch {
			case btn.Notification != "":
				rows[rowIdx][colIdx].CallbackData = buttons.NotificationCallbackID(postID, rowIdx, colIdx, btn.ShowAlert)
			case btn.CopyText != "":
				rows[rowIdx][colIdx].CallbackData = buttons.CopyCallbackID()
			}
		}
	}
}

// registerButtons emits the notification payload for every notification and
// copy button; callback ids must already be filled in. Copy buttons are
// answered with their text as an alert because the Bot API library offers no
// native copy-to-clipboard button.
func registerButtons(rows [][]models.Button, register func(string, models.Notification)) {
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

// unregisterButtons drops the registry entries derived from the given button
// rows; s.mu must be held by the caller.
func (s *PostStore) unregisterButtons(rows [][]models.Button) {
	for _, row := range rows {
		for _, btn := range row {
			if btn.CallbackData == "" {
				continue
			}
			if btn.Notification != "" || btn.CopyText != "" {
				s.registry.Unregister(btn.CallbackData)
			}
		}
	}
}
