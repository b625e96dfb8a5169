package bot

import (
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"postbot/internal/models"
	"postbot/internal/storage"
)

// handleInlineQuery serves the inline post search. The store is reloaded
// first so out-of-band file edits are reflected.
func (b *Bot) handleInlineQuery(query *tgbotapi.InlineQuery) {
	if err := b.store.LoadAll(); err != nil {
		// Serve from the stale cache rather than failing the query.
		b.logger.Error("Failed to reload posts for inline query", zap.Error(err))
	}

	results := buildInlineResults(b.store, b.logger, query.From.ID, query.Query)

	b.logger.Info("Answering inline query",
		zap.Int64("user_id", query.From.ID),
		zap.String("query", query.Query),
		zap.Int("results", len(results)),
	)

	if b.api == nil {
		return // For testing
	}
	inlineConf := tgbotapi.InlineConfig{
		InlineQueryID: query.ID,
		IsPersonal:    true,
		CacheTime:     0,
		Results:       results,
	}
	if _, err := b.api.Request(inlineConf); err != nil {
		b.logger.Error("Failed to answer inline query", zap.Error(err))
	}
}

// buildInlineResults filters the global cache to posts visible to the user
// (public or their own) whose id contains the query, case-insensitively.
// A post that cannot be rendered is logged and skipped; one bad post must
// not abort the whole response.
func buildInlineResults(store storage.Storage, logger *zap.Logger, userID int64, query string) []interface{} {
	posts := store.AllPosts()

	postIDs := make([]string, 0, len(posts))
	for postID := range posts {
		postIDs = append(postIDs, postID)
	}
	sort.Strings(postIDs)

	needle := strings.ToLower(strings.TrimSpace(query))

	var results []interface{}
	for _, postID := range postIDs {
		post := posts[postID]
		if post.Private && post.UserID != userID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(postID), needle) {
			continue
		}

		article, ok := buildInlineArticle(postID, post)
		if !ok {
			logger.Warn("Skipping post that cannot be rendered inline", zap.String("post_id", postID))
			continue
		}
		results = append(results, article)
	}
	return results
}

func buildInlineArticle(postID string, post models.Post) (tgbotapi.InlineQueryResultArticle, bool) {
	text := post.Text
	if strings.HasPrefix(post.Image, "http") {
		text = hideLink(post.Image) + text
	}
	if text == "" {
		// Telegram rejects empty message content.
		return tgbotapi.InlineQueryResultArticle{}, false
	}

	article := tgbotapi.NewInlineQueryResultArticleHTML(postID, "Post "+postID, text)
	article.Description = truncate(post.Text, 100)
	if markup := buildMarkup(post.Buttons); markup != nil {
		article.ReplyMarkup = markup
	}
	return article, true
}
