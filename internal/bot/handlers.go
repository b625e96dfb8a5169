package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	if !b.admins[userID] {
		b.logger.Warn("Unauthorized access attempt",
			zap.Int64("user_id", userID),
			zap.String("username", message.From.UserName),
			zap.String("text", message.Text),
		)
		b.sendText(message.Chat.ID, "Sorry, you are not authorized to author posts with this bot.")
		return
	}

	// Check if user is in an authoring conversation
	if state := b.state(userID); state != nil {
		if message.IsCommand() {
			// Any command interrupts the ongoing conversation
			b.clearState(userID)
			if message.Command() == "cancel" {
				b.sendText(message.Chat.ID, "Post creation cancelled.")
				return
			}
		} else {
			b.handleConversation(message, state)
			return
		}
	}

	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "new_post":
		b.handleNewPost(message)
	case "my_posts":
		b.handleMyPosts(message)
	case "fact":
		b.handleFact(message)
	case "cancel":
		b.sendText(message.Chat.ID, "Nothing to cancel.")
	default:
		b.sendText(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}
