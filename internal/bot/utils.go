package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendMessage sends a message, applying the configured parse mode
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if b.api == nil {
		return // For testing
	}
	if msg.ParseMode == "" {
		msg.ParseMode = b.parseMode
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.Error(err),
		)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// editText edits an existing message's text and, optionally, its keyboard.
func (b *Bot) editText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if b.api == nil {
		return // For testing
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = b.parseMode
	edit.ReplyMarkup = markup
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}

func (b *Bot) editMarkup(chatID int64, messageID int, markup tgbotapi.InlineKeyboardMarkup) {
	if b.api == nil {
		return // For testing
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message markup",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Error("Failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}

// answerCallback acknowledges a callback query, optionally with alert text.
func (b *Bot) answerCallback(callbackID, text string, showAlert bool) {
	if b.api == nil {
		return // For testing
	}
	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = showAlert
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("Failed to answer callback query", zap.Error(err))
	}
}

func (b *Bot) username() string {
	if b.api == nil {
		return "" // For testing
	}
	return b.api.Self.UserName
}
