package bot

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"postbot/internal/buttons"
	"postbot/internal/models"
	"postbot/internal/storage"
)

// imageSentinels are accepted at the image step as "no image".
var imageSentinels = map[string]bool{
	"no":   true,
	"none": true,
	"skip": true,
}

// handleConversation processes text input for the post authoring flow
func (b *Bot) handleConversation(message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case StepText:
		b.handleTextStep(message, state)
	case StepID:
		b.handleIDStep(message, state)
	case StepImage:
		b.handleImageStep(message, state)
	case StepButtons:
		b.handleButtonsStep(message, state)
	default:
		// Privacy, preview and edit-choice advance through buttons only.
		b.sendText(message.Chat.ID, "Please use the buttons above, or /cancel to abort.")
	}
}

// handleTextStep captures the post body. Empty captions are deliberately
// accepted; validation is lenient at this step.
func (b *Bot) handleTextStep(message *tgbotapi.Message, state *ConversationState) {
	text := message.Text
	if text == "" {
		text = message.Caption
	}
	state.Draft.Text = text

	if state.Editing {
		b.showPreview(message.Chat.ID, state)
		return
	}

	state.Step = StepPrivacy
	msg := tgbotapi.NewMessage(message.Chat.ID, "Choose the post's privacy:")
	msg.ReplyMarkup = privacyMarkup(state.Draft.Private)
	b.sendMessage(msg)
}

// handleIDStep validates charset and global availability of the chosen id,
// re-prompting in place on failure without losing collected fields.
func (b *Bot) handleIDStep(message *tgbotapi.Message, state *ConversationState) {
	postID := strings.TrimSpace(message.Text)
	if !models.IsValidPostID(postID) {
		msg := tgbotapi.NewMessage(message.Chat.ID, "The ID may only contain latin letters, digits and underscores.")
		msg.ReplyMarkup = cancelMarkup()
		b.sendMessage(msg)
		return
	}
	if !b.store.IsPostAvailable(postID) && postID != state.Draft.PostID {
		msg := tgbotapi.NewMessage(message.Chat.ID, "This ID is already taken, send another one:")
		msg.ReplyMarkup = cancelMarkup()
		b.sendMessage(msg)
		return
	}

	state.Draft.PostID = postID
	if state.Editing {
		b.showPreview(message.Chat.ID, state)
		return
	}

	state.Step = StepImage
	msg := tgbotapi.NewMessage(message.Chat.ID, "Send an image URL:\nExample: https://example.com/picture.png\n\nOr press 'No image'.")
	msg.ReplyMarkup = imageMarkup()
	b.sendMessage(msg)
}

// handleImageStep accepts a URL or a "none" sentinel. The URL is not fetched
// or validated over the network.
func (b *Bot) handleImageStep(message *tgbotapi.Message, state *ConversationState) {
	image := strings.TrimSpace(message.Text)
	if imageSentinels[strings.ToLower(image)] {
		image = ""
	}
	state.Draft.Image = image

	if state.Editing {
		b.showPreview(message.Chat.ID, state)
		return
	}

	state.Step = StepButtons
	msg := tgbotapi.NewMessage(message.Chat.ID, buttonSyntaxHelp+"\n\nOr press 'No buttons'.")
	msg.ReplyMarkup = buttonsMarkup()
	b.sendMessage(msg)
}

// handleButtonsStep routes the text through the button parser. A parse error
// is shown to the user and the state does not advance.
func (b *Bot) handleButtonsStep(message *tgbotapi.Message, state *ConversationState) {
	rows, err := buttons.Parse(message.Text, state.Draft.PostID)
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("⚠️ %v\n\nFix the line and send the buttons again, or press 'No buttons'.", err))
		msg.ReplyMarkup = buttonsMarkup()
		msg.ParseMode = "" // error text may contain raw user input
		b.sendMessage(msg)
		return
	}

	state.Draft.Buttons = rows
	b.showPreview(message.Chat.ID, state)
}

// showPreview renders the accumulated draft and enters the preview step.
func (b *Bot) showPreview(chatID int64, state *ConversationState) {
	state.Step = StepPreview
	state.Editing = false

	msg := tgbotapi.NewMessage(chatID, previewText(state.Draft))
	msg.ReplyMarkup = previewMarkup()
	msg.DisableWebPagePreview = true
	b.sendMessage(msg)
}

// confirmPost persists the draft as a post and ends the session.
func (b *Bot) confirmPost(query *tgbotapi.CallbackQuery, state *ConversationState) {
	userID := query.From.ID
	draft := state.Draft

	posts := b.store.LoadUserPosts(userID)
	posts[draft.PostID] = models.Post{
		UserID:  userID,
		Text:    draft.Text,
		Image:   draft.Image,
		Buttons: draft.Buttons,
		Private: draft.Private,
	}
	if err := b.store.SaveUserPosts(userID, posts); err != nil {
		if errors.Is(err, storage.ErrPostIDTaken) {
			// Someone claimed the id between the availability check and
			// the save; send the user back to the id step.
			state.Step = StepID
			state.Editing = false
			b.answerCallback(query.ID, "This post ID was just taken by someone else.", true)
			msg := tgbotapi.NewMessage(query.Message.Chat.ID, "This ID is already taken, send another one:")
			msg.ReplyMarkup = cancelMarkup()
			b.sendMessage(msg)
			return
		}
		b.logger.Error("Failed to save post",
			zap.String("post_id", draft.PostID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		// Session kept so the user may retry confirming.
		b.answerCallback(query.ID, "Failed to save the post, please try again.", true)
		return
	}

	b.clearState(userID)

	text := fmt.Sprintf("✅ Post created with ID: <code>%s</code>", draft.PostID)
	if username := b.username(); username != "" {
		text += fmt.Sprintf("\nShare it inline: <code>@%s %s</code>", username, draft.PostID)
	}
	b.editText(query.Message.Chat.ID, query.Message.MessageID, text, nil)
	b.answerCallback(query.ID, "", false)
}
