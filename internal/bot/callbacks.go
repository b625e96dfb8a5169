package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const postsPageSize = 5

// handleCallbackQuery resolves inline keyboard button presses: post
// notification buttons first, then authoring-flow and post-list actions.
// Unmatched callbacks are acknowledged silently.
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	data := query.Data
	userID := query.From.ID

	// Notification and copy buttons live on shared posts and work for any
	// user, not only admins. The registry is consulted before anything else
	// so user-supplied verbatim callback ids are answered too.
	if data == "void" {
		b.answerCallback(query.ID, "", false)
		return
	}
	if _, ok := b.store.GetNotification(data); ok {
		b.handleNotificationCallback(query)
		return
	}
	if strings.HasPrefix(data, "bt_") || strings.HasPrefix(data, "show_alert_") || strings.HasPrefix(data, "copy_") {
		b.handleNotificationCallback(query)
		return
	}

	// Callbacks from inline-sent messages carry no Message. Only post
	// buttons live on those messages, so the authoring and list actions
	// below are out of reach; a shared post whose button data happens to
	// collide with an action name must not touch anyone's session.
	if query.Message == nil {
		b.answerCallback(query.ID, "", false)
		return
	}

	state := b.state(userID)

	switch {
	case data == "cancel_creation":
		b.clearState(userID)
		b.editText(query.Message.Chat.ID, query.Message.MessageID, "❌ Post creation cancelled", nil)

	case data == "toggle_privacy" && state != nil && state.Step == StepPrivacy:
		state.Draft.Private = !state.Draft.Private
		b.editMarkup(query.Message.Chat.ID, query.Message.MessageID, privacyMarkup(state.Draft.Private))

	case data == "continue_creation" && state != nil && state.Step == StepPrivacy:
		if state.Editing {
			b.showPreview(query.Message.Chat.ID, state)
			break
		}
		state.Step = StepID
		b.editText(query.Message.Chat.ID, query.Message.MessageID,
			"Enter a unique post ID (latin letters, digits, underscores):\nExample: dottore_post_4", nil)

	case data == "no_image" && state != nil && state.Step == StepImage:
		state.Draft.Image = ""
		if state.Editing {
			b.showPreview(query.Message.Chat.ID, state)
			break
		}
		state.Step = StepButtons
		b.editText(query.Message.Chat.ID, query.Message.MessageID, buttonSyntaxHelp+"\n\nOr press 'No buttons'.", markupPtr(buttonsMarkup()))

	case data == "no_buttons" && state != nil && state.Step == StepButtons:
		state.Draft.Buttons = nil
		b.showPreview(query.Message.Chat.ID, state)

	case data == "edit_post" && state != nil && state.Step == StepPreview:
		state.Step = StepEditChoice
		b.editText(query.Message.Chat.ID, query.Message.MessageID, "Choose what to change:", markupPtr(editFieldMarkup()))

	case data == "back_to_preview" && state != nil:
		b.showPreview(query.Message.Chat.ID, state)

	case strings.HasPrefix(data, "edit_field:") && state != nil && state.Step == StepEditChoice:
		b.handleEditFieldCallback(query, state, strings.TrimPrefix(data, "edit_field:"))

	case data == "confirm_post" && state != nil && state.Step == StepPreview:
		b.confirmPost(query, state)
		return // confirmPost answers the query itself

	case data == "open_post_list":
		b.sendPostsList(query.Message.Chat.ID, userID, 0, query.Message.MessageID)

	case strings.HasPrefix(data, "post_list_page_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "post_list_page_"))
		if err != nil {
			b.answerCallback(query.ID, "Invalid page", true)
			return
		}
		b.sendPostsList(query.Message.Chat.ID, userID, page, query.Message.MessageID)

	case data == "close_list":
		b.deleteMessage(query.Message.Chat.ID, query.Message.MessageID)

	case strings.HasPrefix(data, "view_post_"):
		b.handleViewPostCallback(query, strings.TrimPrefix(data, "view_post_"))

	case strings.HasPrefix(data, "delete_post_"):
		b.handleDeletePostCallback(query, strings.TrimPrefix(data, "delete_post_"))
		return // answered inside
	}

	b.answerCallback(query.ID, "", false)
}

// handleNotificationCallback resolves a press against the notification
// registry. Presses with no matching entry are acknowledged silently.
func (b *Bot) handleNotificationCallback(query *tgbotapi.CallbackQuery) {
	notif, ok := b.store.GetNotification(query.Data)
	if !ok {
		b.answerCallback(query.ID, "", false)
		return
	}
	if !notif.Allows(query.From.ID) {
		message := notif.UnauthorizedMessage
		if message == "" {
			message = "You do not have access to this notification."
		}
		b.answerCallback(query.ID, message, true)
		return
	}
	b.answerCallback(query.ID, notif.Text, notif.ShowAlert)
}

// handleEditFieldCallback routes the edit-choice selection back into the
// matching authoring step; that step returns to the preview on completion.
func (b *Bot) handleEditFieldCallback(query *tgbotapi.CallbackQuery, state *ConversationState, field string) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	state.Editing = true

	switch field {
	case "text":
		state.Step = StepText
		b.editText(chatID, messageID, "Enter the new post text:", markupPtr(cancelMarkup()))
	case "image":
		state.Step = StepImage
		b.editText(chatID, messageID, "Send a new image URL or press 'No image':", markupPtr(imageMarkup()))
	case "buttons":
		state.Step = StepButtons
		b.editText(chatID, messageID, "Send new buttons using the template or press 'No buttons':", markupPtr(buttonsMarkup()))
	case "id":
		state.Step = StepID
		b.editText(chatID, messageID, "Enter the new post ID:", markupPtr(cancelMarkup()))
	case "privacy":
		state.Step = StepPrivacy
		b.editText(chatID, messageID, "Change the post's privacy:", markupPtr(privacyMarkup(state.Draft.Private)))
	default:
		state.Editing = false
	}
}

// sendPostsList renders one page of the user's posts. When editMessageID is
// non-zero the existing list message is edited in place.
func (b *Bot) sendPostsList(chatID, userID int64, page, editMessageID int) {
	posts := b.store.LoadUserPosts(userID)
	if len(posts) == 0 {
		b.sendText(chatID, "No saved posts.")
		return
	}

	postIDs := make([]string, 0, len(posts))
	for postID := range posts {
		postIDs = append(postIDs, postID)
	}
	sort.Strings(postIDs)

	total := len(postIDs)
	pages := (total + postsPageSize - 1) / postsPageSize
	if page < 0 {
		page = 0
	}
	if page > pages-1 {
		page = pages - 1
	}
	start := page * postsPageSize
	end := start + postsPageSize
	if end > total {
		end = total
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, postID := range postIDs[start:end] {
		privacy := "🔓"
		if posts[postID].Private {
			privacy = "🔒"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s Post %s", privacy, postID), "view_post_"+postID),
		))
	}
	if nav := paginationRow("post_list", page, total, postsPageSize); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Close ❌", "close_list"),
	))

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	header := "Your posts:"
	if editMessageID != 0 {
		b.editText(chatID, editMessageID, header, &markup)
		return
	}
	msg := tgbotapi.NewMessage(chatID, header)
	msg.ReplyMarkup = markup
	b.sendMessage(msg)
}

// handleViewPostCallback renders a single post with its stored button layout
// plus a Delete/Back row.
func (b *Bot) handleViewPostCallback(query *tgbotapi.CallbackQuery, postID string) {
	userID := query.From.ID
	posts := b.store.LoadUserPosts(userID)
	post, ok := posts[postID]
	if !ok {
		b.answerCallback(query.ID, "Post not found", true)
		return
	}

	text := post.Text
	if strings.HasPrefix(post.Image, "http") {
		text = hideLink(post.Image) + text
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if markup := buildMarkup(post.Buttons); markup != nil {
		rows = markup.InlineKeyboard
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Delete ❌", "delete_post_"+postID),
		tgbotapi.NewInlineKeyboardButtonData("Back ◀️", "open_post_list"),
	))

	msg := tgbotapi.NewMessage(query.Message.Chat.ID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
	b.deleteMessage(query.Message.Chat.ID, query.Message.MessageID)
}

// handleDeletePostCallback deletes one of the user's posts and returns to
// the list.
func (b *Bot) handleDeletePostCallback(query *tgbotapi.CallbackQuery, postID string) {
	userID := query.From.ID
	deleted, err := b.store.DeleteUserPost(userID, postID)
	if err != nil {
		b.logger.Error("Failed to delete post",
			zap.String("post_id", postID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		b.answerCallback(query.ID, "Failed to delete the post", true)
		return
	}
	if !deleted {
		b.answerCallback(query.ID, "Post not found", true)
		return
	}
	b.answerCallback(query.ID, fmt.Sprintf("Post %s deleted", postID), false)
	b.sendPostsList(query.Message.Chat.ID, userID, 0, query.Message.MessageID)
}

func markupPtr(markup tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &markup
}
