package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"postbot/internal/models"
)

func cancelMarkup() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_creation"),
		),
	)
}

func privacyMarkup(private bool) tgbotapi.InlineKeyboardMarkup {
	label := "🔓 Public"
	if private {
		label = "🔒 Private"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "toggle_privacy"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Continue ➡️", "continue_creation"),
		),
	)
}

func imageMarkup() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 No image", "no_image"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_creation"),
		),
	)
}

func buttonsMarkup() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 No buttons", "no_buttons"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_creation"),
		),
	)
}

func previewMarkup() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Edit", "edit_post"),
			tgbotapi.NewInlineKeyboardButtonData("Confirm", "confirm_post"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel creation", "cancel_creation"),
		),
	)
}

func editFieldMarkup() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Text", "edit_field:text"),
			tgbotapi.NewInlineKeyboardButtonData("Image", "edit_field:image"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Buttons", "edit_field:buttons"),
			tgbotapi.NewInlineKeyboardButtonData("ID", "edit_field:id"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Privacy", "edit_field:privacy"),
			tgbotapi.NewInlineKeyboardButtonData("Back", "back_to_preview"),
		),
	)
}

// buildMarkup turns stored button rows into an inline keyboard. Action fields
// are checked in a fixed priority order; a URL ending in "void" renders as a
// dead callback button, copy buttons render as callback buttons answered by
// the notification registry, and chosen-chat switch buttons degrade to the
// plain switch-inline field the Bot API library supports.
func buildMarkup(rows [][]models.Button) *tgbotapi.InlineKeyboardMarkup {
	var kbRows [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var kbRow []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			if btn.Text == "" {
				continue
			}
			switch {
			case btn.URL != "":
				if strings.HasSuffix(strings.ToLower(btn.URL), "void") {
					kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(btn.Text, "void"))
				} else {
					kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
				}
			case btn.SwitchInlineQuery != nil:
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonSwitch(btn.Text, *btn.SwitchInlineQuery))
			case btn.SwitchInlineQueryCurrentChat != nil:
				kbRow = append(kbRow, tgbotapi.InlineKeyboardButton{
					Text:                         btn.Text,
					SwitchInlineQueryCurrentChat: btn.SwitchInlineQueryCurrentChat,
				})
			case btn.SwitchInlineQueryChosenChat != nil:
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonSwitch(btn.Text, *btn.SwitchInlineQueryChosenChat))
			case btn.CallbackData != "":
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
			}
		}
		if len(kbRow) > 0 {
			kbRows = append(kbRows, kbRow)
		}
	}
	if len(kbRows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	return &markup
}

// paginationRow builds ←/→ navigation buttons for a paged list.
func paginationRow(action string, page, total, perPage int) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("←", fmt.Sprintf("%s_page_%d", action, page-1)))
	}
	if (page+1)*perPage < total {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("→", fmt.Sprintf("%s_page_%d", action, page+1)))
	}
	return row
}

// previewText renders the draft summary shown at the preview step.
func previewText(draft Draft) string {
	var sb strings.Builder
	sb.WriteString("<b>POST PREVIEW</b>\n\n")
	sb.WriteString(draft.Text)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "🆔 ID: <code>%s</code>\n", draft.PostID)
	if draft.Private {
		sb.WriteString("🔒 Privacy: private\n")
	} else {
		sb.WriteString("🔓 Privacy: public\n")
	}
	if draft.Image != "" {
		fmt.Fprintf(&sb, "🖼 Image: %s\n", draft.Image)
	} else {
		sb.WriteString("🖼 Image: none\n")
	}
	if len(draft.Buttons) > 0 {
		sb.WriteString("\n🔘 Buttons:\n")
		for _, row := range draft.Buttons {
			labels := make([]string, 0, len(row))
			for _, btn := range row {
				labels = append(labels, btn.Text)
			}
			sb.WriteString(strings.Join(labels, " | "))
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("\n🔘 Buttons: none\n")
	}
	return sb.String()
}

// hideLink produces an invisible HTML link so the image shows above the text
// without a separate photo upload.
func hideLink(url string) string {
	return fmt.Sprintf("<a href=\"%s\">&#8203;</a>", url)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
