// Package buttons parses the line-oriented mini-language users write button
// layouts in. Each line holds one or more specs separated by ';', a spec is
// "label | action | extra..." and a blank line closes the current row.
package buttons

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"postbot/internal/models"
)

// SpecError reports a button spec that could not be parsed, identifying the
// offending line so the user can fix it.
type SpecError struct {
	Spec string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("malformed button spec: %q", e.Spec)
}

var allowedIDsPattern = regexp.MustCompile(`^\d+(?:\s*,\s*\d+)*$`)

// Parse turns free-form button text into ordered rows of button descriptors.
// Row and column order is preserved. Notification-bearing buttons get a
// callback id synthesized from the post id and their position.
func Parse(text, postID string) ([][]models.Button, error) {
	var rows [][]models.Button
	var row []models.Button

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			if len(row) > 0 {
				rows = append(rows, row)
				row = nil
			}
			continue
		}
		for _, spec := range strings.Split(line, ";") {
			spec = strings.TrimSpace(spec)
			if spec == "" {
				continue
			}
			btn, err := parseSpec(spec, postID, len(rows), len(row))
			if err != nil {
				return nil, err
			}
			row = append(row, btn)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows, nil
}

// parseSpec parses a single "label | action | extra..." spec. Extras are
// matched left to right in a fixed priority order, so a bare numeric list is
// always an allow-list and a second msg: token only becomes the unauthorized
// message once a notification and an allow-list are both present.
func parseSpec(spec, postID string, rowIdx, colIdx int) (models.Button, error) {
	parts := strings.Split(spec, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" {
		return models.Button{}, &SpecError{Spec: spec}
	}

	btn := models.Button{Text: parts[0]}
	var (
		notification    string
		hasNotification bool
		showAlert       bool
		allowedIDs      []int64
		unauthorized    string
	)

	for _, part := range parts[1:] {
		switch {
		case part == "void":
			btn.URL = "http://void"
		case strings.HasPrefix(part, "http://"), strings.HasPrefix(part, "https://"), strings.HasPrefix(part, "tg://"):
			btn.URL = part
		case strings.HasPrefix(part, "msg:") && !hasNotification:
			notification = strings.TrimPrefix(part, "msg:")
			hasNotification = true
			showAlert = true
		case (strings.HasPrefix(part, "ntf:") || strings.HasPrefix(part, "notification:")) && !hasNotification:
			_, notification, _ = strings.Cut(part, ":")
			hasNotification = true
		case allowedIDsPattern.MatchString(part):
			for _, field := range strings.Split(part, ",") {
				id, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
				if err != nil {
					return models.Button{}, &SpecError{Spec: spec}
				}
				allowedIDs = append(allowedIDs, id)
			}
		case strings.HasPrefix(part, "msg:") && hasNotification && allowedIDs != nil:
			unauthorized = strings.TrimPrefix(part, "msg:")
		case strings.HasPrefix(part, "copy:"):
			btn.CallbackData = CopyCallbackID()
			btn.CopyText = strings.TrimPrefix(part, "copy:")
		case strings.HasPrefix(part, "inline:"):
			query := strings.TrimPrefix(part, "inline:")
			btn.SwitchInlineQuery = &query
		case strings.HasPrefix(part, "inline_current:"):
			query := strings.TrimPrefix(part, "inline_current:")
			btn.SwitchInlineQueryCurrentChat = &query
		case strings.HasPrefix(part, "inline_chosen:"):
			query := strings.TrimPrefix(part, "inline_chosen:")
			btn.SwitchInlineQueryChosenChat = &query
		default:
			if btn.CallbackData == "" && btn.URL == "" {
				btn.CallbackData = part
			}
		}
	}

	if hasNotification {
		btn.CallbackData = NotificationCallbackID(postID, rowIdx, colIdx, showAlert)
		btn.Notification = notification
		btn.ShowAlert = showAlert
	}
	if allowedIDs != nil {
		btn.AllowedIDs = allowedIDs
	}
	if unauthorized != "" {
		btn.UnauthorizedMessage = unauthorized
	}
	return btn, nil
}

// NotificationCallbackID builds the deterministic callback id of a
// notification button from the post id and the button position.
func NotificationCallbackID(postID string, rowIdx, colIdx int, showAlert bool) string {
	prefix := "bt_"
	if showAlert {
		prefix = "show_alert_"
	}
	return fmt.Sprintf("%s%s_%d_%d", prefix, postID, rowIdx, colIdx)
}

// CopyCallbackID builds a randomized callback id for a copy-to-clipboard
// button. The random suffix avoids collisions across regenerations of the
// same post.
func CopyCallbackID() string {
	return "copy_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
