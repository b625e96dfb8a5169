package models

import "regexp"

// postIDPattern restricts post identifiers to latin letters, digits and
// underscores. Ids are compared case-sensitively.
var postIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// IsValidPostID reports whether id may be used as a post identifier.
func IsValidPostID(id string) bool {
	return postIDPattern.MatchString(id)
}

// Button describes one inline keyboard button of a post. Exactly one action
// field is set: URL, CallbackData, CopyText or one of the switch-inline
// variants. A callback-bearing button may additionally carry a notification
// shown when the button is pressed.
type Button struct {
	Text string `json:"text"`

	URL                          string  `json:"url,omitempty"`
	CallbackData                 string  `json:"callback_data,omitempty"`
	CopyText                     string  `json:"copy_text,omitempty"`
	SwitchInlineQuery            *string `json:"switch_inline_query,omitempty"`
	SwitchInlineQueryCurrentChat *string `json:"switch_inline_query_current_chat,omitempty"`
	SwitchInlineQueryChosenChat  *string `json:"switch_inline_query_chosen_chat,omitempty"`

	Notification        string  `json:"notification,omitempty"`
	ShowAlert           bool    `json:"show_alert,omitempty"`
	AllowedIDs          []int64 `json:"allowed_ids,omitempty"`
	UnauthorizedMessage string  `json:"unauthorized_message,omitempty"`
}

// Notification is the payload answered to a callback query when a
// notification-bearing button is pressed.
type Notification struct {
	Text                string  `json:"text"`
	ShowAlert           bool    `json:"show_alert"`
	AllowedIDs          []int64 `json:"allowed_ids,omitempty"`
	UnauthorizedMessage string  `json:"unauthorized_message,omitempty"`
}

// Allows reports whether the given user may see the notification text.
// An empty allow-list admits everyone.
func (n Notification) Allows(userID int64) bool {
	if len(n.AllowedIDs) == 0 {
		return true
	}
	for _, id := range n.AllowedIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Post is a user-authored message template retrievable by id.
type Post struct {
	UserID  int64      `json:"user_id"`
	Text    string     `json:"text"`
	Image   string     `json:"image"`
	Buttons [][]Button `json:"buttons"`
	Private bool       `json:"private"`
}
