package buttons

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_URLButton(t *testing.T) {
	rows, err := Parse("Open | https://example.com", "p1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 1)

	btn := rows[0][0]
	assert.Equal(t, "Open", btn.Text)
	assert.Equal(t, "https://example.com", btn.URL)
	assert.Empty(t, btn.CallbackData)
}

func TestParse_VoidButton(t *testing.T) {
	rows, err := Parse("Spacer | void", "p1")
	require.NoError(t, err)

	btn := rows[0][0]
	assert.Equal(t, "http://void", btn.URL)
}

func TestParse_NotificationWithAllowListAndUnauthorizedMessage(t *testing.T) {
	rows, err := Parse("Click | msg:Hi there | 10,20 | msg:No access", "p1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 1)

	btn := rows[0][0]
	assert.Equal(t, "Click", btn.Text)
	assert.Equal(t, "Hi there", btn.Notification)
	assert.True(t, btn.ShowAlert)
	assert.Equal(t, []int64{10, 20}, btn.AllowedIDs)
	assert.Equal(t, "No access", btn.UnauthorizedMessage)
	assert.Equal(t, "show_alert_p1_0_0", btn.CallbackData)
}

func TestParse_NotificationWithoutAlert(t *testing.T) {
	rows, err := Parse("Quiet | ntf:Just a note", "p2")
	require.NoError(t, err)

	btn := rows[0][0]
	assert.Equal(t, "Just a note", btn.Notification)
	assert.False(t, btn.ShowAlert)
	assert.Equal(t, "bt_p2_0_0", btn.CallbackData)
}

func TestParse_CopyButton(t *testing.T) {
	rows, err := Parse("Copy me | copy:secret text", "p1")
	require.NoError(t, err)

	btn := rows[0][0]
	assert.Equal(t, "secret text", btn.CopyText)
	assert.True(t, strings.HasPrefix(btn.CallbackData, "copy_"))

	// A second parse of the same spec must not collide.
	again, err := Parse("Copy me | copy:secret text", "p1")
	require.NoError(t, err)
	assert.NotEqual(t, btn.CallbackData, again[0][0].CallbackData)
}

func TestParse_SwitchInlineVariants(t *testing.T) {
	text := "A | inline:q1\nB | inline_current:q2\nC | inline_chosen:"
	rows, err := Parse(text, "p1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 3)

	require.NotNil(t, rows[0][0].SwitchInlineQuery)
	assert.Equal(t, "q1", *rows[0][0].SwitchInlineQuery)
	require.NotNil(t, rows[0][1].SwitchInlineQueryCurrentChat)
	assert.Equal(t, "q2", *rows[0][1].SwitchInlineQueryCurrentChat)
	require.NotNil(t, rows[0][2].SwitchInlineQueryChosenChat)
	assert.Equal(t, "", *rows[0][2].SwitchInlineQueryChosenChat)
}

func TestParse_RawCallbackID(t *testing.T) {
	rows, err := Parse("Press | my_custom_action", "p1")
	require.NoError(t, err)

	btn := rows[0][0]
	assert.Equal(t, "my_custom_action", btn.CallbackData)
	assert.Empty(t, btn.Notification)
}

func TestParse_BareNumericListIsAllowListNotCallback(t *testing.T) {
	rows, err := Parse("Gate | msg:vip | 42", "p1")
	require.NoError(t, err)

	btn := rows[0][0]
	assert.Equal(t, []int64{42}, btn.AllowedIDs)
	assert.Equal(t, "show_alert_p1_0_0", btn.CallbackData)
}

func TestParse_RowAndColumnGrouping(t *testing.T) {
	text := "A | void ; B | void\nC | void\n\nD | void"
	rows, err := Parse(text, "p1")
	require.NoError(t, err)
	// First row accumulates until the blank line, second row holds D.
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 1)
	assert.Equal(t, "D", rows[1][0].Text)
}

func TestParse_NotificationCallbackReflectsPosition(t *testing.T) {
	text := "A | void ; B | msg:hi\n\nC | ntf:lo"
	rows, err := Parse(text, "post")
	require.NoError(t, err)

	assert.Equal(t, "show_alert_post_0_1", rows[0][1].CallbackData)
	assert.Equal(t, "bt_post_1_0", rows[1][0].CallbackData)
}

func TestParse_MissingDelimiter(t *testing.T) {
	_, err := Parse("Good | void\nBadButton", "p1")
	require.Error(t, err)

	var specErr *SpecError
	require.ErrorAs(t, err, &specErr)
	assert.Equal(t, "BadButton", specErr.Spec)
}

func TestParse_EmptyLabel(t *testing.T) {
	_, err := Parse("| void", "p1")
	require.Error(t, err)

	var specErr *SpecError
	assert.ErrorAs(t, err, &specErr)
}

func TestParse_EmptyInput(t *testing.T) {
	rows, err := Parse("", "p1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_Reparse_PreservesStructure(t *testing.T) {
	text := "One | https://example.com ; Two | msg:hey\nThree | copy:abc"
	first, err := Parse(text, "p1")
	require.NoError(t, err)
	second, err := Parse(text, "p1")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, len(first[i]), len(second[i]))
		for j := range first[i] {
			assert.Equal(t, first[i][j].Text, second[i][j].Text)
			assert.Equal(t, first[i][j].URL, second[i][j].URL)
			assert.Equal(t, first[i][j].Notification, second[i][j].Notification)
			assert.Equal(t, first[i][j].CopyText, second[i][j].CopyText)
		}
	}
}
