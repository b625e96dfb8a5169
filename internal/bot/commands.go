package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const buttonSyntaxHelp = `Send buttons using this template:
Dead button | void
Notification | msg:For you!
Silent notification | ntf:A message
Link button | https://google.com
Copy button | copy:Text to copy
Inline search | inline:query

Restricted notifications:
Notification | msg:For you! | 123,456 | msg:For everyone else!
No alert | ntf:A message | 789 | msg:No access

Separate buttons in one row with ;
Button1 | void ; Button2 | void
An empty line starts a new row.`

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := fmt.Sprintf(`Welcome, %s! I help you author posts and share them inline. 📔

Available commands:
/new_post - Create a new post
/my_posts - Manage your saved posts
/help - Button syntax reference
/fact - A random fact
/cancel - Abort the current post

Did you know?
%s`, message.From.FirstName, randomFact())

	b.sendText(message.Chat.ID, text)
}

// handleHelp shows the button mini-language reference
func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := "Posts support HTML markup (<b>bold</b>, <i>italic</i> and so on).\n\n" + buttonSyntaxHelp
	b.sendText(message.Chat.ID, text)
}

// handleNewPost initiates the post authoring conversation
func (b *Bot) handleNewPost(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{Step: StepText})

	msg := tgbotapi.NewMessage(message.Chat.ID, "Send the text of your post.\nYou can use markup (bold, italic and the rest)!")
	msg.ReplyMarkup = cancelMarkup()
	b.sendMessage(msg)
}

// handleMyPosts shows the paginated list of the user's posts
func (b *Bot) handleMyPosts(message *tgbotapi.Message) {
	b.sendPostsList(message.Chat.ID, message.From.ID, 0, 0)
}

// handleFact replies with a random fact
func (b *Bot) handleFact(message *tgbotapi.Message) {
	b.sendText(message.Chat.ID, randomFact())
}
