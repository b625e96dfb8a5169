package bot

import "math/rand"

// facts shown by /fact and the /start greeting.
var facts = []string{
	"Go was designed at Google in 2007 and released to the public in 2009.",
	"The Go gopher mascot was drawn by Renée French.",
	"A goroutine starts with a stack of only a few kilobytes.",
	"Telegram bots were introduced in June 2015.",
	"Inline mode lets a bot serve content in any chat without being a member.",
	"Telegram callback buttons can show popups without sending a message.",
	"The longest novel ever published is over nine million characters long.",
}

func randomFact() string {
	return facts[rand.Intn(len(facts))]
}
