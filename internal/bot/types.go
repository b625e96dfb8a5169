package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"postbot/internal/models"
	"postbot/internal/storage"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api       *tgbotapi.BotAPI
	store     storage.Storage
	admins    map[int64]bool
	states    map[int64]*ConversationState
	statesMu  sync.RWMutex
	parseMode string
	logger    *zap.Logger
}

// Step identifies the current stage of the post authoring conversation.
type Step int

const (
	StepText Step = iota
	StepPrivacy
	StepID
	StepImage
	StepButtons
	StepPreview
	StepEditChoice
)

// Draft accumulates post fields while the authoring conversation runs.
type Draft struct {
	Text    string
	Image   string
	PostID  string
	Private bool
	Buttons [][]models.Button
}

// ConversationState tracks one user's progress through post authoring.
// Editing is set while a single field is revised from the preview; the
// revised step then returns to the preview instead of advancing linearly.
type ConversationState struct {
	Step    Step
	Draft   Draft
	Editing bool
}

// state returns the user's conversation state, or nil when no authoring
// session is active.
func (b *Bot) state(userID int64) *ConversationState {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	return b.states[userID]
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[userID] = state
}

// clearState destroys the user's session. Clearing an absent session is a
// no-op.
func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, userID)
}
