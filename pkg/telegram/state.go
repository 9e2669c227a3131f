package telegram

import (
	"sync"
)

// StateManager holds process-lifetime conversational state. Everything here is
// ephemeral and tolerates loss on restart: the commentary style falls back to
// the default and a pending wishlist prompt simply expires.
type StateManager struct {
	mu           sync.RWMutex
	styles       map[int64]string // chat id -> commentary style
	awaitingWish map[int64]bool   // tg user id -> next text message is a wishlist item
}

// NewStateManager creates a new state manager.
func NewStateManager() *StateManager {
	return &StateManager{
		styles:       make(map[int64]string),
		awaitingWish: make(map[int64]bool),
	}
}

// Style returns the commentary style chosen for a chat, empty when unset.
func (sm *StateManager) Style(chatID int64) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.styles[chatID]
}

// SetStyle stores the commentary style for a chat.
func (sm *StateManager) SetStyle(chatID int64, style string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.styles[chatID] = style
}

// SetAwaitingWish marks that the user's next text message is a wishlist item.
func (sm *StateManager) SetAwaitingWish(tgUserID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.awaitingWish[tgUserID] = true
}

// TakeAwaitingWish reports and clears the pending wishlist flag in one step, so
// two racing messages cannot both consume it.
func (sm *StateManager) TakeAwaitingWish(tgUserID int64) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.awaitingWish[tgUserID] {
		return false
	}
	delete(sm.awaitingWish, tgUserID)

	return true
}
