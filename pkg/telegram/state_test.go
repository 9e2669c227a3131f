package telegram

import "testing"

func TestStateManagerStyle(t *testing.T) {
	sm := NewStateManager()

	if got := sm.Style(1); got != "" {
		t.Errorf("Style() = %q, want empty for unset chat", got)
	}

	sm.SetStyle(1, "дзен-наставник")
	if got := sm.Style(1); got != "дзен-наставник" {
		t.Errorf("Style() = %q, want дзен-наставник", got)
	}
	if got := sm.Style(2); got != "" {
		t.Errorf("Style() leaked across chats: %q", got)
	}
}

func TestStateManagerAwaitingWish(t *testing.T) {
	sm := NewStateManager()

	if sm.TakeAwaitingWish(1) {
		t.Error("TakeAwaitingWish() true without a pending prompt")
	}

	sm.SetAwaitingWish(1)
	if !sm.TakeAwaitingWish(1) {
		t.Error("TakeAwaitingWish() false after SetAwaitingWish")
	}
	// The flag is consumed by the first take.
	if sm.TakeAwaitingWish(1) {
		t.Error("TakeAwaitingWish() true on second take")
	}
}
