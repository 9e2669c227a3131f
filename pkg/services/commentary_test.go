package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vmkteam/embedlog"
)

// memStates is an in-memory StateStore for tests.
type memStates struct {
	values map[string]string
}

func newMemStates() *memStates {
	return &memStates{values: make(map[string]string)}
}

func (m *memStates) StateValue(_ context.Context, chatID int64, key string) (string, error) {
	return m.values[key], nil
}

func (m *memStates) SetStateValue(_ context.Context, chatID int64, key, value string) error {
	m.values[key] = value
	return nil
}

type scriptedGen struct {
	replies []string
	errs    []error
	calls   int
}

func (g *scriptedGen) GenerateText(context.Context, string, SamplingParams) (string, error) {
	i := g.calls
	g.calls++
	var reply string
	var err error
	if i < len(g.replies) {
		reply = g.replies[i]
	}
	if i < len(g.errs) {
		err = g.errs[i]
	}
	return reply, err
}

func TestFallbackItems(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{500, "перчатки для зала"},
		{10000, "гантели и эспандеры"},
		{30000, "наушники"},
		{100000, "мотоциклетный шлем"},
	}

	for _, tt := range tests {
		items := fallbackItems(tt.total)
		if len(items) == 0 || items[0] != tt.want {
			t.Errorf("fallbackItems(%v)[0] = %v, want %q", tt.total, items, tt.want)
		}
	}
}

func TestPickItem(t *testing.T) {
	ctx := context.Background()
	logger := embedlog.Logger{}

	t.Run("prefers first unseen candidate", func(t *testing.T) {
		states := newMemStates()
		states.values[recentItemsKey] = `["скакалка"]`
		gen := &scriptedGen{replies: []string{`["скакалка", "гиря", "коврик"]`}}

		c := NewCommentary(gen, states, "₽", logger)
		if got := c.PickItem(ctx, 1000, 1); got != "гиря" {
			t.Errorf("PickItem = %q, want гиря", got)
		}
		// The choice moves to the front of the recent list.
		if !strings.HasPrefix(states.values[recentItemsKey], `["гиря"`) {
			t.Errorf("recent list = %q, want гиря first", states.values[recentItemsKey])
		}
	})

	t.Run("provider failure uses tiered fallback", func(t *testing.T) {
		states := newMemStates()
		gen := &scriptedGen{errs: []error{errors.New("quota exceeded")}}

		c := NewCommentary(gen, states, "₽", logger)
		if got := c.PickItem(ctx, 100000, 1); got != "мотоциклетный шлем" {
			t.Errorf("PickItem = %q, want мотоциклетный шлем", got)
		}
	})

	t.Run("non-json reply uses fallback", func(t *testing.T) {
		states := newMemStates()
		gen := &scriptedGen{replies: []string{"вот список: гиря"}}

		c := NewCommentary(gen, states, "₽", logger)
		if got := c.PickItem(ctx, 500, 1); got != "перчатки для зала" {
			t.Errorf("PickItem = %q, want перчатки для зала", got)
		}
	})
}

func TestMotivation(t *testing.T) {
	ctx := context.Background()
	logger := embedlog.Logger{}

	t.Run("generated text passes through", func(t *testing.T) {
		gen := &scriptedGen{replies: []string{`["гиря"]`, "Опять бар? На эти деньги уже была бы гиря."}}
		c := NewCommentary(gen, newMemStates(), "₽", logger)

		quip := c.Motivation(ctx, MotivationRequest{ChatID: 1, Total: 5000, LastAmount: 500, LastCategory: "alcohol"})
		if quip.Fallback {
			t.Error("unexpected fallback")
		}
		if quip.Item != "гиря" {
			t.Errorf("item = %q, want гиря", quip.Item)
		}
		if !strings.Contains(quip.Text, "гиря") {
			t.Errorf("text = %q, want mention of the item", quip.Text)
		}
	})

	t.Run("empty completion falls back deterministically", func(t *testing.T) {
		gen := &scriptedGen{replies: []string{`["гиря"]`, ""}}
		c := NewCommentary(gen, newMemStates(), "₽", logger)

		quip := c.Motivation(ctx, MotivationRequest{ChatID: 1, Total: 5000, LastAmount: 500, LastCategory: "alcohol"})
		if !quip.Fallback {
			t.Fatal("expected fallback quip")
		}
		if !strings.Contains(quip.Text, "alcohol") || !strings.Contains(quip.Text, "гиря") {
			t.Errorf("fallback text = %q, want category and item mentioned", quip.Text)
		}
	})

	t.Run("provider error falls back", func(t *testing.T) {
		gen := &scriptedGen{errs: []error{errors.New("down"), errors.New("down")}}
		c := NewCommentary(gen, newMemStates(), "₽", logger)

		quip := c.Motivation(ctx, MotivationRequest{ChatID: 1, Total: 500, LastAmount: 100, LastCategory: "food"})
		if !quip.Fallback {
			t.Fatal("expected fallback quip")
		}
		if quip.Item == "" {
			t.Error("fallback quip has no item")
		}
	})
}
