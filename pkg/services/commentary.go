package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/vmkteam/embedlog"
)

const (
	recentItemsKey = "recent_items"
	recentItemsCap = 5
)

// interests steer the purchase-idea prompt.
var interests = []string{
	"спорт (качалка)", "авто", "мотоциклы", "одежда", "секс",
	"техника", "еда", "кулинария", "тяжёлая музыка", "концерты",
}

// StateStore is the chat-scoped key-value memory used for recent items.
// Satisfied by ledger.Manager.
type StateStore interface {
	StateValue(ctx context.Context, chatID int64, key string) (string, error)
	SetStateValue(ctx context.Context, chatID int64, key, value string) error
}

// Quip is a generated comment. Fallback marks locally built text substituted
// after a provider failure; it is never surfaced to the user as an error.
type Quip struct {
	Text     string
	Item     string
	Fallback bool
}

// MotivationRequest carries everything the commentary prompt needs.
type MotivationRequest struct {
	ChatID       int64
	Total        float64
	LastAmount   float64
	LastCategory string
	Style        string
}

// Commentary builds satirical replies about the chat's spending.
type Commentary struct {
	gen      TextGenerator
	states   StateStore
	currency string
	logger   embedlog.Logger
}

// NewCommentary creates a commentary service.
func NewCommentary(gen TextGenerator, states StateStore, currency string, logger embedlog.Logger) *Commentary {
	return &Commentary{
		gen:      gen,
		states:   states,
		currency: currency,
		logger:   logger,
	}
}

// loadRecent reads the recently suggested items of a chat. Any decode problem
// degrades to an empty list.
func (c *Commentary) loadRecent(ctx context.Context, chatID int64) []string {
	raw, err := c.states.StateValue(ctx, chatID, recentItemsKey)
	if err != nil || raw == "" {
		return nil
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	if len(items) > recentItemsCap {
		items = items[:recentItemsCap]
	}

	return items
}

// saveRecent persists the recently suggested items of a chat, capped so the
// key stays bounded.
func (c *Commentary) saveRecent(ctx context.Context, chatID int64, items []string) {
	if len(items) > recentItemsCap {
		items = items[:recentItemsCap]
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.states.SetStateValue(ctx, chatID, recentItemsKey, string(raw)); err != nil {
		c.logger.Error(ctx, "failed to save recent items", "err", err, "chat_id", chatID)
	}
}

// askItems requests purchase-idea candidates from the model. The model must
// answer with a bare JSON array of short item names.
func (c *Commentary) askItems(ctx context.Context, total float64, n int, recent []string) ([]string, error) {
	recentJSON, _ := json.Marshal(recent)
	prompt := fmt.Sprintf(
		"Ты помощник по покупкам. Дай ИДЕИ ПРЕДМЕТОВ строго на основе ОБЩЕЙ суммы за весь период (не последней траты). "+
			"Ответь ТОЛЬКО JSON массивом коротких названий вещей, без брендов и эмодзи.\n"+
			"Интересы: %s\n"+
			"Общая сумма за весь период: %.0f %s\n"+
			"Избегай повторов из недавнего списка: %s\n"+
			"Сколько вариантов нужно: %d",
		strings.Join(interests, ", "), total, c.currency, recentJSON, n,
	)

	text, err := c.gen.GenerateText(ctx, prompt, SamplingParams{Temperature: 1.1, TopP: 0.95, TopK: 50})
	if err != nil {
		return nil, err
	}

	var items []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &items); err != nil {
		return nil, fmt.Errorf("item list is not a json array: %w", err)
	}

	clean := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			clean = append(clean, item)
		}
	}

	return clean, nil
}

// fallbackItems returns static purchase ideas tiered by the running total.
func fallbackItems(total float64) []string {
	switch {
	case total < 8000:
		return []string{"перчатки для зала", "скакалка", "крепления для турника", "шейкер и креатин"}
	case total < 20000:
		return []string{"гантели и эспандеры", "чугунная сковорода", "нож шефа", "билеты на концерт"}
	case total < 50000:
		return []string{"наушники", "абонемент в зал на 6 мес.", "экшн-камера", "кожаная куртка"}
	default:
		return []string{"мотоциклетный шлем", "часть комплекта резины", "инструменты для гаража", "часть айфона"}
	}
}

// PickItem chooses a purchase idea for the running total: the first candidate
// not on the recent list, else a random one. The choice is pushed onto the
// recent list.
func (c *Commentary) PickItem(ctx context.Context, total float64, chatID int64) string {
	recent := c.loadRecent(ctx, chatID)

	candidates, err := c.askItems(ctx, total, 8, recent)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			c.logger.Print(ctx, "item generation failed, using fallback tier", "err", err)
		}
		candidates = fallbackItems(total)
	}

	choice := ""
	for _, cand := range candidates {
		if !contains(recent, cand) {
			choice = cand
			break
		}
	}
	if choice == "" {
		choice = candidates[rand.Intn(len(candidates))]
	}

	updated := append([]string{choice}, remove(recent, choice)...)
	c.saveRecent(ctx, chatID, updated)

	return choice
}

// Motivation generates a satirical quip about the last expense against the
// all-time total. Any provider failure yields deterministic fallback text.
func (c *Commentary) Motivation(ctx context.Context, req MotivationRequest) Quip {
	item := c.PickItem(ctx, req.Total, req.ChatID)

	style := req.Style
	if style == "" {
		style = "чёрный юмор с матерком"
	}

	prompt := fmt.Sprintf(
		"Мы вдвоём ведём учёт трат. Используй ОБЩУЮ сумму за весь период для сравнений (не последнюю трату). "+
			"Последняя трата: %.0f %s на '%s'. "+
			"Общая сумма за весь период: %.0f %s. "+
			"Сгенерируй 1–2 очень коротких предложения, стиль: %s, без эмодзи. "+
			"Избегай дискриминации групп и прямых угроз, но допускай сарказм и жёсткость. "+
			"Упомяни предмет, который реально можно было бы купить на общую сумму: %s. "+
			"Формулируй свежо, не повторяйся.",
		req.LastAmount, c.currency, req.LastCategory, req.Total, c.currency, style, item,
	)

	text, err := c.gen.GenerateText(ctx, prompt, SamplingParams{Temperature: 1.25, TopP: 0.95, TopK: 40})
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			c.logger.Print(ctx, "motivation generation failed, using fallback", "err", err)
		}
		return Quip{
			Text:     fmt.Sprintf("Жгите дальше в '%s'. На %.0f %s уже взяли бы: %s.", req.LastCategory, req.Total, c.currency, item),
			Item:     item,
			Fallback: true,
		}
	}

	return Quip{Text: strings.TrimSpace(text), Item: item}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
