package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/benderoz/BUH-uchet/pkg/ledger"
	"github.com/benderoz/BUH-uchet/pkg/services"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vmkteam/embedlog"
)

type Bot struct {
	api           *bot.Bot
	logger        embedlog.Logger
	ledger        *ledger.Manager
	commentary    *services.Commentary
	images        *services.ImageService
	stateManager  *StateManager
	admins        map[int64]struct{}
	allowedChatID int64
	currency      string
	debug         bool
}

type Config struct {
	Token           string
	Debug           bool
	Admins          []int64
	AllowedChatID   int64
	DefaultCurrency string
}

// New creates a new Telegram bot instance
func New(cfg Config, ledgerSvc *ledger.Manager, commentary *services.Commentary, images *services.ImageService, logger embedlog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = ledger.DefaultCurrency
	}

	b := &Bot{
		logger:        logger,
		ledger:        ledgerSvc,
		commentary:    commentary,
		images:        images,
		stateManager:  NewStateManager(),
		admins:        make(map[int64]struct{}, len(cfg.Admins)),
		allowedChatID: cfg.AllowedChatID,
		currency:      currency,
		debug:         cfg.Debug,
	}
	for _, id := range cfg.Admins {
		b.admins[id] = struct{}{}
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(defaultHandler(logger)),
	}

	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.api = api

	// Register command handlers
	b.registerHandlers()

	return b, nil
}

// Start starts the bot with long polling
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.Print(ctx, "telegram bot started", "username", me.Username, "id", me.ID)
	b.api.Start(ctx)

	return nil
}

// Stop gracefully stops the bot
func (b *Bot) Stop(ctx context.Context) {
	b.logger.Print(ctx, "stopping telegram bot")
}

// registerHandlers registers all command handlers
func (b *Bot) registerHandlers() {
	// Exact commands without arguments
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.handleStart)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, b.handleHelp)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, b.handleStats)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypeExact, b.handleWeek)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/month", bot.MatchTypeExact, b.handleMonth)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/all", bot.MatchTypeExact, b.handleAll)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/me", bot.MatchTypeExact, b.handleMe)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/undo", bot.MatchTypeExact, b.handleUndo)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/categories", bot.MatchTypeExact, b.handleCategories)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/purge", bot.MatchTypeExact, b.handlePurge)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/chart", bot.MatchTypeExact, b.handleChart)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/wishlist", bot.MatchTypeExact, b.handleWishlist)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/wishrandom", bot.MatchTypeExact, b.handleWishRandom)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/wish", bot.MatchTypeExact, b.handleWishPrompt)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/style", bot.MatchTypeExact, b.handleStyle)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/refphoto", bot.MatchTypeExact, b.handleRefPhoto)

	// Callback query handler for inline keyboards
	b.api.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handleCallback)

	// Text message handler: commands with arguments and the expense pipeline
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, b.handleMessage)
}

// allowed reports whether the chat may use the bot. Zero allowed chat id
// disables the gate.
func (b *Bot) allowed(chatID int64) bool {
	return b.allowedChatID == 0 || chatID == b.allowedChatID
}

// isAdmin reports whether the user is on the admin allow-list.
func (b *Bot) isAdmin(tgUserID int64) bool {
	_, ok := b.admins[tgUserID]
	return ok
}

// defaultHandler handles updates no other handler claimed
func defaultHandler(logger embedlog.Logger) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message != nil {
			logger.Print(ctx, "unhandled update", "text", update.Message.Text, "chat_id", update.Message.Chat.ID)
		}
	}
}
