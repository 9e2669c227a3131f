package app

import (
	"context"
	"time"

	"github.com/benderoz/BUH-uchet/pkg/db"
	"github.com/benderoz/BUH-uchet/pkg/ledger"
	"github.com/benderoz/BUH-uchet/pkg/services"
	"github.com/benderoz/BUH-uchet/pkg/telegram"

	monitor "github.com/hypnoglow/go-pg-monitor"
	"github.com/labstack/echo/v4"
	"github.com/vmkteam/appkit"
	"github.com/vmkteam/embedlog"
)

type App struct {
	embedlog.Logger
	appName string
	cfg     Config
	db      db.DB
	mon     *monitor.Monitor
	echo    *echo.Echo
	ledger  *ledger.Manager
	gemini  *services.Gemini
	tgBot   *telegram.Bot
}

func New(ctx context.Context, appName string, sl embedlog.Logger, cfg Config, dbc db.DB) (*App, error) {
	a := &App{
		appName: appName,
		cfg:     cfg,
		db:      dbc,
		echo:    appkit.NewEcho(),
		Logger:  sl,
	}

	loc, err := time.LoadLocation(cfg.Bot.TimeZone)
	if err != nil {
		return nil, err
	}
	clock := ledger.NewClock(loc, time.Weekday(cfg.Bot.WeekStart))

	a.ledger = ledger.NewManager(dbc, clock, sl)

	// Commentary and images run against Gemini; without a key they fall back
	// to deterministic local content.
	var textGen services.TextGenerator
	var imageGen services.ImageGenerator
	if cfg.Gemini.APIKey != "" {
		gemini, err := services.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.TextModel, cfg.Gemini.ImageModel, sl)
		if err != nil {
			return nil, err
		}
		a.gemini = gemini
		textGen, imageGen = gemini, gemini
	} else {
		sl.Print(ctx, "gemini api key is empty, using local fallbacks only")
		textGen = services.NewMockTextGenerator(sl, "")
		imageGen = nil
	}

	commentary := services.NewCommentary(textGen, a.ledger, cfg.Bot.DefaultCurrency, sl)
	images := services.NewImageService(imageGen, sl)

	if cfg.Telegram.Token != "" {
		tgBot, err := telegram.New(telegram.Config{
			Token:           cfg.Telegram.Token,
			Debug:           cfg.Telegram.Debug,
			Admins:          cfg.Bot.Admins,
			AllowedChatID:   cfg.Bot.AllowedChatID,
			DefaultCurrency: cfg.Bot.DefaultCurrency,
		}, a.ledger, commentary, images, sl)
		if err != nil {
			return nil, err
		}
		a.tgBot = tgBot
	}

	return a, nil
}

// Run is a function that runs application.
func (a *App) Run(ctx context.Context) error {
	a.registerMetrics()
	a.restoreMetrics(ctx)
	a.registerHandlers()
	a.registerDebugHandlers()
	a.registerMetadata()

	// Start Telegram bot if configured
	if a.tgBot != nil {
		go func() {
			if err := a.tgBot.Start(ctx); err != nil {
				a.Error(ctx, "telegram bot error", "err", err)
			}
		}()
	}

	return a.runHTTPServer(ctx, a.cfg.Server.Host, a.cfg.Server.Port)
}

// Shutdown is a function that gracefully stops HTTP server.
func (a *App) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop Telegram bot
	if a.tgBot != nil {
		a.tgBot.Stop(ctx)
	}

	if a.gemini != nil {
		a.gemini.Close()
	}

	a.mon.Close()

	return a.echo.Shutdown(ctx)
}

// registerMetadata is a function that registers meta info from service.
func (a *App) registerMetadata() {
	svcs := []appkit.ServiceMetadata{}
	if a.tgBot != nil {
		// Telegram bot runs asynchronously in a separate goroutine
		svcs = append(svcs, appkit.NewServiceMetadata("telegram-bot", appkit.MetadataServiceTypeAsync))
	}
	if a.gemini != nil {
		svcs = append(svcs, appkit.NewServiceMetadata("gemini", appkit.MetadataServiceTypeAsync))
	}

	opts := appkit.MetadataOpts{
		HasPublicAPI:  false, // No public API, only Telegram bot
		HasPrivateAPI: false,
		DBs: []appkit.DBMetadata{
			appkit.NewDBMetadata(a.cfg.Database.Database, a.cfg.Database.PoolSize, false),
		},
		Services: svcs,
	}

	md := appkit.NewMetadataManager(opts)
	md.RegisterMetrics()

	a.echo.GET("/debug/metadata", md.Handler)
}
