package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/benderoz/BUH-uchet/pkg/app"
	"github.com/benderoz/BUH-uchet/pkg/db"

	"github.com/go-pg/pg/v10"
	"github.com/joho/godotenv"
	"github.com/vmkteam/embedlog"
)

const appName = "buh-uchet"

func main() {
	// .env is optional, the environment wins
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	sl := embedlog.NewLogger(true, cfg.Server.IsDevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgdb := pg.Connect(cfg.Database)
	dbc := db.New(pgdb)

	if err := dbc.Ping(ctx); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := dbc.CreateTables(ctx); err != nil {
		log.Fatalf("failed to create tables: %v", err)
	}

	a, err := app.New(ctx, appName, sl, cfg, dbc)
	if err != nil {
		log.Fatalf("failed to create app: %v", err)
	}

	go func() {
		<-ctx.Done()
		sl.Print(ctx, "shutting down", "app", appName)
		if err := a.Shutdown(5 * time.Second); err != nil {
			sl.Error(ctx, "shutdown error", "err", err)
		}
	}()

	if err := a.Run(ctx); err != nil {
		sl.Error(ctx, "app stopped", "err", err)
	}
}
