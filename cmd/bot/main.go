package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/markdavidb/loan-manager-bot/internal/bot"
	"github.com/markdavidb/loan-manager-bot/internal/cache"
	"github.com/markdavidb/loan-manager-bot/internal/config"
	"github.com/markdavidb/loan-manager-bot/internal/db"
	"github.com/markdavidb/loan-manager-bot/internal/ledger"
	"github.com/markdavidb/loan-manager-bot/internal/repo"
	"github.com/markdavidb/loan-manager-bot/internal/security"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := db.MustConnect(ctx, cfg.DatabaseURL)
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, "./migrations"); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("bot init: %v", err)
	}
	botAPI.Debug = false

	borrowers := repo.NewBorrowers(pool)
	loans := repo.NewLoans(pool)
	access := repo.NewAccess(pool)
	bans := repo.NewBans(pool)

	var viewCache ledger.ViewCache
	if cfg.RedisAddr != "" {
		viewCache = cache.NewLoanViews(cfg.RedisAddr, time.Minute)
	}
	svc := ledger.NewService(borrowers, loans, viewCache)

	limiter := security.NewRateLimiter(cfg.RateWindow)
	defer limiter.Stop()
	guard := security.NewGuard(limiter, bans, access, cfg.RateMaxAttempts)

	h := bot.NewHandler(botAPI, cfg, svc, access, bans, guard)

	// Graceful shutdown
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	log.Printf("Loan Manager Bot started as @%s", botAPI.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			log.Println("shutdown")
			return
		case upd := <-updates:
			h.HandleUpdate(ctx, upd)
		}
	}
}
