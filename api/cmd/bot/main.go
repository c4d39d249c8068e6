package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/viper"

	"study-helper/api/internal/config"
	"study-helper/api/internal/httpserver"
	"study-helper/api/internal/llm"
	"study-helper/api/internal/telegram"
	"study-helper/api/internal/wire"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatal(err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	app, err := wire.BuildApp(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Log.Sync()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		app.Log.Fatal("telegram login", "error", err)
	}
	bot.Debug = false
	app.Log.Info("telegram authorized", "bot", bot.Self.UserName)

	r := &telegram.Router{
		Bot:            bot,
		Engines:        app.Engines,
		EngManager:     llm.NewManager(app.DefaultEngine()),
		Log:            app.Log,
		ExplainOptions: app.ExplainOptions(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := "0.0.0.0:" + cfg.Port
	if cfg.WebhookURL != "" {
		startWebhookMode(ctx, addr, bot, r, app)
	} else {
		startPollingMode(ctx, addr, bot, r, app)
	}
	r.Wait()
}

func startWebhookMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, app *wire.App) {
	path := telegram.WebhookPath(bot.Token)
	wh, err := tgbotapi.NewWebhook(telegram.WebhookURL(app.Cfg.WebhookURL, bot.Token))
	if err != nil {
		app.Log.Fatal("webhook url", "error", err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		app.Log.Fatal("set webhook", "error", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle(path, telegram.WebhookHandler(bot.HandleUpdate, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	}, app.Log))

	app.Log.Info("webhook mode", "addr", addr)
	if err := httpserver.StartHTTP(ctx, addr, mux, "", app.Log); err != nil {
		app.Log.Error("http server", "error", err)
	}
}

func startPollingMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, app *wire.App) {
	// a previously set webhook blocks getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		app.Log.Warn("delete webhook", "error", err)
	}

	go func() {
		if err := httpserver.StartHTTP(ctx, addr, nil, "ok", app.Log); err != nil {
			app.Log.Error("health server", "error", err)
		}
	}()

	app.Log.Info("polling mode")
	telegram.RunPolling(ctx, bot, app.Log, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}
