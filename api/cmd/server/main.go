package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"study-helper/api/internal/config"
	"study-helper/api/internal/handle"
	"study-helper/api/internal/httpserver"
	"study-helper/api/internal/wire"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatal(err)
	}
	app, err := wire.BuildApp(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	handle.New(app.Engines, app.Log, app.ExplainOptions()...).Register(mux)

	if cfg.GeminiAPIKey == "" {
		app.Log.Warn("GEMINI_API_KEY is not set; explanations will fail until it is")
	}
	app.Log.Info("study-helper server starting", "port", cfg.Port, "engine", cfg.Engine, "model", cfg.GeminiModel)
	if err := httpserver.StartHTTP(ctx, ":"+cfg.Port, mux, "ok", app.Log); err != nil {
		app.Log.Fatal("http server", "error", err)
	}
}
