package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trading-gateway/internal/alert"
	"trading-gateway/internal/config"
	"trading-gateway/internal/exchange"
	"trading-gateway/internal/exchange/binance"
	"trading-gateway/internal/gateway"
	"trading-gateway/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fatal("dotenv_load_failed", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("config_load_failed", err)
	}

	alerts := buildAlertManager(cfg)
	dial := func(ctx context.Context) (exchange.Exchange, error) {
		return binance.Connect(ctx, cfg.Exchange)
	}
	svc := gateway.New(cfg, dial, alerts)
	srv := server.New(cfg.Server, svc)

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("level=INFO event=server_starting addr=%s", cfg.Server.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Printf("level=INFO event=shutdown_signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server_failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=ERROR event=shutdown_failed err=%q", err.Error())
	}
	if err := alerts.Close(shutdownCtx); err != nil {
		log.Printf("level=WARN event=alert_drain_incomplete err=%q", err.Error())
	}
	log.Printf("level=INFO event=server_stopped")
}

func buildAlertManager(cfg config.Config) *alert.Manager {
	tg := cfg.Observability.Telegram
	if !tg.Enabled {
		return nil
	}
	notifier := alert.NewTelegramNotifier(
		tg.Enabled,
		tg.BotToken,
		tg.ChatID,
		tg.APIBaseURL,
		time.Duration(tg.TimeoutSec)*time.Second,
	)
	return alert.NewManager("trading-gateway", notifier)
}

func fatal(event string, err error) {
	log.Printf("level=ERROR event=%s err=%q", event, err.Error())
	os.Exit(1)
}
