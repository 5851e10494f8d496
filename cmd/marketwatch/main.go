// Command marketwatch prints the configured market overview as a table, using
// the same service path the HTTP API serves.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"trading-gateway/internal/config"
	"trading-gateway/internal/exchange"
	"trading-gateway/internal/exchange/binance"
	"trading-gateway/internal/gateway"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch deadline")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("level=ERROR event=dotenv_load_failed err=%q", err.Error())
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("level=ERROR event=config_load_failed err=%q", err.Error())
		os.Exit(1)
	}

	dial := func(ctx context.Context) (exchange.Exchange, error) {
		return binance.Connect(ctx, cfg.Exchange)
	}
	svc := gateway.New(cfg, dial, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	overview, err := svc.MarketOverview(ctx)
	if err != nil {
		log.Printf("level=ERROR event=overview_failed err=%q", err.Error())
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Price", "24h Change", "Volume", "High", "Low"})
	for _, snap := range overview {
		t.AppendRow(table.Row{snap.Symbol, snap.Price, snap.Change, snap.Volume, snap.High, snap.Low})
	}
	t.Render()
}
