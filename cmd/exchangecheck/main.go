// Command exchangecheck runs a read-only connectivity check against the
// configured exchange: credentials, liveness, account access and market data.
// It is meant to be run before pointing the gateway at a new key pair.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"trading-gateway/internal/config"
	"trading-gateway/internal/exchange/binance"
)

type checkResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Elapsed string `json:"elapsed"`
}

type report struct {
	BaseURL   string        `json:"base_url"`
	StartedAt time.Time     `json:"started_at"`
	Checks    []checkResult `json:"checks"`
	AllOK     bool          `json:"all_ok"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outJSON := flag.String("out-json", "", "write the report to this file as JSON")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for all checks")
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rep := run(ctx, cfg)
	for _, c := range rep.Checks {
		status := "ok"
		if !c.OK {
			status = "FAIL"
		}
		fmt.Printf("%-16s %-4s %-10s %s\n", c.Name, status, c.Elapsed, c.Detail)
	}
	if *outJSON != "" {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err == nil {
			err = os.WriteFile(*outJSON, data, 0o644)
		}
		if err != nil {
			log.Printf("level=ERROR event=report_write_failed err=%q", err.Error())
			os.Exit(1)
		}
	}
	if !rep.AllOK {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) report {
	rep := report{
		BaseURL:   cfg.Exchange.RestBaseURL,
		StartedAt: time.Now().UTC(),
		AllOK:     true,
	}
	add := func(name string, fn func() (string, error)) bool {
		start := time.Now()
		detail, err := fn()
		res := checkResult{
			Name:    name,
			OK:      err == nil,
			Detail:  detail,
			Elapsed: time.Since(start).Round(time.Millisecond).String(),
		}
		if err != nil {
			res.Detail = err.Error()
			rep.AllOK = false
		}
		rep.Checks = append(rep.Checks, res)
		return err == nil
	}

	if !add("credentials", func() (string, error) {
		if !cfg.Exchange.HasCredentials() {
			return "", fmt.Errorf("api key or secret missing")
		}
		return "", nil
	}) {
		return rep
	}

	client, err := binance.NewClient(cfg.Exchange)
	if err != nil {
		rep.Checks = append(rep.Checks, checkResult{Name: "client", Detail: err.Error(), Elapsed: "0s"})
		rep.AllOK = false
		return rep
	}

	probe := "BTC" + cfg.Market.QuoteAsset

	add("ping", func() (string, error) {
		return "", client.Ping(ctx)
	})
	add("account", func() (string, error) {
		account, err := client.Account(ctx)
		if err != nil {
			return "", err
		}
		funded := 0
		for _, b := range account.Balances {
			if !b.Free.IsZero() || !b.Locked.IsZero() {
				funded++
			}
		}
		return fmt.Sprintf("%d assets with balance", funded), nil
	})
	add("ticker", func() (string, error) {
		price, err := client.TickerPrice(ctx, probe)
		if err != nil {
			return "", err
		}
		if !price.IsPositive() {
			return "", fmt.Errorf("non-positive price %s", price)
		}
		return probe + "=" + price.String(), nil
	})
	add("open_orders", func() (string, error) {
		orders, err := client.OpenOrders(ctx, probe)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d open", len(orders)), nil
	})
	return rep
}
