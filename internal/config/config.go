package config

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Exchange      ExchangeConfig      `yaml:"exchange"`
	Market        MarketConfig        `yaml:"market"`
	Trading       TradingConfig       `yaml:"trading"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	ListenAddr        string `yaml:"listen_addr"`
	RequestTimeoutSec int64  `yaml:"request_timeout_sec"`
	CORSAllowedOrigin string `yaml:"cors_allowed_origin"`
}

type ExchangeConfig struct {
	APIKey         string `yaml:"api_key"`
	APISecret      string `yaml:"api_secret"`
	RestBaseURL    string `yaml:"rest_base_url"`
	RecvWindowMs   int64  `yaml:"recv_window_ms"`
	HTTPTimeoutSec int64  `yaml:"http_timeout_sec"`
}

type MarketConfig struct {
	QuoteAsset      string   `yaml:"quote_asset"`
	ValuedAssets    []string `yaml:"valued_assets"`
	OverviewSymbols []string `yaml:"overview_symbols"`
	HistorySymbols  []string `yaml:"history_symbols"`
}

type TradingConfig struct {
	// MaxOrderNotional rejects limit orders whose price*quantity exceeds it.
	// Zero disables the guard.
	MaxOrderNotional Decimal `yaml:"max_order_notional"`
}

type ObservabilityConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BotToken   string `yaml:"bot_token"`
	ChatID     string `yaml:"chat_id"`
	APIBaseURL string `yaml:"api_base_url"`
	TimeoutSec int64  `yaml:"timeout_sec"`
}

// envOverrides are the deployment knobs; they win over the file so
// credentials never have to live on disk.
type envOverrides struct {
	APIKey    string `envconfig:"BINANCE_API_KEY"`
	APISecret string `envconfig:"BINANCE_SECRET_KEY"`
	Port      string `envconfig:"PORT"`
}

// Load reads the optional yaml file at path, overlays environment overrides,
// and validates the result. An empty path or a missing file yields the
// defaults plus environment.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, err
			}
		} else {
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			if err := dec.Decode(&cfg); err != nil {
				return Config{}, err
			}
			if err := dec.Decode(&struct{}{}); err != io.EOF {
				if err == nil {
					return Config{}, fmt.Errorf("config must contain a single YAML document")
				}
				return Config{}, err
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}
	if env.APIKey != "" {
		c.Exchange.APIKey = env.APIKey
	}
	if env.APISecret != "" {
		c.Exchange.APISecret = env.APISecret
	}
	if env.Port != "" {
		c.Server.ListenAddr = ":" + strings.TrimPrefix(env.Port, ":")
	}
	return nil
}

func (c *Config) normalize() {
	c.Server.ListenAddr = strings.TrimSpace(c.Server.ListenAddr)
	c.Server.CORSAllowedOrigin = strings.TrimSpace(c.Server.CORSAllowedOrigin)
	c.Exchange.APIKey = strings.TrimSpace(c.Exchange.APIKey)
	c.Exchange.APISecret = strings.TrimSpace(c.Exchange.APISecret)
	c.Exchange.RestBaseURL = strings.TrimSpace(c.Exchange.RestBaseURL)
	c.Market.QuoteAsset = strings.ToUpper(strings.TrimSpace(c.Market.QuoteAsset))
	c.Market.ValuedAssets = normalizeSymbols(c.Market.ValuedAssets)
	c.Market.OverviewSymbols = normalizeSymbols(c.Market.OverviewSymbols)
	c.Market.HistorySymbols = normalizeSymbols(c.Market.HistorySymbols)
	c.Observability.Telegram.BotToken = strings.TrimSpace(c.Observability.Telegram.BotToken)
	c.Observability.Telegram.ChatID = strings.TrimSpace(c.Observability.Telegram.ChatID)
	c.Observability.Telegram.APIBaseURL = strings.TrimSpace(c.Observability.Telegram.APIBaseURL)
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8000"
	}
	if c.Server.RequestTimeoutSec == 0 {
		c.Server.RequestTimeoutSec = 30
	}
	if c.Server.CORSAllowedOrigin == "" {
		c.Server.CORSAllowedOrigin = "http://localhost:3000"
	}
	if c.Exchange.RestBaseURL == "" {
		c.Exchange.RestBaseURL = "https://api.binance.com"
	}
	if c.Exchange.RecvWindowMs == 0 {
		c.Exchange.RecvWindowMs = 5000
	}
	if c.Exchange.HTTPTimeoutSec == 0 {
		c.Exchange.HTTPTimeoutSec = 15
	}
	if c.Market.QuoteAsset == "" {
		c.Market.QuoteAsset = "USDT"
	}
	if len(c.Market.ValuedAssets) == 0 {
		c.Market.ValuedAssets = []string{"BTC", "ETH", "BNB"}
	}
	if len(c.Market.OverviewSymbols) == 0 {
		c.Market.OverviewSymbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "ADAUSDT", "XRPUSDT", "SOLUSDT"}
	}
	if len(c.Market.HistorySymbols) == 0 {
		c.Market.HistorySymbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT"}
	}
	if c.Observability.Telegram.APIBaseURL == "" {
		c.Observability.Telegram.APIBaseURL = "https://api.telegram.org"
	}
	if c.Observability.Telegram.TimeoutSec == 0 {
		c.Observability.Telegram.TimeoutSec = 10
	}
}

// Validate checks everything except credential presence: the gateway must
// come up without credentials so /health can report them missing.
func (c Config) Validate() error {
	if c.Server.RequestTimeoutSec < 1 || c.Server.RequestTimeoutSec > 300 {
		return fmt.Errorf("server request_timeout_sec must be between 1 and 300")
	}
	if err := validateURL(c.Server.CORSAllowedOrigin, "http", "https"); err != nil {
		return fmt.Errorf("server cors_allowed_origin %v", err)
	}
	if c.Exchange.RecvWindowMs < 1 || c.Exchange.RecvWindowMs > 60000 {
		return fmt.Errorf("exchange recv_window_ms must be between 1 and 60000")
	}
	if c.Exchange.HTTPTimeoutSec < 1 || c.Exchange.HTTPTimeoutSec > 120 {
		return fmt.Errorf("exchange http_timeout_sec must be between 1 and 120")
	}
	if err := validateURL(c.Exchange.RestBaseURL, "http", "https"); err != nil {
		return fmt.Errorf("exchange rest_base_url %v", err)
	}
	if !isValidAsset(c.Market.QuoteAsset) {
		return fmt.Errorf("market quote_asset must match [A-Z0-9], length 2..10")
	}
	for _, a := range c.Market.ValuedAssets {
		if !isValidAsset(a) {
			return fmt.Errorf("market valued_assets entry %q must match [A-Z0-9], length 2..10", a)
		}
	}
	for _, s := range c.Market.OverviewSymbols {
		if !isValidSymbol(s) {
			return fmt.Errorf("market overview_symbols entry %q must match [A-Z0-9], length 5..20", s)
		}
	}
	for _, s := range c.Market.HistorySymbols {
		if !isValidSymbol(s) {
			return fmt.Errorf("market history_symbols entry %q must match [A-Z0-9], length 5..20", s)
		}
	}
	if c.Trading.MaxOrderNotional.IsNegative() {
		return fmt.Errorf("trading max_order_notional must be >= 0")
	}
	if c.Observability.Telegram.Enabled {
		if c.Observability.Telegram.BotToken == "" {
			return fmt.Errorf("observability.telegram.bot_token is required when telegram enabled")
		}
		if c.Observability.Telegram.ChatID == "" {
			return fmt.Errorf("observability.telegram.chat_id is required when telegram enabled")
		}
		if c.Observability.Telegram.TimeoutSec < 1 || c.Observability.Telegram.TimeoutSec > 120 {
			return fmt.Errorf("observability.telegram.timeout_sec must be between 1 and 120")
		}
		if err := validateURL(c.Observability.Telegram.APIBaseURL, "http", "https"); err != nil {
			return fmt.Errorf("observability.telegram.api_base_url %v", err)
		}
	}
	return nil
}

// HasCredentials reports whether both halves of the credential pair are set.
func (c ExchangeConfig) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}

func isValidAsset(v string) bool {
	if len(v) < 2 || len(v) > 10 {
		return false
	}
	return isUpperAlnum(v)
}

func isValidSymbol(v string) bool {
	if len(v) < 5 || len(v) > 20 {
		return false
	}
	return isUpperAlnum(v)
}

func isUpperAlnum(v string) bool {
	for _, r := range v {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must include scheme and host")
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme must be %s", strings.Join(schemes, " or "))
}
