package gateway

import (
	"context"
	"errors"
	"log"
	"strings"

	"trading-gateway/internal/core"
)

// resolveSymbol runs query against symbol and, on any failure of a symbol
// ending in a bare "USD", retries exactly once with the tether variant
// (BTCUSD becomes BTCUSDT). It returns the symbol that actually answered
// alongside the result.
func resolveSymbol[T any](ctx context.Context, symbol string, query func(context.Context, string) (T, error)) (string, T, error) {
	out, err := query(ctx, symbol)
	if err == nil {
		return symbol, out, nil
	}

	alt, ok := fallbackSymbol(symbol)
	if !ok {
		var zero T
		return "", zero, err
	}

	log.Printf("level=WARN event=symbol_fallback symbol=%s alt=%s err=%q", symbol, alt, err.Error())
	altOut, altErr := query(ctx, alt)
	if altErr == nil {
		return alt, altOut, nil
	}
	var zero T
	return "", zero, errors.Join(core.ErrNoLiquidSymbol, err, altErr)
}

func fallbackSymbol(symbol string) (string, bool) {
	if strings.HasSuffix(symbol, "USD") {
		return symbol + "T", true
	}
	return "", false
}
