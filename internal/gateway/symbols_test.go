package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-gateway/internal/core"
	"trading-gateway/internal/exchange/binance"
)

var errUnknownSymbol = binanceUnknownSymbol()

func binanceUnknownSymbol() error {
	return binance.APIError{Code: -1121, Msg: "Invalid symbol."}
}

func TestResolveSymbolDirectHit(t *testing.T) {
	calls := 0
	effective, out, err := resolveSymbol(context.Background(), "BTCUSDT", func(ctx context.Context, sym string) (string, error) {
		calls++
		return "hit:" + sym, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", effective)
	assert.Equal(t, "hit:BTCUSDT", out)
	assert.Equal(t, 1, calls)
}

func TestResolveSymbolFallsBackToTether(t *testing.T) {
	var queried []string
	effective, out, err := resolveSymbol(context.Background(), "BTCUSD", func(ctx context.Context, sym string) (string, error) {
		queried = append(queried, sym)
		if sym == "BTCUSDT" {
			return "hit", nil
		}
		return "", errUnknownSymbol
	})
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", effective)
	assert.Equal(t, "hit", out)
	assert.Equal(t, []string{"BTCUSD", "BTCUSDT"}, queried)
}

func TestResolveSymbolNoFallbackForTetherSymbols(t *testing.T) {
	calls := 0
	_, _, err := resolveSymbol(context.Background(), "BTCUSDT", func(ctx context.Context, sym string) (string, error) {
		calls++
		return "", errUnknownSymbol
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, errors.Is(err, core.ErrNoLiquidSymbol))
}

func TestResolveSymbolBothFail(t *testing.T) {
	calls := 0
	_, _, err := resolveSymbol(context.Background(), "ETHUSD", func(ctx context.Context, sym string) (string, error) {
		calls++
		return "", errUnknownSymbol
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, errors.Is(err, core.ErrNoLiquidSymbol))
}

func TestResolveSymbolRetriesFallbackOnTransportError(t *testing.T) {
	var queried []string
	transport := errors.New("dial tcp: connection refused")
	effective, out, err := resolveSymbol(context.Background(), "BTCUSD", func(ctx context.Context, sym string) (string, error) {
		queried = append(queried, sym)
		if sym == "BTCUSDT" {
			return "hit", nil
		}
		return "", transport
	})
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", effective)
	assert.Equal(t, "hit", out)
	assert.Equal(t, []string{"BTCUSD", "BTCUSDT"}, queried)
}

func TestResolveSymbolBothTransportFailuresJoin(t *testing.T) {
	calls := 0
	transport := errors.New("dial tcp: connection refused")
	_, _, err := resolveSymbol(context.Background(), "BTCUSD", func(ctx context.Context, sym string) (string, error) {
		calls++
		return "", transport
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, errors.Is(err, core.ErrNoLiquidSymbol))
	assert.True(t, errors.Is(err, transport))
}

func TestFallbackSymbol(t *testing.T) {
	alt, ok := fallbackSymbol("BTCUSD")
	assert.True(t, ok)
	assert.Equal(t, "BTCUSDT", alt)

	_, ok = fallbackSymbol("BTCUSDT")
	assert.False(t, ok)

	_, ok = fallbackSymbol("ETHBTC")
	assert.False(t, ok)
}
