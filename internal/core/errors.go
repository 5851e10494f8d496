package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials indicates the exchange API key or secret is not configured.
	ErrMissingCredentials = errors.New("exchange api key/secret not configured")
	// ErrInsufficientBalance indicates the exchange rejected the action due to insufficient funds.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOrderNotFound indicates the order does not exist on exchange.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderRejected indicates the order was rejected by exchange.
	ErrOrderRejected = errors.New("order rejected")
	// ErrNoLiquidSymbol indicates neither the requested symbol nor its fallback answered.
	ErrNoLiquidSymbol = errors.New("no liquid symbol")
)

// ConnectError wraps a transport failure while establishing the exchange session.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return "exchange connect failed: " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ValidationError identifies the offending field of a malformed request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
