package portfolio

import "errors"

var (
	ErrSymbolRequired   = errors.New("symbol is required")
	ErrAlreadyHeld      = errors.New("stock already in portfolio")
	ErrCashPosition     = errors.New("cash position cannot be used as a stock")
	ErrPositionNotFound = errors.New("position not found")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrInvalidAmount    = errors.New("amount is out of range")
	ErrNoQuoteSource    = errors.New("no quote source configured")
)
