package quote

import "errors"

// The error text of each sentinel is what a user gets to see.
var (
	ErrTickerRequired = errors.New("Ticker symbol is required")
	ErrNotFound       = errors.New("Stock not found")
	ErrConnection     = errors.New("Unable to connect to server")
	ErrServer         = errors.New("Server error occurred")
	ErrFetch          = errors.New("Failed to fetch stock data")
)

var userFacing = []error{ErrTickerRequired, ErrNotFound, ErrConnection, ErrServer, ErrFetch}

// Message returns the short user-facing message for err, never the raw
// transport error wrapped inside it.
func Message(err error) string {
	for _, e := range userFacing {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return ErrFetch.Error()
}
