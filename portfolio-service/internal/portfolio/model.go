package portfolio

import (
	"time"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/quote"
)

// CashSymbol is reserved for the synthetic cash position.
const CashSymbol = "CASH"

// Position represents one held instrument or the cash slot.
// For cash, Shares holds the cash amount and AvgCost is always 1.
type Position struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	CurrentPrice     float64   `json:"currentPrice"`
	Currency         string    `json:"currency"`
	DayHigh          float64   `json:"dayHigh"`
	DayLow           float64   `json:"dayLow"`
	FiftyTwoWeekHigh float64   `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  float64   `json:"fiftyTwoWeekLow"`
	Volume           int64     `json:"volume"`
	Exchange         string    `json:"exchange"`
	AddedDate        time.Time `json:"addedDate"`
	Shares           float64   `json:"shares"`
	AvgCost          float64   `json:"avgCost"`
	IsCash           bool      `json:"isCash,omitempty"`
}

func newCashPosition(now time.Time) Position {
	return Position{
		Symbol:           CashSymbol,
		Name:             "Cash Position",
		CurrentPrice:     1.0,
		Currency:         "USD",
		DayHigh:          1.0,
		DayLow:           1.0,
		FiftyTwoWeekHigh: 1.0,
		FiftyTwoWeekLow:  1.0,
		Volume:           0,
		Exchange:         "N/A",
		AddedDate:        now,
		Shares:           0,
		AvgCost:          1.0,
		IsCash:           true,
	}
}

func newStockPosition(m quote.Metrics, shares, avgCost float64, now time.Time) Position {
	p := Position{
		Symbol:    quote.NormalizeTicker(m.Symbol),
		Name:      m.Name,
		Currency:  m.Currency,
		Exchange:  m.Exchange,
		AddedDate: now,
		Shares:    shares,
		AvgCost:   avgCost,
	}
	p.applyMarketData(m)
	return p
}

// applyMarketData overwrites the market snapshot fields; descriptive fields stay as they are.
func (p *Position) applyMarketData(m quote.Metrics) {
	p.CurrentPrice = m.CurrentPrice
	p.DayHigh = m.DayHigh
	p.DayLow = m.DayLow
	p.FiftyTwoWeekHigh = m.FiftyTwoWeekHigh
	p.FiftyTwoWeekLow = m.FiftyTwoWeekLow
	p.Volume = m.Volume
}

func clone(positions []Position) []Position {
	return append([]Position(nil), positions...)
}
