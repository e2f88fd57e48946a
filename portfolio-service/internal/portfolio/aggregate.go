package portfolio

import (
	"math"

	"github.com/shopspring/decimal"
)

// Valuation holds the per-position derived figures.
type Valuation struct {
	Equity        float64 `json:"equity"`
	PercentChange float64 `json:"percentChange"`
	DayChange     float64 `json:"dayChange"`
}

// Stats summarises a portfolio. Stock figures exclude the cash position.
type Stats struct {
	TotalStocks          int     `json:"totalStocks"`
	TotalPositions       int     `json:"totalPositions"`
	StockValue           float64 `json:"stockValue"`
	StockCost            float64 `json:"stockCost"`
	CashValue            float64 `json:"cashValue"`
	TotalValue           float64 `json:"totalValue"`
	TotalCost            float64 `json:"totalCost"`
	TotalGainLoss        float64 `json:"totalGainLoss"`
	TotalGainLossPercent float64 `json:"totalGainLossPercent"`
}

var hundred = decimal.NewFromInt(100)

// Equity is the market value of p; for cash it is the cash amount.
func Equity(p Position) float64 {
	if p.Shares == 0 {
		return 0
	}
	if p.IsCash {
		return p.Shares
	}
	return p.Shares * p.CurrentPrice
}

// PercentChange is the gain of p against its average cost, in percent.
func PercentChange(p Position) float64 {
	if p.IsCash || p.AvgCost == 0 {
		return 0
	}
	return (p.CurrentPrice - p.AvgCost) / p.AvgCost * 100
}

// DayChange is how far the price sits above the day low, in percent.
// It is 0 when the day low is unknown.
func DayChange(p Position) float64 {
	c := (p.CurrentPrice - p.DayLow) / p.DayLow * 100
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return c
}

func Valuate(p Position) Valuation {
	return Valuation{
		Equity:        Equity(p),
		PercentChange: PercentChange(p),
		DayChange:     DayChange(p),
	}
}

// ComputeStats sums the portfolio in decimal arithmetic so that totals do
// not drift with the number of positions.
func ComputeStats(positions []Position) Stats {
	stockValue := decimal.Zero
	stockCost := decimal.Zero
	cashValue := decimal.Zero
	stocks := 0
	cashSeen := false

	for _, p := range positions {
		if p.IsCash {
			if !cashSeen {
				cashValue = decimalOf(p.Shares)
				cashSeen = true
			}
			continue
		}
		shares := decimalOf(p.Shares)
		stockValue = stockValue.Add(shares.Mul(decimalOf(p.CurrentPrice)))
		stockCost = stockCost.Add(shares.Mul(decimalOf(p.AvgCost)))
		stocks++
	}

	gainLoss := stockValue.Sub(stockCost)
	gainLossPercent := decimal.Zero
	if stockCost.IsPositive() {
		gainLossPercent = gainLoss.Div(stockCost).Mul(hundred)
	}

	return Stats{
		TotalStocks:          stocks,
		TotalPositions:       len(positions),
		StockValue:           stockValue.InexactFloat64(),
		StockCost:            stockCost.InexactFloat64(),
		CashValue:            cashValue.InexactFloat64(),
		TotalValue:           stockValue.Add(cashValue).InexactFloat64(),
		TotalCost:            stockCost.Add(cashValue).InexactFloat64(),
		TotalGainLoss:        gainLoss.InexactFloat64(),
		TotalGainLossPercent: gainLossPercent.InexactFloat64(),
	}
}

// decimalOf counts a value that is not a finite number as zero.
func decimalOf(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
