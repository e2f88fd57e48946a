package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/portfolio"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.5, "USD", "$1,234.50"},
		{0, "", "$0.00"},
		{-300, "USD", "-$300.00"},
		{0.125, "USD", "$0.13"},
		{12.5, "XYZ", "12.50 XYZ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.amount, tt.currency), "%v %s", tt.amount, tt.currency)
	}
	assert.Equal(t, "+$300.00", formatSignedMoney(300, "USD"))
}

func TestPrintPortfolio(t *testing.T) {
	positions := []portfolio.Position{
		{Symbol: portfolio.CashSymbol, Name: "Cash Position", Currency: "USD", CurrentPrice: 1, AvgCost: 1, Shares: 1000, IsCash: true},
		{Symbol: "AAPL", Name: "Apple Inc.", Currency: "USD", CurrentPrice: 180, DayLow: 176.4, Shares: 10, AvgCost: 150, AddedDate: time.Now()},
	}

	var buf bytes.Buffer
	require.NoError(t, printPortfolio(&buf, portfolio.NewView(positions)))
	out := buf.String()

	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "Apple Inc.")
	assert.Contains(t, out, "$1,800.00")
	assert.Contains(t, out, "+20.00%")
	assert.Contains(t, out, "+2.04%")
	assert.Contains(t, out, "Total value:  $2,800.00 (2 positions, 1 stocks)")
	assert.Contains(t, out, "Gain/Loss:    +$300.00 (+20.00%)")
}

func TestLocalAddr(t *testing.T) {
	assert.Equal(t, "localhost:8081", localAddr(":8081"))
	assert.Equal(t, "10.0.0.2:80", localAddr("10.0.0.2:80"))
}
