package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sortFixture() []Position {
	cash := newCashPosition(fixedNow)
	cash.Shares = 100000
	return []Position{
		{Symbol: "MSFT", Name: "Microsoft", Shares: 2, CurrentPrice: 400, AvgCost: 300, Volume: 20},
		cash,
		{Symbol: "AAPL", Name: "Apple", Shares: 10, CurrentPrice: 180, AvgCost: 150, Volume: 50},
		{Symbol: "TSLA", Name: "Tesla", Shares: 1, CurrentPrice: 200, AvgCost: 250, Volume: 30},
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		key  string
		desc bool
		want []string
	}{
		{SortEquity, true, []string{CashSymbol, "AAPL", "MSFT", "TSLA"}},
		{SortEquity, false, []string{CashSymbol, "TSLA", "MSFT", "AAPL"}},
		{SortSymbol, false, []string{CashSymbol, "AAPL", "MSFT", "TSLA"}},
		{SortSymbol, true, []string{CashSymbol, "TSLA", "MSFT", "AAPL"}},
		{SortName, false, []string{CashSymbol, "AAPL", "MSFT", "TSLA"}},
		{SortPercentChange, true, []string{CashSymbol, "MSFT", "AAPL", "TSLA"}},
		{SortVolume, false, []string{CashSymbol, "MSFT", "TSLA", "AAPL"}},
		{SortQuantity, true, []string{CashSymbol, "AAPL", "MSFT", "TSLA"}},
	}

	for _, tt := range tests {
		name := tt.key + " asc"
		if tt.desc {
			name = tt.key + " desc"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(Sort(sortFixture(), tt.key, tt.desc)))
		})
	}
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	in := sortFixture()
	assert.Equal(t, symbols(in), symbols(Sort(in, "bogus", true)))
	assert.False(t, ValidSortKey("bogus"))
	assert.True(t, ValidSortKey(SortDayChange))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := sortFixture()
	Sort(in, SortSymbol, false)
	assert.Equal(t, []string{"MSFT", CashSymbol, "AAPL", "TSLA"}, symbols(in))
}
