package portfolio

import "sort"

// Sort keys accepted by Sort.
const (
	SortSymbol        = "symbol"
	SortName          = "name"
	SortCurrentPrice  = "currentPrice"
	SortQuantity      = "quantity"
	SortAvgCost       = "avgCost"
	SortEquity        = "equity"
	SortPercentChange = "percentChange"
	SortDayChange     = "dayChange"
	SortVolume        = "volume"
)

type sortValue func(Position) (float64, string)

var sortKeys = map[string]sortValue{
	SortSymbol:        func(p Position) (float64, string) { return 0, p.Symbol },
	SortName:          func(p Position) (float64, string) { return 0, p.Name },
	SortCurrentPrice:  func(p Position) (float64, string) { return p.CurrentPrice, "" },
	SortQuantity:      func(p Position) (float64, string) { return p.Shares, "" },
	SortAvgCost:       func(p Position) (float64, string) { return p.AvgCost, "" },
	SortEquity:        func(p Position) (float64, string) { return Equity(p), "" },
	SortPercentChange: func(p Position) (float64, string) { return PercentChange(p), "" },
	SortDayChange:     func(p Position) (float64, string) { return DayChange(p), "" },
	SortVolume:        func(p Position) (float64, string) { return float64(p.Volume), "" },
}

// ValidSortKey reports whether key is accepted by Sort.
func ValidSortKey(key string) bool {
	_, ok := sortKeys[key]
	return ok
}

// Sort returns a sorted copy of positions. The cash position always comes
// first regardless of direction. An unknown key leaves the order unchanged.
func Sort(positions []Position, key string, desc bool) []Position {
	out := clone(positions)
	value, ok := sortKeys[key]
	if !ok {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsCash != b.IsCash {
			return a.IsCash
		}
		an, as := value(a)
		bn, bs := value(b)
		if as != bs {
			if desc {
				return as > bs
			}
			return as < bs
		}
		if desc {
			return an > bn
		}
		return an < bn
	})
	return out
}
