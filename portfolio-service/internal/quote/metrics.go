package quote

import (
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Metrics is the normalized quote record the rest of the service works with
type Metrics struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	CurrentPrice     float64 `json:"currentPrice"`
	Currency         string  `json:"currency"`
	DayHigh          float64 `json:"dayHigh"`
	DayLow           float64 `json:"dayLow"`
	FiftyTwoWeekHigh float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  float64 `json:"fiftyTwoWeekLow"`
	Volume           int64   `json:"volume"`
	Exchange         string  `json:"exchange"`
}

/*
ExtractMetrics reads the first chart result of a provider response:

	{
	    "chart": {
	        "result": [{
	            "meta": {
	                "currency": "USD",
	                "symbol": "AAPL",
	                "exchangeName": "NMS",
	                "regularMarketPrice": 180.0,
	                "regularMarketDayHigh": 181.2,
	                ...
	            }
	        }],
	        "error": null
	    }
	}
*/
func ExtractMetrics(raw interface{}) (Metrics, error) {
	results, err := jsonpath.Get("$.chart.result", raw)
	if err != nil {
		return Metrics{}, fmt.Errorf("%w: unexpected response shape: %v", ErrFetch, err)
	}
	if list, ok := results.([]interface{}); !ok || len(list) == 0 {
		return Metrics{}, ErrNotFound
	}

	jmeta, err := jsonpath.Get("$.chart.result[0].meta", raw)
	if err != nil {
		return Metrics{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	meta, ok := jmeta.(map[string]interface{})
	if !ok {
		return Metrics{}, fmt.Errorf("%w: meta is not an object", ErrFetch)
	}

	name := str(meta, "longName")
	if name == "" {
		name = str(meta, "shortName")
	}

	return Metrics{
		Symbol:           strings.ToUpper(str(meta, "symbol")),
		Name:             name,
		CurrentPrice:     num(meta, "regularMarketPrice"),
		Currency:         str(meta, "currency"),
		DayHigh:          num(meta, "regularMarketDayHigh"),
		DayLow:           num(meta, "regularMarketDayLow"),
		FiftyTwoWeekHigh: num(meta, "fiftyTwoWeekHigh"),
		FiftyTwoWeekLow:  num(meta, "fiftyTwoWeekLow"),
		Volume:           int64(num(meta, "regularMarketVolume")),
		Exchange:         str(meta, "exchangeName"),
	}, nil
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func num(m map[string]interface{}, key string) float64 {
	f, _ := m[key].(float64)
	return f
}
