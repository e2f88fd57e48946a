package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/portfolio"
)

// formatMoney renders amount in currency, rounded to the currency's minor
// unit. Currencies go-money does not know are printed as a plain number.
func formatMoney(amount float64, currency string) string {
	if currency == "" {
		currency = money.USD
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}

	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func formatSignedMoney(amount float64, currency string) string {
	s := formatMoney(amount, currency)
	if amount > 0 {
		return "+" + s
	}
	return s
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}

func formatShares(shares float64) string {
	return strconv.FormatFloat(shares, 'f', -1, 64)
}

func printPortfolio(w io.Writer, v portfolio.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tQUANTITY\tAVG COST\tEQUITY\tCHANGE\tDAY")
	for _, pv := range v.Positions {
		p, val := pv.Position, pv.Valuation
		if p.IsCash {
			fmt.Fprintf(tw, "%s\t%s\t\t\t\t%s\t\t\n", p.Symbol, p.Name, formatMoney(val.Equity, p.Currency))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Symbol,
			p.Name,
			formatMoney(p.CurrentPrice, p.Currency),
			formatShares(p.Shares),
			formatMoney(p.AvgCost, p.Currency),
			formatMoney(val.Equity, p.Currency),
			formatPercent(val.PercentChange),
			formatPercent(val.DayChange),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	printStats(w, v.Stats)
	return nil
}

// printStats prints the portfolio totals. Totals are summed across
// currencies as they are, so they are shown in USD.
func printStats(w io.Writer, s portfolio.Stats) {
	fmt.Fprintf(w, "Total value:  %s (%d positions, %d stocks)\n", formatMoney(s.TotalValue, money.USD), s.TotalPositions, s.TotalStocks)
	fmt.Fprintf(w, "Stock value:  %s\n", formatMoney(s.StockValue, money.USD))
	fmt.Fprintf(w, "Cash:         %s\n", formatMoney(s.CashValue, money.USD))
	fmt.Fprintf(w, "Gain/Loss:    %s (%s)\n", formatSignedMoney(s.TotalGainLoss, money.USD), formatPercent(s.TotalGainLossPercent))
}

// localAddr turns a listen address such as ":8081" into a dialable one.
func localAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
