package portfolio

import (
	"context"
	"sync"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/quote"
)

// RefreshResult is the outcome of refreshing one position.
type RefreshResult struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price,omitempty"`
	Err    error   `json:"-"`
}

// Refresh tracks a running price refresh.
type Refresh struct {
	done    chan struct{}
	results []RefreshResult
}

// Done is closed once every fetch has finished.
func (r *Refresh) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the refresh finishes or ctx is done. Results come in
// portfolio order as of the start of the refresh.
func (r *Refresh) Wait(ctx context.Context) ([]RefreshResult, error) {
	select {
	case <-r.done:
		return r.results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Refresh fetches fresh quotes for every stock position concurrently and
// returns immediately. Each successful fetch updates its position on its own,
// so subscribers may see a partially refreshed portfolio. Fetches for
// positions removed in the meantime are discarded.
func (s *Store) Refresh(ctx context.Context) *Refresh {
	var symbols []string
	for _, p := range s.Portfolio() {
		if !p.IsCash {
			symbols = append(symbols, p.Symbol)
		}
	}

	r := &Refresh{
		done:    make(chan struct{}),
		results: make([]RefreshResult, len(symbols)),
	}

	sem := make(chan struct{}, s.refreshConcurrency)
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			r.results[i] = s.refreshOne(ctx, sem, symbol)
		}(i, symbol)
	}

	go func() {
		wg.Wait()
		s.log.Debug().Int("positions", len(symbols)).Msg("Refresh finished")
		close(r.done)
	}()
	return r
}

func (s *Store) refreshOne(ctx context.Context, sem chan struct{}, symbol string) RefreshResult {
	res := RefreshResult{Symbol: symbol}
	if s.quotes == nil {
		res.Err = ErrNoQuoteSource
		return res
	}

	select {
	case sem <- struct{}{}:
		defer func() { <-sem }()
	case <-ctx.Done():
		res.Err = ctx.Err()
		return res
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	m, err := s.quotes.Quote(fetchCtx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to refresh quote")
		res.Err = err
		return res
	}

	if err := s.applyQuote(symbol, m); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Discarding refreshed quote")
		res.Err = err
		return res
	}
	res.Price = m.CurrentPrice
	return res
}

// applyQuote overwrites the market fields of symbol if it is still held.
func (s *Store) applyQuote(symbol string, m quote.Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(symbol)
	if i < 0 || s.positions[i].IsCash {
		return ErrPositionNotFound
	}

	next := clone(s.positions)
	next[i].applyMarketData(m)
	if err := checkSnapshot(next); err != nil {
		return err
	}
	s.commitLocked(next)
	return nil
}
