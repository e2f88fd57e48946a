// Package portfolio holds the position store, its valuation rules and the
// HTTP surface of the portfolio service.
package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/quote"
	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/storage"
)

const (
	// StorageKey is the key the portfolio is persisted under.
	StorageKey = "portfolio-stocks"
	// BackupKey keeps the raw saved value when it could not be fully loaded.
	BackupKey = StorageKey + ".bak"
)

// QuoteSource fetches current metrics for a ticker
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (quote.Metrics, error)
}

// Store is the single authority over the portfolio. Every mutation replaces
// the current snapshot, persists it and publishes it to subscribers.
type Store struct {
	mu        sync.Mutex
	positions []Position

	kv     storage.Store
	quotes QuoteSource
	hub    *hub
	log    zerolog.Logger
	now    func() time.Time

	refreshConcurrency int
	refreshTimeout     time.Duration
}

// Option configures a Store
type Option func(*Store)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock replaces the clock used for addedDate.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRefreshConcurrency bounds the number of quote fetches a refresh runs at once.
func WithRefreshConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.refreshConcurrency = n
		}
	}
}

// WithRefreshTimeout bounds each quote fetch of a refresh.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

// NewStore loads the persisted portfolio from kv and makes sure it holds a
// cash position. quotes may be nil when the store is never refreshed.
func NewStore(kv storage.Store, quotes QuoteSource, opts ...Option) *Store {
	s := &Store{
		kv:                 kv,
		quotes:             quotes,
		log:                zerolog.Nop(),
		now:                time.Now,
		refreshConcurrency: 4,
		refreshTimeout:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	positions, intact := s.load()
	s.positions = positions
	s.hub = newHub(s.positions)

	s.mu.Lock()
	if intact {
		s.ensureCashLocked()
	} else if s.cashIndexLocked() < 0 {
		// Saved data that could not be read stays on disk until a real mutation.
		s.positions = append([]Position{newCashPosition(s.now().UTC())}, s.positions...)
		s.hub.publish(s.positions)
	}
	s.mu.Unlock()

	return s
}

// Subscribe returns a subscription that immediately holds the current snapshot.
func (s *Store) Subscribe() *Subscription {
	return s.hub.subscribe()
}

// Portfolio returns a copy of the current snapshot.
func (s *Store) Portfolio() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.positions)
}

// Get returns the position held under symbol.
func (s *Store) Get(symbol string) (Position, bool) {
	symbol = quote.NormalizeTicker(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(symbol); i >= 0 {
		return s.positions[i], true
	}
	return Position{}, false
}

// Add appends a new stock position built from m and returns it.
func (s *Store) Add(m quote.Metrics, shares, avgCost float64) (Position, error) {
	symbol := quote.NormalizeTicker(m.Symbol)
	if symbol == "" {
		return Position{}, ErrSymbolRequired
	}
	if symbol == CashSymbol {
		return Position{}, ErrCashPosition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(symbol) >= 0 {
		return Position{}, ErrAlreadyHeld
	}

	p := newStockPosition(m, shares, avgCost, s.now().UTC())
	next := append(clone(s.positions), p)
	if err := checkSnapshot(next); err != nil {
		return Position{}, err
	}
	s.commitLocked(next)
	return p, nil
}

// Remove drops the position held under symbol. The cash position is never removed.
func (s *Store) Remove(symbol string) {
	symbol = quote.NormalizeTicker(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Position, 0, len(s.positions))
	for _, p := range s.positions {
		if p.Symbol == symbol && !p.IsCash {
			continue
		}
		next = append(next, p)
	}
	if len(next) == len(s.positions) {
		return
	}
	s.commitLocked(next)
}

// UpdatePosition sets shares and average cost of a held position.
// For the cash position only shares change.
func (s *Store) UpdatePosition(symbol string, shares, avgCost float64) (Position, error) {
	symbol = quote.NormalizeTicker(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(symbol)
	if i < 0 {
		return Position{}, ErrPositionNotFound
	}

	p := s.positions[i]
	p.Shares = shares
	if !p.IsCash {
		p.AvgCost = avgCost
	}
	next := clone(s.positions)
	next[i] = p
	if err := checkSnapshot(next); err != nil {
		return Position{}, err
	}
	s.commitLocked(next)
	return p, nil
}

// UpdateCash sets the cash amount, creating the cash position if it is missing.
func (s *Store) UpdateCash(amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setCashLocked(amount)
}

// AddCash deposits amount.
func (s *Store) AddCash(amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !finite(amount) {
		return ErrInvalidAmount
	}
	return s.setCashLocked(s.cashLocked() + amount)
}

// RemoveCash withdraws amount, failing without change when the balance is too low.
func (s *Store) RemoveCash(amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !finite(amount) {
		return ErrInvalidAmount
	}
	current := s.cashLocked()
	if current < amount {
		return ErrInsufficientCash
	}
	return s.setCashLocked(current - amount)
}

// CashBalance returns the current cash amount.
func (s *Store) CashBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cashLocked()
}

// Contains reports whether symbol is held.
func (s *Store) Contains(symbol string) bool {
	_, ok := s.Get(symbol)
	return ok
}

// Clear removes every stock position and keeps the cash position.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Position, 0, 1)
	for _, p := range s.positions {
		if p.IsCash {
			next = append(next, p)
		}
	}
	s.commitLocked(next)
	s.ensureCashLocked()
}

// Stats computes aggregate statistics for the current snapshot.
func (s *Store) Stats() Stats {
	return ComputeStats(s.Portfolio())
}

func (s *Store) indexLocked(symbol string) int {
	for i, p := range s.positions {
		if p.Symbol == symbol {
			return i
		}
	}
	return -1
}

func (s *Store) cashIndexLocked() int {
	for i, p := range s.positions {
		if p.IsCash {
			return i
		}
	}
	return -1
}

func (s *Store) cashLocked() float64 {
	if i := s.cashIndexLocked(); i >= 0 {
		return s.positions[i].Shares
	}
	return 0
}

// setCashLocked rejects an amount that is not finite without touching state.
func (s *Store) setCashLocked(amount float64) error {
	if !finite(amount) {
		return ErrInvalidAmount
	}
	s.ensureCashLocked()

	i := s.cashIndexLocked()
	next := clone(s.positions)
	next[i].Shares = amount
	if err := checkSnapshot(next); err != nil {
		return err
	}
	s.commitLocked(next)
	return nil
}

// ensureCashLocked prepends a zero cash position when none is held.
func (s *Store) ensureCashLocked() {
	if s.cashIndexLocked() >= 0 {
		return
	}
	next := make([]Position, 0, len(s.positions)+1)
	next = append(next, newCashPosition(s.now().UTC()))
	next = append(next, s.positions...)
	s.commitLocked(next)
}

// commitLocked replaces the snapshot, persists it and publishes it.
// Publishing under the lock keeps subscribers in mutation order.
func (s *Store) commitLocked(next []Position) {
	s.positions = next
	s.persist(next)
	s.hub.publish(next)
}

func (s *Store) persist(positions []Position) {
	data, err := json.Marshal(positions)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode portfolio")
		return
	}
	if err := s.kv.Set(StorageKey, data); err != nil {
		s.log.Error().Err(err).Str("key", StorageKey).Msg("Failed to save portfolio")
	}
}

// load reads the saved portfolio. Elements that fail to decode are skipped.
// intact is false when saved data exists but some or all of it could not be
// used; the raw value is then copied under BackupKey first.
func (s *Store) load() (positions []Position, intact bool) {
	data, err := s.kv.Get(StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Debug().Msg("No saved portfolio, starting empty")
			return nil, true
		}
		s.log.Error().Err(err).Str("key", StorageKey).Msg("Failed to load portfolio")
		return nil, false
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		s.log.Error().Err(err).Str("key", StorageKey).Msg("Failed to decode saved portfolio")
		s.backup(data)
		return nil, false
	}

	loaded := make([]Position, 0, len(elems))
	intact = true
	for i, elem := range elems {
		var p Position
		if err := json.Unmarshal(elem, &p); err != nil {
			s.log.Error().Err(err).Str("key", StorageKey).Int("index", i).Msg("Skipping unreadable saved position")
			intact = false
			continue
		}
		loaded = append(loaded, p)
	}
	if !intact {
		s.backup(data)
	}
	return normalize(loaded), intact
}

func (s *Store) backup(data []byte) {
	if err := s.kv.Set(BackupKey, data); err != nil {
		s.log.Error().Err(err).Str("key", BackupKey).Msg("Failed to back up saved portfolio")
		return
	}
	s.log.Warn().Str("key", BackupKey).Msg("Saved portfolio backed up")
}

// normalize uppercases symbols and keeps only the first occurrence of each
// symbol and of the cash position.
func normalize(loaded []Position) []Position {
	out := make([]Position, 0, len(loaded))
	seen := make(map[string]bool, len(loaded))
	cashSeen := false

	for _, p := range loaded {
		p.Symbol = quote.NormalizeTicker(p.Symbol)
		if p.IsCash || p.Symbol == CashSymbol {
			if cashSeen {
				continue
			}
			cashSeen = true
			p.IsCash = true
			p.Symbol = CashSymbol
			p.CurrentPrice = 1.0
			p.AvgCost = 1.0
		}
		if seen[p.Symbol] {
			continue
		}
		seen[p.Symbol] = true
		out = append(out, p)
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// checkSnapshot rejects a snapshot holding, or summing to, numbers that are not finite.
func checkSnapshot(positions []Position) error {
	for _, p := range positions {
		if !finite(p.Shares, p.AvgCost, p.CurrentPrice, Equity(p), p.Shares*p.AvgCost) {
			return ErrInvalidAmount
		}
	}
	st := ComputeStats(positions)
	if !finite(st.StockValue, st.StockCost, st.CashValue, st.TotalValue, st.TotalCost, st.TotalGainLoss, st.TotalGainLossPercent) {
		return ErrInvalidAmount
	}
	return nil
}
