package portfolio

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/quote"
)

// Handler handles HTTP requests for the portfolio
type Handler struct {
	store    *Store
	quotes   QuoteSource
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// PositionView pairs a position with its derived figures
type PositionView struct {
	Position  Position  `json:"position"`
	Valuation Valuation `json:"valuation"`
}

// View is the portfolio as served over HTTP and the stream
type View struct {
	Positions []PositionView `json:"positions"`
	Stats     Stats          `json:"stats"`
}

// NewView valuates every position of a snapshot.
func NewView(positions []Position) View {
	v := View{
		Positions: make([]PositionView, 0, len(positions)),
		Stats:     ComputeStats(positions),
	}
	for _, p := range positions {
		v.Positions = append(v.Positions, PositionView{Position: p, Valuation: Valuate(p)})
	}
	return v
}

// QuoteRequest represents a quote lookup
type QuoteRequest struct {
	Ticker string `form:"ticker"`
}

// ListRequest selects the ordering of GET /portfolio
type ListRequest struct {
	Sort  string `form:"sort,default=equity"`
	Order string `form:"order,default=desc" binding:"oneof=asc desc"`
}

// AddPositionRequest represents a request to add a stock
type AddPositionRequest struct {
	Symbol  string  `json:"symbol" binding:"required"`
	Shares  float64 `json:"shares" binding:"gte=0,lte=1e12"`
	AvgCost float64 `json:"avgCost" binding:"gte=0,lte=1e9"`
}

// UpdatePositionRequest represents a request to edit a position
type UpdatePositionRequest struct {
	Shares  *float64 `json:"shares" binding:"required,gte=0,lte=1e12"`
	AvgCost *float64 `json:"avgCost" binding:"required,gte=0,lte=1e9"`
}

// CashRequest carries an amount of cash
type CashRequest struct {
	Amount *float64 `json:"amount" binding:"required,gte=0,lte=1e15"`
}

type refreshResultView struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// NewHandler creates a new portfolio handler
func NewHandler(store *Store, quotes QuoteSource, log zerolog.Logger) *Handler {
	return &Handler{
		store:  store,
		quotes: quotes,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register wires the portfolio routes onto r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/quote", h.GetQuote)

	g := r.Group("/portfolio")
	g.GET("", h.GetPortfolio)
	g.DELETE("", h.ClearPortfolio)
	g.GET("/stats", h.GetStats)
	g.GET("/stream", h.Stream)
	g.POST("/refresh", h.RefreshPrices)
	g.POST("/positions", h.AddPosition)
	g.PUT("/positions/:symbol", h.UpdatePosition)
	g.DELETE("/positions/:symbol", h.RemovePosition)
	g.PUT("/cash", h.SetCash)
	g.POST("/cash/deposit", h.DepositCash)
	g.POST("/cash/withdraw", h.WithdrawCash)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

// GetQuote looks a ticker up and tells whether it is already held
func (h *Handler) GetQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil || quote.NormalizeTicker(req.Ticker) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": quote.ErrTickerRequired.Error()})
		return
	}

	m, err := h.quotes.Quote(c.Request.Context(), req.Ticker)
	if err != nil {
		h.quoteError(c, req.Ticker, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics":     m,
		"inPortfolio": h.store.Contains(m.Symbol),
	})
}

// GetPortfolio returns every position with its valuation, sorted by equity
// descending unless the query asks otherwise
func (h *Handler) GetPortfolio(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ValidSortKey(req.Sort) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key: " + req.Sort})
		return
	}

	positions := Sort(h.store.Portfolio(), req.Sort, req.Order != "asc")
	c.JSON(http.StatusOK, NewView(positions))
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// AddPosition fetches the current quote for a symbol and adds it
func (h *Handler) AddPosition(c *gin.Context) {
	var req AddPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if quote.NormalizeTicker(req.Symbol) == CashSymbol {
		h.storeError(c, ErrCashPosition)
		return
	}
	if h.store.Contains(req.Symbol) {
		c.JSON(http.StatusConflict, gin.H{"error": ErrAlreadyHeld.Error()})
		return
	}

	m, err := h.quotes.Quote(c.Request.Context(), req.Symbol)
	if err != nil {
		h.quoteError(c, req.Symbol, err)
		return
	}

	p, err := h.store.Add(m, req.Shares, req.AvgCost)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.log.Info().Str("symbol", p.Symbol).Float64("shares", p.Shares).Msg("Position added")
	c.JSON(http.StatusCreated, PositionView{Position: p, Valuation: Valuate(p)})
}

func (h *Handler) UpdatePosition(c *gin.Context) {
	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.store.UpdatePosition(c.Param("symbol"), *req.Shares, *req.AvgCost)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PositionView{Position: p, Valuation: Valuate(p)})
}

func (h *Handler) RemovePosition(c *gin.Context) {
	symbol := quote.NormalizeTicker(c.Param("symbol"))
	if symbol == CashSymbol {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cash position cannot be removed"})
		return
	}

	h.store.Remove(symbol)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearPortfolio(c *gin.Context) {
	h.store.Clear()
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetCash(c *gin.Context) {
	h.withAmount(c, h.store.UpdateCash)
}

func (h *Handler) DepositCash(c *gin.Context) {
	h.withAmount(c, h.store.AddCash)
}

func (h *Handler) WithdrawCash(c *gin.Context) {
	h.withAmount(c, h.store.RemoveCash)
}

func (h *Handler) withAmount(c *gin.Context, apply func(float64) error) {
	var req CashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := apply(*req.Amount); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash": h.store.CashBalance()})
}

// RefreshPrices refreshes every stock position and waits for the results
func (h *Handler) RefreshPrices(c *gin.Context) {
	ctx := c.Request.Context()
	results, err := h.store.Refresh(ctx).Wait(ctx)
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}

	out := make([]refreshResultView, 0, len(results))
	for _, r := range results {
		v := refreshResultView{Symbol: r.Symbol, Price: r.Price}
		if r.Err != nil {
			v.Error = quote.Message(r.Err)
			if errors.Is(r.Err, ErrPositionNotFound) {
				v.Error = r.Err.Error()
			}
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *Handler) quoteError(c *gin.Context, ticker string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, quote.ErrTickerRequired):
		status = http.StatusBadRequest
	case errors.Is(err, quote.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, quote.ErrConnection):
		status = http.StatusServiceUnavailable
	}
	h.log.Warn().Err(err).Str("ticker", ticker).Msg("Quote lookup failed")
	c.JSON(status, gin.H{"error": quote.Message(err)})
}

func (h *Handler) storeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSymbolRequired), errors.Is(err, ErrCashPosition), errors.Is(err, ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ErrAlreadyHeld):
		status = http.StatusConflict
	case errors.Is(err, ErrPositionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInsufficientCash):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
