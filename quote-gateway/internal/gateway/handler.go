package gateway

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// fetchFailed is the only error body the gateway ever answers upstream failures with.
const fetchFailed = "Failed to fetch stock data"

// Handler handles HTTP requests for stock charts
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// StockRequest represents a request for a ticker's chart
type StockRequest struct {
	Ticker string `form:"ticker" binding:"required"`
}

// NewHandler creates a new gateway handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// GetStock proxies the ticker to the upstream provider and answers its body verbatim
func (h *Handler) GetStock(c *gin.Context) {
	var req StockRequest
	if err := c.ShouldBindQuery(&req); err != nil || strings.TrimSpace(req.Ticker) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker required"})
		return
	}
	ticker := strings.TrimSpace(req.Ticker)

	chart, err := h.service.FetchChart(c.Request.Context(), ticker)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("error fetching stock data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fetchFailed})
		return
	}

	c.Data(chart.StatusCode, "application/json; charset=utf-8", chart.Body)
}

// Health reports that the gateway is up
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

// Register wires the gateway routes onto r. staticDir, when set, is served
// under /public with /home answering its index.html.
func (h *Handler) Register(r gin.IRouter, staticDir string) {
	r.GET("/health", h.Health)
	r.GET("/api/stock", h.GetStock)

	if staticDir == "" {
		return
	}
	r.Static("/public", staticDir)
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/home")
	})
	r.GET("/home", func(c *gin.Context) {
		c.File(filepath.Join(staticDir, "index.html"))
	})
}
