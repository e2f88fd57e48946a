package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrInvalidBody is returned when the upstream answers with something that is not JSON.
	ErrInvalidBody = errors.New("upstream body is not valid JSON")
	// ErrUpstream is returned when the upstream answers with a server error.
	ErrUpstream = errors.New("upstream server error")
)

// ChartResponse is an upstream chart answer, kept verbatim
type ChartResponse struct {
	StatusCode int
	Body       []byte
}

// Service fetches chart data from the upstream quote provider
type Service struct {
	client      *http.Client
	upstreamURL string
	userAgent   string
}

// NewService creates a service that forwards tickers to upstreamURL.
func NewService(upstreamURL, userAgent string, timeout time.Duration) *Service {
	return &Service{
		client: &http.Client{
			Timeout: timeout,
		},
		upstreamURL: upstreamURL,
		userAgent:   userAgent,
	}
}

// FetchChart returns the upstream chart body for ticker, untouched. Upstream
// server errors are reported as ErrUpstream rather than passed through.
func (s *Service) FetchChart(ctx context.Context, ticker string) (*ChartResponse, error) {
	addr := strings.TrimSuffix(s.upstreamURL, "/") + "/" + url.PathEscape(ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidBody, resp.StatusCode)
	}

	return &ChartResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
