package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResponse struct {
	response *http.Response
	err      error
}

type mockTransport struct {
	responses []mockResponse
	requests  []*http.Request
	current   int
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	if m.current >= len(m.responses) {
		return nil, fmt.Errorf("no more responses")
	}
	resp := m.responses[m.current]
	m.current++
	return resp.response, resp.err
}

func newMockResponse(statusCode int, body string) mockResponse {
	return mockResponse{
		response: &http.Response{
			StatusCode: statusCode,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
		},
	}
}

func newMockService(responses ...mockResponse) (*Service, *mockTransport) {
	transport := &mockTransport{responses: responses}
	return &Service{
		client:      &http.Client{Transport: transport},
		upstreamURL: "https://upstream.test/v8/finance/chart/",
		userAgent:   "folio-test",
	}, transport
}

func TestFetchChart_Verbatim(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":180.5}}],"error":null}}`
	s, transport := newMockService(newMockResponse(http.StatusOK, body))

	chart, err := s.FetchChart(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, chart.StatusCode)
	assert.Equal(t, body, string(chart.Body))

	require.Len(t, transport.requests, 1)
	assert.Equal(t, "https://upstream.test/v8/finance/chart/AAPL", transport.requests[0].URL.String())
	assert.Equal(t, "folio-test", transport.requests[0].Header.Get("User-Agent"))
}

func TestFetchChart_EscapesTicker(t *testing.T) {
	s, transport := newMockService(newMockResponse(http.StatusOK, `{}`))

	_, err := s.FetchChart(context.Background(), "BRK/B")
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/BRK%2FB", transport.requests[0].URL.EscapedPath())
}

func TestFetchChart_PassesStatusThrough(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
	s, _ := newMockService(newMockResponse(http.StatusNotFound, body))

	chart, err := s.FetchChart(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, chart.StatusCode)
	assert.Equal(t, body, string(chart.Body))
}

func TestFetchChart_Errors(t *testing.T) {
	t.Run("transport failure", func(t *testing.T) {
		s, _ := newMockService(mockResponse{err: errors.New("connection refused")})

		_, err := s.FetchChart(context.Background(), "AAPL")
		assert.Error(t, err)
	})

	t.Run("upstream server error", func(t *testing.T) {
		s, _ := newMockService(newMockResponse(http.StatusBadGateway, `{"chart":{"result":null,"error":{"code":"Internal"}}}`))

		_, err := s.FetchChart(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("non json body", func(t *testing.T) {
		s, _ := newMockService(newMockResponse(http.StatusTooManyRequests, "Too Many Requests"))

		_, err := s.FetchChart(context.Background(), "AAPL")
		assert.ErrorIs(t, err, ErrInvalidBody)
	})
}
