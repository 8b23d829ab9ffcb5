// Package ingest fetches raw financial statements from upstream sources and
// normalizes them into canonical records.
// API Documentation: https://www.alphavantage.co/documentation/#fundamentals
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/schema"
)

const (
	AlphaVantageURL = "https://www.alphavantage.co/query"

	UserAgent = "FinStatements/1.0"
)

var avFunctions = map[schema.StatementType]string{
	schema.Income:   "INCOME_STATEMENT",
	schema.Balance:  "BALANCE_SHEET",
	schema.CashFlow: "CASH_FLOW",
}

// Fetcher loads the three statements of a ticker from one source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, ticker string) (*calc.StatementSet, error)
}

// =============================================================================
// ALPHA VANTAGE CLIENT
// =============================================================================

type avResponse struct {
	Symbol           string           `json:"symbol"`
	AnnualReports    []map[string]any `json:"annualReports"`
	QuarterlyReports []map[string]any `json:"quarterlyReports"`
	Note             string           `json:"Note"`
	Information      string           `json:"Information"`
	ErrorMessage     string           `json:"Error Message"`
}

// AlphaVantageClient fetches fundamentals from Alpha Vantage.
type AlphaVantageClient struct {
	apiKey     string
	baseURL    string
	annual     bool
	httpClient *http.Client
	limiter    *rate.Limiter
}

// AlphaVantageOption configures an AlphaVantageClient.
type AlphaVantageOption func(*AlphaVantageClient)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithAnnualReports uses the latest annual report instead of the latest quarter.
func WithAnnualReports(annual bool) AlphaVantageOption {
	return func(c *AlphaVantageClient) { c.annual = annual }
}

// WithRequestsPerMinute throttles outgoing requests. Zero disables throttling.
func WithRequestsPerMinute(n int) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) AlphaVantageOption {
	return func(c *AlphaVantageClient) { c.httpClient = hc }
}

// NewAlphaVantageClient creates a client. An empty apiKey is accepted here and
// reported as a missing credential on Fetch.
func NewAlphaVantageClient(apiKey string, opts ...AlphaVantageOption) *AlphaVantageClient {
	c := &AlphaVantageClient{
		apiKey:  apiKey,
		baseURL: AlphaVantageURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AlphaVantageClient) Name() string { return string(SourceAlphaVantage) }

// Fetch requests the three statements concurrently and normalizes the most
// recent report of each. The first failure cancels the other requests.
func (c *AlphaVantageClient) Fetch(ctx context.Context, ticker string) (*calc.StatementSet, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, sourceErr(KindNotFound, ticker, "", errors.New("empty ticker"))
	}
	if c.apiKey == "" {
		return nil, sourceErr(KindMissingCredential, ticker, "", nil)
	}

	results := make([]calc.Record, len(schema.AllTypes()))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range schema.AllTypes() {
		g.Go(func() error {
			report, err := c.fetchReport(gctx, ticker, t)
			if err != nil {
				return err
			}
			results[i] = Normalize(t, SourceAlphaVantage, report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &calc.StatementSet{}
	for i, t := range schema.AllTypes() {
		_ = set.SetRecord(t, results[i])
	}
	log.Printf("[INGEST] Alpha Vantage: loaded %d statements for %s", len(results), ticker)
	return set, nil
}

// fetchReport returns the raw fields of the most recent report of statement t.
func (c *AlphaVantageClient) fetchReport(ctx context.Context, ticker string, t schema.StatementType) (map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, sourceErr(KindTransport, ticker, t, err)
		}
	}

	q := url.Values{}
	q.Set("function", avFunctions[t])
	q.Set("symbol", ticker)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, sourceErr(KindTransport, ticker, t, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, sourceErr(KindTransport, ticker, t, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, sourceErr(KindRateLimited, ticker, t, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, sourceErr(KindTransport, ticker, t, fmt.Errorf("Alpha Vantage returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sourceErr(KindTransport, ticker, t, fmt.Errorf("failed to read response: %w", err))
	}

	var payload avResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, sourceErr(KindDecode, ticker, t, err)
	}

	// Alpha Vantage answers throttled calls with 200 and a note instead of data.
	if payload.Note != "" || payload.Information != "" {
		return nil, sourceErr(KindRateLimited, ticker, t, errors.New(firstNonEmpty(payload.Note, payload.Information)))
	}
	if payload.ErrorMessage != "" {
		return nil, sourceErr(KindNotFound, ticker, t, errors.New(payload.ErrorMessage))
	}

	reports := payload.QuarterlyReports
	if c.annual {
		reports = payload.AnnualReports
	}
	if len(reports) == 0 {
		return nil, sourceErr(KindNotFound, ticker, t, nil)
	}
	return reports[0], nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
