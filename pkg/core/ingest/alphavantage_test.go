package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

var avFixtures = map[string]string{
	"INCOME_STATEMENT": `{"symbol":"IBM","quarterlyReports":[
		{"fiscalDateEnding":"2024-03-31","totalRevenue":"1000","costOfRevenue":"600","grossProfit":"400",
		 "sellingGeneralAndAdministrative":"150","interestExpense":"50","incomeTaxExpense":"40","netIncome":"160"},
		{"fiscalDateEnding":"2023-12-31","totalRevenue":"900"}],
		"annualReports":[{"fiscalDateEnding":"2023-12-31","totalRevenue":"4000"}]}`,
	"BALANCE_SHEET": `{"symbol":"IBM","quarterlyReports":[
		{"cashAndCashEquivalentsAtCarryingValue":"200","currentNetReceivables":"100","inventory":"None",
		 "totalAssets":"5000","treasuryStock":"30"}]}`,
	"CASH_FLOW": `{"symbol":"IBM","quarterlyReports":[
		{"netIncome":"160","depreciationDepletionAndAmortization":"40","capitalExpenditures":"60","operatingCashflow":"210"}]}`,
}

func newAVServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func fixtureHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("apikey") == "" {
		http.Error(w, "no key", http.StatusUnauthorized)
		return
	}
	fmt.Fprint(w, avFixtures[r.URL.Query().Get("function")])
}

func TestAlphaVantage_FetchQuarterly(t *testing.T) {
	srv := newAVServer(t, fixtureHandler)
	client := NewAlphaVantageClient("demo", WithBaseURL(srv.URL))

	set, err := client.Fetch(context.Background(), "ibm")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if set.Income["totalRevenue"] != 1000 {
		t.Errorf("totalRevenue = %v, want latest quarter 1000", set.Income["totalRevenue"])
	}
	if set.Income["grossProfit"] != 400 {
		t.Errorf("grossProfit override = %v, want 400", set.Income["grossProfit"])
	}
	if set.Balance["inventory"] != 0 {
		t.Errorf("inventory = %v, want 0 for None", set.Balance["inventory"])
	}
	if set.Balance["treasuryStock"] != -30 {
		t.Errorf("treasuryStock = %v, want -30", set.Balance["treasuryStock"])
	}
	if set.CashFlow["capitalExpenditures"] != -60 {
		t.Errorf("capitalExpenditures = %v, want -60", set.CashFlow["capitalExpenditures"])
	}
	if set.CashFlow["totalCashFromOperatingActivities"] != 210 {
		t.Errorf("operating override = %v, want 210", set.CashFlow["totalCashFromOperatingActivities"])
	}
}

func TestAlphaVantage_FetchAnnual(t *testing.T) {
	srv := newAVServer(t, fixtureHandler)
	client := NewAlphaVantageClient("demo", WithBaseURL(srv.URL), WithAnnualReports(true))

	_, err := client.Fetch(context.Background(), "IBM")
	// Balance and cash-flow fixtures carry no annual reports.
	if !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("expected ErrTickerNotFound, got %v", err)
	}
}

func TestAlphaVantage_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		kind   ErrorKind
	}{
		{"rate limit note", 200, `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`, ErrRateLimited, KindRateLimited},
		{"rate limit information", 200, `{"Information":"Our standard API rate limit is 25 requests per day."}`, ErrRateLimited, KindRateLimited},
		{"http 429", 429, `{}`, ErrRateLimited, KindRateLimited},
		{"invalid symbol", 200, `{"Error Message":"Invalid API call."}`, ErrTickerNotFound, KindNotFound},
		{"no reports", 200, `{"symbol":"ZZZZ","quarterlyReports":[]}`, ErrTickerNotFound, KindNotFound},
		{"server error", 500, `oops`, ErrTransport, KindTransport},
		{"malformed json", 200, `{"quarterlyReports":`, ErrDecode, KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			client := NewAlphaVantageClient("demo", WithBaseURL(srv.URL))

			_, err := client.Fetch(context.Background(), "ZZZZ")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if KindOf(err) != tt.kind {
				t.Errorf("KindOf = %q, want %q", KindOf(err), tt.kind)
			}
			var se *SourceError
			if errors.As(err, &se) && se.Ticker != "ZZZZ" {
				t.Errorf("Ticker = %q, want ZZZZ", se.Ticker)
			}
		})
	}
}

func TestAlphaVantage_MissingCredential(t *testing.T) {
	var calls int32
	srv := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	client := NewAlphaVantageClient("", WithBaseURL(srv.URL))

	_, err := client.Fetch(context.Background(), "AAPL")
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("request sent without credential")
	}
}

func TestAlphaVantage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(fixtureHandler))
	url := srv.URL
	srv.Close()

	client := NewAlphaVantageClient("demo", WithBaseURL(url))
	_, err := client.Fetch(context.Background(), "AAPL")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestAlphaVantage_ContextCancelled(t *testing.T) {
	srv := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	client := NewAlphaVantageClient("demo", WithBaseURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Fetch(ctx, "AAPL"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSourceError_Message(t *testing.T) {
	err := &SourceError{Kind: KindRateLimited, Ticker: "AAPL"}
	if err.Message() != "API rate limit reached. Please try again later." {
		t.Errorf("Message = %q", err.Message())
	}
	if errors.Is(err, ErrTransport) {
		t.Error("rate limit error matched ErrTransport")
	}
}
