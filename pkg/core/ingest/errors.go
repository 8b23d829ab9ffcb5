package ingest

import (
	"errors"
	"fmt"

	"fin_statements/pkg/core/schema"
)

// ErrorKind classifies a failed fetch from a statement source.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindTransport         ErrorKind = "transport"
	KindRateLimited       ErrorKind = "rate_limited"
	KindNotFound          ErrorKind = "not_found"
	KindDecode            ErrorKind = "decode"
)

// Sentinels matched by SourceError.Is.
var (
	ErrMissingCredential = errors.New("source credential not configured")
	ErrTransport         = errors.New("source unreachable")
	ErrRateLimited       = errors.New("source rate limit reached")
	ErrTickerNotFound    = errors.New("ticker not found")
	ErrDecode            = errors.New("malformed source payload")
)

var kindSentinel = map[ErrorKind]error{
	KindMissingCredential: ErrMissingCredential,
	KindTransport:         ErrTransport,
	KindRateLimited:       ErrRateLimited,
	KindNotFound:          ErrTickerNotFound,
	KindDecode:            ErrDecode,
}

// SourceError describes why a statement could not be fetched.
// Statement is empty when the failure is not tied to one statement.
type SourceError struct {
	Kind      ErrorKind
	Ticker    string
	Statement schema.StatementType
	Err       error
}

func (e *SourceError) Error() string {
	where := e.Ticker
	if e.Statement != "" {
		where = fmt.Sprintf("%s %s", e.Ticker, e.Statement)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", kindSentinel[e.Kind], where, e.Err)
	}
	return fmt.Sprintf("%s (%s)", kindSentinel[e.Kind], where)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRateLimited) and friends match on Kind.
func (e *SourceError) Is(target error) bool {
	return kindSentinel[e.Kind] == target
}

// Message is the user-facing text for the error.
func (e *SourceError) Message() string {
	switch e.Kind {
	case KindMissingCredential:
		return "No API key configured for the data source."
	case KindRateLimited:
		return "API rate limit reached. Please try again later."
	case KindNotFound:
		return fmt.Sprintf("No financial data found for ticker %q.", e.Ticker)
	case KindDecode:
		return "The data source returned an unexpected response."
	default:
		return "Failed to fetch data. Please try again later."
	}
}

func sourceErr(kind ErrorKind, ticker string, t schema.StatementType, err error) *SourceError {
	return &SourceError{Kind: kind, Ticker: ticker, Statement: t, Err: err}
}

// KindOf returns the kind of a SourceError in err's chain, or "" when none.
func KindOf(err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
