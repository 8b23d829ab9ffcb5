// Package calc provides deterministic calculations over the statement schema:
// the aggregation engine (subtotals and totals) and the ratio engine.
// Everything here is a pure function of the current records; nothing is cached.
package calc

import (
	"errors"

	"fin_statements/pkg/core/schema"
)

// ErrNonFiniteAmount is returned when a record carries NaN or ±Inf.
var ErrNonFiniteAmount = errors.New("non-finite amount")

// Record is a flat mapping from line item key to amount for one statement.
// Missing line items count as 0. Override keys are present only when the
// source supplied a value for them.
type Record map[string]float64

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the amount for key, or 0 when absent.
func (r Record) Get(key string) float64 {
	return r[key]
}

// StatementSet holds the current record of each statement.
type StatementSet struct {
	Income   Record `json:"income"`
	Balance  Record `json:"balance"`
	CashFlow Record `json:"cashflow"`
}

// Record returns the record for statement type t.
func (s *StatementSet) Record(t schema.StatementType) Record {
	switch t {
	case schema.Income:
		return s.Income
	case schema.Balance:
		return s.Balance
	case schema.CashFlow:
		return s.CashFlow
	}
	return nil
}

// SetRecord replaces the record for statement type t.
func (s *StatementSet) SetRecord(t schema.StatementType, r Record) error {
	switch t {
	case schema.Income:
		s.Income = r
	case schema.Balance:
		s.Balance = r
	case schema.CashFlow:
		s.CashFlow = r
	default:
		return schema.ErrUnknownStatement
	}
	return nil
}

// Clone deep-copies the set.
func (s *StatementSet) Clone() *StatementSet {
	if s == nil {
		return nil
	}
	return &StatementSet{
		Income:   s.Income.Clone(),
		Balance:  s.Balance.Clone(),
		CashFlow: s.CashFlow.Clone(),
	}
}

// TotalSource records which path produced a total.
type TotalSource string

const (
	SourceComputed TotalSource = "computed" // summed from its terms
	SourceOverride TotalSource = "override" // taken verbatim from the record
	SourceResidual TotalSource = "residual" // parent override minus sibling totals
)

// TotalValue is one derived subtotal or total.
type TotalValue struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Section string      `json:"section,omitempty"`
	Value   float64     `json:"value"`
	Source  TotalSource `json:"source"`
	Grand   bool        `json:"grand,omitempty"`
}

// Totals is the ordered result of ComputeTotals.
type Totals struct {
	Statement schema.StatementType `json:"statement"`
	Items     []TotalValue         `json:"items"`
}

// Get returns the value of the named total.
func (t *Totals) Get(key string) (TotalValue, bool) {
	for _, item := range t.Items {
		if item.Key == key {
			return item, true
		}
	}
	return TotalValue{}, false
}

// Value returns the numeric value of the named total, 0 when unknown.
func (t *Totals) Value(key string) float64 {
	v, _ := t.Get(key)
	return v.Value
}

// Values returns the totals as a flat map.
func (t *Totals) Values() map[string]float64 {
	out := make(map[string]float64, len(t.Items))
	for _, item := range t.Items {
		out[item.Key] = item.Value
	}
	return out
}
