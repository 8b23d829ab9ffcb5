// Package schema defines the canonical line items, sections and derived totals
// of the three financial statements. It is data, not behaviour: the aggregation
// and ratio engines in pkg/core/calc walk these tables.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// StatementType identifies one of the three financial statements.
type StatementType string

const (
	Income   StatementType = "income"
	Balance  StatementType = "balance"
	CashFlow StatementType = "cashflow"
)

// ErrUnknownStatement is a configuration error: the caller asked for a
// statement type that has no schema.
var ErrUnknownStatement = errors.New("unknown statement type")

// AllTypes lists the statement types in display order.
func AllTypes() []StatementType {
	return []StatementType{Income, Balance, CashFlow}
}

// ParseType converts user input ("Income", "cash-flow", "cashflow") into a StatementType.
func ParseType(s string) (StatementType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "")
	norm = strings.ReplaceAll(norm, "_", "")
	switch norm {
	case "income", "incomestatement":
		return Income, nil
	case "balance", "balancesheet":
		return Balance, nil
	case "cashflow", "cashflowstatement":
		return CashFlow, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatement, s)
}

// Section is an ordered group of line item keys (e.g. current assets).
type Section struct {
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Keys  []string `json:"keys"`
}

// Term is one signed operand of a derived total. Key refers either to a line
// item or to a total defined earlier in the same statement.
type Term struct {
	Key  string  `json:"key"`
	Sign float64 `json:"sign"`
}

// Plus and Minus build terms.
func Plus(key string) Term  { return Term{Key: key, Sign: 1} }
func Minus(key string) Term { return Term{Key: key, Sign: -1} }

// TotalDef describes how a subtotal or total is derived.
//
// When OverrideKey is present in the source record its value is used verbatim.
// When ResidualOf names another total whose override is present, the value is
// that override minus the ResidualLess totals (e.g. long-term assets as
// total assets minus current assets).
type TotalDef struct {
	Key          string   `json:"key"`
	Section      string   `json:"section,omitempty"`
	Terms        []Term   `json:"terms"`
	OverrideKey  string   `json:"override_key,omitempty"`
	ResidualOf   string   `json:"residual_of,omitempty"`
	ResidualLess []string `json:"residual_less,omitempty"`
	Grand        bool     `json:"grand,omitempty"` // statement-level total rather than a section subtotal
}

// Statement is the full schema for one statement type.
type Statement struct {
	Type     StatementType `json:"type"`
	Title    string        `json:"title"`
	Sections []Section     `json:"sections"`
	Totals   []TotalDef    `json:"totals"`
}

// LineItem is a flattened view of one input field.
type LineItem struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Section string `json:"section"`
}

// Keys returns every line item key of the statement in display order.
func (s *Statement) Keys() []string {
	var keys []string
	for _, sec := range s.Sections {
		keys = append(keys, sec.Keys...)
	}
	return keys
}

// LineItems returns every line item with its label and section.
func (s *Statement) LineItems() []LineItem {
	var items []LineItem
	for _, sec := range s.Sections {
		for _, k := range sec.Keys {
			items = append(items, LineItem{Key: k, Label: Label(k), Section: sec.Name})
		}
	}
	return items
}

// HasLineItem reports whether key is an input field of the statement.
func (s *Statement) HasLineItem(key string) bool {
	for _, sec := range s.Sections {
		for _, k := range sec.Keys {
			if k == key {
				return true
			}
		}
	}
	return false
}

// Total returns the total definition for key, if any.
func (s *Statement) Total(key string) (TotalDef, bool) {
	for _, t := range s.Totals {
		if t.Key == key {
			return t, true
		}
	}
	return TotalDef{}, false
}

// OverrideKeys returns the override keys of every total.
func (s *Statement) OverrideKeys() []string {
	var keys []string
	for _, t := range s.Totals {
		if t.OverrideKey != "" {
			keys = append(keys, t.OverrideKey)
		}
	}
	return keys
}

// IsOverrideKey reports whether key overrides one of the statement's totals.
func (s *Statement) IsOverrideKey(key string) bool {
	for _, t := range s.Totals {
		if t.OverrideKey == key {
			return true
		}
	}
	return false
}

// DependsOn reports whether the total named total (transitively) includes key,
// either as a line item term or through a residual rule.
func (s *Statement) DependsOn(total, key string) bool {
	return s.dependsOn(total, key, map[string]bool{})
}

func (s *Statement) dependsOn(total, key string, seen map[string]bool) bool {
	if seen[total] {
		return false
	}
	seen[total] = true

	def, ok := s.Total(total)
	if !ok {
		return false
	}
	for _, term := range def.Terms {
		if term.Key == key {
			return true
		}
		if _, isTotal := s.Total(term.Key); isTotal && s.dependsOn(term.Key, key, seen) {
			return true
		}
	}
	for _, less := range def.ResidualLess {
		if less == key || s.dependsOn(less, key, seen) {
			return true
		}
	}
	return false
}
