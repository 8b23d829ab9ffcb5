package calc

import (
	"fmt"
	"math"
	"sort"

	"fin_statements/pkg/core/schema"
)

// ComputeTotals derives every subtotal and total of statement t from record.
//
// Totals are evaluated in schema order, so a total may use earlier ones.
// For each total:
//   - a present override key wins verbatim;
//   - otherwise a residual total whose parent override is present becomes
//     parent override minus the listed sibling totals;
//   - otherwise the signed terms are summed in declaration order.
//
// The only errors are an unknown statement type (configuration) and a
// non-finite amount, either in record or in a total that overflowed.
func ComputeTotals(t schema.StatementType, record Record) (*Totals, error) {
	s, err := schema.Get(t)
	if err != nil {
		return nil, err
	}
	if key, ok := firstNonFinite(record); ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNonFiniteAmount, t, key)
	}

	computed := make(map[string]float64, len(s.Totals))
	result := &Totals{Statement: t, Items: make([]TotalValue, 0, len(s.Totals))}

	for _, def := range s.Totals {
		value, source := evaluate(def, s, record, computed)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %s.%s overflows", ErrNonFiniteAmount, t, def.Key)
		}
		computed[def.Key] = value
		result.Items = append(result.Items, TotalValue{
			Key:     def.Key,
			Label:   schema.Label(def.Key),
			Section: def.Section,
			Value:   value,
			Source:  source,
			Grand:   def.Grand,
		})
	}
	return result, nil
}

func evaluate(def schema.TotalDef, s *schema.Statement, record Record, computed map[string]float64) (float64, TotalSource) {
	if def.OverrideKey != "" {
		if v, ok := record[def.OverrideKey]; ok {
			return v, SourceOverride
		}
	}

	if def.ResidualOf != "" {
		if parent, ok := s.Total(def.ResidualOf); ok {
			if v, ok := record[parent.OverrideKey]; ok {
				for _, less := range def.ResidualLess {
					v -= computed[less]
				}
				return v, SourceResidual
			}
		}
	}

	return sumTerms(def.Terms, record, computed), SourceComputed
}

// sumTerms adds the signed terms in order; earlier totals shadow line items.
func sumTerms(terms []schema.Term, record Record, computed map[string]float64) float64 {
	total := 0.0
	for _, term := range terms {
		v, ok := computed[term.Key]
		if !ok {
			v = record[term.Key]
		}
		total += term.Sign * v
	}
	return total
}

func firstNonFinite(record Record) (string, bool) {
	keys := make([]string, 0, len(record))
	for k, v := range record {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return keys[0], true
}

// Resolve looks up key as a total first and as a line item second.
func Resolve(record Record, totals *Totals, key string) float64 {
	if totals != nil {
		if v, ok := totals.Get(key); ok {
			return v.Value
		}
	}
	return record.Get(key)
}

// ComputedSet holds the totals of all three statements for one StatementSet.
type ComputedSet struct {
	Income   *Totals `json:"income"`
	Balance  *Totals `json:"balance"`
	CashFlow *Totals `json:"cashflow"`
}

// Totals returns the totals for statement type t.
func (c *ComputedSet) Totals(t schema.StatementType) *Totals {
	switch t {
	case schema.Income:
		return c.Income
	case schema.Balance:
		return c.Balance
	case schema.CashFlow:
		return c.CashFlow
	}
	return nil
}

// ComputeAll runs ComputeTotals for every statement in set.
func ComputeAll(set *StatementSet) (*ComputedSet, error) {
	out := &ComputedSet{}
	for _, t := range schema.AllTypes() {
		totals, err := ComputeTotals(t, set.Record(t))
		if err != nil {
			return nil, err
		}
		switch t {
		case schema.Income:
			out.Income = totals
		case schema.Balance:
			out.Balance = totals
		case schema.CashFlow:
			out.CashFlow = totals
		}
	}
	return out, nil
}
