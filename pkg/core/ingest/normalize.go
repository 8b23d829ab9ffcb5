package ingest

import (
	"encoding/json"
	"log"
	"math"
	"strconv"
	"strings"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/schema"
)

type parseStatus int

const (
	parsed parseStatus = iota
	absent
	invalid
)

// Normalize turns a raw source payload for statement t into a canonical record.
//
// Every line item of the schema is present in the result; a missing,
// null or unparseable value becomes 0 (unparseable ones are logged).
// Override keys are set only when the source supplied a parseable value.
// Outflow fields are forced negative. Normalize never fails on data: an
// unknown statement or source is a configuration error, logged and answered
// with an empty record.
func Normalize(t schema.StatementType, src Source, raw map[string]any) calc.Record {
	m, err := MappingFor(t, src)
	if err != nil {
		log.Printf("[NORMALIZE] %v", err)
		return calc.Record{}
	}

	rec := make(calc.Record)
	for _, k := range schema.MustGet(t).Keys() {
		rec[k] = 0
	}

	for _, fld := range m.LineItems {
		v, ok := lookup(t, fld, raw)
		if !ok {
			continue
		}
		if fld.Outflow {
			v = makeNegative(v)
		}
		rec[fld.Key] = v
	}
	for _, fld := range m.Overrides {
		if v, ok := lookup(t, fld, raw); ok {
			rec[fld.Key] = v
		}
	}
	return rec
}

// NormalizeSet normalizes one raw payload per statement.
func NormalizeSet(src Source, raw map[schema.StatementType]map[string]any) *calc.StatementSet {
	set := &calc.StatementSet{}
	for _, t := range schema.AllTypes() {
		_ = set.SetRecord(t, Normalize(t, src, raw[t]))
	}
	return set
}

// lookup returns the first parseable candidate of fld.
func lookup(t schema.StatementType, fld Field, raw map[string]any) (float64, bool) {
	for _, name := range fld.Raw {
		v, present := raw[name]
		if !present {
			continue
		}
		amount, status := parseAmount(v)
		switch status {
		case parsed:
			return amount, true
		case invalid:
			log.Printf("[NORMALIZE] %s.%s: cannot parse %v from %q, using 0", t, fld.Key, v, name)
		}
	}
	return 0, false
}

func parseAmount(v any) (float64, parseStatus) {
	var amount float64
	switch x := v.(type) {
	case nil:
		return 0, absent
	case float64:
		amount = x
	case float32:
		amount = float64(x)
	case int:
		amount = float64(x)
	case int64:
		amount = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, invalid
		}
		amount = n
	case string:
		s := strings.TrimSpace(x)
		switch strings.ToLower(s) {
		case "", "none", "null", "-":
			return 0, absent
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, invalid
		}
		amount = n
	default:
		return 0, invalid
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, invalid
	}
	return amount, parsed
}

// makeNegative enforces the outflow convention; already negative values pass through.
func makeNegative(v float64) float64 {
	if v > 0 {
		return -v
	}
	return v
}
