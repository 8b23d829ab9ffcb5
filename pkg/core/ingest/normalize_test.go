package ingest

import (
	"encoding/json"
	"math"
	"testing"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/schema"
)

func TestNormalize_EmptyInputAllZero(t *testing.T) {
	for _, st := range schema.AllTypes() {
		for _, src := range []Source{SourceAlphaVantage, SourceInternal} {
			rec := Normalize(st, src, map[string]any{})
			s := schema.MustGet(st)
			if len(rec) != len(s.Keys()) {
				t.Errorf("%s/%s: %d keys, want %d", st, src, len(rec), len(s.Keys()))
			}
			for k, v := range rec {
				if v != 0 {
					t.Errorf("%s/%s: %s = %v, want 0", st, src, k, v)
				}
				if s.IsOverrideKey(k) && !s.HasLineItem(k) {
					t.Errorf("%s/%s: override %s set without source value", st, src, k)
				}
			}
		}
	}
}

func TestNormalize_NilInput(t *testing.T) {
	rec := Normalize(schema.Balance, SourceAlphaVantage, nil)
	if rec.Get("cash") != 0 || len(rec) == 0 {
		t.Errorf("unexpected record for nil input: %v", rec)
	}
}

func TestNormalize_ValueKinds(t *testing.T) {
	raw := map[string]any{
		"totalRevenue":                    "383285000000",
		"costOfRevenue":                   json.Number("214137000000"),
		"researchAndDevelopment":          29915000000.0,
		"sellingGeneralAndAdministrative": "None",
		"interestExpense":                 nil,
		"incomeTaxExpense":                "not-a-number",
		"otherNonOperatingIncome":         "1,250",
		"grossProfit":                     "169148000000",
		"operatingIncome":                 "None",
	}
	rec := Normalize(schema.Income, SourceAlphaVantage, raw)

	tests := []struct {
		key  string
		want float64
	}{
		{"totalRevenue", 383285000000},
		{"costOfRevenue", 214137000000},
		{"researchDevelopment", 29915000000},
		{"sellingGeneralAndAdmin", 0},
		{"interestExpense", 0},
		{"incomeTaxExpense", 0},
		{"otherIncomeExpense", 1250},
		{"grossProfit", 169148000000},
	}
	for _, tt := range tests {
		if got := rec[tt.key]; got != tt.want {
			t.Errorf("%s = %v, want %v", tt.key, got, tt.want)
		}
	}
	if _, ok := rec["operatingIncome"]; ok {
		t.Error("operatingIncome override set from a None value")
	}
	for k, v := range rec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite", k)
		}
	}
}

func TestNormalize_FirstParseableCandidateWins(t *testing.T) {
	raw := map[string]any{
		"cashAndCashEquivalentsAtCarryingValue": "None",
		"cashAndShortTermInvestments":           "61555000000",
	}
	rec := Normalize(schema.Balance, SourceAlphaVantage, raw)
	if rec["cash"] != 61555000000 {
		t.Errorf("cash = %v, want fallback candidate value", rec["cash"])
	}
}

func TestNormalize_NonFiniteStringIsZero(t *testing.T) {
	rec := Normalize(schema.Income, SourceInternal, map[string]any{"totalRevenue": "NaN", "costOfRevenue": "+Inf"})
	if rec["totalRevenue"] != 0 || rec["costOfRevenue"] != 0 {
		t.Errorf("non-finite strings not zeroed: %v", rec)
	}
}

func TestNormalize_OutflowsNegative(t *testing.T) {
	raw := map[string]any{
		"capitalExpenditures": "10959000000",
		"dividendPayout":      "15025000000",
		"operatingCashflow":   "110543000000",
		"netIncome":           "96995000000",
	}
	rec := Normalize(schema.CashFlow, SourceAlphaVantage, raw)

	if rec["capitalExpenditures"] != -10959000000 {
		t.Errorf("capitalExpenditures = %v, want negative", rec["capitalExpenditures"])
	}
	if rec["dividendsPaid"] != -15025000000 {
		t.Errorf("dividendsPaid = %v, want negative", rec["dividendsPaid"])
	}
	if rec["totalCashFromOperatingActivities"] != 110543000000 {
		t.Errorf("operating override = %v", rec["totalCashFromOperatingActivities"])
	}
	if rec["changeToOperatingActivities"] != 0 {
		t.Errorf("operatingCashflow leaked into changeToOperatingActivities: %v", rec["changeToOperatingActivities"])
	}

	totals, err := calc.ComputeTotals(schema.CashFlow, rec)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}
	if v := totals.Value("totalCashFromOperatingActivities"); v != 110543000000 {
		t.Errorf("operating total = %v, want reported value", v)
	}
	if v := totals.Value("totalCashflowsFromInvestingActivities"); v != -10959000000 {
		t.Errorf("investing total = %v, want -10959000000", v)
	}
}

func TestNormalize_AlreadyNegativeOutflowKept(t *testing.T) {
	rec := Normalize(schema.CashFlow, SourceInternal, map[string]any{"capitalExpenditures": -5.0})
	if rec["capitalExpenditures"] != -5 {
		t.Errorf("capitalExpenditures = %v, want -5", rec["capitalExpenditures"])
	}
}

func TestNormalize_InternalIdentity(t *testing.T) {
	raw := map[string]any{"cash": 100.0, "totalAssets": 250.0, "unknownField": 9.0}
	rec := Normalize(schema.Balance, SourceInternal, raw)
	if rec["cash"] != 100 || rec["totalAssets"] != 250 {
		t.Errorf("identity mapping lost values: %v", rec)
	}
	if _, ok := rec["unknownField"]; ok {
		t.Error("unknown field copied into record")
	}
}

func TestNormalize_UnknownStatementIsEmpty(t *testing.T) {
	rec := Normalize(schema.StatementType("equity"), SourceInternal, map[string]any{"cash": 1.0})
	if len(rec) != 0 {
		t.Errorf("expected empty record, got %v", rec)
	}
}

func TestValidateMappings(t *testing.T) {
	if err := ValidateMappings(); err != nil {
		t.Fatalf("ValidateMappings: %v", err)
	}
}

func TestNormalizeSet(t *testing.T) {
	set := NormalizeSet(SourceInternal, map[schema.StatementType]map[string]any{
		schema.Income: {"totalRevenue": 1000.0, "costOfRevenue": 600.0},
	})
	totals, err := calc.ComputeTotals(schema.Income, set.Income)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}
	if v := totals.Value("grossProfit"); v != 400 {
		t.Errorf("grossProfit = %v, want 400", v)
	}
	if len(set.Balance) == 0 || len(set.CashFlow) == 0 {
		t.Error("missing statements not filled with zeros")
	}
}
