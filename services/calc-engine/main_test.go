package main

import (
	"testing"

	"fin_statements/pkg/core/calc"
)

func TestParseSet(t *testing.T) {
	set, err := parseSet(`{
		income: {totalRevenue: 1000, costOfRevenue: 600},
		balance_sheet: {cash: "250", totalAssets: 250},
		cashflow: {capitalExpenditures: 40},
	}`)
	if err != nil {
		t.Fatalf("parseSet failed: %v", err)
	}
	computed, err := calc.ComputeAll(set)
	if err != nil {
		t.Fatalf("ComputeAll failed: %v", err)
	}
	if gp := computed.Income.Value("grossProfit"); gp != 400 {
		t.Errorf("grossProfit = %v, want 400", gp)
	}
	if cash := set.Balance["cash"]; cash != 250 {
		t.Errorf("cash = %v, want 250", cash)
	}
	// Internal data is taken as-is: no sign normalisation.
	if capex := set.CashFlow["capitalExpenditures"]; capex != 40 {
		t.Errorf("capitalExpenditures = %v, want 40", capex)
	}
}

func TestParseSet_UnknownStatement(t *testing.T) {
	if _, err := parseSet(`{"equity": {"cash": 1}}`); err == nil {
		t.Error("expected an error for an unknown statement")
	}
}
