package schema

import (
	"errors"
	"testing"
)

func TestValidate_CanonicalTables(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("canonical schema failed validation: %v", err)
	}
}

func TestValidate_RejectsForwardReference(t *testing.T) {
	s := &Statement{
		Type:     Income,
		Sections: []Section{{Name: "a", Keys: []string{"x"}}},
		Totals: []TotalDef{
			{Key: "first", Terms: []Term{Plus("second")}},
			{Key: "second", Terms: []Term{Plus("x")}},
		},
	}
	if err := validateStatement(s); err == nil {
		t.Error("expected error for total referencing a later total")
	}
}

func TestValidate_RejectsDuplicateLineItem(t *testing.T) {
	s := &Statement{
		Sections: []Section{
			{Name: "a", Keys: []string{"x"}},
			{Name: "b", Keys: []string{"x"}},
		},
	}
	if err := validateStatement(s); err == nil {
		t.Error("expected error for duplicate line item")
	}
}

func TestGet_UnknownStatement(t *testing.T) {
	_, err := Get(StatementType("equity"))
	if !errors.Is(err, ErrUnknownStatement) {
		t.Errorf("expected ErrUnknownStatement, got %v", err)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want StatementType
	}{
		{"income", Income},
		{"Income-Statement", Income},
		{"balance_sheet", Balance},
		{"cash-flow", CashFlow},
		{"CASHFLOW", CashFlow},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if err != nil {
			t.Errorf("ParseType(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseType(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseType("ledger"); !errors.Is(err, ErrUnknownStatement) {
		t.Errorf("expected ErrUnknownStatement for ledger, got %v", err)
	}
}

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"netIncome", "Net Income"},
		{"cash", "Cash"},
		{"changeToAccountReceivables", "Change To Account Receivables"},
		{"totalCashFromOperatingActivities", "Total Cash From Operating Activities"},
	}
	for _, tt := range tests {
		if got := FormatLabel(tt.key); got != tt.want {
			t.Errorf("FormatLabel(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
	if got := Label("researchDevelopment"); got != "Research & Development" {
		t.Errorf("Label override not applied, got %q", got)
	}
}

func TestDependsOn(t *testing.T) {
	bs := MustGet(Balance)

	tests := []struct {
		total string
		key   string
		want  bool
	}{
		{"totalCurrentAssets", "cash", true},
		{"totalAssets", "cash", true},
		{"longTermAssets", "cash", true}, // via the residual rule
		{"totalLiabilities", "cash", false},
		{"totalLiabilitiesAndStockholdersEquity", "cash", false},
		{"totalLiabilitiesAndStockholdersEquity", "commonStock", true},
	}
	for _, tt := range tests {
		if got := bs.DependsOn(tt.total, tt.key); got != tt.want {
			t.Errorf("DependsOn(%s, %s) = %v, want %v", tt.total, tt.key, got, tt.want)
		}
	}
}

func TestExplain_CoversEveryKey(t *testing.T) {
	for _, st := range AllTypes() {
		s := MustGet(st)
		keys := s.Keys()
		for _, def := range s.Totals {
			keys = append(keys, def.Key)
		}
		for _, k := range keys {
			if _, err := Explain(st, k); err != nil {
				t.Errorf("%s: %v", st, err)
			}
		}
	}
}
