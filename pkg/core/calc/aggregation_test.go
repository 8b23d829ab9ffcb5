package calc

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"fin_statements/pkg/core/schema"
)

// Apple FY2023 balance sheet, millions USD, rounded.
var appleBalance = Record{
	"cash":                    29965,
	"shortTermInvestments":    31590,
	"netReceivables":          60985,
	"inventory":               6331,
	"otherCurrentAssets":      14695,
	"longTermInvestments":     100544,
	"propertyPlantEquipment":  43715,
	"otherAssets":             64758,
	"accountsPayable":         62611,
	"shortTermDebt":           15807,
	"otherCurrentLiabilities": 66890,
	"longTermDebt":            95281,
	"otherLiabilities":        49848,
	"commonStock":             73812,
	"retainedEarnings":        -214,
	"otherStockholderEquity":  -11452,
}

func TestComputeTotals_IncomeGrossProfitWithoutOverride(t *testing.T) {
	rec := Record{"totalRevenue": 1000, "costOfRevenue": 600}

	totals, err := ComputeTotals(schema.Income, rec)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}

	gp, ok := totals.Get("grossProfit")
	if !ok {
		t.Fatal("grossProfit missing from totals")
	}
	if gp.Value != 400 {
		t.Errorf("grossProfit = %v, want 400", gp.Value)
	}
	if gp.Source != SourceComputed {
		t.Errorf("grossProfit source = %s, want computed", gp.Source)
	}
	// No other expenses: operating income and net income equal gross profit.
	if v := totals.Value("netIncome"); v != 400 {
		t.Errorf("netIncome = %v, want 400", v)
	}
}

func TestComputeTotals_IncomeChain(t *testing.T) {
	rec := Record{
		"totalRevenue":           1000,
		"costOfRevenue":          600,
		"researchDevelopment":    50,
		"sellingGeneralAndAdmin": 100,
		"otherOperatingExpenses": 10,
		"interestExpense":        20,
		"otherIncomeExpense":     5,
		"incomeTaxExpense":       45,
	}
	totals, err := ComputeTotals(schema.Income, rec)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}

	want := map[string]float64{
		"grossProfit":      400,
		"operatingExpense": 160,
		"operatingIncome":  240,
		"incomeBeforeTax":  225,
		"netIncome":        180,
	}
	for k, v := range want {
		if got := totals.Value(k); got != v {
			t.Errorf("%s = %v, want %v", k, got, v)
		}
	}
}

func TestComputeTotals_BalanceOverrideWins(t *testing.T) {
	// Current 3000 + long-term 1800 = 4800, but the source reports 5000.
	rec := Record{
		"cash":                   1000,
		"netReceivables":         2000,
		"propertyPlantEquipment": 1800,
		"totalAssets":            5000,
	}

	totals, err := ComputeTotals(schema.Balance, rec)
	if err != nil {
		t.Fatalf("ComputeTotals returned error for inconsistent data: %v", err)
	}

	ta, _ := totals.Get("totalAssets")
	if ta.Value != 5000 || ta.Source != SourceOverride {
		t.Errorf("totalAssets = %v (%s), want 5000 (override)", ta.Value, ta.Source)
	}
	lta, _ := totals.Get("longTermAssets")
	if lta.Value != 2000 || lta.Source != SourceResidual {
		t.Errorf("longTermAssets = %v (%s), want residual 2000", lta.Value, lta.Source)
	}
	if v := totals.Value("totalCurrentAssets"); v != 3000 {
		t.Errorf("totalCurrentAssets = %v, want 3000", v)
	}
}

func TestComputeTotals_BalanceNotReconciled(t *testing.T) {
	rec := Record{"cash": 100, "longTermDebt": 30, "commonStock": 50}
	totals, err := ComputeTotals(schema.Balance, rec)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}
	// Assets 100 vs liabilities + equity 80: reported as-is.
	if v := totals.Value("totalAssets"); v != 100 {
		t.Errorf("totalAssets = %v, want 100", v)
	}
	if v := totals.Value("totalLiabilitiesAndStockholdersEquity"); v != 80 {
		t.Errorf("totalLiabilitiesAndStockholdersEquity = %v, want 80", v)
	}

	check := CheckBalanceSheet(totals)
	if check.IsBalanced {
		t.Error("expected imbalance to be reported")
	}
	if check.Gap != 20 {
		t.Errorf("gap = %v, want 20", check.Gap)
	}
}

func TestComputeTotals_CashFlowOperating(t *testing.T) {
	rec := Record{"netIncome": 100, "depreciation": 20, "changeToAccountReceivables": -10}
	totals, err := ComputeTotals(schema.CashFlow, rec)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}
	op, _ := totals.Get("totalCashFromOperatingActivities")
	if op.Value != 110 || op.Source != SourceComputed {
		t.Errorf("operating cash flow = %v (%s), want 110 (computed)", op.Value, op.Source)
	}
	if v := totals.Value("changeInCash"); v != 110 {
		t.Errorf("changeInCash = %v, want 110", v)
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	for _, st := range schema.AllTypes() {
		rec := Record{}
		for i, k := range schema.MustGet(st).Keys() {
			rec[k] = float64(i*137%97) - 20.5
		}
		first, err := ComputeTotals(st, rec)
		if err != nil {
			t.Fatalf("%s: %v", st, err)
		}
		second, _ := ComputeTotals(st, rec)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: ComputeTotals not idempotent", st)
		}
	}
}

func TestComputeTotals_SumMatchesTerms(t *testing.T) {
	totals, err := ComputeTotals(schema.Balance, appleBalance)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}

	s := schema.MustGet(schema.Balance)
	for _, sec := range s.Sections {
		def, ok := s.Total(sectionTotal[sec.Name])
		if !ok {
			t.Fatalf("no total for section %s", sec.Name)
		}
		expected := 0.0
		for _, k := range sec.Keys {
			expected += appleBalance[k]
		}
		got := totals.Value(def.Key)
		if math.Abs(got-expected) > 1e-9 {
			t.Errorf("%s = %v, want %v", def.Key, got, expected)
		}
		if v, _ := totals.Get(def.Key); v.Source != SourceComputed {
			t.Errorf("%s source = %s, want computed", def.Key, v.Source)
		}
	}

	wantAssets := totals.Value("totalCurrentAssets") + totals.Value("longTermAssets")
	if got := totals.Value("totalAssets"); math.Abs(got-wantAssets) > 1e-9 {
		t.Errorf("totalAssets = %v, want %v", got, wantAssets)
	}
}

var sectionTotal = map[string]string{
	"currentAssets":       "totalCurrentAssets",
	"longTermAssets":      "longTermAssets",
	"currentLiabilities":  "totalCurrentLiabilities",
	"longTermLiabilities": "longTermLiabilities",
	"stockholdersEquity":  "totalStockholderEquity",
}

func TestComputeTotals_OverrideEqualToSumAgrees(t *testing.T) {
	summed, err := ComputeTotals(schema.Balance, appleBalance)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}

	overridden := appleBalance.Clone()
	for _, def := range schema.MustGet(schema.Balance).Totals {
		if def.OverrideKey != "" {
			overridden[def.OverrideKey] = summed.Value(def.Key)
		}
	}
	viaOverride, err := ComputeTotals(schema.Balance, overridden)
	if err != nil {
		t.Fatalf("ComputeTotals failed: %v", err)
	}

	for _, item := range summed.Items {
		got := viaOverride.Value(item.Key)
		if got != item.Value {
			t.Errorf("%s: override path %v != sum path %v", item.Key, got, item.Value)
		}
	}
}

func TestComputeTotals_AllZero(t *testing.T) {
	for _, st := range schema.AllTypes() {
		totals, err := ComputeTotals(st, Record{})
		if err != nil {
			t.Fatalf("%s: %v", st, err)
		}
		for _, item := range totals.Items {
			if item.Value != 0 {
				t.Errorf("%s.%s = %v, want 0", st, item.Key, item.Value)
			}
		}
	}
}

func TestComputeTotals_RejectsNonFinite(t *testing.T) {
	_, err := ComputeTotals(schema.Income, Record{"totalRevenue": math.NaN()})
	if !errors.Is(err, ErrNonFiniteAmount) {
		t.Errorf("expected ErrNonFiniteAmount, got %v", err)
	}
	_, err = ComputeTotals(schema.Balance, Record{"cash": math.Inf(1)})
	if !errors.Is(err, ErrNonFiniteAmount) {
		t.Errorf("expected ErrNonFiniteAmount for +Inf, got %v", err)
	}
}

func TestComputeTotals_RejectsOverflowingTotal(t *testing.T) {
	tests := []struct {
		name string
		st   schema.StatementType
		rec  Record
	}{
		{"current assets", schema.Balance, Record{"cash": 1.7e308, "shortTermInvestments": 1.7e308}},
		{"liabilities", schema.Balance, Record{"longTermDebt": -1.7e308, "accountsPayable": -1.7e308}},
		{"operating expenses", schema.Income, Record{"researchDevelopment": 1.7e308, "sellingGeneralAndAdmin": 1.7e308}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := ComputeTotals(tt.st, tt.rec)
			if !errors.Is(err, ErrNonFiniteAmount) {
				t.Errorf("err = %v, want ErrNonFiniteAmount", err)
			}
			if totals != nil {
				t.Errorf("got totals %+v, want nil", totals)
			}
		})
	}
}

func TestCheck_NonFiniteGap(t *testing.T) {
	got := check(math.Inf(1), "gap %.2f")
	if got.IsBalanced || got.Gap != 0 || len(got.Warnings) != 1 {
		t.Errorf("check(+Inf) = %+v, want unbalanced with zero gap and one warning", got)
	}
}

func TestComputeTotals_UnknownStatement(t *testing.T) {
	_, err := ComputeTotals(schema.StatementType("equity"), Record{})
	if !errors.Is(err, schema.ErrUnknownStatement) {
		t.Errorf("expected ErrUnknownStatement, got %v", err)
	}
}

func TestComputeTotals_EditChangesOnlyDependentTotals(t *testing.T) {
	before, _ := ComputeTotals(schema.Balance, appleBalance)

	edited := appleBalance.Clone()
	edited["cash"] = appleBalance["cash"] + 500
	after, _ := ComputeTotals(schema.Balance, edited)

	bs := schema.MustGet(schema.Balance)
	for _, item := range before.Items {
		changed := after.Value(item.Key) != item.Value
		if changed && !bs.DependsOn(item.Key, "cash") {
			t.Errorf("%s changed although it does not include cash", item.Key)
		}
	}
	for _, key := range []string{"totalCurrentAssets", "totalAssets"} {
		if after.Value(key)-before.Value(key) != 500 {
			t.Errorf("%s moved by %v, want 500", key, after.Value(key)-before.Value(key))
		}
	}

	set := &StatementSet{Balance: appleBalance}
	setEdited := &StatementSet{Balance: edited}
	r1 := ComputeRatios(set)
	r2 := ComputeRatios(setEdited)
	for i := range r1 {
		switch r1[i].Key {
		case "debtToEquity", "inventoryTurnover", "receivablesTurnover":
			if r1[i] != r2[i] {
				t.Errorf("ratio %s changed after unrelated edit", r1[i].Key)
			}
		}
	}
}

func TestCheckCashFlow(t *testing.T) {
	rec := Record{"netIncome": 100, "capitalExpenditures": -40, "changeInCash": 70}
	totals, _ := ComputeTotals(schema.CashFlow, rec)

	res := CheckCashFlow(rec, totals)
	if res.IsBalanced {
		t.Error("expected inconsistency: override 70 vs sum 60")
	}
	if math.Abs(res.Gap-10) > 1e-9 {
		t.Errorf("gap = %v, want 10", res.Gap)
	}
}
