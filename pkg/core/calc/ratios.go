package calc

import (
	"math"
	"strconv"

	"fin_statements/pkg/core/schema"
)

// =============================================================================
// RATIO ENGINE
// Ratios are quotients of signed sums of line items or totals, possibly
// spanning statements. A zero denominator yields a "not applicable" result
// instead of Inf/NaN.
// =============================================================================

// Operand is one signed input of a ratio.
type Operand struct {
	Statement schema.StatementType `json:"statement"`
	Key       string               `json:"key"`
	Sign      float64              `json:"sign"`
}

func op(t schema.StatementType, key string) Operand {
	return Operand{Statement: t, Key: key, Sign: 1}
}

func negOp(t schema.StatementType, key string) Operand {
	return Operand{Statement: t, Key: key, Sign: -1}
}

// RatioDef is a named ratio with static descriptive metadata.
type RatioDef struct {
	Key            string    `json:"key"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Formula        string    `json:"formula"`
	Calculation    string    `json:"calculation,omitempty"`
	Interpretation string    `json:"interpretation"`
	Numerator      []Operand `json:"numerator"`
	Denominator    []Operand `json:"denominator"`
}

// RatioResult is the computed value of a ratio. Applicable is false when the
// denominator is zero or the quotient is not finite; Value is then 0.
type RatioResult struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	Applicable bool    `json:"applicable"`
}

// Display renders the value for a UI, "N/A" when not applicable.
func (r RatioResult) Display() string {
	if !r.Applicable {
		return "N/A"
	}
	return formatRatio(r.Value)
}

// ComputeRatio evaluates def against the current records. Totals are
// recomputed on every call.
func ComputeRatio(def RatioDef, set *StatementSet) RatioResult {
	computed, err := ComputeAll(set)
	if err != nil {
		return notApplicable(def)
	}
	return evalRatio(def, set, computed)
}

// ComputeRatios evaluates the whole catalogue in catalogue order.
func ComputeRatios(set *StatementSet) []RatioResult {
	defs := Catalogue()
	out := make([]RatioResult, 0, len(defs))

	computed, err := ComputeAll(set)
	if err != nil {
		for _, def := range defs {
			out = append(out, notApplicable(def))
		}
		return out
	}
	for _, def := range defs {
		out = append(out, evalRatio(def, set, computed))
	}
	return out
}

func evalRatio(def RatioDef, set *StatementSet, computed *ComputedSet) RatioResult {
	num := sumOperands(def.Numerator, set, computed)
	den := sumOperands(def.Denominator, set, computed)
	if den == 0 {
		return notApplicable(def)
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notApplicable(def)
	}
	return RatioResult{Key: def.Key, Name: def.Name, Category: def.Category, Value: v, Applicable: true}
}

func sumOperands(ops []Operand, set *StatementSet, computed *ComputedSet) float64 {
	total := 0.0
	for _, o := range ops {
		total += o.Sign * Resolve(set.Record(o.Statement), computed.Totals(o.Statement), o.Key)
	}
	return total
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func notApplicable(def RatioDef) RatioResult {
	return RatioResult{Key: def.Key, Name: def.Name, Category: def.Category, Applicable: false}
}

// FindRatio returns the catalogue entry for key.
func FindRatio(key string) (RatioDef, bool) {
	for _, def := range Catalogue() {
		if def.Key == key {
			return def, true
		}
	}
	return RatioDef{}, false
}

// Catalogue returns the ratio definitions in display order.
func Catalogue() []RatioDef {
	const (
		is = schema.Income
		bs = schema.Balance
		cf = schema.CashFlow
	)
	return []RatioDef{
		// Liquidity
		{
			Key: "currentRatio", Name: "Current Ratio", Category: "Liquidity Ratios",
			Formula:        "Current Assets / Current Liabilities",
			Interpretation: "Measures a company's ability to pay short-term obligations. A ratio above 1 indicates good short-term financial health.",
			Numerator:      []Operand{op(bs, "totalCurrentAssets")},
			Denominator:    []Operand{op(bs, "totalCurrentLiabilities")},
		},
		{
			Key: "quickRatio", Name: "Quick Ratio", Category: "Liquidity Ratios",
			Formula:        "(Current Assets - Inventory) / Current Liabilities",
			Interpretation: "A more conservative measure of liquidity that excludes inventory. A ratio above 1 is generally considered good.",
			Numerator:      []Operand{op(bs, "totalCurrentAssets"), negOp(bs, "inventory")},
			Denominator:    []Operand{op(bs, "totalCurrentLiabilities")},
		},

		// Profitability
		{
			Key: "grossProfitMargin", Name: "Gross Profit Margin", Category: "Profitability Ratios",
			Formula:        "Gross Profit / Revenue",
			Interpretation: "Shows the percentage of revenue that exceeds the cost of goods sold. Higher margins indicate better efficiency.",
			Numerator:      []Operand{op(is, "grossProfit")},
			Denominator:    []Operand{op(is, "totalRevenue")},
		},
		{
			Key: "operatingMargin", Name: "Operating Margin", Category: "Profitability Ratios",
			Formula:        "Operating Income / Revenue",
			Interpretation: "Measures how much profit a company makes from its operations before interest and taxes.",
			Numerator:      []Operand{op(is, "operatingIncome")},
			Denominator:    []Operand{op(is, "totalRevenue")},
		},
		{
			Key: "netProfitMargin", Name: "Net Profit Margin", Category: "Profitability Ratios",
			Formula:        "Net Income / Revenue",
			Interpretation: "Shows the percentage of revenue that remains as profit after all expenses.",
			Numerator:      []Operand{op(is, "netIncome")},
			Denominator:    []Operand{op(is, "totalRevenue")},
		},
		{
			Key: "returnOnAssets", Name: "Return on Assets (ROA)", Category: "Profitability Ratios",
			Formula:        "Net Income / Total Assets",
			Interpretation: "Indicates how efficiently a company uses its assets to generate profit.",
			Numerator:      []Operand{op(is, "netIncome")},
			Denominator:    []Operand{op(bs, "totalAssets")},
		},
		{
			Key: "returnOnEquity", Name: "Return on Equity (ROE)", Category: "Profitability Ratios",
			Formula:        "Net Income / Shareholders' Equity",
			Interpretation: "Measures the return generated on shareholders' investment.",
			Numerator:      []Operand{op(is, "netIncome")},
			Denominator:    []Operand{op(bs, "totalStockholderEquity")},
		},

		// Efficiency
		{
			Key: "assetTurnover", Name: "Asset Turnover", Category: "Efficiency Ratios",
			Formula:        "Revenue / Total Assets",
			Interpretation: "Shows how efficiently a company uses its assets to generate sales.",
			Numerator:      []Operand{op(is, "totalRevenue")},
			Denominator:    []Operand{op(bs, "totalAssets")},
		},
		{
			Key: "inventoryTurnover", Name: "Inventory Turnover", Category: "Efficiency Ratios",
			Formula:        "Cost of Goods Sold / Inventory",
			Interpretation: "Indicates how many times a company sells and replaces its inventory in a period.",
			Numerator:      []Operand{op(is, "costOfRevenue")},
			Denominator:    []Operand{op(bs, "inventory")},
		},
		{
			Key: "receivablesTurnover", Name: "Receivables Turnover", Category: "Efficiency Ratios",
			Formula:        "Revenue / Accounts Receivable",
			Interpretation: "Measures how efficiently a company collects on its credit sales.",
			Numerator:      []Operand{op(is, "totalRevenue")},
			Denominator:    []Operand{op(bs, "netReceivables")},
		},

		// Leverage
		{
			Key: "debtToEquity", Name: "Debt-to-Equity Ratio", Category: "Leverage Ratios",
			Formula:        "Total Debt / Shareholders' Equity",
			Calculation:    "(Short-term Debt + Long-term Debt) / Total Stockholders' Equity",
			Interpretation: "Measures a company's financial leverage and risk. Lower ratios indicate less risk.",
			Numerator:      []Operand{op(bs, "shortTermDebt"), op(bs, "longTermDebt")},
			Denominator:    []Operand{op(bs, "totalStockholderEquity")},
		},
		{
			Key: "debtToAssets", Name: "Debt-to-Assets Ratio", Category: "Leverage Ratios",
			Formula:        "Total Debt / Total Assets",
			Calculation:    "(Short-term Debt + Long-term Debt) / Total Assets",
			Interpretation: "Shows the percentage of assets financed by debt. Lower ratios indicate less risk.",
			Numerator:      []Operand{op(bs, "shortTermDebt"), op(bs, "longTermDebt")},
			Denominator:    []Operand{op(bs, "totalAssets")},
		},
		{
			Key: "interestCoverage", Name: "Interest Coverage", Category: "Leverage Ratios",
			Formula:        "Operating Income / Interest Expense",
			Interpretation: "Shows how many times operating profit covers interest payments. Below 1.5 signals strain.",
			Numerator:      []Operand{op(is, "operatingIncome")},
			Denominator:    []Operand{op(is, "interestExpense")},
		},

		// Cash flow
		{
			Key: "cashFlowToNetIncome", Name: "Cash Flow to Net Income", Category: "Cash Flow Ratios",
			Formula:        "Operating Cash Flow / Net Income",
			Interpretation: "Measures how well net income is converted into cash. A ratio greater than 1 indicates strong cash generation relative to reported profits.",
			Numerator:      []Operand{op(cf, "totalCashFromOperatingActivities")},
			Denominator:    []Operand{op(cf, "netIncome")},
		},
		{
			Key: "capexToDepreciation", Name: "Capital Expenditures to Depreciation", Category: "Cash Flow Ratios",
			Formula:        "Capital Expenditures / Depreciation",
			Interpretation: "A ratio greater than 1 indicates the company is expanding its asset base.",
			// Capital expenditures are stored as outflows (negative).
			Numerator:   []Operand{negOp(cf, "capitalExpenditures")},
			Denominator: []Operand{op(cf, "depreciation")},
		},
	}
}
