package calc

import (
	"fmt"
	"math"
)

// VerificationResult holds the status of a display-only integrity check.
// Nothing here reconciles or rejects data: real statements are often off by
// rounding or omitted line items.
type VerificationResult struct {
	IsBalanced bool     `json:"is_balanced"`
	Gap        float64  `json:"gap"`
	Warnings   []string `json:"warnings,omitempty"`
}

// CheckBalanceSheet compares total assets with liabilities plus equity.
func CheckBalanceSheet(totals *Totals) VerificationResult {
	assets := totals.Value("totalAssets")
	liabilities := totals.Value("totalLiabilities")
	equity := totals.Value("totalStockholderEquity")
	return check(assets-(liabilities+equity), "Balance Sheet out of balance by %.2f")
}

// CheckCashFlow compares the change in cash with the sum of the activity totals.
func CheckCashFlow(record Record, totals *Totals) VerificationResult {
	sum := totals.Value("totalCashFromOperatingActivities") +
		totals.Value("totalCashflowsFromInvestingActivities") +
		totals.Value("totalCashflowsFromFinancingActivities") +
		record.Get("effectOfExchangeRate")
	return check(totals.Value("changeInCash")-sum, "Cash Flow statement inconsistency by %.2f")
}

// CheckNetIncomeLink compares income-statement net income with the cash-flow starting point.
func CheckNetIncomeLink(income *Totals, cashFlow Record) VerificationResult {
	return check(income.Value("netIncome")-cashFlow.Get("netIncome"), "Net income differs between statements by %.2f")
}

func check(gap float64, msg string) VerificationResult {
	if math.IsNaN(gap) || math.IsInf(gap, 0) {
		return VerificationResult{Warnings: []string{"Difference too large to compare"}}
	}
	ok := math.Abs(gap) < 0.01
	var warnings []string
	if !ok {
		warnings = append(warnings, fmt.Sprintf(msg, gap))
	}
	return VerificationResult{IsBalanced: ok, Gap: gap, Warnings: warnings}
}
