package ingest

import (
	"context"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/schema"
)

// Synthetic generates plausible, internally consistent statements.
// The ticker is only a label; nothing is looked up.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic returns a generator seeded with seed.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

func (s *Synthetic) Name() string { return "synthetic" }

// Fetch builds a statement set whose reported totals equal the sums of their
// line items, whose balance sheet balances and whose cash-flow net income
// matches the income statement.
func (s *Synthetic) Fetch(ctx context.Context, ticker string) (*calc.StatementSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, sourceErr(KindTransport, ticker, "", err)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		ticker = "DEMO"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scale := math.Pow(10, s.between(8, 10.5))

	income := s.income(scale)
	incomeTotals, err := withReportedTotals(schema.Income, income)
	if err != nil {
		return nil, err
	}
	netIncome := incomeTotals.Value("netIncome")
	if shares := income["weightedAverageShares"]; shares > 0 {
		income["eps"] = math.Round(netIncome/shares*100) / 100
		income["epsDiluted"] = math.Round(netIncome/income["weightedAverageSharesDiluted"]*100) / 100
	}

	balance := s.balance(scale)
	if _, err := withReportedTotals(schema.Balance, balance); err != nil {
		return nil, err
	}

	cashFlow := s.cashFlow(scale, netIncome, balance["propertyPlantEquipment"])
	if _, err := withReportedTotals(schema.CashFlow, cashFlow); err != nil {
		return nil, err
	}

	log.Printf("[INGEST] Synthetic: generated statements for %s (revenue %.0f)", ticker, income["totalRevenue"])
	return &calc.StatementSet{Income: income, Balance: balance, CashFlow: cashFlow}, nil
}

func (s *Synthetic) between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Synthetic) share(base, lo, hi float64) float64 {
	return math.Round(base * s.between(lo, hi))
}

func (s *Synthetic) income(scale float64) calc.Record {
	revenue := math.Round(scale)
	r := calc.Record{
		"totalRevenue":           revenue,
		"costOfRevenue":          s.share(revenue, 0.40, 0.70),
		"researchDevelopment":    s.share(revenue, 0.02, 0.12),
		"sellingGeneralAndAdmin": s.share(revenue, 0.08, 0.18),
		"otherOperatingExpenses": s.share(revenue, 0, 0.02),
		"interestExpense":        s.share(revenue, 0.002, 0.02),
		"otherIncomeExpense":     s.share(revenue, -0.01, 0.01),
	}
	preTax := r["totalRevenue"] - r["costOfRevenue"] - r["researchDevelopment"] -
		r["sellingGeneralAndAdmin"] - r["otherOperatingExpenses"] - r["interestExpense"] + r["otherIncomeExpense"]
	r["incomeTaxExpense"] = 0
	if preTax > 0 {
		r["incomeTaxExpense"] = math.Round(preTax * 0.21)
	}
	r["weightedAverageShares"] = s.share(scale, 0.005, 0.02)
	r["weightedAverageSharesDiluted"] = math.Round(r["weightedAverageShares"] * 1.01)
	r["eps"], r["epsDiluted"] = 0, 0
	return r
}

func (s *Synthetic) balance(scale float64) calc.Record {
	r := calc.Record{
		"cash":                    s.share(scale, 0.05, 0.25),
		"shortTermInvestments":    s.share(scale, 0, 0.15),
		"netReceivables":          s.share(scale, 0.05, 0.20),
		"inventory":               s.share(scale, 0, 0.15),
		"otherCurrentAssets":      s.share(scale, 0, 0.05),
		"longTermInvestments":     s.share(scale, 0, 0.30),
		"propertyPlantEquipment":  s.share(scale, 0.10, 0.60),
		"goodwill":                s.share(scale, 0, 0.20),
		"intangibleAssets":        s.share(scale, 0, 0.10),
		"otherAssets":             s.share(scale, 0, 0.05),
		"accountsPayable":         s.share(scale, 0.05, 0.15),
		"shortTermDebt":           s.share(scale, 0, 0.08),
		"otherCurrentLiabilities": s.share(scale, 0, 0.08),
		"longTermDebt":            s.share(scale, 0.05, 0.35),
		"otherLiabilities":        s.share(scale, 0, 0.05),
		"commonStock":             s.share(scale, 0.05, 0.20),
		"treasuryStock":           -s.share(scale, 0, 0.05),
		"capitalSurplus":          s.share(scale, 0, 0.10),
		"otherStockholderEquity":  s.share(scale, -0.02, 0.02),
	}
	assets, liabilities, equity := 0.0, 0.0, 0.0
	for _, k := range []string{"cash", "shortTermInvestments", "netReceivables", "inventory", "otherCurrentAssets",
		"longTermInvestments", "propertyPlantEquipment", "goodwill", "intangibleAssets", "otherAssets"} {
		assets += r[k]
	}
	for _, k := range []string{"accountsPayable", "shortTermDebt", "otherCurrentLiabilities", "longTermDebt", "otherLiabilities"} {
		liabilities += r[k]
	}
	for _, k := range []string{"commonStock", "treasuryStock", "capitalSurplus", "otherStockholderEquity"} {
		equity += r[k]
	}
	// Retained earnings absorb the difference so the sheet balances.
	r["retainedEarnings"] = assets - liabilities - equity
	return r
}

func (s *Synthetic) cashFlow(scale, netIncome, ppe float64) calc.Record {
	return calc.Record{
		"netIncome":                   netIncome,
		"depreciation":                s.share(ppe, 0.05, 0.12),
		"changeToNetIncome":           s.share(scale, -0.01, 0.03),
		"changeToAccountReceivables":  s.share(scale, -0.03, 0.01),
		"changeToLiabilities":         s.share(scale, -0.01, 0.03),
		"changeToInventory":           s.share(scale, -0.02, 0.01),
		"changeToOperatingActivities": s.share(scale, -0.01, 0.01),
		"capitalExpenditures":         -s.share(scale, 0.02, 0.10),
		"investments":                 s.share(scale, -0.05, 0.03),
		"otherCashflowsFromInvesting": s.share(scale, -0.01, 0.01),
		"dividendsPaid":               -s.share(scale, 0, 0.03),
		"salePurchaseOfStock":         s.share(scale, -0.05, 0.01),
		"netBorrowings":               s.share(scale, -0.03, 0.05),
		"otherCashflowsFromFinancing": s.share(scale, -0.01, 0.01),
		"effectOfExchangeRate":        s.share(scale, -0.002, 0.002),
	}
}

// withReportedTotals computes the totals of rec and stores each one under its
// override key, as a source reporting its own totals would.
func withReportedTotals(t schema.StatementType, rec calc.Record) (*calc.Totals, error) {
	totals, err := calc.ComputeTotals(t, rec)
	if err != nil {
		return nil, err
	}
	s := schema.MustGet(t)
	for _, item := range totals.Items {
		def, _ := s.Total(item.Key)
		if def.OverrideKey != "" {
			rec[def.OverrideKey] = item.Value
		}
	}
	return totals, nil
}
