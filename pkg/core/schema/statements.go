package schema

import "fmt"

// =============================================================================
// CANONICAL STATEMENT TABLES
// One schema per statement type. Earlier cash-flow field sets
// (stockRepurchases / debtIssuance / debtRepayment) are not carried.
// =============================================================================

var statements = map[StatementType]*Statement{
	Income: {
		Type:  Income,
		Title: "Income Statement",
		Sections: []Section{
			{Name: "revenue", Title: "Revenue", Keys: []string{"totalRevenue", "costOfRevenue"}},
			{Name: "operatingExpenses", Title: "Operating Expenses", Keys: []string{
				"researchDevelopment", "sellingGeneralAndAdmin", "otherOperatingExpenses",
			}},
			{Name: "otherIncomeExpenses", Title: "Other Income/Expenses", Keys: []string{"interestExpense", "otherIncomeExpense"}},
			{Name: "incomeTaxes", Title: "Income Taxes", Keys: []string{"incomeTaxExpense"}},
			{Name: "perShare", Title: "Earnings Per Share", Keys: []string{
				"eps", "epsDiluted", "weightedAverageShares", "weightedAverageSharesDiluted",
			}},
		},
		// Expenses are stored as positive amounts and subtracted here.
		Totals: []TotalDef{
			{Key: "grossProfit", Section: "revenue", OverrideKey: "grossProfit",
				Terms: []Term{Plus("totalRevenue"), Minus("costOfRevenue")}},
			{Key: "operatingExpense", Section: "operatingExpenses", OverrideKey: "operatingExpense",
				Terms: []Term{Plus("researchDevelopment"), Plus("sellingGeneralAndAdmin"), Plus("otherOperatingExpenses")}},
			{Key: "operatingIncome", Section: "operatingExpenses", OverrideKey: "operatingIncome",
				Terms: []Term{Plus("grossProfit"), Minus("operatingExpense")}},
			{Key: "incomeBeforeTax", Section: "otherIncomeExpenses", OverrideKey: "incomeBeforeTax",
				Terms: []Term{Plus("operatingIncome"), Minus("interestExpense"), Plus("otherIncomeExpense")}},
			{Key: "netIncome", Section: "incomeTaxes", OverrideKey: "netIncome", Grand: true,
				Terms: []Term{Plus("incomeBeforeTax"), Minus("incomeTaxExpense")}},
		},
	},

	Balance: {
		Type:  Balance,
		Title: "Balance Sheet",
		Sections: []Section{
			{Name: "currentAssets", Title: "Current Assets", Keys: []string{
				"cash", "shortTermInvestments", "netReceivables", "inventory", "otherCurrentAssets",
			}},
			{Name: "longTermAssets", Title: "Long-term Assets", Keys: []string{
				"longTermInvestments", "propertyPlantEquipment", "goodwill", "intangibleAssets", "otherAssets",
			}},
			{Name: "currentLiabilities", Title: "Current Liabilities", Keys: []string{
				"accountsPayable", "shortTermDebt", "otherCurrentLiabilities",
			}},
			{Name: "longTermLiabilities", Title: "Long-term Liabilities", Keys: []string{"longTermDebt", "otherLiabilities"}},
			// treasuryStock is a contra account and is expected to be stored negative.
			{Name: "stockholdersEquity", Title: "Stockholders' Equity", Keys: []string{
				"commonStock", "retainedEarnings", "treasuryStock", "capitalSurplus", "otherStockholderEquity",
			}},
		},
		Totals: []TotalDef{
			{Key: "totalCurrentAssets", Section: "currentAssets", OverrideKey: "totalCurrentAssets",
				Terms: sumOf("cash", "shortTermInvestments", "netReceivables", "inventory", "otherCurrentAssets")},
			{Key: "longTermAssets", Section: "longTermAssets", ResidualOf: "totalAssets", ResidualLess: []string{"totalCurrentAssets"},
				Terms: sumOf("longTermInvestments", "propertyPlantEquipment", "goodwill", "intangibleAssets", "otherAssets")},
			{Key: "totalAssets", Section: "longTermAssets", OverrideKey: "totalAssets", Grand: true,
				Terms: sumOf("totalCurrentAssets", "longTermAssets")},
			{Key: "totalCurrentLiabilities", Section: "currentLiabilities", OverrideKey: "totalCurrentLiabilities",
				Terms: sumOf("accountsPayable", "shortTermDebt", "otherCurrentLiabilities")},
			{Key: "longTermLiabilities", Section: "longTermLiabilities", ResidualOf: "totalLiabilities", ResidualLess: []string{"totalCurrentLiabilities"},
				Terms: sumOf("longTermDebt", "otherLiabilities")},
			{Key: "totalLiabilities", Section: "longTermLiabilities", OverrideKey: "totalLiabilities", Grand: true,
				Terms: sumOf("totalCurrentLiabilities", "longTermLiabilities")},
			{Key: "totalStockholderEquity", Section: "stockholdersEquity", OverrideKey: "totalStockholderEquity", Grand: true,
				Terms: sumOf("commonStock", "retainedEarnings", "treasuryStock", "capitalSurplus", "otherStockholderEquity")},
			{Key: "totalLiabilitiesAndStockholdersEquity", Section: "stockholdersEquity", OverrideKey: "totalLiabilitiesAndStockholdersEquity", Grand: true,
				Terms: sumOf("totalLiabilities", "totalStockholderEquity")},
		},
	},

	CashFlow: {
		Type:  CashFlow,
		Title: "Cash Flow Statement",
		Sections: []Section{
			{Name: "operatingActivities", Title: "Operating Activities", Keys: []string{
				"netIncome", "depreciation", "changeToNetIncome", "changeToAccountReceivables",
				"changeToLiabilities", "changeToInventory", "changeToOperatingActivities",
			}},
			{Name: "investingActivities", Title: "Investing Activities", Keys: []string{
				"capitalExpenditures", "investments", "otherCashflowsFromInvesting",
			}},
			{Name: "financingActivities", Title: "Financing Activities", Keys: []string{
				"dividendsPaid", "salePurchaseOfStock", "netBorrowings", "otherCashflowsFromFinancing",
			}},
			{Name: "other", Title: "Effect of Exchange Rate", Keys: []string{"effectOfExchangeRate"}},
		},
		// Outflows are stored negative, so every total is a plain sum.
		Totals: []TotalDef{
			{Key: "totalCashFromOperatingActivities", Section: "operatingActivities", OverrideKey: "totalCashFromOperatingActivities",
				Terms: sumOf("netIncome", "depreciation", "changeToNetIncome", "changeToAccountReceivables",
					"changeToLiabilities", "changeToInventory", "changeToOperatingActivities")},
			{Key: "totalCashflowsFromInvestingActivities", Section: "investingActivities", OverrideKey: "totalCashflowsFromInvestingActivities",
				Terms: sumOf("capitalExpenditures", "investments", "otherCashflowsFromInvesting")},
			{Key: "totalCashflowsFromFinancingActivities", Section: "financingActivities", OverrideKey: "totalCashflowsFromFinancingActivities",
				Terms: sumOf("dividendsPaid", "salePurchaseOfStock", "netBorrowings", "otherCashflowsFromFinancing")},
			{Key: "changeInCash", Section: "other", OverrideKey: "changeInCash", Grand: true,
				Terms: sumOf("totalCashFromOperatingActivities", "totalCashflowsFromInvestingActivities",
					"totalCashflowsFromFinancingActivities", "effectOfExchangeRate")},
		},
	},
}

func sumOf(keys ...string) []Term {
	terms := make([]Term, len(keys))
	for i, k := range keys {
		terms[i] = Plus(k)
	}
	return terms
}

// Get returns the canonical schema for t.
func Get(t StatementType) (*Statement, error) {
	s, ok := statements[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatement, string(t))
	}
	return s, nil
}

// MustGet is Get for callers holding a compile-time statement type.
// An unknown type is a programming error.
func MustGet(t StatementType) *Statement {
	s, err := Get(t)
	if err != nil {
		panic(err)
	}
	return s
}
