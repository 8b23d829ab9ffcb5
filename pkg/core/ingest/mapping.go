package ingest

import (
	"fmt"

	"fin_statements/pkg/core/schema"
)

// Source names a raw data layout understood by Normalize.
type Source string

const (
	// SourceAlphaVantage is the Alpha Vantage fundamentals payload.
	SourceAlphaVantage Source = "alphavantage"
	// SourceInternal uses canonical keys verbatim (synthetic, cached, uploaded data).
	SourceInternal Source = "internal"
)

// Field maps one canonical key to the raw fields that may carry it.
// The first parseable candidate wins. Outflow fields are forced negative.
type Field struct {
	Key     string
	Raw     []string
	Outflow bool
}

// Mapping is the complete field layout of one statement for one source.
type Mapping struct {
	LineItems []Field
	Overrides []Field
}

func f(key string, raw ...string) Field   { return Field{Key: key, Raw: raw} }
func out(key string, raw ...string) Field { return Field{Key: key, Raw: raw, Outflow: true} }

var alphaVantageMappings = map[schema.StatementType]Mapping{
	schema.Income: {
		LineItems: []Field{
			f("totalRevenue", "totalRevenue"),
			f("costOfRevenue", "costOfRevenue", "costofGoodsAndServicesSold"),
			f("researchDevelopment", "researchAndDevelopment"),
			f("sellingGeneralAndAdmin", "sellingGeneralAndAdministrative"),
			f("otherOperatingExpenses", "otherOperatingExpenses"),
			f("interestExpense", "interestExpense"),
			f("otherIncomeExpense", "otherNonOperatingIncome"),
			f("incomeTaxExpense", "incomeTaxExpense"),
			f("eps", "reportedEPS", "basicEPS"),
			f("epsDiluted", "dilutedEPS"),
			f("weightedAverageShares", "basicAverageShares", "commonStockSharesOutstanding"),
			f("weightedAverageSharesDiluted", "dilutedAverageShares"),
		},
		Overrides: []Field{
			f("grossProfit", "grossProfit"),
			f("operatingExpense", "operatingExpenses"),
			f("operatingIncome", "operatingIncome"),
			f("incomeBeforeTax", "incomeBeforeTax"),
			f("netIncome", "netIncome"),
		},
	},
	schema.Balance: {
		LineItems: []Field{
			f("cash", "cashAndCashEquivalentsAtCarryingValue", "cashAndShortTermInvestments"),
			f("shortTermInvestments", "shortTermInvestments"),
			f("netReceivables", "currentNetReceivables", "netReceivables"),
			f("inventory", "inventory"),
			f("otherCurrentAssets", "otherCurrentAssets"),
			f("longTermInvestments", "longTermInvestments"),
			f("propertyPlantEquipment", "propertyPlantEquipment"),
			f("goodwill", "goodwill"),
			f("intangibleAssets", "intangibleAssetsExcludingGoodwill", "intangibleAssets"),
			f("otherAssets", "otherNonCurrentAssets", "otherAssets"),
			f("accountsPayable", "currentAccountsPayable", "accountPayables"),
			f("shortTermDebt", "shortTermDebt", "currentDebt"),
			f("otherCurrentLiabilities", "otherCurrentLiabilities"),
			f("longTermDebt", "longTermDebtNoncurrent", "longTermDebt"),
			f("otherLiabilities", "otherNonCurrentLiabilities", "otherLiabilities"),
			f("commonStock", "commonStock"),
			f("retainedEarnings", "retainedEarnings"),
			out("treasuryStock", "treasuryStock"),
			f("capitalSurplus", "additionalPaidInCapital", "capitalSurplus"),
			f("otherStockholderEquity", "otherStockholderEquity", "otherStockholdersEquity"),
		},
		Overrides: []Field{
			f("totalCurrentAssets", "totalCurrentAssets"),
			f("totalAssets", "totalAssets"),
			f("totalCurrentLiabilities", "totalCurrentLiabilities"),
			f("totalLiabilities", "totalLiabilities"),
			f("totalStockholderEquity", "totalShareholderEquity", "totalStockholderEquity"),
			f("totalLiabilitiesAndStockholdersEquity", "totalLiabilitiesAndStockholdersEquity"),
		},
	},
	schema.CashFlow: {
		LineItems: []Field{
			f("netIncome", "netIncome"),
			f("depreciation", "depreciationDepletionAndAmortization", "depreciation"),
			f("changeToNetIncome", "changeToNetIncome"),
			f("changeToAccountReceivables", "changeInReceivables", "changeToAccountReceivables"),
			f("changeToLiabilities", "changeInOperatingLiabilities", "changeToLiabilities"),
			f("changeToInventory", "changeInInventory", "changeToInventory"),
			// Not sent by Alpha Vantage; see operatingCashflow below.
			f("changeToOperatingActivities", "changeToOperatingActivities"),
			out("capitalExpenditures", "capitalExpenditures"),
			f("investments", "investments"),
			f("otherCashflowsFromInvesting", "otherCashflowsFromInvestingActivities", "otherCashflowsFromInvesting"),
			out("dividendsPaid", "dividendPayout", "dividendsPaid"),
			f("salePurchaseOfStock", "salePurchaseOfStock", "proceedsFromRepurchaseOfEquity"),
			f("netBorrowings", "netBorrowings", "proceedsFromRepaymentsOfShortTermDebt"),
			f("otherCashflowsFromFinancing", "otherCashflowsFromFinancing"),
			f("effectOfExchangeRate", "effectOfExchangeRate", "changeInExchangeRate"),
		},
		// operatingCashflow is the reported operating total, so it overrides
		// the section sum rather than feeding a line item.
		Overrides: []Field{
			f("totalCashFromOperatingActivities", "operatingCashflow"),
			f("totalCashflowsFromInvestingActivities", "cashflowFromInvestment"),
			f("totalCashflowsFromFinancingActivities", "cashflowFromFinancing"),
			f("changeInCash", "changeInCashAndCashEquivalents", "changeInCash"),
		},
	},
}

// identityMapping maps every canonical key and override key to itself.
func identityMapping(s *schema.Statement) Mapping {
	var m Mapping
	for _, k := range s.Keys() {
		m.LineItems = append(m.LineItems, f(k, k))
	}
	for _, k := range s.OverrideKeys() {
		m.Overrides = append(m.Overrides, f(k, k))
	}
	return m
}

// MappingFor returns the field layout of statement t for src.
func MappingFor(t schema.StatementType, src Source) (Mapping, error) {
	s, err := schema.Get(t)
	if err != nil {
		return Mapping{}, err
	}
	switch src {
	case SourceAlphaVantage:
		return alphaVantageMappings[t], nil
	case SourceInternal, "":
		return identityMapping(s), nil
	}
	return Mapping{}, fmt.Errorf("unknown source %q", src)
}

// ValidateMappings checks every mapping against the canonical schema.
// Run at startup; a failure is a configuration error.
func ValidateMappings() error {
	for _, t := range schema.AllTypes() {
		s := schema.MustGet(t)
		m := alphaVantageMappings[t]
		for _, fld := range m.LineItems {
			if !s.HasLineItem(fld.Key) {
				return fmt.Errorf("%s mapping: %q is not a line item", t, fld.Key)
			}
			if len(fld.Raw) == 0 {
				return fmt.Errorf("%s mapping: %q has no raw fields", t, fld.Key)
			}
		}
		for _, fld := range m.Overrides {
			if !s.IsOverrideKey(fld.Key) {
				return fmt.Errorf("%s mapping: %q is not an override key", t, fld.Key)
			}
		}
	}
	return nil
}
