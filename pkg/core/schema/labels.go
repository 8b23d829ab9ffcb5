package schema

import (
	"strings"
	"unicode"
)

// labelOverrides holds display names that the camelCase rule gets wrong.
var labelOverrides = map[string]string{
	"researchDevelopment":                   "Research & Development",
	"sellingGeneralAndAdmin":                "Selling, General & Admin",
	"otherIncomeExpense":                    "Other Income/Expense",
	"eps":                                   "EPS",
	"epsDiluted":                            "EPS Diluted",
	"propertyPlantEquipment":                "Property, Plant & Equipment",
	"totalLiabilitiesAndStockholdersEquity": "Total Liabilities & Stockholders' Equity",
	"totalStockholderEquity":                "Total Stockholders' Equity",
	"salePurchaseOfStock":                   "Sale/Purchase of Stock",
}

// Label returns the display name for a line item or total key.
func Label(key string) string {
	if l, ok := labelOverrides[key]; ok {
		return l
	}
	return FormatLabel(key)
}

// FormatLabel turns a camelCase key into a display label: a space is inserted
// before every internal uppercase letter and the first letter is capitalised.
// "netIncome" -> "Net Income".
func FormatLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
