package schema

import "fmt"

// Explanation is the educational text shown in tooltips and info panels.
// Short is plain text; Detail may contain markdown.
type Explanation struct {
	Short  string `json:"short"`
	Detail string `json:"detail,omitempty"`
}

var explanations = map[StatementType]map[string]Explanation{
	Income: {
		"totalRevenue":                 {Short: "Total amount of money earned from selling goods and services before any deductions"},
		"costOfRevenue":                {Short: "Direct costs attributable to the production of goods and services sold"},
		"grossProfit":                  {Short: "Revenue minus cost of revenue, showing the profit before operating expenses", Detail: "**Gross Profit** = Total Revenue − Cost of Revenue.\n\nCompare it with revenue (the *gross margin*) to judge pricing power and production efficiency."},
		"researchDevelopment":          {Short: "Expenses incurred in developing new products and improving existing ones"},
		"sellingGeneralAndAdmin":       {Short: "Expenses related to selling products and managing the business"},
		"otherOperatingExpenses":       {Short: "Operating expenses not classified as R&D or SG&A"},
		"operatingExpense":             {Short: "Total expenses incurred in running the business operations"},
		"operatingIncome":              {Short: "Profit earned from core business operations before interest and taxes", Detail: "**Operating Income** = Gross Profit − Operating Expense.\n\nAlso called *EBIT* when non-operating items are small."},
		"interestExpense":              {Short: "Cost of borrowing money, including interest on loans and bonds"},
		"otherIncomeExpense":           {Short: "Income or expenses from non-operating activities"},
		"incomeBeforeTax":              {Short: "Profit before income taxes are deducted"},
		"incomeTaxExpense":             {Short: "Taxes owed to government based on taxable income"},
		"netIncome":                    {Short: "Final profit after all expenses and taxes are deducted", Detail: "**Net Income** = Income Before Tax − Income Tax Expense.\n\nIt is the starting point of the cash flow statement under the indirect method."},
		"eps":                          {Short: "Earnings per share, calculated as net income divided by number of shares"},
		"epsDiluted":                   {Short: "Earnings per share including potential shares from stock options and convertible securities"},
		"weightedAverageShares":        {Short: "Average number of shares outstanding during the period"},
		"weightedAverageSharesDiluted": {Short: "Average number of shares including potential shares from stock options"},
	},
	Balance: {
		"cash":                                  {Short: "Money held in bank accounts and highly liquid short-term investments"},
		"shortTermInvestments":                  {Short: "Investments that can be converted to cash within a year"},
		"netReceivables":                        {Short: "Money owed to the company by customers, net of doubtful accounts"},
		"inventory":                             {Short: "Goods held for sale, work in progress and raw materials"},
		"otherCurrentAssets":                    {Short: "Other assets expected to be used or converted to cash within a year"},
		"totalCurrentAssets":                    {Short: "All assets expected to be converted to cash within one year"},
		"longTermInvestments":                   {Short: "Investments the company intends to hold for more than a year"},
		"propertyPlantEquipment":                {Short: "Physical assets used in operations, net of accumulated depreciation"},
		"goodwill":                              {Short: "Premium paid over fair value when acquiring other businesses"},
		"intangibleAssets":                      {Short: "Non-physical assets such as patents, trademarks and licences"},
		"otherAssets":                           {Short: "Other long-term assets not classified elsewhere"},
		"longTermAssets":                        {Short: "Assets not expected to be converted to cash within a year", Detail: "When the data source reports **Total Assets**, long-term assets are shown as the residual *Total Assets − Current Assets*."},
		"totalAssets":                           {Short: "Everything the company owns", Detail: "**Total Assets** = Current Assets + Long-term Assets.\n\nA source-reported total takes precedence over the local sum."},
		"accountsPayable":                       {Short: "Money owed to suppliers for goods and services received"},
		"shortTermDebt":                         {Short: "Borrowings due within one year"},
		"otherCurrentLiabilities":               {Short: "Other obligations due within one year"},
		"totalCurrentLiabilities":               {Short: "All obligations due within one year"},
		"longTermDebt":                          {Short: "Borrowings due after more than one year"},
		"otherLiabilities":                      {Short: "Other long-term obligations"},
		"longTermLiabilities":                   {Short: "Obligations due after more than one year"},
		"totalLiabilities":                      {Short: "Everything the company owes"},
		"commonStock":                           {Short: "Par value of shares issued to shareholders"},
		"retainedEarnings":                      {Short: "Cumulative profits kept in the business rather than paid as dividends"},
		"treasuryStock":                         {Short: "Shares the company has bought back, recorded as a negative amount"},
		"capitalSurplus":                        {Short: "Amount shareholders paid above par value"},
		"otherStockholderEquity":                {Short: "Other equity items such as accumulated other comprehensive income"},
		"totalStockholderEquity":                {Short: "Shareholders' residual claim on the company's assets"},
		"totalLiabilitiesAndStockholdersEquity": {Short: "Total liabilities plus stockholders' equity", Detail: "In consistent data this equals **Total Assets**. Small differences arise from rounding or omitted line items and are not reconciled."},
	},
	CashFlow: {
		"netIncome":                             {Short: "Profit or loss from the income statement", Detail: "Starting point of the indirect method. Compare it with operating cash flow to assess the *quality of earnings*."},
		"depreciation":                          {Short: "Non-cash expense for the wear and tear of assets", Detail: "Added back because it reduces net income without a cash outflow. Capital expenditures above depreciation suggest an expanding asset base."},
		"changeToNetIncome":                     {Short: "Other adjustments to net income"},
		"changeToAccountReceivables":            {Short: "Changes in money owed by customers"},
		"changeToLiabilities":                   {Short: "Changes in money owed to suppliers and others"},
		"changeToInventory":                     {Short: "Changes in the value of goods held for sale"},
		"changeToOperatingActivities":           {Short: "Other changes in operating activities"},
		"totalCashFromOperatingActivities":      {Short: "Cash generated by the core business"},
		"capitalExpenditures":                   {Short: "Money spent on long-term assets"},
		"investments":                           {Short: "Money spent on or received from investments"},
		"otherCashflowsFromInvesting":           {Short: "Other cash flows from investing activities"},
		"totalCashflowsFromInvestingActivities": {Short: "Net cash used in or provided by investing"},
		"dividendsPaid":                         {Short: "Money paid to shareholders as dividends"},
		"salePurchaseOfStock":                   {Short: "Money spent on or received from buying/selling company stock"},
		"netBorrowings":                         {Short: "Money received from or paid for borrowing"},
		"otherCashflowsFromFinancing":           {Short: "Other cash flows from financing activities"},
		"totalCashflowsFromFinancingActivities": {Short: "Net cash used in or provided by financing"},
		"effectOfExchangeRate":                  {Short: "Impact of currency exchange rate changes"},
		"changeInCash":                          {Short: "Net change in cash over the period", Detail: "**Change in Cash** = Operating + Investing + Financing + Effect of Exchange Rate."},
	},
}

// Explain returns the explanation for a line item or total.
func Explain(t StatementType, key string) (Explanation, error) {
	byKey, ok := explanations[t]
	if !ok {
		return Explanation{}, fmt.Errorf("%w: %q", ErrUnknownStatement, string(t))
	}
	e, ok := byKey[key]
	if !ok {
		return Explanation{}, fmt.Errorf("no explanation for %s.%s", t, key)
	}
	return e, nil
}
