package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/ingest"
	"fin_statements/pkg/core/schema"
	"fin_statements/pkg/core/utils"
)

func main() {
	mode := flag.String("mode", "calculate", "Mode: check, calculate or ratios")
	statement := flag.String("statement", "balance", "Statement for calculate mode: income, balance or cashflow")
	dataStr := flag.String("data", "", "JSON data payload (comments and trailing commas allowed)")
	file := flag.String("file", "", "Read the payload from a file instead of -data")
	flag.Parse()

	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", *file, err)
			os.Exit(1)
		}
		*dataStr = string(b)
	}
	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	var err error
	switch *mode {
	case "check":
		err = runChecks(*dataStr)
	case "calculate":
		err = runCalculations(*statement, *dataStr)
	case "ratios":
		err = runRatios(*dataStr)
	default:
		err = fmt.Errorf("unknown mode: %s", *mode)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// parseSet reads {"income": {...}, "balance": {...}, "cashflow": {...}}.
func parseSet(data string) (*calc.StatementSet, error) {
	var raw map[string]map[string]any
	if err := utils.DecodeRecords(data, &raw); err != nil {
		return nil, err
	}
	byType := make(map[schema.StatementType]map[string]any, len(raw))
	for name, fields := range raw {
		t, err := schema.ParseType(name)
		if err != nil {
			return nil, err
		}
		byType[t] = fields
	}
	return ingest.NormalizeSet(ingest.SourceInternal, byType), nil
}

func runChecks(data string) error {
	set, err := parseSet(data)
	if err != nil {
		return err
	}
	computed, err := calc.ComputeAll(set)
	if err != nil {
		return err
	}
	checks := map[string]calc.VerificationResult{
		"balance_sheet":   calc.CheckBalanceSheet(computed.Balance),
		"cash_flow":       calc.CheckCashFlow(set.CashFlow, computed.CashFlow),
		"net_income_link": calc.CheckNetIncomeLink(computed.Income, set.CashFlow),
	}
	bs := checks["balance_sheet"]
	if bs.IsBalanced {
		fmt.Println("Success: Assets = L + E")
	} else {
		fmt.Printf("Error: Accounting Identity Imbalance (Diff: %f)\n", bs.Gap)
	}
	return printJSON(checks)
}

func runCalculations(statement, data string) error {
	t, err := schema.ParseType(statement)
	if err != nil {
		return err
	}
	var raw map[string]any
	if err := utils.DecodeRecords(data, &raw); err != nil {
		return err
	}
	totals, err := calc.ComputeTotals(t, ingest.Normalize(t, ingest.SourceInternal, raw))
	if err != nil {
		return err
	}
	return printJSON(totals)
}

func runRatios(data string) error {
	set, err := parseSet(data)
	if err != nil {
		return err
	}
	return printJSON(calc.ComputeRatios(set))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
