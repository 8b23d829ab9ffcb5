package session

import (
	"errors"
	"fmt"
	"time"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/ingest"
	"fin_statements/pkg/core/schema"
)

// ItemView is one editable line item.
type ItemView struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SectionView groups line items with the totals shown under them.
type SectionView struct {
	Name   string            `json:"name"`
	Title  string            `json:"title"`
	Items  []ItemView        `json:"items"`
	Totals []calc.TotalValue `json:"totals"`
}

// StatementView is the rendered form of one statement.
type StatementView struct {
	Type     schema.StatementType `json:"type"`
	Title    string               `json:"title"`
	Sections []SectionView        `json:"sections"`
	Totals   *calc.Totals         `json:"-"`
}

// ErrorView is the last source failure, shown next to the retained data.
type ErrorView struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// View is the read model of a session. Totals, ratios and checks are computed
// from the records on every call.
type View struct {
	ID         string                             `json:"id"`
	Ticker     string                             `json:"ticker,omitempty"`
	Source     string                             `json:"source,omitempty"`
	Status     Status                             `json:"status"`
	Error      *ErrorView                         `json:"error,omitempty"`
	Statements []StatementView                    `json:"statements"`
	Ratios     []calc.RatioResult                 `json:"ratios"`
	Checks     map[string]calc.VerificationResult `json:"checks"`
	UpdatedAt  time.Time                          `json:"updated_at"`
}

// Statement returns the view of statement t, or nil.
func (v *View) Statement(t schema.StatementType) *StatementView {
	for i := range v.Statements {
		if v.Statements[i].Type == t {
			return &v.Statements[i]
		}
	}
	return nil
}

// View builds the read model from the current records.
func (s *Session) View() (*View, error) {
	s.mu.Lock()
	set := s.set.Clone()
	v := &View{
		ID:        s.ID,
		Ticker:    s.ticker,
		Source:    s.source,
		Status:    s.status(),
		UpdatedAt: s.updated,
	}
	if s.lastErr != nil {
		v.Error = errorView(s.lastErr)
	}
	s.mu.Unlock()

	return BuildView(v, set)
}

// BuildView fills the statement, ratio and check sections of v from set.
func BuildView(v *View, set *calc.StatementSet) (*View, error) {
	computed, err := calc.ComputeAll(set)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}

	for _, t := range schema.AllTypes() {
		v.Statements = append(v.Statements, statementView(schema.MustGet(t), set.Record(t), computed.Totals(t)))
	}
	v.Ratios = calc.ComputeRatios(set)
	v.Checks = map[string]calc.VerificationResult{
		"balance_sheet":   calc.CheckBalanceSheet(computed.Balance),
		"cash_flow":       calc.CheckCashFlow(set.CashFlow, computed.CashFlow),
		"net_income_link": calc.CheckNetIncomeLink(computed.Income, set.CashFlow),
	}
	return v, nil
}

func statementView(st *schema.Statement, rec calc.Record, totals *calc.Totals) StatementView {
	sv := StatementView{Type: st.Type, Title: st.Title, Totals: totals}
	for _, sec := range st.Sections {
		section := SectionView{Name: sec.Name, Title: sec.Title}
		for _, k := range sec.Keys {
			section.Items = append(section.Items, ItemView{Key: k, Label: schema.Label(k), Value: rec.Get(k)})
		}
		for _, item := range totals.Items {
			if item.Section == sec.Name {
				section.Totals = append(section.Totals, item)
			}
		}
		sv.Sections = append(sv.Sections, section)
	}
	return sv
}

func errorView(err error) *ErrorView {
	var se *ingest.SourceError
	if errors.As(err, &se) {
		return &ErrorView{Kind: string(se.Kind), Message: se.Message()}
	}
	return &ErrorView{Message: err.Error()}
}
