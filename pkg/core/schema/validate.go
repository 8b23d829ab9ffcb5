package schema

import "fmt"

// Validate checks every statement table. It runs once at startup; any error
// is a configuration error and the process should not continue.
func Validate() error {
	for _, t := range AllTypes() {
		s, err := Get(t)
		if err != nil {
			return err
		}
		if err := validateStatement(s); err != nil {
			return fmt.Errorf("schema %s: %w", t, err)
		}
	}
	return nil
}

func validateStatement(s *Statement) error {
	lineItems := map[string]bool{}
	sections := map[string]bool{}
	for _, sec := range s.Sections {
		if sections[sec.Name] {
			return fmt.Errorf("duplicate section %q", sec.Name)
		}
		sections[sec.Name] = true
		for _, k := range sec.Keys {
			if lineItems[k] {
				return fmt.Errorf("duplicate line item %q", k)
			}
			lineItems[k] = true
		}
	}

	defined := map[string]bool{}
	overrides := map[string]bool{}
	for _, t := range s.Totals {
		if lineItems[t.Key] || defined[t.Key] {
			return fmt.Errorf("total %q collides with an existing key", t.Key)
		}
		if t.Section != "" && !sections[t.Section] {
			return fmt.Errorf("total %q references unknown section %q", t.Key, t.Section)
		}
		// Terms may only reference line items or totals defined earlier,
		// which keeps the table in dependency order.
		for _, term := range t.Terms {
			if !lineItems[term.Key] && !defined[term.Key] {
				return fmt.Errorf("total %q references undefined key %q", t.Key, term.Key)
			}
			if term.Sign != 1 && term.Sign != -1 {
				return fmt.Errorf("total %q has invalid sign %v for %q", t.Key, term.Sign, term.Key)
			}
		}
		if t.OverrideKey != "" {
			if lineItems[t.OverrideKey] || overrides[t.OverrideKey] {
				return fmt.Errorf("override key %q of %q is not unique", t.OverrideKey, t.Key)
			}
			overrides[t.OverrideKey] = true
		}
		for _, less := range t.ResidualLess {
			if !defined[less] {
				return fmt.Errorf("residual %q subtracts undefined total %q", t.Key, less)
			}
		}
		defined[t.Key] = true
	}

	// Residual parents come after their children, so check them once all
	// totals are known.
	for _, t := range s.Totals {
		if t.ResidualOf == "" {
			continue
		}
		parent, ok := s.Total(t.ResidualOf)
		if !ok || parent.OverrideKey == "" {
			return fmt.Errorf("residual %q needs an overridable parent, got %q", t.Key, t.ResidualOf)
		}
	}
	return nil
}
