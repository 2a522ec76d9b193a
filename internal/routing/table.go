package routing

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"lead_funnel_backend/platform/apperr"
)

// Table is the live rule set. Every change bumps the version so a routing
// result can be traced to the exact policy it was evaluated against.
type Table struct {
	mu      sync.RWMutex
	rules   []Rule
	version uint64
}

// NewTable creates a table holding rules. Invalid or duplicate rules panic,
// as they can only come from code.
func NewTable(rules ...Rule) *Table {
	t := &Table{}
	for _, rule := range rules {
		if err := t.Add(rule); err != nil {
			panic(err)
		}
	}
	return t
}

// Add appends a rule. Ids must be unique.
func (t *Table) Add(rule Rule) error {
	if err := rule.validate(); err != nil {
		return apperr.Validation(err.Error()).WithOp("routing.Table.Add")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexLocked(rule.ID) >= 0 {
		return apperr.Conflict("rule " + rule.ID + " already exists").WithOp("routing.Table.Add")
	}
	t.rules = append(t.rules, rule.clone())
	t.version++
	return nil
}

// Update merges patch into the rule with id. It reports false for unknown ids
// and returns an error when the merged rule is invalid.
func (t *Table) Update(id string, patch RulePatch) (Rule, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexLocked(id)
	if idx < 0 {
		return Rule{}, false, nil
	}
	updated := patch.apply(t.rules[idx].clone())
	if err := updated.validate(); err != nil {
		return Rule{}, true, apperr.Validation(err.Error()).WithOp("routing.Table.Update")
	}
	t.rules[idx] = updated
	t.version++
	return updated.clone(), true, nil
}

// Deactivate switches a rule off. It reports false for unknown ids.
func (t *Table) Deactivate(id string) bool {
	_, ok, _ := t.Update(id, RulePatch{Active: ptr(false)})
	return ok
}

// Get returns the rule with id.
func (t *Table) Get(id string) (Rule, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx := t.indexLocked(id)
	if idx < 0 {
		return Rule{}, false
	}
	return t.rules[idx].clone(), true
}

// All returns every rule, active or not, in evaluation order.
func (t *Table) All() []Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedCopy(t.rules, false)
}

// Active returns the active rules in evaluation order.
func (t *Table) Active() []Rule {
	rules, _ := t.Snapshot()
	return rules
}

// Snapshot returns the active rules in evaluation order and the table version they belong to.
func (t *Table) Snapshot() ([]Rule, uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedCopy(t.rules, true), t.version
}

func (t *Table) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

func (t *Table) indexLocked(id string) int {
	for i, rule := range t.rules {
		if rule.ID == id {
			return i
		}
	}
	return -1
}

// sortedCopy orders by ascending priority; equal priorities fall back to id so
// evaluation order never depends on insertion history.
func sortedCopy(rules []Rule, activeOnly bool) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if activeOnly && !rule.Active {
			continue
		}
		out = append(out, rule.clone())
	}
	slices.SortStableFunc(out, func(a, b Rule) int {
		if a.Priority != b.Priority {
			return cmp.Compare(a.Priority, b.Priority)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
