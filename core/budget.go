package core

// BudgetOracle reports the host's currently available execution budget.
// The second return value is false when the host cannot tell, in which case
// every budget requirement is considered met.
type BudgetOracle interface {
	Available() (int, bool)
}

// BudgetFunc adapts a plain function to the BudgetOracle interface.
type BudgetFunc func() (int, bool)

// Available implements BudgetOracle.
func (f BudgetFunc) Available() (int, bool) { return f() }

// FixedBudget is a BudgetOracle that always reports the same amount.
type FixedBudget int

// Available implements BudgetOracle.
func (b FixedBudget) Available() (int, bool) { return int(b), true }

// UnknownBudget is a BudgetOracle for hosts without a budget notion.
type UnknownBudget struct{}

// Available implements BudgetOracle.
func (UnknownBudget) Available() (int, bool) { return 0, false }

// budgetSample is a budget reading taken once per tick.
type budgetSample struct {
	amount int
	known  bool
}

func sampleBudget(o BudgetOracle) budgetSample {
	if o == nil {
		return budgetSample{}
	}
	amount, known := o.Available()
	return budgetSample{amount: amount, known: known}
}

// admits reports whether the sample satisfies the required amount.
// A non-positive requirement or an unknown budget always admits.
func (s budgetSample) admits(required int) bool {
	if required <= 0 || !s.known {
		return true
	}
	return s.amount >= required
}
