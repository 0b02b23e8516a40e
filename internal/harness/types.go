package harness

// BlockTrace is one instance's published state after a tick.
type BlockTrace struct {
	ID      string         `json:"id"`
	Outputs map[string]any `json:"outputs"`
	Error   string         `json:"error,omitempty"`
}

// TickTrace is the trace of one tick: every instance's outputs in store
// insertion order. Enabled records whether the tick actually executed;
// while the system is disabled the harness still records the boundary so
// golden traces show the gap.
type TickTrace struct {
	Tick    int          `json:"tick"`
	Enabled bool         `json:"enabled"`
	Blocks  []BlockTrace `json:"blocks,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace holds one entry per tick boundary.
	Trace []TickTrace `json:"trace"`

	// Errors lists assertion failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TickTrace{}}
}

// AddError records an assertion failure and fails the result.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
