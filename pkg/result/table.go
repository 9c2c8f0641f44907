// Package result collects and reports the outcomes of batch equivalence
// checks between the reference assembler and the self-hosting assembler
// (spec.md section 6.3, "verify-batch").
package result

import (
	"sort"
	"sync"
)

// Finding records the outcome of checking one resolved-form program.
type Finding struct {
	Name       string `json:"name"`
	Match      bool   `json:"match"`
	Mismatch   string `json:"mismatch,omitempty"` // human-readable, empty when Match is true
	HaltReason string `json:"halt_reason,omitempty"`
	Bytes      int    `json:"bytes"`
}

// Table stores discovered findings from a batch run, safe for concurrent
// use by a worker pool.
type Table struct {
	mu       sync.Mutex
	findings []Finding
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a finding into the table.
func (t *Table) Add(f Finding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.findings = append(t.findings, f)
}

// Findings returns a copy of all findings, sorted by name for stable
// report output.
func (t *Table) Findings() []Finding {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Finding, len(t.findings))
	copy(out, t.findings)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of findings recorded so far.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.findings)
}

// Summary tallies matches and mismatches across all findings.
func (t *Table) Summary() (matched, mismatched int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, f := range t.findings {
		if f.Match {
			matched++
		} else {
			mismatched++
		}
	}
	return
}
