// Package report turns the reachability result into violations with witness
// paths and encodes the final plain-text report.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/asyncreach/internal/model"
	"github.com/phobologic/asyncreach/internal/taint"
)

// Violation is a blocking entry point reachable from the async seed set,
// paired with one witness call path back to a root cause. The path starts at
// the violation itself and is finite and repeat-free; only one path is
// reported even when several exist.
type Violation struct {
	Symbol string
	Path   []string
}

// Report is the complete analysis result.
type Report struct {
	Missed          []string // unresolved entry references, display form
	BlockingEntries int
	AsyncSources    int
	Reached         int
	AsyncOrReached  int
	Violations      []Violation
}

// Build intersects the reached set with the original blocking-entry set and
// reconstructs a witness path for each violation. Violations are sorted by
// symbol for deterministic output.
func Build(pred map[string]string, seeds taint.Seeds) *Report {
	var violations []Violation
	for sym := range pred {
		if seeds.BlockingEntry.Has(sym) {
			violations = append(violations, Violation{
				Symbol: sym,
				Path:   witnessPath(sym, pred, seeds.MustAsync),
			})
		}
	}
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Symbol < violations[j].Symbol
	})

	asyncOrReached := len(pred)
	for sym := range seeds.MustAsync {
		if _, ok := pred[sym]; !ok {
			asyncOrReached++
		}
	}

	return &Report{
		BlockingEntries: len(seeds.BlockingEntry),
		AsyncSources:    len(seeds.MustAsync),
		Reached:         len(pred),
		AsyncOrReached:  asyncOrReached,
		Violations:      violations,
	}
}

// witnessPath walks the predecessor chain from v back toward a seed. The
// walk stops once it steps onto a known async source (a true root cause),
// onto a symbol with no recorded predecessor (a seed with no ancestry), or
// onto a symbol already in the path (defensive break for malformed data).
func witnessPath(v string, pred map[string]string, mustAsync model.SymbolSet) []string {
	path := []string{v}
	visited := map[string]struct{}{v: {}}

	n := v
	for {
		p, ok := pred[n]
		if !ok {
			break
		}
		if _, again := visited[p]; again {
			break
		}
		path = append(path, p)
		visited[p] = struct{}{}
		if mustAsync.Has(p) {
			break
		}
		n = p
	}
	return path
}

// Encode renders the report: MISSED diagnostics, aggregate counts, then one
// block per violation with its witness path in trimmed display form.
func Encode(r *Report) string {
	var b strings.Builder

	for _, ref := range r.Missed {
		fmt.Fprintf(&b, "MISSED %s\n", ref)
	}

	fmt.Fprintf(&b, "blocking entries: %d\n", r.BlockingEntries)
	fmt.Fprintf(&b, "async sources: %d\n", r.AsyncSources)
	fmt.Fprintf(&b, "reached: %d\n", r.Reached)
	fmt.Fprintf(&b, "async or reached: %d\n", r.AsyncOrReached)
	fmt.Fprintf(&b, "violations: %d\n", len(r.Violations))

	for i := range r.Violations {
		v := &r.Violations[i]
		trimmed := make([]string, len(v.Path))
		for j, sym := range v.Path {
			trimmed[j] = model.TrimSymbol(sym)
		}
		fmt.Fprintf(&b, "\n%s\n  %s\n", model.TrimSymbol(v.Symbol), strings.Join(trimmed, " -> "))
	}

	return b.String()
}
