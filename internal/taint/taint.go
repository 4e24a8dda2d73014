// Package taint builds the analysis seed sets and runs the reachability
// fixed point over the call graph.
package taint

import (
	"github.com/phobologic/asyncreach/internal/model"
)

// Seeds holds the two taint seed sets.
//
// MustAsync is the propagation seed set: every symbol whose signature marks
// it async, plus every blocking entry. Entries are folded in because macro
// expansion strips the async marker from their recorded signatures, yet they
// taint their callees all the same. BlockingEntry keeps the original,
// pre-fold entry set; violation detection must use it, not the union.
type Seeds struct {
	BlockingEntry model.SymbolSet
	MustAsync     model.SymbolSet
}

// BuildSeeds combines the async-signed symbols with the resolved entry
// symbols. entries may contain duplicates; the sets do not.
func BuildSeeds(mustAsync model.SymbolSet, entries []string) Seeds {
	s := Seeds{
		BlockingEntry: model.NewSymbolSet(entries...),
		MustAsync:     make(model.SymbolSet, len(mustAsync)+len(entries)),
	}
	for sym := range mustAsync {
		s.MustAsync.Add(sym)
	}
	for sym := range s.BlockingEntry {
		s.MustAsync.Add(sym)
	}
	return s
}

// Propagate runs a worklist fixed point from the unioned seed set and
// returns the predecessor map: for every symbol transitively reached over
// non-exempted edges, the symbol that first reached it. The key set is the
// reached set.
//
// The predecessor map is write-once (first discovery wins), which also
// bounds each symbol to one enqueue and guarantees termination. Processing
// order is unspecified; callers must not rely on it.
func Propagate(adj map[string][]string, seeds Seeds, exempt Exemptions) map[string]string {
	pred := make(map[string]string)

	wl := make([]string, 0, len(seeds.MustAsync))
	for sym := range seeds.MustAsync {
		wl = append(wl, sym)
	}

	for len(wl) > 0 {
		s := wl[len(wl)-1]
		wl = wl[:len(wl)-1]
		for _, t := range adj[s] {
			if t == s {
				continue // self-loop: the tree never points a symbol at itself
			}
			if exempt.Exempt(t) {
				continue
			}
			if _, seen := pred[t]; seen {
				continue
			}
			pred[t] = s
			wl = append(wl, t)
		}
	}
	return pred
}
