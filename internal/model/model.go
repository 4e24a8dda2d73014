// Package model defines shared primitives for asyncreach.
package model

import (
	"sort"
	"strings"
)

// SymbolSet is a set of canonical symbol identifiers. Two symbols are equal
// iff their canonical strings are equal; the set never interprets them.
type SymbolSet map[string]struct{}

// NewSymbolSet builds a set from the given symbols, deduplicating.
func NewSymbolSet(syms ...string) SymbolSet {
	s := make(SymbolSet, len(syms))
	for _, sym := range syms {
		s[sym] = struct{}{}
	}
	return s
}

// Add inserts sym into the set.
func (s SymbolSet) Add(sym string) {
	s[sym] = struct{}{}
}

// Has reports whether sym is in the set.
func (s SymbolSet) Has(sym string) bool {
	_, ok := s[sym]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s SymbolSet) Sorted() []string {
	syms := make([]string, 0, len(s))
	for sym := range s {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

// TrimSymbol returns the display form of a canonical symbol: the last
// space-separated field, dropping the indexer scheme and package prefix.
func TrimSymbol(sym string) string {
	if i := strings.LastIndexByte(sym, ' '); i >= 0 {
		return sym[i+1:]
	}
	return sym
}
