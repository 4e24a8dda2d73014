// Package index reads the SCIP-style symbol index artifact produced by an
// external indexer. The index supplies per-symbol signature text (used to
// identify async functions) and per-file occurrence lists (used to resolve
// positional entry references).
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/phobologic/asyncreach/internal/model"
)

// roleDefinition is bit 0 of an occurrence's role bitmask.
const roleDefinition = 1

// Index is the top-level index artifact.
type Index struct {
	Documents []Document `json:"documents"`
}

// Document holds the symbols and occurrences indexed for one source file.
type Document struct {
	RelativePath string       `json:"relative_path"`
	Symbols      []SymbolInfo `json:"symbols"`
	Occurrences  []Occurrence `json:"occurrences"`
}

// SymbolInfo is a per-symbol definition record with optional signature text.
type SymbolInfo struct {
	Symbol                 string         `json:"symbol"`
	SignatureDocumentation *Documentation `json:"signature_documentation,omitempty"`
}

// Documentation carries the rendered signature of a symbol.
type Documentation struct {
	Text string `json:"text"`
}

// Occurrence records one appearance of a symbol in a document. Range holds
// the zero-based start line first; the indexer may append end coordinates.
type Occurrence struct {
	Symbol      string `json:"symbol"`
	SymbolRoles int    `json:"symbol_roles"`
	Range       []int  `json:"range"`
}

// Load reads and decodes an index artifact. Any read or decode failure is
// fatal to the analysis.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &ix, nil
}

// AsyncSymbols returns every symbol whose signature text contains marker.
// Symbols without signature documentation are skipped.
func (ix *Index) AsyncSymbols(marker string) model.SymbolSet {
	async := make(model.SymbolSet)
	for i := range ix.Documents {
		for j := range ix.Documents[i].Symbols {
			sym := &ix.Documents[i].Symbols[j]
			if sym.SignatureDocumentation == nil {
				continue
			}
			if strings.Contains(sym.SignatureDocumentation.Text, marker) {
				async.Add(sym.Symbol)
			}
		}
	}
	return async
}

// DefinitionAt returns the symbol defined at the given zero-based line of
// relPath. The first occurrence with the definition role bit and a matching
// start line wins; multiple same-line definitions are not disambiguated.
func (ix *Index) DefinitionAt(relPath string, line int) (string, bool) {
	for i := range ix.Documents {
		doc := &ix.Documents[i]
		if doc.RelativePath != relPath {
			continue
		}
		for j := range doc.Occurrences {
			occ := &doc.Occurrences[j]
			if occ.SymbolRoles&roleDefinition == 0 {
				continue
			}
			if len(occ.Range) > 0 && occ.Range[0] == line {
				return occ.Symbol, true
			}
		}
	}
	return "", false
}
