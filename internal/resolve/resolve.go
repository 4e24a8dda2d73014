// Package resolve maps textual entry-point references onto canonical graph
// symbols. References arrive in two shapes, depending on how the entry list
// was extracted:
//
//	src/cli/main.rs-    async fn run() {        (name-matching mode)
//	src/cli/main.rs:41:#[tokio::main]           (positional mode)
//
// Resolution failures are soft: the caller reports a MISSED diagnostic and
// the analysis continues with the remaining entries.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phobologic/asyncreach/internal/index"
)

// EntryRef is a parsed entry-point reference. Exactly one of the two shapes
// is populated: File/Line for positional references, Stem/Func for
// name-matching references.
type EntryRef struct {
	Raw  string
	File string
	Line int // one-based, as emitted by grep-style extraction
	Stem string
	Func string
}

// Display returns the reference in the form used for MISSED diagnostics.
func (r EntryRef) Display() string {
	if r.File != "" {
		return fmt.Sprintf("%s:%d", r.File, r.Line)
	}
	return r.Stem + " " + r.Func
}

// ParseLine parses one entry-point line. The list is assumed pre-filtered
// and well-formed, so a line that cannot be split into the expected fields
// is a fatal input-format error.
func ParseLine(line string) (EntryRef, error) {
	if parts := strings.SplitN(line, ":", 3); len(parts) == 3 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			return EntryRef{Raw: line, File: parts[0], Line: n}, nil
		}
	}

	filename, rest, ok := strings.Cut(line, "-")
	if !ok {
		return EntryRef{}, fmt.Errorf("malformed entry line %q", line)
	}
	_, decl, ok := strings.Cut(rest, "fn")
	if !ok {
		return EntryRef{}, fmt.Errorf("malformed entry line %q: no fn declaration", line)
	}
	name := strings.TrimSpace(decl)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	return EntryRef{Raw: line, Stem: normalizeStem(filename), Func: name}, nil
}

// normalizeStem reduces a source path to the module path the indexer uses in
// canonical symbols: the src/ prefix and .rs suffix go, and a mod.rs file
// stands for its parent module.
func normalizeStem(filename string) string {
	stem := strings.TrimPrefix(filename, "src/")
	stem = strings.TrimSuffix(stem, ".rs")
	return strings.TrimSuffix(stem, "/mod")
}

// Resolver matches entry references against the index and the graph's node
// symbols.
type Resolver struct {
	Index   *index.Index
	Symbols []string // canonical symbols of every graph node
}

// Resolve returns the canonical symbol for ref, or false if no symbol
// matches.
//
// Positional references look up the definition occurrence at the referenced
// line. Name references scan the node symbols for either an inherent-impl
// method (the symbol contains "<stem>/impl#" and ends with "]<func>().") or
// a free function (the symbol ends with "<stem>/<func>()."). First match
// wins.
func (r *Resolver) Resolve(ref EntryRef) (string, bool) {
	if ref.File != "" {
		return r.Index.DefinitionAt(ref.File, ref.Line-1)
	}

	implMarker := ref.Stem + "/impl#"
	implSuffix := "]" + ref.Func + "()."
	freeSuffix := ref.Stem + "/" + ref.Func + "()."
	for _, sym := range r.Symbols {
		if strings.Contains(sym, implMarker) && strings.HasSuffix(sym, implSuffix) {
			return sym, true
		}
		if strings.HasSuffix(sym, freeSuffix) {
			return sym, true
		}
	}
	return "", false
}
