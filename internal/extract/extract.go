// Package extract finds attribute-marked entry functions in Rust sources
// using tree-sitter, replacing the grep pipeline that originally produced
// the entry-point list.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/phobologic/asyncreach/internal/discover"
)

// EntryLines scans the Rust sources under root for functions carrying an
// attribute containing attr (e.g. "tokio::main") and returns entry
// references in name-matching form: "<path>-fn <name>(". Unreadable or
// unparseable files are reported to warn and skipped.
func EntryLines(root, attr string, warn io.Writer) ([]string, error) {
	files, err := discover.Files(root)
	if err != nil {
		return nil, fmt.Errorf("discovering sources: %w", err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())

	var lines []string
	for _, rel := range files {
		source, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(warn, "Warning: %s: %v\n", rel, err)
			continue
		}
		entries, err := fileEntries(parser, source, rel, attr)
		if err != nil {
			fmt.Fprintf(warn, "Warning: %s: %v\n", rel, err)
			continue
		}
		lines = append(lines, entries...)
	}
	return lines, nil
}

// fileEntries parses one source file and collects its marked functions.
func fileEntries(parser *sitter.Parser, source []byte, rel, attr string) ([]string, error) {
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var lines []string
	collect(tree.RootNode(), source, rel, attr, &lines)
	return lines, nil
}

// collect walks the syntax tree and appends an entry line for every
// function_item whose preceding attributes mention attr. Functions nested in
// modules and impl blocks are reached through the recursion.
func collect(node *sitter.Node, source []byte, rel, attr string, out *[]string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "function_item" && hasAttribute(node, i, source, attr) {
			if name := functionName(child, source); name != "" {
				*out = append(*out, fmt.Sprintf("%s-fn %s(", rel, name))
			}
		}
		collect(child, source, rel, attr, out)
	}
}

// hasAttribute checks the siblings immediately preceding child i for an
// attribute_item whose text contains attr. Comments between the attribute
// and the function are tolerated.
func hasAttribute(parent *sitter.Node, i int, source []byte, attr string) bool {
	for j := i - 1; j >= 0; j-- {
		sib := parent.Child(j)
		switch sib.Type() {
		case "attribute_item":
			if strings.Contains(nodeText(sib, source), attr) {
				return true
			}
		case "line_comment", "block_comment":
			// keep scanning past doc comments
		default:
			return false
		}
	}
	return false
}

// functionName returns the identifier of a function_item node.
func functionName(fn *sitter.Node, source []byte) string {
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		if child.Type() == "identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
