// asyncreach reports blocking entry points that can be reached from
// async-tainted code, using a pre-built symbol index and call graph.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phobologic/asyncreach/internal/callgraph"
	"github.com/phobologic/asyncreach/internal/extract"
	"github.com/phobologic/asyncreach/internal/index"
	"github.com/phobologic/asyncreach/internal/report"
	"github.com/phobologic/asyncreach/internal/resolve"
	"github.com/phobologic/asyncreach/internal/taint"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("asyncreach", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		exemptList  string
		exemptFile  string
		asyncMarker string
		entryAttr   string
		srcRoot     string
		listEntries bool
		showVersion bool
	)

	fs.StringVar(&exemptList, "exempt", "", "comma-separated display names exempt from taint propagation")
	fs.StringVar(&exemptFile, "exempt-file", "", "YAML file listing display names exempt from taint propagation")
	fs.StringVar(&asyncMarker, "async-marker", "async fn", "signature text marking a function as asynchronous")
	fs.StringVar(&entryAttr, "entry-attr", "tokio::main", "attribute marking a blocking entry point (used with -src)")
	fs.StringVar(&srcRoot, "src", "", "extract entry points from Rust sources under this root instead of reading an entries file")
	fs.BoolVar(&listEntries, "list-entries", false, "print extracted entry references and exit (requires -src)")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: asyncreach [flags] <index.json> <callgraph.json> [entries.txt]

Reports blocking entry points reachable from async functions. The index and
call graph are pre-built JSON artifacts; the entries file lists blocking
entry-point references, one per line, or is replaced by -src extraction.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "asyncreach %s\n", version)
		return nil
	}

	if listEntries {
		if srcRoot == "" {
			return fmt.Errorf("-list-entries requires -src")
		}
		lines, err := extract.EntryLines(srcRoot, entryAttr, stderr)
		if err != nil {
			return err
		}
		for _, line := range lines {
			_, _ = fmt.Fprintln(stdout, line)
		}
		return nil
	}

	wantArgs := 3
	if srcRoot != "" {
		wantArgs = 2
	}
	if fs.NArg() != wantArgs {
		fs.Usage()
		return fmt.Errorf("expected %d arguments, got %d", wantArgs, fs.NArg())
	}

	exempt := taint.ParseExemptions(exemptList)
	if exemptFile != "" {
		fromFile, err := taint.LoadExemptionsFile(exemptFile)
		if err != nil {
			return fmt.Errorf("loading exemptions: %w", err)
		}
		exempt.Merge(fromFile)
	}

	ix, err := index.Load(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	g, err := callgraph.Load(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("loading call graph: %w", err)
	}

	var lines []string
	if srcRoot != "" {
		lines, err = extract.EntryLines(srcRoot, entryAttr, stderr)
		if err != nil {
			return err
		}
	} else {
		lines, err = readEntryLines(fs.Arg(2))
		if err != nil {
			return fmt.Errorf("loading entries: %w", err)
		}
	}

	resolver := &resolve.Resolver{Index: ix, Symbols: g.NodeSymbols()}

	var entries []string
	var missed []string
	for _, line := range lines {
		ref, err := resolve.ParseLine(line)
		if err != nil {
			return err
		}
		sym, ok := resolver.Resolve(ref)
		if !ok {
			missed = append(missed, ref.Display())
			continue
		}
		entries = append(entries, sym)
	}

	seeds := taint.BuildSeeds(ix.AsyncSymbols(asyncMarker), entries)
	pred := taint.Propagate(g.Adjacency(), seeds, exempt)

	rep := report.Build(pred, seeds)
	rep.Missed = missed

	_, _ = fmt.Fprint(stdout, report.Encode(rep))
	return nil
}

// readEntryLines loads the entry-point reference list, dropping blank lines.
func readEntryLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-exempt": true, "--exempt": true,
	"-exempt-file": true, "--exempt-file": true,
	"-async-marker": true, "--async-marker": true,
	"-entry-attr": true, "--entry-attr": true,
	"-src": true, "--src": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
