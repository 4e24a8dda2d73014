package report

import (
	"reflect"
	"strings"
	"testing"

	"github.com/phobologic/asyncreach/internal/model"
	"github.com/phobologic/asyncreach/internal/taint"
)

func TestBuildNoViolationForPlainCallee(t *testing.T) {
	t.Parallel()

	// Entry A calls async B: B is reached but is not itself an entry, so
	// there is nothing to report.
	seeds := taint.BuildSeeds(model.NewSymbolSet("B"), []string{"A"})
	pred := taint.Propagate(map[string][]string{"A": {"B"}}, seeds, nil)

	rep := Build(pred, seeds)
	if len(rep.Violations) != 0 {
		t.Errorf("violations: %+v", rep.Violations)
	}
	if rep.BlockingEntries != 1 || rep.AsyncSources != 2 || rep.Reached != 1 || rep.AsyncOrReached != 2 {
		t.Errorf("counts: %+v", rep)
	}
}

func TestBuildEntryReachedThroughAsync(t *testing.T) {
	t.Parallel()

	// A -> B -> A with async B: the entry A is reachable from async code,
	// so A is a violation with witness path [A, B].
	seeds := taint.BuildSeeds(model.NewSymbolSet("B"), []string{"A"})
	pred := taint.Propagate(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	}, seeds, nil)

	rep := Build(pred, seeds)
	if len(rep.Violations) != 1 {
		t.Fatalf("violations: %+v", rep.Violations)
	}
	v := rep.Violations[0]
	if v.Symbol != "A" {
		t.Errorf("violation symbol: %q", v.Symbol)
	}
	if !reflect.DeepEqual(v.Path, []string{"A", "B"}) {
		t.Errorf("witness path: %v", v.Path)
	}
	if rep.Reached != 2 || rep.AsyncOrReached != 2 {
		t.Errorf("counts: %+v", rep)
	}
}

func TestBuildWitnessEndsAtSeedWithoutAncestry(t *testing.T) {
	t.Parallel()

	// C is an entry reached through B from entry A; A has no predecessor,
	// so the walk ends there.
	seeds := taint.BuildSeeds(nil, []string{"A", "C"})
	pred := taint.Propagate(map[string][]string{
		"A": {"B"},
		"B": {"C"},
	}, seeds, nil)

	rep := Build(pred, seeds)
	if len(rep.Violations) != 1 || rep.Violations[0].Symbol != "C" {
		t.Fatalf("violations: %+v", rep.Violations)
	}
	// A is in mustAsync (folded entry), so the walk stops on reaching it
	// either way; the full chain is present.
	if !reflect.DeepEqual(rep.Violations[0].Path, []string{"C", "B", "A"}) {
		t.Errorf("witness path: %v", rep.Violations[0].Path)
	}
}

func TestBuildViolationsSorted(t *testing.T) {
	t.Parallel()

	seeds := taint.BuildSeeds(model.NewSymbolSet("S"), []string{"b", "a"})
	pred := taint.Propagate(map[string][]string{
		"S": {"a", "b"},
	}, seeds, nil)

	rep := Build(pred, seeds)
	if len(rep.Violations) != 2 {
		t.Fatalf("violations: %+v", rep.Violations)
	}
	if rep.Violations[0].Symbol != "a" || rep.Violations[1].Symbol != "b" {
		t.Errorf("violations not sorted: %+v", rep.Violations)
	}
}

func TestWitnessPathCycleBreak(t *testing.T) {
	t.Parallel()

	// Malformed predecessor data with a cycle: the walk must terminate and
	// never repeat a symbol.
	pred := map[string]string{"A": "B", "B": "C", "C": "A"}

	path := witnessPath("A", pred, model.NewSymbolSet())
	if !reflect.DeepEqual(path, []string{"A", "B", "C"}) {
		t.Errorf("path: %v", path)
	}
	seen := make(map[string]struct{})
	for _, sym := range path {
		if _, dup := seen[sym]; dup {
			t.Fatalf("path repeats %q: %v", sym, path)
		}
		seen[sym] = struct{}{}
	}
}

func TestWitnessPathStopsAtAsyncSource(t *testing.T) {
	t.Parallel()

	// The chain continues past the async source in the predecessor map, but
	// the walk stops once a true root cause is reached.
	pred := map[string]string{"A": "B", "B": "C"}

	path := witnessPath("A", pred, model.NewSymbolSet("B"))
	if !reflect.DeepEqual(path, []string{"A", "B"}) {
		t.Errorf("path: %v", path)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	rep := &Report{
		Missed:          []string{"cli/main run"},
		BlockingEntries: 2,
		AsyncSources:    3,
		Reached:         5,
		AsyncOrReached:  6,
		Violations: []Violation{
			{
				Symbol: "rust-analyzer cargo app 1.0.0 cli/main/run().",
				Path: []string{
					"rust-analyzer cargo app 1.0.0 cli/main/run().",
					"rust-analyzer cargo app 1.0.0 server/start().",
				},
			},
		},
	}

	out := Encode(rep)
	for _, want := range []string{
		"MISSED cli/main run\n",
		"blocking entries: 2\n",
		"async sources: 3\n",
		"reached: 5\n",
		"async or reached: 6\n",
		"violations: 1\n",
		"\ncli/main/run().\n",
		"  cli/main/run(). -> server/start().\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEncodeNoViolations(t *testing.T) {
	t.Parallel()

	out := Encode(&Report{})
	if !strings.Contains(out, "violations: 0\n") {
		t.Errorf("output: %q", out)
	}
	if strings.Contains(out, "MISSED") {
		t.Errorf("unexpected MISSED line: %q", out)
	}
}
