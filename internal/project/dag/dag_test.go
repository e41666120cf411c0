package dag

import (
	"strings"
	"testing"

	"bale/internal/diag"
)

func idsToNames(idx ModuleIndex, ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func TestBuildIndexIncludesDeps(t *testing.T) {
	nodes := []Node{
		{ID: "./src/index.js", Deps: []string{"./src/b.js", "./src/a.js"}},
		{ID: "./src/a.js"},
	}
	idx := BuildIndex(nodes)
	want := []string{"./src/a.js", "./src/b.js", "./src/index.js"}
	if len(idx.IDToName) != len(want) {
		t.Fatalf("IDToName = %v", idx.IDToName)
	}
	for i, name := range want {
		if idx.IDToName[i] != name {
			t.Fatalf("IDToName[%d] = %q, want %q", i, idx.IDToName[i], name)
		}
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestToposortKahnBatches(t *testing.T) {
	nodes := []Node{
		{ID: "b", Deps: []string{"c"}},
		{ID: "a"},
		{ID: "c"},
	}
	idx := BuildIndex(nodes)
	topo := ToposortKahn(BuildGraph(idx, nodes, nil))
	if topo.Cyclic {
		t.Fatal("expected acyclic graph")
	}
	order := idsToNames(idx, topo.Order)
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if len(topo.Batches) != 2 || len(topo.Batches[0]) != 2 {
		t.Fatalf("batches = %v", topo.Batches)
	}
}

func TestReportCyclesAndSelfRequire(t *testing.T) {
	nodes := []Node{
		{ID: "./a.js", Deps: []string{"./b.js"}},
		{ID: "./b.js", Deps: []string{"./a.js", "./b.js"}},
		{ID: "./c.js"},
	}
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}

	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes, reporter)
	topo := ToposortKahn(g)
	if !topo.Cyclic || len(topo.Blocked) != 2 || len(topo.Cycles) != 1 {
		t.Fatalf("expected one two-module cycle, got %+v", topo)
	}
	ReportCycles(idx, g, topo, reporter)

	var cycles, selfs int
	for _, d := range bag.Items() {
		switch d.Code {
		case diag.GraphRequireCycle:
			cycles++
			if d.Severity != diag.SevWarning {
				t.Errorf("cycle severity = %v", d.Severity)
			}
		case diag.GraphSelfRequire:
			selfs++
			if d.Module != "./b.js" {
				t.Errorf("self require reported on %q", d.Module)
			}
		}
	}
	if cycles != 2 || selfs != 1 {
		t.Fatalf("cycles=%d selfs=%d, diagnostics: %v", cycles, selfs, bag.Items())
	}
}

func TestCycleMembersExcludeDownstream(t *testing.T) {
	nodes := []Node{
		{ID: "./index.js", Deps: []string{"./a.js"}},
		{ID: "./a.js", Deps: []string{"./b.js"}},
		{ID: "./b.js", Deps: []string{"./a.js", "./leaf.js"}},
		{ID: "./leaf.js", Deps: []string{"./tail.js"}},
		{ID: "./tail.js"},
	}
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}

	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes, reporter)
	topo := ToposortKahn(g)
	if got := idsToNames(idx, topo.Blocked); len(got) != 4 {
		t.Fatalf("blocked = %v", got)
	}
	if len(topo.Cycles) != 1 {
		t.Fatalf("cycles = %v", topo.Cycles)
	}
	if got := idsToNames(idx, topo.Cycles[0]); len(got) != 2 || got[0] != "./a.js" || got[1] != "./b.js" {
		t.Fatalf("cycle members = %v", got)
	}

	ReportCycles(idx, g, topo, reporter)
	notes := map[string]string{}
	for _, d := range bag.Items() {
		if d.Code != diag.GraphRequireCycle {
			continue
		}
		if len(d.Notes) != 1 {
			t.Fatalf("notes = %v", d.Notes)
		}
		notes[d.Module] = d.Notes[0]
	}
	want := map[string]string{
		"./a.js": "cycle: ./a.js -> ./b.js -> ./a.js",
		"./b.js": "cycle: ./b.js -> ./a.js -> ./b.js",
	}
	if len(notes) != len(want) {
		t.Fatalf("reported modules = %v", notes)
	}
	for mod, note := range want {
		if notes[mod] != note {
			t.Errorf("%s: note = %q, want %q", mod, notes[mod], note)
		}
	}
}

func TestSeparateCyclesAreSeparateComponents(t *testing.T) {
	nodes := []Node{
		{ID: "a", Deps: []string{"b"}},
		{ID: "b", Deps: []string{"c"}},
		{ID: "c", Deps: []string{"a", "x"}},
		{ID: "x", Deps: []string{"y"}},
		{ID: "y", Deps: []string{"x"}},
	}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes, nil)
	topo := ToposortKahn(g)
	if len(topo.Cycles) != 2 {
		t.Fatalf("cycles = %v", topo.Cycles)
	}
	first := idsToNames(idx, topo.Cycles[0])
	second := idsToNames(idx, topo.Cycles[1])
	if len(first) != 3 || first[0] != "a" || len(second) != 2 || second[0] != "x" {
		t.Fatalf("components = %v %v", first, second)
	}
	path := idsToNames(idx, CyclePath(g, topo.Cycles[0], idx.NameToID["b"]))
	if strings.Join(path, " ") != "b c a b" {
		t.Fatalf("path = %v", path)
	}
	if CyclePath(g, topo.Cycles[1], idx.NameToID["a"]) != nil {
		t.Fatal("a is not in the x/y cycle")
	}
}
