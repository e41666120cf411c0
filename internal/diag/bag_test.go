package diag

import (
	"strings"
	"testing"
)

func TestBagLimitAndSeverity(t *testing.T) {
	b := NewBag(2)
	r := BagReporter{Bag: b}
	r.Report(GraphRequireCycle, SevWarning, "./b.js", "cycle")
	r.Report(GraphSelfRequire, SevInfo, "./a.js", "self")
	if b.Add(Diagnostic{Severity: SevError}) {
		t.Fatal("Add past the limit should fail")
	}
	if b.HasErrors() {
		t.Fatal("no error-level diagnostics were stored")
	}
	if !b.HasWarnings() {
		t.Fatal("expected a warning")
	}

	b.Sort()
	items := b.Items()
	if items[0].Module != "./a.js" || items[1].Module != "./b.js" {
		t.Fatalf("unexpected order: %v", items)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Severity: SevWarning,
		Code:     GraphRequireCycle,
		Module:   "./src/a.js",
		Message:  "module participates in a require cycle",
		Notes:    []string{"./src/a.js -> ./src/b.js"},
	}
	got := d.String()
	for _, want := range []string{"WARNING", "G1001", "./src/a.js", "note: ./src/a.js -> ./src/b.js"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
