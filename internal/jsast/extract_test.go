package jsast

import (
	"errors"
	"strings"
	"testing"
)

func specifiers(deps []*Dependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Specifier
	}
	return out
}

func TestExtractInSourceOrder(t *testing.T) {
	src := `
const a = require("./a");
function f() {
  return require('./nested/b') + helper(require("./c"));
}
module.exports = { a, f };
`
	_, deps, err := Extract("/p/index.js", src, "")
	if err != nil {
		t.Fatal(err)
	}
	got := specifiers(deps)
	want := []string{"./a", "./nested/b", "./c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("specifiers = %v, want %v", got, want)
	}
}

func TestExtractIgnoresOtherCalls(t *testing.T) {
	src := `foo("./x"); obj.require("./y"); var r = typeof require;`
	_, deps, err := Extract("/p/a.js", src, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 0 {
		t.Fatalf("unexpected dependencies: %v", specifiers(deps))
	}
}

func TestRewriteAndPrint(t *testing.T) {
	tree, deps, err := Extract("/p/src/index.js", `var foo = require("./foo"); foo();`, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 {
		t.Fatalf("deps = %v", specifiers(deps))
	}
	deps[0].Rewrite("./src/foo.js")
	out := tree.Print()
	if !strings.Contains(out, `"./src/foo.js"`) {
		t.Fatalf("rewritten id missing:\n%s", out)
	}
	if strings.Contains(out, `"./foo"`) {
		t.Fatalf("original specifier survived:\n%s", out)
	}
	// the printed module must parse again
	if _, _, err := Extract("/p/src/index.js", out, ""); err != nil {
		t.Fatalf("printed source does not reparse: %v\n%s", err, out)
	}
}

func TestExtractRejectsDynamicSpecifiers(t *testing.T) {
	cases := []string{
		`require(name);`,
		"require(`./${x}`);",
		`require("./a" + b);`,
		`require();`,
		`require("./a", "./b");`,
	}
	for _, src := range cases {
		_, _, err := Extract("/p/dyn.js", src, "")
		var uerr *UnsupportedDependencyError
		if !errors.As(err, &uerr) {
			t.Errorf("Extract(%q) err = %v, want *UnsupportedDependencyError", src, err)
			continue
		}
		if uerr.Path != "/p/dyn.js" || uerr.Callee != "require" {
			t.Errorf("unexpected error fields: %+v", uerr)
		}
	}
}

func TestExtractParseError(t *testing.T) {
	_, _, err := Extract("/p/bad.js", "var = ;", "")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Path != "/p/bad.js" {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestExtractCustomCallee(t *testing.T) {
	_, deps, err := Extract("/p/a.js", `load("./x"); require("./y");`, "load")
	if err != nil {
		t.Fatal(err)
	}
	if got := specifiers(deps); len(got) != 1 || got[0] != "./x" {
		t.Fatalf("specifiers = %v", got)
	}
}

func TestQuoteUnquote(t *testing.T) {
	tests := []struct{ lit, want string }{
		{`"./a"`, "./a"},
		{`'./b'`, "./b"},
		{`"./\x63"`, "./c"},
		{`'./d'`, "./d"},
		{`"./\u{1F600}"`, "./\U0001F600"},
		{`'it\'s'`, "it's"},
		{`"\uD83D\uDE00.js"`, "\U0001F600.js"},
		{`"\uD83D\u0041"`, "\uFFFDA"},
		{`"\1\101\0"`, "\x01A\x00"},
		{`"\400"`, " 0"},
		{`"\9"`, "9"},
	}
	for _, tt := range tests {
		got, err := Unquote(tt.lit)
		if err != nil || got != tt.want {
			t.Errorf("Unquote(%s) = %q, %v; want %q", tt.lit, got, err, tt.want)
		}
	}
	for _, s := range []string{"./src/a.js", `we"ird\path`, "./<x>&.js"} {
		got, err := Unquote(Quote(s))
		if err != nil || got != s {
			t.Errorf("Unquote(Quote(%q)) = %q, %v", s, got, err)
		}
	}
	if Quote("./<x>.js") != `"./<x>.js"` {
		t.Errorf("Quote must not HTML-escape: %s", Quote("./<x>.js"))
	}
}
