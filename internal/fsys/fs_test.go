package fsys

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestMockFSReadWrite(t *testing.T) {
	m := NewMockFS(map[string]string{
		"/proj/src/index.js": "require('./a')",
	})

	if !m.Exists("/proj/src/index.js") {
		t.Fatal("expected seeded file to exist")
	}
	if m.Exists("/proj/src") {
		t.Fatal("directories are not files")
	}
	if _, err := m.ReadFile("/proj/src/missing.js"); !IsNotExist(err) {
		t.Fatalf("ReadFile(missing) err = %v, want not-exist", err)
	}
	if err := m.WriteFile("/proj/dist/main.js", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := m.ReadFile("/proj/dist/../dist/main.js")
	if err != nil || string(data) != "x" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}
}

func TestMockFSInjectedWriteFailure(t *testing.T) {
	m := NewMockFS(nil)
	boom := errors.New("disk full")
	m.FailWrites("/out/a.js", boom)
	if err := m.WriteFile("/out/a.js", nil); !errors.Is(err, boom) {
		t.Fatalf("WriteFile err = %v, want %v", err, boom)
	}
	if err := m.WriteFile("/out/b.js", nil); err != nil {
		t.Fatalf("unrelated write failed: %v", err)
	}
}

func TestRealFSCreatesParents(t *testing.T) {
	dir := filepath.ToSlash(t.TempDir())
	fsys := OS()
	target := dir + "/nested/deeper/out.js"
	if err := fsys.WriteFile(target, []byte("ok")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !fsys.Exists(target) {
		t.Fatal("written file should exist")
	}
	if fsys.Exists(dir + "/nested") {
		t.Fatal("directory reported as file")
	}
	if _, err := fsys.ReadFile(dir + "/nope.js"); !IsNotExist(err) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}
