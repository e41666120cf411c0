package hooks

import (
	"errors"
	"strings"
	"testing"
)

func TestCallFiresInRegistrationOrder(t *testing.T) {
	r := NewRegistry(Run, Done)
	var got []string
	r.Tap(Run, "A", func() error { got = append(got, "A"); return nil })
	r.Tap(Run, "B", func() error { got = append(got, "B"); return nil })
	r.Tap(Done, "C", func() error { got = append(got, "C"); return nil })

	if err := r.Call(Run); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, "") != "AB" {
		t.Fatalf("fired %v, want [A B]", got)
	}
	if err := r.Call(Done); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, "") != "ABC" {
		t.Fatalf("fired %v, want [A B C]", got)
	}
}

func TestCallStopsAtFirstFailure(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	var fired []string
	r.Tap(Run, "first", func() error { fired = append(fired, "first"); return boom })
	r.Tap(Run, "second", func() error { fired = append(fired, "second"); return nil })

	err := r.Call(Run)
	var cerr *CallbackError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *CallbackError", err)
	}
	if cerr.Hook != Run || cerr.Listener != "first" || !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %+v", cerr)
	}
	if len(fired) != 1 {
		t.Fatalf("second listener ran after failure: %v", fired)
	}
}

func TestCallRecoversPanics(t *testing.T) {
	r := NewRegistry(Run)
	r.Tap(Run, "p", func() error { panic("bad plugin") })
	err := r.Call(Run)
	if err == nil || !strings.Contains(err.Error(), "bad plugin") {
		t.Fatalf("err = %v", err)
	}
}

func TestUnknownHookIsNoop(t *testing.T) {
	r := NewRegistry()
	if err := r.Call("emit"); err != nil {
		t.Fatal(err)
	}
	if names := r.Names(); len(names) != 1 || names[0] != "emit" {
		t.Fatalf("names = %v", names)
	}
}
