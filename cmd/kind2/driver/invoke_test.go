package driver

import (
	"errors"
	"runtime/debug"
	"strings"
	"testing"

	"kind2/cmd/kind2/hvm"
)

func TestRunWithStack_ReturnsResult(t *testing.T) {
	want := errors.New("boom")
	if err := RunWithStack(DefaultStackSize, func() error { return want }); err != want {
		t.Errorf("got %v, want %v", err, want)
	}
	ran := false
	if err := RunWithStack(DefaultStackSize, func() error { ran = true; return nil }); err != nil || !ran {
		t.Errorf("got %v, ran=%v", err, ran)
	}
}

func TestRunWithStack_RecoversPanic(t *testing.T) {
	err := RunWithStack(DefaultStackSize, func() error { panic("engine exploded") })
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("expected ErrEngine, got %v", err)
	}
	if !strings.Contains(err.Error(), "engine exploded") {
		t.Errorf("message %q lacks panic value", err.Error())
	}
}

func TestRunWithStack_RestoresLimit(t *testing.T) {
	before := debug.SetMaxStack(1 << 30)
	debug.SetMaxStack(before)

	err := RunWithStack(1536<<20, func() error {
		cur := debug.SetMaxStack(1536 << 20)
		if cur != 1536<<20 {
			t.Errorf("limit inside: got %d, want %d", cur, 1536<<20)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := debug.SetMaxStack(before); got != before {
		t.Errorf("limit after: got %d, want %d", got, before)
	}
}

func TestRunWithStack_NeverLowers(t *testing.T) {
	before := debug.SetMaxStack(1 << 30)
	debug.SetMaxStack(before)

	err := RunWithStack(1<<20, func() error {
		cur := debug.SetMaxStack(before)
		if cur != before {
			t.Errorf("limit inside: got %d, want %d", cur, before)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunWithStack_DeepRecursion(t *testing.T) {
	// A list this long makes the engine recurse once per cell.
	text := strings.Repeat("x", 200000)
	e := &HVM{}
	prog, err := e.Compile("(Id x) = x\n(Strs) = \"a\"\n")
	if err != nil {
		t.Fatal(err)
	}
	cons, nilID, err := StringSymbols(prog)
	if err != nil {
		t.Fatal(err)
	}
	var got string
	err = RunWithStack(DefaultStackSize, func() error {
		root, err := Allocate(e, prog, "Id", text)
		if err != nil {
			return err
		}
		if _, err := Reduce(e, root); err != nil {
			return err
		}
		got, err = DecodeString(e, root, cons, nilID)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != text {
		t.Errorf("decoded %d chars, want %d", len(got), len(text))
	}
}

func TestReduce_WrapsFaults(t *testing.T) {
	e := &HVM{}
	prog, err := e.Compile("(Boom n) = (/ n 0)\n")
	if err != nil {
		t.Fatal(err)
	}
	root, err := e.Alloc(prog, &hvm.Ctr{Name: "Boom", Args: []hvm.Term{&hvm.Num{Value: 1}}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Reduce(e, root)
	if !errors.Is(err, ErrEngine) || !errors.Is(err, hvm.ErrDivByZero) {
		t.Errorf("expected ErrEngine wrapping ErrDivByZero, got %v", err)
	}
}

func TestReduce_NodeLimit(t *testing.T) {
	e := &HVM{NodeLimit: 64}
	prog, err := e.Compile("(Loop n) = (Loop (+ n 1))\n")
	if err != nil {
		t.Fatal(err)
	}
	root, err := e.Alloc(prog, &hvm.Ctr{Name: "Loop", Args: []hvm.Term{&hvm.Num{Value: 0}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Reduce(e, root); !errors.Is(err, hvm.ErrOutOfMemory) {
		t.Errorf("expected ErrOutOfMemory, got %v", err)
	}
}
