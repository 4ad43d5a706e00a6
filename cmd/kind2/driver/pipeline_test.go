package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kind2/cmd/kind2/hvm"
	"kind2/cmd/kind2/prelude"
)

// recorder wraps an engine and logs every call made to it.
type recorder struct {
	Engine
	calls      []string
	compileErr error
}

func (r *recorder) Compile(source string) (Program, error) {
	r.calls = append(r.calls, "compile")
	if r.compileErr != nil {
		return nil, r.compileErr
	}
	return r.Engine.Compile(source)
}

func (r *recorder) Alloc(prog Program, term hvm.Term) (Handle, error) {
	r.calls = append(r.calls, "alloc")
	return r.Engine.Alloc(prog, term)
}

func (r *recorder) Normalize(root Handle) (uint64, error) {
	r.calls = append(r.calls, "normalize")
	return r.Engine.Normalize(root)
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.kind2")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newDriver(prelude string, eng *recorder, out *bytes.Buffer) *Driver {
	return &Driver{
		Prelude:   prelude,
		NewEngine: func() Engine { return eng },
		Report:    &TextReporter{Out: out},
	}
}

const identityPrelude = `(Kind2.Run code) = code
(Kind2.Check code) = code
(Kind2.Compile code) = code
`

func TestExec_IdentityEntryPoint(t *testing.T) {
	source := "(Main) = \"abc\"\n"
	path := writeSource(t, source)
	eng := &recorder{Engine: &HVM{}}
	var out bytes.Buffer

	res, err := newDriver(identityPrelude, eng, &out).Exec(context.Background(), CmdRun, path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != source {
		t.Errorf("text: got %q, want %q", res.Text, source)
	}
	if res.Rewrites == 0 {
		t.Error("expected a rewrite count greater than zero")
	}
	if res.Entry != "Kind2.Run" || res.Command != CmdRun {
		t.Errorf("got entry %s command %v", res.Entry, res.Command)
	}
	want := "- Reducing.\n- Reduced. 1 rewrites.\n\n" + source + "\n"
	if out.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestExec_RunsMain(t *testing.T) {
	path := writeSource(t, "(Main) = (String.concat \"ab\" \"c\")\n")
	eng := &recorder{Engine: &HVM{}}
	var out bytes.Buffer

	res, err := newDriver(prelude.Source, eng, &out).Exec(context.Background(), CmdRun, path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "abc" || res.Rewrites == 0 {
		t.Errorf("got %q after %d rewrites", res.Text, res.Rewrites)
	}
	if res.Nodes != 0 {
		// the recorder hides the engine's Sizer
		t.Errorf("nodes: got %d", res.Nodes)
	}
	if !strings.HasSuffix(out.String(), "\nabc\n") {
		t.Errorf("output: %q", out.String())
	}
}

func TestExec_CommandsShareOneFile(t *testing.T) {
	path := writeSource(t, "(Main) = \"abc\"\n")
	want := map[Command]string{
		CmdRun:     "abc",
		CmdCheck:   "Checked 15 characters.\nAll terms check.",
		CmdCompile: "(Main) = \"abc\"\n",
	}
	for cmd, text := range want {
		t.Run(cmd.String(), func(t *testing.T) {
			d := &Driver{Prelude: prelude.Source, Report: &TextReporter{Out: &bytes.Buffer{}}}
			res, err := d.Exec(context.Background(), cmd, path)
			if err != nil {
				t.Fatal(err)
			}
			if res.Text != text {
				t.Errorf("got %q, want %q", res.Text, text)
			}
			if res.Nodes == 0 {
				t.Error("expected the engine to report its size")
			}
		})
	}
}

func TestExec_UnreadableFile(t *testing.T) {
	eng := &recorder{Engine: &HVM{}}
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing.kind2")

	_, err := newDriver(prelude.Source, eng, &out).Exec(context.Background(), CmdRun, path)
	if !errors.Is(err, ErrFileRead) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrFileRead wrapping ErrNotExist, got %v", err)
	}
	var ferr *FileReadError
	if !errors.As(err, &ferr) || ferr.Path != path {
		t.Errorf("got %#v", err)
	}
	if len(eng.calls) != 0 {
		t.Errorf("expected no engine calls, got %v", eng.calls)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestExec_CompileFailure(t *testing.T) {
	t.Run("engine rejects the source", func(t *testing.T) {
		eng := &recorder{Engine: &HVM{}, compileErr: errors.New("no")}
		path := writeSource(t, "(Main) = \"abc\"\n")
		_, err := newDriver(prelude.Source, eng, &bytes.Buffer{}).Exec(context.Background(), CmdRun, path)
		if !errors.Is(err, ErrCompile) {
			t.Fatalf("expected ErrCompile, got %v", err)
		}
		if strings.Join(eng.calls, ",") != "compile" {
			t.Errorf("calls: %v", eng.calls)
		}
	})
	t.Run("syntax error", func(t *testing.T) {
		eng := &recorder{Engine: &HVM{}}
		path := writeSource(t, "(Main) = (\n")
		_, err := newDriver(prelude.Source, eng, &bytes.Buffer{}).Exec(context.Background(), CmdCheck, path)
		if !errors.Is(err, ErrCompile) || !errors.Is(err, hvm.ErrParse) {
			t.Fatalf("expected ErrCompile wrapping ErrParse, got %v", err)
		}
		if strings.Join(eng.calls, ",") != "compile" {
			t.Errorf("calls: %v", eng.calls)
		}
	})
}

func TestExec_MissingStringSymbols(t *testing.T) {
	eng := &recorder{Engine: &HVM{}}
	path := writeSource(t, "(Main) = 1\n")
	_, err := newDriver("(Kind2.Run x) = x\n", eng, &bytes.Buffer{}).Exec(context.Background(), CmdRun, path)
	if !errors.Is(err, ErrMissingSymbol) {
		t.Fatalf("expected ErrMissingSymbol, got %v", err)
	}
	var merr *MissingSymbolError
	if !errors.As(err, &merr) || merr.Name != ConsName {
		t.Errorf("got %#v", err)
	}
	if strings.Join(eng.calls, ",") != "compile" {
		t.Errorf("calls: %v", eng.calls)
	}
}

func TestExec_MalformedOutput(t *testing.T) {
	eng := &recorder{Engine: &HVM{}}
	path := writeSource(t, "(Main) = (Pair 1 2)\n")
	var out bytes.Buffer
	_, err := newDriver(prelude.Source, eng, &out).Exec(context.Background(), CmdRun, path)
	derr := requireDecodeError(t, err)
	if derr.Name != "Pair" || derr.Arity != 2 || derr.Index != 0 {
		t.Errorf("got %+v", derr)
	}
	if !strings.Contains(err.Error(), "constructor Pair/2") {
		t.Errorf("message: %q", err.Error())
	}
	if !strings.Contains(out.String(), "- Reduced.") {
		t.Errorf("reduction should have been reported: %q", out.String())
	}
}

func TestExec_EngineFault(t *testing.T) {
	path := writeSource(t, "(Main) = (StrCons (/ 1 0) StrNil)\n")
	_, err := (&Driver{Prelude: prelude.Source, Report: &TextReporter{Out: &bytes.Buffer{}}}).
		Exec(context.Background(), CmdRun, path)
	if !errors.Is(err, ErrEngine) || !errors.Is(err, hvm.ErrDivByZero) {
		t.Fatalf("expected ErrEngine wrapping ErrDivByZero, got %v", err)
	}
}

func TestExec_CancelledBeforeStart(t *testing.T) {
	eng := &recorder{Engine: &HVM{}}
	path := writeSource(t, "(Main) = \"abc\"\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newDriver(prelude.Source, eng, &bytes.Buffer{}).Exec(ctx, CmdRun, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(eng.calls) != 0 {
		t.Errorf("expected no engine calls, got %v", eng.calls)
	}
}

func TestExec_DebugLines(t *testing.T) {
	path := writeSource(t, "(Main) = \"abc\"\n")
	var out, dbg bytes.Buffer
	d := &Driver{Prelude: prelude.Source, Report: &TextReporter{Out: &out, Debug: &dbg}}
	if _, err := d.Exec(context.Background(), CmdRun, path); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"symbols: StrCons=", "StrNil=", "call: (Kind2.Run"} {
		if !strings.Contains(dbg.String(), want) {
			t.Errorf("debug output %q lacks %q", dbg.String(), want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("héllo", 2); got != "hé..." {
		t.Errorf("got %q", got)
	}
	if got := preview("abc", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
}
