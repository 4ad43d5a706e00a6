package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"
)

// Reporter receives the progress of a pipeline run.
type Reporter interface {
	Reducing(entry string)
	Reduced(rewrites uint64)
	Output(text string)
	Debugf(format string, args ...any)
}

// TextReporter writes progress as plain text. Debug lines go to Debug when
// it is non-nil.
type TextReporter struct {
	Out   io.Writer
	Debug io.Writer
}

func (r *TextReporter) Reducing(string) { fmt.Fprintln(r.Out, "- Reducing.") }

func (r *TextReporter) Reduced(rewrites uint64) {
	fmt.Fprintf(r.Out, "- Reduced. %d rewrites.\n", rewrites)
}

func (r *TextReporter) Output(text string) { fmt.Fprintf(r.Out, "\n%s\n", text) }

func (r *TextReporter) Debugf(format string, args ...any) {
	if r.Debug != nil {
		fmt.Fprintf(r.Debug, format+"\n", args...)
	}
}

// Driver runs the pipeline: read a source file, compile it behind the
// embedded program, call an entry point on its text, reduce and decode.
type Driver struct {
	// Prelude is the embedded program. The compiled source is the prelude,
	// a newline, then the user's file.
	Prelude string
	// NewEngine returns a fresh engine for each run. Defaults to the
	// in-repo HVM.
	NewEngine func() Engine
	// StackSize is the minimum stack budget for compile, allocate and
	// reduce. Defaults to DefaultStackSize.
	StackSize uint64
	// Report receives progress. Defaults to a TextReporter on stdout.
	Report Reporter
}

// Result describes a completed run.
type Result struct {
	Command  Command
	Entry    string
	Rewrites uint64
	Text     string
	Nodes    int
	Elapsed  time.Duration
}

// Exec runs cmd on the file at path. The file is read once; if that fails
// the engine is never created. The run is not cancellable once reduction
// has started: ctx is only checked before it begins.
func (d *Driver) Exec(ctx context.Context, cmd Command, path string) (*Result, error) {
	entry, err := cmd.Entry()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Command: cmd, Entry: entry}
	start := time.Now()
	err = RunWithStack(d.stackSize(), func() error {
		return d.run(res, string(data))
	})
	res.Elapsed = time.Since(start)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Driver) run(res *Result, code string) error {
	report := d.reporter()
	engine := d.engine()

	prog, err := engine.Compile(d.Prelude + "\n" + code)
	if err != nil {
		return &CompileError{Err: err}
	}
	consID, nilID, err := StringSymbols(prog)
	if err != nil {
		return err
	}
	report.Debugf("symbols: %s=%d %s=%d", ConsName, consID, NilName, nilID)
	report.Debugf("call: (%s %q) [%d chars]", res.Entry, preview(code, 40), utf8.RuneCountInString(code))

	root, err := Allocate(engine, prog, res.Entry, code)
	if err != nil {
		return err
	}

	report.Reducing(res.Entry)
	rewrites, err := Reduce(engine, root)
	if err != nil {
		return err
	}
	res.Rewrites = rewrites
	report.Reduced(rewrites)
	if s, ok := engine.(Sizer); ok {
		res.Nodes = s.Size()
	}

	text, err := DecodeString(engine, root, consID, nilID)
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) && (derr.Kind == KindCtr || derr.Kind == KindCall) {
			derr.Name = prog.Name(derr.ID)
		}
		return err
	}
	res.Text = text
	report.Output(text)
	return nil
}

// StringSymbols resolves the ids of the string constructors. A program
// that does not define both is rejected rather than guessed at.
func StringSymbols(prog Program) (consID, nilID uint64, err error) {
	consID, ok := prog.Lookup(ConsName)
	if !ok {
		return 0, 0, &MissingSymbolError{Name: ConsName}
	}
	nilID, ok = prog.Lookup(NilName)
	if !ok {
		return 0, 0, &MissingSymbolError{Name: NilName}
	}
	return consID, nilID, nil
}

func (d *Driver) engine() Engine {
	if d.NewEngine != nil {
		return d.NewEngine()
	}
	return &HVM{}
}

func (d *Driver) reporter() Reporter {
	if d.Report != nil {
		return d.Report
	}
	return &TextReporter{Out: os.Stdout}
}

func (d *Driver) stackSize() uint64 {
	if d.StackSize == 0 {
		return DefaultStackSize
	}
	return d.StackSize
}

// preview returns the first n runes of s.
func preview(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
