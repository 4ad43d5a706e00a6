package lib

import (
	"bytes"
	"errors"
	"testing"
)

func TestFail(t *testing.T) {
	var buf bytes.Buffer
	code := Fail(&buf, errors.New("cannot read source file"))
	if code != 1 {
		t.Errorf("exit code: got %d, want 1", code)
	}
	if got, want := buf.String(), "Error: cannot read source file\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
