package lib

import (
	"fmt"
	"io"
	"os"
)

// Fail prints the error to w and returns the exit code to use.
func Fail(w io.Writer, err error) int {
	fmt.Fprintln(w, "Error:", err)
	return 1
}

// Exit prints the error and exits the program with code 1
func Exit(err error) {
	os.Exit(Fail(os.Stderr, err))
}
