package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"
)

// sourceExts are the file extensions offered by the interactive picker.
var sourceExts = []string{".kind2", ".hvm"}

var errNoFile = errors.New("missing <file> argument")

// findSources returns the source files below root, skipping hidden
// directories. Paths are relative to root.
func findSources(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range sourceExts {
			if strings.HasSuffix(d.Name(), ext) {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				files = append(files, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// pickSource lets the user choose a source file below the working directory
// with a fuzzy finder. It needs an interactive terminal.
func pickSource() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return "", errNoFile
	}
	files, err := findSources(".")
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no %s files below the working directory", errNoFile, strings.Join(sourceExts, "/"))
	}
	idx, err := fuzzyfinder.Find(
		files,
		func(i int) string {
			return files[i]
		},
		fuzzyfinder.WithPromptString("Select source file: "),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return "", errors.New("no file selected")
	}
	if err != nil {
		return "", err
	}
	return files[idx], nil
}
