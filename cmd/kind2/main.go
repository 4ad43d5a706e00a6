package main

import "kind2/pkg/lib"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		lib.Exit(err)
	}
}
