package driver

import "kind2/cmd/kind2/hvm"

// BuildCall assembles the term entry(<text>). The entry point is not
// validated here; the engine rejects unknown names at allocation.
func BuildCall(entry, text string) *hvm.Ctr {
	return &hvm.Ctr{Name: entry, Args: []hvm.Term{EncodeString(text)}}
}

// Allocate assembles entry(<text>) and writes it into the engine's graph
// memory. Nothing is reduced.
func Allocate(e Engine, prog Program, entry, text string) (Handle, error) {
	root, err := e.Alloc(prog, BuildCall(entry, text))
	if err != nil {
		return 0, &AllocError{Entry: entry, Err: err}
	}
	return root, nil
}
