package driver

import (
	"errors"
	"fmt"

	"kind2/cmd/kind2/hvm"
)

var errNoWorker = errors.New("no term allocated")

// HVM adapts the in-repo engine to the Engine interface. The zero value is
// ready to use; NodeLimit caps graph memory in cells (0 = unlimited).
type HVM struct {
	NodeLimit int

	worker *hvm.Worker
}

func (e *HVM) Compile(source string) (Program, error) {
	file, err := hvm.ReadFile(source)
	if err != nil {
		return nil, err
	}
	book, err := hvm.GenRulebook(file)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Alloc starts a fresh worker for prog and writes term into it.
func (e *HVM) Alloc(prog Program, term hvm.Term) (Handle, error) {
	book, ok := prog.(*hvm.Rulebook)
	if !ok {
		return 0, fmt.Errorf("program %T was not compiled by this engine", prog)
	}
	e.worker = hvm.NewWorker(book, hvm.WithNodeLimit(e.NodeLimit))
	root, err := e.worker.AllocTerm(term)
	if err != nil {
		return 0, err
	}
	return Handle(root), nil
}

func (e *HVM) Normalize(root Handle) (uint64, error) {
	if e.worker == nil {
		return 0, errNoWorker
	}
	err := e.worker.Normal(uint64(root))
	return e.worker.Cost, err
}

func (e *HVM) Read(h Handle) (Node, error) {
	if e.worker == nil {
		return Node{}, errNoWorker
	}
	if uint64(h) >= uint64(e.worker.Size()) {
		return Node{}, fmt.Errorf("handle %d out of range", h)
	}
	p := e.worker.Ask(uint64(h))
	var node Node
	switch p.Tag() {
	case hvm.NUM:
		return Node{Kind: KindNum, Value: p.Num()}, nil
	case hvm.CTR:
		node = Node{Kind: KindCtr, ID: p.Ext()}
	case hvm.CAL:
		node = Node{Kind: KindCall, ID: p.Ext()}
	case hvm.OP2:
		node = Node{Kind: KindOp, ID: p.Ext()}
	default:
		return Node{Kind: KindOther}, nil
	}
	for i := 0; i < e.worker.Arity(p); i++ {
		node.Args = append(node.Args, Handle(p.Loc(i)))
	}
	return node, nil
}

func (e *HVM) Show(h Handle, limit int) string {
	if e.worker == nil || uint64(h) >= uint64(e.worker.Size()) {
		return ""
	}
	return e.worker.Show(uint64(h), limit)
}

func (e *HVM) Size() int {
	if e.worker == nil {
		return 0
	}
	return e.worker.Size()
}
