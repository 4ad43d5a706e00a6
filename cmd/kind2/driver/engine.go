package driver

import "kind2/cmd/kind2/hvm"

// Handle is an opaque reference to a node in the engine's graph memory.
type Handle uint64

// Program is the compiled form of a source program. The driver only reads
// its symbol table.
type Program interface {
	// Lookup returns the dense id of a constructor or function name.
	Lookup(name string) (uint64, bool)
	// Name returns the name of id, or "" when unknown.
	Name(id uint64) string
}

// NodeReader exposes the read side of the engine's graph.
type NodeReader interface {
	Read(h Handle) (Node, error)
}

// Engine is the graph-reduction collaborator. An Engine instance serves a
// single pipeline run and is not safe for concurrent use: each call must
// return before the next one starts.
type Engine interface {
	NodeReader

	// Compile parses and compiles a whole source program.
	Compile(source string) (Program, error)
	// Alloc writes term into graph memory without reducing it.
	Alloc(prog Program, term hvm.Term) (Handle, error)
	// Normalize reduces the graph at root to normal form and returns the
	// number of rewrites performed.
	Normalize(root Handle) (uint64, error)
}

// Shower is implemented by engines that can render a node for diagnostics.
type Shower interface {
	Show(h Handle, limit int) string
}

// Sizer is implemented by engines that report their memory usage in cells.
type Sizer interface {
	Size() int
}

// NodeKind classifies a node read back from the engine.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindCtr
	KindCall
	KindNum
	KindOp
)

func (k NodeKind) String() string {
	switch k {
	case KindCtr:
		return "constructor"
	case KindCall:
		return "call"
	case KindNum:
		return "number"
	case KindOp:
		return "operation"
	default:
		return "other"
	}
}

// Node is a read-only view of one graph node.
//
// ID is set for constructors and calls, Value for numbers. Args holds the
// handles of the node's children in order.
type Node struct {
	Kind  NodeKind
	ID    uint64
	Value uint64
	Args  []Handle
}
