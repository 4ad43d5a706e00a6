package hvm

import "fmt"

// Memory layout
// -------------
//
// A Ptr packs a tag, an extension field and a value into 64 bits:
//
//	| tag (4) | ext (28) | val (32) |
//
// CTR and CAL carry the name id in ext and the location of their first
// argument in val. OP2 carries the operator in ext and the location of its
// two operands in val. REF points at a single shared cell. NUM uses the
// low 60 bits as its value.

type Ptr uint64

type Tag uint8

const (
	EMP Tag = iota // never-written cell
	REF
	NUM
	OP2
	CTR
	CAL
)

const (
	tagShift = 60
	extShift = 32
	extMask  = 1<<28 - 1
	valMask  = 1<<32 - 1
)

var tagNames = [...]string{EMP: "EMP", REF: "REF", NUM: "NUM", OP2: "OP2", CTR: "CTR", CAL: "CAL"}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("TAG%d", uint8(t))
}

func MakeNum(v uint64) Ptr { return Ptr(uint64(NUM)<<tagShift | v&NumMask) }

func MakeRef(loc uint64) Ptr { return Ptr(uint64(REF)<<tagShift | loc&valMask) }

func MakeOp2(op Oper, loc uint64) Ptr {
	return Ptr(uint64(OP2)<<tagShift | uint64(op)<<extShift | loc&valMask)
}

func MakeCtr(id, loc uint64) Ptr {
	return Ptr(uint64(CTR)<<tagShift | (id&extMask)<<extShift | loc&valMask)
}

func MakeCal(id, loc uint64) Ptr {
	return Ptr(uint64(CAL)<<tagShift | (id&extMask)<<extShift | loc&valMask)
}

func (p Ptr) Tag() Tag         { return Tag(uint64(p) >> tagShift) }
func (p Ptr) Ext() uint64      { return uint64(p) >> extShift & extMask }
func (p Ptr) Val() uint64      { return uint64(p) & valMask }
func (p Ptr) Num() uint64      { return uint64(p) & NumMask }
func (p Ptr) Loc(i int) uint64 { return p.Val() + uint64(i) }

func (p Ptr) String() string {
	switch p.Tag() {
	case NUM:
		return fmt.Sprintf("NUM:%d", p.Num())
	case EMP:
		return "~"
	default:
		return fmt.Sprintf("%s:%x:%x", p.Tag(), p.Ext(), p.Val())
	}
}

// Worker owns the node memory of one reduction and counts its rewrites.
// A Worker must not be used from more than one goroutine at a time.
type Worker struct {
	Node []Ptr
	Cost uint64

	book  *Rulebook
	limit int
}

// Option configures a Worker.
type Option func(*Worker)

// WithNodeLimit caps the number of memory cells the worker may allocate.
// Zero means unlimited.
func WithNodeLimit(n int) Option {
	return func(w *Worker) { w.limit = n }
}

func NewWorker(book *Rulebook, opts ...Option) *Worker {
	w := &Worker{book: book, Node: make([]Ptr, 0, 1024)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Book returns the rulebook the worker reduces against.
func (w *Worker) Book() *Rulebook { return w.book }

// Size is the number of allocated cells.
func (w *Worker) Size() int { return len(w.Node) }

// fault aborts a reduction. It is raised with panic and turned back into an
// error by Normal.
type fault struct{ err error }

func (w *Worker) fail(err error) { panic(fault{err}) }

func (w *Worker) alloc(size int) uint64 {
	if w.limit > 0 && len(w.Node)+size > w.limit {
		w.fail(fmt.Errorf("%w: %d cells", ErrOutOfMemory, w.limit))
	}
	loc := uint64(len(w.Node))
	for i := 0; i < size; i++ {
		w.Node = append(w.Node, 0)
	}
	return loc
}

// Ask reads the cell at loc, following shared references.
func (w *Worker) Ask(loc uint64) Ptr {
	p := w.Node[loc]
	for p.Tag() == REF {
		p = w.Node[p.Val()]
	}
	return p
}

// AskArg reads the i-th argument of a CTR, CAL or OP2 pointer.
func (w *Worker) AskArg(p Ptr, i int) Ptr { return w.Ask(p.Loc(i)) }

// Arity returns the number of argument cells behind p.
func (w *Worker) Arity(p Ptr) int {
	switch p.Tag() {
	case CTR, CAL:
		return w.book.Arity[p.Ext()]
	case OP2:
		return 2
	}
	return 0
}

// AllocTerm checks a closed term against the rulebook and writes it into a
// fresh root cell, returning the root location. Nothing is reduced.
func (w *Worker) AllocTerm(t Term) (root uint64, err error) {
	if err := w.book.CheckTerm(t); err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(fault)
			if !ok {
				panic(r)
			}
			err = f.err
		}
	}()
	root = w.alloc(1)
	w.Node[root] = w.build(t, nil)
	return root, nil
}

// build writes t into memory. Variables are looked up in env, which holds
// pointers that may be shared freely (values or REF cells).
func (w *Worker) build(t Term, env map[string]Ptr) Ptr {
	switch x := t.(type) {
	case *Var:
		return env[x.Name]
	case *Num:
		return MakeNum(x.Value)
	case *Op2:
		loc := w.alloc(2)
		w.Node[loc+0] = w.build(x.Left, env)
		w.Node[loc+1] = w.build(x.Right, env)
		return MakeOp2(x.Op, loc)
	case *Let:
		val := w.share(w.build(x.Value, env))
		prev, had := env[x.Name]
		if env == nil {
			env = map[string]Ptr{}
		}
		env[x.Name] = val
		body := w.build(x.Body, env)
		if had {
			env[x.Name] = prev
		} else {
			delete(env, x.Name)
		}
		return body
	case *Ctr:
		id := w.book.NameToID[x.Name]
		loc := w.alloc(len(x.Args))
		for i, arg := range x.Args {
			w.Node[loc+uint64(i)] = w.build(arg, env)
		}
		if w.book.IsFunc(id) {
			return MakeCal(id, loc)
		}
		return MakeCtr(id, loc)
	}
	panic(fmt.Sprintf("hvm: unexpected term %T", t))
}

// share makes p safe to copy into several cells. Values are immutable and
// copied as is; anything still reducible is moved behind a REF cell so all
// copies observe a single reduction.
func (w *Worker) share(p Ptr) Ptr {
	switch p.Tag() {
	case NUM, CTR, REF:
		return p
	}
	loc := w.alloc(1)
	w.Node[loc] = p
	return MakeRef(loc)
}

// bindSlot returns a shareable pointer to the contents of cell loc.
func (w *Worker) bindSlot(loc uint64) Ptr {
	p := w.Node[loc]
	switch p.Tag() {
	case NUM, CTR, REF:
		return p
	}
	return MakeRef(loc)
}

// Reduction
// ---------

// whnf reduces the cell at host to weak head normal form, updating it in
// place, and returns the resulting pointer. A call with no matching rule
// is left as is.
func (w *Worker) whnf(host uint64) Ptr {
	for {
		term := w.Node[host]
		switch term.Tag() {
		case REF:
			done := w.whnf(term.Val())
			if t := done.Tag(); t == NUM || t == CTR {
				w.Node[host] = done
			}
			return done
		case OP2:
			a := w.whnf(term.Loc(0))
			b := w.whnf(term.Loc(1))
			if a.Tag() != NUM || b.Tag() != NUM {
				return term
			}
			w.Cost++
			done := MakeNum(w.operate(Oper(term.Ext()), a.Num(), b.Num()))
			w.Node[host] = done
			return done
		case CAL:
			if !w.rewrite(host, term) {
				return term
			}
		default:
			return term
		}
	}
}

// rewrite applies the first rule of the called function whose patterns
// match. Arguments are reduced only as far as the patterns demand.
func (w *Worker) rewrite(host uint64, term Ptr) bool {
	for _, rule := range w.book.Rules[term.Ext()] {
		env := map[string]Ptr{}
		if !w.matchArgs(rule.Lhs.Args, term, env) {
			continue
		}
		w.Cost++
		w.Node[host] = w.build(rule.Rhs, env)
		return true
	}
	return false
}

func (w *Worker) matchArgs(pats []Term, term Ptr, env map[string]Ptr) bool {
	for i, pat := range pats {
		if !w.match(pat, term.Loc(i), env) {
			return false
		}
	}
	return true
}

func (w *Worker) match(pat Term, loc uint64, env map[string]Ptr) bool {
	switch x := pat.(type) {
	case *Var:
		if x.Name != "_" {
			env[x.Name] = w.bindSlot(loc)
		}
		return true
	case *Num:
		got := w.whnf(loc)
		return got.Tag() == NUM && got.Num() == x.Value&NumMask
	case *Ctr:
		got := w.whnf(loc)
		if got.Tag() != CTR || got.Ext() != w.book.NameToID[x.Name] {
			return false
		}
		return w.matchArgs(x.Args, got, env)
	}
	return false
}

func boolNum(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (w *Worker) operate(op Oper, a, b uint64) uint64 {
	switch op {
	case OpAdd:
		return (a + b) & NumMask
	case OpSub:
		return (a - b) & NumMask
	case OpMul:
		return (a * b) & NumMask
	case OpDiv:
		if b == 0 {
			w.fail(ErrDivByZero)
		}
		return a / b
	case OpMod:
		if b == 0 {
			w.fail(ErrDivByZero)
		}
		return a % b
	case OpAnd:
		return a & b
	case OpOr:
		return a | b
	case OpXor:
		return a ^ b
	case OpShl:
		return (a << b) & NumMask
	case OpShr:
		return a >> b
	case OpLtn:
		return boolNum(a < b)
	case OpLte:
		return boolNum(a <= b)
	case OpEql:
		return boolNum(a == b)
	case OpGte:
		return boolNum(a >= b)
	case OpGtn:
		return boolNum(a > b)
	case OpNeq:
		return boolNum(a != b)
	}
	return 0
}

// Normal reduces the term at root to normal form. Cells are visited once;
// shared subterms are normalized a single time. Runtime faults (division
// by zero, node budget) abort the reduction and are returned as errors.
func (w *Worker) Normal(root uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(fault)
			if !ok {
				panic(r)
			}
			err = f.err
		}
	}()
	w.normal(root, map[uint64]bool{})
	return nil
}

func (w *Worker) normal(host uint64, seen map[uint64]bool) {
	if seen[host] {
		return
	}
	seen[host] = true
	term := w.whnf(host)
	for i := 0; i < w.Arity(term); i++ {
		w.normal(term.Loc(i), seen)
	}
}
