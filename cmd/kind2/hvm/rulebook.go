package hvm

import "fmt"

// Rulebook is the compiled form of a File: a symbol table assigning dense
// ids to every constructor and function name, their arities, and the rules
// of each function in source order.
type Rulebook struct {
	NameToID map[string]uint64
	IDToName []string
	Arity    []int
	Rules    [][]Rule // indexed by id; nil for constructors
}

// GenRulebook builds the rulebook of a parsed file. Ids are assigned in
// order of first appearance, function heads before the names used inside
// rules.
func GenRulebook(file *File) (*Rulebook, error) {
	book := &Rulebook{NameToID: make(map[string]uint64)}

	for _, rule := range file.Rules {
		id, err := book.register(rule.Lhs.Name, len(rule.Lhs.Args))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", rule.Line, err)
		}
		book.Rules[id] = append(book.Rules[id], rule)
	}

	for _, rule := range file.Rules {
		if err := book.checkRule(rule); err != nil {
			return nil, fmt.Errorf("line %d: %w", rule.Line, err)
		}
	}
	return book, nil
}

// register assigns an id to name, or checks the arity of a known name.
func (b *Rulebook) register(name string, arity int) (uint64, error) {
	if id, ok := b.NameToID[name]; ok {
		if b.Arity[id] != arity {
			return 0, fmt.Errorf("%w: %s used with %d arguments, declared with %d", ErrArity, name, arity, b.Arity[id])
		}
		return id, nil
	}
	id := uint64(len(b.IDToName))
	b.NameToID[name] = id
	b.IDToName = append(b.IDToName, name)
	b.Arity = append(b.Arity, arity)
	b.Rules = append(b.Rules, nil)
	return id, nil
}

// Lookup returns the id of name.
func (b *Rulebook) Lookup(name string) (uint64, bool) {
	id, ok := b.NameToID[name]
	return id, ok
}

// Name returns the name of id, or "" if id is unknown.
func (b *Rulebook) Name(id uint64) string {
	if id < uint64(len(b.IDToName)) {
		return b.IDToName[id]
	}
	return ""
}

// IsFunc reports whether id names a function, i.e. has at least one rule.
func (b *Rulebook) IsFunc(id uint64) bool {
	return id < uint64(len(b.Rules)) && len(b.Rules[id]) > 0
}

func (b *Rulebook) checkRule(rule Rule) error {
	bound := map[string]bool{}
	for _, arg := range rule.Lhs.Args {
		if err := b.checkPattern(arg, bound); err != nil {
			return fmt.Errorf("%s: %w", rule.Lhs.Name, err)
		}
	}
	if err := b.checkBody(rule.Rhs, bound); err != nil {
		return fmt.Errorf("%s: %w", rule.Lhs.Name, err)
	}
	return nil
}

func (b *Rulebook) checkPattern(t Term, bound map[string]bool) error {
	switch x := t.(type) {
	case *Var:
		if x.Name == "_" {
			return nil
		}
		if bound[x.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateVar, x.Name)
		}
		bound[x.Name] = true
		return nil
	case *Num:
		return nil
	case *Ctr:
		id, err := b.register(x.Name, len(x.Args))
		if err != nil {
			return err
		}
		if b.IsFunc(id) {
			return fmt.Errorf("%w: function %s cannot be matched on", ErrInvalidPattern, x.Name)
		}
		for _, arg := range x.Args {
			if err := b.checkPattern(arg, bound); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPattern, ShowTerm(t))
	}
}

func (b *Rulebook) checkBody(t Term, bound map[string]bool) error {
	switch x := t.(type) {
	case *Var:
		if x.Name == "_" || !bound[x.Name] {
			return fmt.Errorf("%w: %s", ErrUnboundVar, x.Name)
		}
		return nil
	case *Num:
		return nil
	case *Op2:
		if err := b.checkBody(x.Left, bound); err != nil {
			return err
		}
		return b.checkBody(x.Right, bound)
	case *Let:
		if err := b.checkBody(x.Value, bound); err != nil {
			return err
		}
		inner := make(map[string]bool, len(bound)+1)
		for k, v := range bound {
			inner[k] = v
		}
		inner[x.Name] = true
		return b.checkBody(x.Body, inner)
	case *Ctr:
		if _, err := b.register(x.Name, len(x.Args)); err != nil {
			return err
		}
		for _, arg := range x.Args {
			if err := b.checkBody(arg, bound); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unexpected term %T", ErrParse, t)
	}
}

// CheckTerm validates a closed term against the rulebook: every name must be
// known, used with its declared arity, and no variable may occur free.
func (b *Rulebook) CheckTerm(t Term) error {
	return b.checkClosed(t, map[string]bool{})
}

func (b *Rulebook) checkClosed(t Term, bound map[string]bool) error {
	switch x := t.(type) {
	case *Ctr:
		id, ok := b.NameToID[x.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownName, x.Name)
		}
		if b.Arity[id] != len(x.Args) {
			return fmt.Errorf("%w: %s expects %d arguments, got %d", ErrArity, x.Name, b.Arity[id], len(x.Args))
		}
		for _, arg := range x.Args {
			if err := b.checkClosed(arg, bound); err != nil {
				return err
			}
		}
		return nil
	case *Let:
		if err := b.checkClosed(x.Value, bound); err != nil {
			return err
		}
		inner := make(map[string]bool, len(bound)+1)
		for k, v := range bound {
			inner[k] = v
		}
		inner[x.Name] = true
		return b.checkClosed(x.Body, inner)
	case *Op2:
		if err := b.checkClosed(x.Left, bound); err != nil {
			return err
		}
		return b.checkClosed(x.Right, bound)
	default:
		return b.checkBody(t, bound)
	}
}
