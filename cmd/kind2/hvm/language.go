package hvm

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Names of the two constructors string literals desugar into.
const (
	StrCons = "StrCons"
	StrNil  = "StrNil"
)

// Numbers are unsigned and wrap at 60 bits.
const (
	NumBits        = 60
	NumMask uint64 = 1<<NumBits - 1
	MaxNum         = NumMask
)

// Term is the sealed interface for source-level terms.
// Only the types in this file implement it.
type Term interface {
	isTerm()
}

// Var is a variable reference. Its name starts with a lower-case letter or '_'.
type Var struct {
	Name string
}

// Num is a 60-bit unsigned literal.
type Num struct {
	Value uint64
}

// Ctr applies a constructor or a function to its arguments.
// Whether Name is a function is decided by the rulebook: names that head
// the left-hand side of at least one rule are functions.
type Ctr struct {
	Name string
	Args []Term
}

// Op2 is a binary numeric operation.
type Op2 struct {
	Op    Oper
	Left  Term
	Right Term
}

// Let binds Name to Value inside Body. The value is shared, not copied.
type Let struct {
	Name  string
	Value Term
	Body  Term
}

func (*Var) isTerm() {}
func (*Num) isTerm() {}
func (*Ctr) isTerm() {}
func (*Op2) isTerm() {}
func (*Let) isTerm() {}

// Oper identifies a binary numeric operation.
type Oper uint8

const (
	OpAdd Oper = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpLtn
	OpLte
	OpEql
	OpGte
	OpGtn
	OpNeq
)

var operSymbols = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpAnd: "&", OpOr: "|", OpXor: "^", OpShl: "<<", OpShr: ">>",
	OpLtn: "<", OpLte: "<=", OpEql: "==", OpGte: ">=", OpGtn: ">", OpNeq: "!=",
}

func (o Oper) String() string {
	if int(o) < len(operSymbols) {
		return operSymbols[o]
	}
	return "?"
}

// Rule rewrites calls matching Lhs into Rhs.
// Line is the 1-based source line of the rule, used in error messages.
type Rule struct {
	Lhs  *Ctr
	Rhs  Term
	Line int
}

// File is a parsed source program: an ordered list of rules.
type File struct {
	Rules []Rule
}

// StrTerm desugars text into a StrCons/StrNil chain.
func StrTerm(text string) Term {
	runes := []rune(text)
	var list Term = &Ctr{Name: StrNil}
	for i := len(runes) - 1; i >= 0; i-- {
		list = &Ctr{Name: StrCons, Args: []Term{&Num{Value: uint64(runes[i])}, list}}
	}
	return list
}

// ShowTerm renders a term in source syntax. Well-formed string chains are
// rendered as string literals.
func ShowTerm(t Term) string {
	var b strings.Builder
	showTerm(&b, t)
	return b.String()
}

func showTerm(b *strings.Builder, t Term) {
	switch x := t.(type) {
	case *Var:
		b.WriteString(x.Name)
	case *Num:
		b.WriteString(strconv.FormatUint(x.Value, 10))
	case *Op2:
		b.WriteString("(" + x.Op.String() + " ")
		showTerm(b, x.Left)
		b.WriteByte(' ')
		showTerm(b, x.Right)
		b.WriteByte(')')
	case *Let:
		b.WriteString("let " + x.Name + " = ")
		showTerm(b, x.Value)
		b.WriteString("; ")
		showTerm(b, x.Body)
	case *Ctr:
		if s, ok := termString(x); ok {
			b.WriteString(strconv.Quote(s))
			return
		}
		b.WriteString("(" + x.Name)
		for _, arg := range x.Args {
			b.WriteByte(' ')
			showTerm(b, arg)
		}
		b.WriteByte(')')
	default:
		b.WriteString("?")
	}
}

// termString reports whether c is a StrCons/StrNil chain of valid runes.
func termString(c *Ctr) (string, bool) {
	var b strings.Builder
	for {
		switch {
		case c.Name == StrNil && len(c.Args) == 0:
			return b.String(), true
		case c.Name == StrCons && len(c.Args) == 2:
			head, ok := c.Args[0].(*Num)
			if !ok || head.Value > utf8.MaxRune || !utf8.ValidRune(rune(head.Value)) {
				return "", false
			}
			b.WriteRune(rune(head.Value))
			tail, ok := c.Args[1].(*Ctr)
			if !ok {
				return "", false
			}
			c = tail
		default:
			return "", false
		}
	}
}
