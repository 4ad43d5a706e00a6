package hvm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReadFile parses a whole program.
//
//	file := { rule }
//	rule := "(" Name { term } ")" "=" term
//
// Comments start with // and run to the end of the line.
func ReadFile(code string) (*File, error) {
	p := &parser{src: code, line: 1, col: 1}
	file := &File{}
	for {
		p.skip()
		if p.eof() {
			return file, nil
		}
		rule, err := p.rule()
		if err != nil {
			return nil, err
		}
		file.Rules = append(file.Rules, rule)
	}
}

// ReadTerm parses a single term. Trailing input other than whitespace and
// comments is an error.
func ReadTerm(code string) (Term, error) {
	p := &parser{src: code, line: 1, col: 1}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	p.skip()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after term", p.peek())
	}
	return t, nil
}

type parser struct {
	src  string
	pos  int
	line int
	col  int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d:%d: %s", ErrParse, p.line, p.col, fmt.Sprintf(format, args...))
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

// skip consumes whitespace and comments.
func (p *parser) skip() {
	for !p.eof() {
		switch {
		case unicode.IsSpace(p.peek()):
			p.next()
		case strings.HasPrefix(p.src[p.pos:], "//"):
			for !p.eof() && p.peek() != '\n' {
				p.next()
			}
		default:
			return
		}
	}
}

func (p *parser) consume(tok string) bool {
	p.skip()
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		return false
	}
	for range tok {
		p.next()
	}
	return true
}

func (p *parser) expect(tok string) error {
	if !p.consume(tok) {
		if p.eof() {
			return p.errorf("expected %q, found end of input", tok)
		}
		return p.errorf("expected %q, found %q", tok, p.peek())
	}
	return nil
}

func (p *parser) rule() (Rule, error) {
	p.skip()
	line := p.line
	lhs, err := p.term()
	if err != nil {
		return Rule{}, err
	}
	head, ok := lhs.(*Ctr)
	if !ok {
		return Rule{}, fmt.Errorf("%w at line %d: rule must start with a function application", ErrParse, line)
	}
	if err := p.expect("="); err != nil {
		return Rule{}, err
	}
	rhs, err := p.term()
	if err != nil {
		return Rule{}, err
	}
	return Rule{Lhs: head, Rhs: rhs, Line: line}, nil
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *parser) name() string {
	start := p.pos
	for !p.eof() && isNameRune(p.peek()) {
		p.next()
	}
	return p.src[start:p.pos]
}

// operators, longest first so "<<" wins over "<".
var operTokens = []struct {
	tok string
	op  Oper
}{
	{"<<", OpShl}, {">>", OpShr}, {"<=", OpLte}, {">=", OpGte}, {"==", OpEql}, {"!=", OpNeq},
	{"+", OpAdd}, {"-", OpSub}, {"*", OpMul}, {"/", OpDiv}, {"%", OpMod},
	{"&", OpAnd}, {"|", OpOr}, {"^", OpXor}, {"<", OpLtn}, {">", OpGtn},
}

func (p *parser) term() (Term, error) {
	p.skip()
	if p.eof() {
		return nil, p.errorf("expected term, found end of input")
	}
	r := p.peek()
	switch {
	case r == '(':
		p.next()
		return p.application()
	case r == '"':
		return p.str()
	case r == '\'':
		return p.char()
	case unicode.IsDigit(r):
		return p.number()
	case strings.HasPrefix(p.src[p.pos:], "let") && !isNameRune(p.runeAt(3)):
		return p.let()
	case unicode.IsUpper(r):
		return &Ctr{Name: p.name()}, nil
	case r == '_' || unicode.IsLetter(r):
		return &Var{Name: p.name()}, nil
	}
	return nil, p.errorf("unexpected %q", r)
}

// runeAt returns the rune n bytes ahead of the cursor, or 0 past the end.
func (p *parser) runeAt(n int) rune {
	if p.pos+n >= len(p.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos+n:])
	return r
}

func (p *parser) application() (Term, error) {
	p.skip()
	for _, o := range operTokens {
		if strings.HasPrefix(p.src[p.pos:], o.tok) {
			p.consume(o.tok)
			left, err := p.term()
			if err != nil {
				return nil, err
			}
			right, err := p.term()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return &Op2{Op: o.op, Left: left, Right: right}, nil
		}
	}
	if !unicode.IsUpper(p.peek()) {
		return nil, p.errorf("expected constructor or function name, found %q", p.peek())
	}
	c := &Ctr{Name: p.name()}
	for {
		if p.consume(")") {
			return c, nil
		}
		arg, err := p.term()
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, arg)
	}
}

func (p *parser) let() (Term, error) {
	p.consume("let")
	p.skip()
	if r := p.peek(); !(r == '_' || unicode.IsLower(r)) {
		return nil, p.errorf("let expects a variable name")
	}
	name := p.name()
	if err := p.expect("="); err != nil {
		return nil, err
	}
	value, err := p.term()
	if err != nil {
		return nil, err
	}
	p.consume(";")
	body, err := p.term()
	if err != nil {
		return nil, err
	}
	return &Let{Name: name, Value: value, Body: body}, nil
}

func (p *parser) number() (Term, error) {
	start := p.pos
	for !p.eof() && isNameRune(p.peek()) {
		p.next()
	}
	lit := p.src[start:p.pos]
	v, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", lit)
	}
	return &Num{Value: v & NumMask}, nil
}

func (p *parser) escape() (rune, error) {
	if p.eof() {
		return 0, p.errorf("unterminated escape")
	}
	switch r := p.next(); r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'':
		return r, nil
	default:
		return 0, p.errorf("unknown escape \\%c", r)
	}
}

func (p *parser) str() (Term, error) {
	p.next()
	var b strings.Builder
	for {
		if p.eof() {
			return nil, p.errorf("unterminated string")
		}
		r := p.next()
		switch r {
		case '"':
			return StrTerm(b.String()), nil
		case '\\':
			e, err := p.escape()
			if err != nil {
				return nil, err
			}
			b.WriteRune(e)
		default:
			b.WriteRune(r)
		}
	}
}

func (p *parser) char() (Term, error) {
	p.next()
	if p.eof() {
		return nil, p.errorf("unterminated char")
	}
	r := p.next()
	if r == '\\' {
		var err error
		if r, err = p.escape(); err != nil {
			return nil, err
		}
	}
	if p.eof() || p.next() != '\'' {
		return nil, p.errorf("unterminated char")
	}
	return &Num{Value: uint64(r)}, nil
}
