package hvm

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Show renders the graph at loc in source syntax, stopping after roughly
// limit bytes (0 means no limit). Chains of StrCons cells holding valid
// runes and ending in StrNil are rendered as string literals.
func (w *Worker) Show(loc uint64, limit int) string {
	s := &shower{w: w, limit: limit}
	s.show(w.Ask(loc))
	if s.cut {
		s.b.WriteString("...")
	}
	return s.b.String()
}

type shower struct {
	w     *Worker
	b     strings.Builder
	limit int
	cut   bool
}

func (s *shower) full() bool {
	if s.limit > 0 && s.b.Len() >= s.limit {
		s.cut = true
	}
	return s.cut
}

func (s *shower) show(p Ptr) {
	if s.full() {
		return
	}
	switch p.Tag() {
	case NUM:
		s.b.WriteString(strconv.FormatUint(p.Num(), 10))
	case OP2:
		s.b.WriteString("(" + Oper(p.Ext()).String() + " ")
		s.show(s.w.AskArg(p, 0))
		s.b.WriteByte(' ')
		s.show(s.w.AskArg(p, 1))
		s.b.WriteByte(')')
	case CTR, CAL:
		if text, ok := s.w.readString(p); ok {
			s.b.WriteString(strconv.Quote(text))
			return
		}
		s.b.WriteString("(" + s.w.book.Name(p.Ext()))
		for i := 0; i < s.w.Arity(p); i++ {
			s.b.WriteByte(' ')
			s.show(s.w.AskArg(p, i))
			if s.full() {
				return
			}
		}
		s.b.WriteByte(')')
	default:
		s.b.WriteString(p.String())
	}
}

// readString reads a complete StrCons/StrNil chain starting at p.
func (w *Worker) readString(p Ptr) (string, bool) {
	cons, okc := w.book.Lookup(StrCons)
	nilID, okn := w.book.Lookup(StrNil)
	if !okc || !okn {
		return "", false
	}
	var b strings.Builder
	for {
		switch {
		case p.Tag() == CTR && p.Ext() == nilID:
			return b.String(), true
		case p.Tag() == CTR && p.Ext() == cons && w.Arity(p) == 2:
			head := w.AskArg(p, 0)
			if head.Tag() != NUM || head.Num() > utf8.MaxRune || !utf8.ValidRune(rune(head.Num())) {
				return "", false
			}
			b.WriteRune(rune(head.Num()))
			p = w.AskArg(p, 1)
		default:
			return "", false
		}
	}
}
