package driver

import (
	"strings"
	"unicode/utf8"

	"kind2/cmd/kind2/hvm"
)

// Constructors of the graph-native string encoding.
const (
	ConsName = hvm.StrCons
	NilName  = hvm.StrNil
)

// invalidRune replaces code points that are not valid Unicode scalar values.
const invalidRune = '?'

// shapeLimit bounds the rendering of an offending node in a DecodeError.
const shapeLimit = 160

// EncodeString encodes text as a right fold of StrCons cells ending in
// StrNil. The fold starts from the last character so the first character
// ends up nearest the root.
func EncodeString(text string) hvm.Term {
	runes := []rune(text)
	var list hvm.Term = &hvm.Ctr{Name: NilName}
	for i := len(runes) - 1; i >= 0; i-- {
		list = &hvm.Ctr{
			Name: ConsName,
			Args: []hvm.Term{&hvm.Num{Value: uint64(runes[i])}, list},
		}
	}
	return list
}

// DecodeString walks the list at root and recovers the string it encodes.
// Heads outside the Unicode scalar range decode as '?'. Any node that is
// neither a cons with a numeric head nor a nil yields a *DecodeError.
func DecodeString(r NodeReader, root Handle, consID, nilID uint64) (string, error) {
	var b strings.Builder
	h := root
	for i := 0; ; i++ {
		node, err := r.Read(h)
		if err != nil {
			return "", &DecodeError{Index: i, Reason: "unreadable node", Err: err}
		}
		if node.Kind != KindCtr {
			return "", newDecodeError(r, h, i, node, "expected "+ConsName+" or "+NilName)
		}
		switch node.ID {
		case nilID:
			return b.String(), nil
		case consID:
			if len(node.Args) != 2 {
				return "", newDecodeError(r, h, i, node, ConsName+" must have two fields")
			}
			head, err := r.Read(node.Args[0])
			if err != nil {
				return "", &DecodeError{Index: i, Reason: "unreadable head", Err: err}
			}
			if head.Kind != KindNum {
				return "", newDecodeError(r, h, i, node, "head of "+ConsName+" is not a number")
			}
			b.WriteRune(decodeRune(head.Value))
			h = node.Args[1]
		default:
			return "", newDecodeError(r, h, i, node, "expected "+ConsName+" or "+NilName)
		}
	}
}

func decodeRune(v uint64) rune {
	if v > utf8.MaxRune || !utf8.ValidRune(rune(v)) {
		return invalidRune
	}
	return rune(v)
}

func newDecodeError(r NodeReader, h Handle, index int, node Node, reason string) *DecodeError {
	e := &DecodeError{
		Index:  index,
		Reason: reason,
		Kind:   node.Kind,
		ID:     node.ID,
		Arity:  len(node.Args),
	}
	if s, ok := r.(Shower); ok {
		e.Shape = s.Show(h, shapeLimit)
	}
	return e
}
