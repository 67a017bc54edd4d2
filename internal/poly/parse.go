package poly

import (
	"errors"
	"fmt"
	"math/big"
	"unicode"
)

// ErrSyntax is wrapped by every ParseError.
var ErrSyntax = errors.New("poly: syntax error")

const maxExponent = 64

// ParseError reports the byte offset of a malformed expression.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("poly: parse error at %d: %s", e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokNum, text: string(rs[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^' || r == '(' || r == ')':
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

type parser struct {
	ring   *Ring
	params map[string]*big.Rat
	toks   []token
	pos    int
}

// Parse reads a polynomial expression over the ring variables. Identifiers
// that are not ring variables are looked up in params. Supported syntax:
// numbers (integers and decimals), + - * /, ^ or ** with a constant
// non-negative integer exponent, and parentheses. Division is only allowed
// by nonzero constants.
func (r *Ring) Parse(src string, params map[string]*big.Rat) (MPoly, error) {
	toks, err := lex(src)
	if err != nil {
		return MPoly{}, err
	}
	p := &parser{ring: r, params: params, toks: toks}
	out, err := p.expr()
	if err != nil {
		return MPoly{}, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return MPoly{}, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return out, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(s string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == s
}

func (p *parser) expr() (MPoly, error) {
	left, err := p.term()
	if err != nil {
		return MPoly{}, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.term()
		if err != nil {
			return MPoly{}, err
		}
		if op.text == "+" {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
	return left, nil
}

func (p *parser) term() (MPoly, error) {
	left, err := p.unary()
	if err != nil {
		return MPoly{}, err
	}
	for p.isOp("*") || p.isOp("/") {
		op := p.next()
		right, err := p.unary()
		if err != nil {
			return MPoly{}, err
		}
		if op.text == "*" {
			left = left.Mul(right)
			continue
		}
		c, ok := right.Constant()
		if !ok || c.Sign() == 0 {
			return MPoly{}, &ParseError{Pos: op.pos, Msg: "division by a non-constant or zero expression"}
		}
		left = left.Scale(c.Inv(c))
	}
	return left, nil
}

func (p *parser) unary() (MPoly, error) {
	if p.isOp("-") {
		p.next()
		v, err := p.unary()
		if err != nil {
			return MPoly{}, err
		}
		return v.Neg(), nil
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (MPoly, error) {
	base, err := p.atom()
	if err != nil {
		return MPoly{}, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	op := p.next()
	exp, err := p.unary()
	if err != nil {
		return MPoly{}, err
	}
	c, ok := exp.Constant()
	if !ok || !c.IsInt() || c.Sign() < 0 || c.Num().Cmp(big.NewInt(maxExponent)) > 0 {
		return MPoly{}, &ParseError{Pos: op.pos, Msg: fmt.Sprintf("exponent must be an integer in [0, %d]", maxExponent)}
	}
	return base.Pow(int(c.Num().Int64())), nil
}

func (p *parser) atom() (MPoly, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		v, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return MPoly{}, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("bad number %q", t.text)}
		}
		return p.ring.Const(v), nil
	case tokIdent:
		if i, ok := p.ring.Index(t.text); ok {
			return p.ring.Var(i), nil
		}
		if v, ok := p.params[t.text]; ok && v != nil {
			return p.ring.Const(v), nil
		}
		return MPoly{}, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unknown identifier %q", t.text)}
	case tokOp:
		if t.text == "(" {
			v, err := p.expr()
			if err != nil {
				return MPoly{}, err
			}
			if !p.isOp(")") {
				return MPoly{}, &ParseError{Pos: p.peek().pos, Msg: "missing )"}
			}
			p.next()
			return v, nil
		}
	}
	if t.kind == tokEOF {
		return MPoly{}, &ParseError{Pos: t.pos, Msg: "unexpected end of expression"}
	}
	return MPoly{}, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}
