// Package plural parses and evaluates the "Plural-Forms" header expression
// and reasons about the distribution of forms it produces.
package plural

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is a small arithmetic/logical/conditional expression tree over the
// single free variable n.
type Expr interface {
	Eval(n int) int
}

type numLit int

func (e numLit) Eval(int) int { return int(e) }

type varN struct{}

func (varN) Eval(n int) int { return n }

type unary struct {
	op string // "!"
	x  Expr
}

func (u unary) Eval(n int) int {
	if u.x.Eval(n) == 0 {
		return 1
	}
	return 0
}

type binary struct {
	op   string
	l, r Expr
}

func (b binary) Eval(n int) int {
	l, r := b.l.Eval(n), b.r.Eval(n)
	switch b.op {
	case "||":
		if l != 0 || r != 0 {
			return 1
		}
		return 0
	case "&&":
		if l != 0 && r != 0 {
			return 1
		}
		return 0
	case "==":
		return boolInt(l == r)
	case "!=":
		return boolInt(l != r)
	case "<":
		return boolInt(l < r)
	case "<=":
		return boolInt(l <= r)
	case ">":
		return boolInt(l > r)
	case ">=":
		return boolInt(l >= r)
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		if r == 0 {
			return 0
		}
		return l / r
	case "%":
		if r == 0 {
			return 0
		}
		return l % r
	}
	panic("plural: unknown operator " + b.op)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type cond struct {
	c, t, f Expr
}

func (c cond) Eval(n int) int {
	if c.c.Eval(n) != 0 {
		return c.t.Eval(n)
	}
	return c.f.Eval(n)
}

// Default is gettext's fallback when a header lacks a Plural-Forms line:
// nplurals=2; plural=(n != 1).
func Default() (Expr, int) {
	return binary{op: "!=", l: varN{}, r: numLit(1)}, 2
}

// ParseHeader extracts nplurals and the plural expression from a raw
// Plural-Forms header value, e.g. "nplurals=2; plural=(n != 1);". A
// missing or unparsable header yields Default().
func ParseHeader(header string) (Expr, int, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		e, n := Default()
		return e, n, nil
	}

	var nplurals int
	var exprStr string
	haveN, haveExpr := false, false

	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "nplurals") {
			idx := strings.IndexByte(part, '=')
			if idx < 0 {
				continue
			}
			v, err := strconv.Atoi(strings.TrimSpace(part[idx+1:]))
			if err != nil {
				continue
			}
			nplurals = v
			haveN = true
		} else if strings.HasPrefix(part, "plural") {
			idx := strings.IndexByte(part, '=')
			if idx < 0 {
				continue
			}
			exprStr = strings.TrimSpace(part[idx+1:])
			haveExpr = true
		}
	}

	if !haveN || !haveExpr || nplurals < 1 {
		e, n := Default()
		return e, n, fmt.Errorf("plural: malformed Plural-Forms header %q, using default", header)
	}

	expr, err := parseExpr(exprStr)
	if err != nil {
		e, n := Default()
		return e, n, fmt.Errorf("plural: %w, using default", err)
	}
	return expr, nplurals, nil
}

// --- recursive-descent expression parser -----------------------------

type tokenizer struct {
	s   string
	pos int
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.s) && (t.s[t.pos] == ' ' || t.s[t.pos] == '\t') {
		t.pos++
	}
}

func (t *tokenizer) peek() byte {
	t.skipSpace()
	if t.pos >= len(t.s) {
		return 0
	}
	return t.s[t.pos]
}

func (t *tokenizer) hasPrefix(p string) bool {
	t.skipSpace()
	return strings.HasPrefix(t.s[t.pos:], p)
}

func (t *tokenizer) consume(p string) bool {
	if t.hasPrefix(p) {
		t.pos += len(p)
		return true
	}
	return false
}

func parseExpr(s string) (Expr, error) {
	t := &tokenizer{s: s}
	e, err := parseTernary(t)
	if err != nil {
		return nil, err
	}
	t.skipSpace()
	if t.pos != len(t.s) {
		return nil, fmt.Errorf("unexpected trailing input %q in plural expression", t.s[t.pos:])
	}
	return e, nil
}

func parseTernary(t *tokenizer) (Expr, error) {
	c, err := parseOr(t)
	if err != nil {
		return nil, err
	}
	if t.consume("?") {
		thenE, err := parseTernary(t)
		if err != nil {
			return nil, err
		}
		if !t.consume(":") {
			return nil, fmt.Errorf("expected ':' in ternary plural expression")
		}
		elseE, err := parseTernary(t)
		if err != nil {
			return nil, err
		}
		return cond{c: c, t: thenE, f: elseE}, nil
	}
	return c, nil
}

func parseOr(t *tokenizer) (Expr, error) {
	l, err := parseAnd(t)
	if err != nil {
		return nil, err
	}
	for t.consume("||") {
		r, err := parseAnd(t)
		if err != nil {
			return nil, err
		}
		l = binary{op: "||", l: l, r: r}
	}
	return l, nil
}

func parseAnd(t *tokenizer) (Expr, error) {
	l, err := parseEquality(t)
	if err != nil {
		return nil, err
	}
	for t.consume("&&") {
		r, err := parseEquality(t)
		if err != nil {
			return nil, err
		}
		l = binary{op: "&&", l: l, r: r}
	}
	return l, nil
}

func parseEquality(t *tokenizer) (Expr, error) {
	l, err := parseRelational(t)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case t.consume("=="):
			r, err := parseRelational(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "==", l: l, r: r}
		case t.consume("!="):
			r, err := parseRelational(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "!=", l: l, r: r}
		default:
			return l, nil
		}
	}
}

func parseRelational(t *tokenizer) (Expr, error) {
	l, err := parseAdditive(t)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case t.consume("<="):
			r, err := parseAdditive(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "<=", l: l, r: r}
		case t.consume(">="):
			r, err := parseAdditive(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: ">=", l: l, r: r}
		case t.consume("<"):
			r, err := parseAdditive(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "<", l: l, r: r}
		case t.consume(">"):
			r, err := parseAdditive(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: ">", l: l, r: r}
		default:
			return l, nil
		}
	}
}

func parseAdditive(t *tokenizer) (Expr, error) {
	l, err := parseMultiplicative(t)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case t.consume("+"):
			r, err := parseMultiplicative(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "+", l: l, r: r}
		case t.consume("-"):
			r, err := parseMultiplicative(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "-", l: l, r: r}
		default:
			return l, nil
		}
	}
}

func parseMultiplicative(t *tokenizer) (Expr, error) {
	l, err := parseUnary(t)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case t.consume("*"):
			r, err := parseUnary(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "*", l: l, r: r}
		case t.consume("/"):
			r, err := parseUnary(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "/", l: l, r: r}
		case t.consume("%"):
			r, err := parseUnary(t)
			if err != nil {
				return nil, err
			}
			l = binary{op: "%", l: l, r: r}
		default:
			return l, nil
		}
	}
}

func parseUnary(t *tokenizer) (Expr, error) {
	if t.consume("!") {
		x, err := parseUnary(t)
		if err != nil {
			return nil, err
		}
		return unary{op: "!", x: x}, nil
	}
	if t.consume("-") {
		x, err := parseUnary(t)
		if err != nil {
			return nil, err
		}
		return binary{op: "-", l: numLit(0), r: x}, nil
	}
	return parsePrimary(t)
}

func parsePrimary(t *tokenizer) (Expr, error) {
	if t.consume("(") {
		e, err := parseTernary(t)
		if err != nil {
			return nil, err
		}
		if !t.consume(")") {
			return nil, fmt.Errorf("expected ')' in plural expression")
		}
		return e, nil
	}
	if t.peek() == 'n' {
		t.skipSpace()
		t.pos++
		return varN{}, nil
	}
	t.skipSpace()
	start := t.pos
	for t.pos < len(t.s) && t.s[t.pos] >= '0' && t.s[t.pos] <= '9' {
		t.pos++
	}
	if t.pos == start {
		return nil, fmt.Errorf("unexpected character %q in plural expression", string(t.peek()))
	}
	v, err := strconv.Atoi(t.s[start:t.pos])
	if err != nil {
		return nil, err
	}
	return numLit(v), nil
}

// Distribution summarizes check_plural_eval's verdict over a range of n:
// a frequency histogram of which form each n maps to, an "often used"
// prefix of the forms seen for small n, and whether the expression is
// well-formed (every form index in [0, nplurals) reachable and no
// out-of-range index produced).
type Distribution struct {
	Histogram  map[int]int
	OftenUsed  []int
	WellFormed bool
}

// sampleRange is the span of n values gettext itself samples when sanity
// checking a plural expression.
const sampleRange = 200

// CheckPluralEval evaluates expr across a wide range of n (0..199) and
// builds the distribution the merge engine uses to flag plural-form
// discrepancies between an old and a new header.
func CheckPluralEval(expr Expr, nplurals int) Distribution {
	dist := Distribution{Histogram: make(map[int]int), WellFormed: true}
	seen := make(map[int]bool, nplurals)
	for n := 0; n < sampleRange; n++ {
		form := expr.Eval(n)
		dist.Histogram[form]++
		if form < 0 || form >= nplurals {
			dist.WellFormed = false
		}
		seen[form] = true
		if n < 16 {
			dist.OftenUsed = append(dist.OftenUsed, form)
		}
	}
	for i := 0; i < nplurals; i++ {
		if !seen[i] {
			dist.WellFormed = false
		}
	}
	return dist
}
