package sieve

// parser builds the expression tree from the token stream with recursive
// descent. Precedence, loosest first: OR, juxtaposition (AND), NOT.
//
//	Expr    := OrTerm
//	OrTerm  := AndTerm ( 'OR' AndTerm )*
//	AndTerm := Factor+
//	Factor  := ['NOT'] ( '(' Expr ')' | Atom )
//
// Atom values are compiled while parsing, so a malformed value or an
// unknown field surfaces here, not at first match.
type parser struct {
	toks []token
	pos  int
	reg  *Registry
	cc   *compileContext
}

func parse(toks []token, reg *Registry, cc *compileContext) (Node, error) {
	p := &parser{toks: toks, reg: reg, cc: cc}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, SyntaxError{Message: "unexpected token after expression", Token: p.cur().text}
	}
	return expr, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) next() { p.pos++ }

func (p *parser) parseExpr() (Node, error) {
	first, err := p.parseAndTerm()
	if err != nil {
		return nil, err
	}
	terms := []Node{first}
	for !p.atEnd() && p.cur().typ == tokenOr {
		p.next()
		t, err := p.parseAndTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &OrNode{Children: terms}, nil
}

func (p *parser) parseAndTerm() (Node, error) {
	var factors []Node
	for !p.atEnd() && p.cur().typ != tokenOr && p.cur().typ != tokenRParen {
		f, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
	switch len(factors) {
	case 0:
		if p.atEnd() {
			return nil, SyntaxError{Message: "expected a condition"}
		}
		return nil, SyntaxError{Message: "expected a condition", Token: p.cur().text}
	case 1:
		return factors[0], nil
	default:
		return &AndNode{Children: factors}, nil
	}
}

func (p *parser) parseFactor() (Node, error) {
	switch p.cur().typ {
	case tokenNot:
		p.next()
		if p.atEnd() {
			return nil, SyntaxError{Message: "expected expression after NOT"}
		}
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &NotNode{Child: child}, nil
	case tokenLParen:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.atEnd() || p.cur().typ != tokenRParen {
			return nil, SyntaxError{Message: "missing closing parenthesis"}
		}
		p.next()
		return expr, nil
	case tokenAtom:
		return p.parseAtom()
	default:
		return nil, SyntaxError{Message: "unexpected token", Token: p.cur().text}
	}
}

// parseAtom compiles one atom token. A comma-separated value list expands
// to an Or of single-value atoms sharing the field and negation.
func (p *parser) parseAtom() (Node, error) {
	parts, err := splitAtom(p.cur().text)
	if err != nil {
		return nil, err
	}
	p.next()

	field, err := p.reg.Lookup(parts.field)
	if err != nil {
		return nil, err
	}

	alts, err := splitAlternatives(parts)
	if err != nil {
		return nil, err
	}
	if len(alts) == 1 {
		return compileAtom(field, alts[0], parts.negated, p.cc)
	}
	or := &OrNode{Children: make([]Node, 0, len(alts))}
	for _, alt := range alts {
		n, err := compileAtom(field, alt, parts.negated, p.cc)
		if err != nil {
			return nil, err
		}
		or.Children = append(or.Children, n)
	}
	return or, nil
}
