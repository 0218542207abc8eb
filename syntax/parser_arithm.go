// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package syntax

import "strconv"

// The arithmetic grammar is a precedence ladder: each method parses one
// level and calls the next tighter one, so `1 + 2 * 3` groups the
// multiplication first and chains of equal precedence associate left.
// Assignment and ** associate right.

// arithWS skips blanks, newlines and line continuations between
// arithmetic tokens.
func (p *parser) arithWS() {
	l := p.lex
	for {
		switch l.Peek() {
		case ' ', '\t', '\n':
			l.Bump()
		case '\\':
			if l.PeekAt(1) != '\n' {
				return
			}
			l.BumpN(2)
		default:
			return
		}
	}
}

func (p *parser) arithExpr() (ArithExpr, error) {
	return p.arithAssign()
}

// arithAssign handles `name = expr`. The name is read speculatively: when
// no lone = follows, the cursor backs up and the ternary level takes over.
func (p *parser) arithAssign() (ArithExpr, error) {
	l := p.lex
	p.arithWS()
	save := l.Pos()
	if name := l.ReadName(); name != "" {
		p.arithWS()
		if l.Peek() == '=' && l.PeekAt(1) != '=' {
			l.Bump()
			x, err := p.arithAssign()
			if err != nil {
				return nil, err
			}
			return &ArithAssign{Name: name, X: x}, nil
		}
	}
	l.SetPos(save)
	return p.arithTernary()
}

func (p *parser) arithTernary() (ArithExpr, error) {
	cond, err := p.arithLogOr()
	if err != nil {
		return nil, err
	}
	l := p.lex
	p.arithWS()
	if !l.Eat('?') {
		return cond, nil
	}
	then, err := p.arithAssign()
	if err != nil {
		return nil, err
	}
	p.arithWS()
	if !l.Eat(':') {
		return nil, p.err("missing `:' in ternary expression")
	}
	els, err := p.arithAssign()
	if err != nil {
		return nil, err
	}
	return &ArithTernary{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) arithLogOr() (ArithExpr, error) {
	x, err := p.arithLogAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.arithWS()
		if !p.lex.EatStr("||") {
			return x, nil
		}
		y, err := p.arithLogAnd()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: LogOrOp, X: x, Y: y}
	}
}

func (p *parser) arithLogAnd() (ArithExpr, error) {
	x, err := p.arithBitOr()
	if err != nil {
		return nil, err
	}
	for {
		p.arithWS()
		if !p.lex.EatStr("&&") {
			return x, nil
		}
		y, err := p.arithBitOr()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: LogAndOp, X: x, Y: y}
	}
}

func (p *parser) arithBitOr() (ArithExpr, error) {
	x, err := p.arithBitXor()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		if l.Peek() != '|' || l.PeekAt(1) == '|' {
			return x, nil
		}
		l.Bump()
		y, err := p.arithBitXor()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: BitOrOp, X: x, Y: y}
	}
}

func (p *parser) arithBitXor() (ArithExpr, error) {
	x, err := p.arithBitAnd()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		if !l.Eat('^') {
			return x, nil
		}
		y, err := p.arithBitAnd()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: BitXorOp, X: x, Y: y}
	}
}

func (p *parser) arithBitAnd() (ArithExpr, error) {
	x, err := p.arithEquality()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		if l.Peek() != '&' || l.PeekAt(1) == '&' {
			return x, nil
		}
		l.Bump()
		y, err := p.arithEquality()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: BitAndOp, X: x, Y: y}
	}
}

func (p *parser) arithEquality() (ArithExpr, error) {
	x, err := p.arithRelational()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		var op ArithOp
		switch {
		case l.EatStr("=="):
			op = EqOp
		case l.EatStr("!="):
			op = NeOp
		default:
			return x, nil
		}
		y, err := p.arithRelational()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: op, X: x, Y: y}
	}
}

func (p *parser) arithRelational() (ArithExpr, error) {
	x, err := p.arithShift()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		var op ArithOp
		switch {
		case l.EatStr("<="):
			op = LeOp
		case l.EatStr(">="):
			op = GeOp
		case l.Peek() == '<' && l.PeekAt(1) != '<':
			l.Bump()
			op = LtOp
		case l.Peek() == '>' && l.PeekAt(1) != '>':
			l.Bump()
			op = GtOp
		default:
			return x, nil
		}
		y, err := p.arithShift()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: op, X: x, Y: y}
	}
}

func (p *parser) arithShift() (ArithExpr, error) {
	x, err := p.arithAdditive()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		var op ArithOp
		switch {
		case l.EatStr("<<"):
			op = ShlOp
		case l.EatStr(">>"):
			op = ShrOp
		default:
			return x, nil
		}
		y, err := p.arithAdditive()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: op, X: x, Y: y}
	}
}

func (p *parser) arithAdditive() (ArithExpr, error) {
	x, err := p.arithMultiplicative()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		var op ArithOp
		switch {
		case l.Peek() == '+' && l.PeekAt(1) != '+':
			l.Bump()
			op = AddOp
		case l.Peek() == '-' && l.PeekAt(1) != '-':
			l.Bump()
			op = SubOp
		default:
			return x, nil
		}
		y, err := p.arithMultiplicative()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: op, X: x, Y: y}
	}
}

func (p *parser) arithMultiplicative() (ArithExpr, error) {
	x, err := p.arithPower()
	if err != nil {
		return nil, err
	}
	l := p.lex
	for {
		p.arithWS()
		var op ArithOp
		switch {
		case l.Peek() == '*' && l.PeekAt(1) != '*':
			l.Bump()
			op = MulOp
		case l.Eat('/'):
			op = DivOp
		case l.Eat('%'):
			op = RemOp
		default:
			return x, nil
		}
		y, err := p.arithPower()
		if err != nil {
			return nil, err
		}
		x = &ArithBinary{Op: op, X: x, Y: y}
	}
}

func (p *parser) arithPower() (ArithExpr, error) {
	x, err := p.arithUnary()
	if err != nil {
		return nil, err
	}
	p.arithWS()
	if !p.lex.EatStr("**") {
		return x, nil
	}
	// ** associates right: 2**3**2 is 2**(3**2)
	y, err := p.arithPower()
	if err != nil {
		return nil, err
	}
	return &ArithBinary{Op: PowOp, X: x, Y: y}, nil
}

func (p *parser) arithUnary() (ArithExpr, error) {
	l := p.lex
	p.arithWS()
	switch {
	case l.EatStr("++"):
		return p.arithIncDec(false)
	case l.EatStr("--"):
		return p.arithIncDec(true)
	case l.Eat('+'):
		x, err := p.arithUnary()
		if err != nil {
			return nil, err
		}
		return &ArithUnary{Op: PlusOp, X: x}, nil
	case l.Eat('-'):
		x, err := p.arithUnary()
		if err != nil {
			return nil, err
		}
		return &ArithUnary{Op: MinusOp, X: x}, nil
	case l.Eat('!'):
		x, err := p.arithUnary()
		if err != nil {
			return nil, err
		}
		return &ArithUnary{Op: LogNotOp, X: x}, nil
	case l.Eat('~'):
		x, err := p.arithUnary()
		if err != nil {
			return nil, err
		}
		return &ArithUnary{Op: BitNotOp, X: x}, nil
	}
	return p.arithPostfix()
}

// arithIncDec finishes a prefix ++ or -- whose operator has already been
// consumed; only a bare name may follow.
func (p *parser) arithIncDec(dec bool) (ArithExpr, error) {
	p.arithWS()
	name := p.lex.ReadName()
	if name == "" {
		return nil, p.err("expected name after increment operator")
	}
	return &ArithIncDec{Name: name, Dec: dec}, nil
}

// arithPostfix parses a primary and then any trailing ++ or --, which only
// attach to bare variable references.
func (p *parser) arithPostfix() (ArithExpr, error) {
	x, err := p.arithPrimary()
	if err != nil {
		return nil, err
	}
	v, ok := x.(*ArithVar)
	if !ok {
		return x, nil
	}
	l := p.lex
	p.arithWS()
	switch {
	case l.EatStr("++"):
		return &ArithIncDec{Name: v.Name, Post: true}, nil
	case l.EatStr("--"):
		return &ArithIncDec{Name: v.Name, Dec: true, Post: true}, nil
	}
	return x, nil
}

func (p *parser) arithPrimary() (ArithExpr, error) {
	l := p.lex
	p.arithWS()
	switch b := l.Peek(); {
	case b == '(':
		l.Bump()
		x, err := p.arithAssign()
		if err != nil {
			return nil, err
		}
		p.arithWS()
		if !l.Eat(')') {
			return nil, p.err("missing `)' in arithmetic expression")
		}
		return x, nil
	case isDigit(b):
		return p.arithNumber()
	case b == '$':
		l.Bump()
		if name := l.ReadName(); name != "" {
			return &ArithVar{Name: name}, nil
		}
		if num := l.ReadNumber(); num != "" {
			return &ArithVar{Name: num}, nil
		}
		return nil, p.err("bad substitution in arithmetic expression")
	case isNameStart(b):
		return &ArithVar{Name: l.ReadName()}, nil
	}
	return nil, p.err("expected arithmetic expression")
}

// arithNumber scans a decimal, octal or 0x hex literal.
func (p *parser) arithNumber() (ArithExpr, error) {
	l := p.lex
	start := l.Pos()
	for {
		b := l.Peek()
		if isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') ||
			b == 'x' || b == 'X' {
			l.Bump()
			continue
		}
		break
	}
	n, err := strconv.ParseInt(l.Slice(start), 0, 64)
	if err != nil {
		return nil, &ParseError{Offset: start, Msg: "invalid number in arithmetic expression"}
	}
	return &ArithLit{Value: n}, nil
}
