// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package syntax

import (
	"strconv"
	"strings"
)

// readWord reads one shell word at the cursor, or nil when the position
// does not start a word.
func (p *parser) readWord() (*Word, error) {
	return p.wordWithStops("", false)
}

// wordWithStops reads a word whose end is marked by a metacharacter or any
// byte in stops. Inside a ${...} operand (inBraces) metacharacters lose
// their meaning and only the stop bytes end the word, so that
// `${v:-a b}` keeps `a b` as one operand.
func (p *parser) wordWithStops(stops string, inBraces bool) (*Word, error) {
	l := p.lex
	start := l.Pos()
	var parts []WordPart
	for {
		b := l.Peek()
		if b == 0 {
			break
		}
		if b == '\\' && l.PeekAt(1) == '\n' {
			// line continuation: the word carries on
			l.BumpN(2)
			continue
		}
		if stops != "" && strings.IndexByte(stops, b) >= 0 {
			break
		}
		if (b == '<' || b == '>') && l.PeekAt(1) == '(' {
			part, err := p.procSubst()
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			continue
		}
		if !inBraces && isMeta(b) {
			break
		}
		if b == '`' && p.inBackquote {
			break
		}
		part, err := p.wordPart(stops, inBraces)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return &Word{Parts: parts, Start: start, End: l.Pos()}, nil
}

// wordPart reads one atom in an unquoted context.
func (p *parser) wordPart(stops string, inBraces bool) (WordPart, error) {
	l := p.lex
	switch b := l.Peek(); b {
	case '\'':
		l.Bump()
		s, err := l.ScanSQuote()
		if err != nil {
			return nil, err
		}
		return &SglQuoted{Value: s}, nil
	case '"':
		return p.dblQuoted()
	case '\\':
		l.Bump()
		if l.EOF() {
			// a lone trailing backslash stays literal
			return &Lit{Value: l.SliceRange(l.Pos()-1, l.Pos())}, nil
		}
		start := l.Pos()
		l.Bump()
		return &Escaped{Value: l.SliceRange(start, start+1)}, nil
	case '$':
		return p.dollar(false)
	case '`':
		return p.backquoteSubst()
	case '*', '?', '[', ']':
		l.Bump()
		return &Wildcard{Op: b}, nil
	case '~':
		l.Bump()
		return &Tilde{}, nil
	case '{':
		if br, ok := p.braceRange(); ok {
			return br, nil
		}
		return p.litRun(stops, inBraces), nil
	default:
		return p.litRun(stops, inBraces), nil
	}
}

// litRun consumes the byte at the cursor plus the run of plain literal
// bytes after it, as one zero-copy literal.
func (p *parser) litRun(stops string, inBraces bool) WordPart {
	l := p.lex
	start := l.Pos()
	l.Bump()
	for {
		b := l.Peek()
		if b == 0 {
			break
		}
		if stops != "" && strings.IndexByte(stops, b) >= 0 {
			break
		}
		if !inBraces && isMeta(b) {
			break
		}
		switch b {
		case '\'', '"', '\\', '$', '`', '*', '?', '[', ']', '~', '{':
			return &Lit{Value: l.Slice(start)}
		}
		if (b == '<' || b == '>') && l.PeekAt(1) == '(' {
			break
		}
		l.Bump()
	}
	return &Lit{Value: l.Slice(start)}
}

// dblQuoted reads the parts between double quotes: only $, backtick and a
// few backslash escapes keep their meaning; glob and tilde atoms are
// suppressed.
func (p *parser) dblQuoted() (WordPart, error) {
	l := p.lex
	l.Bump() // opening quote
	var parts []WordPart
	for {
		switch l.Peek() {
		case 0:
			return nil, p.err("unterminated double quote")
		case '"':
			l.Bump()
			return &DblQuoted{Parts: parts}, nil
		case '\\':
			switch l.PeekAt(1) {
			case '$', '`', '"', '\\':
				l.Bump()
				start := l.Pos()
				l.Bump()
				parts = append(parts, &Escaped{Value: l.SliceRange(start, start+1)})
			case '\n':
				l.BumpN(2)
			default:
				// the backslash itself is literal here
				start := l.Pos()
				l.Bump()
				parts = append(parts, &Lit{Value: l.SliceRange(start, start+1)})
			}
		case '$':
			part, err := p.dollar(true)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		case '`':
			part, err := p.backquoteSubst()
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		default:
			start := l.Pos()
			for {
				b := l.Peek()
				if b == 0 || b == '"' || b == '\\' || b == '$' || b == '`' {
					break
				}
				l.Bump()
			}
			parts = append(parts, &Lit{Value: l.Slice(start)})
		}
	}
}

// dollar dispatches everything introduced by $. Inside double quotes the
// ANSI-C $'...' form is not special.
func (p *parser) dollar(quoted bool) (WordPart, error) {
	l := p.lex
	dollarPos := l.Pos()
	l.Bump()
	switch b := l.Peek(); {
	case b == '\'' && !quoted:
		l.Bump()
		s, err := l.ScanSQuote()
		if err != nil {
			return nil, err
		}
		return &AnsiCQuoted{Value: s}, nil
	case b == '(' && l.PeekAt(1) == '(':
		return p.arithSubstPart()
	case b == '(':
		return p.cmdSubst()
	case b == '{':
		return p.paramSubst()
	}
	if prm, ok := p.bareParam(); ok {
		return prm, nil
	}
	// a $ followed by nothing expandable is literal
	return &Lit{Value: l.SliceRange(dollarPos, dollarPos+1)}, nil
}

// bareParam reads the parameter after an unbraced $. Positional references
// take a single digit in this form.
func (p *parser) bareParam() (*Param, bool) {
	l := p.lex
	switch b := l.Peek(); {
	case b == '@':
		l.Bump()
		return &Param{Kind: ParamAt}, true
	case b == '*':
		l.Bump()
		return &Param{Kind: ParamStar}, true
	case b == '#':
		l.Bump()
		return &Param{Kind: ParamPound}, true
	case b == '?':
		l.Bump()
		return &Param{Kind: ParamStatus}, true
	case b == '$':
		l.Bump()
		return &Param{Kind: ParamPid}, true
	case b == '!':
		l.Bump()
		return &Param{Kind: ParamBang}, true
	case b == '-':
		l.Bump()
		return &Param{Kind: ParamDash}, true
	case isDigit(b):
		l.Bump()
		return &Param{Kind: ParamPositional, Index: int(b - '0')}, true
	}
	if name := l.ReadName(); name != "" {
		return &Param{Kind: ParamNamed, Name: name}, true
	}
	return nil, false
}

// cmdSubst parses `$(stmts)`, re-entering the program grammar.
func (p *parser) cmdSubst() (WordPart, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	l.Bump() // (
	saved := p.inBackquote
	p.inBackquote = false
	stmts, err := p.program([]string{")"})
	p.inBackquote = saved
	if err != nil {
		return nil, err
	}
	if !l.Eat(')') {
		return nil, p.err("missing `)' in command substitution")
	}
	return &CmdSubst{Stmts: stmts}, nil
}

// backquoteSubst parses a `...` command substitution; inside it an
// unescaped backquote terminates rather than nests.
func (p *parser) backquoteSubst() (WordPart, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	l.Bump() // `
	saved := p.inBackquote
	p.inBackquote = true
	stmts, err := p.program([]string{"`"})
	p.inBackquote = saved
	if err != nil {
		return nil, err
	}
	if !l.Eat('`') {
		return nil, p.err("unterminated command substitution")
	}
	return &CmdSubst{Stmts: stmts}, nil
}

// arithSubstPart parses `$((expr))`; the expression may be empty.
func (p *parser) arithSubstPart() (WordPart, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	l.BumpN(2)
	p.skipWS()
	if l.EatStr("))") {
		return &ArithSubst{}, nil
	}
	x, err := p.arithExpr()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if !l.EatStr("))") {
		return nil, p.err("missing `))' in arithmetic substitution")
	}
	return &ArithSubst{X: x}, nil
}

// procSubst parses `<(stmts)` or `>(stmts)`.
func (p *parser) procSubst() (WordPart, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	op := l.Peek()
	l.BumpN(2)
	saved := p.inBackquote
	p.inBackquote = false
	stmts, err := p.program([]string{")"})
	p.inBackquote = saved
	if err != nil {
		return nil, err
	}
	if !l.Eat(')') {
		return nil, p.err("missing `)' in process substitution")
	}
	return &ProcSubst{Op: op, Stmts: stmts}, nil
}

// braceRange speculatively matches `{a..b}` or `{a..b..step}`, restoring
// the cursor when the braces turn out to be plain text.
func (p *parser) braceRange() (WordPart, bool) {
	l := p.lex
	start := l.Pos()
	l.Bump() // {
	first := p.braceSeg()
	if first == "" || !l.EatStr("..") {
		l.SetPos(start)
		return nil, false
	}
	second := p.braceSeg()
	if second == "" {
		l.SetPos(start)
		return nil, false
	}
	step := ""
	if l.EatStr("..") {
		if step = p.braceSeg(); step == "" {
			l.SetPos(start)
			return nil, false
		}
	}
	if !l.Eat('}') {
		l.SetPos(start)
		return nil, false
	}
	return &BraceRange{Start: first, End: second, Step: step}, true
}

// braceSeg reads one endpoint of a brace range: letters, digits, or a
// leading minus for negative numbers.
func (p *parser) braceSeg() string {
	l := p.lex
	start := l.Pos()
	if l.Peek() == '-' {
		l.Bump()
	}
	for {
		b := l.Peek()
		if isNameByte(b) {
			l.Bump()
			continue
		}
		break
	}
	return l.Slice(start)
}

// paramSubst parses everything after `${`. Operators are matched longest
// first so that `:-` wins over `-`, `##` over `#`, and `//` over `/`.
func (p *parser) paramSubst() (WordPart, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	l.Bump() // {

	switch {
	case l.Eat('#'):
		return p.lenSubst()
	case l.Eat('!'):
		return p.indirectSubst()
	}

	prm, ok := p.braceParam()
	if !ok {
		return nil, p.err("bad substitution")
	}

	if prm.Kind == ParamNamed && l.Peek() == '[' {
		return p.arraySubst(prm.Name)
	}
	if l.Eat('}') {
		ref := prm
		return &ref, nil
	}
	if l.Eat('@') {
		op := l.Peek()
		if !isNameStart(op) {
			return nil, p.err("invalid parameter transform")
		}
		l.Bump()
		if !l.Eat('}') {
			return nil, p.err("missing `}' in parameter substitution")
		}
		if prm.Kind != ParamNamed {
			return nil, p.err("bad substitution")
		}
		return &TransformSubst{Name: prm.Name, Op: op}, nil
	}

	for _, e := range substOps {
		if l.EatStr(e.str) {
			return p.paramSubstTail(prm, e.op)
		}
	}
	if l.Eat(':') {
		return p.substringSubst(prm)
	}
	return nil, p.err("malformed parameter substitution")
}

// paramSubstTail reads the operand word(s) of a dispatched operator up to
// the closing brace.
func (p *parser) paramSubstTail(prm Param, op SubstOp) (WordPart, error) {
	l := p.lex
	if op.isReplace() {
		pat, err := p.wordWithStops("/}", true)
		if err != nil {
			return nil, err
		}
		ps := &ParamSubst{Op: op, Param: prm, Word: pat}
		if l.Eat('/') {
			with, err := p.wordWithStops("}", true)
			if err != nil {
				return nil, err
			}
			ps.With = with
		}
		if !l.Eat('}') {
			return nil, p.err("missing `}' in parameter substitution")
		}
		return ps, nil
	}
	w, err := p.wordWithStops("}", true)
	if err != nil {
		return nil, err
	}
	if !l.Eat('}') {
		return nil, p.err("missing `}' in parameter substitution")
	}
	return &ParamSubst{Op: op, Param: prm, Word: w}, nil
}

// lenSubst parses the `${#...}` family.
func (p *parser) lenSubst() (WordPart, error) {
	l := p.lex
	if l.Eat('}') {
		// ${#} is the positional count, same as $#
		return &Param{Kind: ParamPound}, nil
	}
	if name := l.ReadName(); name != "" {
		if l.Eat('[') {
			if !l.Eat('@') && !l.Eat('*') {
				return nil, p.err("malformed array length expansion")
			}
			if !l.Eat(']') || !l.Eat('}') {
				return nil, p.err("malformed array length expansion")
			}
			return &ArrayLenSubst{Name: name}, nil
		}
		if !l.Eat('}') {
			return nil, p.err("missing `}' in parameter substitution")
		}
		return &LenSubst{Param: Param{Kind: ParamNamed, Name: name}}, nil
	}
	prm, ok := p.bareParam()
	if !ok {
		return nil, p.err("bad substitution")
	}
	if !l.Eat('}') {
		return nil, p.err("missing `}' in parameter substitution")
	}
	return &LenSubst{Param: *prm}, nil
}

// indirectSubst parses `${!name}` and `${!prefix*}`/`${!prefix@}`.
// A bare `${!}` is the last-background-pid parameter.
func (p *parser) indirectSubst() (WordPart, error) {
	l := p.lex
	if l.Eat('}') {
		return &Param{Kind: ParamBang}, nil
	}
	name := l.ReadName()
	if name == "" {
		return nil, p.err("malformed indirect expansion")
	}
	if l.Eat('*') || l.Eat('@') {
		if !l.Eat('}') {
			return nil, p.err("missing `}' in parameter substitution")
		}
		return &PrefixListSubst{Prefix: name}, nil
	}
	if !l.Eat('}') {
		return nil, p.err("missing `}' in parameter substitution")
	}
	return &IndirectSubst{Name: name}, nil
}

// braceParam reads the parameter sigil after `${`: a name, a (possibly
// multi-digit) positional, or a special parameter.
func (p *parser) braceParam() (Param, bool) {
	l := p.lex
	if name := l.ReadName(); name != "" {
		return Param{Kind: ParamNamed, Name: name}, true
	}
	if num := l.ReadNumber(); num != "" {
		n, err := strconv.Atoi(num)
		if err != nil {
			return Param{}, false
		}
		return Param{Kind: ParamPositional, Index: n}, true
	}
	switch l.Peek() {
	case '@':
		l.Bump()
		return Param{Kind: ParamAt}, true
	case '*':
		l.Bump()
		return Param{Kind: ParamStar}, true
	case '?':
		l.Bump()
		return Param{Kind: ParamStatus}, true
	case '$':
		l.Bump()
		return Param{Kind: ParamPid}, true
	case '-':
		l.Bump()
		return Param{Kind: ParamDash}, true
	}
	return Param{}, false
}

// arraySubst parses the `${name[...]...}` family; the cursor sits on `[`.
func (p *parser) arraySubst(name string) (WordPart, error) {
	l := p.lex
	l.Bump() // [
	if l.Eat('@') || l.Eat('*') {
		if !l.Eat(']') {
			return nil, p.err("missing `]' in array expansion")
		}
		if l.Eat(':') {
			offset := p.substArg()
			if offset == "" {
				return nil, p.err("missing offset in array slice")
			}
			as := &ArraySliceSubst{Name: name, Offset: offset}
			if l.Eat(':') {
				if as.Length = p.substArg(); as.Length == "" {
					return nil, p.err("missing length in array slice")
				}
			}
			if !l.Eat('}') {
				return nil, p.err("missing `}' in parameter substitution")
			}
			return as, nil
		}
		if !l.Eat('}') {
			return nil, p.err("missing `}' in parameter substitution")
		}
		return &ArrayAllSubst{Name: name}, nil
	}
	idx, err := p.wordWithStops("]", true)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, p.err("missing array index")
	}
	if !l.Eat(']') {
		return nil, p.err("missing `]' in array expansion")
	}
	if !l.Eat('}') {
		return nil, p.err("missing `}' in parameter substitution")
	}
	return &ArrayElemSubst{Name: name, Index: *idx}, nil
}

// substringSubst parses `${v:offset[:length]}` once operator dispatch has
// ruled out `:-` and friends.
func (p *parser) substringSubst(prm Param) (WordPart, error) {
	l := p.lex
	offset := p.substArg()
	if offset == "" {
		return nil, p.err("missing offset in substring expansion")
	}
	ss := &SubstringSubst{Param: prm, Offset: offset}
	if l.Eat(':') {
		if ss.Length = p.substArg(); ss.Length == "" {
			return nil, p.err("missing length in substring expansion")
		}
	}
	if !l.Eat('}') {
		return nil, p.err("missing `}' in parameter substitution")
	}
	return ss, nil
}

// substArg reads the raw text of a substring or slice offset/length; it
// is kept as source text for a downstream arithmetic evaluator.
func (p *parser) substArg() string {
	l := p.lex
	start := l.Pos()
	for !l.EOF() && l.Peek() != ':' && l.Peek() != '}' {
		l.Bump()
	}
	return strings.Trim(l.Slice(start), " \t")
}
