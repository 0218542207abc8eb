// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// maxNesting bounds recursion into substitutions and compound commands so
// adversarial input cannot exhaust the call stack.
const maxNesting = 64

// ParseError describes the first syntax violation found in the input.
type ParseError struct {
	// Offset is the byte offset in the input where the error occurred.
	Offset int
	// Msg is a static description of the error.
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s", e.Offset, e.Msg)
}

// Parse parses a bash command line or script into its ordered command
// sequence. Parsing is one-shot: the first grammar violation aborts with a
// ParseError and no partial tree. Independent inputs may be parsed
// concurrently; a parse shares no state outside its own call.
func Parse(src string) ([]*Cmd, error) {
	p := &parser{lex: NewLexer(src)}
	cmds, err := p.program(nil)
	if err != nil {
		return nil, err
	}
	// End of input acts as the final newline for heredoc collection, so
	// a heredoc operator on the last line still gets its body read (or
	// reported unterminated) rather than left pending.
	if err := p.drainHeredocs(); err != nil {
		return nil, err
	}
	return cmds, nil
}

type parser struct {
	lex *Lexer

	// depth counts recursive entries into substitutions and compound
	// commands, failing closed at maxNesting.
	depth int

	// heredocs queues redirects whose bodies are collected at the next
	// newline, in the order their operators appeared.
	heredocs []*pendingHeredoc

	// inBackquote makes an unescaped ` terminate words and statement
	// lists instead of opening a nested substitution.
	inBackquote bool
}

type pendingHeredoc struct {
	redir  *Redirect
	delim  string
	quoted bool
}

func (p *parser) err(msg string) error {
	return &ParseError{Offset: p.lex.Pos(), Msg: msg}
}

func (p *parser) errAt(offset int, msg string) error {
	return &ParseError{Offset: offset, Msg: msg}
}

func (p *parser) enterNesting() error {
	p.depth++
	if p.depth > maxNesting {
		return p.err("nesting too deep")
	}
	return nil
}

func (p *parser) exitNesting() { p.depth-- }

// skipWS skips blanks and backslash-newline line continuations.
func (p *parser) skipWS() {
	for {
		p.lex.SkipBlanks()
		if p.lex.Peek() == '\\' && p.lex.PeekAt(1) == '\n' {
			p.lex.BumpN(2)
			continue
		}
		return
	}
}

// skipLineSpace skips blanks, comments and newlines between commands,
// draining pending heredoc bodies at each newline.
func (p *parser) skipLineSpace() error {
	for {
		p.skipWS()
		switch p.lex.Peek() {
		case '#':
			p.lex.SkipComment()
		case '\n':
			if err := p.newline(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// newline consumes one physical newline and collects any pending heredoc
// bodies that start after it.
func (p *parser) newline() error {
	p.lex.Bump()
	return p.drainHeredocs()
}

func (p *parser) drainHeredocs() error {
	pending := p.heredocs
	p.heredocs = nil
	for _, h := range pending {
		if err := p.readHeredocBody(h); err != nil {
			return err
		}
	}
	return nil
}

// readHeredocBody scans body lines up to a line exactly matching the
// delimiter. For <<- redirects, leading tabs are stripped from each line
// before the comparison.
func (p *parser) readHeredocBody(h *pendingHeredoc) error {
	l := p.lex
	bodyStart := l.Pos()
	bodyEnd := -1
	for {
		lineStart := l.Pos()
		for !l.EOF() && l.Peek() != '\n' {
			l.Bump()
		}
		line := l.Slice(lineStart)
		if h.redir.StripTabs {
			line = strings.TrimLeft(line, "\t")
		}
		if line == h.delim {
			bodyEnd = lineStart
			if !l.EOF() {
				l.Bump()
			}
			break
		}
		if l.EOF() {
			return p.errAt(bodyStart, "unterminated heredoc")
		}
		l.Bump()
	}
	if h.quoted {
		h.redir.Heredoc = &HeredocBody{Literal: true, Raw: l.SliceRange(bodyStart, bodyEnd)}
		return nil
	}
	after := l.Pos()
	parts, err := p.heredocParts(bodyStart, bodyEnd)
	l.SetPos(after)
	if err != nil {
		return err
	}
	h.redir.Heredoc = &HeredocBody{Parts: parts}
	return nil
}

// heredocParts re-scans an unquoted heredoc body region as a sequence of
// interpolated parts: parameter and command substitutions keep their
// meaning, everything else is literal.
func (p *parser) heredocParts(start, end int) ([]WordPart, error) {
	l := p.lex
	l.SetPos(start)
	var parts []WordPart
	for l.Pos() < end {
		switch b := l.Peek(); b {
		case '\\':
			// only \$, \` and \\ escape inside heredoc bodies
			switch c := l.PeekAt(1); c {
			case '$', '`', '\\':
				l.Bump()
				ePos := l.Pos()
				l.Bump()
				parts = append(parts, &Escaped{Value: l.SliceRange(ePos, ePos+1)})
			default:
				l.Bump()
				parts = append(parts, &Lit{Value: l.SliceRange(l.Pos()-1, l.Pos())})
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
			runStart := l.Pos()
			for l.Pos() < end {
				if b := l.Peek(); b == '\\' || b == '$' || b == '`' {
					break
				}
				l.Bump()
			}
			parts = append(parts, &Lit{Value: l.Slice(runStart)})
		}
	}
	return parts, nil
}

// opStops are the stop tokens recognized by raw prefix comparison rather
// than keyword boundary rules: operators delimit themselves.
func isOpStop(s string) bool {
	switch s {
	case ")", "`", ";;":
		return true
	}
	return false
}

func (p *parser) atStop(stops []string) bool {
	for _, s := range stops {
		if isOpStop(s) {
			if strings.HasPrefix(p.lex.Remaining(), s) {
				return true
			}
		} else if p.lex.AtKeyword(s) {
			return true
		}
	}
	return false
}

// program parses a sequence of commands separated by ; or newline, until
// end of input or until one of the stop tokens appears at a command-start
// position.
func (p *parser) program(stops []string) ([]*Cmd, error) {
	var cmds []*Cmd
	for {
		if err := p.skipLineSpace(); err != nil {
			return nil, err
		}
		if p.lex.EOF() || p.atStop(stops) {
			return cmds, nil
		}
		c, err := p.command(stops)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
}

// command parses one and/or list plus its terminator: a trailing &
// makes it a background job.
func (p *parser) command(stops []string) (*Cmd, error) {
	p.skipWS()
	start := p.lex.Pos()
	list, err := p.andOrList(stops)
	if err != nil {
		return nil, err
	}
	cmd := &Cmd{AndOr: list, Start: start, End: p.lex.Pos()}

	p.skipWS()
	switch b := p.lex.Peek(); {
	case b == '&' && p.lex.PeekAt(1) != '&':
		p.lex.Bump()
		cmd.Background = true
	case b == ';' && p.lex.PeekAt(1) != ';':
		p.lex.Bump()
	case b == '\n':
		if err := p.newline(); err != nil {
			return nil, err
		}
	case b == 0:
	default:
		if !p.atStop(stops) {
			return nil, p.err("unexpected character after command")
		}
	}
	return cmd, nil
}

// andOrList parses a pipeline and any following (&&|pipeline) or
// (|||pipeline) links, recording operator order verbatim.
func (p *parser) andOrList(stops []string) (AndOrList, error) {
	first, err := p.pipeline(stops)
	if err != nil {
		return AndOrList{}, err
	}
	list := AndOrList{First: first}
	for {
		save := p.lex.Pos()
		p.skipWS()
		var op AndOrOp
		switch {
		case p.lex.EatStr("&&"):
			op = AndOp
		case p.lex.EatStr("||"):
			op = OrOp
		default:
			p.lex.SetPos(save)
			return list, nil
		}
		// the operator may be followed by a line break
		if err := p.skipLineSpace(); err != nil {
			return AndOrList{}, err
		}
		next, err := p.pipeline(stops)
		if err != nil {
			return AndOrList{}, err
		}
		list.Rest = append(list.Rest, AndOr{Op: op, Pipeline: next})
	}
}

// pipeline parses an optionally negated chain of executables joined by |.
func (p *parser) pipeline(stops []string) (Pipeline, error) {
	p.skipWS()
	var pl Pipeline
	if p.lex.AtKeyword("!") {
		pl.Negated = true
		p.lex.Bump()
		p.skipWS()
	}
	first, err := p.executable(stops)
	if err != nil {
		return pl, err
	}
	pl.First = first
	for {
		save := p.lex.Pos()
		p.skipWS()
		if p.lex.Peek() != '|' || p.lex.PeekAt(1) == '|' {
			p.lex.SetPos(save)
			return pl, nil
		}
		p.lex.Bump()
		if err := p.skipLineSpace(); err != nil {
			return pl, err
		}
		next, err := p.executable(stops)
		if err != nil {
			return pl, err
		}
		pl.Rest = append(pl.Rest, next)
	}
}

// executable dispatches on keywords at a command-start position, in fixed
// priority order, before falling back to a simple command. The same
// keyword text later in a word context stays plain text.
func (p *parser) executable(stops []string) (Executable, error) {
	l := p.lex
	switch {
	case l.AtKeyword("if"):
		return p.ifClause()
	case l.AtKeyword("for"):
		return p.forClause()
	case l.AtKeyword("while"):
		return p.whileClause(false)
	case l.AtKeyword("until"):
		return p.whileClause(true)
	case l.AtKeyword("case"):
		return p.caseClause()
	case l.AtKeyword("{"):
		return p.braceGroup()
	case l.Peek() == '(' && l.PeekAt(1) == '(':
		return p.arithClause()
	case l.Peek() == '(':
		return p.subshellClause()
	case l.AtKeyword("[["):
		return p.testClause()
	}
	if fd, ok, err := p.funcDef(); err != nil {
		return nil, err
	} else if ok {
		return fd, nil
	}
	return p.simpleCmd(stops)
}

// compound wraps a parsed compound kind together with any redirects
// following its closing keyword; those attach to the construct as a
// whole, not to its last inner command.
func (p *parser) compound(kind CompoundKind) (*CompoundCmd, error) {
	cc := &CompoundCmd{Kind: kind}
	for {
		save := p.lex.Pos()
		p.skipWS()
		r, ok, err := p.redirect()
		if err != nil {
			return nil, err
		}
		if !ok {
			p.lex.SetPos(save)
			return cc, nil
		}
		cc.Redirects = append(cc.Redirects, r)
	}
}

func (p *parser) expectKeyword(kw, msg string) error {
	if err := p.skipLineSpace(); err != nil {
		return err
	}
	if !p.lex.AtKeyword(kw) {
		return p.err(msg)
	}
	p.lex.BumpN(len(kw))
	return nil
}

// body parses a non-empty command list ending at one of the stop tokens.
func (p *parser) body(msg string, stops ...string) ([]*Cmd, error) {
	cmds, err := p.program(stops)
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 {
		return nil, p.err(msg)
	}
	return cmds, nil
}

func (p *parser) ifClause() (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	p.lex.BumpN(len("if"))

	var clause IfClause
	for {
		guard, err := p.body("missing condition in if clause", "then")
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("then", "missing `then'"); err != nil {
			return nil, err
		}
		bodyCmds, err := p.body("missing body in if clause", "elif", "else", "fi")
		if err != nil {
			return nil, err
		}
		clause.Branches = append(clause.Branches, GuardBody{Guard: guard, Body: bodyCmds})
		if err := p.skipLineSpace(); err != nil {
			return nil, err
		}
		if p.lex.AtKeyword("elif") {
			p.lex.BumpN(len("elif"))
			continue
		}
		break
	}
	if p.lex.AtKeyword("else") {
		p.lex.BumpN(len("else"))
		elseCmds, err := p.body("missing body in else clause", "fi")
		if err != nil {
			return nil, err
		}
		clause.Else = elseCmds
	}
	if err := p.expectKeyword("fi", "missing `fi'"); err != nil {
		return nil, err
	}
	return p.compound(&clause)
}

func (p *parser) whileClause(until bool) (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	kw := "while"
	if until {
		kw = "until"
	}
	p.lex.BumpN(len(kw))

	guard, err := p.body("missing loop condition", "do")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("do", "missing `do'"); err != nil {
		return nil, err
	}
	bodyCmds, err := p.body("missing loop body", "done")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done", "missing `done'"); err != nil {
		return nil, err
	}
	return p.compound(&WhileClause{
		Until:     until,
		GuardBody: GuardBody{Guard: guard, Body: bodyCmds},
	})
}

func (p *parser) forClause() (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	l.BumpN(len("for"))
	p.skipWS()

	if l.Peek() == '(' && l.PeekAt(1) == '(' {
		return p.cforClause()
	}

	name := l.ReadName()
	if name == "" {
		return nil, p.err("missing variable name in for loop")
	}
	clause := ForClause{Var: name}
	p.skipWS()
	if l.AtKeyword("in") {
		l.BumpN(len("in"))
		clause.In = true
		for {
			p.skipWS()
			if b := l.Peek(); b == ';' || b == '\n' || b == 0 || b == '#' {
				break
			}
			w, err := p.readWord()
			if err != nil {
				return nil, err
			}
			if w == nil {
				return nil, p.err("unexpected character in for loop word list")
			}
			clause.Words = append(clause.Words, *w)
		}
	}
	p.skipWS()
	l.Eat(';')
	if err := p.expectKeyword("do", "missing `do'"); err != nil {
		return nil, err
	}
	bodyCmds, err := p.body("missing loop body", "done")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done", "missing `done'"); err != nil {
		return nil, err
	}
	clause.Body = bodyCmds
	return p.compound(&clause)
}

// cforClause parses the C-style for head `((init; cond; step))`, each
// clause independently optional.
func (p *parser) cforClause() (Executable, error) {
	l := p.lex
	l.BumpN(2)
	var clause CForClause
	var err error

	p.skipWS()
	if l.Peek() != ';' {
		if clause.Init, err = p.arithExpr(); err != nil {
			return nil, err
		}
	}
	p.skipWS()
	if !l.Eat(';') {
		return nil, p.err("missing `;' in C-style for loop")
	}
	p.skipWS()
	if l.Peek() != ';' {
		if clause.Cond, err = p.arithExpr(); err != nil {
			return nil, err
		}
	}
	p.skipWS()
	if !l.Eat(';') {
		return nil, p.err("missing `;' in C-style for loop")
	}
	p.skipWS()
	if !(l.Peek() == ')' && l.PeekAt(1) == ')') {
		if clause.Step, err = p.arithExpr(); err != nil {
			return nil, err
		}
	}
	p.skipWS()
	if !l.EatStr("))") {
		return nil, p.err("missing `))' in C-style for loop")
	}

	p.skipWS()
	l.Eat(';')
	if err := p.expectKeyword("do", "missing `do'"); err != nil {
		return nil, err
	}
	bodyCmds, err := p.body("missing loop body", "done")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done", "missing `done'"); err != nil {
		return nil, err
	}
	clause.Body = bodyCmds
	return p.compound(&clause)
}

func (p *parser) caseClause() (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	l.BumpN(len("case"))
	p.skipWS()

	w, err := p.readWord()
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, p.err("missing word in case clause")
	}
	if err := p.expectKeyword("in", "missing `in' in case clause"); err != nil {
		return nil, err
	}

	clause := CaseClause{Word: *w}
	for {
		if err := p.skipLineSpace(); err != nil {
			return nil, err
		}
		if l.AtKeyword("esac") {
			l.BumpN(len("esac"))
			break
		}
		if l.EOF() {
			return nil, p.err("missing `esac'")
		}
		l.Eat('(')
		var arm CaseArm
		for {
			p.skipWS()
			pat, err := p.readWord()
			if err != nil {
				return nil, err
			}
			if pat == nil {
				return nil, p.err("missing pattern in case arm")
			}
			arm.Patterns = append(arm.Patterns, *pat)
			p.skipWS()
			if !l.Eat('|') {
				break
			}
		}
		if !l.Eat(')') {
			return nil, p.err("missing `)' in case arm")
		}
		bodyCmds, err := p.program([]string{";;", "esac"})
		if err != nil {
			return nil, err
		}
		arm.Body = bodyCmds
		l.EatStr(";;")
		clause.Arms = append(clause.Arms, arm)
	}
	return p.compound(&clause)
}

func (p *parser) braceGroup() (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	p.lex.Bump()
	bodyCmds, err := p.body("empty brace group", "}")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("}", "missing `}'"); err != nil {
		return nil, err
	}
	return p.compound(&BraceGroup{Body: bodyCmds})
}

func (p *parser) subshellClause() (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	p.lex.Bump()
	bodyCmds, err := p.body("empty subshell", ")")
	if err != nil {
		return nil, err
	}
	if err := p.skipLineSpace(); err != nil {
		return nil, err
	}
	if !p.lex.Eat(')') {
		return nil, p.err("missing `)'")
	}
	return p.compound(&Subshell{Body: bodyCmds})
}

func (p *parser) testClause() (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	p.lex.BumpN(len("[["))
	bodyCmds, err := p.body("empty test clause", "]]")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("]]", "missing `]]'"); err != nil {
		return nil, err
	}
	return p.compound(&TestClause{Body: bodyCmds})
}

func (p *parser) arithClause() (Executable, error) {
	if err := p.enterNesting(); err != nil {
		return nil, err
	}
	defer p.exitNesting()
	l := p.lex
	l.BumpN(2)
	p.skipWS()
	x, err := p.arithExpr()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if !l.EatStr("))") {
		return nil, p.err("missing `))'")
	}
	return p.compound(&ArithCmd{X: x})
}

// funcDef speculatively parses `name () compound-command`, restoring the
// cursor when the position turns out not to start a function definition.
func (p *parser) funcDef() (Executable, bool, error) {
	l := p.lex
	start := l.Pos()
	name := l.ReadName()
	if name == "" {
		return nil, false, nil
	}
	p.skipWS()
	if !l.Eat('(') {
		l.SetPos(start)
		return nil, false, nil
	}
	p.skipWS()
	if !l.Eat(')') {
		l.SetPos(start)
		return nil, false, nil
	}
	if err := p.skipLineSpace(); err != nil {
		return nil, false, err
	}
	body, err := p.funcBody()
	if err != nil {
		return nil, false, err
	}
	return &FuncDef{Name: name, Body: body}, true, nil
}

// funcBody requires a compound command.
func (p *parser) funcBody() (*CompoundCmd, error) {
	e, err := p.executable(nil)
	if err != nil {
		return nil, err
	}
	cc, ok := e.(*CompoundCmd)
	if !ok {
		return nil, p.err("function body must be a compound command")
	}
	return cc, nil
}

// simpleCmd greedily consumes a prefix run of assignments and redirects,
// then a suffix run of words and redirects. Prefix consumption stops
// permanently at the first word that is neither.
func (p *parser) simpleCmd(stops []string) (Executable, error) {
	l := p.lex
	sc := &SimpleCmd{}
	for {
		save := l.Pos()
		p.skipWS()
		if r, ok, err := p.redirect(); err != nil {
			return nil, err
		} else if ok {
			sc.Prefix = append(sc.Prefix, r)
			continue
		}
		if a, ok, err := p.assign(); err != nil {
			return nil, err
		} else if ok {
			sc.Prefix = append(sc.Prefix, a)
			continue
		}
		l.SetPos(save)
		break
	}
	for {
		save := l.Pos()
		p.skipWS()
		// a # at word-start position begins a comment, ending the run
		if p.atWordStop(stops) || l.Peek() == '#' {
			l.SetPos(save)
			break
		}
		if r, ok, err := p.redirect(); err != nil {
			return nil, err
		} else if ok {
			sc.Suffix = append(sc.Suffix, r)
			continue
		}
		w, err := p.readWord()
		if err != nil {
			return nil, err
		}
		if w == nil {
			l.SetPos(save)
			break
		}
		sc.Suffix = append(sc.Suffix, w)
	}
	if len(sc.Prefix) == 0 && len(sc.Suffix) == 0 {
		return nil, p.err("expected a command")
	}
	return sc, nil
}

// atWordStop reports whether a stop token that is special even mid-list
// (only `]]`, inside a test clause) begins at the cursor.
func (p *parser) atWordStop(stops []string) bool {
	for _, s := range stops {
		if s == "]]" && p.lex.AtKeyword(s) {
			return true
		}
	}
	return false
}

// assign speculatively parses `name=word`, `name=(words)` or
// `name+=(words)` at a prefix position.
func (p *parser) assign() (CmdPrefix, bool, error) {
	l := p.lex
	start := l.Pos()
	name := l.ReadName()
	if name == "" {
		return nil, false, nil
	}
	switch {
	case l.EatStr("+=("):
		elems, err := p.arrayElems()
		if err != nil {
			return nil, false, err
		}
		return &ArrayAssign{Name: name, Append: true, Elems: elems}, true, nil
	case l.EatStr("=("):
		elems, err := p.arrayElems()
		if err != nil {
			return nil, false, err
		}
		return &ArrayAssign{Name: name, Elems: elems}, true, nil
	case l.Peek() == '=' && l.PeekAt(1) != '=':
		l.Bump()
		w, err := p.readWord()
		if err != nil {
			return nil, false, err
		}
		return &Assign{Name: name, Value: w}, true, nil
	}
	l.SetPos(start)
	return nil, false, nil
}

// arrayElems parses the words of an array literal up to the closing
// parenthesis; newlines are allowed between elements.
func (p *parser) arrayElems() ([]Word, error) {
	l := p.lex
	var elems []Word
	for {
		if err := p.skipLineSpace(); err != nil {
			return nil, err
		}
		if l.Eat(')') {
			return elems, nil
		}
		if l.EOF() {
			return nil, p.err("unterminated array literal")
		}
		w, err := p.readWord()
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, p.err("unexpected character in array literal")
		}
		elems = append(elems, *w)
	}
}

// redirect speculatively parses one redirection: an optional fd number,
// the operator, then the target word or heredoc delimiter. It restores
// the cursor and reports false when the position is not a redirect.
func (p *parser) redirect() (*Redirect, bool, error) {
	l := p.lex
	start := l.Pos()
	fd := -1
	if num := l.ReadNumber(); num != "" {
		if b := l.Peek(); b != '<' && b != '>' {
			l.SetPos(start)
			return nil, false, nil
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return nil, false, p.errAt(start, "invalid file descriptor number")
		}
		fd = n
	}

	var op RedirOp
	stripTabs := false
	switch {
	case fd < 0 && l.EatStr("&>>"):
		op = RedirAppendAll
	case fd < 0 && l.EatStr("&>"):
		op = RedirWriteAll
	case l.EatStr("<<<"):
		op = RedirHereString
	case l.EatStr("<<-"):
		op, stripTabs = RedirHeredoc, true
	case l.EatStr("<<"):
		op = RedirHeredoc
	case l.EatStr("<&"):
		op = RedirDupRead
	case l.EatStr("<>"):
		op = RedirReadWrite
	case l.Peek() == '<' && l.PeekAt(1) == '(':
		// process substitution, not a redirect
		l.SetPos(start)
		return nil, false, nil
	case l.Eat('<'):
		op = RedirRead
	case l.EatStr(">>"):
		op = RedirAppend
	case l.EatStr(">|"):
		op = RedirClobber
	case l.EatStr(">&"):
		op = RedirDupWrite
	case l.Peek() == '>' && l.PeekAt(1) == '(':
		l.SetPos(start)
		return nil, false, nil
	case l.Eat('>'):
		op = RedirWrite
	default:
		l.SetPos(start)
		return nil, false, nil
	}
	if fd < 0 {
		if op.readDirection() {
			fd = 0
		} else {
			fd = 1
		}
	}

	r := &Redirect{Op: op, Fd: fd, StripTabs: stripTabs}
	p.skipWS()
	if op == RedirHeredoc {
		delim, quoted, err := p.heredocDelim()
		if err != nil {
			return nil, false, err
		}
		p.heredocs = append(p.heredocs, &pendingHeredoc{redir: r, delim: delim, quoted: quoted})
		return r, true, nil
	}
	w, err := p.readWord()
	if err != nil {
		return nil, false, err
	}
	if w == nil {
		return nil, false, p.err("missing redirect target")
	}
	r.Word = w
	return r, true, nil
}

// heredocDelim reads the delimiter word of a heredoc and whether it was
// quoted; a quoted delimiter makes the body literal.
func (p *parser) heredocDelim() (string, bool, error) {
	l := p.lex
	switch l.Peek() {
	case '\'':
		l.Bump()
		s, err := l.ScanSQuote()
		return s, true, err
	case '"':
		l.Bump()
		start := l.Pos()
		for !l.EOF() && l.Peek() != '"' {
			l.Bump()
		}
		if l.EOF() {
			return "", false, p.err("unterminated double quote")
		}
		s := l.Slice(start)
		l.Bump()
		return s, true, nil
	default:
		start := l.Pos()
		for !isMeta(l.Peek()) && l.Peek() != '\'' && l.Peek() != '"' {
			l.Bump()
		}
		s := l.Slice(start)
		if s == "" {
			return "", false, p.err("missing heredoc delimiter")
		}
		return s, false, nil
	}
}
