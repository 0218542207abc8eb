// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package syntax

import (
	"errors"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
)

func parseProgram(t *testing.T, src string) []*Cmd {
	t.Helper()
	cmds, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return cmds
}

func parseOne(t *testing.T, src string) *Cmd {
	t.Helper()
	cmds := parseProgram(t, src)
	if len(cmds) != 1 {
		t.Fatalf("Parse(%q): want 1 command, got %d", src, len(cmds))
	}
	return cmds[0]
}

// firstExec unwraps a command with no and/or links and no pipe stages.
func firstExec(t *testing.T, src string) Executable {
	t.Helper()
	c := parseOne(t, src)
	if len(c.AndOr.Rest) != 0 {
		t.Fatalf("Parse(%q): unexpected and/or links", src)
	}
	pl := c.AndOr.First
	if len(pl.Rest) != 0 {
		t.Fatalf("Parse(%q): unexpected pipe stages", src)
	}
	return pl.First
}

func firstSimple(t *testing.T, src string) *SimpleCmd {
	t.Helper()
	sc, ok := firstExec(t, src).(*SimpleCmd)
	if !ok {
		t.Fatalf("Parse(%q): not a simple command", src)
	}
	return sc
}

// suffixWords returns the source text of each word in a simple command's
// suffix, using the recorded byte spans.
func suffixWords(src string, sc *SimpleCmd) []string {
	var out []string
	for _, s := range sc.Suffix {
		if w, ok := s.(*Word); ok {
			out = append(out, src[w.Start:w.End])
		}
	}
	return out
}

// argPart digs out the sole word part of the command's second suffix word.
func argPart(t *testing.T, src string) WordPart {
	t.Helper()
	sc := firstSimple(t, src)
	if len(sc.Suffix) != 2 {
		t.Fatalf("Parse(%q): want 2 suffix words, got %d", src, len(sc.Suffix))
	}
	w := sc.Suffix[1].(*Word)
	if len(w.Parts) != 1 {
		t.Fatalf("Parse(%q): want 1 word part, got %d", src, len(w.Parts))
	}
	return w.Parts[0]
}

func TestParseSimpleCmd(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "echo hello world"
	sc := firstSimple(t, src)
	c.Assert(suffixWords(src, sc), qt.DeepEquals, []string{"echo", "hello", "world"})
	c.Assert(sc.Prefix, qt.HasLen, 0)
}

func TestParseSequenceAndBackground(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cmds := parseProgram(t, "a; b\nc &\nd")
	c.Assert(cmds, qt.HasLen, 4)
	c.Assert(cmds[0].Background, qt.IsFalse)
	c.Assert(cmds[2].Background, qt.IsTrue)
}

func TestWordSpansRoundTrip(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	for _, word := range []string{
		"plain",
		"'sq text'",
		`"a $b c"`,
		"${v:-fallback}",
		"$(date +%s)",
		"pre${v}post",
		"$'ansi\\n'",
		"{1..9..2}",
		"a\\ b",
	} {
		src := "echo " + word
		sc := firstSimple(t, src)
		w := sc.Suffix[1].(*Word)
		c.Assert(src[w.Start:w.End], qt.Equals, word, qt.Commentf("word %q", word))
	}
}

func TestCmdSpans(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "echo one;  echo two && echo three\necho four"
	cmds := parseProgram(t, src)
	c.Assert(cmds, qt.HasLen, 3)
	c.Assert(src[cmds[0].Start:cmds[0].End], qt.Equals, "echo one")
	c.Assert(src[cmds[1].Start:cmds[1].End], qt.Equals, "echo two && echo three")
	c.Assert(src[cmds[2].Start:cmds[2].End], qt.Equals, "echo four")
}

func TestQuotedKeywordIsNotKeyword(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	// quoting strips keyword status at a command-start position
	sc, ok := firstExec(t, `"if" true`).(*SimpleCmd)
	c.Assert(ok, qt.IsTrue)
	c.Assert(sc.Suffix, qt.HasLen, 2)

	// keyword text in argument position is a plain word
	src := "echo if fi done"
	c.Assert(suffixWords(src, firstSimple(t, src)), qt.DeepEquals,
		[]string{"echo", "if", "fi", "done"})
}

func TestPipeline(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cmd := parseOne(t, "a | b | c")
	pl := cmd.AndOr.First
	c.Assert(pl.Rest, qt.HasLen, 2)
	c.Assert(pl.Stages(), qt.HasLen, 3)
	c.Assert(pl.Negated, qt.IsFalse)

	// a single command collapses to a bare stage
	pl = parseOne(t, "a").AndOr.First
	c.Assert(pl.Rest, qt.HasLen, 0)
	c.Assert(pl.Stages(), qt.HasLen, 1)

	pl = parseOne(t, "! grep -q x f").AndOr.First
	c.Assert(pl.Negated, qt.IsTrue)

	// a pipe may be followed by a line break
	pl = parseOne(t, "a |\n  b").AndOr.First
	c.Assert(pl.Rest, qt.HasLen, 1)
}

func TestAndOrList(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	list := parseOne(t, "a && b || c && d").AndOr
	c.Assert(list.Rest, qt.HasLen, 3)
	c.Assert(list.Rest[0].Op, qt.Equals, AndOp)
	c.Assert(list.Rest[1].Op, qt.Equals, OrOp)
	c.Assert(list.Rest[2].Op, qt.Equals, AndOp)
}

func TestParamSubstOperatorGreediness(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		src  string
		op   SubstOp
		word string
	}{
		{"echo ${v:-x}", SubstDefault, "x"},
		{"echo ${v-w}", SubstDefault, "w"},
		{"echo ${v:=d}", SubstAssign, "d"},
		{"echo ${v:?msg}", SubstError, "msg"},
		{"echo ${v:+alt}", SubstAlt, "alt"},
		{"echo ${v#p}", SubstTrimPrefixShort, "p"},
		{"echo ${v##p}", SubstTrimPrefixLong, "p"},
		{"echo ${v%s}", SubstTrimSuffixShort, "s"},
		{"echo ${v%%s}", SubstTrimSuffixLong, "s"},
		{"echo ${v^}", SubstUpperFirst, ""},
		{"echo ${v^^}", SubstUpperAll, ""},
		{"echo ${v,}", SubstLowerFirst, ""},
		{"echo ${v,,}", SubstLowerAll, ""},
	} {
		c := qt.New(t)
		ps, ok := argPart(t, tc.src).(*ParamSubst)
		c.Assert(ok, qt.IsTrue, qt.Commentf("input %q", tc.src))
		c.Assert(ps.Op, qt.Equals, tc.op, qt.Commentf("input %q", tc.src))
		if tc.word == "" {
			c.Assert(ps.Word, qt.IsNil)
		} else {
			lit := ps.Word.Parts[0].(*Lit)
			c.Assert(lit.Value, qt.Equals, tc.word)
		}
	}
}

func TestParamSubstOperandKeepsBlanks(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	// inside braces blanks lose their word-splitting role
	ps := argPart(t, "echo ${v:-a b}").(*ParamSubst)
	c.Assert(ps.Word.Parts[0].(*Lit).Value, qt.Equals, "a b")
}

func TestParamSubstReplace(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	ps := argPart(t, "echo ${path//:/ }").(*ParamSubst)
	c.Assert(ps.Op, qt.Equals, SubstReplaceAll)
	c.Assert(ps.Word.Parts[0].(*Lit).Value, qt.Equals, ":")
	c.Assert(ps.With.Parts[0].(*Lit).Value, qt.Equals, " ")

	ps = argPart(t, "echo ${v/pat}").(*ParamSubst)
	c.Assert(ps.Op, qt.Equals, SubstReplace)
	c.Assert(ps.With, qt.IsNil)

	ps = argPart(t, "echo ${v/#pre/x}").(*ParamSubst)
	c.Assert(ps.Op, qt.Equals, SubstReplacePrefix)
}

func TestSubstringSubst(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	ss := argPart(t, "echo ${v:2:3}").(*SubstringSubst)
	c.Assert(ss.Offset, qt.Equals, "2")
	c.Assert(ss.Length, qt.Equals, "3")

	ss = argPart(t, "echo ${v:5}").(*SubstringSubst)
	c.Assert(ss.Offset, qt.Equals, "5")
	c.Assert(ss.Length, qt.Equals, "")

	// a space keeps the negative offset from reading as ${v:-...}
	ss = argPart(t, "echo ${v: -4}").(*SubstringSubst)
	c.Assert(ss.Offset, qt.Equals, "-4")
}

func TestArraySubsts(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	_, ok := argPart(t, "echo ${a[@]}").(*ArrayAllSubst)
	c.Assert(ok, qt.IsTrue)

	al := argPart(t, "echo ${#a[@]}").(*ArrayLenSubst)
	c.Assert(al.Name, qt.Equals, "a")

	ae := argPart(t, "echo ${a[i]}").(*ArrayElemSubst)
	c.Assert(ae.Name, qt.Equals, "a")
	c.Assert(ae.Index.Parts[0].(*Lit).Value, qt.Equals, "i")

	as := argPart(t, "echo ${a[@]:1:2}").(*ArraySliceSubst)
	c.Assert(as.Offset, qt.Equals, "1")
	c.Assert(as.Length, qt.Equals, "2")
}

func TestSpecialSubsts(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	ls := argPart(t, "echo ${#v}").(*LenSubst)
	c.Assert(ls.Param.Name, qt.Equals, "v")

	is := argPart(t, "echo ${!ref}").(*IndirectSubst)
	c.Assert(is.Name, qt.Equals, "ref")

	pl := argPart(t, "echo ${!PRE*}").(*PrefixListSubst)
	c.Assert(pl.Prefix, qt.Equals, "PRE")

	ts := argPart(t, "echo ${v@Q}").(*TransformSubst)
	c.Assert(ts.Op, qt.Equals, byte('Q'))

	prm := argPart(t, "echo ${11}").(*Param)
	c.Assert(prm.Kind, qt.Equals, ParamPositional)
	c.Assert(prm.Index, qt.Equals, 11)
}

func TestBareParams(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		src  string
		kind ParamKind
	}{
		{"echo $name", ParamNamed},
		{"echo $1", ParamPositional},
		{"echo $@", ParamAt},
		{"echo $*", ParamStar},
		{"echo $#", ParamPound},
		{"echo $?", ParamStatus},
		{"echo $$", ParamPid},
		{"echo $!", ParamBang},
		{"echo $-", ParamDash},
	} {
		c := qt.New(t)
		prm, ok := argPart(t, tc.src).(*Param)
		c.Assert(ok, qt.IsTrue, qt.Commentf("input %q", tc.src))
		c.Assert(prm.Kind, qt.Equals, tc.kind, qt.Commentf("input %q", tc.src))
	}
}

func TestBareParamPositionalIsSingleDigit(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	// $10 is $1 followed by a literal 0; only ${10} reaches the tenth
	sc := firstSimple(t, "echo $10")
	w := sc.Suffix[1].(*Word)
	c.Assert(w.Parts, qt.HasLen, 2)
	c.Assert(w.Parts[0].(*Param).Index, qt.Equals, 1)
	c.Assert(w.Parts[1].(*Lit).Value, qt.Equals, "0")
}

func TestCmdSubst(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cs := argPart(t, "echo $(date +%s)").(*CmdSubst)
	c.Assert(cs.Stmts, qt.HasLen, 1)

	cs = argPart(t, "echo `uname -r`").(*CmdSubst)
	c.Assert(cs.Stmts, qt.HasLen, 1)

	// inside backquotes an unescaped backquote terminates
	sc := firstSimple(t, "echo `echo a` b")
	c.Assert(sc.Suffix, qt.HasLen, 3)
}

func TestDblQuoted(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	dq := argPart(t, `echo "a $b c"`).(*DblQuoted)
	c.Assert(dq.Parts, qt.HasLen, 3)
	c.Assert(dq.Parts[0].(*Lit).Value, qt.Equals, "a ")
	c.Assert(dq.Parts[1].(*Param).Name, qt.Equals, "b")
	c.Assert(dq.Parts[2].(*Lit).Value, qt.Equals, " c")

	dq = argPart(t, `echo "\$x"`).(*DblQuoted)
	c.Assert(dq.Parts[0].(*Escaped).Value, qt.Equals, "$")

	// a backslash before an ordinary byte stays literal
	dq = argPart(t, `echo "\a"`).(*DblQuoted)
	c.Assert(dq.Parts[0].(*Lit).Value, qt.Equals, `\`)
	c.Assert(dq.Parts[1].(*Lit).Value, qt.Equals, "a")
}

func TestQuotingAtoms(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sq := argPart(t, `echo 'no $expansion'`).(*SglQuoted)
	c.Assert(sq.Value, qt.Equals, "no $expansion")

	ac := argPart(t, `echo $'tab\there'`).(*AnsiCQuoted)
	c.Assert(ac.Value, qt.Equals, `tab\there`)

	esc := argPart(t, `echo \;`).(*Escaped)
	c.Assert(esc.Value, qt.Equals, ";")
}

func TestGlobAndTildeAtoms(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sc := firstSimple(t, "ls ~/src/*.go")
	w := sc.Suffix[1].(*Word)
	_, ok := w.Parts[0].(*Tilde)
	c.Assert(ok, qt.IsTrue)
	var stars int
	for _, part := range w.Parts {
		if wc, ok := part.(*Wildcard); ok && wc.Op == '*' {
			stars++
		}
	}
	c.Assert(stars, qt.Equals, 1)
}

func TestBraceRange(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	br := argPart(t, "echo {1..5}").(*BraceRange)
	c.Assert(br, qt.CmpEquals(), &BraceRange{Start: "1", End: "5"})

	br = argPart(t, "echo {a..z..2}").(*BraceRange)
	c.Assert(br.Step, qt.Equals, "2")

	// braces that do not form a range stay literal
	sc := firstSimple(t, "echo {x}")
	w := sc.Suffix[1].(*Word)
	c.Assert(w.Parts[0].(*Lit).Value, qt.Equals, "{x}")
}

func TestProcSubst(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sc := firstSimple(t, "diff <(sort a) <(sort b)")
	c.Assert(sc.Suffix, qt.HasLen, 3)
	ps := sc.Suffix[1].(*Word).Parts[0].(*ProcSubst)
	c.Assert(ps.Op, qt.Equals, byte('<'))
	c.Assert(ps.Stmts, qt.HasLen, 1)

	sc = firstSimple(t, "tee >(wc -l) </dev/null")
	ps = sc.Suffix[1].(*Word).Parts[0].(*ProcSubst)
	c.Assert(ps.Op, qt.Equals, byte('>'))
}

func TestRedirects(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sc := firstSimple(t, "cmd <in >out 2>&1")
	var redirs []*Redirect
	for _, s := range sc.Suffix {
		if r, ok := s.(*Redirect); ok {
			redirs = append(redirs, r)
		}
	}
	c.Assert(redirs, qt.HasLen, 3)
	c.Assert(redirs[0].Op, qt.Equals, RedirRead)
	c.Assert(redirs[0].Fd, qt.Equals, 0)
	c.Assert(redirs[1].Op, qt.Equals, RedirWrite)
	c.Assert(redirs[1].Fd, qt.Equals, 1)
	c.Assert(redirs[2].Op, qt.Equals, RedirDupWrite)
	c.Assert(redirs[2].Fd, qt.Equals, 2)

	sc = firstSimple(t, ">all &>>log cmd")
	c.Assert(sc.Prefix, qt.HasLen, 2)
	c.Assert(sc.Prefix[1].(*Redirect).Op, qt.Equals, RedirAppendAll)

	sc = firstSimple(t, "cmd <<<word")
	r := sc.Suffix[1].(*Redirect)
	c.Assert(r.Op, qt.Equals, RedirHereString)
	c.Assert(r.Fd, qt.Equals, 0)
}

func TestNumberedWordIsNotRedirect(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "echo 42 x"
	c.Assert(suffixWords(src, firstSimple(t, src)), qt.DeepEquals,
		[]string{"echo", "42", "x"})
}

func TestHeredocsCollectInOrder(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "cat <<A <<B\none\nA\ntwo\nB\necho done\n"
	cmds := parseProgram(t, src)
	c.Assert(cmds, qt.HasLen, 2)

	sc := cmds[0].AndOr.First.First.(*SimpleCmd)
	var redirs []*Redirect
	for _, s := range sc.Suffix {
		if r, ok := s.(*Redirect); ok {
			redirs = append(redirs, r)
		}
	}
	c.Assert(redirs, qt.HasLen, 2)
	c.Assert(redirs[0].Heredoc, qt.IsNotNil)
	c.Assert(redirs[0].Heredoc.Parts[0].(*Lit).Value, qt.Equals, "one\n")
	c.Assert(redirs[1].Heredoc.Parts[0].(*Lit).Value, qt.Equals, "two\n")
}

func TestHeredocQuotedDelimiter(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sc := firstSimple(t, "cat <<'EOF'\n$not_expanded\nEOF\n")
	r := sc.Suffix[1].(*Redirect)
	c.Assert(r.Heredoc.Literal, qt.IsTrue)
	c.Assert(r.Heredoc.Raw, qt.Equals, "$not_expanded\n")
}

func TestHeredocInterpolation(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sc := firstSimple(t, "cat <<EOF\nhi $name!\nEOF\n")
	hd := sc.Suffix[1].(*Redirect).Heredoc
	c.Assert(hd.Literal, qt.IsFalse)
	c.Assert(hd.Parts, qt.HasLen, 3)
	c.Assert(hd.Parts[0].(*Lit).Value, qt.Equals, "hi ")
	c.Assert(hd.Parts[1].(*Param).Name, qt.Equals, "name")
	c.Assert(hd.Parts[2].(*Lit).Value, qt.Equals, "!\n")
}

func TestHeredocDashStripsTabsForDelimiterOnly(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sc := firstSimple(t, "cat <<-EOF\n\tindented\n\tEOF\n")
	r := sc.Suffix[1].(*Redirect)
	c.Assert(r.StripTabs, qt.IsTrue)
	// body lines keep their tabs; only the terminator match strips them
	c.Assert(r.Heredoc.Parts[0].(*Lit).Value, qt.Equals, "\tindented\n")
}

func TestHeredocAtEndOfInput(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	// end of input counts as the final newline: an operator with no body
	// after it is unterminated, never a success with a nil Heredoc
	for _, src := range []string{"cat <<EOF", "cat <<EOF &", "cat <<EOF; x"} {
		cmds, err := Parse(src)
		c.Assert(cmds, qt.IsNil, qt.Commentf("input %q", src))
		var perr *ParseError
		c.Assert(errors.As(err, &perr), qt.IsTrue, qt.Commentf("input %q", src))
		c.Assert(perr.Msg, qt.Equals, "unterminated heredoc")
	}

	// a body terminated exactly at EOF still collects
	sc := firstSimple(t, "cat <<EOF\nlast\nEOF")
	r := sc.Suffix[1].(*Redirect)
	c.Assert(r.Heredoc, qt.IsNotNil)
	c.Assert(r.Heredoc.Parts[0].(*Lit).Value, qt.Equals, "last\n")
}

func TestAssignments(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "FOO=bar EMPTY= cmd arg"
	sc := firstSimple(t, src)
	c.Assert(sc.Prefix, qt.HasLen, 2)
	a := sc.Prefix[0].(*Assign)
	c.Assert(a.Name, qt.Equals, "FOO")
	c.Assert(src[a.Value.Start:a.Value.End], qt.Equals, "bar")
	c.Assert(sc.Prefix[1].(*Assign).Value, qt.IsNil)
	c.Assert(suffixWords(src, sc), qt.DeepEquals, []string{"cmd", "arg"})

	// assignments after the command name are plain words
	src = "cmd FOO=bar"
	c.Assert(suffixWords(src, firstSimple(t, src)), qt.DeepEquals,
		[]string{"cmd", "FOO=bar"})
}

func TestArrayAssignments(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	sc := firstSimple(t, "a=(1 2 3) cmd")
	aa := sc.Prefix[0].(*ArrayAssign)
	c.Assert(aa.Name, qt.Equals, "a")
	c.Assert(aa.Append, qt.IsFalse)
	c.Assert(aa.Elems, qt.HasLen, 3)

	sc = firstSimple(t, "a+=(4\n 5) cmd")
	aa = sc.Prefix[0].(*ArrayAssign)
	c.Assert(aa.Append, qt.IsTrue)
	c.Assert(aa.Elems, qt.HasLen, 2)
}

func TestIfClause(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cc := firstExec(t, "if a; then b; elif c; then d; else e; fi").(*CompoundCmd)
	ic := cc.Kind.(*IfClause)
	c.Assert(ic.Branches, qt.HasLen, 2)
	c.Assert(ic.Else, qt.HasLen, 1)
}

func TestLoops(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cc := firstExec(t, "for x in a b c; do echo $x; done").(*CompoundCmd)
	fc := cc.Kind.(*ForClause)
	c.Assert(fc.Var, qt.Equals, "x")
	c.Assert(fc.In, qt.IsTrue)
	c.Assert(fc.Words, qt.HasLen, 3)
	c.Assert(fc.Body, qt.HasLen, 1)

	// without `in`, the loop iterates the positional parameters
	cc = firstExec(t, "for x; do echo; done").(*CompoundCmd)
	c.Assert(cc.Kind.(*ForClause).In, qt.IsFalse)

	cc = firstExec(t, "while read l; do echo $l; done").(*CompoundCmd)
	c.Assert(cc.Kind.(*WhileClause).Until, qt.IsFalse)

	cc = firstExec(t, "until flaky; do sleep 1; done").(*CompoundCmd)
	c.Assert(cc.Kind.(*WhileClause).Until, qt.IsTrue)
}

func TestCForClause(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cc := firstExec(t, "for ((i=0; i<5; i++)); do echo; done").(*CompoundCmd)
	fc := cc.Kind.(*CForClause)
	c.Assert(fc.Init, qt.IsNotNil)
	c.Assert(fc.Cond, qt.IsNotNil)
	c.Assert(fc.Step, qt.IsNotNil)

	cc = firstExec(t, "for ((;;)); do break; done").(*CompoundCmd)
	fc = cc.Kind.(*CForClause)
	c.Assert(fc.Init, qt.IsNil)
	c.Assert(fc.Cond, qt.IsNil)
	c.Assert(fc.Step, qt.IsNil)
}

func TestCaseClause(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "case $x in a) echo 1;; b|c) echo 2;; *) echo 3;; esac"
	cc := firstExec(t, src).(*CompoundCmd)
	kase := cc.Kind.(*CaseClause)
	c.Assert(kase.Arms, qt.HasLen, 3)
	// arms keep their textual order
	c.Assert(src[kase.Arms[0].Patterns[0].Start:kase.Arms[0].Patterns[0].End], qt.Equals, "a")
	c.Assert(kase.Arms[1].Patterns, qt.HasLen, 2)
	c.Assert(kase.Arms[2].Body, qt.HasLen, 1)

	// the last arm may omit ;; and patterns may open with (
	cc = firstExec(t, "case $x in (a) echo 1 ;; b) echo 2 ;\nesac").(*CompoundCmd)
	c.Assert(cc.Kind.(*CaseClause).Arms, qt.HasLen, 2)
}

func TestGroupsAndSubshell(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cc := firstExec(t, "{ echo a; echo b; }").(*CompoundCmd)
	c.Assert(cc.Kind.(*BraceGroup).Body, qt.HasLen, 2)

	cc = firstExec(t, "(cd /tmp && ls)").(*CompoundCmd)
	c.Assert(cc.Kind.(*Subshell).Body, qt.HasLen, 1)
}

func TestTestClause(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cc := firstExec(t, "[[ -n $x ]]").(*CompoundCmd)
	c.Assert(cc.Kind.(*TestClause).Body, qt.HasLen, 1)
}

func TestArithCmdAndSubst(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cc := firstExec(t, "(( x > 1 ))").(*CompoundCmd)
	ac := cc.Kind.(*ArithCmd)
	c.Assert(ac.X.(*ArithBinary).Op, qt.Equals, GtOp)

	as := argPart(t, "echo $((n + 1))").(*ArithSubst)
	c.Assert(as.X.(*ArithBinary).Op, qt.Equals, AddOp)

	as = argPart(t, "echo $(( ))").(*ArithSubst)
	c.Assert(as.X, qt.IsNil)
}

func TestFuncDef(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	fd := firstExec(t, "greet() { echo hi; }").(*FuncDef)
	c.Assert(fd.Name, qt.Equals, "greet")
	_, ok := fd.Body.Kind.(*BraceGroup)
	c.Assert(ok, qt.IsTrue)

	fd = firstExec(t, "isolated() (umask 077; touch f)").(*FuncDef)
	_, ok = fd.Body.Kind.(*Subshell)
	c.Assert(ok, qt.IsTrue)
}

func TestCompoundRedirects(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cc := firstExec(t, "if a; then b; fi >log 2>&1").(*CompoundCmd)
	c.Assert(cc.Redirects, qt.HasLen, 2)
	c.Assert(cc.Redirects[0].Op, qt.Equals, RedirWrite)
	c.Assert(cc.Redirects[1].Op, qt.Equals, RedirDupWrite)
}

func TestComments(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "echo a # trailing\n# full line\necho b"
	cmds := parseProgram(t, src)
	c.Assert(cmds, qt.HasLen, 2)
	sc := cmds[0].AndOr.First.First.(*SimpleCmd)
	c.Assert(suffixWords(src, sc), qt.DeepEquals, []string{"echo", "a"})

	// a # inside a word is not a comment
	src = "echo a#b"
	c.Assert(suffixWords(src, firstSimple(t, src)), qt.DeepEquals, []string{"echo", "a#b"})
}

func TestLineContinuation(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "echo one \\\n two"
	c.Assert(suffixWords(src, firstSimple(t, src)), qt.DeepEquals,
		[]string{"echo", "one", "two"})
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		src string
		msg string
	}{
		{"if true; then echo; ", "missing `fi'"},
		{"echo 'unclosed", "unterminated single quote"},
		{`echo "unclosed`, "unterminated double quote"},
		{"echo $(date", "missing `)' in command substitution"},
		{"echo ${v", "malformed parameter substitution"},
		{"echo ${v:-x", "missing `}' in parameter substitution"},
		{"cat <<EOF\nbody", "unterminated heredoc"},
		{"cat <<EOF", "unterminated heredoc"},
		{"cat <<EOF &", "unterminated heredoc"},
		{"echo a )", "unexpected character after command"},
		{"a; ;", "expected a command"},
		{"a | | b", "expected a command"},
		{"while x; do done", "missing loop body"},
		{"case x in", "missing `esac'"},
		{"f() echo", "function body must be a compound command"},
		{"cmd >", "missing redirect target"},
	} {
		c := qt.New(t)
		_, err := Parse(tc.src)
		c.Assert(err, qt.IsNotNil, qt.Commentf("input %q", tc.src))
		var perr *ParseError
		c.Assert(errors.As(err, &perr), qt.IsTrue)
		c.Assert(perr.Msg, qt.Equals, tc.msg, qt.Commentf("input %q", tc.src))
		c.Assert(perr.Offset >= 0 && perr.Offset <= len(tc.src), qt.IsTrue)
	}
}

func TestErrorOffsetPointsAtViolation(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	src := "echo ok; echo 'oops"
	_, err := Parse(src)
	var perr *ParseError
	c.Assert(errors.As(err, &perr), qt.IsTrue)
	c.Assert(perr.Offset, qt.Equals, len(src))
	c.Assert(err.Error(), qt.Equals,
		"parse error at byte 19: unterminated single quote")
}

func TestNestingBound(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	deep := "echo " + strings.Repeat("$(", 100) + "true" + strings.Repeat(")", 100)
	_, err := Parse(deep)
	var perr *ParseError
	c.Assert(errors.As(err, &perr), qt.IsTrue)
	c.Assert(perr.Msg, qt.Equals, "nesting too deep")

	// the same shape within the bound parses fine
	ok := "echo " + strings.Repeat("$(", 20) + "true" + strings.Repeat(")", 20)
	_, err = Parse(ok)
	c.Assert(err, qt.IsNil)
}

func TestNoPartialTreeOnError(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	cmds, err := Parse("echo fine; echo 'broken")
	c.Assert(err, qt.IsNotNil)
	c.Assert(cmds, qt.IsNil)
}

func TestParseTreeShape(t *testing.T) {
	t.Parallel()

	src := "x=1 echo -n val >out"
	got := firstSimple(t, src)
	want := &SimpleCmd{
		Prefix: []CmdPrefix{
			&Assign{Name: "x", Value: &Word{
				Parts: []WordPart{&Lit{Value: "1"}},
				Start: 2, End: 3,
			}},
		},
		Suffix: []CmdSuffix{
			&Word{Parts: []WordPart{&Lit{Value: "echo"}}, Start: 4, End: 8},
			&Word{Parts: []WordPart{&Lit{Value: "-n"}}, Start: 9, End: 11},
			&Word{Parts: []WordPart{&Lit{Value: "val"}}, Start: 12, End: 15},
			&Redirect{Op: RedirWrite, Fd: 1, Word: &Word{
				Parts: []WordPart{&Lit{Value: "out"}},
				Start: 17, End: 20,
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentParses(t *testing.T) {
	t.Parallel()

	src := "for f in *.log; do grep -c err $f || true; done"
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := Parse(src)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
