// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package syntax

// The tree model is a closed set of node types. Nodes are immutable once
// built, and every field holding source text is a slice of the original
// input string; the input must outlive the tree.

// Cmd is one complete command, foreground or background. Start and End
// record the byte span of the command's and/or list in the source, so that
// src[Start:End] reproduces the text that produced it.
type Cmd struct {
	AndOr      AndOrList
	Background bool
	Start, End int
}

// AndOrList is a chain of pipelines connected by && and ||. Operator
// application order is recorded verbatim; short-circuit evaluation belongs
// to a downstream evaluator.
type AndOrList struct {
	First Pipeline
	Rest  []AndOr
}

// AndOr is one `&& pipeline` or `|| pipeline` link.
type AndOr struct {
	Op       AndOrOp
	Pipeline Pipeline
}

// Pipeline is one or more executables connected by |. Rest is nil in the
// common single-stage case, which therefore allocates no slice.
type Pipeline struct {
	Negated bool
	First   Executable
	Rest    []Executable
}

// Stages returns all executables of the pipeline in order.
func (p *Pipeline) Stages() []Executable {
	if p.Rest == nil {
		return []Executable{p.First}
	}
	return append([]Executable{p.First}, p.Rest...)
}

// Executable represents all nodes that can appear as a pipeline stage.
type Executable interface {
	execNode()
}

func (*SimpleCmd) execNode()   {}
func (*CompoundCmd) execNode() {}
func (*FuncDef) execNode()     {}

// SimpleCmd is an ordered prefix run of assignments and redirects followed
// by an ordered suffix run of words and redirects. Once the first suffix
// word is seen, later name=value tokens stay plain words.
type SimpleCmd struct {
	Prefix []CmdPrefix
	Suffix []CmdSuffix
}

// CmdPrefix represents the nodes legal in a simple command's prefix run.
type CmdPrefix interface {
	cmdPrefixNode()
}

func (*Assign) cmdPrefixNode()      {}
func (*ArrayAssign) cmdPrefixNode() {}
func (*Redirect) cmdPrefixNode()    {}

// CmdSuffix represents the nodes legal in a simple command's suffix run.
type CmdSuffix interface {
	cmdSuffixNode()
}

func (*Word) cmdSuffixNode()     {}
func (*Redirect) cmdSuffixNode() {}

// Assign is a scalar assignment `name=word`. Value is nil for `name=`.
type Assign struct {
	Name  string
	Value *Word
}

// ArrayAssign is `name=(words)`, or `name+=(words)` when Append is set.
type ArrayAssign struct {
	Name   string
	Append bool
	Elems  []Word
}

// CompoundCmd is a compound command plus the redirects attached to the
// construct as a whole.
type CompoundCmd struct {
	Kind      CompoundKind
	Redirects []*Redirect
}

// FuncDef is a `name() body` function definition.
type FuncDef struct {
	Name string
	Body *CompoundCmd
}

// CompoundKind represents the compound command variants.
type CompoundKind interface {
	compoundKindNode()
}

func (*ForClause) compoundKindNode()   {}
func (*CForClause) compoundKindNode()  {}
func (*WhileClause) compoundKindNode() {}
func (*IfClause) compoundKindNode()    {}
func (*CaseClause) compoundKindNode()  {}
func (*BraceGroup) compoundKindNode()  {}
func (*Subshell) compoundKindNode()    {}
func (*TestClause) compoundKindNode()  {}
func (*ArithCmd) compoundKindNode()    {}

// GuardBody pairs a condition command list with a body command list.
type GuardBody struct {
	Guard []*Cmd
	Body  []*Cmd
}

// ForClause is `for name [in words]; do body; done`. In distinguishes an
// absent word list (iterate the positional parameters) from an empty one.
type ForClause struct {
	Var   string
	In    bool
	Words []Word
	Body  []*Cmd
}

// CForClause is the C-style `for ((init; cond; step)); do body; done`.
// Each clause may be nil.
type CForClause struct {
	Init, Cond, Step ArithExpr
	Body             []*Cmd
}

// WhileClause is a while loop, or an until loop when Until is set. The
// guard is re-tested each iteration by the evaluator, not the parser.
type WhileClause struct {
	Until bool
	GuardBody
}

// IfClause holds the if and elif branches in order, plus an optional
// trailing else body.
type IfClause struct {
	Branches []GuardBody
	Else     []*Cmd
}

// CaseClause is `case word in arms... esac`. Arms keep their textual
// order: they are tried in order and the first matching pattern set wins.
type CaseClause struct {
	Word Word
	Arms []CaseArm
}

// CaseArm is one `pattern[|pattern...]) body ;;` arm.
type CaseArm struct {
	Patterns []Word
	Body     []*Cmd
}

// BraceGroup is `{ body; }`.
type BraceGroup struct {
	Body []*Cmd
}

// Subshell is `( body )`.
type Subshell struct {
	Body []*Cmd
}

// TestClause is `[[ body ]]`.
type TestClause struct {
	Body []*Cmd
}

// ArithCmd is `(( expr ))`.
type ArithCmd struct {
	X ArithExpr
}

// Word is a concatenation of adjacent parts with no intervening blank;
// the parts form a single shell word at evaluation time. Start and End
// record its byte span in the source.
type Word struct {
	Parts      []WordPart
	Start, End int
}

// WordPart represents all nodes that can form a word. Quoting context
// constrains which parts the parser produces: single-quoted content is one
// literal; double-quoted content keeps parameter and command substitution
// but suppresses glob and tilde parts.
type WordPart interface {
	wordPartNode()
}

func (*Lit) wordPartNode()             {}
func (*Escaped) wordPartNode()         {}
func (*SglQuoted) wordPartNode()       {}
func (*DblQuoted) wordPartNode()       {}
func (*Param) wordPartNode()           {}
func (*CmdSubst) wordPartNode()        {}
func (*ArithSubst) wordPartNode()      {}
func (*ParamSubst) wordPartNode()      {}
func (*LenSubst) wordPartNode()        {}
func (*IndirectSubst) wordPartNode()   {}
func (*PrefixListSubst) wordPartNode() {}
func (*TransformSubst) wordPartNode()  {}
func (*SubstringSubst) wordPartNode()  {}
func (*ArrayElemSubst) wordPartNode()  {}
func (*ArrayAllSubst) wordPartNode()   {}
func (*ArrayLenSubst) wordPartNode()   {}
func (*ArraySliceSubst) wordPartNode() {}
func (*Wildcard) wordPartNode()        {}
func (*Tilde) wordPartNode()           {}
func (*ProcSubst) wordPartNode()       {}
func (*AnsiCQuoted) wordPartNode()     {}
func (*BraceRange) wordPartNode()      {}

// Lit is a run of literal text, borrowed from the source.
type Lit struct {
	Value string
}

// Escaped is a single backslash-escaped character, with the backslash
// removed.
type Escaped struct {
	Value string
}

// SglQuoted is the raw content of a single-quoted string; no byte inside
// has any special meaning.
type SglQuoted struct {
	Value string
}

// DblQuoted is the part sequence between double quotes.
type DblQuoted struct {
	Parts []WordPart
}

// Param is a parameter reference: a named variable, a positional index, or
// one of the special parameters.
type Param struct {
	Kind  ParamKind
	Name  string // ParamNamed
	Index int    // ParamPositional
}

// CmdSubst is `$(stmts)` or a backquoted command substitution.
type CmdSubst struct {
	Stmts []*Cmd
}

// ArithSubst is `$((expr))`. X is nil for the empty `$(( ))`.
type ArithSubst struct {
	X ArithExpr
}

// ParamSubst is a parameter substitution whose variant is identified by a
// single operator: default/assign/error/alternate values, prefix/suffix
// trims, replaces, and case conversion. Word is the operand (nil when
// absent); With is the replacement for the replace variants.
type ParamSubst struct {
	Op    SubstOp
	Param Param
	Word  *Word
	With  *Word
}

// LenSubst is `${#param}`.
type LenSubst struct {
	Param Param
}

// IndirectSubst is `${!name}`.
type IndirectSubst struct {
	Name string
}

// PrefixListSubst is `${!prefix*}` or `${!prefix@}`.
type PrefixListSubst struct {
	Prefix string
}

// TransformSubst is `${name@op}`, e.g. `${v@Q}`.
type TransformSubst struct {
	Name string
	Op   byte
}

// SubstringSubst is `${param:offset[:length]}`. Offset and Length keep the
// raw source text; Length is empty when absent.
type SubstringSubst struct {
	Param  Param
	Offset string
	Length string
}

// ArrayElemSubst is `${name[index]}`. The index is a word so that
// arithmetic and other substitutions can appear in it.
type ArrayElemSubst struct {
	Name  string
	Index Word
}

// ArrayAllSubst is `${name[@]}` or `${name[*]}`.
type ArrayAllSubst struct {
	Name string
}

// ArrayLenSubst is `${#name[@]}` or `${#name[*]}`.
type ArrayLenSubst struct {
	Name string
}

// ArraySliceSubst is `${name[@]:offset[:length]}`.
type ArraySliceSubst struct {
	Name   string
	Offset string
	Length string
}

// Wildcard is an unquoted glob metacharacter: '*', '?', '[' or ']'.
type Wildcard struct {
	Op byte
}

// Tilde is an unquoted `~`.
type Tilde struct{}

// ProcSubst is a process substitution, `<(stmts)` or `>(stmts)`; Op holds
// the direction byte.
type ProcSubst struct {
	Op    byte
	Stmts []*Cmd
}

// AnsiCQuoted is `$'...'`. Value is the raw content between the quotes;
// escape sequences are resolved by a later stage, not the parser.
type AnsiCQuoted struct {
	Value string
}

// BraceRange is `{start..end}` or `{start..end..step}`; Step is empty
// when absent.
type BraceRange struct {
	Start, End, Step string
}

// ArithExpr represents all nodes that form arithmetic expressions.
type ArithExpr interface {
	arithNode()
}

func (*ArithLit) arithNode()     {}
func (*ArithVar) arithNode()     {}
func (*ArithBinary) arithNode()  {}
func (*ArithUnary) arithNode()   {}
func (*ArithIncDec) arithNode()  {}
func (*ArithTernary) arithNode() {}
func (*ArithAssign) arithNode()  {}

// ArithLit is an integer literal.
type ArithLit struct {
	Value int64
}

// ArithVar is a variable reference, with or without a leading $.
type ArithVar struct {
	Name string
}

// ArithBinary is a binary expression.
type ArithBinary struct {
	Op   ArithOp
	X, Y ArithExpr
}

// ArithUnary is a prefix +, -, ! or ~ expression.
type ArithUnary struct {
	Op ArithOp
	X  ArithExpr
}

// ArithIncDec is ++ or -- applied to a bare name, before or after it.
type ArithIncDec struct {
	Name string
	Dec  bool
	Post bool
}

// ArithTernary is `cond ? then : else`.
type ArithTernary struct {
	Cond, Then, Else ArithExpr
}

// ArithAssign is `name = expr`; it associates to the right.
type ArithAssign struct {
	Name string
	X    ArithExpr
}

// HeredocBody is the collected body of a heredoc. A quoted delimiter
// yields a literal body in Raw; an unquoted one yields interpolated Parts.
// For <<- redirects the parser strips leading tabs only when matching the
// terminator line; body lines keep their tabs for the consumer.
type HeredocBody struct {
	Literal bool
	Raw     string
	Parts   []WordPart
}

// Redirect is a single redirection. Fd is the explicit file descriptor
// number, or the operator's default when none was given: 0 for the
// read-direction operators, 1 for the write-direction ones. Word is the
// target (nil for heredocs); Heredoc is filled once the body lines have
// been collected at the end of the logical line.
type Redirect struct {
	Op        RedirOp
	Fd        int
	Word      *Word
	StripTabs bool
	Heredoc   *HeredocBody
}
