// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package syntax

// AndOrOp is a conditional execution operator.
type AndOrOp uint8

const (
	AndOp AndOrOp = iota // &&
	OrOp                 // ||
)

func (o AndOrOp) String() string {
	if o == AndOp {
		return "&&"
	}
	return "||"
}

// ParamKind identifies a parameter reference.
type ParamKind uint8

const (
	ParamNamed      ParamKind = iota // $name
	ParamPositional                  // $0 .. $N
	ParamAt                          // $@
	ParamStar                        // $*
	ParamPound                       // $#
	ParamStatus                      // $?
	ParamPid                         // $$
	ParamBang                        // $!
	ParamDash                        // $-
)

// RedirOp is a redirection operator.
type RedirOp uint8

const (
	RedirRead       RedirOp = iota // <
	RedirWrite                     // >
	RedirAppend                    // >>
	RedirReadWrite                 // <>
	RedirClobber                   // >|
	RedirDupRead                   // <&
	RedirDupWrite                  // >&
	RedirHereString                // <<<
	RedirHeredoc                   // << and <<-
	RedirWriteAll                  // &>
	RedirAppendAll                 // &>>
)

func (o RedirOp) String() string {
	switch o {
	case RedirRead:
		return "<"
	case RedirWrite:
		return ">"
	case RedirAppend:
		return ">>"
	case RedirReadWrite:
		return "<>"
	case RedirClobber:
		return ">|"
	case RedirDupRead:
		return "<&"
	case RedirDupWrite:
		return ">&"
	case RedirHereString:
		return "<<<"
	case RedirHeredoc:
		return "<<"
	case RedirWriteAll:
		return "&>"
	case RedirAppendAll:
		return "&>>"
	}
	return "<invalid redirect>"
}

// readDirection reports whether the operator reads from its target, which
// decides the default file descriptor.
func (o RedirOp) readDirection() bool {
	switch o {
	case RedirRead, RedirReadWrite, RedirDupRead, RedirHereString, RedirHeredoc:
		return true
	}
	return false
}

// SubstOp identifies a ParamSubst variant.
type SubstOp uint8

const (
	SubstDefault         SubstOp = iota // ${v:-w} and ${v-w}
	SubstAssign                         // ${v:=w} and ${v=w}
	SubstError                          // ${v:?w} and ${v?w}
	SubstAlt                            // ${v:+w} and ${v+w}
	SubstTrimPrefixShort                // ${v#pat}
	SubstTrimPrefixLong                 // ${v##pat}
	SubstTrimSuffixShort                // ${v%pat}
	SubstTrimSuffixLong                 // ${v%%pat}
	SubstReplace                        // ${v/pat/rep}
	SubstReplaceAll                     // ${v//pat/rep}
	SubstReplacePrefix                  // ${v/#pat/rep}
	SubstReplaceSuffix                  // ${v/%pat/rep}
	SubstUpperFirst                     // ${v^pat}
	SubstUpperAll                       // ${v^^pat}
	SubstLowerFirst                     // ${v,pat}
	SubstLowerAll                       // ${v,,pat}
)

func (o SubstOp) String() string {
	switch o {
	case SubstDefault:
		return ":-"
	case SubstAssign:
		return ":="
	case SubstError:
		return ":?"
	case SubstAlt:
		return ":+"
	case SubstTrimPrefixShort:
		return "#"
	case SubstTrimPrefixLong:
		return "##"
	case SubstTrimSuffixShort:
		return "%"
	case SubstTrimSuffixLong:
		return "%%"
	case SubstReplace:
		return "/"
	case SubstReplaceAll:
		return "//"
	case SubstReplacePrefix:
		return "/#"
	case SubstReplaceSuffix:
		return "/%"
	case SubstUpperFirst:
		return "^"
	case SubstUpperAll:
		return "^^"
	case SubstLowerFirst:
		return ","
	case SubstLowerAll:
		return ",,"
	}
	return "<invalid substitution>"
}

// substOps maps substitution operators to their kinds. Two-byte operators
// come first so dispatch can scan the table top to bottom: `:-` must win
// over `-`, `##` over `#`, `//` over `/`.
var substOps = [...]struct {
	str string
	op  SubstOp
}{
	{":-", SubstDefault},
	{":=", SubstAssign},
	{":?", SubstError},
	{":+", SubstAlt},
	{"##", SubstTrimPrefixLong},
	{"%%", SubstTrimSuffixLong},
	{"//", SubstReplaceAll},
	{"/#", SubstReplacePrefix},
	{"/%", SubstReplaceSuffix},
	{"^^", SubstUpperAll},
	{",,", SubstLowerAll},
	{"-", SubstDefault},
	{"=", SubstAssign},
	{"?", SubstError},
	{"+", SubstAlt},
	{"#", SubstTrimPrefixShort},
	{"%", SubstTrimSuffixShort},
	{"/", SubstReplace},
	{"^", SubstUpperFirst},
	{",", SubstLowerFirst},
}

func (o SubstOp) isReplace() bool {
	switch o {
	case SubstReplace, SubstReplaceAll, SubstReplacePrefix, SubstReplaceSuffix:
		return true
	}
	return false
}

// ArithOp is an arithmetic operator, binary or unary.
type ArithOp uint8

const (
	AddOp ArithOp = iota // +
	SubOp                // -
	MulOp                // *
	DivOp                // /
	RemOp                // %
	PowOp                // **

	LtOp // <
	LeOp // <=
	GtOp // >
	GeOp // >=
	EqOp // ==
	NeOp // !=

	BitAndOp // &
	BitOrOp  // |
	BitXorOp // ^
	ShlOp    // <<
	ShrOp    // >>

	LogAndOp // &&
	LogOrOp  // ||

	PlusOp   // unary +
	MinusOp  // unary -
	LogNotOp // !
	BitNotOp // ~
)

func (o ArithOp) String() string {
	switch o {
	case AddOp, PlusOp:
		return "+"
	case SubOp, MinusOp:
		return "-"
	case MulOp:
		return "*"
	case DivOp:
		return "/"
	case RemOp:
		return "%"
	case PowOp:
		return "**"
	case LtOp:
		return "<"
	case LeOp:
		return "<="
	case GtOp:
		return ">"
	case GeOp:
		return ">="
	case EqOp:
		return "=="
	case NeOp:
		return "!="
	case BitAndOp:
		return "&"
	case BitOrOp:
		return "|"
	case BitXorOp:
		return "^"
	case ShlOp:
		return "<<"
	case ShrOp:
		return ">>"
	case LogAndOp:
		return "&&"
	case LogOrOp:
		return "||"
	case LogNotOp:
		return "!"
	case BitNotOp:
		return "~"
	}
	return "<invalid operator>"
}
