// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package syntax

import "strings"

// Lexer is a backtrackable cursor over one immutable source string. It
// owns no grammar knowledge: the parser drives it through these primitives
// and rewinds by snapshotting and restoring integer positions. Every read
// method returns a slice of the original input, so scanning allocates
// nothing.
type Lexer struct {
	src string
	pos int
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Pos returns the current byte offset.
func (l *Lexer) Pos() int { return l.pos }

// SetPos restores a previously snapshotted position.
func (l *Lexer) SetPos(pos int) { l.pos = pos }

// EOF reports whether the cursor is past the end of the input.
func (l *Lexer) EOF() bool { return l.pos >= len(l.src) }

// Peek returns the current byte, or 0 at end of input. NUL cannot appear
// in shell source, so it doubles as the end sentinel.
func (l *Lexer) Peek() byte {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}
	return 0
}

// PeekAt returns the byte at the given offset from the cursor, or 0 past
// the end of input.
func (l *Lexer) PeekAt(offset int) byte {
	if i := l.pos + offset; i < len(l.src) {
		return l.src[i]
	}
	return 0
}

// Bump advances the cursor by one byte.
func (l *Lexer) Bump() { l.pos++ }

// BumpN advances the cursor by n bytes.
func (l *Lexer) BumpN(n int) { l.pos += n }

// Eat advances past the current byte only if it equals b, reporting
// whether it did.
func (l *Lexer) Eat(b byte) bool {
	if l.Peek() == b {
		l.pos++
		return true
	}
	return false
}

// EatStr advances past the upcoming bytes only if they equal s, reporting
// whether it did.
func (l *Lexer) EatStr(s string) bool {
	if strings.HasPrefix(l.src[min(l.pos, len(l.src)):], s) {
		l.pos += len(s)
		return true
	}
	return false
}

// SkipBlanks consumes a run of spaces and tabs. Newlines are statement
// terminators and are never skipped implicitly.
func (l *Lexer) SkipBlanks() {
	for l.pos < len(l.src) {
		if b := l.src[l.pos]; b != ' ' && b != '\t' {
			break
		}
		l.pos++
	}
}

// SkipComment consumes a `#` comment through the end of the line. A
// comment starts only where a new word would begin, so callers invoke
// this only at such positions.
func (l *Lexer) SkipComment() {
	if l.Peek() != '#' {
		return
	}
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// ReadName consumes a shell identifier: an ASCII letter or underscore
// followed by letters, digits and underscores. It returns the empty
// string and leaves the cursor unmoved when the position does not start a
// valid name.
func (l *Lexer) ReadName() string {
	start := l.pos
	if l.pos < len(l.src) && isNameStart(l.src[l.pos]) {
		l.pos++
		for l.pos < len(l.src) && isNameByte(l.src[l.pos]) {
			l.pos++
		}
	}
	return l.src[start:l.pos]
}

// ReadNumber consumes a run of ASCII digits, returning the empty string
// and leaving the cursor unmoved when there are none.
func (l *Lexer) ReadNumber() string {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

// ScanSQuote consumes raw content up to the next single quote, with no
// escape interpretation, and leaves the cursor just past the closing
// quote. The cursor must already be past the opening quote.
func (l *Lexer) ScanSQuote() (string, error) {
	start := l.pos
	for l.pos < len(l.src) {
		if l.src[l.pos] == '\'' {
			content := l.src[start:l.pos]
			l.pos++
			return content, nil
		}
		l.pos++
	}
	return "", &ParseError{Offset: l.pos, Msg: "unterminated single quote"}
}

// AtKeyword reports whether kw occurs at the cursor and is delimited:
// single-byte metacharacters delimit themselves, while every other
// keyword must be followed by a metacharacter or the end of input, so
// that `donesomething` never matches `done`. The cursor does not move.
func (l *Lexer) AtKeyword(kw string) bool {
	end := l.pos + len(kw)
	if end > len(l.src) || l.src[l.pos:end] != kw {
		return false
	}
	if len(kw) == 1 && isMeta(kw[0]) {
		return true
	}
	return end >= len(l.src) || isMeta(l.src[end])
}

// AtAnyKeyword reports whether any of the keywords matches at the cursor.
func (l *Lexer) AtAnyKeyword(kws ...string) bool {
	for _, kw := range kws {
		if l.AtKeyword(kw) {
			return true
		}
	}
	return false
}

// Slice returns the input from start to the cursor.
func (l *Lexer) Slice(start int) string { return l.src[start:l.pos] }

// SliceRange returns the input between two offsets.
func (l *Lexer) SliceRange(start, end int) string { return l.src[start:end] }

// Remaining returns the input from the cursor to the end.
func (l *Lexer) Remaining() string { return l.src[min(l.pos, len(l.src)):] }

// isMeta reports whether b is a shell metacharacter: the bytes that
// delimit words and statements, plus the end-of-input sentinel.
func isMeta(b byte) bool {
	switch b {
	case ' ', '\t', '\n', ';', '&', '|', '(', ')', '<', '>', 0:
		return true
	}
	return false
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
