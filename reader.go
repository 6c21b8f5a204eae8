package bamboo

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Reader turns source text into Values, one top-level expression at a
// time, per spec §4.3. It owns the cursor state the lexer (lexer.go)
// advances — line, column, and byte offset — the same triple the
// teacher's BaseParser (base_parser.go) threads through its own
// character-at-a-time parsing.
//
// A Reader allocates pairs and strings through its Engine's heap, so
// parsed data participates in garbage collection like anything else the
// engine produces.
type Reader struct {
	eng *Engine
	src string

	pos, line, column int
}

// NewReader returns a Reader over src, positioned at its start.
func (e *Engine) NewReader(src string) *Reader {
	return &Reader{eng: e, src: src, line: 1}
}

// Pos reports the reader's current byte offset into its source.
func (r *Reader) Pos() int { return r.pos }

// AtEnd reports whether the reader has consumed all of its source,
// ignoring trailing whitespace.
func (r *Reader) AtEnd() bool {
	save := r.pos
	r.skipSpace()
	atEnd := r.pos >= len(r.src)
	r.pos = save
	return atEnd
}

// errParenEnd and errQuoteEnd are internal, never returned from
// ReadValue: they signal that readExpr's dispatch landed on a bare `)`
// or that a quote shorthand had nothing to quote, so a caller inside
// this file (readList, readQuoted, or ReadValue at the top level) can
// turn them into a proper syntax error with the right message. They mirror the non-error sentinel
// values original_source/src/bamboo.h keeps distinct
// (BAMBOO_PAREN_END/BAMBOO_QUOTE_END) rather than folding them into one
// generic condition.
var (
	errParenEnd = errors.New("bamboo: unexpected )")
	errQuoteEnd = errors.New("bamboo: quote with no expression")
)

// ReadValue reads and returns the next top-level expression. It returns
// ErrEndOfInput, unwrapped, if nothing but whitespace (or nothing at
// all) remains — a non-fatal condition callers are expected to treat as
// "stop reading," not as an error.
func (r *Reader) ReadValue() (Value, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return Value{}, ErrEndOfInput
	}
	v, err := r.readExpr()
	if err == errParenEnd {
		return Value{}, r.eng.fail(r.syntaxErr("unexpected )"))
	}
	if err == errQuoteEnd {
		return Value{}, r.eng.fail(r.syntaxErr("quote shorthand with nothing to quote"))
	}
	if err != nil {
		return Value{}, r.eng.fail(err)
	}
	return v, nil
}

func (r *Reader) syntaxErr(msg string) error {
	return syntaxErrorAt(msg, Span{Line: r.line, Column: r.column, Offset: r.pos})
}

// readExpr parses exactly one expression starting at the reader's
// current position, dispatching on the first token's lexical kind.
func (r *Reader) readExpr() (Value, error) {
	tok := r.nextToken()
	switch tok.kind {
	case tokEOF:
		// ReadValue has already returned ErrEndOfInput for blank input, so
		// reaching the end here means an expression was cut off.
		return Value{}, r.syntaxErr("unexpected end of input")
	case tokRParen:
		return Value{}, errParenEnd
	case tokLParen:
		return r.readList()
	case tokQuote:
		return r.readQuoted()
	case tokDQuote:
		return r.readString()
	case tokHash:
		return r.readHash(r.src[tok.start:tok.end])
	case tokDot:
		return Value{}, r.syntaxErr("`.` outside of a list")
	default:
		return r.readAtom(r.src[tok.start:tok.end])
	}
}

// readList parses the body of a list after its opening `(` has already
// been consumed by readExpr. It implements the dotted-pair and
// list-termination rules of spec §4.3: a `.` requires exactly one
// preceding item and exactly one following expression, immediately
// followed by `)`; anything else around a `.` is a syntax error.
func (r *Reader) readList() (Value, error) {
	var items []Value
	dotted := false
	haveTail := false
	tail := Nil

	for {
		peek := r.peekToken()
		if peek.kind == tokEOF {
			return Value{}, r.syntaxErr("unterminated list")
		}
		if peek.kind == tokRParen {
			r.nextToken()
			break
		}
		if peek.kind == tokDot {
			r.nextToken()
			if len(items) == 0 {
				return Value{}, r.syntaxErr("`.` with no preceding element")
			}
			if dotted {
				return Value{}, r.syntaxErr("more than one `.` in a list")
			}
			v, err := r.readExpr()
			if err == errParenEnd {
				return Value{}, r.syntaxErr("`.` with no following expression")
			}
			if err != nil {
				return Value{}, err
			}
			tail = v
			haveTail = true
			dotted = true
			continue
		}
		if dotted {
			return Value{}, r.syntaxErr("more than one expression after `.`")
		}
		v, err := r.readExpr()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	if dotted && !haveTail {
		return Value{}, r.syntaxErr("`.` with no following expression")
	}
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		p := r.eng.heap.allocPair(items[i], result)
		result = Value{kind: KindPair, pr: p}
	}
	return result, nil
}

// readQuoted parses a `'expr` shorthand into (QUOTE expr). A `'(` prefix
// is rejected per spec §4.3's explicit note that quoting a list directly
// via shorthand is disallowed, to avoid ambiguity — the caller must
// spell out (QUOTE (...)).
func (r *Reader) readQuoted() (Value, error) {
	peek := r.peekToken()
	if peek.kind == tokLParen {
		return Value{}, r.syntaxErr("quote shorthand cannot directly quote a list; use (QUOTE ...)")
	}
	v, err := r.readExpr()
	if err == errParenEnd {
		return Value{}, errQuoteEnd
	}
	if err != nil {
		return Value{}, err
	}
	quoteSym := r.eng.symbols.Intern("QUOTE")
	inner := r.eng.heap.allocPair(v, Nil)
	outer := r.eng.heap.allocPair(symbolValue(quoteSym), Value{kind: KindPair, pr: inner})
	return Value{kind: KindPair, pr: outer}, nil
}

// readString parses a string literal after its opening `"` has been
// consumed. There is no escape processing: a `"` always ends the
// literal, matching the original reader and spec §9's first Open
// Question, resolved in DESIGN.md as intentional.
func (r *Reader) readString() (Value, error) {
	start := r.pos
	for {
		ch, ok := r.peekRune()
		if !ok {
			return Value{}, r.syntaxErr("unterminated string literal")
		}
		_, size := utf8.DecodeRuneInString(r.src[r.pos:])
		if ch == '"' {
			content := r.src[start:r.pos]
			r.advance(ch, size)
			s := r.eng.heap.allocString(content)
			return Value{kind: KindString, str: s}, nil
		}
		r.advance(ch, size)
	}
}

// readHash parses a `#t`/`#f` boolean literal. text includes the
// leading `#`.
func (r *Reader) readHash(text string) (Value, error) {
	body := strings.ToUpper(text[1:])
	switch body {
	case "T":
		return True, nil
	case "F":
		return False, nil
	default:
		return Value{}, r.syntaxErr("unknown # literal: " + text)
	}
}

// readAtom classifies a bare token as an Integer, a Float, or a Symbol,
// per spec §4.3: a numeric-shaped token that fails to parse because it
// is out of range is a numeric-overflow/underflow error, never a silent
// fallback to Symbol. A token that isn't numeric-shaped at all (bare
// "+", "-", "list->vector", ...), or one that starts like a number but
// parses as neither an integer nor a float (e.g. "1+"), becomes a Symbol.
func (r *Reader) readAtom(text string) (Value, error) {
	if looksNumeric(text) {
		if v, ok, err := r.parseInteger(text); ok || err != nil {
			return v, err
		}
		if v, ok, err := r.parseFloat(text); ok || err != nil {
			return v, err
		}
	}
	if strings.ToUpper(text) == "NIL" {
		return Nil, nil
	}
	sym := r.eng.symbols.Intern(text)
	return symbolValue(sym), nil
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	return s[i] >= '0' && s[i] <= '9'
}

// parseInteger attempts to parse text as an integer literal, with Go's
// usual 0x/0o/0b/0-prefixed base auto-detection. ok is false when text
// isn't integer-shaped at all (e.g. it has a decimal point); err is
// non-nil when text is integer-shaped but out of int64 range.
func (r *Reader) parseInteger(text string) (Value, bool, error) {
	if strings.ContainsAny(text, ".eE") && !strings.HasPrefix(strings.ToLower(text), "0x") {
		return Value{}, false, nil
	}
	n, err := strconv.ParseInt(text, 0, 64)
	if err == nil {
		return Int(n), true, nil
	}
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		if strings.HasPrefix(text, "-") {
			return Value{}, true, underflowError(text)
		}
		return Value{}, true, overflowError(text)
	}
	return Value{}, false, nil
}

// parseFloat attempts to parse text as a floating point literal.
func (r *Reader) parseFloat(text string) (Value, bool, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err == nil {
		return Float(f), true, nil
	}
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		if strings.HasPrefix(text, "-") {
			return Value{}, true, underflowError(text)
		}
		return Value{}, true, overflowError(text)
	}
	return Value{}, false, nil
}
