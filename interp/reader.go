package interp

import (
	"strconv"
	"strings"
)

// ReaderOptions toggles grammar features on or off at construction time.
// They are fixed for an interpreter's lifetime, not mutable mid-parse.
type ReaderOptions struct {
	Strings bool // "..." string literals
	Floats  bool // floating point literals
	Ints    bool // integer literals (if false, integer tokens read as floats when Floats is on, else as symbols)
	Hashes  bool // { k v ... } hash literals
	Sugar   bool // x.y / x!y dotted-symbol sugar
	Dotted  bool // (a . b) dotted pair syntax
}

// DefaultReaderOptions enables every grammar feature, the common case.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{Strings: true, Floats: true, Ints: true, Hashes: true, Sugar: true, Dotted: true}
}

const maxReaderDepth = 2048

type reader struct {
	interp *Interpreter
	port   *Port
	opts   ReaderOptions
	depth  int
}

var errReaderEOF = &LispError{Code: CodeRecoverable, Msg: "unexpected end of input"}

// Read parses a single expression from p, returning (nil, nil) rather than
// an error when there was nothing left to read.
func (interp *Interpreter) Read(p *Port) (*Cell, error) {
	r := &reader{interp: interp, port: p, opts: interp.opts.Reader}
	c, err := r.readExpr()
	if err != nil {
		if err == errReaderEOF {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func isLexClass(b byte) bool {
	switch b {
	case '(', ')', '{', '}', '\'', '"':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// skipSpaceAndComments discards whitespace, ';'-to-end-of-line comments,
// and '#'-to-end-of-line comments.
func (r *reader) skipSpaceAndComments() {
	for {
		b, err := r.port.GetC()
		if err != nil {
			return
		}
		switch {
		case isSpace(b):
			continue
		case b == ';' || b == '#':
			for {
				nb, err := r.port.GetC()
				if err != nil || nb == '\n' {
					break
				}
			}
			continue
		default:
			r.port.UngetC(b)
			return
		}
	}
}

// nextToken returns the next raw token: either a single lex-class byte as a
// one-byte string, or a run of "symbol" bytes up to the next delimiter.
func (r *reader) nextToken() (string, bool) {
	r.skipSpaceAndComments()
	b, err := r.port.GetC()
	if err != nil {
		return "", false
	}
	if isLexClass(b) {
		return string(b), true
	}
	var sb strings.Builder
	sb.WriteByte(b)
	for {
		nb, err := r.port.GetC()
		if err != nil {
			break
		}
		if isSpace(nb) || isLexClass(nb) || nb == ';' {
			r.port.UngetC(nb)
			break
		}
		sb.WriteByte(nb)
	}
	return sb.String(), true
}

func (r *reader) readExpr() (*Cell, error) {
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > maxReaderDepth {
		return nil, &LispError{Code: CodeRecoverable, Msg: "reader recursion depth exceeded"}
	}
	tok, ok := r.nextToken()
	if !ok {
		return nil, errReaderEOF
	}
	switch tok {
	case "(":
		return r.readList(')')
	case "{":
		if !r.opts.Hashes {
			return nil, &LispError{Code: CodeRecoverable, Msg: "hash literals disabled"}
		}
		return r.readHash()
	case ")", "}":
		return nil, &LispError{Code: CodeRecoverable, Msg: "unexpected '" + tok + "'"}
	case "'":
		inner, err := r.readExpr()
		if err != nil {
			return nil, err
		}
		return cons(r.interp.Quote, cons(inner, r.interp.Nil)), nil
	case `"`:
		if !r.opts.Strings {
			return nil, &LispError{Code: CodeRecoverable, Msg: "string literals disabled"}
		}
		return r.readString()
	default:
		return r.readAtom(tok)
	}
}

// readList parses list elements until close, honoring Dotted for (a . b)
// tail syntax when enabled.
func (r *reader) readList(close byte) (*Cell, error) {
	var items []*Cell
	var tail *Cell = r.interp.Nil
	for {
		r.skipSpaceAndComments()
		b, err := r.port.GetC()
		if err != nil {
			return nil, &LispError{Code: CodeRecoverable, Msg: "unexpected end of input inside list"}
		}
		if b == close {
			break
		}
		r.port.UngetC(b)
		if r.opts.Dotted && b == '.' {
			// peek: a lone '.' token means dotted-pair syntax; splitSugar
			// handles '.' embedded inside a longer symbol.
			tok, ok := r.nextToken()
			if ok && tok == "." {
				rest, err := r.readExpr()
				if err != nil {
					return nil, err
				}
				tail = rest
				r.skipSpaceAndComments()
				cb, err := r.port.GetC()
				if err != nil || cb != close {
					return nil, &LispError{Code: CodeRecoverable, Msg: "malformed dotted pair"}
				}
				break
			}
			// not a lone dot: push the token's bytes back by re-reading is not
			// possible byte-by-byte here, so fall through via readAtom on tok.
			expr, err := r.exprFromToken(tok)
			if err != nil {
				return nil, err
			}
			items = append(items, expr)
			continue
		}
		expr, err := r.readExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, expr)
	}
	list := tail
	for i := len(items) - 1; i >= 0; i-- {
		list = cons(items[i], list)
	}
	return list, nil
}

// exprFromToken continues parsing after a token has already been consumed
// from the stream (used when readList has to disambiguate a leading '.').
func (r *reader) exprFromToken(tok string) (*Cell, error) {
	switch tok {
	case "(":
		return r.readList(')')
	case "{":
		if !r.opts.Hashes {
			return nil, &LispError{Code: CodeRecoverable, Msg: "hash literals disabled"}
		}
		return r.readHash()
	case "'":
		inner, err := r.readExpr()
		if err != nil {
			return nil, err
		}
		return cons(r.interp.Quote, cons(inner, r.interp.Nil)), nil
	case `"`:
		return r.readString()
	default:
		return r.readAtom(tok)
	}
}

// readHash parses { k v k v ... } into a fresh Hash cell.
func (r *reader) readHash() (*Cell, error) {
	h := NewHashTable(defaultHashLen)
	for {
		r.skipSpaceAndComments()
		b, err := r.port.GetC()
		if err != nil {
			return nil, &LispError{Code: CodeRecoverable, Msg: "unexpected end of input inside hash"}
		}
		if b == '}' {
			break
		}
		r.port.UngetC(b)
		key, err := r.readExpr()
		if err != nil {
			return nil, err
		}
		if !isAsciiz(key) {
			return nil, &LispError{Code: CodeRecoverable, Msg: "hash key must be a string or symbol"}
		}
		val, err := r.readExpr()
		if err != nil {
			return nil, err
		}
		h.Insert(printKey(key), val)
	}
	return mkHashCell(h), nil
}

// printKey derives a hash-table string key from a key expression: the text
// of a symbol or string, or the type name of any other cell (readHash only
// passes symbol or string keys).
func printKey(c *Cell) string {
	if isAsciiz(c) {
		return strVal(c)
	}
	return c.tag.String()
}

// readString consumes bytes up to the closing quote, processing escapes:
// \\ \n \t \r \" and \ooo octal.
func (r *reader) readString() (*Cell, error) {
	var sb strings.Builder
	for {
		b, err := r.port.GetC()
		if err != nil {
			return nil, &LispError{Code: CodeRecoverable, Msg: "unterminated string"}
		}
		if b == '"' {
			break
		}
		if b != '\\' {
			sb.WriteByte(b)
			continue
		}
		eb, err := r.port.GetC()
		if err != nil {
			return nil, &LispError{Code: CodeRecoverable, Msg: "unterminated string escape"}
		}
		switch eb {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			if eb >= '0' && eb <= '7' {
				digits := []byte{eb}
				for len(digits) < 3 {
					nb, err := r.port.GetC()
					if err != nil || nb < '0' || nb > '7' {
						if err == nil {
							r.port.UngetC(nb)
						}
						break
					}
					digits = append(digits, nb)
				}
				v, convErr := strconv.ParseInt(string(digits), 8, 9)
				if convErr != nil {
					return nil, &LispError{Code: CodeRecoverable, Msg: "bad octal escape"}
				}
				if v == 0 {
					return nil, &LispError{Code: CodeRecoverable, Msg: "octal escape of zero is not allowed"}
				}
				sb.WriteByte(byte(v))
			} else {
				sb.WriteByte(eb)
			}
		}
	}
	return mkString(sb.String()), nil
}

// readAtom classifies a bare token as an integer, float, or symbol,
// applying sugar-splitting on '.'/'!' when enabled. Integer recognition is
// tried before float, and the integer grammar is
// [+-]?(0[xX][0-9a-fA-F]+|0[0-7]*|[1-9][0-9]*): a "0x"/"0X" prefix reads
// hex, a bare leading zero reads octal, anything else decimal.
func (r *reader) readAtom(tok string) (*Cell, error) {
	if r.opts.Ints && looksLikeInt(tok) {
		if v, err := strconv.ParseInt(tok, 0, 64); err == nil {
			return mkInt(v), nil
		}
	}
	if r.opts.Floats {
		if v, err := strconv.ParseFloat(tok, 64); err == nil && looksNumeric(tok) {
			return mkFloat(v), nil
		}
	}
	if r.opts.Sugar {
		if strings.IndexAny(tok, ".!") == 0 {
			return nil, &LispError{Code: CodeRecoverable, Msg: "symbol starts with a sugar separator: " + tok}
		}
		if c, ok := r.splitSugar(tok); ok {
			return c, nil
		}
	}
	return r.interp.Intern(tok), nil
}

// looksLikeInt reports whether tok matches the integer grammar
// [+-]?(0[xX][0-9a-fA-F]+|0[0-7]*|[1-9][0-9]*), the base the token's digits
// are then parsed in left to strconv.ParseInt's own base-0 auto-detection.
func looksLikeInt(tok string) bool {
	if tok == "" {
		return false
	}
	if tok[0] == '+' || tok[0] == '-' {
		tok = tok[1:]
	}
	if tok == "" {
		return false
	}
	if tok[0] == '0' && len(tok) > 1 && (tok[1] == 'x' || tok[1] == 'X') {
		digits := tok[2:]
		if digits == "" {
			return false
		}
		for i := 0; i < len(digits); i++ {
			if !isHexDigit(digits[i]) {
				return false
			}
		}
		return true
	}
	if tok[0] == '0' {
		for i := 1; i < len(tok); i++ {
			if tok[i] < '0' || tok[i] > '7' {
				return false
			}
		}
		return true
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// looksNumeric filters strconv.ParseFloat's overly permissive grammar (it
// accepts "inf", "nan", hex floats) down to the plain decimal form the
// reader's numeric literals are meant to recognize.
func looksNumeric(tok string) bool {
	seenDigit := false
	for i, c := range tok {
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			// allowed punctuation within a float literal
		case i == 0 && (c == '+' || c == '-'):
		default:
			return false
		}
	}
	return seenDigit
}

// splitSugar implements the '.'/'!' symbol-sugar rule: "a.b" reads as
// (a b) [list access], "a!b" reads as (a (quote b)) [quoted access],
// recursing on the right-hand side so "a.b.c" nests correctly. Returns
// ok=false for a token with no sugar separator, or whose first separator is
// its first or last byte (so "set!" stays a plain symbol; readAtom rejects a
// leading separator before calling this).
func (r *reader) splitSugar(tok string) (*Cell, bool) {
	idx := strings.IndexAny(tok, ".!")
	if idx <= 0 || idx == len(tok)-1 {
		return nil, false
	}
	left := tok[:idx]
	right := tok[idx+1:]
	sep := tok[idx]

	leftCell, err := r.readAtom(left)
	if err != nil {
		return nil, false
	}
	rightCell, err := r.readAtom(right)
	if err != nil {
		return nil, false
	}
	if sep == '!' {
		rightCell = cons(r.interp.Quote, cons(rightCell, r.interp.Nil))
	}
	return cons(leftCell, cons(rightCell, r.interp.Nil)), true
}
