package node

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// NestingLimit bounds how deeply arrays and objects may nest when parsing,
// printing, duplicating or comparing.
const NestingLimit = 1000

// ParseOptions controls ParseWithOptions and ParseWithLengthOptions.
type ParseOptions struct {
	// RequireNullTerminated rejects anything but whitespace after the value.
	// When false, parsing stops after the first complete value.
	RequireNullTerminated bool
	// MaxDepth lowers the nesting limit when positive. Values above
	// NestingLimit are clamped to it.
	MaxDepth int
	// Allocator overrides the process-wide hooks.
	Allocator Allocator
}

// Parse decodes the JSON value at the start of text. text is treated as
// NUL-terminated: bytes from the first NUL on are ignored. Trailing bytes
// after the value are tolerated.
func Parse(text string) (*Value, error) {
	v, _, err := ParseWithOptions(text, ParseOptions{})
	return v, err
}

// ParseWithOptions is Parse with options. It also returns the byte offset
// just past the parsed value, or the failure offset on error.
func ParseWithOptions(text string, opts ParseOptions) (*Value, int, error) {
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	return parse(text, opts)
}

// ParseWithLength decodes the value in the first length bytes of buf. The
// buffer need not be NUL-terminated and may carry other data after length.
func ParseWithLength(buf []byte, length int) (*Value, error) {
	v, _, err := ParseWithLengthOptions(buf, length, ParseOptions{})
	return v, err
}

// ParseWithLengthOptions is ParseWithLength with options.
func ParseWithLengthOptions(buf []byte, length int, opts ParseOptions) (*Value, int, error) {
	if length < 0 || length > len(buf) {
		return nil, 0, opError("parse", ErrIndexOutOfRange)
	}
	return parse(string(buf[:length]), opts)
}

type parser struct {
	data     string
	pos      int
	depth    int
	maxDepth int
	alloc    Allocator
	f        *Factory
	scratch  []byte
}

func parse(data string, opts ParseOptions) (*Value, int, error) {
	a := opts.Allocator
	if a == nil {
		a = defaultAllocator()
	}
	p := &parser{
		data:     data,
		maxDepth: NestingLimit,
		alloc:    a,
		f:        &Factory{alloc: a},
	}
	if opts.MaxDepth > 0 && opts.MaxDepth < NestingLimit {
		p.maxDepth = opts.MaxDepth
	}

	if strings.HasPrefix(data, "\xEF\xBB\xBF") {
		p.pos = 3
	}
	p.skipWhitespace()
	v, err := p.value()
	if err != nil {
		return nil, errorOffset(err), err
	}
	end := p.pos
	if opts.RequireNullTerminated {
		p.skipWhitespace()
		if p.pos < len(p.data) {
			v.release()
			err := p.errorAt(p.pos, ReasonTrailingData)
			return nil, err.Offset, err
		}
	}
	return v, end, nil
}

func errorOffset(err error) int {
	if pe, ok := err.(*ParseError); ok {
		return pe.Offset
	}
	return 0
}

func (p *parser) errorAt(offset int, r Reason) *ParseError {
	return &ParseError{Offset: offset, Reason: r}
}

func (p *parser) allocFailure() *ParseError {
	return &ParseError{Offset: p.pos, Err: allocError("parse")}
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value() (*Value, error) {
	if p.pos >= len(p.data) {
		return nil, p.errorAt(p.pos, ReasonUnexpectedEnd)
	}
	switch c := p.data[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		return p.stringValue()
	case c == '-' || isDigit(c):
		return p.number()
	case c == 'n':
		if err := p.literal("null"); err != nil {
			return nil, err
		}
		v, err := p.f.Null()
		if err != nil {
			return nil, p.allocFailure()
		}
		return v, nil
	case c == 't' || c == 'f':
		lit := "true"
		if c == 'f' {
			lit = "false"
		}
		if err := p.literal(lit); err != nil {
			return nil, err
		}
		v, err := p.f.Bool(c == 't')
		if err != nil {
			return nil, p.allocFailure()
		}
		return v, nil
	}
	return nil, p.errorAt(p.pos, ReasonUnexpectedToken)
}

func (p *parser) literal(lit string) error {
	rest := p.data[p.pos:]
	if strings.HasPrefix(rest, lit) {
		p.pos += len(lit)
		return nil
	}
	if len(rest) < len(lit) && strings.HasPrefix(lit, rest) {
		return p.errorAt(len(p.data), ReasonUnexpectedEnd)
	}
	return p.errorAt(p.pos, ReasonUnexpectedToken)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// number accepts exactly the RFC 8259 grammar:
// -? (0 | [1-9][0-9]*) (\.[0-9]+)? ([eE][+-]?[0-9]+)?
func (p *parser) number() (*Value, error) {
	d := p.data
	start := p.pos
	i := start
	if d[i] == '-' {
		i++
	}
	switch {
	case i < len(d) && d[i] == '0':
		i++
		if i < len(d) && isDigit(d[i]) {
			return nil, p.errorAt(start, ReasonInvalidNumber)
		}
	case i < len(d) && isDigit(d[i]):
		for i < len(d) && isDigit(d[i]) {
			i++
		}
	default:
		return nil, p.errorAt(start, ReasonInvalidNumber)
	}
	if i < len(d) && d[i] == '.' {
		i++
		if i >= len(d) || !isDigit(d[i]) {
			return nil, p.errorAt(start, ReasonInvalidNumber)
		}
		for i < len(d) && isDigit(d[i]) {
			i++
		}
	}
	if i < len(d) && (d[i] == 'e' || d[i] == 'E') {
		i++
		if i < len(d) && (d[i] == '+' || d[i] == '-') {
			i++
		}
		if i >= len(d) || !isDigit(d[i]) {
			return nil, p.errorAt(start, ReasonInvalidNumber)
		}
		for i < len(d) && isDigit(d[i]) {
			i++
		}
	}

	f, err := strconv.ParseFloat(d[start:i], 64)
	if err != nil {
		// Only range errors reach here; the grammar was checked above.
		return nil, p.errorAt(start, ReasonInvalidNumber)
	}
	p.pos = i
	v, err := p.f.Number(f)
	if err != nil {
		return nil, p.allocFailure()
	}
	return v, nil
}

func (p *parser) stringValue() (*Value, error) {
	s, err := p.quoted()
	if err != nil {
		return nil, err
	}
	v := p.f.newValue(KindString)
	if v == nil {
		return nil, p.allocFailure()
	}
	if v.text, err = p.own(s); err != nil {
		p.alloc.FreeValue(v)
		return nil, err
	}
	return v, nil
}

// own copies scratch bytes into allocator memory.
func (p *parser) own(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	buf := p.alloc.AllocText(len(b))
	if buf == nil {
		return nil, p.allocFailure()
	}
	copy(buf, b)
	return buf, nil
}

// quoted decodes the string literal at p.pos into the scratch buffer. The
// result is only valid until the next call.
func (p *parser) quoted() ([]byte, error) {
	d := p.data
	out := p.scratch[:0]
	i := p.pos + 1
	for {
		if i >= len(d) {
			return nil, p.errorAt(len(d), ReasonUnterminatedString)
		}
		c := d[i]
		switch {
		case c == '"':
			p.pos = i + 1
			p.scratch = out
			return out, nil
		case c == '\\':
			if i+1 >= len(d) {
				return nil, p.errorAt(len(d), ReasonUnterminatedString)
			}
			switch esc := d[i+1]; esc {
			case '"', '\\', '/':
				out = append(out, esc)
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'u':
				r, n, ok := unicodeEscape(d, i)
				if !ok {
					return nil, p.errorAt(i, ReasonInvalidEscape)
				}
				out = utf8.AppendRune(out, r)
				i += n
				continue
			default:
				return nil, p.errorAt(i, ReasonInvalidEscape)
			}
			i += 2
		case c < 0x20:
			return nil, p.errorAt(i, ReasonControlCharacter)
		default:
			j := i + 1
			for j < len(d) && d[j] != '"' && d[j] != '\\' && d[j] >= 0x20 {
				j++
			}
			out = append(out, d[i:j]...)
			i = j
		}
	}
}

// unicodeEscape decodes \uXXXX at d[i:], joining a surrogate pair into one
// code point. It returns the rune and the number of bytes consumed.
func unicodeEscape(d string, i int) (rune, int, bool) {
	r1, ok := hex4(d, i+2)
	if !ok {
		return 0, 0, false
	}
	if !utf16.IsSurrogate(r1) {
		return r1, 6, true
	}
	if r1 >= 0xDC00 {
		return 0, 0, false
	}
	if i+12 > len(d) || d[i+6] != '\\' || d[i+7] != 'u' {
		return 0, 0, false
	}
	r2, ok := hex4(d, i+8)
	if !ok || r2 < 0xDC00 || r2 > 0xDFFF {
		return 0, 0, false
	}
	return utf16.DecodeRune(r1, r2), 12, true
}

func hex4(d string, i int) (rune, bool) {
	if i+4 > len(d) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(d[i : i+4]) {
		r <<= 4
		switch {
		case '0' <= c && c <= '9':
			r |= rune(c - '0')
		case 'a' <= c && c <= 'f':
			r |= rune(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.errorAt(p.pos, ReasonNestingTooDeep)
	}
	return nil
}

func (p *parser) array() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	arr, err := p.f.Array()
	if err != nil {
		return nil, p.allocFailure()
	}
	p.pos++
	p.skipWhitespace()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		return arr, nil
	}
	for {
		p.skipWhitespace()
		item, err := p.value()
		if err != nil {
			arr.release()
			return nil, err
		}
		arr.link(len(arr.items), item, nil)

		p.skipWhitespace()
		if p.pos >= len(p.data) {
			arr.release()
			return nil, p.errorAt(p.pos, ReasonUnexpectedEnd)
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return arr, nil
		default:
			arr.release()
			return nil, p.errorAt(p.pos, ReasonUnexpectedToken)
		}
	}
}

func (p *parser) object() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	obj, err := p.f.Object()
	if err != nil {
		return nil, p.allocFailure()
	}
	p.pos++
	p.skipWhitespace()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			obj.release()
			return nil, p.errorAt(p.pos, ReasonUnexpectedEnd)
		}
		if p.data[p.pos] != '"' {
			obj.release()
			return nil, p.errorAt(p.pos, ReasonUnexpectedToken)
		}
		raw, err := p.quoted()
		if err != nil {
			obj.release()
			return nil, err
		}
		key, err := p.own(raw)
		if err != nil {
			obj.release()
			return nil, err
		}

		p.skipWhitespace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			freeText(p.alloc, key)
			obj.release()
			if p.pos >= len(p.data) {
				return nil, p.errorAt(p.pos, ReasonUnexpectedEnd)
			}
			return nil, p.errorAt(p.pos, ReasonUnexpectedToken)
		}
		p.pos++
		p.skipWhitespace()
		item, err := p.value()
		if err != nil {
			freeText(p.alloc, key)
			obj.release()
			return nil, err
		}
		obj.link(len(obj.items), item, key)

		p.skipWhitespace()
		if p.pos >= len(p.data) {
			obj.release()
			return nil, p.errorAt(p.pos, ReasonUnexpectedEnd)
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			obj.release()
			return nil, p.errorAt(p.pos, ReasonUnexpectedToken)
		}
	}
}
