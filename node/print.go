package node

import (
	"math"
	"strconv"
)

// defaultBufferSize is the initial capacity of a growing print buffer.
const defaultBufferSize = 256

const hexDigits = "0123456789abcdef"

// Print renders v with one member or element per line, indented by a tab per
// level.
func Print(v *Value) (string, error) {
	return PrintBuffered(v, defaultBufferSize, true)
}

// PrintUnformatted renders v without any whitespace between tokens.
func PrintUnformatted(v *Value) (string, error) {
	return PrintBuffered(v, defaultBufferSize, false)
}

// PrintBuffered renders v into a buffer that starts at prebuffer bytes and
// doubles as needed. The buffer comes from v's allocator.
func PrintBuffered(v *Value, prebuffer int, formatted bool) (string, error) {
	if err := checkPrintable("print", v); err != nil {
		return "", err
	}
	if prebuffer < 0 {
		return "", opError("print", ErrIndexOutOfRange)
	}
	p := &printer{alloc: v.Allocator(), formatted: formatted}
	if prebuffer > 0 {
		p.block = p.alloc.AllocText(prebuffer)
		if p.block == nil {
			return "", allocError("print")
		}
	}
	p.value(v, 0)

	var out string
	if p.err == nil {
		out = string(p.block[:p.n])
	}
	if p.block != nil {
		p.alloc.FreeText(p.block)
	}
	return out, p.err
}

// PrintPreallocated renders v into buf and returns the number of bytes
// written. It never writes past len(buf): output that does not fit fails with
// ErrBufferTooSmall and leaves the contents of buf unspecified. A NUL byte
// follows the output when there is room for it.
func PrintPreallocated(v *Value, buf []byte, formatted bool) (int, error) {
	if err := checkPrintable("print preallocated", v); err != nil {
		return 0, err
	}
	p := &printer{block: buf, fixed: true, formatted: formatted}
	p.value(v, 0)
	if p.err != nil {
		return 0, p.err
	}
	if p.n < len(buf) {
		buf[p.n] = 0
	}
	return p.n, nil
}

func checkPrintable(op string, v *Value) error {
	if v == nil {
		return opError(op, ErrNilValue)
	}
	if v.Released() {
		return opError(op, ErrReleased)
	}
	return nil
}

type printer struct {
	// block is the whole buffer; n bytes of it are written.
	block     []byte
	n         int
	fixed     bool
	formatted bool
	alloc     Allocator
	err       error
}

func (p *printer) ensure(extra int) bool {
	if p.err != nil {
		return false
	}
	need := p.n + extra
	if need <= len(p.block) {
		return true
	}
	if p.fixed {
		p.err = &Error{Type: ErrorTypeBufferTooSmall, Op: "print preallocated", Err: ErrBufferTooSmall}
		return false
	}
	size := len(p.block) * 2
	if size == 0 {
		size = defaultBufferSize
	}
	for size < need {
		size *= 2
	}
	grown := p.alloc.AllocText(size)
	if grown == nil {
		p.err = allocError("print")
		return false
	}
	copy(grown, p.block[:p.n])
	if p.block != nil {
		p.alloc.FreeText(p.block)
	}
	p.block = grown
	return true
}

func (p *printer) writeByte(c byte) {
	if p.ensure(1) {
		p.block[p.n] = c
		p.n++
	}
}

func (p *printer) writeString(s string) {
	if p.ensure(len(s)) {
		p.n += copy(p.block[p.n:], s)
	}
}

func (p *printer) write(b []byte) {
	if p.ensure(len(b)) {
		p.n += copy(p.block[p.n:], b)
	}
}

func (p *printer) newline(depth int) {
	p.writeByte('\n')
	for i := 0; i < depth; i++ {
		p.writeByte('\t')
	}
}

func (p *printer) value(v *Value, depth int) {
	if p.err != nil {
		return
	}
	if depth > NestingLimit {
		p.err = opError("print", ErrNestingTooDeep)
		return
	}
	switch v.kind {
	case KindNull:
		p.writeString("null")
	case KindBool:
		if v.boolean {
			p.writeString("true")
		} else {
			p.writeString("false")
		}
	case KindNumber:
		var tmp [32]byte
		p.write(appendNumber(tmp[:0], v.number))
	case KindString:
		if v.IsRaw() {
			p.writeString(v.Text())
		} else {
			p.quoted(v.Text())
		}
	case KindArray:
		p.array(v, depth)
	case KindObject:
		p.object(v, depth)
	default:
		p.err = opError("print", ErrInvalidKind)
	}
}

func (p *printer) array(v *Value, depth int) {
	items := v.children()
	p.writeByte('[')
	if len(items) == 0 {
		p.writeByte(']')
		return
	}
	for i, c := range items {
		if i > 0 {
			p.writeByte(',')
		}
		if p.formatted {
			p.newline(depth + 1)
		}
		p.value(c, depth+1)
	}
	if p.formatted {
		p.newline(depth)
	}
	p.writeByte(']')
}

func (p *printer) object(v *Value, depth int) {
	items := v.children()
	p.writeByte('{')
	if len(items) == 0 {
		p.writeByte('}')
		return
	}
	for i, c := range items {
		if i > 0 {
			p.writeByte(',')
		}
		if p.formatted {
			p.newline(depth + 1)
		}
		p.quoted(string(c.key))
		p.writeByte(':')
		if p.formatted {
			p.writeByte(' ')
		}
		p.value(c, depth+1)
	}
	if p.formatted {
		p.newline(depth)
	}
	p.writeByte('}')
}

func (p *printer) quoted(s string) {
	p.writeByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		p.writeString(s[start:i])
		switch c {
		case '"':
			p.writeString(`\"`)
		case '\\':
			p.writeString(`\\`)
		case '\b':
			p.writeString(`\b`)
		case '\f':
			p.writeString(`\f`)
		case '\n':
			p.writeString(`\n`)
		case '\r':
			p.writeString(`\r`)
		case '\t':
			p.writeString(`\t`)
		default:
			p.write([]byte{'\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF]})
		}
		start = i + 1
	}
	p.writeString(s[start:])
	p.writeByte('"')
}

// appendNumber formats f the way encoding/json does: the shortest text that
// parses back to the same float64, with integral values below 1e21 printed
// without a fraction or exponent. NaN and infinities have no JSON form and
// print as null.
func appendNumber(dst []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, "null"...)
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	dst = strconv.AppendFloat(dst, f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst
}
