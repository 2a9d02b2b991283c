package node

// Minify removes whitespace and comments outside string literals from buf in
// place and returns the shortened slice. String literals are copied as is,
// escapes included. A NUL byte ends the input, and a NUL is written after the
// result when buf has room for it. Minify does not validate the text.
func Minify(buf []byte) []byte {
	r, w := 0, 0
	for r < len(buf) {
		c := buf[r]
		if c == 0 {
			break
		}
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r++
		case c == '/' && r+1 < len(buf) && buf[r+1] == '/':
			r += 2
			for r < len(buf) && buf[r] != '\n' {
				r++
			}
		case c == '/' && r+1 < len(buf) && buf[r+1] == '*':
			r += 2
			for r < len(buf) && !(buf[r] == '*' && r+1 < len(buf) && buf[r+1] == '/') {
				r++
			}
			r += 2
		case c == '"':
			buf[w] = c
			w++
			r++
			for r < len(buf) {
				c = buf[r]
				buf[w] = c
				w++
				r++
				if c == '\\' && r < len(buf) {
					buf[w] = buf[r]
					w++
					r++
					continue
				}
				if c == '"' {
					break
				}
			}
		default:
			buf[w] = c
			w++
			r++
		}
	}
	if w < len(buf) {
		buf[w] = 0
	}
	return buf[:w]
}

// MinifyString is Minify over a copy of s.
func MinifyString(s string) string {
	return string(Minify([]byte(s)))
}
