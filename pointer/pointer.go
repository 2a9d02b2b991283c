// Package pointer resolves RFC 6901 JSON Pointers against node trees.
package pointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsontree/node"
)

var (
	// ErrSyntax is returned for pointers that are not empty and do not start
	// with '/', or that contain a '~' not followed by '0' or '1'.
	ErrSyntax = errors.New("invalid JSON pointer")
	// ErrNotFound is returned when a reference token does not resolve.
	ErrNotFound = errors.New("JSON pointer does not resolve")
)

// Escape encodes a member name as a reference token: '~' becomes "~0" and
// '/' becomes "~1".
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// Unescape decodes a reference token.
func Unescape(token string) (string, error) {
	if !strings.Contains(token, "~") {
		return token, nil
	}
	var b strings.Builder
	b.Grow(len(token))
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(token) {
			return "", fmt.Errorf("%w: dangling '~' in %q", ErrSyntax, token)
		}
		switch token[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("%w: bad escape '~%c' in %q", ErrSyntax, token[i+1], token)
		}
		i++
	}
	return b.String(), nil
}

// Split breaks ptr into its unescaped reference tokens. The empty pointer
// has no tokens and refers to the whole document.
func Split(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if ptr[0] != '/' {
		return nil, fmt.Errorf("%w: %q does not start with '/'", ErrSyntax, ptr)
	}
	parts := strings.Split(ptr[1:], "/")
	for i, p := range parts {
		u, err := Unescape(p)
		if err != nil {
			return nil, err
		}
		parts[i] = u
	}
	return parts, nil
}

// Join builds a pointer from unescaped reference tokens.
func Join(tokens ...string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(Escape(t))
	}
	return b.String()
}

// Get returns the value ptr refers to inside root. Member names match
// exactly; the first of several equal names wins.
func Get(root *node.Value, ptr string) (*node.Value, error) {
	return get(root, ptr, false)
}

// GetFold is Get with ASCII case-insensitive member matching.
func GetFold(root *node.Value, ptr string) (*node.Value, error) {
	return get(root, ptr, true)
}

func get(root *node.Value, ptr string, fold bool) (*node.Value, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil document", ErrNotFound)
	}
	tokens, err := Split(ptr)
	if err != nil {
		return nil, err
	}
	cur := root
	for depth, tok := range tokens {
		var next *node.Value
		switch {
		case cur.IsArray():
			i, ok := arrayIndex(tok)
			if !ok {
				return nil, fmt.Errorf("%w: %q is not an array index at %s", ErrNotFound, tok, Join(tokens[:depth]...))
			}
			next = cur.Index(i)
		case cur.IsObject():
			if fold {
				next = cur.MemberFold(tok)
			} else {
				next = cur.Member(tok)
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, Join(tokens[:depth+1]...))
		}
		cur = next
	}
	return cur, nil
}

// arrayIndex accepts only canonical decimal indices: "0" or digits without a
// leading zero.
func arrayIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Find returns the pointer from root to target, which must be the very node
// inside the tree rather than an equal copy.
func Find(root, target *node.Value) (string, bool) {
	if root == nil || target == nil {
		return "", false
	}
	var tokens []string
	if !find(root, target, &tokens, 0) {
		return "", false
	}
	return Join(tokens...), true
}

func find(cur, target *node.Value, tokens *[]string, depth int) bool {
	if cur == target {
		return true
	}
	if depth > node.NestingLimit {
		return false
	}
	switch {
	case cur.IsArray():
		for i, item := range cur.Items() {
			*tokens = append(*tokens, strconv.Itoa(i))
			if find(item, target, tokens, depth+1) {
				return true
			}
			*tokens = (*tokens)[:len(*tokens)-1]
		}
	case cur.IsObject():
		for key, item := range cur.Members() {
			*tokens = append(*tokens, key)
			if find(item, target, tokens, depth+1) {
				return true
			}
			*tokens = (*tokens)[:len(*tokens)-1]
		}
	}
	return false
}
