package node

import (
	"iter"
)

// Index returns the element at i of an array, or nil. The result stays owned
// by v.
func (v *Value) Index(i int) *Value {
	if !v.IsArray() || i < 0 {
		return nil
	}
	items := v.children()
	if i >= len(items) {
		return nil
	}
	return items[i]
}

// Member returns the first member of an object whose key equals key, or nil.
func (v *Value) Member(key string) *Value {
	return v.member(key, false)
}

// MemberFold is Member with ASCII-only case folding. Non-ASCII bytes must
// match exactly.
func (v *Value) MemberFold(key string) *Value {
	return v.member(key, true)
}

func (v *Value) HasMember(key string) bool     { return v.Member(key) != nil }
func (v *Value) HasMemberFold(key string) bool { return v.MemberFold(key) != nil }

func (v *Value) member(key string, fold bool) *Value {
	if !v.IsObject() {
		return nil
	}
	for _, c := range v.children() {
		if keyMatches(c.key, key, fold) {
			return c
		}
	}
	return nil
}

// indexOf returns the position of the first member named key among v's own
// items, or -1.
func (v *Value) indexOf(key string, fold bool) int {
	for i, c := range v.items {
		if keyMatches(c.key, key, fold) {
			return i
		}
	}
	return -1
}

// position returns the index of child among v's own items, or -1.
func (v *Value) position(child *Value) int {
	if child == nil || child.parent != v {
		return -1
	}
	for i, c := range v.items {
		if c == child {
			return i
		}
	}
	return -1
}

func keyMatches(k []byte, key string, fold bool) bool {
	if !fold {
		return string(k) == key
	}
	return equalFoldASCII(k, key)
}

// equalFoldASCII compares under ASCII case folding only.
func equalFoldASCII(a []byte, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Items iterates over the elements of an array, or the member values of an
// object, in order.
func (v *Value) Items() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		if !v.IsArray() && !v.IsObject() {
			return
		}
		for i, c := range v.children() {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Members iterates over the members of an object in insertion order.
// Duplicate keys are all visited.
func (v *Value) Members() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if !v.IsObject() {
			return
		}
		for _, c := range v.children() {
			if !yield(string(c.key), c) {
				return
			}
		}
	}
}
