package node

import (
	"math"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "invalid"
}

type flags uint8

const (
	// flagStringRef marks borrowed text that is never released.
	flagStringRef flags = 1 << iota
	// flagContainerRef marks an alias of an array or object owned elsewhere.
	flagContainerRef
	// flagRaw marks a string payload emitted verbatim.
	flagRaw
	flagReleased
)

// Value is one node of a JSON document tree.
//
// A Value created by a Factory or by the parser is unattached and owned by the
// caller until it is added to a container. A non-reference Value owns its
// children and text; releasing it releases them. Reference values own
// nothing.
type Value struct {
	kind    Kind
	flags   flags
	boolean bool
	number  float64

	// text is the owned payload; borrowed is used when flagStringRef is set.
	text     []byte
	borrowed string

	// target is the aliased container when flagContainerRef is set.
	target *Value
	items  []*Value

	key    []byte
	parent *Value
	alloc  Allocator
}

// Kind returns the tag of v. A nil Value is KindInvalid.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindInvalid
	}
	return v.kind
}

func (v *Value) IsInvalid() bool { return v.Kind() == KindInvalid }
func (v *Value) IsNull() bool    { return v.Kind() == KindNull }
func (v *Value) IsBool() bool    { return v.Kind() == KindBool }
func (v *Value) IsTrue() bool    { return v.IsBool() && v.boolean }
func (v *Value) IsFalse() bool   { return v.IsBool() && !v.boolean }
func (v *Value) IsNumber() bool  { return v.Kind() == KindNumber }
func (v *Value) IsArray() bool   { return v.Kind() == KindArray }
func (v *Value) IsObject() bool  { return v.Kind() == KindObject }

// IsString reports whether v carries text, including raw fragments.
func (v *Value) IsString() bool { return v.Kind() == KindString }

// IsRaw reports whether v is a pre-rendered JSON fragment.
func (v *Value) IsRaw() bool { return v.IsString() && v.flags&flagRaw != 0 }

// IsReference reports whether v borrows its text or aliases a container.
func (v *Value) IsReference() bool {
	return v != nil && v.flags&(flagStringRef|flagContainerRef) != 0
}

// Attached reports whether v is currently a child of some container.
func (v *Value) Attached() bool {
	return v != nil && v.parent != nil
}

// Released reports whether v has been released.
func (v *Value) Released() bool {
	return v != nil && v.flags&flagReleased != 0
}

// Allocator returns the allocator v was created with.
func (v *Value) Allocator() Allocator {
	if v == nil || v.alloc == nil {
		return defaultAllocator()
	}
	return v.alloc
}

func (v *Value) Bool() bool {
	return v.IsTrue()
}

func (v *Value) Number() float64 {
	if !v.IsNumber() {
		return 0
	}
	return v.number
}

// Int returns the number payload converted to int, saturating at the
// int bounds.
func (v *Value) Int() int {
	f := v.Number()
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// Text returns the string payload of a String or raw Value.
func (v *Value) Text() string {
	if !v.IsString() {
		return ""
	}
	if v.flags&flagStringRef != 0 {
		return v.borrowed
	}
	return string(v.text)
}

// Key returns the member name when v belongs to an object.
func (v *Value) Key() string {
	if v == nil {
		return ""
	}
	return string(v.key)
}

// SetNumber replaces the payload of a Number.
func (v *Value) SetNumber(f float64) error {
	if !v.IsNumber() {
		return opError("set number", ErrInvalidKind)
	}
	v.number = f
	return nil
}

// SetText replaces the payload of an owned String. Borrowed text cannot be
// rewritten.
func (v *Value) SetText(s string) error {
	if !v.IsString() {
		return opError("set text", ErrInvalidKind)
	}
	if v.flags&flagStringRef != 0 {
		return opError("set text", ErrReference)
	}
	buf, err := copyText(v.Allocator(), s)
	if err != nil {
		return allocError("set text")
	}
	freeText(v.Allocator(), v.text)
	v.text = buf
	return nil
}

// String renders v compactly. Rendering failures yield an empty string.
func (v *Value) String() string {
	s, err := PrintUnformatted(v)
	if err != nil {
		return ""
	}
	return s
}

// children returns the slice holding v's children, following references.
func (v *Value) children() []*Value {
	if v.flags&flagContainerRef != 0 {
		if v.target == nil || v.target.Released() {
			return nil
		}
		return v.target.children()
	}
	return v.items
}

// Len returns the number of elements of an array or members of an object.
func (v *Value) Len() int {
	if !v.IsArray() && !v.IsObject() {
		return 0
	}
	return len(v.children())
}

func copyText(a Allocator, s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}
	buf := a.AllocText(len(s))
	if buf == nil {
		return nil, ErrAllocation
	}
	copy(buf, s)
	return buf, nil
}

func freeText(a Allocator, b []byte) {
	if b != nil {
		a.FreeText(b)
	}
}
