package node

// Factory creates values whose memory comes from one Allocator.
type Factory struct {
	alloc Allocator
}

// NewFactory returns a Factory drawing from a. A nil a uses the default hooks.
func NewFactory(a Allocator) *Factory {
	if a == nil {
		a = defaultAllocator()
	}
	return &Factory{alloc: a}
}

// Default returns a Factory using the process-wide hooks. Calling it freezes
// the hooks.
func Default() *Factory {
	return &Factory{alloc: defaultAllocator()}
}

// Allocator returns the allocator behind f.
func (f *Factory) Allocator() Allocator {
	return f.alloc
}

func (f *Factory) newValue(k Kind) *Value {
	v := f.alloc.AllocValue()
	if v == nil {
		return nil
	}
	*v = Value{kind: k, alloc: f.alloc}
	return v
}

func (f *Factory) Null() (*Value, error) {
	v := f.newValue(KindNull)
	if v == nil {
		return nil, allocError("create null")
	}
	return v, nil
}

func (f *Factory) Bool(b bool) (*Value, error) {
	v := f.newValue(KindBool)
	if v == nil {
		return nil, allocError("create bool")
	}
	v.boolean = b
	return v, nil
}

func (f *Factory) Number(n float64) (*Value, error) {
	v := f.newValue(KindNumber)
	if v == nil {
		return nil, allocError("create number")
	}
	v.number = n
	return v, nil
}

// String returns a String owning a copy of s.
func (f *Factory) String(s string) (*Value, error) {
	return f.text("create string", s, 0)
}

// Raw returns a String whose payload is emitted verbatim by the serializer.
// The text is not validated.
func (f *Factory) Raw(s string) (*Value, error) {
	return f.text("create raw", s, flagRaw)
}

func (f *Factory) text(op, s string, fl flags) (*Value, error) {
	v := f.newValue(KindString)
	if v == nil {
		return nil, allocError(op)
	}
	buf, err := copyText(f.alloc, s)
	if err != nil {
		f.alloc.FreeValue(v)
		return nil, allocError(op)
	}
	v.text = buf
	v.flags = fl
	return v, nil
}

// StringReference returns a String that borrows s. The text is never
// released through the allocator.
func (f *Factory) StringReference(s string) (*Value, error) {
	v := f.newValue(KindString)
	if v == nil {
		return nil, allocError("create string reference")
	}
	v.borrowed = s
	v.flags = flagStringRef
	return v, nil
}

func (f *Factory) Array() (*Value, error) {
	v := f.newValue(KindArray)
	if v == nil {
		return nil, allocError("create array")
	}
	return v, nil
}

func (f *Factory) Object() (*Value, error) {
	v := f.newValue(KindObject)
	if v == nil {
		return nil, allocError("create object")
	}
	return v, nil
}

// ArrayReference returns a node aliasing target, which must be an array.
// target is not owned by the result and may be attached elsewhere.
func (f *Factory) ArrayReference(target *Value) (*Value, error) {
	return f.reference("create array reference", target, KindArray)
}

// ObjectReference returns a node aliasing target, which must be an object.
func (f *Factory) ObjectReference(target *Value) (*Value, error) {
	return f.reference("create object reference", target, KindObject)
}

func (f *Factory) reference(op string, target *Value, k Kind) (*Value, error) {
	if target == nil {
		return nil, opError(op, ErrNilValue)
	}
	if target.Released() {
		return nil, opError(op, ErrReleased)
	}
	if target.kind != k {
		return nil, opError(op, ErrInvalidKind)
	}
	// Alias the owner so chains of references stay one hop deep.
	for target.flags&flagContainerRef != 0 {
		target = target.target
	}
	v := f.newValue(k)
	if v == nil {
		return nil, allocError(op)
	}
	v.target = target
	v.flags = flagContainerRef
	return v, nil
}

// StringArray returns an array of owned copies of ss.
func (f *Factory) StringArray(ss []string) (*Value, error) {
	arr, err := f.Array()
	if err != nil {
		return nil, err
	}
	for _, s := range ss {
		item, err := f.String(s)
		if err != nil {
			arr.release()
			return nil, err
		}
		arr.link(len(arr.items), item, nil)
	}
	return arr, nil
}

// NumberArray returns an array of numbers.
func (f *Factory) NumberArray(ns []float64) (*Value, error) {
	arr, err := f.Array()
	if err != nil {
		return nil, err
	}
	for _, n := range ns {
		item, err := f.Number(n)
		if err != nil {
			arr.release()
			return nil, err
		}
		arr.link(len(arr.items), item, nil)
	}
	return arr, nil
}

// IntArray returns an array of numbers converted from ints.
func (f *Factory) IntArray(ns []int) (*Value, error) {
	fs := make([]float64, len(ns))
	for i, n := range ns {
		fs[i] = float64(n)
	}
	return f.NumberArray(fs)
}

// Must returns v and panics if err is non-nil. It is intended for building
// fixed documents where allocation cannot fail.
func Must(v *Value, err error) *Value {
	if err != nil {
		panic(err)
	}
	return v
}

func NewNull() (*Value, error)                     { return Default().Null() }
func NewBool(b bool) (*Value, error)               { return Default().Bool(b) }
func NewNumber(n float64) (*Value, error)          { return Default().Number(n) }
func NewString(s string) (*Value, error)           { return Default().String(s) }
func NewRaw(s string) (*Value, error)              { return Default().Raw(s) }
func NewStringReference(s string) (*Value, error)  { return Default().StringReference(s) }
func NewArray() (*Value, error)                    { return Default().Array() }
func NewObject() (*Value, error)                   { return Default().Object() }
func NewArrayReference(t *Value) (*Value, error)   { return Default().ArrayReference(t) }
func NewObjectReference(t *Value) (*Value, error)  { return Default().ObjectReference(t) }
func NewStringArray(ss []string) (*Value, error)   { return Default().StringArray(ss) }
func NewNumberArray(ns []float64) (*Value, error)  { return Default().NumberArray(ns) }
func NewIntArray(ns []int) (*Value, error)         { return Default().IntArray(ns) }
