package node

// link places item at position i among v's children and makes v its parent.
func (v *Value) link(i int, item *Value, key []byte) {
	item.parent = v
	item.key = key
	v.items = append(v.items, nil)
	copy(v.items[i+1:], v.items[i:])
	v.items[i] = item
}

// unlink removes the child at position i and returns it unattached. The key
// is kept so callers can still read it.
func (v *Value) unlink(i int) *Value {
	item := v.items[i]
	copy(v.items[i:], v.items[i+1:])
	v.items[len(v.items)-1] = nil
	v.items = v.items[:len(v.items)-1]
	item.parent = nil
	return item
}

// checkMutable verifies v is a live, owning container of kind want.
func (v *Value) checkMutable(op string, want Kind) error {
	if v == nil {
		return opError(op, ErrNilValue)
	}
	if v.Released() {
		return opError(op, ErrReleased)
	}
	if v.kind != want {
		if want == KindArray {
			return opError(op, ErrNotArray)
		}
		return opError(op, ErrNotObject)
	}
	if v.flags&flagContainerRef != 0 {
		return opError(op, ErrReference)
	}
	return nil
}

// checkContainer is checkMutable for operations accepting either container kind.
func (v *Value) checkContainer(op string) error {
	if v.IsObject() {
		return v.checkMutable(op, KindObject)
	}
	return v.checkMutable(op, KindArray)
}

// checkItem verifies item may be attached beneath v.
func (v *Value) checkItem(op string, item *Value) error {
	if item == nil {
		return opError(op, ErrNilValue)
	}
	if item.Released() {
		return opError(op, ErrReleased)
	}
	if item.parent != nil {
		return opError(op, ErrAttached)
	}
	for p := v; p != nil; p = p.parent {
		if p == item {
			return opError(op, ErrCycle)
		}
	}
	return nil
}

// Append adds item at the end of the array v. Ownership of item moves to v.
func (v *Value) Append(item *Value) error {
	if err := v.checkMutable("append", KindArray); err != nil {
		return err
	}
	if err := v.checkItem("append", item); err != nil {
		return err
	}
	freeText(item.Allocator(), item.key)
	v.link(len(v.items), item, nil)
	return nil
}

// Insert adds item at position i of the array v, shifting later elements.
// Positions past the end append.
func (v *Value) Insert(i int, item *Value) error {
	if err := v.checkMutable("insert", KindArray); err != nil {
		return err
	}
	if i < 0 {
		return opError("insert", ErrIndexOutOfRange)
	}
	if err := v.checkItem("insert", item); err != nil {
		return err
	}
	if i > len(v.items) {
		i = len(v.items)
	}
	freeText(item.Allocator(), item.key)
	v.link(i, item, nil)
	return nil
}

// AddMember appends item to the object v under key. Existing members with
// the same key are kept; lookups return the first match.
func (v *Value) AddMember(key string, item *Value) error {
	if err := v.checkMutable("add member", KindObject); err != nil {
		return err
	}
	if err := v.checkItem("add member", item); err != nil {
		return err
	}
	k, err := copyText(item.Allocator(), key)
	if err != nil {
		return allocError("add member")
	}
	freeText(item.Allocator(), item.key)
	v.link(len(v.items), item, k)
	return nil
}

// reference builds a non-owning node standing for target.
func reference(f *Factory, target *Value) (*Value, error) {
	switch {
	case target == nil:
		return nil, opError("create reference", ErrNilValue)
	case target.IsArray():
		return f.ArrayReference(target)
	case target.IsObject():
		return f.ObjectReference(target)
	case target.IsString():
		ref, err := f.StringReference(target.Text())
		if err != nil {
			return nil, err
		}
		ref.flags |= target.flags & flagRaw
		return ref, nil
	}
	// Scalars carry no storage worth aliasing.
	return duplicate(f, target, false)
}

// AppendReference appends a reference to target. target is not owned by v
// and is unaffected when v is released.
func (v *Value) AppendReference(target *Value) error {
	if err := v.checkMutable("append reference", KindArray); err != nil {
		return err
	}
	ref, err := reference(&Factory{alloc: v.Allocator()}, target)
	if err != nil {
		return err
	}
	v.link(len(v.items), ref, nil)
	return nil
}

// AddMemberReference adds a reference to target under key.
func (v *Value) AddMemberReference(key string, target *Value) error {
	if err := v.checkMutable("add member reference", KindObject); err != nil {
		return err
	}
	ref, err := reference(&Factory{alloc: v.Allocator()}, target)
	if err != nil {
		return err
	}
	if err := v.AddMember(key, ref); err != nil {
		ref.release()
		return err
	}
	return nil
}

func (v *Value) addCreated(op, key string, create func(*Factory) (*Value, error)) (*Value, error) {
	if err := v.checkMutable(op, KindObject); err != nil {
		return nil, err
	}
	item, err := create(&Factory{alloc: v.Allocator()})
	if err != nil {
		return nil, err
	}
	if err := v.AddMember(key, item); err != nil {
		item.release()
		return nil, err
	}
	return item, nil
}

func (v *Value) AddNull(key string) (*Value, error) {
	return v.addCreated("add null", key, (*Factory).Null)
}

func (v *Value) AddBool(key string, b bool) (*Value, error) {
	return v.addCreated("add bool", key, func(f *Factory) (*Value, error) { return f.Bool(b) })
}

func (v *Value) AddNumber(key string, n float64) (*Value, error) {
	return v.addCreated("add number", key, func(f *Factory) (*Value, error) { return f.Number(n) })
}

func (v *Value) AddString(key, s string) (*Value, error) {
	return v.addCreated("add string", key, func(f *Factory) (*Value, error) { return f.String(s) })
}

func (v *Value) AddRaw(key, raw string) (*Value, error) {
	return v.addCreated("add raw", key, func(f *Factory) (*Value, error) { return f.Raw(raw) })
}

func (v *Value) AddObject(key string) (*Value, error) {
	return v.addCreated("add object", key, (*Factory).Object)
}

func (v *Value) AddArray(key string) (*Value, error) {
	return v.addCreated("add array", key, (*Factory).Array)
}

// DetachIndex removes the element at i from the array v and returns it. The
// caller owns the result.
func (v *Value) DetachIndex(i int) (*Value, error) {
	if err := v.checkMutable("detach index", KindArray); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(v.items) {
		return nil, opError("detach index", ErrIndexOutOfRange)
	}
	return v.unlink(i), nil
}

// DetachMember removes the first member named key from the object v.
func (v *Value) DetachMember(key string) (*Value, error) {
	return v.detachMember("detach member", key, false)
}

// DetachMemberFold is DetachMember with ASCII case-insensitive matching.
func (v *Value) DetachMemberFold(key string) (*Value, error) {
	return v.detachMember("detach member", key, true)
}

func (v *Value) detachMember(op, key string, fold bool) (*Value, error) {
	if err := v.checkMutable(op, KindObject); err != nil {
		return nil, err
	}
	i := v.indexOf(key, fold)
	if i < 0 {
		return nil, opError(op, ErrNotFound)
	}
	return v.unlink(i), nil
}

// DetachItem removes child from v, which must be its parent.
func (v *Value) DetachItem(child *Value) error {
	if err := v.checkContainer("detach item"); err != nil {
		return err
	}
	i := v.position(child)
	if i < 0 {
		return opError("detach item", ErrNotFound)
	}
	v.unlink(i)
	return nil
}

// DeleteIndex detaches and releases the element at i.
func (v *Value) DeleteIndex(i int) error {
	item, err := v.DetachIndex(i)
	if err != nil {
		return err
	}
	item.release()
	return nil
}

// DeleteMember detaches and releases the first member named key.
func (v *Value) DeleteMember(key string) error {
	item, err := v.detachMember("delete member", key, false)
	if err != nil {
		return err
	}
	item.release()
	return nil
}

// DeleteMemberFold is DeleteMember with ASCII case-insensitive matching.
func (v *Value) DeleteMemberFold(key string) error {
	item, err := v.detachMember("delete member", key, true)
	if err != nil {
		return err
	}
	item.release()
	return nil
}

// ReplaceIndex releases the element at i and puts item in its place.
func (v *Value) ReplaceIndex(i int, item *Value) error {
	if err := v.checkMutable("replace index", KindArray); err != nil {
		return err
	}
	if i < 0 || i >= len(v.items) {
		return opError("replace index", ErrIndexOutOfRange)
	}
	return v.replaceAt("replace index", i, item)
}

// ReplaceMember releases the first member named key and puts item in its
// place under the same key.
func (v *Value) ReplaceMember(key string, item *Value) error {
	return v.replaceMember("replace member", key, item, false)
}

// ReplaceMemberFold is ReplaceMember with ASCII case-insensitive matching.
// The replacement takes the key as it is stored in v.
func (v *Value) ReplaceMemberFold(key string, item *Value) error {
	return v.replaceMember("replace member", key, item, true)
}

func (v *Value) replaceMember(op, key string, item *Value, fold bool) error {
	if err := v.checkMutable(op, KindObject); err != nil {
		return err
	}
	i := v.indexOf(key, fold)
	if i < 0 {
		return opError(op, ErrNotFound)
	}
	return v.replaceAt(op, i, item)
}

// ReplaceItem releases child, which must belong to v, and puts item in its
// place.
func (v *Value) ReplaceItem(child, item *Value) error {
	if err := v.checkContainer("replace item"); err != nil {
		return err
	}
	i := v.position(child)
	if i < 0 {
		return opError("replace item", ErrNotFound)
	}
	return v.replaceAt("replace item", i, item)
}

func (v *Value) replaceAt(op string, i int, item *Value) error {
	old := v.items[i]
	if old == item {
		return nil
	}
	if err := v.checkItem(op, item); err != nil {
		return err
	}
	var key []byte
	if v.kind == KindObject {
		k, err := copyText(item.Allocator(), string(old.key))
		if err != nil {
			return allocError(op)
		}
		key = k
	}
	freeText(item.Allocator(), item.key)
	item.key = key
	item.parent = v
	v.items[i] = item
	old.parent = nil
	old.release()
	return nil
}

// Release frees v and everything it owns. Reference nodes free only
// themselves. Attached values must be detached first.
func (v *Value) Release() error {
	if v == nil {
		return opError("release", ErrNilValue)
	}
	if v.Released() {
		return opError("release", ErrReleased)
	}
	if v.parent != nil {
		return opError("release", ErrAttached)
	}
	v.release()
	return nil
}

func (v *Value) release() {
	a := v.Allocator()
	if v.flags&flagContainerRef == 0 {
		for _, c := range v.items {
			c.parent = nil
			c.release()
		}
	}
	if v.flags&flagStringRef == 0 {
		freeText(a, v.text)
	}
	freeText(a, v.key)
	*v = Value{flags: flagReleased, alloc: a}
	a.FreeValue(v)
}
