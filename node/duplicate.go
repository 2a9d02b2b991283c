package node

// Duplicate returns an unattached copy of v owned by the caller, allocated
// through v's allocator.
//
// When recurse is false only v itself is copied: arrays and objects come back
// empty. When recurse is true every descendant is copied, and reference nodes
// become owned snapshots of what they alias.
func Duplicate(v *Value, recurse bool) (*Value, error) {
	if v == nil {
		return nil, opError("duplicate", ErrNilValue)
	}
	if v.Released() {
		return nil, opError("duplicate", ErrReleased)
	}
	return duplicate(&Factory{alloc: v.Allocator()}, v, recurse)
}

func duplicate(f *Factory, v *Value, recurse bool) (*Value, error) {
	return duplicateDepth(f, v, recurse, 0)
}

func duplicateDepth(f *Factory, v *Value, recurse bool, depth int) (*Value, error) {
	if depth > NestingLimit {
		return nil, opError("duplicate", ErrNestingTooDeep)
	}
	var (
		out *Value
		err error
	)
	switch v.kind {
	case KindNull:
		out, err = f.Null()
	case KindBool:
		out, err = f.Bool(v.boolean)
	case KindNumber:
		out, err = f.Number(v.number)
	case KindString:
		out, err = f.text("duplicate", v.Text(), v.flags&flagRaw)
	case KindArray:
		out, err = f.Array()
	case KindObject:
		out, err = f.Object()
	default:
		return nil, opError("duplicate", ErrInvalidKind)
	}
	if err != nil {
		return nil, err
	}
	if !recurse || (v.kind != KindArray && v.kind != KindObject) {
		return out, nil
	}

	for _, c := range v.children() {
		cc, err := duplicateDepth(f, c, true, depth+1)
		if err != nil {
			out.release()
			return nil, err
		}
		var key []byte
		if v.kind == KindObject {
			key, err = copyText(f.alloc, string(c.key))
			if err != nil {
				cc.release()
				out.release()
				return nil, allocError("duplicate")
			}
		}
		out.link(len(out.items), cc, key)
	}
	return out, nil
}
