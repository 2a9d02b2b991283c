package node

// Equal reports whether a and b hold the same content. Numbers compare with
// exact float equality, text byte for byte, arrays element by element, and
// objects by member count, a value match for every member of a and a key
// match for every member of b, so member order does not matter. Whether a node is a reference is irrelevant; a raw
// fragment never equals a plain string.
func Equal(a, b *Value, caseSensitive bool) bool {
	return equal(a, b, !caseSensitive, 0)
}

func equal(a, b *Value, fold bool, depth int) bool {
	if a == nil || b == nil || a.Released() || b.Released() {
		return false
	}
	if a.kind != b.kind || a.kind == KindInvalid {
		return false
	}
	if depth > NestingLimit {
		return false
	}
	if a == b {
		return true
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindString:
		return a.IsRaw() == b.IsRaw() && a.Text() == b.Text()
	case KindArray:
		ac, bc := a.children(), b.children()
		if len(ac) != len(bc) {
			return false
		}
		for i := range ac {
			if !equal(ac[i], bc[i], fold, depth+1) {
				return false
			}
		}
		return true
	case KindObject:
		ac, bc := a.children(), b.children()
		if len(ac) != len(bc) {
			return false
		}
		if sameKeyOrder(ac, bc, fold) {
			// Repeated keys pair up by position.
			for i := range ac {
				if !equal(ac[i], bc[i], fold, depth+1) {
					return false
				}
			}
			return true
		}
		return membersIn(ac, b, fold, depth) && keysIn(bc, a, fold)
	}
	return false
}

func sameKeyOrder(ac, bc []*Value, fold bool) bool {
	for i := range ac {
		if !keyMatches(ac[i].key, string(bc[i].key), fold) {
			return false
		}
	}
	return true
}

// membersIn reports whether every member of from has an equal counterpart in
// the object to.
func membersIn(from []*Value, to *Value, fold bool, depth int) bool {
	for _, c := range from {
		other := to.member(string(c.key), fold)
		if other == nil || !equal(c, other, fold, depth+1) {
			return false
		}
	}
	return true
}

// keysIn reports whether every key of from is present in the object to.
// Values were already compared from the other side.
func keysIn(from []*Value, to *Value, fold bool) bool {
	for _, c := range from {
		if to.member(string(c.key), fold) == nil {
			return false
		}
	}
	return true
}
