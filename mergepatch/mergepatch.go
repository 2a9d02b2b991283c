// Package mergepatch generates and applies RFC 7396 JSON merge patches over
// node trees.
package mergepatch

import (
	"errors"
	"fmt"

	"github.com/mcncl/jsontree/node"
)

// ErrAttached is returned when Apply is given a target that belongs to a
// container.
var ErrAttached = errors.New("merge patch target must be a document root")

// Apply merges patch into target and returns the resulting document. It takes
// ownership of target, which is either reused as the result or released. A
// nil target is treated as absent. patch is left untouched.
func Apply(target, patch *node.Value) (*node.Value, error) {
	if patch == nil {
		return nil, fmt.Errorf("apply merge patch: %w", node.ErrNilValue)
	}
	if target != nil && target.Attached() {
		return nil, ErrAttached
	}
	return apply(node.NewFactory(patch.Allocator()), target, patch, 0)
}

func apply(f *node.Factory, target, patch *node.Value, depth int) (*node.Value, error) {
	if depth > node.NestingLimit {
		return nil, fmt.Errorf("apply merge patch: %w", node.ErrNestingTooDeep)
	}
	if !patch.IsObject() {
		release(target)
		return node.Duplicate(patch, true)
	}
	if !target.IsObject() {
		release(target)
		obj, err := f.Object()
		if err != nil {
			return nil, err
		}
		target = obj
	}

	for key, change := range patch.Members() {
		if err := merge(f, target, key, change, depth); err != nil {
			release(target)
			return nil, err
		}
	}
	return target, nil
}

// merge applies one patch member to the object target.
func merge(f *node.Factory, target *node.Value, key string, change *node.Value, depth int) error {
	if change.IsNull() {
		if err := target.DeleteMember(key); err != nil && !errors.Is(err, node.ErrNotFound) {
			return err
		}
		return nil
	}

	existing := target.Member(key)
	var base *node.Value
	if existing.IsObject() && change.IsObject() {
		dup, err := node.Duplicate(existing, true)
		if err != nil {
			return err
		}
		base = dup
	}
	merged, err := apply(f, base, change, depth+1)
	if err != nil {
		return err
	}
	if existing != nil {
		err = target.ReplaceMember(key, merged)
	} else {
		err = target.AddMember(key, merged)
	}
	if err != nil {
		release(merged)
	}
	return err
}

func release(v *node.Value) {
	if v != nil && !v.Attached() && !v.Released() {
		_ = v.Release()
	}
}

// Generate returns the merge patch that turns from into to. Identical
// documents yield an empty object. Members of to whose value is null cannot be
// expressed by a merge patch; they are emitted as null, which deletes them.
func Generate(from, to *node.Value) (*node.Value, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("generate merge patch: %w", node.ErrNilValue)
	}
	return generate(node.NewFactory(to.Allocator()), from, to, 0)
}

func generate(f *node.Factory, from, to *node.Value, depth int) (*node.Value, error) {
	if depth > node.NestingLimit {
		return nil, fmt.Errorf("generate merge patch: %w", node.ErrNestingTooDeep)
	}
	if !from.IsObject() || !to.IsObject() {
		return node.Duplicate(to, true)
	}

	patch, err := f.Object()
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*node.Value, error) {
		_ = patch.Release()
		return nil, err
	}

	for key, old := range from.Members() {
		if from.Member(key) != old {
			continue
		}
		cur := to.Member(key)
		if cur == nil {
			if _, err := patch.AddNull(key); err != nil {
				return fail(err)
			}
			continue
		}
		if node.Equal(old, cur, true) {
			continue
		}
		sub, err := generate(f, old, cur, depth+1)
		if err != nil {
			return fail(err)
		}
		if err := patch.AddMember(key, sub); err != nil {
			_ = sub.Release()
			return fail(err)
		}
	}

	for key, cur := range to.Members() {
		if to.Member(key) != cur || from.HasMember(key) {
			continue
		}
		added, err := node.Duplicate(cur, true)
		if err != nil {
			return fail(err)
		}
		if err := patch.AddMember(key, added); err != nil {
			_ = added.Release()
			return fail(err)
		}
	}
	return patch, nil
}
