// Package transform rewrites document trees according to configuration.
package transform

import (
	"fmt"

	"github.com/mcncl/jsontree/internal/config"
	"github.com/mcncl/jsontree/node"
)

// KeyRewriter renames object members throughout a tree
type KeyRewriter struct {
	cfg *config.Config
	// Renamed counts members whose key changed during the last Rekey.
	Renamed int
	// Skipped counts members dropped during the last Rekey.
	Skipped int
}

// NewKeyRewriter creates a KeyRewriter using the key settings of cfg
func NewKeyRewriter(cfg *config.Config) *KeyRewriter {
	return &KeyRewriter{cfg: cfg}
}

// Rekey returns a copy of root with every member key renamed and skipped
// members removed. root itself is not modified. The copy is built with the
// allocator of root.
func (r *KeyRewriter) Rekey(root *node.Value) (*node.Value, error) {
	if root == nil {
		return nil, fmt.Errorf("rekey: %w", node.ErrNilValue)
	}
	r.Renamed, r.Skipped = 0, 0
	return r.rekey(node.NewFactory(root.Allocator()), root, 0)
}

func (r *KeyRewriter) rekey(f *node.Factory, v *node.Value, depth int) (*node.Value, error) {
	if depth > node.NestingLimit {
		return nil, fmt.Errorf("rekey: %w", node.ErrNestingTooDeep)
	}

	switch {
	case v.IsArray():
		out, err := f.Array()
		if err != nil {
			return nil, err
		}
		for _, item := range v.Items() {
			child, err := r.rekey(f, item, depth+1)
			if err != nil {
				_ = out.Release()
				return nil, err
			}
			if err := out.Append(child); err != nil {
				_ = child.Release()
				_ = out.Release()
				return nil, err
			}
		}
		return out, nil

	case v.IsObject():
		out, err := f.Object()
		if err != nil {
			return nil, err
		}
		for key, member := range v.Members() {
			if r.cfg.ShouldSkipKey(key) {
				r.Skipped++
				continue
			}
			child, err := r.rekey(f, member, depth+1)
			if err != nil {
				_ = out.Release()
				return nil, err
			}
			name := r.cfg.GetKeyName(key)
			if name != key {
				r.Renamed++
			}
			if err := out.AddMember(name, child); err != nil {
				_ = child.Release()
				_ = out.Release()
				return nil, err
			}
		}
		return out, nil
	}

	return node.Duplicate(v, false)
}
