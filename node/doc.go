// Package node implements an in-memory JSON document tree with explicit
// ownership.
//
// A Value is owned by at most one container. Attaching a value with Append
// or AddMember moves its ownership to the container, and releasing the root
// releases everything it owns. Reference nodes created with StringReference,
// ArrayReference or ObjectReference alias data owned elsewhere and release
// nothing but themselves.
//
// Memory for values, text and print buffers is obtained from an Allocator.
// The process-wide allocator can be replaced once with InitHooks before the
// first value is created; a Factory or ParseOptions.Allocator selects one per
// tree instead.
//
//	root, err := node.Parse(`{"a": [1, 2, 3], "b": "x"}`)
//	if err != nil {
//		return err
//	}
//	defer root.Release()
//	out, err := node.PrintUnformatted(root)
//
// Trees are not safe for concurrent mutation.
package node
