package models

import "github.com/mcncl/jsontree/node"

// Document is a parsed JSON input together with where it came from.
type Document struct {
	Root   *node.Value
	Source string // file path, "stdin" or "string"
	Size   int    // input length in bytes
	// Alloc tracks every allocation made for Root. It is nil when the
	// document was built without accounting.
	Alloc *node.CountingAllocator
}

// Release frees the document tree. It is safe to call more than once.
func (d *Document) Release() {
	if d == nil || d.Root == nil || d.Root.Released() {
		return
	}
	_ = d.Root.Release()
}

// Stats summarizes the shape of a document.
type Stats struct {
	Values        int            `json:"values" yaml:"values"`
	Kinds         map[string]int `json:"kinds" yaml:"kinds"`
	MaxDepth      int            `json:"max_depth" yaml:"max_depth"`
	LongestArray  int            `json:"longest_array" yaml:"longest_array"`
	LargestObject int            `json:"largest_object" yaml:"largest_object"`
	TextBytes     int            `json:"text_bytes" yaml:"text_bytes"`
	// StringFormats counts string values recognised as a well-known format
	// such as "uuid" or "date-time".
	StringFormats map[string]int `json:"string_formats" yaml:"string_formats"`
	// DuplicateKeys lists JSON pointers of members whose key already
	// appeared earlier in the same object.
	DuplicateKeys []string `json:"duplicate_keys" yaml:"duplicate_keys"`
}
