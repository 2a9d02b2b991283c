package node

import (
	gojson "github.com/goccy/go-json"
)

// FromGo builds a tree from any Go value that encodes to JSON.
func FromGo(v any) (*Value, error) {
	return Default().FromGo(v)
}

// FromGo encodes v with go-json and parses the result through f's allocator.
func (f *Factory) FromGo(v any) (*Value, error) {
	data, err := gojson.Marshal(v)
	if err != nil {
		return nil, &Error{Type: ErrorTypeInvalidOperation, Op: "from go", Err: err}
	}
	out, _, err := ParseWithLengthOptions(data, len(data), ParseOptions{
		RequireNullTerminated: true,
		Allocator:             f.alloc,
	})
	return out, err
}

// ToGo converts v to plain Go values: nil, bool, float64, string, []any and
// map[string]any. The first of several equal keys wins. Raw fragments become
// go-json RawMessage values.
func (v *Value) ToGo() any {
	return toGo(v, 0)
}

func toGo(v *Value, depth int) any {
	if v == nil || v.Released() || depth > NestingLimit {
		return nil
	}
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		return v.number
	case KindString:
		if v.IsRaw() {
			return gojson.RawMessage(v.Text())
		}
		return v.Text()
	case KindArray:
		items := v.children()
		out := make([]any, 0, len(items))
		for _, c := range items {
			out = append(out, toGo(c, depth+1))
		}
		return out
	case KindObject:
		items := v.children()
		out := make(map[string]any, len(items))
		for _, c := range items {
			k := string(c.key)
			if _, ok := out[k]; ok {
				continue
			}
			out[k] = toGo(c, depth+1)
		}
		return out
	}
	return nil
}

// MarshalJSON renders v compactly.
func (v *Value) MarshalJSON() ([]byte, error) {
	s, err := PrintUnformatted(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
