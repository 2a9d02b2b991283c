package parser

import (
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/mcncl/jsontree/internal/config"
	"github.com/mcncl/jsontree/internal/errors"
	"github.com/mcncl/jsontree/node"
)

func TestParse_SimpleObject(t *testing.T) {
	jsonStr := `{"name": "John Doe", "age": 30, "isStudent": false, "city": null}`
	doc, err := Parse(strings.NewReader(jsonStr), "reader", DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}
	defer doc.Release()

	if !doc.Root.IsObject() {
		t.Fatalf("Parse() root kind = %v, want object", doc.Root.Kind())
	}
	if doc.Source != "reader" || doc.Size != len(jsonStr) {
		t.Errorf("Parse() source/size = %q/%d, want reader/%d", doc.Source, doc.Size, len(jsonStr))
	}

	want := `{"name":"John Doe","age":30,"isStudent":false,"city":null}`
	if got := doc.Root.String(); got != want {
		t.Errorf("Parse() root = %s, want %s", got, want)
	}
}

func TestParse_NestedObject(t *testing.T) {
	jsonStr := `{"user": {"name": "Jane Doe", "id": 123}, "active": true, "tags": ["go", "json"]}`
	doc, err := ParseString(jsonStr, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseString() error = %v, wantErr nil", err)
	}

	user := doc.Root.Member("user")
	if user == nil || user.Member("id").Number() != 123 {
		t.Errorf("ParseString() user = %v, want id 123", user)
	}
	if doc.Root.Member("tags").Len() != 2 {
		t.Errorf("ParseString() tags len = %d, want 2", doc.Root.Member("tags").Len())
	}

	doc.Release()
	if live := doc.Alloc.Stats().LiveValues; live != 0 {
		t.Errorf("live values after release = %d, want 0", live)
	}
	// Second release is a no-op
	doc.Release()
}

func TestParse_RootPrimitives(t *testing.T) {
	testCases := []struct {
		name     string
		jsonStr  string
		wantKind node.Kind
	}{
		{"RootString", `"hello world"`, node.KindString},
		{"RootNumber", `123.45`, node.KindNumber},
		{"RootBooleanTrue", `true`, node.KindBool},
		{"RootNull", `null`, node.KindNull},
		{"RootArray", `[1, "test", true, null, 3.14]`, node.KindArray},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := ParseString(tc.jsonStr, DefaultOptions())
			if err != nil {
				t.Fatalf("ParseString() error = %v, wantErr nil for %s", err, tc.name)
			}
			if doc.Root.Kind() != tc.wantKind {
				t.Errorf("ParseString() kind = %v, want %v for %s", doc.Root.Kind(), tc.wantKind, tc.name)
			}
		})
	}
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := ParseString(input, DefaultOptions())
		if err == nil {
			t.Errorf("ParseString(%q) err = nil, want error", input)
			continue
		}
		if !stderrors.Is(err, errors.ErrEmptyInput) {
			t.Errorf("ParseString(%q) err = %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	testCases := []struct {
		name       string
		jsonStr    string
		wantReason node.Reason
		wantOffset int
	}{
		{"missing closing brace", `{"name": "John Doe", "age": 30`, node.ReasonUnexpectedEnd, 30},
		{"missing closing bracket", `["item1", "item2",`, node.ReasonUnexpectedEnd, 18},
		{"comment without allow", `{"a": 1 // note` + "\n}", node.ReasonUnexpectedToken, 8},
		{"trailing value", `{} {}`, node.ReasonTrailingData, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.jsonStr, DefaultOptions())
			if err == nil {
				t.Fatalf("ParseString() err = nil, want error")
			}
			var appErr *errors.AppError
			if !stderrors.As(err, &appErr) || appErr.Type != errors.ErrorTypeParsing {
				t.Fatalf("ParseString() err = %v, want parsing AppError", err)
			}
			var pe *node.ParseError
			if !stderrors.As(err, &pe) {
				t.Fatalf("ParseString() err = %v, want *node.ParseError inside", err)
			}
			if pe.Reason != tc.wantReason || pe.Offset != tc.wantOffset {
				t.Errorf("ParseError = %v at %d, want %v at %d", pe.Reason, pe.Offset, tc.wantReason, tc.wantOffset)
			}
		})
	}
}

func TestParse_LenientTrailingData(t *testing.T) {
	opts := DefaultOptions()
	opts.Strict = false
	doc, err := ParseString(`{"a":1} trailing`, opts)
	if err != nil {
		t.Fatalf("ParseString() error = %v, wantErr nil", err)
	}
	if got := doc.Root.String(); got != `{"a":1}` {
		t.Errorf("root = %s, want {\"a\":1}", got)
	}
}

func TestParse_AllowComments(t *testing.T) {
	input := `{
	// the user
	"name": "a // not a comment", /* inline */
	"n": 1
}`
	opts := DefaultOptions()
	opts.AllowComments = true
	doc, err := ParseString(input, opts)
	if err != nil {
		t.Fatalf("ParseString() error = %v, wantErr nil", err)
	}
	want := `{"name":"a // not a comment","n":1}`
	if got := doc.Root.String(); got != want {
		t.Errorf("root = %s, want %s", got, want)
	}

	_, err = ParseString("/* nothing */", opts)
	if !stderrors.Is(err, errors.ErrEmptyInput) {
		t.Errorf("comment-only input err = %v, want ErrEmptyInput", err)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 2
	if _, err := ParseString(`[[1]]`, opts); err != nil {
		t.Fatalf("depth 2 error = %v, want nil", err)
	}
	_, err := ParseString(`[[[1]]]`, opts)
	var pe *node.ParseError
	if !stderrors.As(err, &pe) || pe.Reason != node.ReasonNestingTooDeep {
		t.Errorf("depth 3 err = %v, want nesting too deep", err)
	}
}

func TestParse_MemoryLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxMemory = 64
	_, err := ParseString(`{"a":[1,2,3,4,5,6,7,8,9,10],"b":"a long enough string value"}`, opts)
	if err == nil {
		t.Fatalf("ParseString() err = nil, want allocation failure")
	}
	if node.TypeOf(err) != node.ErrorTypeAllocation {
		t.Errorf("ParseString() err type = %v, want allocation (%v)", node.TypeOf(err), err)
	}

	opts.MaxMemory = 1 << 20
	if _, err := ParseString(`{"a":[1,2,3]}`, opts); err != nil {
		t.Errorf("ParseString() with 1MiB budget err = %v, want nil", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Parse.AllowComments = true
	cfg.Parse.MaxDepth = 10
	cfg.Limits.MaxMemory = "1KiB"

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig() error = %v", err)
	}
	want := Options{Strict: true, AllowComments: true, MaxDepth: 10, MaxMemory: 1024}
	if opts != want {
		t.Errorf("OptionsFromConfig() = %+v, want %+v", opts, want)
	}

	cfg.Limits.MaxMemory = "plenty"
	if _, err := OptionsFromConfig(cfg); !stderrors.Is(err, errors.ErrInvalidSize) {
		t.Errorf("OptionsFromConfig() err = %v, want ErrInvalidSize", err)
	}
}

func TestParseFile_SimpleObject(t *testing.T) {
	content := `{"product": "Laptop", "price": 1200.50}`
	tmpfile, err := os.CreateTemp("", "test_simple_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }() // clean up

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	doc, err := ParseFile(tmpfile.Name(), DefaultOptions())
	if err != nil {
		t.Fatalf("ParseFile() error = %v, wantErr nil", err)
	}
	if doc.Source != tmpfile.Name() {
		t.Errorf("ParseFile() source = %q, want %q", doc.Source, tmpfile.Name())
	}
	if got := doc.Root.Member("price").Number(); got != 1200.5 {
		t.Errorf("ParseFile() price = %v, want 1200.5", got)
	}
}

func TestParseFile_Errors(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_empty_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()
	_ = tmpfile.Close()

	testCases := []struct {
		name string
		path string
		want error
	}{
		{"non-existent file", "nonexistentfile.json", errors.ErrFileNotFound},
		{"empty path", "", errors.ErrInvalidFilePath},
		{"empty file", tmpfile.Name(), errors.ErrFileEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFile(tc.path, DefaultOptions())
			if !stderrors.Is(err, tc.want) {
				t.Errorf("ParseFile(%q) err = %v, want %v", tc.path, err, tc.want)
			}
		})
	}
}

func TestOpen_Stdin(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	go func() {
		_, _ = w.WriteString(`[true]`)
		_ = w.Close()
	}()
	defer func() { _ = r.Close() }()

	doc, err := Open("-", r, DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v, wantErr nil", err)
	}
	if doc.Source != "stdin" || !doc.Root.Index(0).IsTrue() {
		t.Errorf("Open() = %s from %s, want [true] from stdin", doc.Root, doc.Source)
	}
}
