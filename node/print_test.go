package node

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestPrintFormatted(t *testing.T) {
	v := mustParse(t, `{"a":[1,2,3],"b":"x","c":{},"d":[],"e":{"f":null}}`)

	out, err := Print(v)
	require.NoError(t, err)
	want := "{\n" +
		"\t\"a\": [\n\t\t1,\n\t\t2,\n\t\t3\n\t],\n" +
		"\t\"b\": \"x\",\n" +
		"\t\"c\": {},\n" +
		"\t\"d\": [],\n" +
		"\t\"e\": {\n\t\t\"f\": null\n\t}\n" +
		"}"
	assert.Equal(t, want, out)
}

func TestPrintUnformatted(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"scalar", ` true `, `true`},
		{"object", `{ "a" : 1 , "b" : [ null , false ] }`, `{"a":1,"b":[null,false]}`},
		{"escapes", `"q\"b\\s\/n\nt\tc\u0001"`, `"q\"b\\s/n\nt\tc\u0001"`},
		{"unicode kept", `"é😀"`, `"é😀"`},
		{"nested empty", `[[],{},[{}]]`, `[[],{},[{}]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compact(t, mustParse(t, tt.input)))
		})
	}
}

func TestAppendNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "-0"},
		{1, "1"},
		{-42, "-42"},
		{1.5, "1.5"},
		{3.14, "3.14"},
		{0.1, "0.1"},
		{123456789012, "123456789012"},
		{9007199254740993, "9007199254740992"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{-2.5e-10, "-2.5e-10"},
		{1.7976931348623157e308, "1.7976931348623157e+308"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendNumber(nil, tt.in)))
		})
	}
}

func TestNumbersRoundTrip(t *testing.T) {
	for _, f := range []float64{0.1, 1.0 / 3, 2.5e-300, 6.02214076e23, -1e-7, 12345.678} {
		v := Must(NewNumber(f))
		out := compact(t, v)
		back := mustParse(t, out)
		assert.Equal(t, f, back.Number(), out)
	}
}

func TestRoundTrip(t *testing.T) {
	docs := []string{
		`{"a":[1,2,3],"b":"x"}`,
		`[null,true,false,-0.5,1e+100,"\u0000\u001f",{"":""}]`,
		`{"k":{"k":{"k":[[[]]]}},"k2":"dup","k2":"again"}`,
	}

	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			v := mustParse(t, doc)
			for _, formatted := range []bool{false, true} {
				out, err := PrintBuffered(v, 1, formatted)
				require.NoError(t, err)
				back := mustParse(t, out)
				assert.True(t, Equal(v, back, true), out)
			}
		})
	}
}

func TestPrintBuffered(t *testing.T) {
	v := mustParse(t, `{"list":["`+strings.Repeat("y", 1000)+`"]}`)

	for _, hint := range []int{0, 1, 16, 256, 4096} {
		out, err := PrintBuffered(v, hint, false)
		require.NoError(t, err)
		assert.Len(t, out, 1000+13)
	}

	_, err := PrintBuffered(v, -1, false)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPrintBufferedReleasesGrowthBuffers(t *testing.T) {
	c := NewCountingAllocator(nil)
	v, _, err := ParseWithOptions(`["`+strings.Repeat("z", 2000)+`"]`, ParseOptions{Allocator: c})
	require.NoError(t, err)
	before := c.Stats()

	_, err = PrintBuffered(v, 8, true)
	require.NoError(t, err)
	after := c.Stats()
	assert.Equal(t, before.LiveBytes, after.LiveBytes)
	assert.Greater(t, after.TotalBytes, before.TotalBytes)
}

func TestPrintPreallocated(t *testing.T) {
	v := mustParse(t, `[1,2,3]`)

	t.Run("too small", func(t *testing.T) {
		backing := bytes.Repeat([]byte{0xAA}, 16)
		_, err := PrintPreallocated(v, backing[:5], false)
		assert.ErrorIs(t, err, ErrBufferTooSmall)
		assert.Equal(t, ErrorTypeBufferTooSmall, TypeOf(err))
		assert.Equal(t, bytes.Repeat([]byte{0xAA}, 11), backing[5:])
	})

	t.Run("exact fit", func(t *testing.T) {
		backing := bytes.Repeat([]byte{0xAA}, 16)
		n, err := PrintPreallocated(v, backing[:7], false)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		assert.Equal(t, "[1,2,3]", string(backing[:7]))
		assert.Equal(t, byte(0xAA), backing[7])
	})

	t.Run("room for terminator", func(t *testing.T) {
		buf := bytes.Repeat([]byte{0xAA}, 10)
		n, err := PrintPreallocated(v, buf, false)
		require.NoError(t, err)
		assert.Equal(t, "[1,2,3]", string(buf[:n]))
		assert.Equal(t, byte(0), buf[n])
	})

	t.Run("formatted", func(t *testing.T) {
		buf := make([]byte, 64)
		n, err := PrintPreallocated(v, buf, true)
		require.NoError(t, err)
		assert.Equal(t, "[\n\t1,\n\t2,\n\t3\n]", string(buf[:n]))
	})

	t.Run("empty buffer", func(t *testing.T) {
		_, err := PrintPreallocated(v, nil, false)
		assert.ErrorIs(t, err, ErrBufferTooSmall)
	})
}

func TestPrintNil(t *testing.T) {
	_, err := Print(nil)
	assert.ErrorIs(t, err, ErrNilValue)
	_, err = PrintPreallocated(nil, make([]byte, 8), false)
	assert.ErrorIs(t, err, ErrNilValue)
	assert.Equal(t, "", (*Value)(nil).String())
}

// TestPrintReadableByGJSON queries rendered output with an independent reader.
func TestPrintReadableByGJSON(t *testing.T) {
	root := Must(NewObject())
	_, err := root.AddString("name", "tab\there \"quoted\"")
	require.NoError(t, err)
	nums, err := root.AddArray("nums")
	require.NoError(t, err)
	for _, f := range []float64{1, 2.5, -1e-9} {
		require.NoError(t, nums.Append(Must(NewNumber(f))))
	}
	_, err = root.AddRaw("raw", `{"pre":"rendered"}`)
	require.NoError(t, err)

	for _, formatted := range []bool{false, true} {
		out, err := PrintBuffered(root, 0, formatted)
		require.NoError(t, err)
		require.True(t, gjson.Valid(out), out)

		assert.Equal(t, "tab\there \"quoted\"", gjson.Get(out, "name").String())
		assert.Equal(t, int64(3), gjson.Get(out, "nums.#").Int())
		assert.Equal(t, 2.5, gjson.Get(out, "nums.1").Float())
		assert.Equal(t, -1e-9, gjson.Get(out, "nums.2").Float())
		assert.Equal(t, "rendered", gjson.Get(out, "raw.pre").String())
	}
}
