package node

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *Value {
	t.Helper()
	v, err := Parse(s)
	require.NoError(t, err)
	return v
}

func compact(t *testing.T, v *Value) string {
	t.Helper()
	s, err := PrintUnformatted(v)
	require.NoError(t, err)
	return s
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name  string
		value *Value
		kind  Kind
	}{
		{"null", Must(NewNull()), KindNull},
		{"true", Must(NewBool(true)), KindBool},
		{"number", Must(NewNumber(3)), KindNumber},
		{"string", Must(NewString("x")), KindString},
		{"raw", Must(NewRaw(`{"a":1}`)), KindString},
		{"array", Must(NewArray()), KindArray},
		{"object", Must(NewObject()), KindObject},
		{"nil", nil, KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.kind == KindNull, tt.value.IsNull())
			assert.Equal(t, tt.kind == KindBool, tt.value.IsBool())
			assert.Equal(t, tt.kind == KindNumber, tt.value.IsNumber())
			assert.Equal(t, tt.kind == KindString, tt.value.IsString())
			assert.Equal(t, tt.kind == KindArray, tt.value.IsArray())
			assert.Equal(t, tt.kind == KindObject, tt.value.IsObject())
			assert.Equal(t, tt.kind == KindInvalid, tt.value.IsInvalid())
		})
	}
}

func TestScalarAccessors(t *testing.T) {
	b := Must(NewBool(false))
	assert.True(t, b.IsFalse())
	assert.False(t, b.IsTrue())
	assert.False(t, b.Bool())

	n := Must(NewNumber(42.9))
	assert.Equal(t, 42.9, n.Number())
	assert.Equal(t, 42, n.Int())
	require.NoError(t, n.SetNumber(1e300))
	assert.Equal(t, math.MaxInt, n.Int())
	require.NoError(t, n.SetNumber(-1e300))
	assert.Equal(t, math.MinInt, n.Int())

	s := Must(NewString("hello"))
	assert.Equal(t, "hello", s.Text())
	require.NoError(t, s.SetText("bye"))
	assert.Equal(t, "bye", s.Text())
	assert.Equal(t, `"bye"`, s.String())

	err := s.SetNumber(1)
	assert.ErrorIs(t, err, ErrInvalidKind)
	err = n.SetText("x")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestStringReference(t *testing.T) {
	ref := Must(NewStringReference("borrowed"))
	assert.True(t, ref.IsReference())
	assert.Equal(t, "borrowed", ref.Text())

	err := ref.SetText("other")
	assert.ErrorIs(t, err, ErrReference)
	assert.Equal(t, "borrowed", ref.Text())
	require.NoError(t, ref.Release())
}

func TestRawPrintsVerbatim(t *testing.T) {
	obj := Must(NewObject())
	_, err := obj.AddRaw("pre", `[1, 2]`)
	require.NoError(t, err)
	assert.Equal(t, `{"pre":[1, 2]}`, compact(t, obj))
	assert.True(t, obj.Member("pre").IsRaw())
}

func TestArrayHelpers(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Value, error)
		want  string
	}{
		{"strings", func() (*Value, error) { return NewStringArray([]string{"a", "b"}) }, `["a","b"]`},
		{"numbers", func() (*Value, error) { return NewNumberArray([]float64{1.5, -2}) }, `[1.5,-2]`},
		{"ints", func() (*Value, error) { return NewIntArray([]int{1, 2, 3}) }, `[1,2,3]`},
		{"empty", func() (*Value, error) { return NewIntArray(nil) }, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, compact(t, v))
			require.NoError(t, v.Release())
		})
	}
}

func TestBuildDocument(t *testing.T) {
	root := Must(NewObject())
	_, err := root.AddString("name", "jsontree")
	require.NoError(t, err)
	_, err = root.AddNumber("version", 2)
	require.NoError(t, err)
	_, err = root.AddBool("stable", true)
	require.NoError(t, err)
	_, err = root.AddNull("owner")
	require.NoError(t, err)
	tags, err := root.AddArray("tags")
	require.NoError(t, err)
	require.NoError(t, tags.Append(Must(NewString("json"))))
	meta, err := root.AddObject("meta")
	require.NoError(t, err)
	_, err = meta.AddNumber("size", 0.5)
	require.NoError(t, err)

	assert.Equal(t,
		`{"name":"jsontree","version":2,"stable":true,"owner":null,"tags":["json"],"meta":{"size":0.5}}`,
		compact(t, root))
	assert.True(t, tags.Attached())
	assert.Equal(t, "tags", tags.Key())
	require.NoError(t, root.Release())
}

func TestAddOnWrongKind(t *testing.T) {
	arr := Must(NewArray())
	_, err := arr.AddString("k", "v")
	assert.ErrorIs(t, err, ErrNotObject)

	obj := Must(NewObject())
	err = obj.Append(Must(NewNull()))
	assert.ErrorIs(t, err, ErrNotArray)
	assert.Equal(t, ErrorTypeInvalidOperation, TypeOf(err))
}

func TestInsert(t *testing.T) {
	arr := Must(NewIntArray([]int{1, 3}))

	require.NoError(t, arr.Insert(1, Must(NewNumber(2))))
	require.NoError(t, arr.Insert(0, Must(NewNumber(0))))
	require.NoError(t, arr.Insert(100, Must(NewNumber(4))))
	assert.Equal(t, `[0,1,2,3,4]`, compact(t, arr))

	err := arr.Insert(-1, Must(NewNumber(9)))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, 5, arr.Len())
}

func TestAttachmentGuard(t *testing.T) {
	a := Must(NewArray())
	b := Must(NewArray())
	item := Must(NewString("shared"))

	require.NoError(t, a.Append(item))
	err := b.Append(item)
	assert.ErrorIs(t, err, ErrAttached)
	assert.Equal(t, 0, b.Len())

	obj := Must(NewObject())
	err = obj.AddMember("k", item)
	assert.ErrorIs(t, err, ErrAttached)
	assert.Equal(t, 0, obj.Len())

	err = item.Release()
	assert.ErrorIs(t, err, ErrAttached)
	assert.False(t, item.Released())
}

func TestCycleGuard(t *testing.T) {
	outer := Must(NewArray())
	inner := Must(NewArray())
	require.NoError(t, outer.Append(inner))

	err := outer.Append(outer)
	assert.ErrorIs(t, err, ErrCycle)

	err = inner.Append(outer)
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, 0, inner.Len())
}

func TestReleasedValueRejected(t *testing.T) {
	v := Must(NewString("gone"))
	require.NoError(t, v.Release())
	assert.True(t, v.Released())

	err := v.Release()
	assert.ErrorIs(t, err, ErrReleased)

	arr := Must(NewArray())
	err = arr.Append(v)
	assert.ErrorIs(t, err, ErrReleased)

	_, err = PrintUnformatted(v)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestNavigate(t *testing.T) {
	root := mustParse(t, `{"Name":"a","list":[10,20,30],"name":"b","Name":"c"}`)

	assert.Equal(t, "a", root.Member("Name").Text())
	assert.Equal(t, "b", root.Member("name").Text())
	assert.Nil(t, root.Member("NAME"))
	assert.Equal(t, "a", root.MemberFold("NAME").Text())
	assert.True(t, root.HasMember("list"))
	assert.False(t, root.HasMember("LIST"))
	assert.True(t, root.HasMemberFold("LIST"))

	list := root.Member("list")
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, float64(20), list.Index(1).Number())
	assert.Nil(t, list.Index(3))
	assert.Nil(t, list.Index(-1))
	assert.Nil(t, root.Index(0))
	assert.Nil(t, list.Member("x"))

	var keys []string
	for k := range root.Members() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"Name", "list", "name", "Name"}, keys)

	sum := 0.0
	for i, item := range list.Items() {
		sum += item.Number() * float64(i+1)
	}
	assert.Equal(t, float64(10+40+90), sum)
}

func TestMemberFoldIsASCIIOnly(t *testing.T) {
	root := mustParse(t, `{"ÄBC":1}`)
	assert.NotNil(t, root.MemberFold("Äbc"))
	assert.Nil(t, root.MemberFold("äbc"))
}

func TestDetachAndDelete(t *testing.T) {
	root := mustParse(t, `{"a":1,"b":[true,false],"c":"x","A":2}`)

	a, err := root.DetachMember("a")
	require.NoError(t, err)
	assert.False(t, a.Attached())
	assert.Equal(t, float64(1), a.Number())
	require.NoError(t, a.Release())

	b := root.Member("b")
	first, err := b.DetachIndex(0)
	require.NoError(t, err)
	assert.True(t, first.IsTrue())
	require.NoError(t, first.Release())

	_, err = b.DetachIndex(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	require.NoError(t, root.DeleteMemberFold("C"))
	_, err = root.DetachMember("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	c := root.Member("A")
	require.NoError(t, root.DetachItem(c))
	assert.False(t, c.Attached())
	require.NoError(t, c.Release())

	err = root.DetachItem(c)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.DeleteIndex(0))
	assert.Equal(t, `{"b":[]}`, compact(t, root))
}

func TestReplace(t *testing.T) {
	root := mustParse(t, `{"a":1,"b":[1,2,3]}`)

	require.NoError(t, root.ReplaceMember("a", Must(NewString("one"))))
	require.NoError(t, root.Member("b").ReplaceIndex(1, Must(NewNull())))
	require.NoError(t, root.ReplaceMemberFold("B", Must(NewBool(true))))
	assert.Equal(t, `{"a":"one","b":true}`, compact(t, root))
	assert.Equal(t, "b", root.Member("b").Key())

	old := root.Member("a")
	require.NoError(t, root.ReplaceItem(old, Must(NewNumber(7))))
	assert.True(t, old.Released())
	assert.Equal(t, `{"a":7,"b":true}`, compact(t, root))

	attached := root.Member("b")
	err := root.ReplaceMember("a", attached)
	assert.ErrorIs(t, err, ErrAttached)

	err = root.ReplaceMember("zzz", Must(NewNull()))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `{"a":7,"b":true}`, compact(t, root))
}

func TestContainerReference(t *testing.T) {
	target := Must(NewIntArray([]int{1, 2, 3}))
	owner := Must(NewObject())

	ref := Must(NewArrayReference(target))
	require.NoError(t, owner.AddMember("alias", ref))
	require.NoError(t, owner.AddMemberReference("again", target))

	assert.Equal(t, `{"alias":[1,2,3],"again":[1,2,3]}`, compact(t, owner))
	assert.True(t, ref.IsReference())
	assert.Equal(t, 3, ref.Len())
	assert.Equal(t, float64(2), ref.Index(1).Number())

	err := ref.Append(Must(NewNumber(4)))
	assert.ErrorIs(t, err, ErrReference)

	require.NoError(t, owner.Release())
	assert.False(t, target.Released())
	assert.Equal(t, `[1,2,3]`, compact(t, target))
	require.NoError(t, target.Release())
}

func TestReferenceKindMismatch(t *testing.T) {
	arr := Must(NewArray())
	_, err := NewObjectReference(arr)
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = NewArrayReference(nil)
	assert.ErrorIs(t, err, ErrNilValue)
}

func TestAppendReferenceToScalar(t *testing.T) {
	n := Must(NewNumber(5))
	s := Must(NewString("text"))
	arr := Must(NewArray())

	require.NoError(t, arr.AppendReference(n))
	require.NoError(t, arr.AppendReference(s))
	assert.Equal(t, `[5,"text"]`, compact(t, arr))
	assert.True(t, arr.Index(1).IsReference())

	require.NoError(t, arr.Release())
	assert.False(t, n.Released())
	assert.Equal(t, "text", s.Text())
}

func TestDetachedKeepsOwnershipAfterMove(t *testing.T) {
	root := mustParse(t, `{"a":[1,2,3],"b":"x"}`)

	a, err := root.DetachMember("a")
	require.NoError(t, err)
	dup, err := Duplicate(a, true)
	require.NoError(t, err)
	require.NoError(t, root.AddMember("a_copy", dup))
	require.NoError(t, a.Release())

	assert.Equal(t, `{"b":"x","a_copy":[1,2,3]}`, compact(t, root))
	require.NoError(t, root.Release())
}

func TestMoveBetweenContainers(t *testing.T) {
	src := mustParse(t, `{"k":{"deep":true}}`)
	dst := Must(NewArray())

	moved, err := src.DetachMember("k")
	require.NoError(t, err)
	require.NoError(t, dst.Append(moved))
	assert.Equal(t, "", moved.Key())

	assert.Equal(t, `{}`, compact(t, src))
	assert.Equal(t, `[{"deep":true}]`, compact(t, dst))
}
