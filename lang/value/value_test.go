package value_test

import (
	"testing"

	"github.com/mna/wisp/lang/value"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.False(t, value.Null.Truthy())
	require.False(t, value.Bool(false).Truthy())
	require.True(t, value.Bool(true).Truthy())
	require.True(t, value.Number(0).Truthy())
	require.True(t, value.Obj(value.NewString("")).Truthy())
}

func TestEqual(t *testing.T) {
	require.True(t, value.Equal(value.Null, value.Null))
	require.False(t, value.Equal(value.Null, value.Bool(false)))
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))

	s1 := value.NewString("abc")
	s2 := value.NewString("abc")
	// distinct allocations with equal content are NOT equal by this raw
	// reference check unless interned to the same object - interning is
	// the Interner's job, not Equal's.
	require.False(t, value.Equal(value.Obj(s1), value.Obj(s2)))
	require.True(t, value.Equal(value.Obj(s1), value.Obj(s1)))
}

func TestArrayString(t *testing.T) {
	arr := value.NewArray([]value.Value{
		value.Number(10),
		value.Obj(value.NewString("hi")),
	})
	require.Equal(t, `{10, "hi"}`, arr.String())
}

func TestInstanceString(t *testing.T) {
	class := value.NewClass(value.NewString("Point"))
	inst := value.NewInstance(class)
	inst.Fields.Set(value.NewString("x"), value.Number(1))
	require.Equal(t, "{x: 1}", inst.String())
}

func TestUpvalueCloses(t *testing.T) {
	slot := value.Number(42)
	up := value.NewOpenUpvalue(&slot)
	require.Equal(t, value.Number(42), *up.Location)
	slot = value.Number(43)
	require.Equal(t, value.Number(43), *up.Location)
	up.Close()
	slot = value.Number(44)
	require.Equal(t, value.Number(43), *up.Location)
}
