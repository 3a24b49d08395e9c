package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/wisp/lang/compiler"
	"github.com/mna/wisp/lang/value"
)

func compile(t *testing.T, source string) (*value.Function, error) {
	t.Helper()
	return compiler.Compile(source, value.NewInterner())
}

func TestCompileSimpleScript(t *testing.T) {
	fn, err := compile(t, `print 1 + 1;`)
	require.NoError(t, err)
	assert.Equal(t, "<script>", fn.String())
	assert.Greater(t, fn.Chunk.Len(), 0)
}

func TestShadowingInSameScopeIsError(t *testing.T) {
	_, err := compile(t, `
{
  var a = 1;
  var a = 2;
}
`)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Contains(t, list.Error(), "Already a variable with this name in this scope.")
}

func TestReadLocalInOwnInitializerIsError(t *testing.T) {
	_, err := compile(t, `
{
  var a = a;
}
`)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Contains(t, list.Error(), "Can't read local variable in its own initializer.")
}

func TestReturnOutsideFunctionIsError(t *testing.T) {
	_, err := compile(t, `return 1;`)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Contains(t, list.Error(), "Can't return from top-level code.")
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	_, err := compile(t, `break;`)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Contains(t, list.Error(), "Can't use 'break' outside of a loop.")
}

func TestSuperOutsideClassIsError(t *testing.T) {
	_, err := compile(t, `
fun f() { super.x(); }
`)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Contains(t, list.Error(), "Can't use 'super' outside of a class.")
}

func TestMultipleErrorsAreAllReported(t *testing.T) {
	_, err := compile(t, `
var a = ;
var b = ;
`)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list, 2)
}

func TestClosureOverMultipleScopes(t *testing.T) {
	fn, err := compile(t, `
fun outer() {
  var x = 1;
  fun middle() {
    fun inner() {
      return x;
    }
    return inner;
  }
  return middle;
}
`)
	require.NoError(t, err)
	assert.NotNil(t, fn)
}
