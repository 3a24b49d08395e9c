package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/wisp/lang/compiler"
	"github.com/mna/wisp/lang/value"
	"github.com/mna/wisp/lang/vm"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	interner := value.NewInterner()
	fn, err := compiler.Compile(source, interner)
	require.NoError(t, err, "compile")

	var out bytes.Buffer
	m := vm.New(interner, &out, &out)
	m.RegisterStdlib()
	_, runErr := m.Interpret(fn)
	return out.String(), runErr
}

func TestArithmeticAndPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3 - 4 / 2;`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestStringConcatenationIsStrict(t *testing.T) {
	out, err := run(t, `print "a" + "b";`)
	require.NoError(t, err)
	assert.Equal(t, "ab\n", out)

	_, err = run(t, `print "a" + 1;`)
	require.Error(t, err)
}

func TestCompoundAssignment(t *testing.T) {
	out, err := run(t, `
var x = 10;
x += 5;
x *= 2;
print x;
`)
	require.NoError(t, err)
	assert.Equal(t, "30\n", out)
}

func TestClosureCapture(t *testing.T) {
	out, err := run(t, `
fun makeCounter() {
  var count = 0;
  fun inc() {
    count = count + 1;
    return count;
  }
  return inc;
}
var counter = makeCounter();
print counter();
print counter();
print counter();
`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestClassesInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
class Animal {
  init(name) {
    this.name = name;
  }
  speak() {
    return this.name + " makes a sound";
  }
}
class Dog .. Animal {
  speak() {
    return super.speak() + " (bark)";
  }
}
var d = Dog("Rex");
print d.speak();
`)
	require.NoError(t, err)
	assert.Equal(t, "Rex makes a sound (bark)\n", out)
}

func TestRecursionFibonacci(t *testing.T) {
	out, err := run(t, `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestArrayLiteralAndIndexing(t *testing.T) {
	out, err := run(t, `
var a = {1, 2, 3};
a[1] = 20;
print a[0] + a[1] + a[2];
`)
	require.NoError(t, err)
	assert.Equal(t, "24\n", out)
}

func TestInvalidAssignmentTargetIsCompileError(t *testing.T) {
	interner := value.NewInterner()
	_, err := compiler.Compile(`1 + 2 = 3;`, interner)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Contains(t, list.Error(), "Invalid assignment target.")
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, err := run(t, `print nope;`)
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Message, "Undefined variable 'nope'")
}

func TestBreakAndContinue(t *testing.T) {
	out, err := run(t, `
var i = 0;
var sum = 0;
while (i < 10) {
  i = i + 1;
  if (i == 5) continue;
  if (i == 8) break;
  sum = sum + i;
}
print sum;
`)
	require.NoError(t, err)
	assert.Equal(t, "23\n", out)
}

func TestGCStressDoesNotCorruptState(t *testing.T) {
	out, err := run(t, `
fun makeChain(n) {
  var arr = {};
  var i = 0;
  while (i < n) {
    arr = {arr, i};
    i = i + 1;
  }
  return arr;
}
var chain = makeChain(2000);
print "done";
`)
	require.NoError(t, err)
	assert.Equal(t, "done\n", out)
}
