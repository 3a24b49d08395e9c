package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/wisp/lang/value"
)

func TestInternerDeduplicatesByContent(t *testing.T) {
	in := value.NewInterner()
	a := in.Intern("hello")
	b := in.Intern("hello")
	assert.Same(t, a, b)
	assert.Equal(t, 1, in.Len())
}

func TestInternerDistinctContent(t *testing.T) {
	in := value.NewInterner()
	a := in.Intern("foo")
	b := in.Intern("bar")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, in.Len())
}

func TestInternerRemove(t *testing.T) {
	in := value.NewInterner()
	in.Intern("x")
	in.Remove("x")
	assert.Equal(t, 0, in.Len())
}
