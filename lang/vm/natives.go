package vm

import (
	"time"

	"github.com/mna/wisp/lang/value"
)

// RegisterStdlib installs the small set of natives every wisp program can
// rely on existing as globals. clock in particular exists mainly as the
// registration-hook fixture exercised by the compiler/VM test suite.
func (m *Machine) RegisterStdlib() {
	m.DefineNative("clock", nativeClock)
}

func nativeClock(argc int, argv []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
}

// NativeNames reports every native currently registered, for diagnostics
// (the wisp CLI's tokenize/compile commands run without a Machine, so this
// is the only place the registry in m.natives is queried independently of
// the globals table it mirrors).
func (m *Machine) NativeNames() []string {
	names := make([]string, 0, m.natives.Count())
	m.natives.Iter(func(name string, _ *value.Native) bool {
		names = append(names, name)
		return false
	})
	return names
}
