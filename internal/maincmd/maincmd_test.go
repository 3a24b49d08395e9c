package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"

	"github.com/mna/wisp/internal/maincmd"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.wisp")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunExecutesScript(t *testing.T) {
	path := writeTemp(t, `print 1 + 2;`)

	var out, errOut bytes.Buffer
	c := maincmd.Cmd{}
	code := c.Main([]string{"wisp", "run", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})

	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "3\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunHonorsGCThresholdEnvVar(t *testing.T) {
	t.Setenv("WISP_GC_THRESHOLD", "4")
	path := writeTemp(t, `print "ok";`)

	var out, errOut bytes.Buffer
	c := maincmd.Cmd{}
	code := c.Main([]string{"wisp", "run", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})

	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "ok\n", out.String())
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	c := maincmd.Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}
	code := c.Main([]string{"wisp", "-v"}, mainer.Stdio{Stdout: &out, Stderr: &out})

	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "1.2.3")
}

func TestUnknownCommandIsInvalidArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	c := maincmd.Cmd{}
	code := c.Main([]string{"wisp", "bogus", "x"}, mainer.Stdio{Stdout: &out, Stderr: &errOut})

	assert.Equal(t, mainer.InvalidArgs, code)
}
