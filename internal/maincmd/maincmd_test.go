package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CabooseLang/Caboose/internal/maincmd"
)

func mainWithArgs(t *testing.T, args ...string) (stdout, stderr string, code mainer.ExitCode) {
	t.Helper()
	var out, errBuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errBuf}
	c := maincmd.Cmd{BuildVersion: "test", BuildDate: "2026-07-30"}
	code = c.Main(append([]string{"caboose"}, args...), stdio)
	return out.String(), errBuf.String(), code
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.cb")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestMainRunsFileSuccessfully(t *testing.T) {
	path := writeScript(t, `print "hi";`)
	out, _, code := mainWithArgs(t, path)
	assert.Equal(t, mainer.ExitCode(maincmd.ExitOK), code)
	assert.Equal(t, "hi\n", out)
}

func TestMainExitsCompileErrorCode(t *testing.T) {
	path := writeScript(t, `var x = ;`)
	_, _, code := mainWithArgs(t, path)
	assert.Equal(t, mainer.ExitCode(maincmd.ExitCompile), code)
}

func TestMainExitsRuntimeErrorCode(t *testing.T) {
	path := writeScript(t, `print x;`)
	_, stderr, code := mainWithArgs(t, path)
	assert.Equal(t, mainer.ExitCode(maincmd.ExitRuntime), code)
	assert.Contains(t, stderr, "Undefined variable 'x'.")
}

func TestMainUnreadableFileExitsUsageCode(t *testing.T) {
	_, _, code := mainWithArgs(t, filepath.Join(t.TempDir(), "does-not-exist.cb"))
	assert.Equal(t, mainer.ExitCode(maincmd.ExitUsage), code)
}

func TestMainTooManyArgsExitsUsageCode(t *testing.T) {
	_, _, code := mainWithArgs(t, "one.cb", "two.cb")
	assert.Equal(t, mainer.ExitCode(maincmd.ExitUsage), code)
}

func TestMainHelpFlag(t *testing.T) {
	out, _, code := mainWithArgs(t, "--help")
	assert.Equal(t, mainer.ExitCode(maincmd.ExitOK), code)
	assert.Contains(t, out, "usage:")
}

func TestMainVersionFlag(t *testing.T) {
	out, _, code := mainWithArgs(t, "--version")
	assert.Equal(t, mainer.ExitCode(maincmd.ExitOK), code)
	assert.Contains(t, out, "test")
}

// The zero-argument REPL path requires an interactive terminal (liner reads
// directly from the process's stdin/stdout), so it is exercised manually
// rather than in this suite.
