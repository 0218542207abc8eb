// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package passthrough

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZStud/reef/envdiff"
)

func TestBashQuote(t *testing.T) {
	assert.Equal(t, "'echo hello'", bashQuote("echo hello"))
	assert.Equal(t, `'echo '\''it'\''"s"'`, bashQuote(`echo 'it'"s"`))
	assert.Equal(t, "''", bashQuote(""))
}

func TestBuildScript(t *testing.T) {
	script := buildScript("'true'", " >&2", true)
	assert.Equal(t, "eval 'true' >&2\n"+
		"__reef_exit=$?\n"+
		"echo '"+envMarker+"'\n"+
		"env -0\n"+
		"echo '"+cwdMarker+"'\n"+
		"pwd\n"+
		"exit $__reef_exit", script)

	script = buildScript("'x'", " >/dev/null 2>&1", false)
	assert.NotContains(t, script, "__reef_exit")
	assert.True(t, strings.HasSuffix(script, "pwd"))
}

func newTestRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errw bytes.Buffer
	return &Runner{Stdout: &out, Stderr: &errw}, &out, &errw
}

func TestEmitDiff(t *testing.T) {
	r, out, _ := newTestRunner()
	before := &envdiff.Snapshot{Vars: map[string]string{}, Cwd: "/home"}

	raw := "command output\n" +
		envMarker + "\n" +
		"NEW=val\x00KEEP=x\x00" +
		cwdMarker + "\n" +
		"/tmp\n"
	r.emitDiff(before, []byte(raw))

	require.Equal(t, "set -gx KEEP x\nset -gx NEW val\ncd /tmp\n", out.String())
}

func TestEmitDiffNoChanges(t *testing.T) {
	r, out, _ := newTestRunner()
	before := &envdiff.Snapshot{Vars: map[string]string{"KEEP": "x"}, Cwd: "/tmp"}

	raw := envMarker + "\nKEEP=x\x00" + cwdMarker + "\n/tmp\n"
	r.emitDiff(before, []byte(raw))

	assert.Empty(t, out.String())
}

func TestEmitDiffMissingMarkers(t *testing.T) {
	r, out, _ := newTestRunner()
	before := &envdiff.Snapshot{Vars: map[string]string{}, Cwd: "/"}

	// bash died before dumping its env: emit nothing rather than garbage
	r.emitDiff(before, []byte("partial output, no markers"))
	assert.Empty(t, out.String())

	// markers out of order are equally untrustworthy
	r.emitDiff(before, []byte(cwdMarker+"\n/x\n"+envMarker+"\nA=b\x00"))
	assert.Empty(t, out.String())
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, exitStatus(nil))
	assert.Equal(t, -1, exitStatus(assert.AnError))
}
