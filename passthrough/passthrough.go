// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

// Package passthrough runs commands through bash and reports their
// environment side effects as fish commands, so a fish wrapper can eval
// them and stay in sync.
package passthrough

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ZStud/reef/envdiff"
)

// Sentinel markers separating env data from command output in the bash
// stdout stream.
const (
	envMarker = "__REEF_ENV_MARKER_5f3a__"
	cwdMarker = "__REEF_CWD_MARKER_5f3a__"
)

// Runner executes commands through bash. Stdout receives the fish
// commands describing environment changes; the executed command's own
// output goes to Stderr so the caller can eval Stdout safely.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner wired to the process's standard streams.
func New() *Runner {
	return &Runner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Exec runs command in bash and returns its exit status. The command's
// output streams to Stderr as it runs; once it finishes, the environment
// diff is printed to Stdout as fish commands.
func (r *Runner) Exec(ctx context.Context, command string) int {
	before := envdiff.Capture()

	// command output to stderr for the user, env dump to stdout for fish
	script := buildScript(bashQuote(command), " >&2", true)

	cmd := exec.CommandContext(ctx, "bash", "-c", script)
	cmd.Stdin = r.Stdin
	cmd.Stderr = r.Stderr
	out, err := cmd.Output()
	code := exitStatus(err)
	if code < 0 {
		fmt.Fprintf(r.Stderr, "reef: failed to run bash: %v\n", err)
		return 1
	}
	r.emitDiff(before, out)
	return code
}

// ExecEnvDiff runs command in bash with all of its output suppressed and
// prints only the environment diff. This backs `reef source`, which
// sources bash scripts purely for their side effects.
func (r *Runner) ExecEnvDiff(ctx context.Context, command string) int {
	before := envdiff.Capture()

	script := buildScript(bashQuote(command), " >/dev/null 2>&1", false)

	out, err := exec.CommandContext(ctx, "bash", "-c", script).Output()
	code := exitStatus(err)
	if code < 0 {
		fmt.Fprintf(r.Stderr, "reef: failed to run bash: %v\n", err)
		return 1
	}
	r.emitDiff(before, out)
	return code
}

// exitStatus maps an exec error to a shell exit code, or -1 when bash
// could not be run at all.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if c := ee.ExitCode(); c >= 0 {
			return c
		}
		return 1
	}
	return -1
}

// emitDiff locates the sentinel markers in the bash stdout, parses the
// env dump between them, and writes the diff to Stdout in one write.
func (r *Runner) emitDiff(before *envdiff.Snapshot, raw []byte) {
	out := string(raw)
	envPos := strings.Index(out, envMarker)
	cwdPos := strings.Index(out, cwdMarker)
	if envPos < 0 || cwdPos < 0 || cwdPos < envPos {
		return
	}

	after := &envdiff.Snapshot{
		Vars: envdiff.ParseNullSeparated(out[envPos+len(envMarker) : cwdPos]),
		Cwd:  strings.TrimSpace(out[cwdPos+len(cwdMarker):]),
	}

	cmds := before.Diff(after)
	if len(cmds) == 0 {
		return
	}
	var b strings.Builder
	for _, c := range cmds {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	io.WriteString(r.Stdout, b.String())
}

// buildScript wraps the quoted command in a bash script that evals it
// with the given redirect suffix, then dumps the markers, the
// null-separated environment and the working directory.
func buildScript(quotedCmd, redirect string, trackExit bool) string {
	var b strings.Builder
	b.Grow(len(quotedCmd) + 100)
	b.WriteString("eval ")
	b.WriteString(quotedCmd)
	b.WriteString(redirect)
	b.WriteByte('\n')
	if trackExit {
		b.WriteString("__reef_exit=$?\n")
	}
	b.WriteString("echo '")
	b.WriteString(envMarker)
	b.WriteString("'\nenv -0\necho '")
	b.WriteString(cwdMarker)
	b.WriteString("'\npwd")
	if trackExit {
		b.WriteString("\nexit $__reef_exit")
	}
	return b.String()
}

// bashQuote single-quotes a command for embedding in a bash eval, so none
// of it is interpreted by the outer invocation.
func bashQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}
