// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

// Package envdiff captures snapshots of the shell environment and renders
// the difference between two snapshots as fish shell commands.
package envdiff

import (
	"os"
	"sort"
	"strings"
)

// skipVars are variables internal to bash that must not be synced to
// fish. Sorted by ASCII byte order for binary search.
var skipVars = []string{
	"BASH",
	"BASHOPTS",
	"BASHPID",
	"BASH_ALIASES",
	"BASH_ARGC",
	"BASH_ARGV",
	"BASH_CMDS",
	"BASH_COMMAND",
	"BASH_EXECUTION_STRING",
	"BASH_LINENO",
	"BASH_LOADABLES_PATH",
	"BASH_REMATCH",
	"BASH_SOURCE",
	"BASH_SUBSHELL",
	"BASH_VERSINFO",
	"BASH_VERSION",
	"COLUMNS",
	"COMP_WORDBREAKS",
	"DIRSTACK",
	"EUID",
	"FUNCNAME",
	"GROUPS",
	"HISTCMD",
	"HISTFILE",
	"HOSTNAME",
	"HOSTTYPE",
	"IFS",
	"LINES",
	"MACHTYPE",
	"MAILCHECK",
	"OLDPWD",
	"OPTERR",
	"OPTIND",
	"OSTYPE",
	"PIPESTATUS",
	"PPID",
	"PS1",
	"PS2",
	"PS4",
	"PWD",
	"RANDOM",
	"SECONDS",
	"SHELL",
	"SHELLOPTS",
	"SHLVL",
	"UID",
	"_",
}

func shouldSkip(name string) bool {
	i := sort.SearchStrings(skipVars, name)
	return i < len(skipVars) && skipVars[i] == name
}

// Snapshot is the shell environment at a point in time.
type Snapshot struct {
	Vars map[string]string
	Cwd  string
}

// Capture snapshots the current process environment, leaving out
// bash-internal variables.
func Capture() *Snapshot {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || shouldSkip(k) {
			continue
		}
		vars[k] = v
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	return &Snapshot{Vars: vars, Cwd: cwd}
}

// Diff returns the fish commands that turn the before snapshot into the
// after one:
//
//	set -gx VAR value
//	set -e VAR
//	cd /new/path
//
// Commands come out in a stable order: sets sorted by name, then erases
// sorted by name, then the cd.
func (s *Snapshot) Diff(after *Snapshot) []string {
	var cmds []string

	for _, key := range sortedKeys(after.Vars) {
		if shouldSkip(key) {
			continue
		}
		newVal := after.Vars[key]
		if oldVal, ok := s.Vars[key]; ok && oldVal == newVal {
			continue
		}
		var b strings.Builder
		b.WriteString("set -gx ")
		b.WriteString(key)
		b.WriteByte(' ')
		// PATH-likes become fish lists, one element per : segment
		if strings.HasSuffix(key, "PATH") && strings.ContainsRune(newVal, ':') {
			for i, part := range strings.Split(newVal, ":") {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(part)
			}
		} else {
			b.WriteString(Quote(newVal))
		}
		cmds = append(cmds, b.String())
	}

	for _, key := range sortedKeys(s.Vars) {
		if shouldSkip(key) {
			continue
		}
		if _, ok := after.Vars[key]; !ok {
			cmds = append(cmds, "set -e "+key)
		}
	}

	if after.Cwd != "" && s.Cwd != after.Cwd {
		cmds = append(cmds, "cd "+Quote(after.Cwd))
	}
	return cmds
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseNullSeparated parses `env -0` output, VAR=value entries separated
// by NUL bytes. Entries whose key is not a plain identifier are dropped.
func ParseNullSeparated(data string) map[string]string {
	vars := make(map[string]string)
	for _, entry := range strings.Split(data, "\x00") {
		entry = strings.TrimLeft(entry, "\n")
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" || !validName(key) {
			continue
		}
		vars[key] = value
	}
	return vars
}

func validName(key string) bool {
	for i := 0; i < len(key); i++ {
		b := key[i]
		if b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
			(b >= '0' && b <= '9') {
			continue
		}
		return false
	}
	return true
}

// Quote escapes a string for use as a single fish argument. Simple values
// pass through unchanged; anything else is single-quoted, with each
// internal quote closed, backslash-escaped and reopened.
func Quote(s string) string {
	if plainValue(s) {
		return s
	}
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

func plainValue(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '/', b == '.', b == '-', b == '_', b == ':', b == '~',
			b == '+', b == ',':
		default:
			return false
		}
	}
	return true
}
