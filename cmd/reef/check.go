// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ZStud/reef/syntax"
)

var checkCmd = &cobra.Command{
	Use:   "check <file-or-dir>...",
	Short: "Parse bash scripts and report syntax errors",
	Long: `Parses each file with reef's bash parser and reports the first
syntax error found in each, without executing anything. Directory
arguments are walked for files that look like shell scripts, by
extension or shebang. Files are parsed concurrently; a parse shares no
state.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		files, err := gatherScripts(args)
		if err != nil {
			return err
		}

		type result struct {
			src string
			err error
		}
		results := make([]result, len(files))
		var g errgroup.Group
		for i, name := range files {
			i, name := i, name
			g.Go(func() error {
				b, err := os.ReadFile(name)
				if err != nil {
					results[i].err = err
					return nil
				}
				results[i].src = string(b)
				_, results[i].err = syntax.Parse(results[i].src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		stderr := cmd.ErrOrStderr()
		for i, res := range results {
			if res.err == nil {
				continue
			}
			reportError(stderr, files[i], res.src, res.err)
			exitCode = 1
		}
		return nil
	},
}

// gatherScripts expands directory arguments into the shell scripts found
// beneath them; explicit file arguments pass through untouched.
func gatherScripts(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// let the per-file read report a useful error
			files = append(files, arg)
			continue
		}
		walk := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}
			switch scriptConfidence(d) {
			case confIsScript:
				files = append(files, path)
			case confIfShebang:
				if readsAsScript(path) {
					files = append(files, path)
				}
			}
			return nil
		}
		if err := filepath.WalkDir(arg, walk); err != nil {
			return nil, err
		}
	}
	return files, nil
}

type confidence int

const (
	confNotScript confidence = iota
	confIfShebang
	confIsScript
)

// scriptConfidence judges a directory entry by its name alone: a shell
// extension decides, any other extension or a hidden name rules it out,
// and an extensionless name needs its shebang checked.
func scriptConfidence(d fs.DirEntry) confidence {
	name := d.Name()
	switch {
	case strings.HasPrefix(name, "."), !d.Type().IsRegular():
		return confNotScript
	case strings.HasSuffix(name, ".sh"), strings.HasSuffix(name, ".bash"):
		return confIsScript
	case strings.Contains(name, "."):
		return confNotScript
	}
	return confIfShebang
}

var shebangRe = regexp.MustCompile(`^#!\s?/(usr/)?bin/(env\s+)?(sh|bash)\s`)

func readsAsScript(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var buf [32]byte
	n, err := f.Read(buf[:])
	if err != nil && n == 0 {
		return false
	}
	return shebangRe.Match(buf[:n])
}

// reportError prints a parse error with the offending source line and a
// caret under the byte the offset names.
func reportError(w io.Writer, name, src string, err error) {
	var perr *syntax.ParseError
	if !errors.As(err, &perr) {
		fmt.Fprintf(w, "%s: %v\n", name, err)
		return
	}
	line, col, text := locate(src, perr.Offset)
	color.New(color.FgRed, color.Bold).Fprintf(w, "%s:%d:%d: ", name, line, col)
	fmt.Fprintln(w, perr.Msg)
	if text != "" {
		fmt.Fprintf(w, "  %s\n  %s^\n", text, caretPad(text, col-1))
	}
}

// locate turns a byte offset into a 1-based line and column plus the text
// of the offending line.
func locate(src string, offset int) (line, col int, text string) {
	if offset > len(src) {
		offset = len(src)
	}
	line = 1 + strings.Count(src[:offset], "\n")
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += start
	}
	return line, offset - start + 1, src[start:end]
}

// caretPad builds the whitespace run that aligns the caret, keeping tabs
// so the caret lands where the terminal renders the offending byte.
func caretPad(text string, n int) string {
	if n > len(text) {
		n = len(text)
	}
	pad := make([]byte, n)
	for i := 0; i < n; i++ {
		if text[i] == '\t' {
			pad[i] = '\t'
		} else {
			pad[i] = ' '
		}
	}
	return string(pad)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
