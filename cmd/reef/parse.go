// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ZStud/reef/syntax"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a bash script and print its command tree",
	Long: `Parses a file, or stdin when no file is given, and prints an
indented outline of the parsed command sequence. Nothing is executed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		name := "<stdin>"
		var src []byte
		if len(args) == 1 {
			name = args[0]
			b, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			src = b
		} else {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("no input: pass a file or pipe a script to stdin")
			}
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			src = b
		}

		cmds, err := syntax.Parse(string(src))
		if err != nil {
			reportError(cmd.ErrOrStderr(), name, string(src), err)
			exitCode = 1
			return nil
		}
		dumpCmds(cmd.OutOrStdout(), string(src), cmds, 0)
		return nil
	},
}

func pad(depth int) string { return strings.Repeat("  ", depth) }

func dumpCmds(w io.Writer, src string, cmds []*syntax.Cmd, depth int) {
	for _, c := range cmds {
		label := "cmd"
		if c.Background {
			label = "cmd &"
		}
		fmt.Fprintf(w, "%s%s\n", pad(depth), label)
		dumpPipeline(w, src, &c.AndOr.First, depth+1)
		for i := range c.AndOr.Rest {
			link := &c.AndOr.Rest[i]
			fmt.Fprintf(w, "%s%s\n", pad(depth+1), link.Op)
			dumpPipeline(w, src, &link.Pipeline, depth+1)
		}
	}
}

func dumpPipeline(w io.Writer, src string, pl *syntax.Pipeline, depth int) {
	if pl.Negated {
		fmt.Fprintf(w, "%s!\n", pad(depth))
	}
	for _, e := range pl.Stages() {
		dumpExec(w, src, e, depth)
	}
}

func dumpExec(w io.Writer, src string, e syntax.Executable, depth int) {
	switch e := e.(type) {
	case *syntax.SimpleCmd:
		fmt.Fprintf(w, "%ssimple: %s\n", pad(depth), simpleText(src, e))
	case *syntax.FuncDef:
		fmt.Fprintf(w, "%sfunc %s\n", pad(depth), e.Name)
		dumpExec(w, src, e.Body, depth+1)
	case *syntax.CompoundCmd:
		fmt.Fprintf(w, "%s%s\n", pad(depth), kindName(e.Kind))
		for _, body := range kindBodies(e.Kind) {
			dumpCmds(w, src, body, depth+1)
		}
	}
}

// simpleText reassembles a one-line rendering of a simple command from
// the recorded word spans.
func simpleText(src string, sc *syntax.SimpleCmd) string {
	var parts []string
	for _, p := range sc.Prefix {
		if a, ok := p.(*syntax.Assign); ok {
			if a.Value != nil {
				parts = append(parts, a.Name+"="+src[a.Value.Start:a.Value.End])
			} else {
				parts = append(parts, a.Name+"=")
			}
		}
	}
	for _, s := range sc.Suffix {
		if w, ok := s.(*syntax.Word); ok {
			parts = append(parts, src[w.Start:w.End])
		}
	}
	return strings.Join(parts, " ")
}

func kindName(k syntax.CompoundKind) string {
	switch k := k.(type) {
	case *syntax.IfClause:
		return "if"
	case *syntax.ForClause:
		return "for " + k.Var
	case *syntax.CForClause:
		return "for (( ))"
	case *syntax.WhileClause:
		if k.Until {
			return "until"
		}
		return "while"
	case *syntax.CaseClause:
		return "case"
	case *syntax.BraceGroup:
		return "group"
	case *syntax.Subshell:
		return "subshell"
	case *syntax.TestClause:
		return "test"
	case *syntax.ArithCmd:
		return "arith"
	}
	return "compound"
}

// kindBodies returns the nested command lists of a compound, in source
// order, for the outline dump.
func kindBodies(k syntax.CompoundKind) [][]*syntax.Cmd {
	switch k := k.(type) {
	case *syntax.IfClause:
		var out [][]*syntax.Cmd
		for _, br := range k.Branches {
			out = append(out, br.Guard, br.Body)
		}
		if k.Else != nil {
			out = append(out, k.Else)
		}
		return out
	case *syntax.ForClause:
		return [][]*syntax.Cmd{k.Body}
	case *syntax.CForClause:
		return [][]*syntax.Cmd{k.Body}
	case *syntax.WhileClause:
		return [][]*syntax.Cmd{k.Guard, k.Body}
	case *syntax.CaseClause:
		var out [][]*syntax.Cmd
		for _, arm := range k.Arms {
			out = append(out, arm.Body)
		}
		return out
	case *syntax.BraceGroup:
		return [][]*syntax.Cmd{k.Body}
	case *syntax.Subshell:
		return [][]*syntax.Cmd{k.Body}
	case *syntax.TestClause:
		return [][]*syntax.Cmd{k.Body}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
