package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrewarchi/seanode/ir"
	"github.com/peterh/liner"
)

const (
	replPrompt  = "sea> "
	historyFile = ".seanode_history"
)

const replHelp = `Enter graph statements one per line, such as
  %0 = param x i32 [0, 9]
  %1 = add %0 1:i32
  return r %1
Commands:
  :show           print the graph
  :canon          canonicalize the graph
  :emit [backend] emit code (text or llvm)
  :eval name=v... evaluate the graph
  :reset          start a new graph
  :quit           exit`

// session is the graph under construction in the REPL, kept as its
// source lines so that each statement is checked against the rest.
type session struct {
	c     *command
	lines []string
}

func (s *session) graph() (*ir.Graph, error) {
	return s.c.parseGraph("<repl>", []byte(strings.Join(s.lines, "\n")))
}

// add appends a statement if the graph still parses with it.
func (s *session) add(line string) error {
	s.lines = append(s.lines, line)
	if _, err := s.graph(); err != nil {
		s.lines = s.lines[:len(s.lines)-1]
		return err
	}
	return nil
}

func (s *session) command(w io.Writer, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true, nil
	case ":help":
		fmt.Fprintln(w, replHelp)
		return false, nil
	case ":reset":
		s.lines = nil
		return false, nil
	}
	g, err := s.graph()
	if err != nil {
		return false, err
	}
	switch fields[0] {
	case ":show":
		fmt.Fprint(w, ir.NewFormatter().FormatGraph(g))
	case ":canon":
		s.c.canonicalize(g)
		text := ir.NewFormatter().FormatGraph(g)
		s.lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		fmt.Fprint(w, text)
	case ":emit":
		backend := s.c.cfg.Emit
		if len(fields) > 1 {
			backend = fields[1]
		}
		return false, emit(w, g, backend, "repl")
	case ":eval":
		return false, evaluate(w, g, fields[1:])
	default:
		return false, fmt.Errorf("unknown command %s; type :help", fields[0])
	}
	return false, nil
}

func cmdRepl(args []string) int {
	c := newCommand("repl", "")
	if code, ok := c.parse(args, 0); !ok {
		return code
	}
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	s := &session{c: c}
	fmt.Println("seanode repl; type :help for commands")
	for {
		line, err := ln.Prompt(replPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if err != io.EOF {
				return fail(err)
			}
			fmt.Println()
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			quit, err := s.command(os.Stdout, line)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			if quit {
				return 0
			}
			continue
		}
		if err := s.add(line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
