// Command seanode reads, canonicalizes, evaluates, and emits
// sea-of-nodes graphs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/andrewarchi/seanode/internal/config"
	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/codegen"
	"github.com/andrewarchi/seanode/ir/dump"
	"github.com/andrewarchi/seanode/ir/optimize"
	"github.com/andrewarchi/seanode/ir/stamp"
	"github.com/andrewarchi/seanode/syntax"
)

const usage = `usage: seanode <command> [flags] [args]

Commands:
  canon file              canonicalize a graph and print it
  emit  file              emit code for a graph
  eval  file [name=value] evaluate a graph on arguments
  dump  file snapshot     write a binary snapshot of a graph
  load  snapshot          print a binary snapshot as text
  repl                    build graphs interactively

Run seanode <command> -h for the flags of a command.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "canon":
		os.Exit(cmdCanon(args))
	case "emit":
		os.Exit(cmdEmit(args))
	case "eval":
		os.Exit(cmdEval(args))
	case "dump":
		os.Exit(cmdDump(args))
	case "load":
		os.Exit(cmdLoad(args))
	case "repl":
		os.Exit(cmdRepl(args))
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "seanode: unknown command %q\n", os.Args[1])
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

// command holds the flags and configuration shared by the commands.
type command struct {
	fs         *flag.FlagSet
	configPath string
	canon      bool
	cfg        config.Config
	log        *slog.Logger
}

func newCommand(name, args string) *command {
	c := &command{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.StringVar(&c.configPath, "config", "seanode.yaml", "YAML configuration `file`")
	c.fs.Usage = func() {
		fmt.Fprintf(c.fs.Output(), "usage: seanode %s [flags] %s\n", name, args)
		c.fs.PrintDefaults()
	}
	return c
}

// canonFlag adds -canon for commands that canonicalize on request.
func (c *command) canonFlag() {
	c.fs.BoolVar(&c.canon, "canon", false, "canonicalize before running")
}

// parse parses the flags and loads the configuration. It returns false
// with an exit code on failure.
func (c *command) parse(args []string, nargs int) (int, bool) {
	if err := c.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	if nargs >= 0 && c.fs.NArg() != nargs {
		c.fs.Usage()
		return 2, false
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fail(err), false
	}
	c.cfg = cfg
	level := slog.LevelInfo
	if cfg.Trace {
		level = slog.LevelDebug
	}
	c.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return 0, true
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "seanode: %v\n", err)
	return 1
}

// readGraph parses the graph file at path with the configured rewrites.
func (c *command) readGraph(path string) (*ir.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.parseGraph(path, src)
}

func (c *command) parseGraph(filename string, src []byte) (*ir.Graph, error) {
	g, err := syntax.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	g.SetOptions(c.cfg.GraphOptions())
	if err := g.Verify(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return g, nil
}

func (c *command) canonicalize(g *ir.Graph) {
	stats := optimize.Canonicalize(g, c.cfg.OptimizeOptions(c.log))
	if !stats.Converged {
		c.log.Warn("canonicalization stopped before a fixed point", "visits", stats.Visits)
	}
	c.log.Debug("canonicalization done",
		"narrowed", stats.Narrowed,
		"merged", stats.Merged,
		"rewritten", stats.Rewritten,
		"floated", stats.Floated,
		"killed", stats.Killed)
}

func cmdCanon(args []string) int {
	c := newCommand("canon", "file")
	if code, ok := c.parse(args, 1); !ok {
		return code
	}
	g, err := c.readGraph(c.fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	c.canonicalize(g)
	if err := g.Verify(); err != nil {
		return fail(err)
	}
	fmt.Print(ir.NewFormatter().FormatGraph(g))
	return 0
}

func cmdEmit(args []string) int {
	c := newCommand("emit", "file")
	c.canonFlag()
	backend := c.fs.String("backend", "", "backend: text or llvm (default from configuration)")
	if code, ok := c.parse(args, 1); !ok {
		return code
	}
	g, err := c.readGraph(c.fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	if c.canon {
		c.canonicalize(g)
	}
	if *backend == "" {
		*backend = c.cfg.Emit
	}
	if err := emit(os.Stdout, g, *backend, c.fs.Arg(0)); err != nil {
		return fail(err)
	}
	return 0
}

func emit(w io.Writer, g *ir.Graph, backend, name string) error {
	switch backend {
	case "text":
		return codegen.EmitText(w, g)
	case "llvm":
		return emitLLVM(w, g, name)
	}
	return fmt.Errorf("unknown backend %q", backend)
}

func cmdEval(args []string) int {
	c := newCommand("eval", "file [name=value ...]")
	c.canonFlag()
	if code, ok := c.parse(args, -1); !ok {
		return code
	}
	if c.fs.NArg() < 1 {
		c.fs.Usage()
		return 2
	}
	g, err := c.readGraph(c.fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	if c.canon {
		c.canonicalize(g)
	}
	if err := evaluate(os.Stdout, g, c.fs.Args()[1:]); err != nil {
		return fail(err)
	}
	return 0
}

// evaluate runs g on arguments of the form name=value and prints each
// result as name = value:type.
func evaluate(w io.Writer, g *ir.Graph, args []string) error {
	bound := make(map[string]stamp.Const, len(args))
	for _, arg := range args {
		name, lit, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("argument %q is not name=value", arg)
		}
		p := g.Param(name)
		if p == nil {
			return fmt.Errorf("no parameter %s", name)
		}
		k, err := syntax.ParseConst(lit, p.Aux().To)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		bound[name] = k
	}
	results, err := codegen.Evaluate(g, bound)
	if err != nil {
		return err
	}
	for _, r := range g.Returns() {
		name := r.Aux().Name
		k := results[name]
		if _, err := fmt.Fprintf(w, "%s = %v:%v\n", name, k, k.Type()); err != nil {
			return err
		}
	}
	return nil
}

func cmdDump(args []string) int {
	c := newCommand("dump", "file snapshot")
	c.canonFlag()
	if code, ok := c.parse(args, 2); !ok {
		return code
	}
	g, err := c.readGraph(c.fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	if c.canon {
		c.canonicalize(g)
	}
	f, err := os.Create(c.fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	if err := dump.Encode(f, g); err != nil {
		f.Close()
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(err)
	}
	c.log.Info("wrote snapshot", "file", c.fs.Arg(1), "nodes", g.Len())
	return 0
}

func cmdLoad(args []string) int {
	c := newCommand("load", "snapshot")
	if code, ok := c.parse(args, 1); !ok {
		return code
	}
	f, err := os.Open(c.fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	defer f.Close()
	g, err := dump.Decode(f)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", c.fs.Arg(0), err))
	}
	fmt.Print(ir.NewFormatter().FormatGraph(g))
	return 0
}
