package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/andrewarchi/seanode/ir"
)

func TestParse(t *testing.T) {
	c, err := Parse([]byte("min_max: false\nmax_iterations: 500\ntrace: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.MinMax = false
	want.MaxIterations = 500
	want.Trace = true
	if !reflect.DeepEqual(c, want) {
		t.Errorf("got %+v, want %+v", c, want)
	}
	if got, want := c.GraphOptions(), (ir.Options{StrengthReduce: true, Reassociate: true}); got != want {
		t.Errorf("GraphOptions: got %+v, want %+v", got, want)
	}
	logger := slog.Default()
	if opts := c.OptimizeOptions(logger); opts.Logger != logger || opts.MaxIterations != 500 {
		t.Errorf("OptimizeOptions: got %+v", opts)
	}
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, Default()) {
		t.Errorf("got %+v, want defaults", c)
	}
	if c.OptimizeOptions(slog.Default()).Logger != nil {
		t.Errorf("got a logger with tracing off")
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"strength_reduction: true\n",
		"max_iterations: -1\n",
		"emit: wasm\n",
		"trace: [\n",
	} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q): got no error", src)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, Default()) {
		t.Errorf("missing file: got %+v, want defaults", c)
	}
	path := filepath.Join(dir, "seanode.yaml")
	if err := os.WriteFile(path, []byte("emit: llvm\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c, err = Load(path); err != nil {
		t.Fatal(err)
	}
	if c.Emit != "llvm" {
		t.Errorf("emit: got %q, want llvm", c.Emit)
	}
}
