package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/andrewarchi/seanode/internal/config"
)

func testSession() *session {
	return &session{c: &command{
		cfg: config.Default(),
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}}
}

func TestSession(t *testing.T) {
	s := testSession()
	for _, line := range []string{
		"%0 = param x i32 [0, 9]",
		"%1 = add %0 0:i32",
		"return r %1",
	} {
		if err := s.add(line); err != nil {
			t.Fatalf("add %q: %v", line, err)
		}
	}
	if err := s.add("%2 = add %5 1:i32"); err == nil {
		t.Errorf("undefined operand: got no error")
	}
	if len(s.lines) != 3 {
		t.Errorf("got %d lines after a rejected statement, want 3", len(s.lines))
	}

	tests := []struct {
		cmd, want string
	}{
		{":canon", "%0 = param x i32 [0, 9]\nreturn r %0\n"},
		{":show", "%0 = param x i32 [0, 9]\nreturn r %0\n"},
		{":eval x=4", "r = 4:i32\n"},
		{":emit text", "t0:i32 = param x\nret r t0:i32\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		quit, err := s.command(&buf, tt.cmd)
		if err != nil || quit {
			t.Errorf("%s: got error %v, quit %t", tt.cmd, err, quit)
			continue
		}
		if got := buf.String(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.cmd, got, tt.want)
		}
	}

	if _, err := s.command(io.Discard, ":eval y=1"); err == nil {
		t.Errorf(":eval of unknown parameter: got no error")
	}
	if _, err := s.command(io.Discard, ":frob"); err == nil {
		t.Errorf(":frob: got no error")
	}
	if quit, _ := s.command(io.Discard, ":quit"); !quit {
		t.Errorf(":quit: got no quit")
	}
}

func TestEvaluateArgs(t *testing.T) {
	s := testSession()
	for _, line := range []string{
		"%0 = param x i8",
		"%1 = param y i8",
		"%2 = div %0 %1",
		"return q %2",
	} {
		if err := s.add(line); err != nil {
			t.Fatalf("add %q: %v", line, err)
		}
	}
	g, err := s.graph()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := evaluate(&buf, g, []string{"x=-128", "y=-1"}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "q = -128:i8\n"; got != want {
		t.Errorf("-128 / -1: got %q, want %q", got, want)
	}
	for _, args := range [][]string{
		{"x=1", "y=0"},
		{"x=1"},
		{"x=300", "y=1"},
		{"x"},
	} {
		if err := evaluate(io.Discard, g, args); err == nil {
			t.Errorf("evaluate %v: got no error", args)
		}
	}
}
