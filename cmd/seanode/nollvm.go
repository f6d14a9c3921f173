//go:build !llvm

package main

import (
	"errors"
	"io"

	"github.com/andrewarchi/seanode/ir"
)

func emitLLVM(w io.Writer, g *ir.Graph, name string) error {
	return errors.New("llvm backend not built; rebuild with -tags llvm")
}
