//go:build llvm

package main

import (
	"fmt"
	"io"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/codegen"
)

func emitLLVM(w io.Writer, g *ir.Graph, name string) error {
	m, err := codegen.EmitLLVMModule(g, codegen.Config{ModuleName: name})
	if err != nil {
		return err
	}
	defer m.Dispose()
	_, err = fmt.Fprint(w, m.String())
	return err
}
