package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/goslang/gos/compiler/ast"
	"github.com/goslang/gos/compiler/back"
	"github.com/goslang/gos/compiler/front"
	"github.com/goslang/gos/compiler/ir"
)

// CompileFile decodes a YAML program tree and compiles it.
func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	prog, err := ast.DecodeFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	tlog.SpanFromContext(ctx).Printw("decoded file", "name", name, "items", len(prog.Body))

	return Compile(ctx, prog)
}

// Compile lowers prog into NASM assembly text.
func Compile(ctx context.Context, prog *ast.Program) (obj []byte, err error) {
	return New().Compile(ctx, prog)
}

// CompileIR stops after IR generation and validation.
func CompileIR(ctx context.Context, prog *ast.Program) (*ir.Program, error) {
	p, err := front.Compile(ctx, prog)
	if err != nil {
		return nil, errors.Wrap(err, "irgen")
	}

	err = p.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "validate")
	}

	return p, nil
}

type (
	// Pipeline runs all the stages with a configurable backend.
	Pipeline struct {
		Back *back.Compiler
	}
)

func New() *Pipeline {
	return &Pipeline{Back: back.New()}
}

func (c *Pipeline) Compile(ctx context.Context, prog *ast.Program) (obj []byte, err error) {
	p, err := CompileIR(ctx, prog)
	if err != nil {
		return nil, err
	}

	obj, err = c.Back.CompileProgram(ctx, nil, p)
	if err != nil {
		return nil, errors.Wrap(err, "codegen")
	}

	return obj, nil
}
