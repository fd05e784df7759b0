package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/goslang/gos/compiler"
	"github.com/goslang/gos/compiler/ast"
	"github.com/goslang/gos/compiler/format"
	"github.com/goslang/gos/compiler/ir"
)

func main() {
	treeCmd := &cli.Command{
		Name:        "tree",
		Description: "print decoded tree files as source text",
		Action:      treeAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			verbosity(),
		},
	}

	irCmd := &cli.Command{
		Name:        "ir",
		Description: "print three-address code of tree files",
		Action:      irAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			verbosity(),
		},
	}

	asmCmd := &cli.Command{
		Name:        "asm",
		Description: "compile tree files to nasm x86-64 assembly",
		Action:      asmAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "output file (stdout by default)"),
			cli.NewFlag("comments", false, "annotate assembly with ir instructions"),
			verbosity(),
		},
	}

	app := &cli.Command{
		Name:        "gos",
		Description: "gos compiler backend",
		Commands: []*cli.Command{
			treeCmd,
			irCmd,
			asmCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func verbosity() *cli.Flag {
	return cli.NewFlag("verbosity,v", "", "logger verbosity topics")
}

func setup(c *cli.Command) context.Context {
	tlog.SetVerbosity(c.String("verbosity"))

	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}

func treeAct(c *cli.Command) (err error) {
	ctx := setup(c)

	for _, a := range c.Args {
		prog, err := ast.DecodeFile(a)
		if err != nil {
			return errors.Wrap(err, "decode %v", a)
		}

		text, err := format.Format(ctx, nil, prog)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		fmt.Printf("%s", text)
	}

	return nil
}

func irAct(c *cli.Command) (err error) {
	ctx := setup(c)

	for _, a := range c.Args {
		prog, err := ast.DecodeFile(a)
		if err != nil {
			return errors.Wrap(err, "decode %v", a)
		}

		p, err := compiler.CompileIR(ctx, prog)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Printf("%s", ir.Format(nil, p))
	}

	return nil
}

func asmAct(c *cli.Command) (err error) {
	ctx := setup(c)

	pl := compiler.New()
	pl.Back.Comments = c.Bool("comments")

	var out []byte

	for _, a := range c.Args {
		prog, err := ast.DecodeFile(a)
		if err != nil {
			return errors.Wrap(err, "decode %v", a)
		}

		obj, err := pl.Compile(ctx, prog)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		out = append(out, obj...)
	}

	if name := c.String("output"); name != "" {
		err = os.WriteFile(name, out, 0o644)
		if err != nil {
			return errors.Wrap(err, "write output")
		}

		return nil
	}

	_, err = os.Stdout.Write(out)

	return err
}
