package compiler

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/goslang/gos/compiler/ast"
	"github.com/goslang/gos/compiler/ir"
)

const start = `
global _start
_start:
	call $main
	mov rdi, rax
	mov rax, 60
	syscall
`

func TestCompileIR(t *testing.T) {
	p, err := CompileIR(context.Background(), decode(t, `
- fun:
    name: main
    body: {binop: {op: "+", left: 1, right: 2}}
`))
	require.NoError(t, err)
	require.Len(t, p.Funcs, 1)
	assert.Equal(t, []ir.Const{ir.Int(1), ir.Int(2)}, p.Consts)
}

func TestCompileErrorsWrapped(t *testing.T) {
	_, err := Compile(context.Background(), decode(t, `
- fun:
    name: main
    body: {var: nope}
`))
	assert.True(t, errors.Is(err, ir.ErrUndefinedVariable), "got %v", err)
	assert.Contains(t, err.Error(), "irgen")
}

func TestCompileFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "prog.yaml")
	require.NoError(t, os.WriteFile(name, []byte(`[{fun: {name: main, pub: true, body: 0}}]`), 0o644))

	obj, err := CompileFile(context.Background(), name)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "global $main\n$main:\n")
}

func TestRun(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		exit int
	}{
		{"add", `
- fun: {name: add, params: [{name: a}, {name: b}], body: {binop: {op: "+", left: {var: a}, right: {var: b}}}}
- fun: {name: main, body: {call: {name: add, args: [40, 2]}}}
`, 42},
		{"tail_loop", `
- fun:
    name: loop
    params: [{name: n}]
    body:
      if:
        cond: {binop: {op: "==", left: {var: n}, right: 0}}
        then: 0
        else: {call: {name: loop, args: [{binop: {op: "-", left: {var: n}, right: 1}}]}}
- fun: {name: main, body: {call: {name: loop, args: [1000000]}}}
`, 0},
		{"fact", `
- fun:
    name: fact
    params: [{name: n}]
    body:
      if:
        cond: {binop: {op: "<=", left: {var: n}, right: 1}}
        then: 1
        else: {binop: {op: "*", left: {var: n}, right: {call: {name: fact, args: [{binop: {op: "-", left: {var: n}, right: 1}}]}}}}
- fun: {name: main, body: {call: {name: fact, args: [5]}}}
`, 120},
		{"array", `
- fun:
    name: main
    body:
      block:
        - let: {name: a, type: array, value: [5, 6, 7]}
        - setindex: {target: {var: a}, index: 0, value: 30}
        - binop: {op: "+", left: {index: {target: {var: a}, index: 0}}, right: {unary: {op: "#", arg: {var: a}}}}
`, 33},
		{"while", `
- fun:
    name: main
    body:
      block:
        - let: {name: i, value: 0}
        - let: {name: s, value: 0}
        - while:
            cond: {binop: {op: "<", left: {var: i}, right: 10}}
            body:
              block:
                - set: {name: s, value: {binop: {op: "+", left: {var: s}, right: {var: i}}}}
                - unary: {op: "++", arg: {var: i}}
        - var: s
`, 45},
		{"stack_args", `
- fun:
    name: pick
    params: [{name: a}, {name: b}, {name: c}, {name: d}, {name: e}, {name: f}, {name: g}, {name: h}]
    body: {binop: {op: "-", left: {var: h}, right: {var: g}}}
- fun: {name: main, body: {call: {name: pick, args: [1, 2, 3, 4, 5, 6, 10, 17]}}}
`, 7},
		{"exit", `
- fun: {name: main, body: {block: [{exit: 9}, 1]}}
`, 9},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exit, run(t, tc.src))
		})
	}
}

func decode(t *testing.T, src string) *ast.Program {
	t.Helper()

	p, err := ast.Decode(strings.NewReader(src))
	require.NoError(t, err)

	return p
}

func run(t *testing.T, src string) int {
	t.Helper()

	if runtime.GOOS != "linux" || runtime.GOARCH != "amd64" {
		t.Skipf("can't run x86-64 linux binaries on %v/%v", runtime.GOOS, runtime.GOARCH)
	}

	for _, tool := range []string{"nasm", "ld"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%v not found", tool)
		}
	}

	obj, err := Compile(context.Background(), decode(t, src))
	require.NoError(t, err)

	dir := t.TempDir()
	asm := filepath.Join(dir, "prog.s")
	o := filepath.Join(dir, "prog.o")
	bin := filepath.Join(dir, "prog")

	require.NoError(t, os.WriteFile(asm, append(obj, start...), 0o644))

	out, err := exec.Command("nasm", "-f", "elf64", "-o", o, asm).CombinedOutput()
	require.NoError(t, err, "nasm: %s\n%s", out, obj)

	out, err = exec.Command("ld", "-o", bin, o).CombinedOutput()
	require.NoError(t, err, "ld: %s", out)

	cmd := exec.Command(bin)
	_ = cmd.Run()

	require.NotNil(t, cmd.ProcessState)

	return cmd.ProcessState.ExitCode()
}
