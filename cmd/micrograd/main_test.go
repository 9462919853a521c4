package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeProgram(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "micrograd "+version+"\n", out)
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo")
	require.NoError(t, err)

	assert.Contains(t, out, "# k = x * y\nValue: data=6, grad=1, op=*\nChildren:\n  Value: data=3, grad=2, op=\n  Value: data=2, grad=3, op=\n")
	assert.Contains(t, out, "# z = x + y\nValue: data=5, grad=1, op=+\n")
	assert.Contains(t, out, "# m = x^2\nValue: data=9, grad=1, op=pow\nChildren:\n  Value: data=3, grad=6, op=\n")
	assert.Contains(t, out, "# n = relu(x)\nValue: data=3, grad=1, op=ReLU\n")
}

func TestRunAndInspect(t *testing.T) {
	dir := t.TempDir()
	a := writeProgram(t, dir, "square.yaml", `
root: y
nodes:
  - {name: x, value: 4}
  - {name: y, op: mul, args: [x, x]}
`)
	b := writeProgram(t, dir, "neuron.yaml", `
root: out
nodes:
  - {name: x, value: 3}
  - {name: w, value: -0.5}
  - {name: wx, op: mul, args: [w, x]}
  - {name: out, op: relu, args: [wx]}
`)
	outDir := filepath.Join(dir, "snapshots")

	out, err := execute(t, "run", "-j", "2", "-o", outDir, a, b)
	require.NoError(t, err)

	assert.Contains(t, out, "# "+a+"\nValue: data=16, grad=1, op=*\nChildren:\n  Value: data=4, grad=8, op=\n")
	assert.Contains(t, out, "# "+b+"\nValue: data=0, grad=1, op=ReLU\n")
	assert.Less(t, bytes.Index([]byte(out), []byte(a)), bytes.Index([]byte(out), []byte(b)), "dumps follow argument order")

	snap := filepath.Join(outDir, "square.mgrd")
	require.FileExists(t, snap)

	out, err = execute(t, "inspect", "--max-depth", "0", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 nodes,")
	assert.Contains(t, out, "  program: "+a+"\n")
	assert.Contains(t, out, "Value: data=16, grad=1, op=*\n...\n")
}

func TestRun_InvalidProgram(t *testing.T) {
	dir := t.TempDir()
	bad := writeProgram(t, dir, "bad.yaml", "root: y\nnodes:\n  - {name: y, op: relu, args: [x]}\n")

	_, err := execute(t, "run", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestInspect_Missing(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "none.mgrd"))
	assert.Error(t, err)
}
