package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSolveBranchAndBound(t *testing.T) {
	out, _, err := execute(t, "solve", "instance/testdata/classic.yaml", "--method", "bnb")
	require.NoError(t, err)

	assert.Contains(t, out, "status: optimal\n")
	assert.Contains(t, out, "objective: 20\n")
	assert.Contains(t, out, "x = 4\n")
	assert.Contains(t, out, "y = 0\n")
	assert.Contains(t, out, "nodes: 5\n")
	assert.Contains(t, out, "check: ok\n")
	assert.NotContains(t, out, "tableau 0:")
	assert.NotContains(t, out, "final tableau:")
}

func TestSolveRelaxation(t *testing.T) {
	out, _, err := execute(t, "solve", "instance/testdata/classic.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "status: optimal\n")
	assert.Contains(t, out, "alternate optimum: false\n")
	assert.Contains(t, out, "check: ok\n")

	out, _, err = execute(t, "solve", "instance/testdata/covering.json", "--method=dual", "--strict-alternate")
	require.NoError(t, err)
	assert.Contains(t, out, "status: optimal\n")
	assert.Contains(t, out, "check: ok\n")
}

func TestSolveHistoryAndMetrics(t *testing.T) {
	out, _, err := execute(t, "solve", "instance/testdata/classic.yaml",
		"--method", "bnb", "--search", "best", "--history", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "objective: 20\n")
	assert.Contains(t, out, "tableau 0:")
	assert.Contains(t, out, "model:\nmax c =")
	assert.Contains(t, out, "final tableau:\nbasis = [")
	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, "incumbent")
	assert.Contains(t, out, `tableau_solves_total{method="bnb",status="optimal"} 1`)
	assert.Contains(t, out, "tableau_pivots_total")
}

func TestSolveIntegerFlag(t *testing.T) {
	out, _, err := execute(t, "solve", "instance/testdata/classic.yaml", "--method", "bnb", "--integer", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "status: optimal\n")
	assert.Contains(t, out, "check: ok\n")
}

func TestSolveLimits(t *testing.T) {
	out, _, err := execute(t, "solve", "instance/testdata/classic.yaml", "--method", "bnb", "--max-depth", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "status: max_iter_exceeded\n")
	assert.NotContains(t, out, "objective:")
}

func TestSolveDebugLogging(t *testing.T) {
	_, logs, err := execute(t, "solve", "instance/testdata/classic.yaml", "--method", "gomory", "--debug")
	require.NoError(t, err)
	assert.Contains(t, logs, "loaded problem")
	assert.Contains(t, logs, "level=debug")
}

func TestSolveErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"no file":        {"solve"},
		"unknown method": {"solve", "instance/testdata/classic.yaml", "--method", "interior"},
		"unknown search": {"solve", "instance/testdata/classic.yaml", "--search", "bfs"},
		"missing file":   {"solve", "instance/testdata/missing.yaml"},
		"bad document":   {"solve", "instance/testdata/bad_sense.yaml"},
		"bad epsilon":    {"solve", "instance/testdata/classic.yaml", "--epsilon", "2"},
		"bad integer":    {"solve", "instance/testdata/classic.yaml", "--method", "bnb", "--integer", "7"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestConvert(t *testing.T) {
	out, _, err := execute(t, "convert", "instance/testdata/covering.json")
	require.NoError(t, err)
	assert.Contains(t, out, "direction: min")
	assert.Contains(t, out, "coefficients:")

	_, _, err = execute(t, "convert", "instance/testdata/bad_sense.yaml")
	assert.Error(t, err)
}
