package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProblem(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunPrintsRoutes(t *testing.T) {
	t.Setenv("CACHE_TTL", "0s")
	path := writeProblem(t, "loadNumber pickup dropoff\n1 (0,100) (0,200)\n2 (0,-100) (0,-200)\n")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-problemFile", path}, &out))
	assert.Equal(t, "[1]\n[2]\n", out.String())
}

func TestRunJSONAndMetricsFile(t *testing.T) {
	t.Setenv("CACHE_TTL", "0s")
	path := writeProblem(t, "loadNumber pickup dropoff\n1 (0,0) (0,10)\n")
	metricsPath := filepath.Join(t.TempDir(), "planner.prom")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-problemFile", path, "-format", "json", "-metrics-file", metricsPath}, &out))

	var resp struct {
		Status string  `json:"status"`
		Cost   float64 `json:"cost"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "optimal", resp.Status)
	assert.Equal(t, 520.0, resp.Cost)
	assert.FileExists(t, metricsPath)
}

func TestRunExactInfeasibleFails(t *testing.T) {
	t.Setenv("CACHE_TTL", "0s")
	path := writeProblem(t, "loadNumber pickup dropoff\n1 (0,0) (0,400)\n")

	var out bytes.Buffer
	err := run([]string{"-problemFile", path, "-engine", "exact"}, &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRunRequiresProblemFile(t *testing.T) {
	assert.Error(t, run(nil, &bytes.Buffer{}))
}
