package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		showData, skipCheck, demoOut, demoSeed = false, false, "", 1
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestDemoAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.itns")
	out, err := execute(t, "demo", "--seed", "3", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "B *= 1e+200")
	assert.Contains(t, out, "wrote "+path)

	out, err = execute(t, "inspect", path, "--data")
	require.NoError(t, err)
	assert.Contains(t, out, "3 tensors")
	assert.Contains(t, out, "seed: 3")
	assert.Contains(t, out, "gram")
	assert.Contains(t, out, "VALUE")
}

func TestInspectMissingFile(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "nope.itns"))
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	t.Setenv("ITENSOR_NEGLIGIBLE", "-1")
	_, err := execute(t, "version")
	assert.Error(t, err)
}
