package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 1e-15, c.Negligible)
	assert.True(t, c.CheckArrows)
	assert.Equal(t, DefaultScaleLogLimit, c.ScaleLogLimit)
	assert.False(t, c.PrintData)
	assert.NoError(t, c.Validate())
	assert.NotNil(t, c.Log())
}

func TestNewWithOptions(t *testing.T) {
	c := New(WithNegligible(1e-8), WithCheckArrows(false), WithScaleLogLimit(10), WithDebug(true))
	assert.Equal(t, 1e-8, c.Negligible)
	assert.False(t, c.CheckArrows)
	assert.Equal(t, 10.0, c.ScaleLogLimit)
	assert.True(t, c.Debug)
}

func TestOptionsPanicOnNonsense(t *testing.T) {
	assert.Panics(t, func() { WithNegligible(-1) })
	assert.Panics(t, func() { WithScaleLogLimit(0) })
	assert.Panics(t, func() { WithImagTolerance(-1e-3) })
}

func TestFromOptions(t *testing.T) {
	v := viper.New()
	v.Set(KeyNegligible, 1e-12)
	v.Set(KeyCheckArrows, false)
	v.Set(KeyPrintData, true)

	c, err := FromOptions(v)
	require.NoError(t, err)
	assert.Equal(t, 1e-12, c.Negligible)
	assert.False(t, c.CheckArrows)
	assert.True(t, c.PrintData)
	assert.Equal(t, DefaultImagTolerance, c.ImagTolerance)
}

func TestFromOptionsRejectsInvalid(t *testing.T) {
	v := viper.New()
	v.Set(KeyScaleLogLimit, -5)

	_, err := FromOptions(v)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itensor.yaml")
	yaml := "negligible: 1.0e-10\ncheck_arrows: false\nscale_log_limit: 50\nprint_scale: 0.001\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-10, c.Negligible)
	assert.False(t, c.CheckArrows)
	assert.Equal(t, 50.0, c.ScaleLogLimit)
	assert.Equal(t, 0.001, c.PrintScale)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ITENSOR_NEGLIGIBLE", "1e-9")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1e-9, c.Negligible)
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultNegligible, c.Negligible)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("negligible: [1, 2\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
