package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-lang/forgec/pkg/version"
)

func TestLoadTOMLLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
target = "llvm"
opt_level = 2
verbose = true
search_path = ["src", "vendor"]
`), 0o644))

	cfg, err := LoadTOML(path, Default())
	require.NoError(t, err)
	assert.Equal(t, TargetLLVM, cfg.Target)
	assert.Equal(t, 2, cfg.OptLevel)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"src", "vendor"}, cfg.SearchPath)
}

func TestLoadTOMLMissingFileLeavesBaseUnchanged(t *testing.T) {
	cfg, err := LoadTOML(filepath.Join(t.TempDir(), "missing.toml"), Default())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverridesTOMLValues(t *testing.T) {
	t.Setenv("FORGE_TARGET", "llvm")
	t.Setenv("FORGE_OPT_LEVEL", "3")
	t.Setenv("FORGE_VERBOSE", "true")

	base := Config{Target: TargetVM, OptLevel: 0, Verbose: false}
	cfg, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"), base)
	require.NoError(t, err)
	assert.Equal(t, TargetLLVM, cfg.Target)
	assert.Equal(t, 3, cfg.OptLevel)
	assert.True(t, cfg.Verbose)
}

func TestLoadTOMLParsesMinForgeVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`min_forge_version = "0.3.0"`), 0o644))

	cfg, err := LoadTOML(path, Default())
	require.NoError(t, err)
	assert.Equal(t, version.New(0, 3, 0), cfg.MinForgeVersion)
}

func TestCheckVersionRejectsOlderRunningVersion(t *testing.T) {
	cfg := Default()
	cfg.MinForgeVersion = version.New(0, 3, 0)

	assert.NoError(t, cfg.CheckVersion(version.New(0, 3, 0)))
	assert.NoError(t, cfg.CheckVersion(version.New(0, 4, 0)))
	assert.Error(t, cfg.CheckVersion(version.New(0, 2, 0)))
}

func TestCheckVersionSkipsWhenNoMinimumDeclared(t *testing.T) {
	assert.NoError(t, Default().CheckVersion(version.New(0, 0, 1)))
}

func TestOverrideTargetOnlyAppliesWhenSet(t *testing.T) {
	cfg := Default()
	unset := cfg.OverrideTarget("llvm", false)
	assert.Equal(t, TargetVM, unset.Target)

	set := cfg.OverrideTarget("llvm", true)
	assert.Equal(t, TargetLLVM, set.Target)
}
