package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureConfig runs the CLI with args and returns the config handed to the
// generate runner.
func captureConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestGenerateConfigFromFlags(t *testing.T) {
	cfg, err := captureConfig(t,
		"--verbose",
		"--log-json",
		"generate",
		"--input", "shop.uml.yaml",
		"--out", "./build/shop.raml",
		"--api", "Shop API",
		"--format", "RAML",
		"--model-format", "yaml",
		"--arrays-as-types",
		"--descriptions",
		"--description-path", "./build/docs",
		"--dry-run",
	)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "shop.uml.yaml", cfg.Input)
	assert.Equal(t, "./build/shop.raml", cfg.Out)
	assert.Equal(t, "Shop API", cfg.API)
	assert.Equal(t, FormatRAML, cfg.Format)
	assert.Equal(t, "yaml", cfg.ModelFormat)
	assert.True(t, cfg.ArraysAsTypes)
	assert.True(t, cfg.Descriptions)
	assert.Equal(t, "./build/docs", cfg.DescriptionPath)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.LogJSON)
}

func TestGenerateConfigDefaults(t *testing.T) {
	cfg, err := captureConfig(t, "generate", "--input", "m.yaml", "--model-format", "auto")
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.Out)
	assert.Equal(t, FormatRAML, cfg.Format)
	assert.Empty(t, cfg.ModelFormat)
	assert.False(t, cfg.ArraysAsTypes)
	assert.False(t, cfg.Descriptions)
}

func TestGenerateConfigPositionalArgs(t *testing.T) {
	cfg, err := captureConfig(t, "generate", "model.toml", "out.raml")
	require.NoError(t, err)
	assert.Equal(t, "model.toml", cfg.Input)
	assert.Equal(t, "out.raml", cfg.Out)

	_, err = captureConfig(t, "generate", "--input", "a.yaml", "b.yaml")
	assert.True(t, errors.Is(err, ErrUsage))

	_, err = captureConfig(t, "generate", "a", "b", "c")
	assert.Error(t, err)
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-model.yaml
out: from-config.raml
api: ConfigAPI
format: raml
arrays-as-types: true
descriptions: "yes"
description_path: docs
dryRun: true
verbose: true
`) + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg, err := captureConfig(t,
		"--config", configPath,
		"generate",
		"--input", "flag-model.yaml",
		"--arrays-as-types=false",
		"--dry-run=false",
	)
	require.NoError(t, err)

	assert.Equal(t, "flag-model.yaml", cfg.Input)
	assert.Equal(t, "from-config.raml", cfg.Out)
	assert.Equal(t, "ConfigAPI", cfg.API)
	assert.False(t, cfg.ArraysAsTypes, "flag overrides config")
	assert.True(t, cfg.Descriptions)
	assert.Equal(t, "docs", cfg.DescriptionPath)
	assert.False(t, cfg.DryRun, "flag overrides config")
	assert.True(t, cfg.Verbose, "config value kept")
	assert.Equal(t, configPath, cfg.ConfigPath)
}

func TestGenerateConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()
	unknown := filepath.Join(tmpDir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("unknown: value\n"), 0o600))
	badBool := filepath.Join(tmpDir, "bool.yaml")
	require.NoError(t, os.WriteFile(badBool, []byte("dryRun: maybe\n"), 0o600))

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"generate"}, "--input is required"},
		{"bad format", []string{"generate", "--input", "m.yaml", "--format", "xml"}, "unsupported --format"},
		{"bad model format", []string{"generate", "--input", "m.yaml", "--model-format", "xmi"}, "unsupported --model-format"},
		{"descriptions with oas", []string{"generate", "--input", "m.yaml", "--format", "oas-json", "--descriptions"}, "only applies to --format raml"},
		{"description path alone", []string{"generate", "--input", "m.yaml", "--description-path", "docs"}, "requires --descriptions"},
		{"unknown config key", []string{"--config", unknown, "generate", "--input", "m.yaml"}, "unknown field"},
		{"bad config bool", []string{"--config", badBool, "generate", "--input", "m.yaml"}, "invalid boolean"},
		{"missing config", []string{"--config", filepath.Join(tmpDir, "nope.yaml"), "generate"}, "read config file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := captureConfig(t, tc.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUsage), "expected usage error, got %v", err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
