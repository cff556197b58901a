package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/uml2raml/internal/emitter"
	"github.com/mark3labs/uml2raml/internal/emitter/oasemitter"
	"github.com/mark3labs/uml2raml/internal/emitter/ramlemitter"
	"github.com/mark3labs/uml2raml/internal/generate"
	"github.com/mark3labs/uml2raml/internal/logger"
	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/raml"
)

// Output formats accepted by --format.
const (
	FormatRAML    = "raml"
	FormatOASJSON = "oas-json"
	FormatOASYAML = "oas-yaml"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input           string
	Out             string
	API             string
	Format          string
	ModelFormat     string
	ArraysAsTypes   bool
	Descriptions    bool
	DescriptionPath string
	ConfigPath      string
	DryRun          bool
	Verbose         bool
	LogJSON         bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Format: FormatRAML, Out: "-"}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [input [output]]",
		Short: "Generate a RAML document from a UML model",
		Long: "Generate a RAML 1.0 document (or an OpenAPI 3 export) from one API package of a UML model. " +
			"Options can be provided via flags, positional arguments, config files, or defaults.",
		Example: strings.TrimSpace(`  uml2raml generate --input shop.uml.yaml --out shop.raml --descriptions
  uml2raml generate shop.uml.yaml - --api "Shop API"
  uml2raml --config uml2raml.yaml generate --format oas-yaml --out shop.yaml`),
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, args)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path to the UML model (.yaml, .json or .toml)")
	flags.String("out", "", `Output file; "-" writes to stdout (default)`)
	flags.String("api", "", "Name or title of the API package to generate")
	flags.String("format", "", "Output format (raml|oas-json|oas-yaml); defaults to raml")
	flags.String("model-format", "", "Model file format (auto|yaml|json|toml); defaults to auto")
	flags.Bool("arrays-as-types", false, `Reference array bodies and responses through "<Type>Array" types`)
	flags.Bool("descriptions", false, `Write Markdown stubs for "!" descriptions and include them`)
	flags.String("description-path", "", "Directory for description stubs (defaults to the output directory)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command, args []string) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	if err := applyPositionalArgs(cmd.Flags(), &cfg, args); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"out", &cfg.Out},
		{"api", &cfg.API},
		{"format", &cfg.Format},
		{"model-format", &cfg.ModelFormat},
		{"description-path", &cfg.DescriptionPath},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = strings.TrimSpace(value)
	}
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"arrays-as-types", &cfg.ArraysAsTypes},
		{"descriptions", &cfg.Descriptions},
		{"dry-run", &cfg.DryRun},
		{"verbose", &cfg.Verbose},
		{"log-json", &cfg.LogJSON},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = value
	}
	return nil
}

// applyPositionalArgs accepts "input [output]" as an alternative to --input
// and --out; giving both forms is an error.
func applyPositionalArgs(flags *pflag.FlagSet, cfg *GenerateConfig, args []string) error {
	if len(args) > 0 {
		if flags.Changed("input") {
			return newUsageError("generate: input given both as --input and as an argument")
		}
		cfg.Input = args[0]
	}
	if len(args) > 1 {
		if flags.Changed("out") {
			return newUsageError("generate: output given both as --out and as an argument")
		}
		cfg.Out = args[1]
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.API = strings.TrimSpace(c.API)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.ModelFormat = strings.ToLower(strings.TrimSpace(c.ModelFormat))
	c.DescriptionPath = strings.TrimSpace(c.DescriptionPath)
	if c.Out == "" {
		c.Out = "-"
	}
	if c.ModelFormat == "auto" {
		c.ModelFormat = ""
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag, argument or config file)")
	}

	switch c.Format {
	case "", FormatRAML, FormatOASJSON, FormatOASYAML:
		if c.Format == "" {
			c.Format = FormatRAML
		}
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --format %q (allowed: raml, oas-json, oas-yaml)", c.Format))
	}

	switch model.Format(c.ModelFormat) {
	case model.FormatAuto, model.FormatYAML, model.FormatJSON, model.FormatTOML:
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --model-format %q (allowed: auto, yaml, json, toml)", c.ModelFormat))
	}

	if c.Descriptions && c.Format != FormatRAML {
		return newUsageError("generate: --descriptions only applies to --format raml")
	}
	if c.DescriptionPath != "" && !c.Descriptions {
		return newUsageError("generate: --description-path requires --descriptions")
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := logger.New(os.Stderr, cfg.Verbose, cfg.LogJSON)
	defer func() { _ = log.Sync() }()

	// 1) Load and link the model
	m, err := loadModel(ctx, cfg.Input, cfg.ModelFormat)
	if err != nil {
		return err
	}

	// 2) Build the one requested API document
	gen := generate.New(generate.WithArraysAsTypes(cfg.ArraysAsTypes), generate.WithLogger(log))
	var names []string
	if cfg.API != "" {
		names = []string{cfg.API}
	}
	api, err := gen.GenerateOne(m, names...)
	if err != nil {
		if errors.Is(err, generate.ErrNoAPI) || errors.Is(err, generate.ErrAmbiguous) {
			return newUsageError(fmt.Sprintf("%v\nAvailable APIs: %s\nHint: select one with --api.", err, strings.Join(apiNames(m), ", ")))
		}
		return errors.Wrapf(err, "generate %s", cfg.Input)
	}
	log.Debug("generated API", zap.String("title", api.Title), zap.Int("types", len(api.TypeDefs)))

	// 3) Emit in the chosen format
	res, err := emit(ctx, api, cfg, log, os.Stdout)
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}
	if cfg.DryRun {
		target := cfg.Out
		if !emitter.ToStdout(target) {
			if abs, err := filepath.Abs(target); err == nil {
				target = filepath.Dir(abs)
			}
		}
		printPlan(os.Stdout, target, res.Planned)
	}
	return nil
}

func emit(ctx context.Context, api *raml.API, cfg *GenerateConfig, log *zap.Logger, stdout io.Writer) (*emitter.Result, error) {
	switch cfg.Format {
	case FormatRAML:
		return ramlemitter.Emit(ctx, api, ramlemitter.Options{
			Out:              cfg.Out,
			DescriptionFiles: cfg.Descriptions,
			DescriptionDir:   cfg.DescriptionPath,
			DryRun:           cfg.DryRun,
			Stdout:           stdout,
			Logger:           log,
		})
	case FormatOASJSON, FormatOASYAML:
		format := oasemitter.JSON
		if cfg.Format == FormatOASYAML {
			format = oasemitter.YAML
		}
		return oasemitter.Emit(ctx, api, oasemitter.Options{
			Out:    cfg.Out,
			Format: format,
			DryRun: cfg.DryRun,
			Stdout: stdout,
			Logger: log,
		})
	default:
		return nil, newUsageError(fmt.Sprintf("generate: unsupported --format %q (allowed: raml, oas-json, oas-yaml)", cfg.Format))
	}
}

// loadModel maps structured load errors into friendly usage errors.
func loadModel(ctx context.Context, input, format string) (*model.Model, error) {
	m, err := model.Load(ctx, input, model.WithFormat(model.Format(format)))
	if err == nil {
		return m, nil
	}
	var le *model.LoadError
	if errors.As(err, &le) {
		msg := fmt.Sprintf("model: %s", le.Message)
		if le.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, le.Location)
		}
		if le.Element != "" {
			msg = fmt.Sprintf("%s\nElement: %s", msg, le.Element)
		}
		return nil, newUsageError(msg)
	}
	return nil, err
}

func apiNames(m *model.Model) []string {
	var names []string
	for _, pkg := range generate.APIs(m) {
		names = append(names, pkg.Name)
	}
	if len(names) == 0 {
		return []string{"(none)"}
	}
	return names
}

func printPlan(w io.Writer, target string, planned []emitter.PlannedFile) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", target, len(planned))
	for _, p := range planned {
		if p.Exists {
			fmt.Fprintf(w, "- %s (exists, kept)\n", p.RelPath)
			continue
		}
		fmt.Fprintf(w, "- %s\n", p.RelPath)
	}
}

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --out or --description-path.", out, err))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	stringFields := map[string]*string{
		"input":           &cfg.Input,
		"out":             &cfg.Out,
		"api":             &cfg.API,
		"format":          &cfg.Format,
		"modelformat":     &cfg.ModelFormat,
		"descriptionpath": &cfg.DescriptionPath,
	}
	boolFields := map[string]*bool{
		"arraysastypes": &cfg.ArraysAsTypes,
		"descriptions":  &cfg.Descriptions,
		"dryrun":        &cfg.DryRun,
		"verbose":       &cfg.Verbose,
		"logjson":       &cfg.LogJSON,
	}
	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := stringFields[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := boolFields[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", errors.Newf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, errors.Newf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, errors.Newf("expected boolean, got %T", v)
	}
}
