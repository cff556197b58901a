package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mark3labs/uml2raml/internal/emitter"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample uml2raml configuration file",
		Long:  "Scaffold a commented uml2raml configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force})
		},
	}

	cmd.Flags().String("out", "uml2raml.yaml", "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "uml2raml.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return errors.Wrap(err, "init: resolve output path")
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := emitter.WriteAtomic(absPath, []byte(content)); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# uml2raml configuration (YAML)
# All fields are optional. Command-line flags override config values.

# UML model to read (.yaml, .yml, .json or .toml).
# input: ./shop.uml.yaml

# Model file format (auto|yaml|json|toml). auto picks one from the extension.
# modelFormat: auto

# Output file. "-" or empty writes the document to stdout.
# out: ./shop.raml

# Output format (raml|oas-json|oas-yaml). Defaults to raml.
# format: raml

# Name or title of the API package to generate. Required when the model
# declares more than one API.
# api: ShopAPI

# Reference array bodies and responses through "<Type>Array" types.
# arraysAsTypes: false

# Turn "!" descriptions into !include'd Markdown stubs (raml output only).
# descriptions: false

# Directory for the description stubs. Defaults to the output directory.
# descriptionPath: ./docs

# Preview planned outputs without writing files.
# dryRun: false

# Enable verbose logging.
# verbose: false

# Write log entries as JSON lines.
# logJson: false
`
