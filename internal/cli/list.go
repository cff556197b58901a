package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/uml2raml/internal/annotation"
	"github.com/mark3labs/uml2raml/internal/generate"
	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/profile"
)

// ListConfig captures the options for the list command.
type ListConfig struct {
	Input       string
	ModelFormat string
}

var listRunner = runList

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [input]",
		Short: "List the API packages of a UML model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("model-format")
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if cmd.Flags().Changed("input") {
					return newUsageError("list: input given both as --input and as an argument")
				}
				input = args[0]
			}
			cfg := &ListConfig{
				Input:       strings.TrimSpace(input),
				ModelFormat: strings.ToLower(strings.TrimSpace(format)),
			}
			if cfg.ModelFormat == "auto" {
				cfg.ModelFormat = ""
			}
			if cfg.Input == "" {
				return newUsageError("list: --input is required")
			}
			return listRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("input", "", "Path to the UML model (.yaml, .json or .toml)")
	cmd.Flags().String("model-format", "", "Model file format (auto|yaml|json|toml)")

	return cmd
}

func runList(ctx context.Context, cfg *ListConfig) error {
	m, err := loadModel(ctx, cfg.Input, cfg.ModelFormat)
	if err != nil {
		return err
	}
	return printAPIs(os.Stdout, m)
}

// printAPIs writes one line per API package: name, title and version.
func printAPIs(w io.Writer, m *model.Model) error {
	res := annotation.NewResolver(m.Profile)
	apis := generate.APIs(m)
	if len(apis) == 0 {
		_, err := fmt.Fprintln(w, "No API packages found.")
		return err
	}
	for _, pkg := range apis {
		title, _ := res.String(pkg, profile.TagAPI, profile.PropTitle)
		version, _ := res.String(pkg, profile.TagAPI, profile.PropVersion)
		if strings.TrimSpace(title) == "" {
			title = pkg.Name
		}
		line := fmt.Sprintf("%s\t%s", pkg.Name, title)
		if version != "" {
			line += "\t" + version
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
