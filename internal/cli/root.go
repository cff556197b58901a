package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the uml2raml CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "uml2raml",
		Short:         "Generate RAML 1.0 API descriptions from UML models",
		Long:          "uml2raml turns UML models annotated with the REST and RAML profiles into RAML 1.0 documents, optionally exporting OpenAPI 3 as well.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().Bool("log-json", false, "Write log entries as JSON lines")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newListCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}
	return cmd
}

func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
