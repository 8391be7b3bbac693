package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastertools/modelschemas/internal/manifest"
)

func newManifestSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "manifest-schema",
		Short: "Print the JSON Schema of the models manifest",
		Long: `Print the JSON Schema of the models manifest format.

Point your editor's YAML or JSON language server at it for completion and
validation of modelschemas.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifestSchema(cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the schema to a file instead of stdout")

	return cmd
}

func runManifestSchema(out io.Writer, output string) error {
	data, err := manifest.JSONSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0600); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	Success("Wrote %s", output)
	return nil
}
