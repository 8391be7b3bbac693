package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fastertools/modelschemas/internal/bundle"
	"github.com/fastertools/modelschemas/internal/config"
	"github.com/fastertools/modelschemas/internal/openapi"
	"github.com/fastertools/modelschemas/internal/schema"
)

// RewriteOptions holds options for the rewrite command
type RewriteOptions struct {
	File   string
	Format string
	Output string
	Bundle bool
}

func newRewriteCmd() *cobra.Command {
	opts := &RewriteOptions{}

	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Rewrite the references of one schema document",
		Long: `Rewrite the references of one schema document so that they point into
components.schemas, and print the result.

The document is read from the file argument, or from stdin when the argument
is missing or "-". With --bundle, references to other files are inlined
first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && args[0] != "-" {
				opts.File = args[0]
			}
			if !cmd.Flags().Changed("format") {
				settings, err := config.Load(viper.GetViper())
				if err != nil {
					return err
				}
				opts.Format = settings.Format
			}
			return runRewrite(commandContext(cmd), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "output format (json, yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.Bundle, "bundle", false, "inline references to other files before rewriting")

	return cmd
}

func runRewrite(ctx context.Context, in io.Reader, out io.Writer, opts *RewriteOptions) error {
	doc, err := readDocument(ctx, in, opts)
	if err != nil {
		return err
	}

	data, err := openapi.Encode(schema.Rewrite(doc), opts.Format)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0600); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		Success("Wrote %s", opts.Output)
		return nil
	}
	_, err = out.Write(data)
	return err
}

func readDocument(ctx context.Context, in io.Reader, opts *RewriteOptions) (*schema.Node, error) {
	if opts.Bundle {
		if opts.File == "" {
			return nil, fmt.Errorf("--bundle needs a file argument")
		}
		return bundle.NewFileBundler().Bundle(ctx, opts.File)
	}

	var (
		data []byte
		err  error
	)
	if opts.File != "" {
		data, err = os.ReadFile(filepath.Clean(opts.File))
	} else {
		data, err = io.ReadAll(in)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}
