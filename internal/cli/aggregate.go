package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fastertools/modelschemas/internal/aggregate"
	"github.com/fastertools/modelschemas/internal/bundle"
	"github.com/fastertools/modelschemas/internal/config"
	"github.com/fastertools/modelschemas/internal/manifest"
	"github.com/fastertools/modelschemas/internal/openapi"
	"github.com/fastertools/modelschemas/internal/schema"
)

// AggregateOptions holds options of the aggregate command that are not
// settings
type AggregateOptions struct {
	Summary       bool
	SummaryFormat string
}

func newAggregateCmd() *cobra.Command {
	opts := &AggregateOptions{}

	cmd := &cobra.Command{
		Use:   "aggregate [manifest]",
		Short: "Aggregate model schemas into one registry",
		Long: `Aggregate the schemas listed in a models manifest into one registry.

Schema files are bundled first: references to other files are inlined.
Each model's definitions are then published under their own names, followed
by the model schema under the model name. Later entries replace earlier
ones with the same name.

The manifest defaults to the "manifest" setting, then to modelschemas.yaml
(or .yml, .json) in the current directory.`,
		Example: `  modelschemas aggregate
  modelschemas aggregate models.yaml --format yaml -o registry.yaml
  modelschemas aggregate --into openapi.yaml -o openapi.yaml
  modelschemas aggregate --wrap --verify --summary`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, config.KeyRoot, config.KeyOutput, config.KeyFormat,
				config.KeyWrap, config.KeyInto, config.KeyVerify); err != nil {
				return err
			}
			settings, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			if len(args) > 0 {
				settings.Manifest = args[0]
			}
			return runAggregate(commandContext(cmd), cmd.OutOrStdout(), settings, opts)
		},
	}

	cmd.Flags().String(config.KeyRoot, "", "directory schema paths are resolved against (default: manifest root)")
	cmd.Flags().StringP(config.KeyOutput, "o", "", "write the result to a file instead of stdout")
	cmd.Flags().StringP(config.KeyFormat, "f", "json", "output format (json, yaml)")
	cmd.Flags().Bool(config.KeyWrap, false, "nest the registry under components.schemas")
	cmd.Flags().String(config.KeyInto, "", "API document to embed the registry into")
	cmd.Flags().Bool(config.KeyVerify, false, "check that every published schema compiles and its references resolve")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "print the published schemas")
	cmd.Flags().StringVar(&opts.SummaryFormat, "summary-format", "table", "summary format (table, json)")

	return cmd
}

func runAggregate(ctx context.Context, out io.Writer, settings *config.Settings, opts *AggregateOptions) error {
	path := settings.Manifest
	if path == "" {
		found, err := manifest.Find(".")
		if err != nil {
			return err
		}
		path = found
	}

	m, err := manifest.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	Debug("Loaded %s with %d models", m.Path, len(m.Models))

	root := m.Root
	if settings.Root != "" {
		if root, err = filepath.Abs(settings.Root); err != nil {
			return fmt.Errorf("failed to resolve root: %w", err)
		}
	}
	Debug("Resolving schemas against %s", root)

	agg := aggregate.New(bundle.NewFileBundler(), schema.DefaultCleaner,
		aggregate.WithRoot(root),
		aggregate.WithLogger(Debug),
	)

	sp := startSpinner(colorOutput, fmt.Sprintf(" Aggregating %d models...", len(m.Models)))
	reg, err := agg.Aggregate(ctx, m.Models)
	stopSpinner(sp)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	if settings.Verify {
		if err := openapi.Verify(reg); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		Debug("Verified %d schemas", reg.Len())
	}

	doc, err := outputDocument(reg, settings)
	if err != nil {
		return err
	}

	data, err := openapi.Encode(doc, settings.Format)
	if err != nil {
		return err
	}

	summaryOut := colorOutput
	if settings.Output != "" {
		if err := os.WriteFile(settings.Output, data, 0600); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		Success("Wrote %d schemas to %s", reg.Len(), settings.Output)
		summaryOut = out
	} else if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if opts.Summary {
		return writeSummary(summaryOut, opts.SummaryFormat, reg)
	}
	return nil
}

// outputDocument picks what is written: the bare registry, the registry
// wrapped in components.schemas, or an API document with the registry
// embedded.
func outputDocument(reg *aggregate.Registry, settings *config.Settings) (*schema.Node, error) {
	switch {
	case settings.Into != "":
		api, err := openapi.LoadDocument(settings.Into)
		if err != nil {
			return nil, err
		}
		Debug("Embedding into %s", settings.Into)
		return openapi.Embed(api, reg)
	case settings.Wrap:
		return openapi.Wrap(reg), nil
	default:
		return reg.Node(), nil
	}
}

// startSpinner shows progress on an interactive terminal. It returns nil when
// w is not a terminal or verbose output would interleave with it.
func startSpinner(w io.Writer, suffix string) *spinner.Spinner {
	if IsVerbose() || !isTerminal(w) {
		return nil
	}
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	sp.Suffix = suffix
	sp.Start()
	return sp
}

func stopSpinner(sp *spinner.Spinner) {
	if sp != nil {
		sp.Stop()
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
