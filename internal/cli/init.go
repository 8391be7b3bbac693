package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/fastertools/modelschemas/internal/manifest"
)

// surveyAskOne is replaced in tests
var surveyAskOne = survey.AskOne

// InitOptions holds options for the init command
type InitOptions struct {
	Dir           string
	Output        string
	NoInteractive bool
	Force         bool
}

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [schema-dir]",
		Short: "Initialize a models manifest from schema files",
		Long: `Initialize a models manifest from the schema files found in a directory.

Every .json, .yaml and .yml file below schema-dir (default: the current
directory) becomes a model named after the file: order-line.json is
published as OrderLine. You can pick the files to include unless
--no-interactive is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Dir = args[0]
			}
			return runInit(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", manifest.DefaultFile, "manifest file to create (.yaml or .json)")
	cmd.Flags().BoolVar(&opts.NoInteractive, "no-interactive", false, "disable interactive prompts")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing manifest")

	return cmd
}

func runInit(opts *InitOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	output := opts.Output
	if output == "" {
		output = manifest.DefaultFile
	}

	if !opts.Force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", output)
		}
	}

	files, err := manifest.Discover(dir, output)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no schema files found in %s", dir)
	}
	Debug("Found %d schema files in %s", len(files), dir)

	if !opts.NoInteractive {
		if files, err = promptForFiles(files); err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no schema files selected")
		}
	}

	root, err := relativeRoot(output, dir)
	if err != nil {
		return err
	}

	f, err := manifest.Scaffold(root, files)
	if err != nil {
		return fmt.Errorf("failed to scaffold manifest: %w", err)
	}

	if err := f.Save(output); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	Success("Created %s with %d models", output, len(f.Models))
	Info("Next steps:")
	Info("  modelschemas aggregate %s", output)
	return nil
}

// relativeRoot expresses dir relative to the directory of the manifest at
// output, which is how the manifest's root field is resolved.
func relativeRoot(output, dir string) (string, error) {
	absOut, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", output, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	rel, err := filepath.Rel(filepath.Dir(absOut), absDir)
	if err != nil {
		return absDir, nil
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

func promptForFiles(files []string) ([]string, error) {
	prompt := &survey.MultiSelect{
		Message: "Select the schemas to publish:",
		Options: files,
		Default: files,
		Help:    "Each selected file becomes a model named after the file",
	}

	var selected []string
	if err := surveyAskOne(prompt, &selected); err != nil {
		return nil, err
	}
	return selected, nil
}
