package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// commandResult holds what a command wrote
type commandResult struct {
	Stdout string
	Status string
	Err    error
}

// executeCommand runs the root command with args against fresh settings.
// Stdout receives generated documents, Status the colored messages.
func executeCommand(t *testing.T, args ...string) commandResult {
	t.Helper()
	return executeCommandIn(t, "", args...)
}

// executeCommandIn is executeCommand with stdin
func executeCommandIn(t *testing.T, stdin string, args ...string) commandResult {
	t.Helper()
	resetState(t)

	var stdout, status bytes.Buffer
	colorOutput = &status

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&status)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return commandResult{Stdout: stdout.String(), Status: status.String(), Err: err}
}

// resetState clears global settings between tests
func resetState(t *testing.T) {
	t.Helper()
	viper.Reset()

	oldOutput := colorOutput
	oldNoColor := color.NoColor
	oldAsk := surveyAskOne
	color.NoColor = true

	t.Cleanup(func() {
		viper.Reset()
		colorOutput = oldOutput
		color.NoColor = oldNoColor
		surveyAskOne = oldAsk
		cfgFile = ""
		verbose = false
		noColor = false
	})
}

// MockSurveyAskOne mocks survey.AskOne for testing interactive prompts
func MockSurveyAskOne(response interface{}) func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return func(p survey.Prompt, resp interface{}, opts ...survey.AskOpt) error {
		switch v := resp.(type) {
		case *string:
			*v = response.(string)
		case *bool:
			*v = response.(bool)
		case *[]string:
			*v = response.([]string)
		}
		return nil
	}
}

// setupWorkDir creates files in a temporary directory and makes it the
// working directory for the rest of the test
func setupWorkDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	t.Chdir(dir)
	return dir
}

// modelsProject is a small project whose schemas use every reference form
var modelsProject = map[string]string{
	"modelschemas.yaml": `root: schemas
models:
  - name: User
    schema: user.json
  - name: Tag
    schema:
      type: string
      maxLength: 20
  - name: Draft
`,
	"schemas/user.json": `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "Address": {"type": "object", "properties": {"street": {"type": "string"}}}
  },
  "properties": {
    "address": {"$ref": "#/definitions/Address"},
    "tags": {"type": "array", "items": {"$ref": "{{model: Tag}}"}},
    "phone": {"$ref": "common.json#/definitions/Phone"}
  }
}`,
	"schemas/common.json": `{"definitions": {"Phone": {"type": "string", "pattern": "^[0-9]+$"}}}`,
}
