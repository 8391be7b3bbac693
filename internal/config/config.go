// Package config manages modelschemas settings
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. MODELSCHEMAS_FORMAT
	EnvPrefix = "MODELSCHEMAS"

	// FileName is the settings file looked up in the working directory
	FileName = ".modelschemas"
)

// Setting keys shared by viper, flags and the settings file
const (
	KeyManifest = "manifest"
	KeyRoot     = "root"
	KeyOutput   = "output"
	KeyFormat   = "format"
	KeyWrap     = "wrap"
	KeyInto     = "into"
	KeyVerify   = "verify"
	KeyVerbose  = "verbose"
	KeyNoColor  = "no-color"
)

// Settings holds the resolved settings of one invocation
type Settings struct {
	// Manifest is the models manifest to aggregate
	Manifest string `mapstructure:"manifest"`

	// Root overrides the manifest's schema root
	Root string `mapstructure:"root"`

	// Output is the file the result is written to, stdout when empty
	Output string `mapstructure:"output"`

	// Format is json or yaml
	Format string `mapstructure:"format"`

	// Wrap nests the registry under components.schemas
	Wrap bool `mapstructure:"wrap"`

	// Into is an API document the registry is embedded into
	Into string `mapstructure:"into"`

	// Verify compiles every published schema after aggregation
	Verify bool `mapstructure:"verify"`

	Verbose bool `mapstructure:"verbose"`
	NoColor bool `mapstructure:"no-color"`
}

// SetDefaults registers every key so that environment overrides apply even
// when no settings file exists.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyManifest, "")
	v.SetDefault(KeyRoot, "")
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyFormat, "json")
	v.SetDefault(KeyWrap, false)
	v.SetDefault(KeyInto, "")
	v.SetDefault(KeyVerify, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyNoColor, false)
}

// Init points v at the settings file and the environment. cfgFile, when set,
// replaces the lookup of .modelschemas.yaml in the working directory. It
// returns the settings file used, or "" when none was found.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes the settings held by v and validates them
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.Format = strings.ToLower(strings.TrimSpace(s.Format))
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the settings can be acted on
func (s *Settings) Validate() error {
	switch s.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q: must be json or yaml", s.Format)
	}
	if s.Into != "" && s.Wrap {
		return fmt.Errorf("into and wrap cannot be combined")
	}
	return nil
}
