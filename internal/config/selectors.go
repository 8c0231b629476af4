package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Selectors carries every candidate selector set and match-text list the
// session tries, in priority order. The portal's markup is unversioned and
// shifts between deploys, so these live in data rather than code: a
// selectors.yaml next to the binary (or passed via --selectors) overrides any
// field without a rebuild.
type Selectors struct {
	EmailInputs    []string `mapstructure:"email_inputs"`
	PasswordInputs []string `mapstructure:"password_inputs"`
	SearchInputs   []string `mapstructure:"search_inputs"`
	ResultsTables  []string `mapstructure:"results_tables"`

	LoginTexts  []string `mapstructure:"login_texts"`
	ExportTexts []string `mapstructure:"export_texts"`
}

// DefaultSelectors returns the compiled-in candidate sets, matching the
// portal as last observed.
func DefaultSelectors() Selectors {
	return Selectors{
		EmailInputs: []string{
			`input[type="email"]`,
			`input[name="email"]`,
			`input[id*="email" i]`,
			`input[placeholder*="email" i]`,
		},
		PasswordInputs: []string{
			`input[type="password"]`,
			`input[name="password"]`,
			`input[id*="password" i]`,
		},
		SearchInputs: []string{
			`input[type="search"]`,
			`input[placeholder*="search" i]`,
			`input[name*="search" i]`,
			`input[aria-label*="search" i]`,
		},
		ResultsTables: []string{
			`table tbody`,
			`table`,
			`[role="table"]`,
		},
		LoginTexts:  []string{"Login", "Sign in"},
		ExportTexts: []string{"Export Invoice Details", "Export"},
	}
}

// LoadSelectors merges an optional YAML data file over the defaults. An empty
// path means "use selectors.yaml in the working directory if one exists".
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("selectors")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if path == "" {
			// No override file present; defaults stand.
			return sel, nil
		}
		return Selectors{}, fmt.Errorf("selectors file %s: %w", path, err)
	}

	if err := v.Unmarshal(&sel); err != nil {
		return Selectors{}, fmt.Errorf("selectors file: %w", err)
	}
	return sel, nil
}
