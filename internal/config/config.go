// Package config loads runtime configuration from the environment and an
// optional selectors data file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultMemberNo is used when no member number is given on the command line
// or in the environment.
const DefaultMemberNo = "104294"

// Config holds everything the downloader needs for one run. Credentials are
// required; absence is a fatal configuration error before any browser starts.
type Config struct {
	Email    string `envconfig:"INCOLINK_EMAIL" required:"true"`
	Password string `envconfig:"INCOLINK_PASSWORD" required:"true"`

	MemberNo  string `envconfig:"INCOLINK_MEMBER_NO"`
	PortalURL string `envconfig:"INCOLINK_PORTAL_URL" default:"https://compliancelink.incolink.org.au"`
	OutputDir string `envconfig:"INCOLINK_OUTPUT_DIR" default:"invoices"`

	ExecPath string `envconfig:"INCOLINK_BROWSER_EXEC"`
	Headless bool   `envconfig:"INCOLINK_HEADLESS" default:"true"`

	ElementTimeout  time.Duration `envconfig:"INCOLINK_ELEMENT_TIMEOUT" default:"15s"`
	QuiesceTimeout  time.Duration `envconfig:"INCOLINK_QUIESCE_TIMEOUT" default:"30s"`
	DownloadTimeout time.Duration `envconfig:"INCOLINK_DOWNLOAD_TIMEOUT" default:"60s"`
}

// Load reads a .env file if present, then parses the environment.
func Load() (Config, error) {
	// Missing .env is not an error; the environment may already be set.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}

// ResolveMemberNo picks the member number: CLI argument first, then the
// environment value, then the built-in default.
func (c Config) ResolveMemberNo(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if c.MemberNo != "" {
		return c.MemberNo
	}
	return DefaultMemberNo
}
