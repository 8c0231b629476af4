// Command incolinkdownloader logs into the Incolink employer portal, finds
// the first open invoice for a member number, triggers the portal's export,
// and writes the downloaded file to a local directory.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/R3v3ill3/incolinkdownloader/internal/browser"
	"github.com/R3v3ill3/incolinkdownloader/internal/config"
	"github.com/R3v3ill3/incolinkdownloader/internal/intercept"
	"github.com/R3v3ill3/incolinkdownloader/internal/session"
)

// appVersion is set at build time via -ldflags="-X main.appVersion=x.x.x"
var appVersion = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		outputDir     string
		selectorsFile string
		execPath      string
		headful       bool
	)

	cmd := &cobra.Command{
		Use:          "incolinkdownloader [member-no]",
		Short:        "Export the first open invoice for an Incolink member",
		Version:      appVersion,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, outputDir, selectorsFile, execPath, headful)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write the exported invoice (default \"invoices\")")
	cmd.Flags().StringVar(&selectorsFile, "selectors", "", "YAML file overriding the portal selector sets")
	cmd.Flags().StringVar(&execPath, "exec", "", "Browser executable (auto-detect if empty)")
	cmd.Flags().BoolVar(&headful, "headful", false, "Run the browser with a visible window")

	return cmd
}

func run(args []string, outputDir, selectorsFile, execPath string, headful bool) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("run", uuid.NewString()[:8]).Logger()

	// Configuration failures are fatal before any browser is launched.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if execPath != "" {
		cfg.ExecPath = execPath
	}
	if headful {
		cfg.Headless = false
	}

	sel, err := config.LoadSelectors(selectorsFile)
	if err != nil {
		return err
	}
	memberNo := cfg.ResolveMemberNo(args)

	if cfg.ExecPath == "" {
		cfg.ExecPath = browser.DetectExecutable()
		if cfg.ExecPath == "" {
			return fmt.Errorf("no Chrome/Chromium found; install one or pass --exec")
		}
		log.Debug().Str("exec", cfg.ExecPath).Msg("auto-detected browser")
	}

	bcfg := browser.DefaultConfig()
	bcfg.ExecPath = cfg.ExecPath
	bcfg.Headless = cfg.Headless

	b, err := browser.New(bcfg)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer b.Close()

	// The interceptor attaches before the first navigation so no response
	// on the page is ever unobserved.
	net, err := intercept.Attach(b.Ctx, log)
	if err != nil {
		return fmt.Errorf("attach network interceptor: %w", err)
	}

	driver := session.New(b.Ctx, cfg, sel, memberNo, net, log)
	path, err := driver.Run()
	if err != nil {
		if browser.IsClosed(err) {
			return fmt.Errorf("browser closed or run timed out: %w", err)
		}
		return err
	}

	log.Info().Str("path", path).Msg("export complete")
	return nil
}
