package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/config"
	"github.com/fieldshift/fieldshift/internal/shellquote"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var (
	// Global flags
	siteName     string // Named site from config
	sitePathFlag string // Explicit path
	configPath   string

	// Resolved values
	resolvedSitePath string
	cfg              *config.Config

	// exitCode is set when a failure was already reported as JSON.
	exitCode int
)

// errReported signals a failure whose details were already printed.
var errReported = errors.New("command failed")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fshift",
	Short: "fieldshift - move content fields between entities",
	Long: `fieldshift migrates content on a site: it copies and merges field values
between entities according to mapping files, and moves term assignments
from one taxonomy to another.

Values live in three stores: native entity columns, managed fields declared
in site.yaml, and free-form generic metadata.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return preRunError(ErrConfigInvalid, fmt.Errorf("failed to load config: %w", err), "")
		}
		ui.ConfigureTheme(cfg.UI.Accent)

		// Skip site resolution for commands that don't need it
		switch cmd.Name() {
		case "init", "completion", "help", "version", "guide":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		resolvedSitePath, err = resolveSitePath(cfg)
		if err != nil {
			return preRunError(ErrSiteNotSpecified, err, "")
		}
		if _, err := os.Stat(resolvedSitePath); os.IsNotExist(err) {
			return preRunError(ErrSiteNotFound, fmt.Errorf("site not found: %s", resolvedSitePath),
				"Create it with: fshift init "+shellquote.QuoteIfNeeded(resolvedSitePath))
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	closeSession()

	switch {
	case err == nil && exitCode != 0:
		return errReported
	case err == nil, errors.Is(err, errReported):
		return err
	case jsonOutput:
		// Cobra argument and flag errors still get an envelope.
		outputError(ErrInvalidInput, err.Error(), nil, "")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// preRunError reports a failure that must stop the command from running.
func preRunError(code string, err error, suggestion string) error {
	if jsonOutput {
		outputError(code, err.Error(), nil, suggestion)
		return errReported
	}
	if suggestion != "" {
		return fmt.Errorf("%w\n\n%s", err, suggestion)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&siteName, "site", "s", "", "Named site from config")
	rootCmd.PersistentFlags().StringVar(&sitePathFlag, "site-path", "", "Explicit path to site directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
}

// resolveSitePath picks the site: explicit path > named site > default site.
func resolveSitePath(c *config.Config) (string, error) {
	if sitePathFlag != "" {
		return sitePathFlag, nil
	}
	if siteName != "" {
		path, err := c.GetSitePath(siteName)
		if err != nil {
			return "", fmt.Errorf("site '%s' not found in config", siteName)
		}
		return path, nil
	}
	path, err := c.GetSitePath("")
	if err != nil {
		return "", fmt.Errorf(`no site specified

Either:
  1. Use --site <name> (from config)
  2. Use --site-path /path/to/site
  3. Set default_site in %s
  4. Run 'fshift init /path/to/new/site' to create one`, config.DefaultPath())
	}
	return path, nil
}

// getConfigPath returns the config file in effect.
func getConfigPath() string {
	if strings.TrimSpace(configPath) != "" {
		return configPath
	}
	return config.DefaultPath()
}

func loadGlobalConfig() (*config.Config, error) {
	var loaded *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loaded, err = config.LoadFrom(configPath)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = &config.Config{}
	}
	return loaded, nil
}
