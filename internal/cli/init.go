package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/config"
	"github.com/fieldshift/fieldshift/internal/shellquote"
	"github.com/fieldshift/fieldshift/internal/site"
	"github.com/fieldshift/fieldshift/internal/store"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var initName string

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new site",
	Long: `Creates a new site at the specified path.

Creates:
  - site.yaml     (post types, taxonomies, managed field definitions)
  - .fieldshift/  (store, migration log, audit log)
  - .gitignore    (ignores .fieldshift/)

With --name, the site is also registered in the global config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		createdSite, err := site.CreateDefault(path)
		if err != nil {
			return handleError(ErrSiteInvalid, err, "")
		}

		db, err := store.Open(site.StorePath(path))
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		db.Close()

		gitignoreUpdated, err := ensureGitignore(path)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if initName != "" {
			if _, err := config.RegisterSite(getConfigPath(), initName, path); err != nil {
				return handleError(ErrConfigInvalid, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"path":              path,
				"created_site_yaml": createdSite,
				"gitignore_updated": gitignoreUpdated,
				"registered_as":     initName,
			}, nil)
			return nil
		}

		fmt.Printf("Initializing site at: %s\n", path)
		if createdSite {
			fmt.Println(ui.Success("Created site.yaml"))
		} else {
			fmt.Println("• site.yaml already exists (kept)")
		}
		fmt.Println(ui.Success("Ensured .fieldshift/ store exists"))
		if gitignoreUpdated {
			fmt.Println(ui.Success("Updated .gitignore"))
		}
		if initName != "" {
			fmt.Println(ui.Successf("Registered site '%s' in %s", initName, getConfigPath()))
			fmt.Println(ui.Hint("\nNext: fshift --site " + shellquote.QuoteIfNeeded(initName) + " import <type> --file data.json"))
		} else {
			fmt.Println(ui.Hint("\nNext: fshift --site-path " + shellquote.QuoteIfNeeded(path) + " import <type> --file data.json"))
		}
		return nil
	},
}

// ensureGitignore adds the data directory to .gitignore. Returns true when
// the file was written.
func ensureGitignore(sitePath string) (bool, error) {
	path := filepath.Join(sitePath, ".gitignore")
	entry := site.DataDir + "/"

	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}
	for _, line := range strings.Split(existing, "\n") {
		if strings.TrimSpace(line) == entry {
			return false, nil
		}
	}

	content := "# fieldshift store and logs\n" + entry + "\n"
	if existing != "" {
		content = strings.TrimRight(existing, "\n") + "\n\n" + content
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return true, nil
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Register the site under this name in the global config")
	rootCmd.AddCommand(initCmd)
}
