package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/audit"
	"github.com/fieldshift/fieldshift/internal/site"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the audit trail of an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntityID(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		entries, err := audit.ReadForEntity(site.AuditPath(resolvedSitePath), id)
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"entries": entries}, &Meta{Count: len(entries)})
			return nil
		}
		if len(entries) == 0 {
			fmt.Println(ui.Hint(fmt.Sprintf("No recorded changes for entity %d.", id)))
			return nil
		}
		for _, e := range entries {
			target := e.Kind
			if e.Key != "" {
				target += ":" + e.Key
			}
			fmt.Printf("%s  %-12s %-20s %s -> %s\n",
				ui.Hint(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
				e.Operation, target, formatValue(e.Old), formatValue(e.New))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
