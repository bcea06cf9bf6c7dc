package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/ui"
)

var listTypes []string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSite("list")
		if err != nil {
			return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
		}

		entities, err := sess.DB.ListEntities(listTypes...)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"entities": entities}, &Meta{Count: len(entities)})
			return nil
		}
		if len(entities) == 0 {
			fmt.Println(ui.Hint("No entities."))
			return nil
		}

		tbl := ui.NewTable(4)
		tbl.SetHeader("ID", "TYPE", "STATUS", "TITLE")
		tbl.SetMaxWidth(ui.NewDisplayContext().TermWidth)
		for _, e := range entities {
			tbl.AddRow(strconv.FormatInt(e.ID, 10), e.Type, e.Status, e.Title)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceVarP(&listTypes, "type", "t", nil, "Only list entities of these post types (repeatable)")
	rootCmd.AddCommand(listCmd)
}
