package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/batch"
	"github.com/fieldshift/fieldshift/internal/mapping"
	"github.com/fieldshift/fieldshift/internal/notice"
	"github.com/fieldshift/fieldshift/internal/store"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var (
	batchCSV      string
	batchMapping  string
	batchRules    []string
	batchMerge    bool
	batchDryRun   bool
	batchEncoding string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Apply a mapping to every entity pair listed in a CSV file",
	Long: `Runs 'fshift map' once per CSV row. Each row holds a source id and an
optional destination id:

  source_id,dest_id
  42,97
  43

The header row is optional; without one the first two columns are used.
Rows run one at a time. A failing row is reported and the run continues.
Exports from older tools can be read with --encoding (e.g. windows-1252).

Examples:
  fshift batch --csv pairs.csv --mapping reports.yaml
  fshift batch --csv legacy.csv --mapping reports.yaml --encoding ISO-8859-1 --merge`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSite("batch")
		if err != nil {
			return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
		}
		if batchCSV == "" {
			return handleErrorMsg(ErrMissingArgument, "--csv is required", "")
		}

		rules, merge, err := loadRules(batchMapping, batchRules, cmd.Flags().Changed("merge"), batchMerge)
		if err != nil {
			return handleError(ErrMappingInvalid, err, "")
		}

		f, err := os.Open(batchCSV)
		if err != nil {
			return handleError(ErrFileReadError, fmt.Errorf("failed to read %s: %w", batchCSV, err), "")
		}
		defer f.Close()

		rows, err := batch.ReadRows(f, batchEncoding)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if len(rows) == 0 {
			return handleErrorMsg(ErrInvalidInput, "no rows in "+batchCSV, "")
		}

		var progress *ui.Progress
		if !isJSONOutput() {
			progress = ui.NewProgress("Mapping", len(rows))
		}
		mapper := existingEntities{db: sess.DB, engine: sess.Engine(batchDryRun)}
		results, summary := batch.Run(rows, mapper, rules, merge, func(res batch.RowResult) {
			log := sess.Log.WithField("line", res.Row.Line)
			if res.Error != "" {
				log.Errorf("row failed: %s", res.Error)
			} else {
				sess.Notices(res.Report.Notices)
				log.Info(res.Report.String())
			}
			if progress != nil {
				progress.Increment()
			}
		})
		if progress != nil {
			progress.Done()
		}
		sess.Log.Infof("batch done: %d rows, %d failed, %d written", summary.Rows, summary.Failed, summary.Written)

		if isJSONOutput() {
			var warnings []Warning
			for _, r := range results {
				if r.Error != "" {
					warnings = append(warnings, Warning{Code: WarnRowFailed, Message: fmt.Sprintf("line %d: %s", r.Row.Line, r.Error)})
				}
			}
			outputSuccessWithWarnings(map[string]interface{}{
				"summary": summary,
				"rows":    results,
			}, warnings, &Meta{Count: summary.Rows, RunID: sess.RunID, DryRun: batchDryRun})
			return nil
		}

		if batchDryRun {
			fmt.Println(ui.Bold.Render("Dry run, no changes made:"))
		}
		for _, r := range results {
			if r.Error != "" {
				fmt.Println(ui.Error(fmt.Sprintf("line %d: %s", r.Row.Line, r.Error)))
				continue
			}
			fmt.Println(ui.Success(r.Report.String()))
			for _, n := range r.Report.Notices {
				if n.Status != notice.StatusSuccess {
					fmt.Printf("  %s\n", ui.Notice(n))
				}
			}
		}
		fmt.Printf("\n%d rows, %d failed: %d written, %d kept, %d skipped\n",
			summary.Rows, summary.Failed, summary.Written, summary.Kept, summary.Skipped)
		return nil
	},
}

// existingEntities fails a row whose source or destination entity is missing,
// the same check 'fshift map' makes before mapping.
type existingEntities struct {
	db     *store.DB
	engine *mapping.Engine
}

func (m existingEntities) Map(entityID int64, set mapping.Set, merge bool, destID int64) (*mapping.Report, error) {
	for _, id := range []int64{entityID, destID} {
		if id == 0 {
			continue
		}
		if _, err := m.db.GetEntity(id); err != nil {
			return nil, err
		}
	}
	return m.engine.Map(entityID, set, merge, destID)
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "CSV file of source_id[,dest_id] rows")
	batchCmd.Flags().StringVarP(&batchMapping, "mapping", "m", "", "Path to YAML mapping file")
	batchCmd.Flags().StringArrayVar(&batchRules, "rule", nil, "Inline rule \"kind:key -> kind:key\" (repeatable)")
	batchCmd.Flags().BoolVar(&batchMerge, "merge", false, "Keep non-empty destination values")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Report what would be written without writing")
	batchCmd.Flags().StringVar(&batchEncoding, "encoding", "", "CSV character encoding (IANA name, default UTF-8)")
	rootCmd.AddCommand(batchCmd)
}
