package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/terms"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var (
	mapTermsAppend bool
	mapTermsDryRun bool
	mapTermsYes    bool
)

var mapTermsCmd = &cobra.Command{
	Use:   "map-terms <from-taxonomy> <to-taxonomy> <source-id> [dest-id]",
	Short: "Move an entity's term assignments to another taxonomy",
	Long: `Matches the source entity's terms in <from-taxonomy> against terms in
<to-taxonomy> by slug. Unmatched terms are created in the destination taxonomy
(an existing term with the same name is reused), then the matched and created
terms are assigned to the destination entity in one operation.

By default the destination's terms in <to-taxonomy> are replaced; --append
keeps them. Replacing existing terms asks for confirmation unless --yes is given.

Examples:
  fshift map-terms category report_type 42
  fshift map-terms post_tag topic 42 97 --append
  fshift map-terms category report_type 42 --dry-run`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSite("map-terms")
		if err != nil {
			return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
		}

		srcID, err := parseEntityID(args[2])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		destID, err := parseOptionalEntityID(args, 3)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		mapper, err := terms.New(sess.Site, sess.DB, args[0], args[1], srcID)
		if err != nil {
			return handleError(errorCode(err, ErrInvalidInput), err, "Check taxonomies in site.yaml")
		}
		target := destID
		if target == 0 {
			target = srcID
		}
		for _, id := range []int64{srcID, target} {
			if _, err := sess.DB.GetEntity(id); err != nil {
				return handleError(errorCode(err, ErrDatabaseError), err, "Run 'fshift list' to see entities")
			}
		}

		before, err := sess.DB.EntityTermIDs(target, mapper.To)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if !mapTermsAppend && !mapTermsDryRun && len(before) > 0 && !mapTermsYes {
			msg := fmt.Sprintf("Entity %d already has %d %s term(s) that will be replaced. Continue?", target, len(before), mapper.To)
			if !promptForConfirm(msg) {
				return handleErrorMsg(ErrConfirmationRequired,
					fmt.Sprintf("entity %d already has %s terms; refusing to replace them", target, mapper.To),
					"Re-run with --yes to replace, or --append to keep them")
			}
		}

		outcome, err := terms.Migrate(sess.DB, mapper, terms.Options{
			DestEntityID: destID,
			Append:       mapTermsAppend,
			DryRun:       mapTermsDryRun,
		})
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		sess.Notices(outcome.Notices)
		sess.Log.Info(outcome.String())
		if !mapTermsDryRun && len(outcome.Assigned) > 0 {
			after, err := sess.DB.EntityTermIDs(target, mapper.To)
			if err != nil {
				sess.warnOnError(err, "failed to read assigned terms for audit")
			} else {
				sess.warnOnError(sess.Audit.LogTerms(target, mapper.To, before, after), "failed to audit term assignment")
			}
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(outcome, noticeWarnings(outcome.Notices),
				&Meta{Count: outcome.AssignCount(), RunID: sess.RunID, DryRun: mapTermsDryRun})
			return nil
		}

		if mapTermsDryRun {
			fmt.Println(ui.Bold.Render("Dry run, no changes made:"))
		}
		fmt.Println(ui.Header(fmt.Sprintf("%s -> %s on %s", outcome.From, outcome.To, ui.ID(outcome.EntityID))))
		for _, n := range outcome.Notices {
			fmt.Printf("  %s\n", ui.Notice(n))
		}
		fmt.Printf("\n%d matched, %d created, %d assigned\n",
			len(outcome.Mapped), len(outcome.Created)+len(outcome.WouldCreate), outcome.AssignCount())
		return nil
	},
}

func init() {
	mapTermsCmd.Flags().BoolVar(&mapTermsAppend, "append", false, "Keep the destination's existing terms")
	mapTermsCmd.Flags().BoolVar(&mapTermsDryRun, "dry-run", false, "Report without creating or assigning terms")
	mapTermsCmd.Flags().BoolVarP(&mapTermsYes, "yes", "y", false, "Replace existing terms without asking")
	rootCmd.AddCommand(mapTermsCmd)
}
