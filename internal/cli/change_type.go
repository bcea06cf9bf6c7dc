package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/notice"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var changeTypeTo string

type changeTypeResult struct {
	ID   int64  `json:"id"`
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	notice.Notice
}

var changeTypeCmd = &cobra.Command{
	Use:   "change-type <id>...",
	Short: "Convert entities to another post type",
	Long: `Changes the post type of one or more entities. The target type must be
listed in post_types in site.yaml. Field values, metadata and terms are kept.

Example:
  fshift change-type 42 43 44 --to report`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSite("change-type")
		if err != nil {
			return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
		}
		if changeTypeTo == "" {
			return handleErrorMsg(ErrMissingArgument, "--to is required", "")
		}
		if !sess.Site.HasPostType(changeTypeTo) {
			return handleErrorMsg(ErrTypeNotFound, fmt.Sprintf("post type '%s' is not registered", changeTypeTo),
				"Add it to post_types in site.yaml")
		}

		results := make([]changeTypeResult, 0, len(args))
		for _, raw := range args {
			res := changeTypeResult{To: changeTypeTo}
			id, err := parseEntityID(raw)
			if err != nil {
				res.Notice = notice.Errorf("%v", err)
				results = append(results, res)
				continue
			}
			res.ID = id

			entity, err := sess.DB.GetEntity(id)
			switch {
			case err != nil:
				res.Notice = notice.Errorf("entity %d: %v", id, err).WithCode(notice.CodeEntityFailed)
			case entity.Type == changeTypeTo:
				res.From = entity.Type
				res.Notice = notice.Warningf("entity %d is already a %s", id, changeTypeTo).WithCode(notice.CodeUnchanged)
			default:
				res.From = entity.Type
				if err := sess.DB.SetEntityType(id, changeTypeTo); err != nil {
					res.Notice = notice.Errorf("entity %d: %v", id, err).WithCode(notice.CodeEntityFailed)
				} else {
					sess.warnOnError(sess.Audit.LogChangeType(id, entity.Type, changeTypeTo), "failed to audit type change")
					res.Notice = notice.Successf("entity %d converted from %s to %s", id, entity.Type, changeTypeTo)
				}
			}
			results = append(results, res)
		}

		notices := make([]notice.Notice, len(results))
		for i, r := range results {
			notices[i] = r.Notice
		}
		sess.Notices(notices)

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]interface{}{"results": results}, noticeWarnings(notices), &Meta{Count: len(results), RunID: sess.RunID})
			return nil
		}
		for _, n := range notices {
			fmt.Println(ui.Notice(n))
		}
		return nil
	},
}

func init() {
	changeTypeCmd.Flags().StringVar(&changeTypeTo, "to", "", "Target post type")
	rootCmd.AddCommand(changeTypeCmd)
}
