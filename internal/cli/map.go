package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/mapping"
	"github.com/fieldshift/fieldshift/internal/notice"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var (
	mapMappingFile string
	mapRules       []string
	mapMerge       bool
	mapDryRun      bool
)

var mapCmd = &cobra.Command{
	Use:   "map <source-id> [dest-id]",
	Short: "Copy field values between entities using a mapping",
	Long: `Applies a mapping file to one entity. Each rule reads a field from the
source entity and writes it to the destination entity (the source itself
when dest-id is omitted).

A mapping file lists rules in long or shorthand form:

  merge: true
  rules:
    - from: {kind: managed, key: downloads, subtype: repeater}
      to:   {kind: managed, key: pdf_url, subtype: url}
    - "generic:legacy_title -> native:title"

With --merge, a destination that already holds a non-empty value is kept.
A failing rule is reported and never stops the remaining rules.

Examples:
  fshift map 42 --mapping reports.yaml
  fshift map 42 97 --mapping reports.yaml --merge --dry-run
  fshift map 42 --rule "managed:subtitle -> native:excerpt"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSite("map")
		if err != nil {
			return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
		}

		srcID, err := parseEntityID(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		destID, err := parseOptionalEntityID(args, 1)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		rules, merge, err := loadRules(mapMappingFile, mapRules, cmd.Flags().Changed("merge"), mapMerge)
		if err != nil {
			return handleError(ErrMappingInvalid, err, "")
		}
		for _, id := range []int64{srcID, destID} {
			if id == 0 {
				continue
			}
			if _, err := sess.DB.GetEntity(id); err != nil {
				return handleError(errorCode(err, ErrDatabaseError), err, "Run 'fshift list' to see entities")
			}
		}

		report, err := sess.Engine(mapDryRun).Map(srcID, rules, merge, destID)
		if err != nil {
			return handleError(errorCode(err, ErrInvalidInput), err, "")
		}
		sess.Notices(report.Notices)
		sess.Log.Info(report.String())

		if isJSONOutput() {
			outputSuccessWithWarnings(report, noticeWarnings(report.Notices),
				&Meta{Count: len(report.Results), RunID: sess.RunID, DryRun: mapDryRun})
			return nil
		}
		printReport(report, mapDryRun)
		return nil
	},
}

// loadRules builds the rule set from a mapping file and/or --rule flags. The
// --merge flag, when given, overrides the file's merge setting.
func loadRules(path string, inline []string, mergeSet, mergeFlag bool) (mapping.Set, bool, error) {
	var rules mapping.Set
	merge := false

	if path != "" {
		f, err := mapping.LoadFile(path)
		if err != nil {
			return nil, false, err
		}
		rules = append(rules, f.Rules...)
		if f.Merge != nil {
			merge = *f.Merge
		}
	}
	for _, raw := range inline {
		rule, err := mapping.ParseRule(raw)
		if err != nil {
			return nil, false, fmt.Errorf("--rule %q: %w", raw, err)
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, false, fmt.Errorf("no rules: pass --mapping <file> or --rule \"from -> to\"")
	}
	if mergeSet {
		merge = mergeFlag
	}
	return rules, merge, nil
}

// noticeWarnings turns warning and error notices into envelope warnings,
// keeping the code each notice was raised with.
func noticeWarnings(notices []notice.Notice) []Warning {
	var out []Warning
	for _, n := range notices {
		code := n.Code
		switch n.Status {
		case notice.StatusWarning:
			if code == "" {
				code = WarnNotice
			}
		case notice.StatusError:
			if code == "" {
				code = WarnFailed
			}
		default:
			continue
		}
		out = append(out, Warning{Code: code, Message: n.Message})
	}
	return out
}

func printReport(report *mapping.Report, dryRun bool) {
	if dryRun {
		fmt.Println(ui.Bold.Render("Dry run, no changes made:"))
	}
	fmt.Println(ui.Header(fmt.Sprintf("%s -> %s", ui.ID(report.SourceID), ui.ID(report.DestID))))
	for _, n := range report.Notices {
		fmt.Printf("  %s\n", ui.Notice(n))
	}

	written := report.Count(mapping.StatusWritten)
	_, warnings, errs := notice.Counts(report.Notices)
	summary := fmt.Sprintf("%d of %d rules written", written, len(report.Results))
	if warnings > 0 || errs > 0 {
		summary += " " + ui.ErrorWarningCounts(errs, warnings)
	}
	fmt.Printf("\n%s\n", summary)
}

func init() {
	mapCmd.Flags().StringVarP(&mapMappingFile, "mapping", "m", "", "Path to YAML mapping file")
	mapCmd.Flags().StringArrayVar(&mapRules, "rule", nil, "Inline rule \"kind:key -> kind:key\" (repeatable)")
	mapCmd.Flags().BoolVar(&mapMerge, "merge", false, "Keep non-empty destination values")
	mapCmd.Flags().BoolVar(&mapDryRun, "dry-run", false, "Report what would be written without writing")
	rootCmd.AddCommand(mapCmd)
}
