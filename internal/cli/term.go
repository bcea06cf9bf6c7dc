package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/store"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var termSlug string

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Manage taxonomy terms",
}

var termAddCmd = &cobra.Command{
	Use:   "add <taxonomy> <name>",
	Short: "Create a term",
	Long: `Creates a term in a taxonomy. The slug is derived from the name unless
--slug is given. Slugs are unique per taxonomy.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSite("term add")
		if err != nil {
			return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
		}
		taxonomy, name := args[0], args[1]
		if !sess.Site.HasTaxonomy(taxonomy) {
			return handleErrorMsg(ErrTaxonomyNotFound, fmt.Sprintf("taxonomy '%s' does not exist", taxonomy),
				"Add it to taxonomies in site.yaml")
		}

		term, err := sess.DB.CreateTerm(name, taxonomy, termSlug)
		if err != nil {
			if errors.Is(err, store.ErrTermExists) {
				return handleError(ErrTermExists, err, fmt.Sprintf("Existing term id: %d", term.ID))
			}
			return handleError(ErrDatabaseError, err, "")
		}
		sess.Log.WithField("term_id", term.ID).Infof("created term '%s' in %s", term.Slug, taxonomy)

		if isJSONOutput() {
			outputSuccess(term, &Meta{RunID: sess.RunID})
			return nil
		}
		fmt.Println(ui.Successf("Created %s term %s (%s)", taxonomy, ui.ID(term.ID), term.Slug))
		return nil
	},
}

var termListCmd = &cobra.Command{
	Use:   "list <taxonomy>",
	Short: "List the terms of a taxonomy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSite("term list")
		if err != nil {
			return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
		}
		if !sess.Site.HasTaxonomy(args[0]) {
			return handleErrorMsg(ErrTaxonomyNotFound, fmt.Sprintf("taxonomy '%s' does not exist", args[0]), "")
		}

		list, err := sess.DB.ListTerms(args[0])
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"terms": list}, &Meta{Count: len(list)})
			return nil
		}
		if len(list) == 0 {
			fmt.Println(ui.Hint("No terms."))
			return nil
		}
		tbl := ui.NewTable(3)
		tbl.SetHeader("ID", "SLUG", "NAME")
		tbl.SetMaxWidth(ui.NewDisplayContext().TermWidth)
		for _, t := range list {
			tbl.AddRow(strconv.FormatInt(t.ID, 10), t.Slug, t.Name)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

func init() {
	termAddCmd.Flags().StringVar(&termSlug, "slug", "", "Explicit term slug")
	termCmd.AddCommand(termAddCmd, termListCmd)
	rootCmd.AddCommand(termCmd)
}
