package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/fields"
	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/store"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var (
	importFile     string
	importMapFlags []string
	importDryRun   bool
)

var importCmd = &cobra.Command{
	Use:   "import [type]",
	Short: "Create entities from JSON data",
	Long: `Import entities from a JSON export into the site store.

Reads a JSON array (or single object) from --file or stdin. Each item becomes
one entity:

  {
    "type": "report",              (or the [type] argument)
    "title": "Annual Report",
    "content": "...", "excerpt": "...", "slug": "...", "status": "draft",
    "featured_image": 12,
    "fields": {"pdf_url": "https://..."},    managed fields (site.yaml)
    "meta":   {"legacy_id": 981},            generic metadata
    "terms":  {"category": ["News", "Reports"]}
  }

Top-level keys can be renamed with --map (external=internal). Missing terms
are created by name. Items that cannot be imported are reported and skipped.

Examples:
  fshift import report --file reports.json
  cat dump.json | fshift import --map headline=title --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

// importResult tracks the outcome for one item.
type importResult struct {
	Item   int    `json:"item"`
	ID     int64  `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Action string `json:"action"` // "created", "create", "skipped", "error"
	Reason string `json:"reason,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	sess, err := openSite("import")
	if err != nil {
		return handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
	}

	fieldMap, err := parseMapFlags(importMapFlags)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	defaultType := ""
	if len(args) > 0 {
		defaultType = args[0]
		if !sess.Site.HasPostType(defaultType) {
			return handleErrorMsg(ErrTypeNotFound, fmt.Sprintf("post type '%s' is not registered", defaultType),
				"Add it to post_types in site.yaml")
		}
	}

	var in io.Reader = os.Stdin
	if importFile != "" {
		f, err := os.Open(importFile)
		if err != nil {
			return handleError(ErrFileReadError, fmt.Errorf("failed to read file %s: %w", importFile, err), "")
		}
		defer f.Close()
		in = f
	}
	items, err := readJSONItems(in)
	if err != nil {
		return handleError(ErrInvalidInput, err, "Expected a JSON array of objects or a single JSON object")
	}
	if len(items) == 0 {
		return handleErrorMsg(ErrInvalidInput, "no items to import", "Provide a non-empty JSON array")
	}

	imp := importer{sess: sess, stores: sess.Stores(), defaultType: defaultType, dryRun: importDryRun}
	results := make([]importResult, 0, len(items))
	for i, item := range items {
		res := imp.importItem(i, applyFieldMappings(item, fieldMap))
		if res.Action == "error" || res.Action == "skipped" {
			sess.Log.WithField("item", i).Warnf("import %s: %s", res.Action, res.Reason)
		} else {
			sess.Log.WithField("item", i).Infof("import %s entity %d", res.Action, res.ID)
		}
		results = append(results, res)
	}

	return outputImportResults(sess.RunID, results)
}

// parseMapFlags parses repeatable external=internal key renames.
func parseMapFlags(flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	for _, m := range flags {
		parts := strings.SplitN(m, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid --map format: %q (expected external=internal)", m)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

// readJSONItems reads a JSON array of objects or a single object.
func readJSONItems(r io.Reader) ([]map[string]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var single map[string]interface{}
	if err := json.Unmarshal(data, &single); err == nil {
		return []map[string]interface{}{single}, nil
	}

	return nil, fmt.Errorf("input is not valid JSON (expected array or object)")
}

// applyFieldMappings renames top-level keys according to the field map.
// Keys not in the map pass through unchanged.
func applyFieldMappings(item map[string]interface{}, fieldMap map[string]string) map[string]interface{} {
	result := make(map[string]interface{}, len(item))
	for key, value := range item {
		if renamed, ok := fieldMap[key]; ok {
			result[renamed] = value
		} else {
			result[key] = value
		}
	}
	return result
}

type importer struct {
	sess        *siteSession
	stores      fields.Set
	defaultType string
	dryRun      bool
}

func (imp importer) importItem(index int, item map[string]interface{}) importResult {
	res := importResult{Item: index}

	postType := cast.ToString(item["type"])
	if postType == "" {
		postType = imp.defaultType
	}
	if postType == "" {
		res.Action, res.Reason = "skipped", "no post type: pass [type] or set \"type\" on the item"
		return res
	}
	if !imp.sess.Site.HasPostType(postType) {
		res.Action, res.Reason = "skipped", fmt.Sprintf("post type '%s' is not registered", postType)
		return res
	}

	entity := model.Entity{
		Type:    postType,
		Title:   cast.ToString(item["title"]),
		Content: cast.ToString(item["content"]),
		Excerpt: cast.ToString(item["excerpt"]),
		Slug:    cast.ToString(item["slug"]),
		Status:  cast.ToString(item["status"]),
	}
	res.Title = entity.Title
	if raw, ok := item["featured_image"]; ok {
		id, err := fields.AttachmentID(raw)
		if err != nil {
			res.Action, res.Reason = "skipped", fmt.Sprintf("featured_image: %v", err)
			return res
		}
		entity.FeaturedImage = id
	}

	managed, err := objectField(item, "fields")
	if err == nil {
		for name := range managed {
			if _, ok := imp.sess.Site.FieldType(name); !ok {
				err = fmt.Errorf("managed field '%s' is not defined in site.yaml", name)
				break
			}
		}
	}
	if err != nil {
		res.Action, res.Reason = "skipped", err.Error()
		return res
	}
	meta, err := objectField(item, "meta")
	if err != nil {
		res.Action, res.Reason = "skipped", err.Error()
		return res
	}
	termNames, err := termsField(item)
	if err != nil {
		res.Action, res.Reason = "skipped", err.Error()
		return res
	}
	for taxonomy := range termNames {
		if !imp.sess.Site.HasTaxonomy(taxonomy) {
			res.Action, res.Reason = "skipped", fmt.Sprintf("taxonomy '%s' does not exist", taxonomy)
			return res
		}
	}

	if imp.dryRun {
		res.Action = "create"
		return res
	}

	id, err := imp.sess.DB.CreateEntity(entity)
	if err != nil {
		res.Action, res.Reason = "error", err.Error()
		return res
	}
	res.ID = id
	imp.sess.warnOnError(imp.sess.Audit.LogCreate(id, postType), "failed to audit entity creation")

	// The entity exists from here on; later failures are reported but the
	// item still counts as created.
	var problems []string
	for _, name := range sortedKeys(managed) {
		if err := imp.stores.Managed.Set(id, name, managed[name]); err != nil {
			problems = append(problems, err.Error())
		}
	}
	for _, key := range sortedKeys(meta) {
		if err := imp.stores.Generic.Set(id, key, meta[key]); err != nil {
			problems = append(problems, err.Error())
		}
	}
	for _, taxonomy := range sortedKeys(termNames) {
		if err := imp.assignTerms(id, taxonomy, termNames[taxonomy]); err != nil {
			problems = append(problems, err.Error())
		}
	}

	res.Action = "created"
	res.Reason = strings.Join(problems, "; ")
	return res
}

func (imp importer) assignTerms(entityID int64, taxonomy string, names []string) error {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		term, err := imp.sess.DB.FindTermByName(name, taxonomy)
		if errors.Is(err, store.ErrTermNotFound) {
			term, err = imp.sess.DB.CreateTerm(name, taxonomy, "")
			if errors.Is(err, store.ErrTermExists) {
				err = nil
			}
		}
		if err != nil {
			return fmt.Errorf("term '%s' in %s: %w", name, taxonomy, err)
		}
		ids = append(ids, term.ID)
	}
	if err := imp.sess.DB.SetEntityTerms(entityID, taxonomy, ids, false); err != nil {
		return err
	}
	return imp.sess.Audit.LogTerms(entityID, taxonomy, nil, ids)
}

func objectField(item map[string]interface{}, key string) (map[string]interface{}, error) {
	raw, ok := item[key]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'%s' must be an object", key)
	}
	return obj, nil
}

// termsField reads {"taxonomy": ["Name", ...]}; a single string is accepted too.
func termsField(item map[string]interface{}) (map[string][]string, error) {
	obj, err := objectField(item, "terms")
	if err != nil || obj == nil {
		return nil, err
	}
	out := make(map[string][]string, len(obj))
	for taxonomy, raw := range obj {
		names, err := cast.ToStringSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("terms.%s must be a list of names", taxonomy)
		}
		out[taxonomy] = names
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// outputImportResults outputs the import results in human-readable or JSON format.
func outputImportResults(runID string, results []importResult) error {
	var created, skipped, errored int
	for _, r := range results {
		switch r.Action {
		case "created", "create":
			created++
		case "skipped":
			skipped++
		case "error":
			errored++
		}
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"total":   len(results),
			"created": created,
			"skipped": skipped,
			"errors":  errored,
			"results": results,
		}, &Meta{Count: len(results), RunID: runID, DryRun: importDryRun})
		return nil
	}

	if importDryRun {
		fmt.Println(ui.Bold.Render("Dry run, no changes made:"))
	}
	for _, r := range results {
		switch r.Action {
		case "created":
			fmt.Println(ui.Successf("Created %s %s", ui.ID(r.ID), r.Title))
			if r.Reason != "" {
				fmt.Printf("  %s\n", ui.Warning(r.Reason))
			}
		case "create":
			fmt.Printf("  %s item %d %s\n", ui.Bold.Render("create"), r.Item, r.Title)
		case "skipped":
			fmt.Printf("  %s item %d: %s\n", ui.Warning("skip"), r.Item, r.Reason)
		case "error":
			fmt.Printf("  %s item %d: %s\n", ui.Error("error"), r.Item, r.Reason)
		}
	}

	var parts []string
	if created > 0 {
		parts = append(parts, fmt.Sprintf("%d created", created))
	}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}
	if errored > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", errored))
	}
	if len(parts) > 0 {
		fmt.Printf("\n%s\n", strings.Join(parts, ", "))
	}
	return nil
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Read JSON from file instead of stdin")
	importCmd.Flags().StringArrayVar(&importMapFlags, "map", nil, "Key rename: external=internal (repeatable)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview without writing")
	rootCmd.AddCommand(importCmd)
}
