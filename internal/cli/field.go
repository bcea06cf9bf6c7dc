package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/internal/fields"
	"github.com/fieldshift/fieldshift/internal/nested"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var (
	fieldKind      string
	fieldAllRows   bool
	fieldJSONValue bool
)

var getCmd = &cobra.Command{
	Use:   "get <id> <key>",
	Short: "Read a field value",
	Long: `Reads one field of an entity.

The key may be a slash path into repeater or flexible rows, e.g.
sections/hero/heading. By default the first matching row is returned;
--all collects every match.

Examples:
  fshift get 42 title --kind native
  fshift get 42 downloads/url --kind managed
  fshift get 42 sections/hero/heading --kind managed --all`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, st, id, err := fieldCommandSetup("get", args[0])
		if err != nil {
			return err
		}

		value, err := nested.Resolve(st, id, args[1], !fieldAllRows)
		if err != nil {
			return handleError(errorCode(err, ErrFieldNotFound), err, keySuggestion(err))
		}
		sess.Log.WithField("entity_id", id).Debugf("get %s:%s", fieldKind, args[1])

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"id":    id,
				"kind":  kindOrDefault(),
				"key":   args[1],
				"value": value,
			}, nil)
			return nil
		}
		fmt.Println(formatValue(value))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <id> <key> <value>",
	Short: "Write a field value",
	Long: `Writes one field of an entity. The value is stored as a string unless
--json-value is given, in which case it is parsed as JSON.

Examples:
  fshift set 42 title "New title" --kind native
  fshift set 42 pdf_url https://example.com/a.pdf --kind managed
  fshift set 42 gallery '[{"id": 7}]' --kind generic --json-value`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, st, id, err := fieldCommandSetup("set", args[0])
		if err != nil {
			return err
		}
		if nested.IsPath(args[1]) {
			return handleErrorMsg(ErrUnsupportedKey, fmt.Sprintf("cannot write nested path '%s'", args[1]),
				"Write the top-level field with --json-value instead")
		}

		value, err := parseCLIValue(args[2], fieldJSONValue)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if err := st.Set(id, args[1], value); err != nil {
			return handleError(errorCode(err, ErrDatabaseError), err, keySuggestion(err))
		}
		sess.Log.WithField("entity_id", id).Infof("set %s:%s", kindOrDefault(), args[1])

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "kind": kindOrDefault(), "key": args[1], "value": value}, &Meta{RunID: sess.RunID})
			return nil
		}
		fmt.Println(ui.Successf("Set %s:%s on %s", kindOrDefault(), args[1], ui.ID(id)))
		return nil
	},
}

var unsetCmd = &cobra.Command{
	Use:   "unset <id> <key>",
	Short: "Remove a field value",
	Long: `Removes one field value. Native fields are reset to their empty value;
removing a value that is not set succeeds.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, st, id, err := fieldCommandSetup("unset", args[0])
		if err != nil {
			return err
		}
		if err := st.Delete(id, args[1]); err != nil {
			return handleError(errorCode(err, ErrDatabaseError), err, "")
		}
		sess.Log.WithField("entity_id", id).Infof("unset %s:%s", kindOrDefault(), args[1])

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "kind": kindOrDefault(), "key": args[1]}, &Meta{RunID: sess.RunID})
			return nil
		}
		fmt.Println(ui.Successf("Removed %s:%s from %s", kindOrDefault(), args[1], ui.ID(id)))
		return nil
	},
}

// fieldCommandSetup opens the site and resolves the --kind store and entity id.
// Errors are already handled for output.
func fieldCommandSetup(command, rawID string) (*siteSession, fields.Store, int64, error) {
	sess, err := openSite(command)
	if err != nil {
		return nil, nil, 0, handleError(ErrSiteInvalid, err, "Fix site.yaml and try again")
	}
	kind, err := fields.ParseKind(fieldKind)
	if err != nil {
		return nil, nil, 0, handleError(ErrInvalidInput, err, "")
	}
	st, err := sess.Stores().For(kind)
	if err != nil {
		return nil, nil, 0, handleError(ErrInternal, err, "")
	}
	id, err := parseEntityID(rawID)
	if err != nil {
		return nil, nil, 0, handleError(ErrInvalidInput, err, "")
	}
	if _, err := sess.DB.GetEntity(id); err != nil {
		return nil, nil, 0, handleError(errorCode(err, ErrDatabaseError), err, "Run 'fshift list' to see entities")
	}
	return sess, st, id, nil
}

// keySuggestion lists the accepted keys when the native store rejects one.
func keySuggestion(err error) string {
	kind, kerr := fields.ParseKind(fieldKind)
	if kerr != nil || kind != fields.KindNative || !errors.Is(err, fields.ErrUnsupportedKey) {
		return ""
	}
	return "Native keys: " + strings.Join(fields.NativeKeys(), ", ")
}

func kindOrDefault() string {
	kind, err := fields.ParseKind(fieldKind)
	if err != nil {
		return fieldKind
	}
	return string(kind)
}

// parseEntityID parses a positive entity id.
func parseEntityID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entity id %q", s)
	}
	return id, nil
}

// parseOptionalEntityID parses a destination id where "" means 0.
func parseOptionalEntityID(args []string, index int) (int64, error) {
	if len(args) <= index {
		return 0, nil
	}
	return parseEntityID(args[index])
}

func parseCLIValue(raw string, asJSON bool) (interface{}, error) {
	if !asJSON {
		return raw, nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("value is not valid JSON: %w", err)
	}
	return v, nil
}

// formatValue renders a value for plain output: strings as-is, others as JSON.
func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func init() {
	for _, cmd := range []*cobra.Command{getCmd, setCmd, unsetCmd} {
		cmd.Flags().StringVarP(&fieldKind, "kind", "k", "generic", "Field store: native, managed or generic")
		rootCmd.AddCommand(cmd)
	}
	getCmd.Flags().BoolVar(&fieldAllRows, "all", false, "Collect every matching row of a nested path")
	setCmd.Flags().BoolVar(&fieldJSONValue, "json-value", false, "Parse the value as JSON")
}
