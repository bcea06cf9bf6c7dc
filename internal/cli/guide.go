package cli

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldshift/fieldshift/docs"
	"github.com/fieldshift/fieldshift/internal/ui"
)

var guideRaw bool

type guideTopic struct {
	Name string `json:"name"`
	File string `json:"file"`
}

var guideCmd = &cobra.Command{
	Use:   "guide [topic]",
	Short: "Read the bundled guide",
	Long: `Shows the guide bundled with fshift. Without a topic, lists the topics.

Examples:
  fshift guide
  fshift guide mapping`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := guideTopics()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if len(args) == 0 {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"topics": topics}, &Meta{Count: len(topics)})
				return nil
			}
			fmt.Println(ui.Header("Topics"))
			for _, t := range topics {
				fmt.Printf("  %s\n", t.Name)
			}
			fmt.Println(ui.Hint("\nRun 'fshift guide <topic>' to read one."))
			return nil
		}

		topic, ok := findGuideTopic(topics, args[0])
		if !ok {
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown guide topic '%s'", args[0]), "Run 'fshift guide' to list topics")
		}
		content, err := fs.ReadFile(docs.FS, topic.File)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"topic": topic.Name, "content": string(content)}, nil)
			return nil
		}
		if guideRaw {
			fmt.Print(string(content))
			return nil
		}
		display := ui.NewDisplayContext()
		rendered, err := ui.RenderMarkdown(string(content), display.AvailableWidth(ui.MarkdownRenderMargin))
		if err != nil {
			fmt.Print(string(content))
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

// guideTopics lists the guide files; "02-site.md" becomes topic "site".
func guideTopics() ([]guideTopic, error) {
	entries, err := fs.ReadDir(docs.FS, "guide")
	if err != nil {
		return nil, err
	}
	var topics []guideTopic
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		if i := strings.IndexByte(name, '-'); i >= 0 {
			name = name[i+1:]
		}
		topics = append(topics, guideTopic{Name: name, File: path.Join("guide", e.Name())})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].File < topics[j].File })
	return topics, nil
}

func findGuideTopic(topics []guideTopic, name string) (guideTopic, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range topics {
		if t.Name == name {
			return t, true
		}
	}
	return guideTopic{}, false
}

func init() {
	guideCmd.Flags().BoolVar(&guideRaw, "raw", false, "Print Markdown without rendering")
	rootCmd.AddCommand(guideCmd)
}
