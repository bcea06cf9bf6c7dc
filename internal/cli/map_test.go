package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fieldshift/fieldshift/internal/fields"
	"github.com/fieldshift/fieldshift/internal/mapping"
	"github.com/fieldshift/fieldshift/internal/notice"
)

func writeMappingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeMappingFile(t, `merge: true
rules:
  - from: {kind: managed, key: downloads, subtype: repeater}
    to:   {kind: managed, key: pdf_url, subtype: url}
  - "generic:legacy_title -> native:title"
`)

	t.Run("file merge setting", func(t *testing.T) {
		rules, merge, err := loadRules(path, nil, false, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != 2 {
			t.Fatalf("expected 2 rules, got %d", len(rules))
		}
		if !merge {
			t.Error("expected merge from file")
		}
		if rules[1].To.Kind != fields.KindNative || rules[1].To.Key != "title" {
			t.Errorf("unexpected shorthand rule: %+v", rules[1])
		}
	})

	t.Run("flag overrides file", func(t *testing.T) {
		_, merge, err := loadRules(path, nil, true, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if merge {
			t.Error("--merge=false should override the file")
		}
	})

	t.Run("inline rules appended", func(t *testing.T) {
		rules, _, err := loadRules(path, []string{"managed:subtitle -> native:excerpt"}, false, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != 3 || rules[2].From.Key != "subtitle" {
			t.Errorf("unexpected rules: %+v", rules)
		}
	})

	t.Run("inline only defaults to overwrite", func(t *testing.T) {
		rules, merge, err := loadRules("", []string{"meta_a -> meta_b"}, false, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != 1 || merge {
			t.Errorf("got %d rules, merge=%v", len(rules), merge)
		}
	})

	t.Run("no rules", func(t *testing.T) {
		if _, _, err := loadRules("", nil, false, false); err == nil {
			t.Error("expected error without rules")
		}
	})

	t.Run("bad inline rule", func(t *testing.T) {
		if _, _, err := loadRules("", []string{"no arrow here"}, false, false); err == nil {
			t.Error("expected error for malformed rule")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := loadRules(filepath.Join(t.TempDir(), "nope.yaml"), nil, false, false); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestNoticeWarnings(t *testing.T) {
	t.Run("uncoded notices fall back by status", func(t *testing.T) {
		notices := []notice.Notice{
			notice.Successf("wrote a"),
			notice.Warningf("kept b"),
			notice.Errorf("skipped c"),
		}
		got := noticeWarnings(notices)
		if len(got) != 2 {
			t.Fatalf("expected 2 warnings, got %d", len(got))
		}
		if got[0].Code != WarnNotice || got[0].Message != "kept b" {
			t.Errorf("unexpected first warning: %+v", got[0])
		}
		if got[1].Code != WarnFailed {
			t.Errorf("unexpected second warning: %+v", got[1])
		}
	})

	t.Run("codes follow the notice source", func(t *testing.T) {
		rule := mapping.Rule{
			From: mapping.FieldSpec{Kind: fields.KindManaged, Key: "a"},
			To:   mapping.FieldSpec{Kind: fields.KindGeneric, Key: "b"},
		}
		notices := []notice.Notice{
			mapping.Result{Rule: rule, Status: mapping.StatusSkippedMerge}.Notice(),
			mapping.Result{Rule: rule, Status: mapping.StatusSkippedError, Message: "boom"}.Notice(),
			notice.Warningf("term 'x' reused").WithCode(notice.CodeTermReused),
			notice.Warningf("entity 3 is already a post").WithCode(notice.CodeUnchanged),
		}
		want := []string{WarnMergeKept, WarnRuleSkipped, notice.CodeTermReused, notice.CodeUnchanged}
		got := noticeWarnings(notices)
		if len(got) != len(want) {
			t.Fatalf("expected %d warnings, got %d", len(want), len(got))
		}
		for i, w := range want {
			if got[i].Code != w {
				t.Errorf("warning %d: expected code %s, got %s", i, w, got[i].Code)
			}
		}
	})

	if noticeWarnings([]notice.Notice{notice.Successf("ok")}) != nil {
		t.Error("success notices should produce no warnings")
	}
}
