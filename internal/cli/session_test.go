package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/fieldshift/fieldshift/internal/audit"
)

func TestWarnOnErrorLogsAuditFailure(t *testing.T) {
	// A regular file where the audit directory should be makes every write fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	logger, hook := test.NewNullLogger()
	sess := &siteSession{
		Audit: audit.New(filepath.Join(blocker, "audit.jsonl"), true, "run-1"),
		Log:   logrus.NewEntry(logger),
	}

	sess.warnOnError(sess.Audit.LogChangeType(7, "report", "post"), "failed to audit type change")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry for the failed audit write")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level, got %s", entry.Level)
	}
	if entry.Message != "failed to audit type change" {
		t.Errorf("unexpected message: %q", entry.Message)
	}
	if _, ok := entry.Data[logrus.ErrorKey]; !ok {
		t.Error("expected the error attached to the entry")
	}

	hook.Reset()
	sess.warnOnError(nil, "unused")
	if len(hook.AllEntries()) != 0 {
		t.Error("nil error should not be logged")
	}
}
