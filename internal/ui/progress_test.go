package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressDrawsOnlyWhenLive(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{out: &buf, total: 2, message: "Mapping"}
	p.Increment()
	p.Done()
	if buf.Len() != 0 {
		t.Fatalf("expected no output when not live, got %q", buf.String())
	}
	if p.Current() != 1 {
		t.Fatalf("expected current 1, got %d", p.Current())
	}

	p.live = true
	p.Increment()
	if !strings.Contains(buf.String(), "(2/2)") {
		t.Fatalf("expected counter in output, got %q", buf.String())
	}
}
