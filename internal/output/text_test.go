package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextWriter_Fail(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{Options: Options{ShowWaived: true, ReportUnused: true}}
	if err := w.Write(&buf, sampleReport(t)); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Sawmill Check: build.log (plugin: vivado)",
		"Messages: 4 total, 1 waived",
		"Issues (2) at or above Warning",
		"[Critical Warning] [Synth 8-1] /src/top.v:12",
		"[Error] [Synth 8-2] build.log:7",
		"Waived (1):",
		"waived: known unused (HW-7)",
		"Unused waivers (1):",
		`id "Nope 1-1"`,
		"Result: FAIL",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour codes written with Color disabled")
	}
}

func TestTextWriter_HidesOptionalSections(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, sampleReport(t)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "Waived (") {
		t.Error("waived section shown without ShowWaived")
	}
	if strings.Contains(out, "Unused waivers") {
		t.Error("unused section shown without ReportUnused")
	}
}

func TestTextWriter_Pass(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, passingReport(t)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No issues at or above Warning") {
		t.Errorf("expected no-issues line:\n%s", out)
	}
	if !strings.Contains(out, "Result: PASS") {
		t.Errorf("expected PASS:\n%s", out)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if got := wrapText("short", 20); len(got) != 1 || got[0] != "short" {
		t.Errorf("wrapText(short) = %v", got)
	}
}
