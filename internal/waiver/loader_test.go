package waiver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validFile = `[metadata]
tool = "vivado"

[[waiver]]
type = "id"
pattern = "Synth 8-6157"
reason = "Black box by design"
author = "jane@example.com"
date = "2026-01-18"
expires = "2026-06-01"
ticket = "HW-42"

[[waiver]]
type = "pattern"
pattern = "net .* unconnected"
reason = "Known"
author = "bob"
date = 2026-02-01
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waivers.toml")
	if err := os.WriteFile(path, []byte(validFile), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Tool != "vivado" {
		t.Errorf("Tool = %q, want %q", f.Tool, "vivado")
	}
	if f.Path != path {
		t.Errorf("Path = %q, want %q", f.Path, path)
	}
	if len(f.Waivers) != 2 {
		t.Fatalf("got %d waivers, want 2", len(f.Waivers))
	}
	w := f.Waivers[0]
	if w.Type != TypeID || w.Pattern != "Synth 8-6157" || w.Expires != "2026-06-01" || w.Ticket != "HW-42" {
		t.Errorf("waiver[0] = %+v", w)
	}
	if got := f.Waivers[1].Date; got != "2026-02-01" {
		t.Errorf("bare TOML date = %q, want %q", got, "2026-02-01")
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Error("not-found must not be a validation error")
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := ParseString("", "")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(f.Waivers) != 0 || f.Tool != "" {
		t.Errorf("got %+v, want empty file", f)
	}
}

func TestParseSingleTable(t *testing.T) {
	f, err := ParseString(`[waiver]
type = "hash"
pattern = "abc"
reason = "r"
author = "a"
date = "2026-01-01"
`, "w.toml")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(f.Waivers) != 1 {
		t.Fatalf("got %d waivers, want 1", len(f.Waivers))
	}
}

func TestParseErrors(t *testing.T) {
	entry := func(body string) string {
		return "[[waiver]]\ntype = \"id\"\npattern = \"X 1-1\"\nreason = \"r\"\nauthor = \"a\"\ndate = \"d\"\n\n[[waiver]]\n" + body
	}
	tests := []struct {
		name    string
		content string
		want    string
		index   int
		line    int
	}{
		{
			name:    "invalid toml",
			content: "[[waiver]\ntype = ",
			want:    "Invalid TOML",
			index:   -1,
		},
		{
			name:    "non-string tool",
			content: "[metadata]\ntool = 3\n",
			want:    "metadata tool must be a string",
			index:   -1,
		},
		{
			name:    "metadata not a table",
			content: "metadata = \"vivado\"\n",
			want:    "metadata must be a table",
			index:   -1,
		},
		{
			name:    "missing fields",
			content: entry("type = \"id\"\npattern = \"x\"\n"),
			want:    "Missing required fields: author, date, reason",
			index:   1,
			line:    8,
		},
		{
			name:    "bad type",
			content: entry("type = \"regex\"\npattern = \"x\"\nreason = \"r\"\nauthor = \"a\"\ndate = \"d\"\n"),
			want:    "Invalid waiver type 'regex'. Must be one of: file, hash, id, pattern",
			index:   1,
			line:    8,
		},
		{
			name:    "empty pattern",
			content: entry("type = \"id\"\npattern = \"\"\nreason = \"r\"\nauthor = \"a\"\ndate = \"d\"\n"),
			want:    "Pattern must be a non-empty string",
			index:   1,
		},
		{
			name:    "bad regex",
			content: entry("type = \"pattern\"\npattern = \"([\"\nreason = \"r\"\nauthor = \"a\"\ndate = \"d\"\n"),
			want:    "Invalid regex pattern",
			index:   1,
		},
		{
			name:    "empty reason",
			content: entry("type = \"id\"\npattern = \"x\"\nreason = \"\"\nauthor = \"a\"\ndate = \"d\"\n"),
			want:    "Reason must be a non-empty string",
			index:   1,
		},
		{
			name:    "non-string author",
			content: entry("type = \"id\"\npattern = \"x\"\nreason = \"r\"\nauthor = 5\ndate = \"d\"\n"),
			want:    "Author must be a non-empty string",
			index:   1,
		},
		{
			name:    "empty date",
			content: entry("type = \"id\"\npattern = \"x\"\nreason = \"r\"\nauthor = \"a\"\ndate = \"\"\n"),
			want:    "Date must be a non-empty string",
			index:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.content, "w.toml")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ParseString() error = %v, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.want)
			}
			if verr.Index != tt.index {
				t.Errorf("Index = %d, want %d", verr.Index, tt.index)
			}
			if tt.line != 0 && verr.Line != tt.line {
				t.Errorf("Line = %d, want %d", verr.Line, tt.line)
			}
			if tt.index >= 0 && !strings.Contains(err.Error(), "Error in w.toml waiver entry 2") {
				t.Errorf("error = %q, want entry-qualified message", err.Error())
			}
		})
	}
}

func TestValidationErrorFormat(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{Index: -1, Message: "m"}, "m"},
		{ValidationError{Path: "p", Index: 0, Line: 3, Message: "m"}, "Error in p waiver entry 1 at line 3: m"},
		{ValidationError{Path: "p", Index: -1, Line: 2, Message: "m"}, "Error in p at line 2: m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
