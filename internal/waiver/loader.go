package waiver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var requiredFields = []string{"author", "date", "pattern", "reason", "type"}

var entryHeader = regexp.MustCompile(`^\s*\[\[\s*waiver\s*\]\]`)

// Load reads and validates a waiver file. A missing file yields an error
// wrapping ErrNotFound; every other failure is a *ValidationError.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading waiver file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates waiver file content. path is used only in error messages
// and may be empty.
func Parse(data []byte, path string) (*File, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		verr := &ValidationError{Path: path, Index: -1, Message: "Invalid TOML: " + err.Error()}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			verr.Line, _ = derr.Position()
		}
		return nil, verr
	}

	f := &File{Path: path}
	switch md := doc["metadata"].(type) {
	case nil:
	case map[string]any:
		if raw, ok := md["tool"]; ok {
			tool, ok := raw.(string)
			if !ok {
				return nil, &ValidationError{Path: path, Index: -1, Message: fmt.Sprintf("metadata tool must be a string, got %v", raw)}
			}
			f.Tool = tool
		}
	default:
		return nil, &ValidationError{Path: path, Index: -1, Message: "metadata must be a table"}
	}

	var entries []any
	switch v := doc["waiver"].(type) {
	case nil:
	case []any:
		entries = v
	case map[string]any:
		entries = []any{v}
	default:
		return nil, &ValidationError{Path: path, Index: -1, Message: "waiver must be an array of tables"}
	}

	lines := entryLines(data)
	for i, raw := range entries {
		w, msg := parseEntry(raw)
		if msg != "" {
			verr := &ValidationError{Path: path, Index: i, Message: msg}
			if i < len(lines) {
				verr.Line = lines[i]
			}
			return nil, verr
		}
		f.Waivers = append(f.Waivers, w)
	}
	return f, nil
}

// ParseString is Parse for string content.
func ParseString(content, path string) (*File, error) {
	return Parse([]byte(content), path)
}

func parseEntry(raw any) (Waiver, string) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return Waiver{}, "waiver entry must be a table"
	}

	var missing []string
	for _, k := range requiredFields {
		if _, ok := entry[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Waiver{}, "Missing required fields: " + strings.Join(missing, ", ")
	}

	typ, _ := entry["type"].(string)
	if !Type(typ).Valid() {
		names := make([]string, len(ValidTypes))
		for i, t := range ValidTypes {
			names[i] = string(t)
		}
		return Waiver{}, fmt.Sprintf("Invalid waiver type '%v'. Must be one of: %s", entry["type"], strings.Join(names, ", "))
	}

	pattern, ok := stringField(entry, "pattern")
	if !ok {
		return Waiver{}, "Pattern must be a non-empty string"
	}
	if Type(typ) == TypePattern {
		if _, err := regexp.Compile(pattern); err != nil {
			return Waiver{}, "Invalid regex pattern: " + err.Error()
		}
	}

	w := Waiver{Type: Type(typ), Pattern: pattern}
	for _, f := range []struct {
		key   string
		label string
		dst   *string
	}{
		{"reason", "Reason", &w.Reason},
		{"author", "Author", &w.Author},
		{"date", "Date", &w.Date},
	} {
		v, ok := stringField(entry, f.key)
		if !ok {
			return Waiver{}, f.label + " must be a non-empty string"
		}
		*f.dst = v
	}
	w.Expires, _ = stringField(entry, "expires")
	w.Ticket, _ = stringField(entry, "ticket")
	return w, ""
}

// stringField returns a non-empty string value. TOML local dates are
// accepted and rendered in ISO form.
func stringField(entry map[string]any, key string) (string, bool) {
	switch v := entry[key].(type) {
	case string:
		return v, v != ""
	case toml.LocalDate:
		return v.String(), true
	}
	return "", false
}

// entryLines returns the 1-based line of each [[waiver]] header.
func entryLines(data []byte) []int {
	var out []int
	for i, line := range strings.Split(string(data), "\n") {
		if entryHeader.MatchString(line) {
			out = append(out, i+1)
		}
	}
	return out
}
