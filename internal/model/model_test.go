package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestHashText(t *testing.T) {
	// sha256("ERROR: boom")
	m := Message{RawText: "ERROR: boom"}
	got := m.Hash()
	if len(got) != 64 {
		t.Fatalf("Hash() length = %d, want 64", len(got))
	}
	if got != HashText("ERROR: boom") {
		t.Errorf("Hash() = %q, want HashText of raw text", got)
	}
	if got == HashText("ERROR: boom\n") {
		t.Error("trailing newline should change the hash")
	}
}

func TestFieldValue(t *testing.T) {
	m := Message{
		Severity:  "error",
		MessageID: "Synth 8-1",
		Category:  "synth",
		FileRef:   &FileRef{Path: "/src/top.v", Line: 12},
		Metadata:  NewMetadata("module", "top", "severity", "shadowed"),
	}
	tests := []struct {
		field string
		want  string
		ok    bool
	}{
		{"severity", "error", true},
		{"id", "Synth 8-1", true},
		{"message_id", "Synth 8-1", true},
		{"category", "synth", true},
		{"module", "top", true},
		{"file", "/src/top.v", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := m.FieldValue(tt.field)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FieldValue(%q) = (%q, %v), want (%q, %v)", tt.field, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFieldValueMetadataBeforeFile(t *testing.T) {
	m := Message{
		FileRef:  &FileRef{Path: "/a.v"},
		Metadata: NewMetadata("file", "from-metadata"),
	}
	got, _ := m.FieldValue("file")
	assert.Equal(t, "from-metadata", got)
}

func TestMetadataOrder(t *testing.T) {
	md := NewMetadata("z", "1", "a", "2", "m", "3", "a", "4")
	assert.Equal(t, []string{"z", "a", "m"}, md.Keys())
	v, ok := md.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "4", v)

	data, err := json.Marshal(md)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"4","m":"3"}`, string(data))

	var back Metadata
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, md.Keys(), back.Keys())

	out, err := yaml.Marshal(struct {
		M Metadata `yaml:"m"`
	}{md})
	require.NoError(t, err)
	assert.True(t, strings.Index(string(out), "z:") < strings.Index(string(out), "a:"))
}

func TestMetadataUnmarshalRejectsNonObject(t *testing.T) {
	for _, in := range []string{`"oops"`, `[]`, `42`, `true`} {
		var md Metadata
		err := json.Unmarshal([]byte(in), &md)
		assert.Error(t, err, in)
		assert.True(t, md.IsZero(), in)
	}

	var md Metadata
	require.NoError(t, json.Unmarshal([]byte(`null`), &md))
	assert.True(t, md.IsZero())
}

func TestMetadataWithDoesNotMutate(t *testing.T) {
	base := NewMetadata("k", "v")
	_ = base.With("k", "other").With("n", "x")
	v, _ := base.Get("k")
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, base.Len())
}

func TestMessageJSONOmitsEmptyMetadata(t *testing.T) {
	data, err := json.Marshal(Message{StartLine: 1, EndLine: 1, RawText: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "metadata")
}

func TestNewScheme(t *testing.T) {
	tests := []struct {
		name    string
		levels  []SeverityLevel
		wantErr string
	}{
		{"valid", []SeverityLevel{{ID: "low", Level: 0}, {ID: "high", Level: 1}}, ""},
		{"empty", nil, "no levels"},
		{"gap", []SeverityLevel{{ID: "a", Level: 0}, {ID: "b", Level: 2}}, "contiguous"},
		{"not from zero", []SeverityLevel{{ID: "a", Level: 1}}, "contiguous"},
		{"duplicate level", []SeverityLevel{{ID: "a", Level: 0}, {ID: "b", Level: 0}}, "contiguous"},
		{"duplicate id", []SeverityLevel{{ID: "a", Level: 0}, {ID: "A", Level: 1}}, "duplicate"},
		{"empty id", []SeverityLevel{{ID: " ", Level: 0}}, "empty id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheme(tt.levels)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewScheme() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewScheme() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultScheme(t *testing.T) {
	s := DefaultScheme()
	assert.Equal(t, []string{"critical", "critical_warning", "error", "warning", "info"}, s.IDs())
	assert.Equal(t, 1, s.DefaultFailLevel())

	levels := s.Levels()
	levels[0].ID = "mutated"
	assert.Equal(t, "critical", DefaultScheme().IDs()[0], "Levels must return a copy")
}

func TestSchemeRank(t *testing.T) {
	s := DefaultScheme()
	assert.Less(t, s.Rank("critical"), s.Rank("error"))
	assert.Less(t, s.Rank("info"), s.Rank("bogus"))
	assert.Equal(t, RankUnknown, s.Rank("bogus"))
	assert.Equal(t, RankUnset, s.Rank(""))
}

func TestResolveLevel(t *testing.T) {
	s := DefaultScheme()
	for _, name := range []string{"critical_warning", "CRITICAL WARNING", "Critical-Warning"} {
		lvl, err := s.ResolveLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, 3, lvl, name)
	}

	_, err := s.ResolveLevel("fatal")
	var unk *UnknownSeverityError
	require.True(t, errors.As(err, &unk))
	assert.Equal(t, "fatal", unk.Name)
	assert.Contains(t, err.Error(), "critical, critical_warning, error, warning, info")
}

func TestSingleLevelScheme(t *testing.T) {
	s := MustScheme([]SeverityLevel{{ID: "only", Level: 0}})
	assert.Equal(t, 0, s.DefaultFailLevel())
}

func TestDisplayNameAndStyle(t *testing.T) {
	s := MustScheme([]SeverityLevel{{ID: "bad_thing", Level: 0}})
	assert.Equal(t, "Bad Thing", s.DisplayName("bad_thing"))
	assert.Equal(t, "Other", s.DisplayName(""))
	assert.Equal(t, "yellow", s.Style("warning"))
	assert.Equal(t, "", s.Style("bad_thing"))
}

func TestFilterDefinition(t *testing.T) {
	f, err := NewFilterDefinition("errors", "Errors", `^ERROR:`, true, "test", "")
	require.NoError(t, err)
	re, err := f.Regexp()
	require.NoError(t, err)
	assert.True(t, re.MatchString("ERROR: x"))

	_, err = NewFilterDefinition("bad", "Bad", `([`, true, "", "")
	assert.ErrorContains(t, err, "invalid regex")

	lit := FilterDefinition{ID: "lit", Pattern: `(`}
	_, err = lit.Regexp()
	assert.Error(t, err)
}
