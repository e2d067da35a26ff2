package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileRef points at a source file mentioned in a message.
// Line is zero when the message names the file without a line number.
type FileRef struct {
	Path string `json:"path" yaml:"path"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Message is a single logical log entry.
type Message struct {
	StartLine int      `json:"start_line" yaml:"start_line"`
	EndLine   int      `json:"end_line" yaml:"end_line"`
	RawText   string   `json:"raw_text" yaml:"raw_text"`
	Content   string   `json:"content" yaml:"content"`
	Severity  string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	MessageID string   `json:"message_id,omitempty" yaml:"message_id,omitempty"`
	Category  string   `json:"category,omitempty" yaml:"category,omitempty"`
	FileRef   *FileRef `json:"file_ref,omitempty" yaml:"file_ref,omitempty"`
	Metadata  Metadata `json:"metadata,omitzero" yaml:"metadata,omitempty"`
}

// FieldValue resolves a field id against the message. Builtin attributes
// take priority, then metadata, then the file reference path. The boolean
// is false when the field is absent or empty.
func (m *Message) FieldValue(field string) (string, bool) {
	switch field {
	case FieldSeverity:
		return m.Severity, m.Severity != ""
	case FieldID, "message_id":
		return m.MessageID, m.MessageID != ""
	case FieldCategory:
		return m.Category, m.Category != ""
	}
	if v, ok := m.Metadata.Get(field); ok && v != "" {
		return v, true
	}
	if field == FieldFile && m.FileRef != nil && m.FileRef.Path != "" {
		return m.FileRef.Path, true
	}
	return "", false
}

// FilePath returns the referenced file path or "".
func (m *Message) FilePath() string {
	if m.FileRef == nil {
		return ""
	}
	return m.FileRef.Path
}

// Hash returns the hex SHA-256 digest of the message's raw text.
func (m *Message) Hash() string {
	return HashText(m.RawText)
}

// HashText returns the hex SHA-256 digest of s as UTF-8.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
