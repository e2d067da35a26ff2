package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/segment"
)

// SeverityRule maps a severity id to the prefix that identifies it.
type SeverityRule struct {
	ID      string
	Pattern *regexp.Regexp
}

// MetadataRule extracts one metadata value from a message's raw text using
// the rule's first capture group.
type MetadataRule struct {
	Key     string
	Pattern *regexp.Regexp
}

// Rules is the compiled classification rule set of one dialect. Nil rules
// are skipped.
type Rules struct {
	Severity      []SeverityRule
	ID            *regexp.Regexp
	FileRef       *regexp.Regexp
	FileRefInline *regexp.Regexp
	Metadata      []MetadataRule
}

// Pattern is an uncompiled id/regex pair.
type Pattern struct {
	ID      string
	Pattern string
}

// Patterns is the source form of Rules.
type Patterns struct {
	Severity      []Pattern
	ID            string
	FileRef       string
	FileRefInline string
	Metadata      []Pattern
}

// Compile validates and compiles p.
func (p Patterns) Compile() (Rules, error) {
	var r Rules
	for _, sp := range p.Severity {
		re, err := regexp.Compile(sp.Pattern)
		if err != nil {
			return Rules{}, fmt.Errorf("classify: severity %q: %w", sp.ID, err)
		}
		r.Severity = append(r.Severity, SeverityRule{ID: strings.ToLower(sp.ID), Pattern: re})
	}
	var err error
	if r.ID, err = compileOptional("id", p.ID); err != nil {
		return Rules{}, err
	}
	if r.FileRef, err = compileOptional("file ref", p.FileRef); err != nil {
		return Rules{}, err
	}
	if r.FileRefInline, err = compileOptional("inline file ref", p.FileRefInline); err != nil {
		return Rules{}, err
	}
	for _, mp := range p.Metadata {
		re, err := regexp.Compile(mp.Pattern)
		if err != nil {
			return Rules{}, fmt.Errorf("classify: metadata %q: %w", mp.ID, err)
		}
		r.Metadata = append(r.Metadata, MetadataRule{Key: mp.ID, Pattern: re})
	}
	return r, nil
}

func compileOptional(name, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("classify: %s rule: %w", name, err)
	}
	return re, nil
}

// Classify builds a message from a span.
func (r Rules) Classify(span segment.Span) model.Message {
	var first string
	if len(span.Lines) > 0 {
		first = span.Lines[0]
	}
	raw := span.RawText()

	msg := model.Message{
		StartLine: span.StartLine,
		EndLine:   span.EndLine,
		RawText:   raw,
	}

	rest := first
	if id, end, ok := r.severity(first); ok {
		msg.Severity = id
		rest = first[end:]
	}
	msg.MessageID = r.messageID(first)
	msg.Category = Category(msg.MessageID)
	msg.FileRef = r.fileRef(raw)
	msg.Content = r.content(rest)

	for _, mr := range r.Metadata {
		if m := mr.Pattern.FindStringSubmatch(raw); m != nil {
			msg.Metadata = msg.Metadata.With(mr.Key, firstGroup(m))
		}
	}
	return msg
}

// SeverityOf returns the severity id matching the start of line, or "".
func (r Rules) SeverityOf(line string) string {
	id, _, _ := r.severity(line)
	return id
}

func (r Rules) severity(line string) (string, int, bool) {
	for _, sr := range r.Severity {
		if loc := sr.Pattern.FindStringIndex(line); loc != nil && loc[0] == 0 {
			return sr.ID, loc[1], true
		}
	}
	return "", 0, false
}

func (r Rules) messageID(line string) string {
	if r.ID == nil {
		return ""
	}
	m := r.ID.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return firstGroup(m)
}

func (r Rules) fileRef(raw string) *model.FileRef {
	for _, re := range []*regexp.Regexp{r.FileRef, r.FileRefInline} {
		if re == nil {
			continue
		}
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		ref := &model.FileRef{Path: firstGroup(m)}
		if len(m) > 2 {
			ref.Line, _ = strconv.Atoi(m[2])
		}
		return ref
	}
	return nil
}

func (r Rules) content(line string) string {
	if r.ID != nil {
		line = r.ID.ReplaceAllString(line, "")
	}
	if r.FileRef != nil {
		line = r.FileRef.ReplaceAllString(line, "")
	}
	return strings.TrimSpace(line)
}

// Category derives a category from a message id: its first whitespace
// separated token, lowercased.
func Category(messageID string) string {
	fields := strings.Fields(messageID)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func firstGroup(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}
