package segment

import (
	"fmt"
	"regexp"
	"strings"
)

// Rules holds compiled boundary rules for one log dialect.
// MaxSpan <= 0 means spans are unbounded.
type Rules struct {
	Start        *regexp.Regexp
	Continuation *regexp.Regexp
	MaxSpan      int
}

// NewRules compiles start and continuation patterns. An empty continuation
// pattern means no line ever continues a message.
func NewRules(start, continuation string, maxSpan int) (Rules, error) {
	if start == "" {
		return Rules{}, fmt.Errorf("segment: start rule is required")
	}
	s, err := regexp.Compile(start)
	if err != nil {
		return Rules{}, fmt.Errorf("segment: invalid start rule: %w", err)
	}
	r := Rules{Start: s, MaxSpan: maxSpan}
	if continuation != "" {
		c, err := regexp.Compile(continuation)
		if err != nil {
			return Rules{}, fmt.Errorf("segment: invalid continuation rule: %w", err)
		}
		r.Continuation = c
	}
	return r, nil
}

// Span is one segmented message: 1-indexed inclusive line range and the
// lines it covers with line terminators removed.
type Span struct {
	StartLine int
	EndLine   int
	Lines     []string
}

// RawText joins the span's lines with "\n".
func (s Span) RawText() string {
	return strings.Join(s.Lines, "\n")
}

// Segment scans lines and returns message spans in input order. Input with
// no start lines yields an empty slice.
func Segment(lines []string, rules Rules) []Span {
	var spans []Span
	var cur *Span

	flush := func() {
		if cur != nil {
			spans = append(spans, *cur)
			cur = nil
		}
	}

	for i, raw := range lines {
		line := trimEOL(raw)
		lineNo := i + 1

		if rules.Start.MatchString(line) {
			flush()
			cur = &Span{StartLine: lineNo, EndLine: lineNo, Lines: []string{line}}
			continue
		}
		if cur != nil && rules.continues(line) && !rules.full(cur) {
			cur.Lines = append(cur.Lines, line)
			cur.EndLine = lineNo
			continue
		}
		// Terminator: close the open span and drop the line.
		flush()
	}
	flush()
	return spans
}

// SplitLines splits text into lines, keeping any trailing empty line out.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (r Rules) continues(line string) bool {
	if r.Continuation == nil || strings.TrimSpace(line) == "" {
		return false
	}
	return r.Continuation.MatchString(line)
}

func (r Rules) full(s *Span) bool {
	return r.MaxSpan > 0 && len(s.Lines) >= r.MaxSpan
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
