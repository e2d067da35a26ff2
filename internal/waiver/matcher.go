package waiver

import (
	"regexp"
	"strings"

	"github.com/dshills/sawmill/internal/model"
)

type compiled struct {
	w  *Waiver
	re *regexp.Regexp // pattern and file waivers only
}

// Matcher decides whether a message is waived. It is read-only after
// construction and safe for concurrent use.
type Matcher struct {
	waivers []Waiver
	hash    []compiled
	id      []compiled
	pattern []compiled
	file    []compiled
}

// NewMatcher partitions waivers by type and compiles their patterns.
// Pattern waivers that fail to compile never match.
func NewMatcher(waivers []Waiver) *Matcher {
	m := &Matcher{waivers: make([]Waiver, len(waivers))}
	copy(m.waivers, waivers)
	for i := range m.waivers {
		w := &m.waivers[i]
		switch w.Type {
		case TypeHash:
			m.hash = append(m.hash, compiled{w: w})
		case TypeID:
			m.id = append(m.id, compiled{w: w})
		case TypePattern:
			re, _ := regexp.Compile("(?s)" + w.Pattern)
			m.pattern = append(m.pattern, compiled{w: w, re: re})
		case TypeFile:
			re, _ := regexp.Compile(globToRegexp(w.Pattern))
			m.file = append(m.file, compiled{w: w, re: re})
		}
	}
	return m
}

// Waivers returns the matcher's waivers in their original order. Pointers
// returned by Match and MatchAll point into this slice.
func (m *Matcher) Waivers() []Waiver { return m.waivers }

// Match returns the waiver exonerating msg, trying hash, id, pattern, and
// file waivers in that order. Within a type the first listed waiver wins.
func (m *Matcher) Match(msg *model.Message) (*Waiver, bool) {
	var hash string
	if len(m.hash) > 0 {
		hash = msg.Hash()
	}
	for _, bucket := range m.buckets() {
		for _, c := range bucket {
			if m.matches(c, msg, hash) {
				return c.w, true
			}
		}
	}
	return nil, false
}

// MatchAll returns every waiver matching msg, in priority order.
func (m *Matcher) MatchAll(msg *model.Message) []*Waiver {
	var hash string
	if len(m.hash) > 0 {
		hash = msg.Hash()
	}
	var out []*Waiver
	for _, bucket := range m.buckets() {
		for _, c := range bucket {
			if m.matches(c, msg, hash) {
				out = append(out, c.w)
			}
		}
	}
	return out
}

func (m *Matcher) buckets() [4][]compiled {
	return [4][]compiled{m.hash, m.id, m.pattern, m.file}
}

func (m *Matcher) matches(c compiled, msg *model.Message, hash string) bool {
	switch c.w.Type {
	case TypeHash:
		return hash == c.w.Pattern
	case TypeID:
		return msg.MessageID != "" && msg.MessageID == c.w.Pattern
	case TypePattern:
		return c.re != nil && c.re.MatchString(msg.RawText)
	case TypeFile:
		return matchFile(c, msg.FilePath())
	}
	return false
}

func matchFile(c compiled, path string) bool {
	if path == "" {
		return false
	}
	if path == c.w.Pattern || strings.HasSuffix(path, c.w.Pattern) {
		return true
	}
	return c.re != nil && c.re.MatchString(path)
}

// globToRegexp escapes every regex metacharacter in pattern except '*',
// which matches any run of characters, and anchors the result.
func globToRegexp(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return "^" + strings.Join(parts, ".*") + "$"
}
