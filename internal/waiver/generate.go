package waiver

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/sawmill/internal/model"
)

// Placeholder values written into generated waivers for a human to replace.
const (
	PlaceholderAuthor = "<your-email@example.com>"
	PlaceholderReason = "<explain why this message is acceptable>"
)

const commentWidth = 80

// Generator renders waiver files from existing messages.
type Generator struct {
	Author string
	Reason string
	// MinLevel is the lowest severity level included. Nil means the
	// scheme's default fail level, which leaves out informational messages.
	MinLevel *int
	// Now supplies the waiver date; nil means time.Now.
	Now func() time.Time
}

// Generate renders a waiver file covering every message at or above the
// minimum level. Messages with an id get an id waiver, the rest a hash
// waiver. Messages without a declared severity are skipped, and repeated
// (type, pattern) pairs are emitted once.
func (g Generator) Generate(msgs []model.Message, scheme model.Scheme, tool string) string {
	scheme = scheme.OrDefault()
	minLevel := scheme.DefaultFailLevel()
	if g.MinLevel != nil {
		minLevel = *g.MinLevel
	}
	author := firstNonEmpty(g.Author, PlaceholderAuthor)
	reason := firstNonEmpty(g.Reason, PlaceholderReason)
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	date := now().Format(dateLayout)

	var b strings.Builder
	b.WriteString("# Sawmill generated waiver file\n")
	b.WriteString("# Review each entry and replace the placeholder author and reason.\n\n")
	b.WriteString("[metadata]\n")
	if tool != "" {
		fmt.Fprintf(&b, "tool = %s\n", quote(tool))
	}

	seen := make(map[string]bool)
	for i := range msgs {
		m := &msgs[i]
		lvl, ok := scheme.LevelOf(m.Severity)
		if !ok || lvl < minLevel {
			continue
		}
		typ, pattern := TypeHash, m.Hash()
		if m.MessageID != "" {
			typ, pattern = TypeID, m.MessageID
		}
		key := string(typ) + "\x00" + pattern
		if seen[key] {
			continue
		}
		seen[key] = true

		fmt.Fprintf(&b, "\n# line %d: %s\n", m.StartLine, summarize(m.Content))
		b.WriteString("[[waiver]]\n")
		fmt.Fprintf(&b, "type = %s\n", quote(string(typ)))
		fmt.Fprintf(&b, "pattern = %s\n", quote(pattern))
		fmt.Fprintf(&b, "reason = %s\n", quote(reason))
		fmt.Fprintf(&b, "author = %s\n", quote(author))
		fmt.Fprintf(&b, "date = %s\n", quote(date))
	}
	return b.String()
}

// summarize condenses content onto one line and truncates it for use in
// a comment.
func summarize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > commentWidth {
		return string(r[:commentWidth-3]) + "..."
	}
	return s
}

// quote renders s as a TOML basic string.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
