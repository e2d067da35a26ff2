package output

import (
	"strings"

	"github.com/fatih/color"
)

var styleAttrs = map[string]color.Attribute{
	"bold":      color.Bold,
	"dim":       color.Faint,
	"faint":     color.Faint,
	"italic":    color.Italic,
	"underline": color.Underline,
	"black":     color.FgBlack,
	"red":       color.FgRed,
	"green":     color.FgGreen,
	"yellow":    color.FgYellow,
	"blue":      color.FgBlue,
	"magenta":   color.FgMagenta,
	"cyan":      color.FgCyan,
	"white":     color.FgWhite,
	"gray":      color.FgHiBlack,
	"grey":      color.FgHiBlack,
}

// styleColor converts a space separated style string such as "red bold"
// into a color. Unknown words are ignored; ok is false when none remain.
func styleColor(style string) (c *color.Color, ok bool) {
	var attrs []color.Attribute
	for _, word := range strings.Fields(strings.ToLower(style)) {
		if a, ok := styleAttrs[word]; ok {
			attrs = append(attrs, a)
		}
	}
	if len(attrs) == 0 {
		return nil, false
	}
	return color.New(attrs...), true
}

// painter applies styles when enabled, independent of the global
// color.NoColor setting so output to files and buffers is deterministic.
type painter struct {
	enabled bool
}

func (p painter) paint(style, s string) string {
	if !p.enabled || style == "" || s == "" {
		return s
	}
	c, ok := styleColor(style)
	if !ok {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}
