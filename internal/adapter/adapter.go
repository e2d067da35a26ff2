package adapter

import (
	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/segment"
)

// HeadLines is how many leading lines of a file are offered to CanHandle.
const HeadLines = 50

// Info describes an adapter for listings.
type Info struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}

// Adapter is one log dialect.
type Adapter interface {
	Info() Info
	// CanHandle returns a confidence in [0, 1] that the file at path, whose
	// first lines are head, is in this dialect.
	CanHandle(path string, head []string) float64
	Segment(lines []string) []segment.Span
	Classify(span segment.Span) model.Message
	// Scheme may return a zero scheme, in which case the default applies.
	Scheme() model.Scheme
	GroupingFields() []model.GroupingField
	Filters() []model.FilterDefinition
}

// Parse segments and classifies text with a.
func Parse(a Adapter, text string) []model.Message {
	return ParseLines(a, segment.SplitLines(text))
}

// ParseLines segments and classifies lines with a.
func ParseLines(a Adapter, lines []string) []model.Message {
	spans := a.Segment(lines)
	msgs := make([]model.Message, len(spans))
	for i, s := range spans {
		msgs[i] = a.Classify(s)
	}
	return msgs
}

// SchemeOf returns a's scheme, or the default scheme when it declares none.
func SchemeOf(a Adapter) model.Scheme {
	return a.Scheme().OrDefault()
}
