package adapter

import (
	"fmt"

	"github.com/dshills/sawmill/internal/classify"
	"github.com/dshills/sawmill/internal/model"
	"github.com/dshills/sawmill/internal/segment"
)

// RuleAdapter is an Adapter driven by compiled rules.
type RuleAdapter struct {
	Meta           Info
	Segmentation   segment.Rules
	Classification classify.Rules
	Levels         model.Scheme
	Fields         []model.GroupingField
	Presets        []model.FilterDefinition
	Detector       func(path string, head []string) float64
}

func (r *RuleAdapter) Info() Info { return r.Meta }

func (r *RuleAdapter) CanHandle(path string, head []string) float64 {
	if r.Detector == nil {
		return 0
	}
	return r.Detector(path, head)
}

func (r *RuleAdapter) Segment(lines []string) []segment.Span {
	return segment.Segment(lines, r.Segmentation)
}

func (r *RuleAdapter) Classify(span segment.Span) model.Message {
	return r.Classification.Classify(span)
}

func (r *RuleAdapter) Scheme() model.Scheme { return r.Levels }

func (r *RuleAdapter) GroupingFields() []model.GroupingField {
	if len(r.Fields) == 0 {
		return model.DefaultGroupingFields()
	}
	return append([]model.GroupingField(nil), r.Fields...)
}

func (r *RuleAdapter) Filters() []model.FilterDefinition {
	return append([]model.FilterDefinition(nil), r.Presets...)
}

// Validate checks that the adapter's rules are usable: a start rule is
// present and every severity it classifies is declared by its scheme.
func (r *RuleAdapter) Validate() error {
	if r.Meta.Name == "" {
		return fmt.Errorf("adapter name is required")
	}
	if r.Segmentation.Start == nil {
		return fmt.Errorf("adapter %s: start rule is required", r.Meta.Name)
	}
	scheme := r.Levels.OrDefault()
	for _, sr := range r.Classification.Severity {
		if _, ok := scheme.Lookup(sr.ID); !ok {
			return fmt.Errorf("adapter %s: severity %q is not declared by its scheme", r.Meta.Name, sr.ID)
		}
	}
	for _, f := range r.Presets {
		if _, err := f.Regexp(); err != nil {
			return fmt.Errorf("adapter %s: filter %q: %w", r.Meta.Name, f.ID, err)
		}
	}
	return nil
}
