package filter

import "github.com/dshills/sawmill/internal/model"

// Stats summarizes how a filter set matches a message set.
// PerFilter holds independent match counts per enabled filter id; Matched
// uses the same AND semantics as ApplyFilters.
type Stats struct {
	Total           int            `json:"total"`
	Matched         int            `json:"matched"`
	MatchPercentage float64        `json:"match_percentage"`
	PerFilter       map[string]int `json:"per_filter"`
}

// ComputeStats computes Stats for filters over msgs.
func ComputeStats(filters []model.FilterDefinition, msgs []model.Message) Stats {
	st := Stats{Total: len(msgs), PerFilter: make(map[string]int)}
	for _, f := range filters {
		if !f.Enabled {
			continue
		}
		re, err := f.Regexp()
		if err != nil {
			st.PerFilter[f.ID] = 0
			continue
		}
		n := 0
		for i := range msgs {
			if re.MatchString(msgs[i].RawText) {
				n++
			}
		}
		st.PerFilter[f.ID] = n
	}
	st.Matched = len(ApplyFilters(filters, msgs, ModeAnd))
	if st.Total > 0 {
		st.MatchPercentage = float64(st.Matched) / float64(st.Total) * 100
	}
	return st
}
