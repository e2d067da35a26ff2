package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dshills/sawmill/internal/aggregate"
)

// styleToLipgloss maps a severity style string onto a lipgloss style.
func styleToLipgloss(r *lipgloss.Renderer, style string) lipgloss.Style {
	st := r.NewStyle()
	for _, word := range strings.Fields(strings.ToLower(style)) {
		switch word {
		case "bold":
			st = st.Bold(true)
		case "dim", "faint":
			st = st.Faint(true)
		case "italic":
			st = st.Italic(true)
		case "underline":
			st = st.Underline(true)
		case "red":
			st = st.Foreground(lipgloss.Color("1"))
		case "green":
			st = st.Foreground(lipgloss.Color("2"))
		case "yellow":
			st = st.Foreground(lipgloss.Color("3"))
		case "blue":
			st = st.Foreground(lipgloss.Color("4"))
		case "magenta":
			st = st.Foreground(lipgloss.Color("5"))
		case "cyan":
			st = st.Foreground(lipgloss.Color("6"))
		case "white":
			st = st.Foreground(lipgloss.Color("7"))
		case "gray", "grey":
			st = st.Foreground(lipgloss.Color("8"))
		}
	}
	return st
}

// WriteTable renders rows under headers as a bordered table. rowStyles, when
// non-nil, gives a style string per row applied to the first column.
func WriteTable(w io.Writer, headers []string, rows [][]string, rowStyles []string, opts Options) error {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(opts.Color).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Faint(opts.Color)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if opts.Color && col == 0 && row >= 0 && row < len(rowStyles) {
				return styleToLipgloss(r, rowStyles[row]).Padding(0, 1)
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteSummary renders per-severity totals with the most frequent message
// ids of each severity. top limits the ids listed per row; zero means 3.
func WriteSummary(w io.Writer, stats []*aggregate.SeverityStats, top int, opts Options) error {
	if top <= 0 {
		top = 3
	}
	scheme := opts.scheme()
	rows := make([][]string, 0, len(stats)+1)
	styles := make([]string, 0, len(stats)+1)
	total := 0
	for _, s := range stats {
		total += s.Total
		rows = append(rows, []string{
			scheme.DisplayName(s.Severity),
			strconv.Itoa(s.Total),
			topIDs(s.ByID, top),
		})
		styles = append(styles, scheme.Style(s.Severity))
	}
	rows = append(rows, []string{"Total", strconv.Itoa(total), ""})
	styles = append(styles, "bold")
	return WriteTable(w, []string{"Severity", "Count", "Top IDs"}, rows, styles, opts)
}

// WriteGroups renders groups as a table keyed by the grouping field name.
// top limits the number of rows; zero means all.
func WriteGroups(w io.Writer, fieldName string, groups []*aggregate.Group, top int, opts Options) error {
	scheme := opts.scheme()
	if top > 0 && len(groups) > top {
		groups = groups[:top]
	}
	rows := make([][]string, 0, len(groups))
	styles := make([]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.Key,
			scheme.DisplayName(g.Severity),
			strconv.Itoa(g.Count),
			strconv.Itoa(len(g.Files)),
		})
		styles = append(styles, scheme.Style(g.Severity))
	}
	return WriteTable(w, []string{fieldName, "Severity", "Count", "Files"}, rows, styles, opts)
}

func topIDs(byID map[string]int, n int) string {
	type kv struct {
		id    string
		count int
	}
	list := make([]kv, 0, len(byID))
	for id, c := range byID {
		list = append(list, kv{id, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].id < list[j].id
	})
	if len(list) > n {
		list = list[:n]
	}
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = fmt.Sprintf("%s (%d)", e.id, e.count)
	}
	return strings.Join(parts, ", ")
}
