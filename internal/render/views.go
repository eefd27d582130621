package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Clark-Hu/movie-browser/internal/browse"
	"github.com/Clark-Hu/movie-browser/internal/domain"
)

const summaryWidth = 72

// StateLine summarises the active query and options on one line.
func StateLine(s browse.QueryState) string {
	var search string
	switch s.Mode.Kind {
	case browse.ModeFreeText:
		search = fmt.Sprintf("search %q", s.Mode.Value)
	case browse.ModeTag:
		search = "tag " + TagLabel(s.Mode.Value)
	default:
		search = "all movies"
	}
	return fmt.Sprintf("%s | sort: %s %s | dates: %s | limit: %s",
		search, s.SortField, s.SortOrder, s.DateWindow, s.Limit)
}

// MenuString lists the open menu's options with the active one marked.
// It returns "" when no menu is open.
func MenuString(s browse.QueryState, colorize bool) string {
	var (
		title   string
		options []string
		active  string
	)
	switch s.OpenMenu {
	case browse.MenuSort:
		title = "Sort by"
		for _, f := range browse.SortFields {
			options = append(options, string(f))
		}
		active = string(s.SortField)
	case browse.MenuDate:
		title = "Release date"
		for _, w := range browse.DateWindows {
			options = append(options, string(w))
		}
		active = string(s.DateWindow)
	case browse.MenuLimit:
		title = "Results"
		for _, l := range browse.AllowedLimits {
			options = append(options, l.String())
		}
		options = append(options, browse.NoLimit.String())
		active = s.Limit.String()
	default:
		return ""
	}

	lines := []string{title + ":"}
	for _, opt := range options {
		if opt == active {
			line := "  > " + opt
			if colorize {
				line = ansiGreen + line + ansiReset
			}
			lines = append(lines, line)
			continue
		}
		lines = append(lines, "    "+opt)
	}
	return strings.Join(lines, "\n")
}

// TagsString renders the visible tag shelf with the selected tag bracketed.
func TagsString(tags []string, more bool, selected string, colorize bool) string {
	if len(tags) == 0 {
		return ""
	}
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		label := TagLabel(tag)
		if selected != "" && strings.EqualFold(tag, selected) {
			label = "[" + label + "]"
			if colorize {
				label = ansiGreen + label + ansiReset
			}
		}
		labels = append(labels, label)
	}
	line := "Tags: " + strings.Join(labels, "  ")
	if more {
		line += "  (more...)"
	}
	return line
}

// CardsString renders one block per movie. first is the list index of the
// first movie, used for numbering.
func CardsString(movies []domain.Movie, first int, colorize bool) string {
	blocks := make([]string, 0, len(movies))
	for i, m := range movies {
		heading := fmt.Sprintf("[%d] %s (%s)", first+i+1, m.Title, Year(m))
		if colorize {
			heading = ansiBold + heading + ansiReset
		}
		lines := []string{heading}

		details := []string{Runtime(m)}
		if len(m.Genre) > 0 {
			details = append(details, strings.Join(m.Genre, ", "))
		}
		if !m.ReleaseDate.IsZero() {
			details = append(details, "released "+m.ReleaseDate.Format("Jan 2, 2006"))
		}
		lines = append(lines, "    "+strings.Join(details, " | "))
		lines = append(lines, fmt.Sprintf("    Budget %s | Box office %s | Profit %s",
			Currency(m.Budget), Currency(m.BoxOffice), Currency(m.Profit)))
		if m.Relevancy.Valid {
			lines = append(lines, "    Relevancy "+humanize.FtoaWithDigits(m.Relevancy.Value, 4))
		}
		if len(m.Tags) > 0 {
			labels := make([]string, len(m.Tags))
			for j, tag := range m.Tags {
				labels[j] = TagLabel(tag)
			}
			lines = append(lines, "    Tags: "+strings.Join(labels, ", "))
		}
		lines = append(lines, "    Image: "+ImagePath(m))
		if summary := strings.TrimSpace(m.Summary); summary != "" {
			wrapped := text.WrapSoft(summary, summaryWidth)
			for _, l := range strings.Split(wrapped, "\n") {
				lines = append(lines, "    "+l)
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// TableString renders movies as a rounded table.
func TableString(movies []domain.Movie, first int) string {
	withRelevancy := false
	for _, m := range movies {
		if m.Relevancy.Valid {
			withRelevancy = true
			break
		}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"#", "Title", "Year", "Runtime", "Genre", "Budget", "Box office", "Profit"}
	if withRelevancy {
		header = append(header, "Relevancy")
	}
	tw.AppendHeader(header)

	for i, m := range movies {
		row := table.Row{
			first + i + 1,
			m.Title,
			Year(m),
			Runtime(m),
			strings.Join(m.Genre, ", "),
			Currency(m.Budget),
			Currency(m.BoxOffice),
			Currency(m.Profit),
		}
		if withRelevancy {
			rel := "N/A"
			if m.Relevancy.Valid {
				rel = humanize.FtoaWithDigits(m.Relevancy.Value, 4)
			}
			row = append(row, rel)
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range header {
		align := text.AlignLeft
		if i == 0 || i >= 5 {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
