package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Clark-Hu/movie-browser/internal/domain"
)

// PlaceholderImage is shown when a movie has no image path.
const PlaceholderImage = "images/placeholder.png"

var titleCaser = cases.Title(language.Und)

// Currency formats a dollar amount with thousands separators, e.g. "$1,234,567".
// Absent values render as "N/A".
func Currency(n domain.Number) string {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return "N/A"
	}
	rounded := math.Round(n.Value)
	if rounded == 0 {
		return "$0"
	}
	if rounded < 0 {
		return "-$" + humanize.Commaf(-rounded)
	}
	return "$" + humanize.Commaf(rounded)
}

// TagLabel title-cases a tag for display.
func TagLabel(tag string) string {
	return titleCaser.String(strings.TrimSpace(tag))
}

// ImagePath returns the movie's image or the placeholder.
func ImagePath(m domain.Movie) string {
	if strings.TrimSpace(m.ImagePath) == "" {
		return PlaceholderImage
	}
	return m.ImagePath
}

// Year returns the release year, falling back to the date.
func Year(m domain.Movie) string {
	switch {
	case m.ReleaseYear > 0:
		return fmt.Sprintf("%d", m.ReleaseYear)
	case !m.ReleaseDate.IsZero():
		return fmt.Sprintf("%d", m.ReleaseDate.Year())
	default:
		return "?"
	}
}

// Runtime formats the running time in minutes.
func Runtime(m domain.Movie) string {
	if m.RunningTime <= 0 {
		return "?"
	}
	return fmt.Sprintf("%d minutes", m.RunningTime)
}
