package browse

import (
	"cmp"
	"slices"
	"time"

	"github.com/Clark-Hu/movie-browser/internal/domain"
)

// DeriveView applies the date window, then the sort, then the limit to
// results. results is never modified; the returned slice is always a fresh
// copy, so calling DeriveView again with the same inputs yields the same view.
func DeriveView(results []domain.Movie, state QueryState, today time.Time) []domain.Movie {
	filtered := FilterByDate(results, state.DateWindow, today)
	SortMovies(filtered, state.SortField, state.SortOrder)
	return ApplyLimit(filtered, state.Limit)
}

// FilterByDate keeps the movies released on or after the window's cutoff.
// Cutoffs use calendar arithmetic on today's date, so 2024-03-15 minus one
// year is 2023-03-15. Movies without a release date only pass AllYears.
func FilterByDate(movies []domain.Movie, window DateWindow, today time.Time) []domain.Movie {
	out := make([]domain.Movie, 0, len(movies))
	cutoff, bounded := windowCutoff(window, today)
	for _, movie := range movies {
		if bounded {
			if movie.ReleaseDate.IsZero() || movie.ReleaseDate.Before(cutoff) {
				continue
			}
		}
		out = append(out, movie)
	}
	return out
}

// Cutoff returns the earliest release date a window admits, or false for AllYears.
func Cutoff(window DateWindow, today time.Time) (domain.Date, bool) {
	cutoff, ok := windowCutoff(window, today)
	return domain.Date{Time: cutoff}, ok
}

func windowCutoff(window DateWindow, today time.Time) (time.Time, bool) {
	base := domain.DateOf(today).Time
	switch window {
	case PastYear:
		return base.AddDate(-1, 0, 0), true
	case PastDecade:
		return base.AddDate(-10, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// SortMovies orders movies in place. Descending puts larger and newer values
// first; ascending flips the comparator. Missing numbers count as zero and
// ties keep their incoming order.
func SortMovies(movies []domain.Movie, field SortField, order SortOrder) {
	slices.SortStableFunc(movies, func(a, b domain.Movie) int {
		c := compareBy(field, a, b)
		if order == Ascending {
			return c
		}
		return -c
	})
}

func compareBy(field SortField, a, b domain.Movie) int {
	switch field {
	case SortBudget:
		return cmp.Compare(a.Budget.Or0(), b.Budget.Or0())
	case SortBoxOffice:
		return cmp.Compare(a.BoxOffice.Or0(), b.BoxOffice.Or0())
	case SortProfit:
		return cmp.Compare(a.Profit.Or0(), b.Profit.Or0())
	case SortRelevancy:
		return cmp.Compare(a.Relevancy.Or0(), b.Relevancy.Or0())
	default:
		return a.ReleaseDate.Compare(b.ReleaseDate.Time)
	}
}

// ApplyLimit truncates movies to limit entries. NoLimit returns movies as is.
func ApplyLimit(movies []domain.Movie, limit Limit) []domain.Movie {
	if limit <= NoLimit || int(limit) >= len(movies) {
		return movies
	}
	return movies[:limit:limit]
}
