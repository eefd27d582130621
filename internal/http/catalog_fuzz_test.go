package httpserver

import (
	"net/url"
	"testing"

	"github.com/Clark-Hu/movie-browser/internal/repository"
)

func FuzzBuildSearchOptions(f *testing.F) {
	seeds := []string{
		"sort_by=budget&order=asc&date_filter=past_year",
		"sort_by=relevancy&k=5",
		"order=sideways",
		"k=-1",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		opts, err := buildSearchOptions(values, 0)
		if err != nil {
			return
		}
		if opts.SortBy != "" && !repository.ValidSortField(opts.SortBy) {
			t.Fatalf("accepted sort field %q", opts.SortBy)
		}
		if opts.DateFilter != "" && !repository.ValidDateFilter(opts.DateFilter) {
			t.Fatalf("accepted date filter %q", opts.DateFilter)
		}
		if opts.Order != "" && opts.Order != "ascending" && opts.Order != "descending" {
			t.Fatalf("order not normalised: %q", opts.Order)
		}
		if opts.Limit < 0 {
			t.Fatalf("negative limit %d", opts.Limit)
		}
	})
}
