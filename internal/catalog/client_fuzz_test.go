package catalog

import (
	"errors"
	"testing"
)

func FuzzDecodeMovies(f *testing.F) {
	seeds := []string{
		`[{"title":"Moana","release_date":"2016-11-23","budget":150000000}]`,
		`[{"result":"Not found"}]`,
		`[{"title":"","budget":""}]`,
		`{"tags":[]}`,
		`[]`,
		``,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		movies, err := decodeMovies([]byte(raw))
		if err != nil {
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("decode error should wrap ErrMalformedResponse, got %v", err)
			}
			return
		}
		for _, movie := range movies {
			if movie.Title == "" {
				t.Fatalf("decoded movie without title")
			}
		}
	})
}
