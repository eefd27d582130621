package httpserver

import (
	"net/http"
	"testing"
)

func BenchmarkHandleSearchText(b *testing.B) {
	srv := buildTestServer(b, &fakeCatalog{movies: sampleMovies()})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := serve(srv, "/search_disney_movie?query=moana&sort_by=profit&order=desc")
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
