package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, 2*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestSearchTextSendsQueryAndHints(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"title":"Frozen","release_date":"2013-11-27","budget":150000000}]`))
	})

	movies, err := client.SearchText(context.Background(), "snow queen & sisters", Hints{SortBy: "budget", Order: "ascending", DateFilter: "past_decade"})
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Frozen" {
		t.Fatalf("unexpected movies: %+v", movies)
	}
	if movies[0].ReleaseYear != 2013 {
		t.Fatalf("release year should be derived from date, got %d", movies[0].ReleaseYear)
	}
	if got.URL.Path != "/search_disney_movie" {
		t.Fatalf("path = %s", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("query") != "snow queen & sisters" || q.Get("sort_by") != "budget" || q.Get("order") != "ascending" || q.Get("date_filter") != "past_decade" || q.Get("k") != "0" {
		t.Fatalf("unexpected query params: %v", q)
	}
	if got.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestSearchTagOmitsOrder(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search_by_tag" {
			t.Errorf("path = %s", r.URL.Path)
		}
		query = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	})

	movies, err := client.SearchTag(context.Background(), "princess", Hints{SortBy: "profit", Order: "descending"})
	if err != nil {
		t.Fatalf("SearchTag: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected no movies, got %d", len(movies))
	}
	if _, ok := query["order"]; ok {
		t.Fatalf("order is not part of the tag endpoint contract: %v", query)
	}
	if query["tag"][0] != "princess" || query["sort_by"][0] != "profit" || query["k"][0] != "0" {
		t.Fatalf("unexpected params %v", query)
	}
}

func TestSearchRelevancyParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search_relevancy" || r.URL.Query().Get("is_tag") != "true" || r.URL.Query().Get("query") != "pirates" || r.URL.Query().Get("k") != "0" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`[{"title":"Treasure Planet","relevancy":"12.5"}]`))
	})

	movies, err := client.SearchRelevancy(context.Background(), "pirates", true)
	if err != nil {
		t.Fatalf("SearchRelevancy: %v", err)
	}
	if movies[0].Relevancy.Or0() != 12.5 {
		t.Fatalf("relevancy = %v", movies[0].Relevancy)
	}
}

func TestNotFoundPlaceholderIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"result":"Not found"}]`))
	})

	movies, err := client.SearchText(context.Background(), "zzz", Hints{})
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("placeholder row should decode to no movies, got %+v", movies)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `oops`, ErrUpstream},
		{"not found", http.StatusNotFound, `{}`, ErrUpstream},
		{"not json", http.StatusOK, `<html>`, ErrMalformedResponse},
		{"object instead of array", http.StatusOK, `{"title":"x"}`, ErrMalformedResponse},
		{"row without title", http.StatusOK, `[{"summary":"no title"}]`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.SearchText(context.Background(), "q", Hints{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCommonTags(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fetch_common_tags" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"tags":["princess"," ","musical"]}`))
	})

	tags, err := client.CommonTags(context.Background())
	if err != nil {
		t.Fatalf("CommonTags: %v", err)
	}
	if len(tags) != 2 || tags[0] != "princess" || tags[1] != "musical" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestCommonTagsMissingField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"labels":[]}`))
	})
	if _, err := client.CommonTags(context.Background()); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client, err := NewHTTPClient(baseURL, time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := client.SearchText(context.Background(), "q", Hints{}); !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestNewHTTPClientValidation(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := NewHTTPClient(raw, time.Second, nil); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
