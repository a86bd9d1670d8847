package catalog

import (
	"context"
	"net/http"
	"testing"

	"github.com/flixplore-io/web-api/services/tmdb"
)

func TestFetchDetailMovie(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/3/movie/42":
			_, _ = w.Write([]byte(`{"id": 42, "title": "A", "runtime": 120}`))
		case "/3/movie/42/credits":
			_, _ = w.Write([]byte(`{"id": 42, "cast": [{"id": 7, "name": "N"}]}`))
		case "/3/movie/42/videos":
			_, _ = w.Write([]byte(`{"id": 42, "results": [
				{"key": "t1", "site": "YouTube", "type": "Trailer"},
				{"key": "t2", "site": "YouTube", "type": "Trailer"}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	view, err := svc.FetchDetail(context.Background(), tmdb.ContentTypeMovie, 42)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if view.Movie == nil || view.Movie.ID != 42 || view.Movie.Runtime != 120 {
		t.Errorf("got movie %+v", view.Movie)
	}
	if view.TVShow != nil {
		t.Error("tv show should be empty for a movie view")
	}
	if view.Credits == nil || len(view.Credits.Cast) != 1 {
		t.Errorf("got credits %+v", view.Credits)
	}
	if view.TrailerKey != "t1" {
		t.Errorf("got trailer key %q, want %q", view.TrailerKey, "t1")
	}
}

func TestFetchDetailAnimeUsesTVEndpoint(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/3/tv/9":
			_, _ = w.Write([]byte(`{"id": 9, "name": "B", "number_of_seasons": 3}`))
		case "/3/tv/9/credits":
			_, _ = w.Write([]byte(`{"id": 9}`))
		case "/3/tv/9/videos":
			_, _ = w.Write([]byte(`{"id": 9, "results": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	view, err := svc.FetchDetail(context.Background(), tmdb.ContentTypeAnime, 9)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if view.TVShow == nil || view.TVShow.NumberOfSeasons != 3 {
		t.Errorf("got tv show %+v", view.TVShow)
	}
	if view.TrailerKey != "" {
		t.Errorf("got trailer key %q, want empty", view.TrailerKey)
	}
}

func TestFetchDetailFailsWhenCreditsFail(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/3/movie/42/credits" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"id": 42, "results": []}`))
	}))
	if _, err := svc.FetchDetail(context.Background(), tmdb.ContentTypeMovie, 42); err == nil {
		t.Fatal("expected error when one call fails")
	}
}
