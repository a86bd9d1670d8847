package tmdb

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func testContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	flags := RegisterFlags(nil)
	flags = RegisterCacheFlags(flags)
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags {
		f.Apply(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cli.NewContext(app, set, nil)
}

func upstreamContext(t *testing.T, s *httptest.Server, extra ...string) *cli.Context {
	t.Helper()
	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatalf("failed to parse server url: %v", err)
	}
	args := []string{
		"--tmdb-api-host=" + u.Hostname(),
		"--tmdb-api-port=" + u.Port(),
		"--tmdb-api-secure=false",
	}
	args = append(args, extra...)
	return testContext(t, args...)
}

func TestNewWithoutCredential(t *testing.T) {
	c := testContext(t)
	if api := New(c, http.DefaultClient); api != nil {
		t.Fatal("expected nil client without credential")
	}
}

func TestBearerCredentialPreferred(t *testing.T) {
	var gotAuth string
	var gotKey string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("api_key")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer s.Close()
	c := upstreamContext(t, s, "--tmdb-access-token=tok", "--tmdb-api-key=key")
	api := New(c, http.DefaultClient)
	if api == nil {
		t.Fatal("expected client")
	}
	if _, err := api.PopularMovies(context.Background()); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("got authorization %q, want %q", gotAuth, "Bearer tok")
	}
	if gotKey != "" {
		t.Errorf("api key should not be sent alongside bearer token, got %q", gotKey)
	}
}

func TestAPIKeyFallback(t *testing.T) {
	var gotAuth string
	var gotKey string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("api_key")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer s.Close()
	c := upstreamContext(t, s, "--tmdb-api-key=key")
	api := New(c, http.DefaultClient)
	if _, err := api.PopularMovies(context.Background()); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if gotKey != "key" {
		t.Errorf("got api key %q, want %q", gotKey, "key")
	}
	if gotAuth != "" {
		t.Errorf("no authorization header expected, got %q", gotAuth)
	}
}

func TestListDefaultsAlwaysWin(t *testing.T) {
	var gotQuery url.Values
	var gotPath string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer s.Close()
	c := upstreamContext(t, s, "--tmdb-access-token=tok")
	api := New(c, http.DefaultClient)
	if _, err := api.TopRatedAnime(context.Background()); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if gotPath != "/3/discover/tv" {
		t.Errorf("got path %q, want %q", gotPath, "/3/discover/tv")
	}
	if gotQuery.Get("with_keywords") != "210024" {
		t.Errorf("got with_keywords %q, want %q", gotQuery.Get("with_keywords"), "210024")
	}
	// the fixed defaults are applied last, so the requested
	// vote_average sort is overridden
	want := map[string]string{
		"sort_by":       "popularity.desc",
		"include_adult": "false",
		"include_video": "false",
		"language":      "en-US",
		"page":          "1",
	}
	for k, v := range want {
		if gotQuery.Get(k) != v {
			t.Errorf("got %s=%q, want %q", k, gotQuery.Get(k), v)
		}
	}
}

func TestUpstreamErrorStatus(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_message": "not found"}`))
	}))
	defer s.Close()
	c := upstreamContext(t, s, "--tmdb-access-token=tok")
	api := New(c, http.DefaultClient)
	_, err := api.ContentDetails(context.Background(), ContentTypeMovie, 42)
	if err == nil {
		t.Fatal("expected error")
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("got %T, want *UpstreamError", err)
	}
	if ue.Status != http.StatusNotFound {
		t.Errorf("got status %d, want %d", ue.Status, http.StatusNotFound)
	}
}

func TestContentPaths(t *testing.T) {
	var paths []string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer s.Close()
	c := upstreamContext(t, s, "--tmdb-access-token=tok")
	api := New(c, http.DefaultClient)
	ctx := context.Background()
	if _, err := api.ContentDetails(ctx, ContentTypeMovie, 1); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if _, err := api.ContentCredits(ctx, ContentTypeTV, 2); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if _, err := api.ContentVideos(ctx, ContentTypeAnime, 3); err != nil {
		t.Fatalf("got error: %v", err)
	}
	want := []string{"/3/movie/1", "/3/tv/2/credits", "/3/tv/3/videos"}
	if fmt.Sprint(paths) != fmt.Sprint(want) {
		t.Errorf("got paths %v, want %v", paths, want)
	}
}

func TestCacheCoalescesFetches(t *testing.T) {
	calls := 0
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer s.Close()
	c := upstreamContext(t, s, "--tmdb-access-token=tok")
	api := New(c, http.DefaultClient).WithCache(NewCache(c, nil))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := api.PopularMovies(ctx); err != nil {
			t.Fatalf("got error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("got %d upstream calls, want 1", calls)
	}
}
