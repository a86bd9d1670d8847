package proxy

import (
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli"

	"github.com/flixplore-io/web-api/services/tmdb"
)

func testRouter(t *testing.T, upstream *httptest.Server, extra ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range tmdb.RegisterFlags(nil) {
		f.Apply(set)
	}
	var args []string
	if upstream != nil {
		u, err := url.Parse(upstream.URL)
		if err != nil {
			t.Fatalf("failed to parse upstream url: %v", err)
		}
		args = append(args,
			"--tmdb-api-host="+u.Hostname(),
			"--tmdb-api-port="+u.Port(),
			"--tmdb-api-secure=false",
		)
	}
	args = append(args, extra...)
	if err := set.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	r := gin.New()
	RegisterHandler(cli.NewContext(cli.NewApp(), set, nil), r, http.DefaultClient)
	return r
}

func TestForwardRequiresCredential(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()
	r := testRouter(t, upstream)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tmdb-proxy/movie/popular", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error message")
	}
	if called {
		t.Error("upstream must not be contacted without a credential")
	}
}

func TestForwardAttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("page")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer upstream.Close()
	r := testRouter(t, upstream, "--tmdb-access-token=tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tmdb-proxy/movie/popular?page=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("got authorization %q, want %q", gotAuth, "Bearer tok")
	}
	if gotPath != "/3/movie/popular" {
		t.Errorf("got path %q, want %q", gotPath, "/3/movie/popular")
	}
	if gotQuery != "2" {
		t.Errorf("got page %q, want %q", gotQuery, "2")
	}
	if w.Body.String() != `{"results": []}` {
		t.Errorf("got body %q", w.Body.String())
	}
}

func TestForwardStripsClientAPIKey(t *testing.T) {
	var gotKey string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()
	r := testRouter(t, upstream, "--tmdb-api-key=server-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tmdb-proxy/movie/popular?api_key=client-key", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if gotKey != "server-key" {
		t.Errorf("got api key %q, want the configured one", gotKey)
	}
}

func TestForwardRelaysUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_message": "not found"}`))
	}))
	defer upstream.Close()
	r := testRouter(t, upstream, "--tmdb-access-token=tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tmdb-proxy/movie/0", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}
