package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	hostFlag        = "tmdb-api-host"
	portFlag        = "tmdb-api-port"
	secureFlag      = "tmdb-api-secure"
	AccessTokenFlag = "tmdb-access-token"
	APIKeyFlag      = "tmdb-api-key"
)

// Anime has no first-class upstream resource; it is discover/tv narrowed
// to this keyword.
const animeKeywordID = "210024"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   hostFlag,
			Usage:  "tmdb api host",
			EnvVar: "TMDB_API_HOST",
			Value:  "api.themoviedb.org",
		},
		cli.IntFlag{
			Name:   portFlag,
			Usage:  "tmdb api port",
			EnvVar: "TMDB_API_PORT",
			Value:  443,
		},
		cli.BoolTFlag{
			Name:   secureFlag,
			Usage:  "tmdb api secure (https)",
			EnvVar: "TMDB_API_SECURE",
		},
		cli.StringFlag{
			Name:   AccessTokenFlag,
			Usage:  "tmdb v4 access token",
			Value:  "",
			EnvVar: "TMDB_ACCESS_TOKEN",
		},
		cli.StringFlag{
			Name:   APIKeyFlag,
			Usage:  "tmdb v3 api key",
			Value:  "",
			EnvVar: "TMDB_API_KEY",
		},
	)
}

// RootURL returns the upstream origin without the version prefix.
// The proxy gateway appends forwarded sub-paths to it, so the host is
// always the configured one.
func RootURL(c *cli.Context) string {
	protocol := "http"
	if c.BoolT(secureFlag) {
		protocol = "https"
	}
	return fmt.Sprintf("%v://%v:%v", protocol, c.String(hostFlag), c.Int(portFlag))
}

// UpstreamError is a non-2xx response from the metadata provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed: %d %s", e.Status, http.StatusText(e.Status))
}

type Api struct {
	url            string
	cl             *http.Client
	cache          *Cache
	prepareRequest func(r *http.Request) (*http.Request, error)
}

// New builds the upstream client. Credential selection prefers the
// long-lived bearer token; the v3 api key is the query-parameter
// fallback. Without either the client is nil and callers must go
// through the proxy gateway instead.
func New(c *cli.Context, cl *http.Client) *Api {
	token := c.String(AccessTokenFlag)
	key := c.String(APIKeyFlag)
	if token == "" && key == "" {
		return nil
	}
	u := RootURL(c) + "/3"
	var prepareRequest func(r *http.Request) (*http.Request, error)
	if token != "" {
		prepareRequest = func(r *http.Request) (*http.Request, error) {
			r.Header.Set("Accept", "application/json")
			r.Header.Set("Authorization", "Bearer "+token)
			return r, nil
		}
	} else {
		prepareRequest = func(r *http.Request) (*http.Request, error) {
			r.Header.Set("Accept", "application/json")
			q := r.URL.Query()
			q.Set("api_key", key)
			r.URL.RawQuery = q.Encode()
			return r, nil
		}
	}
	log.Infof("tmdb api endpoint %v", u)
	return &Api{
		url:            u,
		cl:             cl,
		prepareRequest: prepareRequest,
	}
}

// WithCache attaches a response cache. Returns the client for chaining.
func (api *Api) WithCache(cache *Cache) *Api {
	api.cache = cache
	return api
}

func (api *Api) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s", api.url, strings.TrimPrefix(path, "/"))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	q := req.URL.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	req.URL.RawQuery = q.Encode()

	req, err = api.prepareRequest(req)
	if err != nil {
		return nil, errors.Wrap(err, "prepare request")
	}

	resp, err := api.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// getList applies the fixed policy defaults every list call carries.
// They are set after caller params so they always win.
func (api *Api) getList(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("sort_by", "popularity.desc")
	params.Set("language", "en-US")
	params.Set("page", "1")
	if api.cache == nil {
		return api.do(ctx, path, params)
	}
	return api.cache.GetList(ctx, cacheKey(path, params), func() ([]byte, error) {
		return api.do(ctx, path, params)
	})
}

func (api *Api) getDetail(ctx context.Context, path string) ([]byte, error) {
	if api.cache == nil {
		return api.do(ctx, path, nil)
	}
	return api.cache.GetDetail(ctx, cacheKey(path, nil), func() ([]byte, error) {
		return api.do(ctx, path, nil)
	})
}

func (api *Api) movieList(ctx context.Context, path string, params url.Values) ([]Movie, error) {
	data, err := api.getList(ctx, path, params)
	if err != nil {
		return nil, err
	}
	var res MovieResults
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return res.Results, nil
}

func (api *Api) tvList(ctx context.Context, path string, params url.Values) ([]TVShow, error) {
	data, err := api.getList(ctx, path, params)
	if err != nil {
		return nil, err
	}
	var res TVResults
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return res.Results, nil
}

func (api *Api) PopularMovies(ctx context.Context) ([]Movie, error) {
	return api.movieList(ctx, "movie/popular", nil)
}

func (api *Api) TopRatedMovies(ctx context.Context) ([]Movie, error) {
	return api.movieList(ctx, "movie/top_rated", nil)
}

func (api *Api) UpcomingMovies(ctx context.Context) ([]Movie, error) {
	return api.movieList(ctx, "movie/upcoming", nil)
}

func (api *Api) NowPlayingMovies(ctx context.Context) ([]Movie, error) {
	return api.movieList(ctx, "movie/now_playing", nil)
}

func (api *Api) TrendingMovies(ctx context.Context) ([]Movie, error) {
	return api.movieList(ctx, "trending/movie/week", nil)
}

func (api *Api) PopularTVShows(ctx context.Context) ([]TVShow, error) {
	return api.tvList(ctx, "tv/popular", nil)
}

func (api *Api) TopRatedTVShows(ctx context.Context) ([]TVShow, error) {
	return api.tvList(ctx, "tv/top_rated", nil)
}

func (api *Api) OnTheAirTVShows(ctx context.Context) ([]TVShow, error) {
	return api.tvList(ctx, "tv/on_the_air", nil)
}

func (api *Api) AiringTodayTVShows(ctx context.Context) ([]TVShow, error) {
	return api.tvList(ctx, "tv/airing_today", nil)
}

func (api *Api) TrendingTVShows(ctx context.Context) ([]TVShow, error) {
	return api.tvList(ctx, "trending/tv/week", nil)
}

func (api *Api) PopularAnime(ctx context.Context) ([]TVShow, error) {
	params := url.Values{}
	params.Set("with_keywords", animeKeywordID)
	return api.tvList(ctx, "discover/tv", params)
}

// TopRatedAnime requests a vote_average sort, which the policy defaults
// override upstream. Kept as a distinct fetcher anyway since both feeds
// exist on the home surface.
func (api *Api) TopRatedAnime(ctx context.Context) ([]TVShow, error) {
	params := url.Values{}
	params.Set("with_keywords", animeKeywordID)
	params.Set("sort_by", "vote_average.desc")
	return api.tvList(ctx, "discover/tv", params)
}

func (api *Api) DiscoverMovies(ctx context.Context, genreID string) ([]Movie, error) {
	params := url.Values{}
	if genreID != "" {
		params.Set("with_genres", genreID)
	}
	return api.movieList(ctx, "discover/movie", params)
}

func (api *Api) DiscoverTVShows(ctx context.Context, genreID string) ([]TVShow, error) {
	params := url.Values{}
	if genreID != "" {
		params.Set("with_genres", genreID)
	}
	return api.tvList(ctx, "discover/tv", params)
}

func (api *Api) SearchMovies(ctx context.Context, term string) ([]Movie, error) {
	params := url.Values{}
	params.Set("query", term)
	return api.movieList(ctx, "search/movie", params)
}

func (api *Api) SearchTVShows(ctx context.Context, term string) ([]TVShow, error) {
	params := url.Values{}
	params.Set("query", term)
	return api.tvList(ctx, "search/tv", params)
}

func (api *Api) MovieGenres(ctx context.Context) ([]Genre, error) {
	return api.genres(ctx, "genre/movie/list")
}

func (api *Api) TVGenres(ctx context.Context) ([]Genre, error) {
	return api.genres(ctx, "genre/tv/list")
}

func (api *Api) genres(ctx context.Context, path string) ([]Genre, error) {
	data, err := api.getDetail(ctx, path)
	if err != nil {
		return nil, err
	}
	var res Genres
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return res.Genres, nil
}

// ContentDetails returns the raw upstream detail document so the API
// surface can relay it verbatim.
func (api *Api) ContentDetails(ctx context.Context, t ContentType, id int) ([]byte, error) {
	return api.getDetail(ctx, fmt.Sprintf("%s/%d", t.Endpoint(), id))
}

func (api *Api) ContentCredits(ctx context.Context, t ContentType, id int) ([]byte, error) {
	return api.getDetail(ctx, fmt.Sprintf("%s/%d/credits", t.Endpoint(), id))
}

func (api *Api) ContentVideos(ctx context.Context, t ContentType, id int) ([]byte, error) {
	return api.getDetail(ctx, fmt.Sprintf("%s/%d/videos", t.Endpoint(), id))
}

func cacheKey(path string, params url.Values) string {
	if len(params) == 0 {
		return "tmdb:" + path
	}
	return "tmdb:" + path + "?" + params.Encode()
}
