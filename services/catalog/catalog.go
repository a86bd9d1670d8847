package catalog

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/flixplore-io/web-api/services/tmdb"
)

// Service aggregates upstream catalog data into view payloads. All
// fan-outs are join-all: every call in a batch must succeed before the
// batch does.
type Service struct {
	api *tmdb.Api
}

func New(api *tmdb.Api) *Service {
	return &Service{
		api: api,
	}
}

// HomeData carries every carousel the home surface renders, fetched in
// one concurrent batch.
type HomeData struct {
	TrendingMovies   []Item `json:"trendingMovies"`
	UpcomingMovies   []Item `json:"upcomingMovies"`
	TopRatedMovies   []Item `json:"topRatedMovies"`
	PopularMovies    []Item `json:"popularMovies"`
	NowPlayingMovies []Item `json:"nowPlayingMovies"`
	TrendingTVShows  []Item `json:"trendingTvShows"`
	PopularTVShows   []Item `json:"popularTvShows"`
	TopRatedTVShows  []Item `json:"topRatedTvShows"`
	OnTheAirTVShows  []Item `json:"onTheAirTvShows"`
	AiringTodayShows []Item `json:"airingTodayTvShows"`
	PopularAnime     []Item `json:"popularAnime"`
	TopRatedAnime    []Item `json:"topRatedAnime"`
}

func (s *Service) Home(ctx context.Context) (*HomeData, error) {
	if s.api == nil {
		return nil, errors.New("upstream client is not configured")
	}
	data := &HomeData{}
	g, ctx := errgroup.WithContext(ctx)

	movieFeeds := []struct {
		fetch func(context.Context) ([]tmdb.Movie, error)
		dst   *[]Item
	}{
		{s.api.TrendingMovies, &data.TrendingMovies},
		{s.api.UpcomingMovies, &data.UpcomingMovies},
		{s.api.TopRatedMovies, &data.TopRatedMovies},
		{s.api.PopularMovies, &data.PopularMovies},
		{s.api.NowPlayingMovies, &data.NowPlayingMovies},
	}
	for _, f := range movieFeeds {
		g.Go(func() error {
			ms, err := f.fetch(ctx)
			if err != nil {
				return err
			}
			*f.dst = itemsFromMovies(ms)
			return nil
		})
	}

	tvFeeds := []struct {
		fetch func(context.Context) ([]tmdb.TVShow, error)
		dst   *[]Item
		kind  tmdb.ContentType
	}{
		{s.api.TrendingTVShows, &data.TrendingTVShows, tmdb.ContentTypeTV},
		{s.api.PopularTVShows, &data.PopularTVShows, tmdb.ContentTypeTV},
		{s.api.TopRatedTVShows, &data.TopRatedTVShows, tmdb.ContentTypeTV},
		{s.api.OnTheAirTVShows, &data.OnTheAirTVShows, tmdb.ContentTypeTV},
		{s.api.AiringTodayTVShows, &data.AiringTodayShows, tmdb.ContentTypeTV},
		{s.api.PopularAnime, &data.PopularAnime, tmdb.ContentTypeAnime},
		{s.api.TopRatedAnime, &data.TopRatedAnime, tmdb.ContentTypeAnime},
	}
	for _, f := range tvFeeds {
		g.Go(func() error {
			ts, err := f.fetch(ctx)
			if err != nil {
				return err
			}
			*f.dst = itemsFromTVShows(ts, f.kind)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

type SearchData struct {
	Movies []Item `json:"movies"`
	TV     []Item `json:"tv"`
	Anime  []Item `json:"anime"`
}

// Search runs movie and tv searches concurrently and reclassifies TV
// results tagged with the Animation genre into the anime bucket.
func (s *Service) Search(ctx context.Context, term string) (*SearchData, error) {
	if s.api == nil {
		return nil, errors.New("upstream client is not configured")
	}
	data := &SearchData{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ms, err := s.api.SearchMovies(ctx, term)
		if err != nil {
			return err
		}
		data.Movies = itemsFromMovies(ms)
		return nil
	})
	g.Go(func() error {
		ts, err := s.api.SearchTVShows(ctx, term)
		if err != nil {
			return err
		}
		data.TV, data.Anime = splitAnime(ts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// Discover lists content for a genre.
func (s *Service) Discover(ctx context.Context, kind tmdb.ContentType, genreID string) ([]Item, error) {
	if s.api == nil {
		return nil, errors.New("upstream client is not configured")
	}
	if kind == tmdb.ContentTypeMovie {
		ms, err := s.api.DiscoverMovies(ctx, genreID)
		if err != nil {
			return nil, err
		}
		return itemsFromMovies(ms), nil
	}
	ts, err := s.api.DiscoverTVShows(ctx, genreID)
	if err != nil {
		return nil, err
	}
	return itemsFromTVShows(ts, kind), nil
}

// Genres returns the upstream genre taxonomy. The caller renders a
// dropdown from it, so a failure degrades to an empty list instead of
// failing the page.
func (s *Service) Genres(ctx context.Context, kind tmdb.ContentType) []tmdb.Genre {
	if s.api == nil {
		return []tmdb.Genre{}
	}
	var (
		genres []tmdb.Genre
		err    error
	)
	if kind == tmdb.ContentTypeMovie {
		genres, err = s.api.MovieGenres(ctx)
	} else {
		genres, err = s.api.TVGenres(ctx)
	}
	if err != nil {
		log.WithError(err).Warn("failed to fetch genres")
		return []tmdb.Genre{}
	}
	return genres
}
