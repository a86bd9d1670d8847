package catalog

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/flixplore-io/web-api/services/tmdb"
)

// DetailView is the assembled per-id payload: details, credits and the
// selected trailer are jointly required, so any of the three upstream
// calls failing fails the whole view.
type DetailView struct {
	Kind       tmdb.ContentType `json:"kind"`
	ID         int              `json:"id"`
	Movie      *tmdb.Movie      `json:"movie,omitempty"`
	TVShow     *tmdb.TVShow     `json:"tvShow,omitempty"`
	Credits    *tmdb.Credits    `json:"credits"`
	TrailerKey string           `json:"trailerKey,omitempty"`
}

func (s *Service) FetchDetail(ctx context.Context, kind tmdb.ContentType, id int) (*DetailView, error) {
	if s.api == nil {
		return nil, errors.New("upstream client is not configured")
	}
	view := &DetailView{
		Kind: kind,
		ID:   id,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.api.ContentDetails(ctx, kind, id)
		if err != nil {
			return err
		}
		if kind == tmdb.ContentTypeMovie {
			var m tmdb.Movie
			if err := json.Unmarshal(data, &m); err != nil {
				return errors.Wrap(err, "decode details")
			}
			view.Movie = &m
			return nil
		}
		var t tmdb.TVShow
		if err := json.Unmarshal(data, &t); err != nil {
			return errors.Wrap(err, "decode details")
		}
		view.TVShow = &t
		return nil
	})
	g.Go(func() error {
		data, err := s.api.ContentCredits(ctx, kind, id)
		if err != nil {
			return err
		}
		var c tmdb.Credits
		if err := json.Unmarshal(data, &c); err != nil {
			return errors.Wrap(err, "decode credits")
		}
		view.Credits = &c
		return nil
	})
	g.Go(func() error {
		data, err := s.api.ContentVideos(ctx, kind, id)
		if err != nil {
			return err
		}
		var v tmdb.Videos
		if err := json.Unmarshal(data, &v); err != nil {
			return errors.Wrap(err, "decode videos")
		}
		view.TrailerKey = v.TrailerKey()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}
