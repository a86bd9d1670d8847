package catalog

import (
	"github.com/flixplore-io/web-api/services/tmdb"
)

// Animation genre tag; TV results carrying it are reclassified as anime.
const animationGenreID = 16

// Item is the tagged record every upstream shape normalizes into at the
// ingestion boundary. Downstream code never infers the category from
// field presence.
type Item struct {
	Kind         tmdb.ContentType `json:"kind"`
	ID           int              `json:"id"`
	Title        string           `json:"title"`
	Overview     string           `json:"overview"`
	BackdropPath string           `json:"backdropPath,omitempty"`
	PosterPath   string           `json:"posterPath,omitempty"`
	ReleaseDate  string           `json:"releaseDate,omitempty"`
	GenreIDs     []int            `json:"genreIds"`
	Popularity   float64          `json:"popularity"`
	VoteAverage  float64          `json:"voteAverage"`
	VoteCount    int              `json:"voteCount"`
}

func itemFromMovie(m tmdb.Movie) Item {
	return Item{
		Kind:         tmdb.ContentTypeMovie,
		ID:           m.ID,
		Title:        m.Title,
		Overview:     m.Overview,
		BackdropPath: m.BackdropPath,
		PosterPath:   m.PosterPath,
		ReleaseDate:  m.ReleaseDate,
		GenreIDs:     m.GenreIDs,
		Popularity:   m.Popularity,
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
	}
}

func itemFromTVShow(t tmdb.TVShow, kind tmdb.ContentType) Item {
	return Item{
		Kind:         kind,
		ID:           t.ID,
		Title:        t.Name,
		Overview:     t.Overview,
		BackdropPath: t.BackdropPath,
		PosterPath:   t.PosterPath,
		ReleaseDate:  t.FirstAirDate,
		GenreIDs:     t.GenreIDs,
		Popularity:   t.Popularity,
		VoteAverage:  t.VoteAverage,
		VoteCount:    t.VoteCount,
	}
}

func itemsFromMovies(ms []tmdb.Movie) []Item {
	items := make([]Item, 0, len(ms))
	for _, m := range ms {
		items = append(items, itemFromMovie(m))
	}
	return items
}

func itemsFromTVShows(ts []tmdb.TVShow, kind tmdb.ContentType) []Item {
	items := make([]Item, 0, len(ts))
	for _, t := range ts {
		items = append(items, itemFromTVShow(t, kind))
	}
	return items
}

func hasGenre(genreIDs []int, id int) bool {
	for _, g := range genreIDs {
		if g == id {
			return true
		}
	}
	return false
}

// splitAnime partitions TV results into the anime bucket and the rest.
// Every show lands in exactly one bucket.
func splitAnime(shows []tmdb.TVShow) (tv []Item, anime []Item) {
	tv = make([]Item, 0, len(shows))
	anime = make([]Item, 0)
	for _, show := range shows {
		if hasGenre(show.GenreIDs, animationGenreID) {
			anime = append(anime, itemFromTVShow(show, tmdb.ContentTypeAnime))
		} else {
			tv = append(tv, itemFromTVShow(show, tmdb.ContentTypeTV))
		}
	}
	return
}
