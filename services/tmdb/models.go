package tmdb

import (
	"github.com/pkg/errors"
)

// ContentType tags a catalog record with the category it was requested
// under. Anime is a labeling convention over TV data, not a distinct
// upstream resource, so it shares the tv endpoint family.
type ContentType string

const (
	ContentTypeMovie ContentType = "movie"
	ContentTypeTV    ContentType = "tv"
	ContentTypeAnime ContentType = "anime"
)

func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case ContentTypeMovie, ContentTypeTV, ContentTypeAnime:
		return ContentType(s), nil
	}
	return "", errors.Errorf("unknown content type %q", s)
}

func (t ContentType) String() string {
	return string(t)
}

// Endpoint returns the upstream resource family backing this content type.
func (t ContentType) Endpoint() string {
	if t == ContentTypeMovie {
		return "movie"
	}
	return "tv"
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Genres struct {
	Genres []Genre `json:"genres"`
}

type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	BackdropPath     string  `json:"backdrop_path"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	GenreIDs         []int   `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`

	// Detail-only fields, absent from list and search results.
	Runtime             int                 `json:"runtime,omitempty"`
	Budget              int64               `json:"budget,omitempty"`
	Revenue             int64               `json:"revenue,omitempty"`
	Genres              []Genre             `json:"genres,omitempty"`
	ProductionCompanies []ProductionCompany `json:"production_companies,omitempty"`
	Tagline             string              `json:"tagline,omitempty"`
	Status              string              `json:"status,omitempty"`
}

type TVShow struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name"`
	OriginalLanguage string   `json:"original_language"`
	Overview         string   `json:"overview"`
	BackdropPath     string   `json:"backdrop_path"`
	PosterPath       string   `json:"poster_path"`
	FirstAirDate     string   `json:"first_air_date"`
	GenreIDs         []int    `json:"genre_ids"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Adult            bool     `json:"adult"`
	OriginCountry    []string `json:"origin_country"`

	// Detail-only fields.
	Genres              []Genre             `json:"genres,omitempty"`
	ProductionCompanies []ProductionCompany `json:"production_companies,omitempty"`
	Tagline             string              `json:"tagline,omitempty"`
	Status              string              `json:"status,omitempty"`
	NumberOfEpisodes    int                 `json:"number_of_episodes,omitempty"`
	NumberOfSeasons     int                 `json:"number_of_seasons,omitempty"`
	EpisodeRunTime      []int               `json:"episode_run_time,omitempty"`
	LastAirDate         string              `json:"last_air_date,omitempty"`
	InProduction        bool                `json:"in_production,omitempty"`
}

type ProductionCompany struct {
	ID            int    `json:"id"`
	LogoPath      string `json:"logo_path"`
	Name          string `json:"name"`
	OriginCountry string `json:"origin_country"`
}

type MovieResults struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type TVResults struct {
	Page         int      `json:"page"`
	Results      []TVShow `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

type Cast struct {
	ID          int     `json:"id"`
	CastID      int     `json:"cast_id"`
	CreditID    string  `json:"credit_id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	Order       int     `json:"order"`
	ProfilePath string  `json:"profile_path"`
	Popularity  float64 `json:"popularity"`
	Gender      int     `json:"gender"`
}

type Crew struct {
	ID          int    `json:"id"`
	CreditID    string `json:"credit_id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

type Credits struct {
	ID   int    `json:"id"`
	Cast []Cast `json:"cast"`
	Crew []Crew `json:"crew"`
}

type Video struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Size        int    `json:"size"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

type Videos struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// TrailerKey returns the key of the first YouTube trailer in upstream
// order, or an empty string when none is present.
func (v *Videos) TrailerKey() string {
	for _, r := range v.Results {
		if r.Type == "Trailer" && r.Site == "YouTube" {
			return r.Key
		}
	}
	return ""
}
