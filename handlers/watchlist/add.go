package watchlist

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/flixplore-io/web-api/models"
	"github.com/flixplore-io/web-api/services/auth"
	"github.com/flixplore-io/web-api/services/tmdb"
)

type AddArgs struct {
	ContentID   *int64  `json:"contentId" binding:"required"`
	ContentType string  `json:"contentType" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	PosterPath  string  `json:"posterPath"`
	ReleaseDate string  `json:"releaseDate"`
	VoteAverage float64 `json:"voteAverage"`
}

func (s *Handler) add(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	var args AddArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields"})
		return
	}
	if _, err := tmdb.ParseContentType(args.ContentType); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields"})
		return
	}
	entry := &models.WatchlistEntry{
		UserID:      u.ID,
		ContentID:   *args.ContentID,
		ContentType: args.ContentType,
		Title:       args.Title,
		PosterPath:  args.PosterPath,
		ReleaseDate: args.ReleaseDate,
		VoteAverage: args.VoteAverage,
	}
	created, err := s.store.Add(c.Request.Context(), entry)
	if err == models.ErrDuplicateEntry {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "item already in watchlist"})
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to add watchlist entry")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to add watchlist entry"})
		return
	}
	c.JSON(http.StatusOK, created)
}
