package watchlist

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/flixplore-io/web-api/models"
	"github.com/flixplore-io/web-api/services/auth"
)

func (s *Handler) index(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	entries, err := s.store.List(c.Request.Context(), u.ID)
	if err != nil {
		log.WithError(err).Error("failed to list watchlist")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to list watchlist"})
		return
	}
	if entries == nil {
		entries = []*models.WatchlistEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
