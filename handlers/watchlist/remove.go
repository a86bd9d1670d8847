package watchlist

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/flixplore-io/web-api/services/auth"
)

func (s *Handler) remove(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	contentID, err := strconv.ParseInt(c.Query("contentId"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields"})
		return
	}
	contentType := c.Query("contentType")
	if contentType == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields"})
		return
	}
	if err := s.store.Remove(c.Request.Context(), u.ID, contentID, contentType); err != nil {
		log.WithError(err).Error("failed to remove watchlist entry")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to remove watchlist entry"})
		return
	}
	// removal is idempotent, absent entries still report success
	c.JSON(http.StatusOK, gin.H{"success": true})
}
