package content

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/flixplore-io/web-api/services/tmdb"
)

type Handler struct {
	api *tmdb.Api
}

func RegisterHandler(r *gin.Engine, api *tmdb.Api) {
	h := &Handler{
		api: api,
	}
	r.GET("/content/:type/:id", h.details)
	r.GET("/content/:type/:id/credits", h.credits)
	r.GET("/content/:type/:id/videos", h.videos)
}

func (s *Handler) details(c *gin.Context) {
	s.relay(c, func(t tmdb.ContentType, id int) ([]byte, error) {
		return s.api.ContentDetails(c.Request.Context(), t, id)
	})
}

func (s *Handler) credits(c *gin.Context) {
	s.relay(c, func(t tmdb.ContentType, id int) ([]byte, error) {
		return s.api.ContentCredits(c.Request.Context(), t, id)
	})
}

func (s *Handler) videos(c *gin.Context) {
	s.relay(c, func(t tmdb.ContentType, id int) ([]byte, error) {
		return s.api.ContentVideos(c.Request.Context(), t, id)
	})
}

// relay fetches the upstream payload and passes it through verbatim.
func (s *Handler) relay(c *gin.Context, fetch func(t tmdb.ContentType, id int) ([]byte, error)) {
	t, err := tmdb.ParseContentType(c.Param("type"))
	if err != nil || t == tmdb.ContentTypeAnime {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown content type"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}
	if s.api == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "upstream credential is not configured"})
		return
	}
	data, err := fetch(t, id)
	if err != nil {
		log.WithError(err).Error("failed to fetch content")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch content"})
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/json", data)
}
