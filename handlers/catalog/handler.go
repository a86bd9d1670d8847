package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/flixplore-io/web-api/services/catalog"
	"github.com/flixplore-io/web-api/services/tmdb"
)

type Handler struct {
	catalog *catalog.Service
}

func RegisterHandler(r *gin.Engine, s *catalog.Service) {
	h := &Handler{
		catalog: s,
	}
	r.GET("/catalog/home", h.home)
	r.GET("/catalog/search/:term", h.search)
	r.GET("/catalog/genres/:type", h.genres)
	r.GET("/catalog/genre/:type/:id", h.genre)
	r.GET("/catalog/detail/:type/:id", h.detail)
}

func (s *Handler) home(c *gin.Context) {
	data, err := s.catalog.Home(c.Request.Context())
	if err != nil {
		s.fail(c, err, "failed to build home feeds")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, data)
}

func (s *Handler) search(c *gin.Context) {
	data, err := s.catalog.Search(c.Request.Context(), c.Param("term"))
	if err != nil {
		s.fail(c, err, "failed to search")
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Handler) genres(c *gin.Context) {
	t, err := tmdb.ParseContentType(c.Param("type"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown content type"})
		return
	}
	genres := s.catalog.Genres(c.Request.Context(), t)
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, genres)
}

func (s *Handler) genre(c *gin.Context) {
	t, err := tmdb.ParseContentType(c.Param("type"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown content type"})
		return
	}
	if _, err = strconv.Atoi(c.Param("id")); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid genre id"})
		return
	}
	items, err := s.catalog.Discover(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		s.fail(c, err, "failed to discover")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, items)
}

func (s *Handler) detail(c *gin.Context) {
	t, err := tmdb.ParseContentType(c.Param("type"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown content type"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}
	view, err := s.catalog.FetchDetail(c.Request.Context(), t, id)
	if err != nil {
		s.fail(c, err, "failed to fetch detail")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, view)
}

func (s *Handler) fail(c *gin.Context, err error, msg string) {
	var ue *tmdb.UpstreamError
	if errors.As(err, &ue) {
		c.AbortWithStatusJSON(ue.Status, gin.H{"error": "upstream request failed"})
		return
	}
	log.WithError(err).Error(msg)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
}
