package proxy

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/flixplore-io/web-api/services/tmdb"
)

// Handler forwards /tmdb-proxy requests to the upstream metadata API,
// attaching the server-side credential so it never reaches clients.
// The upstream host is fixed at startup, only the path and query of the
// incoming request are forwarded.
type Handler struct {
	cl          *http.Client
	rootURL     string
	accessToken string
	apiKey      string
}

func RegisterHandler(c *cli.Context, r *gin.Engine, cl *http.Client) {
	h := &Handler{
		cl:          cl,
		rootURL:     tmdb.RootURL(c),
		accessToken: c.String(tmdb.AccessTokenFlag),
		apiKey:      c.String(tmdb.APIKeyFlag),
	}
	r.GET("/tmdb-proxy/*path", h.forward)
}

func (s *Handler) forward(c *gin.Context) {
	if s.accessToken == "" && s.apiKey == "" {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "upstream credential is not configured"})
		return
	}
	path := strings.TrimPrefix(c.Param("path"), "/")
	u := s.rootURL + "/3/" + path
	query := c.Request.URL.Query()
	query.Del("api_key")
	if s.accessToken == "" {
		query.Set("api_key", s.apiKey)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, u, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to build upstream request"})
		return
	}
	req.Header.Set("Accept", "application/json")
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}
	res, err := s.cl.Do(req)
	if err != nil {
		log.WithError(err).Error("failed to reach upstream")
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "failed to reach upstream"})
		return
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(res.Body)
	data, err := io.ReadAll(res.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "failed to read upstream response"})
		return
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.AbortWithStatusJSON(res.StatusCode, gin.H{"error": "upstream request failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
