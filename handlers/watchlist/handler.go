package watchlist

import (
	"github.com/gin-gonic/gin"

	"github.com/flixplore-io/web-api/services/auth"
	"github.com/flixplore-io/web-api/services/watchlist"
)

type Handler struct {
	store watchlist.Accessor
}

func RegisterHandler(r *gin.Engine, store watchlist.Accessor) {
	h := &Handler{
		store: store,
	}
	wl := r.Group("/watchlist")
	wl.Use(auth.HasAuth)
	wl.GET("", h.index)
	wl.POST("", h.add)
	wl.DELETE("", h.remove)
}
