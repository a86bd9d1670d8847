package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	wca "github.com/flixplore-io/web-api/handlers/catalog"
	wc "github.com/flixplore-io/web-api/handlers/content"
	wp "github.com/flixplore-io/web-api/handlers/proxy"
	ww "github.com/flixplore-io/web-api/handlers/watchlist"
	"github.com/flixplore-io/web-api/services/auth"
	"github.com/flixplore-io/web-api/services/catalog"
	"github.com/flixplore-io/web-api/services/common"
	"github.com/flixplore-io/web-api/services/tmdb"
	wls "github.com/flixplore-io/web-api/services/watchlist"
	w "github.com/flixplore-io/web-api/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = cs.RegisterRedisClientFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = common.RegisterFlags(c.Flags)
	c.Flags = auth.RegisterFlags(c.Flags)
	c.Flags = tmdb.RegisterFlags(c.Flags)
	c.Flags = tmdb.RegisterCacheFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := pgMigrate(c)
	if err != nil {
		return err
	}

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false

	// Setting CORS
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{c.String(common.DomainFlag)}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting Redis
	redis := cs.NewRedisClient(c)
	defer redis.Close()

	// Setting Auth
	a := auth.New(c, pg)
	if a != nil {
		err = a.Init()
		if err != nil {
			return err
		}
		a.RegisterHandler(r)
	}

	// Setting TMDB Api
	api := tmdb.New(c, cl)
	if api != nil {
		api = api.WithCache(tmdb.NewCache(c, redis.Get()))
	}

	// Setting Catalog
	cat := catalog.New(api)

	// Setting ContentHandler
	wc.RegisterHandler(r, api)

	// Setting CatalogHandler
	wca.RegisterHandler(r, cat)

	// Setting WatchlistHandler
	ww.RegisterHandler(r, wls.NewStoreAccessor(pg))

	// Setting ProxyHandler
	wp.RegisterHandler(c, r, cl)

	// Setting Serve
	err = cs.NewServe(servers...).Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
