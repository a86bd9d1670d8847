package tmdb

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/lazymap"
)

const (
	listExpireFlag   = "tmdb-list-expire"
	detailExpireFlag = "tmdb-detail-expire"
)

func RegisterCacheFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   listExpireFlag,
			Usage:  "freshness window for list and search responses",
			Value:  24 * time.Hour,
			EnvVar: "TMDB_LIST_EXPIRE",
		},
		cli.DurationFlag{
			Name:   detailExpireFlag,
			Usage:  "freshness window for per-id responses",
			Value:  time.Hour,
			EnvVar: "TMDB_DETAIL_EXPIRE",
		},
	)
}

// Cache keeps upstream responses for their freshness window: a redis
// layer shared across processes and a LazyMap in front of it so
// concurrent identical requests coalesce into one upstream call.
// Cache failures degrade to a direct fetch, never fail the request.
type Cache struct {
	redis        redis.UniversalClient
	listExpire   time.Duration
	detailExpire time.Duration
	lists        *lazymap.LazyMap[[]byte]
	details      *lazymap.LazyMap[[]byte]
}

func NewCache(c *cli.Context, rcl redis.UniversalClient) *Cache {
	listExpire := c.Duration(listExpireFlag)
	detailExpire := c.Duration(detailExpireFlag)
	return &Cache{
		redis:        rcl,
		listExpire:   listExpire,
		detailExpire: detailExpire,
		lists: lazymap.New[[]byte](&lazymap.Config{
			Expire:      listExpire,
			ErrorExpire: 10 * time.Second,
		}),
		details: lazymap.New[[]byte](&lazymap.Config{
			Expire:      detailExpire,
			ErrorExpire: 10 * time.Second,
		}),
	}
}

func (s *Cache) GetList(ctx context.Context, key string, fetch func() ([]byte, error)) ([]byte, error) {
	return s.lists.Get(key, func() ([]byte, error) {
		return s.get(ctx, key, s.listExpire, fetch)
	})
}

func (s *Cache) GetDetail(ctx context.Context, key string, fetch func() ([]byte, error)) ([]byte, error) {
	return s.details.Get(key, func() ([]byte, error) {
		return s.get(ctx, key, s.detailExpire, fetch)
	})
}

func (s *Cache) get(ctx context.Context, key string, expire time.Duration, fetch func() ([]byte, error)) ([]byte, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			return data, nil
		}
	}
	data, err := fetch()
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, key, data, expire).Err(); err != nil {
			log.WithError(err).Warn("failed to store upstream response in cache")
		}
	}
	return data, nil
}
