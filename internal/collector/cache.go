package collector

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"MarketInsights/internal/model"
)

// SeriesCache stores fetched series. Get returns nil, nil on a miss.
type SeriesCache interface {
	Get(ctx context.Context, key string) (*model.PriceSeries, error)
	Set(ctx context.Context, key string, s model.PriceSeries) error
}

// CachingFetcher serves series from Cache and falls through to Fetcher on a miss.
// Cache failures are logged and never fail the fetch.
type CachingFetcher struct {
	Fetcher Fetcher
	Cache   SeriesCache
}

// NewCachingFetcher wraps f with cache c.
func NewCachingFetcher(f Fetcher, c SeriesCache) *CachingFetcher {
	return &CachingFetcher{Fetcher: f, Cache: c}
}

func (c *CachingFetcher) Name() string { return c.Fetcher.Name() }

func cacheKey(source, symbol string, start, end time.Time) string {
	return fmt.Sprintf("series:%s:%s:%s:%s", source, symbol,
		model.Day(start).Format(model.DateFormat), model.Day(end).Format(model.DateFormat))
}

func (c *CachingFetcher) FetchAdjClose(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	key := cacheKey(c.Fetcher.Name(), symbol, start, end)
	if s, err := c.Cache.Get(ctx, key); err != nil {
		log.Warnf("series cache get %s: %v", key, err)
	} else if s != nil {
		log.Debugf("series cache hit %s", key)
		return *s, nil
	}

	s, err := c.Fetcher.FetchAdjClose(ctx, symbol, start, end)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if err := c.Cache.Set(ctx, key, s); err != nil {
		log.Warnf("series cache set %s: %v", key, err)
	}
	return s, nil
}
