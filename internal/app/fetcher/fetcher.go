package fetcher

import (
	"context"
	"time"

	"linkcheck/internal/app/metrics"
	"linkcheck/internal/usecase"

	"go.uber.org/zap"
)

// Fetcher adapts a usecase.Requester to the usecase.Fetcher contract the
// crawler consumes.
type Fetcher struct {
	r       usecase.Requester
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewFetcher(r usecase.Requester, logger *zap.Logger, m *metrics.Metrics) *Fetcher {
	return &Fetcher{r: r, logger: logger, metrics: m}
}

// Fetch requests url. With extractLinks the absolute links of the page are
// returned; hrefs that do not resolve are dropped and only counted.
func (f *Fetcher) Fetch(ctx context.Context, url string, extractLinks bool) ([]string, error) {
	start := time.Now()
	defer func() { f.metrics.ObserveFetch(time.Since(start)) }()

	if !extractLinks {
		return nil, f.r.Check(ctx, url)
	}

	page, err := f.r.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	links, skipped := page.GetLinks(ctx)
	if err := ctx.Err(); err != nil {
		// The page was read but its links were not; reporting it as checked
		// would silently drop them.
		f.logger.Debug("context done before links were extracted", zap.String("url", url))
		return nil, &usecase.TransportError{URL: url, Err: err}
	}
	if skipped > 0 {
		f.metrics.AddSkipped(skipped)
		f.logger.Debug("skipped unresolvable hrefs", zap.String("url", url), zap.Int("count", skipped))
	}
	f.logger.Debug("page fetched",
		zap.String("url", url),
		zap.String("title", page.GetTitle(ctx)),
		zap.Int("links", len(links)))
	return links, nil
}
