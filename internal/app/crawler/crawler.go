package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"linkcheck/internal/app/metrics"
	"linkcheck/internal/usecase"

	"go.uber.org/zap"
)

const DefaultWorkers = 6

var (
	ErrInvalidWorkers  = errors.New("worker count must be at least 1")
	ErrInvalidStartURL = errors.New("invalid start url")
)

// Crawler checks every page reachable from a start URL with a fixed pool of
// workers. Deduplication and termination are decided by the goroutine
// calling Run.
type Crawler struct {
	f       usecase.Fetcher
	logger  *zap.Logger
	metrics *metrics.Metrics
	workers int
}

var _ usecase.Crawler = (*Crawler)(nil)

func NewCrawler(f usecase.Fetcher, logger *zap.Logger, workers int, m *metrics.Metrics) *Crawler {
	return &Crawler{
		f:       f,
		logger:  logger,
		metrics: m,
		workers: workers,
	}
}

// Run crawls from startURL until no command is pending and returns the bad
// URLs in the order their failures arrived. All workers have exited when Run
// returns. Page errors never abort the crawl; an error is only returned for
// an invalid start URL or worker count.
func (c *Crawler) Run(ctx context.Context, startURL string) (usecase.Report, error) {
	if c.workers < 1 {
		return usecase.Report{}, fmt.Errorf("%w: %d", ErrInvalidWorkers, c.workers)
	}
	start, err := NormalizeURL(startURL)
	if err != nil {
		return usecase.Report{}, err
	}

	queue := make(chan usecase.CrawlCommand, c.workers)
	results := make(chan usecase.CrawlResult, c.workers)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.worker(ctx, id, queue, results)
		}(i)
	}

	c.logger.Info("crawl started", zap.String("url", start), zap.Int("workers", c.workers))
	ctl := newController(start)
	c.metrics.SetPending(ctl.pending)
	for !ctl.done() {
		// A nil channel disables the send case while the backlog is empty.
		var out chan<- usecase.CrawlCommand
		cmd, ok := ctl.next()
		if ok {
			out = queue
		}
		select {
		case out <- cmd:
			ctl.dispatched()
		case res := <-results:
			added := ctl.resolve(res)
			c.record(res, added)
		}
		c.metrics.SetPending(ctl.pending)
	}
	close(queue)
	wg.Wait()

	report := usecase.Report{
		StartURL: start,
		Checked:  len(ctl.visited),
		BadURLs:  ctl.bad,
	}
	c.logger.Info("crawl finished",
		zap.String("url", start),
		zap.Int("checked", report.Checked),
		zap.Int("bad", len(report.BadURLs)))
	return report, nil
}

func (c *Crawler) record(res usecase.CrawlResult, added int) {
	if res.Failed() {
		kind := usecase.Kind(res.Err)
		c.metrics.IncFailures(kind)
		c.logger.Warn("bad url", zap.String("url", res.URL), zap.String("kind", kind), zap.Error(res.Err))
		return
	}
	logMsg := fmt.Sprintf("url %s checked, %d links, %d new", res.URL, len(res.Links), added)
	c.logger.Debug(logMsg)
}

func (c *Crawler) worker(ctx context.Context, id int, queue <-chan usecase.CrawlCommand, results chan<- usecase.CrawlResult) {
	c.logger.Debug("worker started", zap.Int("worker", id))
	for cmd := range queue {
		results <- c.execute(ctx, cmd)
	}
	c.logger.Debug("worker stopped", zap.Int("worker", id))
}

// execute runs one command. It never panics: a panicking fetcher is turned
// into a failed result so the pool keeps its size.
func (c *Crawler) execute(ctx context.Context, cmd usecase.CrawlCommand) (res usecase.CrawlResult) {
	res.URL = cmd.URL
	if !cmd.ExtractLinks {
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res.Links = nil
			res.Err = fmt.Errorf("%w: %v", usecase.ErrFetcherPanic, r)
		}
		if res.Failed() {
			c.metrics.IncCommands("failure")
		} else {
			c.metrics.IncCommands("success")
		}
	}()

	res.Links, res.Err = c.f.Fetch(ctx, cmd.URL, true)
	if res.Err != nil {
		res.Links = nil
	}
	return res
}

// NormalizeURL validates an absolute http(s) URL and strips its fragment,
// the same form extracted links have.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidStartURL, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w %q: need an absolute http(s) url", ErrInvalidStartURL, raw)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
