package usecase

import "context"

// CrawlCommand is one unit of work for the worker pool.
type CrawlCommand struct {
	URL          string
	ExtractLinks bool
}

// CrawlResult is the outcome of one CrawlCommand. A non-nil Err marks a
// failure, otherwise Links holds the outbound links of URL.
type CrawlResult struct {
	URL   string
	Links []string
	Err   error
}

func (r CrawlResult) Failed() bool {
	return r.Err != nil
}

// BadURL is an entry of the crawl report.
type BadURL struct {
	URL string
	Err error
}

// Report is returned once every reachable URL has been resolved.
type Report struct {
	StartURL string
	Checked  int
	BadURLs  []BadURL
}

type Page interface {
	GetTitle(context.Context) string
	// GetLinks returns the absolute http(s) links of the page and the number
	// of hrefs that could not be resolved.
	GetLinks(context.Context) ([]string, int)
}

type Requester interface {
	Get(ctx context.Context, url string) (Page, error)
	Check(ctx context.Context, url string) error
}

// Fetcher is the page fetching collaborator consumed by the crawler.
type Fetcher interface {
	Fetch(ctx context.Context, url string, extractLinks bool) ([]string, error)
}

type Crawler interface {
	Run(ctx context.Context, startURL string) (Report, error)
}
