package crawler

import (
	"fmt"

	"linkcheck/internal/usecase"
)

// controller holds the crawl state of one Run. It is only ever touched by
// the goroutine running Run; workers never see it.
type controller struct {
	visited map[string]struct{}
	// pending counts commands accepted by enqueue and not yet resolved.
	pending int
	// backlog holds accepted commands not yet handed to a worker.
	backlog []usecase.CrawlCommand
	bad     []usecase.BadURL
}

func newController(startURL string) *controller {
	ctl := &controller{visited: make(map[string]struct{})}
	ctl.enqueue(startURL)
	return ctl
}

// enqueue marks url visited and schedules it. It reports false if url was
// seen before.
func (ctl *controller) enqueue(url string) bool {
	if _, ok := ctl.visited[url]; ok {
		return false
	}
	ctl.visited[url] = struct{}{}
	ctl.backlog = append(ctl.backlog, usecase.CrawlCommand{URL: url, ExtractLinks: true})
	ctl.pending++
	return true
}

// next returns the oldest command not handed out yet.
func (ctl *controller) next() (usecase.CrawlCommand, bool) {
	if len(ctl.backlog) == 0 {
		return usecase.CrawlCommand{}, false
	}
	return ctl.backlog[0], true
}

// dispatched drops the command returned by next once a worker took it.
func (ctl *controller) dispatched() {
	ctl.backlog[0] = usecase.CrawlCommand{}
	ctl.backlog = ctl.backlog[1:]
	if len(ctl.backlog) == 0 {
		ctl.backlog = nil
	}
}

// resolve accounts for one result and returns the number of newly
// enqueued links.
func (ctl *controller) resolve(res usecase.CrawlResult) int {
	if _, ok := ctl.visited[res.URL]; !ok {
		panic(fmt.Sprintf("crawler: result for %q that was never enqueued", res.URL))
	}
	if ctl.pending <= 0 {
		panic(fmt.Sprintf("crawler: result for %q with no pending command", res.URL))
	}
	ctl.pending--

	if res.Failed() {
		ctl.bad = append(ctl.bad, usecase.BadURL{URL: res.URL, Err: res.Err})
		return 0
	}
	var added int
	for _, link := range res.Links {
		if ctl.enqueue(link) {
			added++
		}
	}
	return added
}

func (ctl *controller) done() bool {
	return ctl.pending == 0
}
