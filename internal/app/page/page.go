package page

import (
	"context"
	"io"
	"net/url"
	"strings"

	"linkcheck/internal/usecase"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

type page struct {
	doc    *goquery.Document
	base   *url.URL
	logger *zap.Logger
}

// NewPage parses raw as HTML. base is the final URL the document was served
// from; relative hrefs are resolved against it.
func NewPage(raw io.Reader, base *url.URL, logger *zap.Logger) (usecase.Page, error) {
	doc, err := goquery.NewDocumentFromReader(raw)
	if err != nil {
		logger.Error("new page error", zap.Error(err))
		return nil, err
	}
	p := &page{doc: doc, base: base, logger: logger}
	p.applyBaseElement()
	logger.Debug("new page initialize", zap.Stringer("base", p.base))
	return p, nil
}

// applyBaseElement honours <base href>, itself resolved against the final URL.
func (p *page) applyBaseElement() {
	href, ok := p.doc.Find("base[href]").First().Attr("href")
	if !ok || p.base == nil {
		return
	}
	ref, err := p.base.Parse(strings.TrimSpace(href))
	if err != nil {
		p.logger.Debug("ignore invalid base element", zap.String("href", href), zap.Error(err))
		return
	}
	p.base = ref
}

func (p *page) GetTitle(ctx context.Context) string {
	select {
	case <-ctx.Done():
		p.logger.Debug("context done in get title")
		return ""
	default:
		return strings.TrimSpace(p.doc.Find("title").First().Text())
	}
}

func (p *page) GetLinks(ctx context.Context) ([]string, int) {
	select {
	case <-ctx.Done():
		p.logger.Debug("context done in get links")
		return nil, 0
	default:
	}

	var links []string
	var skipped int
	p.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := p.resolve(href)
		if !ok {
			skipped++
			return
		}
		links = append(links, link)
	})
	return links, skipped
}

// resolve turns href into an absolute http(s) URL without fragment.
// Anything else is dropped; a bad href never stops the extraction.
func (p *page) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		p.logger.Debug("skip empty href")
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		p.logger.Debug("skip unparsable href", zap.String("href", href), zap.Error(err))
		return "", false
	}
	if p.base != nil {
		ref = p.base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		p.logger.Debug("skip non http href", zap.String("href", href))
		return "", false
	}
	if ref.Host == "" {
		p.logger.Debug("skip href without host", zap.String("href", href))
		return "", false
	}
	ref.Fragment = ""
	ref.RawFragment = ""
	return ref.String(), true
}
