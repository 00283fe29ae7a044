package requester

import (
	"bufio"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkcheck/internal/app/page"
	"linkcheck/internal/usecase"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 5 << 20

type requester struct {
	client       *http.Client
	logger       *zap.Logger
	userAgent    string
	maxBodyBytes int64
}

type Option func(*requester)

func WithUserAgent(ua string) Option {
	return func(r *requester) { r.userAgent = ua }
}

// WithMaxBodyBytes caps the decoded body size; larger pages fail as
// transport errors.
func WithMaxBodyBytes(n int64) Option {
	return func(r *requester) {
		if n > 0 {
			r.maxBodyBytes = n
		}
	}
}

// NewRequester builds a requester. rt may be nil to use http.DefaultTransport.
func NewRequester(timeout time.Duration, logger *zap.Logger, rt http.RoundTripper, opts ...Option) requester {
	logger.Debug("new requester initialize")
	r := requester{
		client: &http.Client{
			Timeout:   timeout,
			Transport: rt,
		},
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Get fetches url and parses the body as a page. Relative links of the page
// resolve against the URL after redirects.
func (r requester) Get(ctx context.Context, url string) (usecase.Page, error) {
	resp, err := r.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := r.readBody(resp)
	if err != nil {
		return nil, &usecase.TransportError{URL: url, Err: err}
	}
	p, err := page.NewPage(body, finalURL(resp, url), r.logger)
	if err != nil {
		r.logger.Error("get new page error", zap.Error(err))
		return nil, &usecase.TransportError{URL: url, Err: fmt.Errorf("parse page: %w", err)}
	}
	return p, nil
}

// Check fetches url and only verifies the status.
func (r requester) Check(ctx context.Context, url string) error {
	resp, err := r.do(ctx, url)
	if err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, r.maxBodyBytes)); err != nil {
		r.logger.Debug("drain body error", zap.String("url", url), zap.Error(err))
	}
	return resp.Body.Close()
}

func (r requester) do(ctx context.Context, url string) (*http.Response, error) {
	select {
	case <-ctx.Done():
		r.logger.Debug("context done in get", zap.String("url", url))
		return nil, &usecase.TransportError{URL: url, Err: ctx.Err()}
	default:
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logMsg := fmt.Sprintf("error by get new request, url: %s", url)
		r.logger.Error(logMsg)
		return nil, &usecase.TransportError{URL: url, Err: err}
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("http.client error", zap.String("url", url), zap.Error(err))
		return nil, &usecase.TransportError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10)); err != nil {
			r.logger.Debug("drain body error", zap.String("url", url), zap.Error(err))
		}
		resp.Body.Close()
		return nil, &usecase.BadResponseError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (r requester) readBody(resp *http.Response) (io.Reader, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl, err := newDeflateReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate decode: %w", err)
		}
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, r.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > r.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", r.maxBodyBytes)
	}
	return bytes.NewReader(body), nil
}

// newDeflateReader reads "deflate" content coding, which is a zlib stream.
// Some servers send raw DEFLATE instead; those are detected by the missing
// zlib header.
func newDeflateReader(body io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(body)
	hdr, err := br.Peek(2)
	if err == nil && isZlibHeader(hdr[0], hdr[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// isZlibHeader checks CM=8 and the FCHECK bits of RFC 1950.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

func finalURL(resp *http.Response, requested string) *url.URL {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL
	}
	u, err := url.Parse(requested)
	if err != nil {
		return nil
	}
	return u
}
