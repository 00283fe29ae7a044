package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"linkcheck/internal/usecase"

	"go.uber.org/zap"
)

// StatusBadLink is reported for URLs that never produced an HTTP status.
const StatusBadLink = 700

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Broken struct {
	Link  string `json:"link"`
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`
	Code  int    `json:"code"`
}

type Result struct {
	StartURL    string   `json:"start_url"`
	Checked     int      `json:"checked"`
	BrokenLinks []Broken `json:"broken_links"`
}

func NewResult(report usecase.Report) Result {
	res := Result{
		StartURL:    report.StartURL,
		Checked:     report.Checked,
		BrokenLinks: make([]Broken, 0, len(report.BadURLs)),
	}
	for _, bad := range report.BadURLs {
		b := Broken{
			Link: bad.URL,
			Kind: usecase.Kind(bad.Err),
			Code: StatusBadLink,
		}
		var berr *usecase.BadResponseError
		if errors.As(bad.Err, &berr) {
			b.Code = berr.StatusCode
		}
		if bad.Err != nil {
			b.Error = bad.Err.Error()
		}
		res.BrokenLinks = append(res.BrokenLinks, b)
	}
	return res
}

// ProcessReport logs the crawl summary and writes the report to w in the
// given format.
func ProcessReport(w io.Writer, report usecase.Report, format string, logger *zap.Logger) error {
	res := NewResult(report)
	for _, b := range res.BrokenLinks {
		logMsg := fmt.Sprintf("crawler result return err: [url: %s] code: %d", b.Link, b.Code)
		logger.Debug(logMsg, zap.String("kind", b.Kind))
	}
	logger.Info("crawl report",
		zap.String("url", res.StartURL),
		zap.Int("checked", res.Checked),
		zap.Int("broken", len(res.BrokenLinks)))

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatText, "":
		return writeText(w, res)
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeText(w io.Writer, res Result) error {
	for _, b := range res.BrokenLinks {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", b.Code, b.Link, b.Error); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d pages checked, %d broken\n", res.Checked, len(res.BrokenLinks))
	return err
}
