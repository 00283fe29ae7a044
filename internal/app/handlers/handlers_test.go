package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"linkcheck/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testReport() usecase.Report {
	return usecase.Report{
		StartURL: "http://a.test/",
		Checked:  4,
		BadURLs: []usecase.BadURL{
			{URL: "http://a.test/missing", Err: &usecase.BadResponseError{URL: "http://a.test/missing", StatusCode: http.StatusNotFound}},
			{URL: "http://dead.test/", Err: &usecase.TransportError{URL: "http://dead.test/", Err: context.DeadlineExceeded}},
		},
	}
}

func TestProcessReportText(t *testing.T) {
	var buf bytes.Buffer
	err := ProcessReport(&buf, testReport(), FormatText, zap.NewExample())
	require.NoError(t, err)

	exp := "404\thttp://a.test/missing\tbad response for http://a.test/missing: 404 Not Found\n" +
		"700\thttp://dead.test/\ttransport error for http://dead.test/: context deadline exceeded\n" +
		"4 pages checked, 2 broken\n"
	assert.Equal(t, exp, buf.String())
}

func TestProcessReportJSON(t *testing.T) {
	var buf bytes.Buffer
	err := ProcessReport(&buf, testReport(), FormatJSON, zap.NewExample())
	require.NoError(t, err)

	var got Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "http://a.test/", got.StartURL)
	assert.Equal(t, 4, got.Checked)
	require.Len(t, got.BrokenLinks, 2)
	assert.Equal(t, Broken{
		Link:  "http://a.test/missing",
		Kind:  usecase.KindBadResponse,
		Error: "bad response for http://a.test/missing: 404 Not Found",
		Code:  404,
	}, got.BrokenLinks[0])
	assert.Equal(t, usecase.KindTransport, got.BrokenLinks[1].Kind)
	assert.Equal(t, StatusBadLink, got.BrokenLinks[1].Code)
}

func TestProcessReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := ProcessReport(&buf, usecase.Report{StartURL: "http://a.test/", Checked: 1}, FormatJSON, zap.NewExample())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"broken_links": []`)
}

func TestProcessReportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := ProcessReport(&buf, testReport(), "xml", zap.NewExample())
	assert.Error(t, err)
}
