package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds, used as metric labels and in reports.
const (
	KindTransport   = "transport"
	KindBadResponse = "bad_response"
	KindPanic       = "panic"
	KindUnknown     = "unknown"
)

var ErrFetcherPanic = errors.New("fetcher panicked")

// TransportError is a network or connection failure while fetching URL.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BadResponseError is returned when the server answered with a non-2xx status.
type BadResponseError struct {
	URL        string
	StatusCode int
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("bad response for %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	var terr *TransportError
	var berr *BadResponseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &berr):
		return KindBadResponse
	case errors.As(err, &terr):
		return KindTransport
	case errors.Is(err, ErrFetcherPanic):
		return KindPanic
	}
	return KindUnknown
}
