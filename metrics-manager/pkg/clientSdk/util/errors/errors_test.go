package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errRejected = errors.New("rejected")

func TestErrorReporter_AsError(t *testing.T) {
	reporter := NewClientErrorReporter(http.MethodPost, errRejected)

	err := reporter.AsError("http://predictors:8000/api/metrics/predict/", http.StatusServiceUnavailable, []byte(" busy \n"))

	assert.True(t, errors.Is(err, errRejected))
	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, "busy", statusErr.Body)
	assert.Equal(t, "rejected: POST http://predictors:8000/api/metrics/predict/ returned 503 (Service Unavailable), message busy", err.Error())
}

func TestErrorReporter_LongBody(t *testing.T) {
	reporter := NewClientErrorReporter(http.MethodGet, nil)

	err := reporter.AsError("http://osm:9999/x", http.StatusInternalServerError, []byte(strings.Repeat("a", 2000)))

	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, maxReportedBody+3, len(statusErr.Body))
	assert.Nil(t, errors.Unwrap(err))
	assert.True(t, strings.HasPrefix(err.Error(), "GET http://osm:9999/x returned 500"))
}
