package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// response bodies quoted in errors are cut to this size
const maxReportedBody = 512

// StatusError reports a response whose status the client did not expect
type StatusError struct {
	Code   int
	Verb   string
	URL    string
	Reason string
	Body   string

	cause error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s returned %d (%s)", e.Verb, e.URL, e.Code, e.Reason)
	if e.cause != nil {
		msg = e.cause.Error() + ": " + msg
	}
	if e.Body != "" {
		msg += ", message " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return e.cause
}

// ErrorReporter converts unexpected server responses into errors matching cause
// with errors.Is, so callers can classify them without parsing messages.
type ErrorReporter struct {
	verb  string
	cause error
}

func NewClientErrorReporter(verb string, cause error) *ErrorReporter {
	return &ErrorReporter{
		verb:  verb,
		cause: cause,
	}
}

func (r *ErrorReporter) AsError(url string, code int, body []byte) error {
	reported := strings.TrimSpace(string(body))
	if len(reported) > maxReportedBody {
		reported = reported[:maxReportedBody] + "..."
	}
	return &StatusError{
		Code:   code,
		Verb:   r.verb,
		URL:    url,
		Reason: http.StatusText(code),
		Body:   reported,
		cause:  r.cause,
	}
}
