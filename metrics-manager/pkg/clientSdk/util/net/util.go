/*
Copyright 2016 The Kubernetes Authors.
Copyright 2019 Authors of OSM Autoscaler - file modified.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package net

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// Returns if the given err is "connection reset by peer" error.
func IsConnectionReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET)
}

// Returns if the given err is "connection refused" error
func IsConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

// IsTimeout returns true if the given error is a network timeout error
func IsTimeout(err error) bool {
	var neterr net.Error
	return errors.As(err, &neterr) && neterr.Timeout()
}

// IsProbableEOF returns true if the given error resembles a connection termination
// scenario, e.g. the remote service restarted in the middle of a response.
func IsProbableEOF(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "http: can't write HTTP request on broken connection"):
		return true
	case strings.Contains(msg, "http2: server sent GOAWAY and closed the connection"):
		return true
	case strings.Contains(msg, "connection reset by peer"):
		return true
	case strings.Contains(strings.ToLower(msg), "use of closed network connection"):
		return true
	}
	return false
}

// Classify returns a short label for a transport error, used in log lines
// so that an unreachable service can be told apart from a slow one.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsConnectionRefused(err):
		return "connection refused"
	case IsTimeout(err):
		return "timeout"
	case IsConnectionReset(err):
		return "connection reset"
	case IsProbableEOF(err):
		return "connection closed"
	default:
		return "error"
	}
}
