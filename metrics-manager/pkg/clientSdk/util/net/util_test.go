package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Wrapped(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	reset := &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}

	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "ok"},
		{name: "refused", err: fmt.Errorf("query: %w", refused), expected: "connection refused"},
		{name: "reset", err: fmt.Errorf("query: %w", reset), expected: "connection reset"},
		{name: "eof", err: fmt.Errorf("decode: %w", io.EOF), expected: "connection closed"},
		{name: "other", err: errors.New("boom"), expected: "error"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestClassify_ClientTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := &http.Client{Timeout: 50 * time.Millisecond}
	_, err := client.Get(server.URL)

	assert.True(t, IsTimeout(err))
	assert.Equal(t, "timeout", Classify(err))
}

func TestIsConnectionRefused_Dial(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	var d net.Dialer
	_, err = d.DialContext(context.Background(), "tcp", addr)
	assert.True(t, IsConnectionRefused(err))
}

func TestIsProbableEOF(t *testing.T) {
	assert.False(t, IsProbableEOF(nil))
	assert.True(t, IsProbableEOF(io.ErrUnexpectedEOF))
	assert.True(t, IsProbableEOF(errors.New("read tcp: use of closed network connection")))
	assert.False(t, IsProbableEOF(errors.New("invalid character")))
}
