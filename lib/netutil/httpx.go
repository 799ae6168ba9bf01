// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds bounded HTTP response helpers for the small
// JSON endpoints timekeep talks to.
//
// Every body read is capped at MaxResponseSize. A time service answers
// with a few hundred bytes; anything much larger is a captive portal
// or a misconfigured proxy, and reading it whole would only waste
// memory before the decode fails anyway.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxResponseSize bounds every response body read: 1 MiB.
const MaxResponseSize int64 = 1 << 20

// maxErrorBody bounds the body excerpt carried in a StatusError.
const maxErrorBody = 512

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a response body (up to MaxResponseSize bytes)
// and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody reads an error response body for a diagnostic message,
// trimmed and truncated. Read errors are ignored: a partial body is
// still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody+1))
	text := strings.TrimSpace(string(data))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

// StatusError is returned by CheckStatus for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// CheckStatus returns a *StatusError carrying an excerpt of the body if
// response is not 2xx, and nil otherwise. The body is consumed only on
// error.
func CheckStatus(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	url := ""
	if response.Request != nil && response.Request.URL != nil {
		url = response.Request.URL.Redacted()
	}
	return &StatusError{
		URL:        url,
		StatusCode: response.StatusCode,
		Body:       ErrorBody(response.Body),
	}
}
