// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeauthority

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bureau-foundation/timekeep/lib/netutil"
)

// HTTPDate reads the Date header of a HEAD response from URL. Useful
// on networks that block the JSON time services but allow ordinary
// HTTPS.
type HTTPDate struct {
	// URL is the endpoint to query. Required.
	URL string

	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Now returns the server's Date header.
func (a *HTTPDate) Now(ctx context.Context) (time.Time, error) {
	if a.URL == "" {
		return time.Time{}, fmt.Errorf("timeauthority: http-date: URL is required")
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodHead, a.URL, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: http-date: %w", err)
	}

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: http-date: %w", err)
	}
	defer response.Body.Close()

	if err := netutil.CheckStatus(response); err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: http-date: %w", err)
	}
	header := response.Header.Get("Date")
	if header == "" {
		return time.Time{}, fmt.Errorf("timeauthority: http-date: %s sent no Date header", a.URL)
	}
	instant, err := http.ParseTime(header)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: http-date: parsing %q: %w", header, err)
	}
	return instant, nil
}
