// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeauthority

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // timeZone names come from the server

	"github.com/bureau-foundation/timekeep/lib/netutil"
)

const (
	// DefaultIdentityURL returns the caller's public address as
	// {"ip": "..."}.
	DefaultIdentityURL = "https://api.ipify.org?format=json"

	// DefaultTimeURL returns the current time for the address given
	// in the ipAddress query parameter.
	DefaultTimeURL = "https://timeapi.io/api/time/current/ip"
)

// timeAPILayout matches the dateTime field, for example
// "2025-03-27T22:07:31.7726984". Go accepts the fractional seconds
// when parsing even though the layout omits them.
const timeAPILayout = "2006-01-02T15:04:05"

// IPTimeAPI queries timeapi.io for the time at the caller's public
// address. The zero value is usable and talks to the public services
// with http.DefaultClient.
type IPTimeAPI struct {
	// Client performs both requests. Defaults to http.DefaultClient.
	// Deadlines come from the context passed to Now.
	Client *http.Client

	// IdentityURL and TimeURL default to DefaultIdentityURL and
	// DefaultTimeURL.
	IdentityURL string
	TimeURL     string
}

type identityResponse struct {
	IP string `json:"ip"`
}

type timeResponse struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Now resolves the public address, then queries the time for it.
func (a *IPTimeAPI) Now(ctx context.Context) (time.Time, error) {
	var identity identityResponse
	if err := a.getJSON(ctx, a.identityURL(), &identity); err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: resolving public address: %w", err)
	}
	if identity.IP == "" {
		return time.Time{}, fmt.Errorf("timeauthority: resolving public address: empty ip in response")
	}

	timeURL, err := url.Parse(a.timeURL())
	if err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: parsing time URL: %w", err)
	}
	query := timeURL.Query()
	query.Set("ipAddress", identity.IP)
	timeURL.RawQuery = query.Encode()

	var current timeResponse
	if err := a.getJSON(ctx, timeURL.String(), &current); err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: querying time: %w", err)
	}
	return parseTimeAPI(current)
}

func (a *IPTimeAPI) getJSON(ctx context.Context, target string, v any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := a.client().Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if err := netutil.CheckStatus(response); err != nil {
		return err
	}
	return netutil.DecodeResponse(response.Body, v)
}

// parseTimeAPI interprets dateTime as a wall-clock reading in timeZone
// (UTC when empty).
func parseTimeAPI(current timeResponse) (time.Time, error) {
	if strings.TrimSpace(current.DateTime) == "" {
		return time.Time{}, fmt.Errorf("timeauthority: response has no dateTime")
	}
	location := time.UTC
	if current.TimeZone != "" {
		loaded, err := time.LoadLocation(current.TimeZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("timeauthority: unknown timeZone %q: %w", current.TimeZone, err)
		}
		location = loaded
	}
	instant, err := time.ParseInLocation(timeAPILayout, current.DateTime, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeauthority: parsing dateTime %q: %w", current.DateTime, err)
	}
	return instant, nil
}

func (a *IPTimeAPI) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

func (a *IPTimeAPI) identityURL() string {
	if a.IdentityURL != "" {
		return a.IdentityURL
	}
	return DefaultIdentityURL
}

func (a *IPTimeAPI) timeURL() string {
	if a.TimeURL != "" {
		return a.TimeURL
	}
	return DefaultTimeURL
}
