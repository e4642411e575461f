// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package netstatus validates the backend endpoint and watches whether it is
// reachable.
package netstatus

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidURL is returned when the endpoint cannot be parsed.
	ErrInvalidURL = errors.New("netstatus: invalid endpoint URL")

	// ErrInvalidURLScheme is returned when the scheme is not http or https.
	// SECURITY: Prevents file://, javascript://, data:// and custom handlers.
	ErrInvalidURLScheme = errors.New("netstatus: only http and https schemes are allowed")

	// ErrMissingHost is returned when the endpoint has no host.
	ErrMissingHost = errors.New("netstatus: endpoint has no host")
)

// =============================================================================
// URL VALIDATION
// =============================================================================

// ValidateEndpoint checks that rawURL is an absolute http(s) URL with a host.
func ValidateEndpoint(rawURL string) error {
	_, err := parseEndpoint(rawURL)
	return err
}

// ProbeAddress returns the host:port a reachability probe should dial for
// rawURL. The port defaults to 80 or 443 by scheme.
func ProbeAddress(rawURL string) (string, error) {
	u, err := parseEndpoint(rawURL)
	if err != nil {
		return "", err
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if strings.EqualFold(u.Scheme, "https") {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// IsLocalhost reports whether host (optionally with a port) is a loopback name
// or address.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	if host == "localhost" {
		return true
	}
	// Covers all of 127.0.0.0/8 and every spelling of ::1.
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

func parseEndpoint(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, ErrInvalidURLScheme
	}
	if u.Hostname() == "" {
		return nil, ErrMissingHost
	}
	return u, nil
}
