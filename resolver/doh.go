// Copyright 2024 The hyper-trust-dns Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build dnsoverhttps

package resolver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/miekg/dns"
)

const dohMimetype = "application/dns-message"

// HTTPSConfig returns a Config that queries url over DNS-over-HTTPS
// (RFC 8484) in wire format. The servers are "ip:port" bootstrap addresses
// for the URL's host, so that resolving it does not itself require DNS.
//
// Available only in builds with the "dnsoverhttps" tag.
func HTTPSConfig(url string, servers ...string) Config {
	return Config{Servers: servers, exchange: httpsExchange(url)}
}

// CloudflareHTTPS creates a Resolver that queries the Cloudflare upstreams
// over DNS-over-HTTPS.
func CloudflareHTTPS() Resolver {
	return NewWithConfig(HTTPSConfig("https://cloudflare-dns.com/dns-query",
		"1.1.1.1:443",
		"1.0.0.1:443",
		"[2606:4700:4700::1111]:443",
		"[2606:4700:4700::1001]:443",
	))
}

// Quad9HTTPS creates a Resolver that queries the Quad9 upstreams over
// DNS-over-HTTPS.
func Quad9HTTPS() Resolver {
	return NewWithConfig(HTTPSConfig("https://dns.quad9.net/dns-query",
		"9.9.9.9:443",
		"149.112.112.112:443",
		"[2620:fe::fe]:443",
		"[2620:fe::9]:443",
	))
}

// dohServerKey carries the bootstrap address of the current exchange through
// the HTTP client's dial callback.
type dohServerKey struct{}

func httpsExchange(url string) exchangeBuilder {
	return func(timeout time.Duration) exchangeFunc {
		dialer := &net.Dialer{Timeout: timeout}
		client := &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					if server, ok := ctx.Value(dohServerKey{}).(string); ok {
						addr = server
					}
					return dialer.DialContext(ctx, network, addr)
				},
				ForceAttemptHTTP2:   true,
				TLSHandshakeTimeout: timeout,
			},
		}
		return func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error) {
			// The ID must be zero in DoH requests, per RFC 8484 section 4.1.
			q := m.Copy()
			q.Id = 0
			packed, err := q.Pack()
			if err != nil {
				return nil, fmt.Errorf("cannot pack query: %w", err)
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			ctx = context.WithValue(ctx, dohServerKey{}, server)
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(packed))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", dohMimetype)
			req.Header.Set("Accept", dohMimetype)
			httpResp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer httpResp.Body.Close()
			if httpResp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("got HTTP status %v", httpResp.StatusCode)
			}
			body, err := io.ReadAll(httpResp.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read response: %w", err)
			}
			resp := new(dns.Msg)
			if err := resp.Unpack(body); err != nil {
				return nil, fmt.Errorf("failed to unpack response: %w", err)
			}
			return resp, nil
		}
	}
}
