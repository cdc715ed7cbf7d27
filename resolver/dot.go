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

//go:build dnsovertls

package resolver

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/miekg/dns"
)

// TLSConfig returns a Config that queries the given servers over
// DNS-over-TLS (RFC 7858). serverName is used for SNI and certificate
// validation against every server.
//
// Available only in builds with the "dnsovertls" tag.
func TLSConfig(serverName string, servers ...string) Config {
	return Config{Servers: servers, exchange: tlsExchange(serverName)}
}

// CloudflareTLS creates a Resolver that queries the Cloudflare upstreams
// over DNS-over-TLS.
func CloudflareTLS() Resolver {
	return NewWithConfig(TLSConfig("cloudflare-dns.com",
		"1.1.1.1:853",
		"1.0.0.1:853",
		"[2606:4700:4700::1111]:853",
		"[2606:4700:4700::1001]:853",
	))
}

// Quad9TLS creates a Resolver that queries the Quad9 upstreams over
// DNS-over-TLS.
func Quad9TLS() Resolver {
	return NewWithConfig(TLSConfig("dns.quad9.net",
		"9.9.9.9:853",
		"149.112.112.112:853",
		"[2620:fe::fe]:853",
		"[2620:fe::9]:853",
	))
}

func tlsExchange(serverName string) exchangeBuilder {
	return func(timeout time.Duration) exchangeFunc {
		client := &dns.Client{
			Net:       "tcp-tls",
			Timeout:   timeout,
			TLSConfig: &tls.Config{ServerName: serverName},
		}
		return func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error) {
			resp, _, err := client.ExchangeContext(ctx, m, server)
			return resp, err
		}
	}
}
