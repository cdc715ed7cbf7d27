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

package resolver

import (
	"context"
	"errors"
	"net/netip"
	"time"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultCacheSize = 4096
)

// Resolver is a handle to a shared lookup engine. Copying a Resolver is O(1):
// all copies share the same upstream configuration and cache, and may be used
// concurrently from any number of goroutines.
//
// The zero value is not usable; obtain a Resolver from one of the
// constructors.
type Resolver struct {
	engine *engine
}

// Config describes the behavior of a lookup engine. The zero value selects
// the default public upstreams over plain DNS.
type Config struct {
	// Upstream server addresses in "host:port" form. Queries rotate across
	// the servers, falling through to the next one on failure. Empty means
	// the default public upstreams.
	Servers []string
	// Per-exchange timeout. Zero means a 5 second default.
	Timeout time.Duration
	// RequireAuthenticated requests DNSSEC validation from the upstream
	// (DO bit) and rejects answers without the Authenticated Data bit.
	RequireAuthenticated bool
	// Maximum number of cached answers. Zero means a default of 4096.
	// Negative disables caching.
	CacheSize int

	// Transport selection, set by the *Config helper constructors.
	// nil means plain DNS (UDP with TCP fallback on truncation).
	exchange exchangeBuilder
}

// New creates a Resolver with the default configuration: the Google public
// upstreams over plain DNS. It performs no network I/O.
func New() Resolver {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Resolver using the supplied configuration.
// It performs no network I/O and never fails: missing values fall back to
// defaults.
func NewWithConfig(cfg Config) Resolver {
	return Resolver{engine: newEngine(cfg)}
}

// Google creates a Resolver that uses the Google public upstreams.
func Google() Resolver {
	return NewWithConfig(UDPConfig(googleServers...))
}

// Cloudflare creates a Resolver that uses the Cloudflare public upstreams.
func Cloudflare() Resolver {
	return NewWithConfig(UDPConfig(cloudflareServers...))
}

// Quad9 creates a Resolver that uses the Quad9 public upstreams.
func Quad9() Resolver {
	return NewWithConfig(UDPConfig(quad9Servers...))
}

// UDPConfig returns a Config that queries the given servers over plain DNS,
// using UDP with a TCP retry on truncated responses.
func UDPConfig(servers ...string) Config {
	return Config{Servers: servers, exchange: plainExchange}
}

// TCPConfig returns a Config that queries the given servers over TCP only.
func TCPConfig(servers ...string) Config {
	return Config{Servers: servers, exchange: tcpExchange}
}

// LookupIP resolves host to its IP addresses. It returns the addresses in
// the order produced by the upstream answer, IPv4 before IPv6, without
// deduplication. If host is an IP literal it is returned as-is without any
// network I/O.
//
// The lookup is aborted promptly when ctx is canceled or its deadline
// expires. Identical concurrent lookups share a single upstream query.
func (r Resolver) LookupIP(ctx context.Context, host string) ([]netip.Addr, error) {
	if r.engine == nil {
		return nil, errors.New("resolver: use of uninitialized Resolver")
	}
	return r.engine.lookupIP(ctx, host)
}

var (
	googleServers = []string{
		"8.8.8.8:53",
		"8.8.4.4:53",
		"[2001:4860:4860::8888]:53",
		"[2001:4860:4860::8844]:53",
	}
	cloudflareServers = []string{
		"1.1.1.1:53",
		"1.0.0.1:53",
		"[2606:4700:4700::1111]:53",
		"[2606:4700:4700::1001]:53",
	}
	quad9Servers = []string{
		"9.9.9.9:53",
		"149.112.112.112:53",
		"[2620:fe::fe]:53",
		"[2620:fe::9]:53",
	}
)
