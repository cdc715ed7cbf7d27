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
	"fmt"
	"net/netip"
	"strings"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Maximum DNS payload size advertised via EDNS(0).
// Value taken from https://dnsflagday.net/2020/.
const maxUDPPayload = 1232

const (
	// TTL bounds applied to cached answers, in seconds.
	minCacheTTL = 1
	maxCacheTTL = 86400
	// Bounds for negative answers, per RFC 2308.
	defaultNegativeTTL = 5
	maxNegativeTTL     = 1800
)

// ErrNotFound is returned when a name resolves to no A or AAAA records,
// including NXDOMAIN answers from the upstream.
var ErrNotFound = errors.New("no such host")

// ErrNotAuthenticated is returned when [Config.RequireAuthenticated] is set
// and the upstream answer lacks the Authenticated Data bit.
var ErrNotAuthenticated = errors.New("answer was not authenticated")

// exchangeFunc performs one DNS exchange with the given upstream server.
type exchangeFunc func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error)

// exchangeBuilder creates an exchangeFunc bound to the engine's timeout.
type exchangeBuilder func(timeout time.Duration) exchangeFunc

// plainExchange queries over UDP and retries over TCP when the response is
// truncated.
func plainExchange(timeout time.Duration) exchangeFunc {
	udp := &dns.Client{Net: "udp", Timeout: timeout, UDPSize: maxUDPPayload}
	tcp := &dns.Client{Net: "tcp", Timeout: timeout}
	return func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error) {
		resp, _, err := udp.ExchangeContext(ctx, m, server)
		if err == nil && resp.Truncated {
			resp, _, err = tcp.ExchangeContext(ctx, m, server)
		}
		return resp, err
	}
}

// tcpExchange queries over TCP only.
func tcpExchange(timeout time.Duration) exchangeFunc {
	tcp := &dns.Client{Net: "tcp", Timeout: timeout}
	return func(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error) {
		resp, _, err := tcp.ExchangeContext(ctx, m, server)
		return resp, err
	}
}

// engine is the shared lookup state behind every copy of a [Resolver].
type engine struct {
	servers   []string
	exchange  exchangeFunc
	timeout   time.Duration
	requireAD bool

	// next rotates the starting upstream across queries.
	next  atomic.Uint32
	cache *lookupCache
	group singleflight.Group
}

func newEngine(cfg Config) *engine {
	servers := cfg.Servers
	if len(servers) == 0 {
		servers = googleServers
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	build := cfg.exchange
	if build == nil {
		build = plainExchange
	}
	size := cfg.CacheSize
	var cache *lookupCache
	if size >= 0 {
		if size == 0 {
			size = defaultCacheSize
		}
		cache = newLookupCache(size)
	}
	return &engine{
		servers:   servers,
		exchange:  build(timeout),
		timeout:   timeout,
		requireAD: cfg.RequireAuthenticated,
		cache:     cache,
	}
}

func (e *engine) lookupIP(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}
	if _, ok := dns.IsDomainName(host); !ok || host == "" {
		return nil, fmt.Errorf("resolver: invalid domain name %q", host)
	}
	fqdn := dns.Fqdn(host)

	var addrs4, addrs6 []netip.Addr
	var g errgroup.Group
	g.Go(func() (err error) {
		addrs4, err = e.lookup(ctx, fqdn, dns.TypeA)
		return err
	})
	g.Go(func() (err error) {
		addrs6, err = e.lookup(ctx, fqdn, dns.TypeAAAA)
		return err
	})
	err := g.Wait()

	// One address family failing is not fatal as long as the other one
	// produced addresses.
	if total := len(addrs4) + len(addrs6); total > 0 {
		addrs := make([]netip.Addr, 0, total)
		addrs = append(addrs, addrs4...)
		return append(addrs, addrs6...), nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("resolver: lookup %q: %w", host, ErrNotFound)
}

// lookup resolves one (name, type) pair, going through the cache and
// deduplicating concurrent identical queries.
func (e *engine) lookup(ctx context.Context, fqdn string, qtype uint16) ([]netip.Addr, error) {
	key := dns.TypeToString[qtype] + " " + fqdn
	if e.cache != nil {
		if addrs, err, ok := e.cache.get(key); ok {
			return addrs, err
		}
	}

	ch := e.group.DoChan(key, func() (any, error) {
		// The query is intentionally detached from the initiating caller's
		// cancellation: other callers may be waiting on the same flight.
		// Each exchange is still bounded by the engine timeout.
		addrs, ttl, err := e.query(context.WithoutCancel(ctx), fqdn, qtype)
		if e.cache != nil && ttl > 0 && (err == nil || errors.Is(err, ErrNotFound)) {
			e.cache.set(key, cacheEntry{
				addrs:   addrs,
				err:     err,
				expires: time.Now().Add(time.Duration(ttl) * time.Second),
			})
		}
		if err != nil {
			return nil, err
		}
		return addrs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]netip.Addr), nil
	}
}

// query sends one question to the upstreams, rotating the starting server
// and falling through on errors. It returns the answer addresses and the
// TTL to cache them for, in seconds.
func (e *engine) query(ctx context.Context, fqdn string, qtype uint16) ([]netip.Addr, uint32, error) {
	m := new(dns.Msg)
	m.SetQuestion(fqdn, qtype)
	m.SetEdns0(maxUDPPayload, e.requireAD)
	if e.requireAD {
		m.AuthenticatedData = true
	}

	start := int(e.next.Add(1)-1) % len(e.servers)
	var resp *dns.Msg
	var err error
	for i := 0; i < len(e.servers); i++ {
		server := e.servers[(start+i)%len(e.servers)]
		resp, err = e.exchange(ctx, m, server)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, 0, err
		}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("resolver: exchange failed: %w", err)
	}

	host := strings.TrimSuffix(fqdn, ".")
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, negativeTTL(resp), fmt.Errorf("resolver: lookup %q: %w", host, ErrNotFound)
	default:
		return nil, 0, fmt.Errorf("resolver: lookup %q: upstream returned %s", host, dns.RcodeToString[resp.Rcode])
	}
	if e.requireAD && !resp.AuthenticatedData {
		return nil, 0, fmt.Errorf("resolver: lookup %q: %w", host, ErrNotAuthenticated)
	}

	addrs, ttl := answersOfType(resp, qtype)
	if len(addrs) == 0 {
		return nil, negativeTTL(resp), nil
	}
	return addrs, ttl, nil
}

// answersOfType extracts the addresses for qtype from the answer section,
// preserving upstream order, and reports the smallest record TTL clamped to
// the cache bounds.
func answersOfType(resp *dns.Msg, qtype uint16) ([]netip.Addr, uint32) {
	var addrs []netip.Addr
	ttl := uint32(maxCacheTTL)
	for _, rr := range resp.Answer {
		var addr netip.Addr
		var ok bool
		switch rr := rr.(type) {
		case *dns.A:
			if qtype != dns.TypeA {
				continue
			}
			addr, ok = netip.AddrFromSlice(rr.A.To4())
		case *dns.AAAA:
			if qtype != dns.TypeAAAA {
				continue
			}
			addr, ok = netip.AddrFromSlice(rr.AAAA.To16())
		default:
			continue
		}
		if !ok {
			continue
		}
		addrs = append(addrs, addr)
		if hdr := rr.Header(); hdr.Ttl < ttl {
			ttl = hdr.Ttl
		}
	}
	if ttl < minCacheTTL {
		ttl = minCacheTTL
	}
	return addrs, ttl
}

// negativeTTL derives the TTL for caching an empty or NXDOMAIN answer from
// the SOA record in the authority section, per RFC 2308.
func negativeTTL(resp *dns.Msg) uint32 {
	ttl := uint32(defaultNegativeTTL)
	for _, rr := range resp.Ns {
		if soa, ok := rr.(*dns.SOA); ok {
			ttl = min(soa.Minttl, soa.Hdr.Ttl)
			break
		}
	}
	if ttl > maxNegativeTTL {
		ttl = maxNegativeTTL
	}
	if ttl < minCacheTTL {
		ttl = minCacheTTL
	}
	return ttl
}
