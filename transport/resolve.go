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

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/miekg/dns"

	"github.com/Gelbpunkt/hyper-trust-dns/resolver"
)

// NameResolver is the name-resolution service contract consumed by dialers
// in this package. Implementations must be safe for concurrent use by any
// number of in-flight calls and must not retain per-call state.
type NameResolver interface {
	// LookupIP maps a host name to IP addresses. The returned order is
	// meaningful to callers and must not be rearranged.
	LookupIP(ctx context.Context, hostname string) ([]netip.Addr, error)
}

// ErrMalformedHostname indicates the hostname is not a syntactically valid
// DNS name. It is reported before any query is issued, and is distinct from
// the resolver's "no such host" condition.
var ErrMalformedHostname = errors.New("malformed hostname")

// NewNameResolver adapts a [resolver.Resolver] handle to the [NameResolver]
// contract. The adapter validates hostname syntax, delegates the lookup
// verbatim, and passes the resulting addresses through unmodified: no
// reordering, no deduplication, no caching of its own.
func NewNameResolver(handle resolver.Resolver) NameResolver {
	return handleResolver{handle}
}

type handleResolver struct {
	handle resolver.Resolver
}

func (r handleResolver) LookupIP(ctx context.Context, hostname string) ([]netip.Addr, error) {
	if _, ok := dns.IsDomainName(hostname); !ok || hostname == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedHostname, hostname)
	}
	return r.handle.LookupIP(ctx, hostname)
}
