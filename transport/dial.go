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
	"net"
)

// ErrNoAddresses indicates a resolution succeeded but produced no addresses.
var ErrNoAddresses = errors.New("no addresses resolved")

// ResolveError reports a failed name resolution. No connection attempt is
// made when resolution fails.
type ResolveError struct {
	Hostname string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Hostname, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// ConnectError reports that every resolved address was attempted and none
// produced a connection. Err joins the per-address failures.
type ConnectError struct {
	Hostname string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %q: %v", e.Hostname, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ResolvingDialer is a [StreamDialer] that resolves the destination host
// through a [NameResolver] and attempts a connection to each resolved
// address in the order returned, stopping at the first success.
type ResolvingDialer struct {
	resolver NameResolver
	dialer   StreamDialer
}

var _ StreamDialer = (*ResolvingDialer)(nil)

// NewResolvingDialer creates a [ResolvingDialer] that uses resolver to map
// host names to addresses and dialer to connect to them. A nil dialer means
// a direct [TCPDialer].
func NewResolvingDialer(resolver NameResolver, dialer StreamDialer) (*ResolvingDialer, error) {
	if resolver == nil {
		return nil, errors.New("resolver must not be nil")
	}
	if dialer == nil {
		dialer = &TCPDialer{}
	}
	return &ResolvingDialer{resolver, dialer}, nil
}

// DialStream implements [StreamDialer].DialStream. IP-literal hosts bypass
// resolution entirely.
func (d *ResolvingDialer) DialStream(ctx context.Context, raddr string) (StreamConn, error) {
	host, port, err := net.SplitHostPort(raddr)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	if net.ParseIP(host) != nil {
		return d.dialer.DialStream(ctx, raddr)
	}

	addrs, err := d.resolver.LookupIP(ctx, host)
	if err != nil {
		return nil, &ResolveError{Hostname: host, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &ResolveError{Hostname: host, Err: ErrNoAddresses}
	}

	var attempts []error
	for _, addr := range addrs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			attempts = append(attempts, ctxErr)
			break
		}
		conn, dialErr := d.dialer.DialStream(ctx, net.JoinHostPort(addr.String(), port))
		if dialErr == nil {
			return conn, nil
		}
		attempts = append(attempts, fmt.Errorf("%v: %w", addr, dialErr))
	}
	return nil, &ConnectError{Hostname: host, Err: errors.Join(attempts...)}
}
