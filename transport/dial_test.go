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
	"net"
	"net/netip"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// resolverFunc adapts a function to the NameResolver contract.
type resolverFunc func(ctx context.Context, hostname string) ([]netip.Addr, error)

func (f resolverFunc) LookupIP(ctx context.Context, hostname string) ([]netip.Addr, error) {
	return f(ctx, hostname)
}

func staticResolver(addrs ...string) resolverFunc {
	parsed := make([]netip.Addr, 0, len(addrs))
	for _, addr := range addrs {
		parsed = append(parsed, netip.MustParseAddr(addr))
	}
	return func(context.Context, string) ([]netip.Addr, error) {
		return parsed, nil
	}
}

// fakeConn is a StreamConn that carries no real socket.
type fakeConn struct {
	net.Conn
}

func (fakeConn) CloseRead() error  { return nil }
func (fakeConn) CloseWrite() error { return nil }

// recordingDialer records every address it is asked to dial and fails the
// first failures attempts.
type recordingDialer struct {
	attempted []string
	failures  int
}

func (d *recordingDialer) DialStream(ctx context.Context, raddr string) (StreamConn, error) {
	d.attempted = append(d.attempted, raddr)
	if len(d.attempted) <= d.failures {
		return nil, errors.New("connection refused")
	}
	return fakeConn{}, nil
}

func TestNewResolvingDialerNilResolver(t *testing.T) {
	_, err := NewResolvingDialer(nil, nil)
	require.Error(t, err)
}

func TestDialResolveError(t *testing.T) {
	lookupErr := errors.New("servfail")
	inner := &recordingDialer{}
	d, err := NewResolvingDialer(resolverFunc(func(context.Context, string) ([]netip.Addr, error) {
		return nil, lookupErr
	}), inner)
	require.NoError(t, err)

	_, err = d.DialStream(context.Background(), "host.test:80")
	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	require.Equal(t, "host.test", resolveErr.Hostname)
	require.ErrorIs(t, err, lookupErr)
	// Resolution failure means no connection is ever attempted.
	require.Empty(t, inner.attempted)
}

func TestDialNoAddresses(t *testing.T) {
	inner := &recordingDialer{}
	d, err := NewResolvingDialer(staticResolver(), inner)
	require.NoError(t, err)

	_, err = d.DialStream(context.Background(), "host.test:80")
	require.ErrorIs(t, err, ErrNoAddresses)
	require.Empty(t, inner.attempted)
}

func TestDialAttemptsPreserveOrder(t *testing.T) {
	inner := &recordingDialer{failures: 3}
	d, err := NewResolvingDialer(staticResolver("192.0.2.3", "192.0.2.1", "2001:db8::1"), inner)
	require.NoError(t, err)

	_, err = d.DialStream(context.Background(), "host.test:443")
	var connectErr *ConnectError
	require.ErrorAs(t, err, &connectErr)
	require.Equal(t, []string{
		"192.0.2.3:443",
		"192.0.2.1:443",
		"[2001:db8::1]:443",
	}, inner.attempted)
}

func TestDialStopsAtFirstSuccess(t *testing.T) {
	inner := &recordingDialer{failures: 1}
	d, err := NewResolvingDialer(staticResolver("192.0.2.1", "192.0.2.2", "192.0.2.3"), inner)
	require.NoError(t, err)

	conn, err := d.DialStream(context.Background(), "host.test:80")
	require.NoError(t, err)
	require.NotNil(t, conn)
	require.Equal(t, []string{"192.0.2.1:80", "192.0.2.2:80"}, inner.attempted)
}

func TestDialIPLiteralSkipsResolution(t *testing.T) {
	resolved := false
	inner := &recordingDialer{}
	d, err := NewResolvingDialer(resolverFunc(func(context.Context, string) ([]netip.Addr, error) {
		resolved = true
		return nil, nil
	}), inner)
	require.NoError(t, err)

	_, err = d.DialStream(context.Background(), "192.0.2.9:80")
	require.NoError(t, err)
	require.False(t, resolved)
	require.Equal(t, []string{"192.0.2.9:80"}, inner.attempted)
}

func TestDialInvalidAuthority(t *testing.T) {
	d, err := NewResolvingDialer(staticResolver("192.0.2.1"), &recordingDialer{})
	require.NoError(t, err)
	_, err = d.DialStream(context.Background(), "no-port")
	require.Error(t, err)
}

func TestDialCancellation(t *testing.T) {
	d, err := NewResolvingDialer(resolverFunc(func(ctx context.Context, _ string) ([]netip.Addr, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), &recordingDialer{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.DialStream(ctx, "host.test:80")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDialFallsBackToReachableAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	// 127.0.0.2 has nothing listening on the port; the dial falls through
	// to 127.0.0.1 where the listener lives.
	d, err := NewResolvingDialer(staticResolver("127.0.0.2", "127.0.0.1"), nil)
	require.NoError(t, err)

	conn, err := d.DialStream(context.Background(), net.JoinHostPort("host.test", port))
	require.NoError(t, err)
	conn.Close()
}
