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

package connector

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"golang.org/x/net/http2"

	"github.com/Gelbpunkt/hyper-trust-dns/resolver"
	"github.com/Gelbpunkt/hyper-trust-dns/transport"
)

var alpnDefault = []string{"h2", "http/1.1"}

// Connector produces byte streams to destinations named by "host:port",
// resolving the host through its resolver handle and optionally upgrading
// the connection with a TLS handshake. A Connector holds no per-connection
// state and is safe for concurrent use.
type Connector struct {
	dialer *transport.ResolvingDialer
	// tlsBase is the template TLS configuration; nil means a plain
	// connector.
	tlsBase *tls.Config
}

// NewPlainConnector creates a Connector that establishes plain TCP
// connections. It is available in every build configuration.
func NewPlainConnector(handle resolver.Resolver) *Connector {
	return &Connector{dialer: newResolvingDialer(handle)}
}

func newTLSConnector(handle resolver.Resolver, cfg *tls.Config) *Connector {
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = append([]string(nil), alpnDefault...)
	}
	return &Connector{dialer: newResolvingDialer(handle), tlsBase: cfg}
}

func newResolvingDialer(handle resolver.Resolver) *transport.ResolvingDialer {
	dialer, err := transport.NewResolvingDialer(transport.NewNameResolver(handle), nil)
	if err != nil {
		// Unreachable: the adapter passed above is never nil.
		panic(err)
	}
	return dialer
}

// DialStream implements [transport.StreamDialer]. For TLS connectors the
// returned stream has completed its handshake, with the destination host as
// the server name.
func (c *Connector) DialStream(ctx context.Context, raddr string) (transport.StreamConn, error) {
	if c.tlsBase == nil {
		return c.dialer.DialStream(ctx, raddr)
	}
	host, _, err := net.SplitHostPort(raddr)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	innerConn, err := c.dialer.DialStream(ctx, raddr)
	if err != nil {
		return nil, err
	}
	cfg := c.tlsBase.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	tlsConn := tls.Client(innerConn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		innerConn.Close()
		return nil, err
	}
	return streamConn{tlsConn, innerConn}, nil
}

// DialContext makes the Connector usable wherever a net.Dialer-shaped dial
// function is expected. Only TCP networks are supported.
func (c *Connector) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, fmt.Errorf("unsupported network %q", network)
	}
	return c.DialStream(ctx, addr)
}

// plainDialContext dials without the TLS upgrade regardless of variant.
func (c *Connector) plainDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, fmt.Errorf("unsupported network %q", network)
	}
	return c.dialer.DialStream(ctx, addr)
}

// Transport builds an *http.Transport that connects through this Connector,
// with HTTP/2 enabled. Plain connectors install their dial for clear-text
// connections; TLS connectors install theirs for the TLS leg, so the
// handshake and certificate validation configured at construction stay in
// effect.
func (c *Connector) Transport() *http.Transport {
	t := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if c.tlsBase == nil {
		t.DialContext = c.DialContext
	} else {
		t.DialTLSContext = c.DialContext
		if httpsOnly {
			t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return nil, errors.New("plain HTTP is disabled in this build")
			}
		} else {
			t.DialContext = c.plainDialContext
		}
	}
	// ConfigureTransport only fails when the transport already carries an
	// HTTP/2 configuration, which a freshly built one never does.
	_ = http2.ConfigureTransport(t)
	return t
}

// streamConn wraps a [tls.Conn] to provide a [transport.StreamConn]
// interface.
type streamConn struct {
	*tls.Conn
	innerConn transport.StreamConn
}

var _ transport.StreamConn = (*streamConn)(nil)

func (c streamConn) CloseWrite() error {
	tlsErr := c.Conn.CloseWrite()
	return errors.Join(tlsErr, c.innerConn.CloseWrite())
}

func (c streamConn) CloseRead() error {
	return c.innerConn.CloseRead()
}
