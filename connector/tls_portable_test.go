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

//go:build portabletls

package connector

import (
	"context"
	"crypto/x509"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTLSConnectorBundledRoots(t *testing.T) {
	c := NewTLSConnector(unreachableHandle())
	require.NotNil(t, c)
	require.NotNil(t, c.tlsBase.RootCAs)
}

func TestNewSystemRootsTLSConnector(t *testing.T) {
	c := NewSystemRootsTLSConnector(unreachableHandle())
	require.NotNil(t, c)
}

func TestBundledRootsRejectLocalCA(t *testing.T) {
	// The bundled store has no reason to trust a certificate minted for
	// this test.
	port, _ := startTLSServer(t, "secure.test", nil)

	c := NewTLSConnector(localDNS(t, "127.0.0.1"))
	_, err := c.DialStream(context.Background(), net.JoinHostPort("secure.test", port))
	var unknownAuthority x509.UnknownAuthorityError
	require.ErrorAs(t, err, &unknownAuthority)
}
