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
	"crypto/tls"
	"crypto/x509"

	"github.com/certifi/gocertifi"

	"github.com/Gelbpunkt/hyper-trust-dns/resolver"
)

// NewTLSConnector creates a Connector that wraps its connections with TLS,
// validating server certificates against the bundled portable root set.
//
// Available only in builds with the "portabletls" tag.
func NewTLSConnector(handle resolver.Resolver) *Connector {
	return newTLSConnector(handle, &tls.Config{RootCAs: bundledRoots()})
}

// NewSystemRootsTLSConnector creates a Connector that wraps its connections
// with TLS, validating server certificates against the operating system's
// certificate store. If the store cannot be loaded, the bundled root set is
// used instead; the fallback surfaces, if at all, as a certificate
// validation failure at connection time.
//
// Available only in builds with the "portabletls" tag.
func NewSystemRootsTLSConnector(handle resolver.Resolver) *Connector {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = bundledRoots()
	}
	return newTLSConnector(handle, &tls.Config{RootCAs: pool})
}

func bundledRoots() *x509.CertPool {
	pool, err := gocertifi.CACerts()
	if err != nil {
		// The bundled PEM data is compiled in, so this cannot fail at run
		// time. An empty pool makes every handshake fail validation
		// instead of panicking at construction.
		return x509.NewCertPool()
	}
	return pool
}
