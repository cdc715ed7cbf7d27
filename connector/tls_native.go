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

//go:build nativetls

package connector

import (
	"crypto/tls"

	"github.com/Gelbpunkt/hyper-trust-dns/resolver"
)

// NewTLSConnector creates a Connector that wraps its connections with TLS
// and delegates trust evaluation to the operating system: the platform
// verifier where one exists, the system certificate pool elsewhere.
//
// Available only in builds with the "nativetls" tag. Combining it with the
// "portabletls" tag redeclares NewTLSConnector and fails to compile.
func NewTLSConnector(handle resolver.Resolver) *Connector {
	return newTLSConnector(handle, &tls.Config{})
}
