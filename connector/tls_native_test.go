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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTLSConnectorPlatformVerifier(t *testing.T) {
	c := NewTLSConnector(unreachableHandle())
	require.NotNil(t, c)
	// A nil root pool defers validation to the platform verifier.
	require.Nil(t, c.tlsBase.RootCAs)
}
