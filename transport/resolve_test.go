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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gelbpunkt/hyper-trust-dns/resolver"
)

func unreachableHandle() resolver.Resolver {
	cfg := resolver.UDPConfig("127.0.0.1:1")
	cfg.Timeout = 250 * time.Millisecond
	return resolver.NewWithConfig(cfg)
}

func TestNameResolverRejectsMalformedNames(t *testing.T) {
	nr := NewNameResolver(unreachableHandle())
	for _, hostname := range []string{"", strings.Repeat("a.", 200) + "a"} {
		_, err := nr.LookupIP(context.Background(), hostname)
		require.ErrorIs(t, err, ErrMalformedHostname, "hostname %q", hostname)
	}
}

func TestNameResolverDelegates(t *testing.T) {
	nr := NewNameResolver(unreachableHandle())
	_, err := nr.LookupIP(context.Background(), "host.test")
	require.Error(t, err)
	// A well-formed name makes it past validation to the engine.
	require.NotErrorIs(t, err, ErrMalformedHostname)
}
