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

//go:build !nosysconf

package resolver

import (
	"net"
	"time"

	"github.com/miekg/dns"
)

var resolvConfPath = "/etc/resolv.conf"

// FromSystemConfig creates a Resolver configured from the operating
// system's resolver configuration. If the configuration cannot be read or
// names no servers, the default public upstreams are used instead; no error
// is ever reported at construction time.
//
// Compiled out by the "nosysconf" build tag.
func FromSystemConfig() Resolver {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(conf.Servers) == 0 {
		return New()
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, server := range conf.Servers {
		servers = append(servers, net.JoinHostPort(server, conf.Port))
	}
	cfg := UDPConfig(servers...)
	if conf.Timeout > 0 {
		cfg.Timeout = time.Duration(conf.Timeout) * time.Second
	}
	return NewWithConfig(cfg)
}
