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

/*
Package resolver provides a shareable, caching DNS resolver handle for use
with custom transports and HTTP clients.

A [Resolver] is a cheap-to-copy handle: every copy shares the same lookup
engine and its cache, and all copies may be used concurrently without
synchronization. Construction never performs network I/O; lookups happen
on demand through [Resolver.LookupIP].

Preset constructors configure well-known public upstreams ([Google],
[Cloudflare], [Quad9]). Encrypted transports are selected at build time:
DNS-over-TLS presets and [TLSConfig] require the "dnsovertls" build tag,
DNS-over-HTTPS presets and [HTTPSConfig] require the "dnsoverhttps" build
tag. [FromSystemConfig] reads the operating system resolver configuration
and is compiled out by the "nosysconf" build tag.

The wire protocol, message codec and transport exchanges are supplied by
[github.com/miekg/dns]; this package adds upstream rotation, parallel
A/AAAA resolution, TTL-based caching and in-flight query deduplication.
*/
package resolver
