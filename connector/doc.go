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
Package connector composes a [resolver.Resolver] handle with a transport
and an optional TLS layer into a [Connector] ready to plug into an HTTP
client.

Constructing a Connector performs no network I/O; resolution, connection
and handshake all happen lazily, per connection attempt.

[NewPlainConnector] is available in every build. The TLS constructors are
selected at build time:

  - "portabletls" tag: [NewTLSConnector] validates against the bundled
    portable root certificate set, and [NewSystemRootsTLSConnector]
    against the operating system's certificate store, both using the
    portable TLS stack.
  - "nativetls" tag: [NewTLSConnector] delegates trust evaluation to the
    operating system's native verifier.

Enabling both tags in one build redeclares NewTLSConnector and fails to
compile; the conflict is rejected before run time. The "httpsonly" tag
makes transports composed from TLS connectors refuse plain-text dials.
*/
package connector
