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
Package transport establishes stream connections to destinations named by
hostname.

The [NameResolver] interface is the resolution service contract consumed by
dialers in this package; [NewNameResolver] adapts a [resolver.Resolver]
handle to it. [ResolvingDialer] is the base connector: it resolves the
destination host and attempts a TCP connection to each returned address in
order. Address ordering is passed through from the resolver untouched; no
deduplication or interleaving policy is applied.

Failures are classified: resolution failures surface as [*ResolveError]
(no connection is ever attempted for them) and exhausted connection
attempts as [*ConnectError]. Both unwrap to their underlying causes.
*/
package transport
