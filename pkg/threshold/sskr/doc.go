// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


// Package sskr implements Sharded Secret Key Reconstruction, a two-level
// Shamir scheme.
//
// A secret is first split into one group share per group, any
// GroupThreshold of which recover the secret. Each group share is then split
// again among that group's members with the group's own threshold. A
// qualifying coalition needs GroupThreshold groups, each contributing at
// least its member threshold of shares.
//
// Every share carries a five byte header (see Share) with a random 16-bit
// identifier and the thresholds of both levels, so Combine can reject shares
// from different split operations and fail with ErrInsufficientGroups
// instead of returning wrong bytes. The header's 4-bit fields limit both
// levels to 16 entries even though the underlying flat scheme supports 255.
//
// Example:
//
//	groups := []sskr.GroupDescriptor{{Threshold: 2, Count: 3}, {Threshold: 3, Count: 5}}
//	shares, err := sskr.Generate(2, groups, secret, rng)
//	// distribute shares[0] to the first group, shares[1] to the second
//
//	secret, err := sskr.Combine([]*sskr.Share{shares[0][0], shares[0][2],
//	    shares[1][1], shares[1][2], shares[1][4]})
package sskr
