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


// Package shareset persists SSKR share sets.
//
// A Service splits a secret, writes each member share as its own object
// and records a YAML manifest describing the group layout together with a
// SHA-256 digest of every share. Load reads a set back, verifying digests,
// and tolerates missing shares so a partially lost set can still be
// recovered when enough shares remain.
//
//	svc, _ := shareset.New(&shareset.Config{Backend: store})
//	res, _ := svc.Split(ctx, &shareset.SplitRequest{
//		GroupThreshold: 1,
//		Groups:         []sskr.GroupDescriptor{{Threshold: 2, Count: 3}},
//		Secret:         secret,
//	})
//	loaded, _ := svc.Load(ctx, res.SetID)
//	out, _ := svc.Combine(ctx, loaded.Shares)
package shareset
