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


// Package secretsharing implements Shamir's Secret Sharing Scheme.
//
// Shamir's Secret Sharing is a cryptographic algorithm that divides a secret
// into N shares, where any M shares (threshold) can reconstruct the original
// secret, but M-1 or fewer shares reveal absolutely no information about the
// secret. This is achieved through polynomial interpolation in a finite field.
//
// # Mathematical Foundation
//
// Each byte of the secret is treated as an independent single-byte scheme.
// The byte is the constant term (a0) of a polynomial of degree M-1:
//
//	p(x) = a0 + a1*x + a2*x^2 + ... + a(M-1)*x^(M-1)
//
// The coefficients a1 through a(M-1) come from a caller supplied
// RandomSource, and share i holds p(i) for i = 1..N. The secret is recovered
// by Lagrange interpolation at x=0. All arithmetic is performed in GF(2^8)
// (see package gf256), so results are exact.
//
// # Randomness
//
// The package never generates entropy. Every Split call takes a
// RandomSource; package rand provides software, TPM 2.0 and PKCS#11 backed
// sources as well as deterministic sources for test vectors. The source is
// called synchronously and any latency it has is passed through.
//
// # Thresholds
//
// Flat shares carry only an index, not the threshold. Combine therefore
// cannot detect that too few shares were supplied and returns wrong bytes in
// that case. CombineWithThreshold and Shamir.Combine take the threshold and
// fail with ErrInsufficientShares instead. The hierarchical scheme in
// package sskr embeds thresholds in each share and always fails loudly.
//
// # Usage Example
//
//	shares, err := secretsharing.Split(3, 5, secret, rng)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later, reconstruct with any 3 shares
//	reconstructed, err := secretsharing.CombineWithThreshold(3, shares[:3])
//
// # Constraints
//
//   - Threshold M must satisfy: 1 <= M <= N <= 255
//   - Share indices are bytes (1-255), index 0 is reserved
//   - Shares and secrets are plain byte slices owned by the caller; use Zero
//     to scrub them after use
//
// # References
//
// - Shamir, Adi (1979). "How to Share a Secret"
// - Finite field arithmetic: GF(2^8) with AES polynomial (0x11B)
package secretsharing
