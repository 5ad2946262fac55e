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


package secretsharing

import "fmt"

// RandomSource supplies the random bytes consumed while splitting.
// Rand must return exactly n bytes. The engine never generates entropy
// itself; pkg/crypto/rand provides software and hardware backed sources.
type RandomSource interface {
	Rand(n int) ([]byte, error)
}

// RandomFunc adapts a plain function to RandomSource.
type RandomFunc func(n int) ([]byte, error)

// Rand calls f(n).
func (f RandomFunc) Rand(n int) ([]byte, error) {
	return f(n)
}

// ReadRandom draws n bytes from rng and enforces the length contract.
func ReadRandom(rng RandomSource, n int) ([]byte, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: no random source", ErrRandomSourceContract)
	}
	b, err := rng.Rand(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSourceContract, err)
	}
	if len(b) != n {
		Zero(b)
		return nil, fmt.Errorf("%w: requested %d bytes, got %d", ErrRandomSourceContract, n, len(b))
	}
	return b, nil
}

// Zero overwrites b with zeros. Callers use it to scrub secrets and shares
// once they are no longer needed.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
