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

import (
	"fmt"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/gf256"
)

// MaxShares is the largest number of shares a single split can produce.
// Index 0 is reserved for the secret itself.
const MaxShares = 255

// ShareConfig configures secret sharing parameters.
type ShareConfig struct {
	Threshold   int // M - minimum shares needed to reconstruct
	TotalShares int // N - total shares to create

	// Field overrides the GF(256) tables. Nil uses gf256.Default().
	Field *gf256.Field
}

// Shamir implements Shamir's Secret Sharing Scheme using finite field
// arithmetic in GF(256).
type Shamir struct {
	config *ShareConfig
	field  *gf256.Field
}

// NewShamir creates a new Shamir instance with the given configuration.
// Returns an error if the configuration is invalid.
func NewShamir(config *ShareConfig) (*Shamir, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config cannot be nil", ErrInvalidThreshold)
	}
	if err := validateThreshold(config.Threshold, config.TotalShares); err != nil {
		return nil, err
	}
	field := config.Field
	if field == nil {
		field = gf256.Default()
	}
	return &Shamir{
		config: config,
		field:  field,
	}, nil
}

// Threshold returns the configured reconstruction threshold.
func (s *Shamir) Threshold() int {
	return s.config.Threshold
}

// Split divides a secret into N shares, requiring M to reconstruct.
func (s *Shamir) Split(secret []byte, rng RandomSource) ([]Share, error) {
	return split(s.field, s.config.Threshold, s.config.TotalShares, secret, rng)
}

// Combine reconstructs the secret from M or more shares. Unlike the package
// level Combine, it knows the threshold and rejects short share sets.
func (s *Shamir) Combine(shares []Share) ([]byte, error) {
	return combine(s.field, s.config.Threshold, shares)
}

// Split divides secret into count shares with the given threshold, drawing
// (threshold-1)*len(secret) bytes from rng. Share indices run 1..count in
// order, so the same rng output always yields the same shares.
//
// A threshold of 1 replicates the secret into every share and consumes no
// randomness.
func Split(threshold, count int, secret []byte, rng RandomSource) ([]Share, error) {
	return split(gf256.Default(), threshold, count, secret, rng)
}

// Combine reconstructs a secret by Lagrange interpolation at x=0.
//
// Flat shares carry no threshold, so Combine cannot tell whether enough
// shares were supplied: fewer than the original threshold silently yields
// the wrong bytes. Use CombineWithThreshold when the threshold is known.
func Combine(shares []Share) ([]byte, error) {
	return combine(gf256.Default(), 0, shares)
}

// CombineWithThreshold is Combine with a threshold hint. It returns
// ErrInsufficientShares when fewer than threshold distinct shares are given.
func CombineWithThreshold(threshold int, shares []Share) ([]byte, error) {
	if threshold < 1 || threshold > MaxShares {
		return nil, fmt.Errorf("%w: threshold %d", ErrInvalidThreshold, threshold)
	}
	return combine(gf256.Default(), threshold, shares)
}

func validateThreshold(threshold, count int) error {
	if threshold < 1 {
		return fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalidThreshold, threshold)
	}
	if count < threshold {
		return fmt.Errorf("%w: total shares (%d) must be >= threshold (%d)", ErrInvalidThreshold, count, threshold)
	}
	if count > MaxShares {
		return fmt.Errorf("%w: total shares must be <= %d, got %d", ErrInvalidThreshold, MaxShares, count)
	}
	return nil
}

func split(f *gf256.Field, threshold, count int, secret []byte, rng RandomSource) ([]Share, error) {
	if err := validateThreshold(threshold, count); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	shares := make([]Share, count)
	for i := range shares {
		shares[i].Index = byte(i + 1)
		shares[i].Value = make([]byte, len(secret))
	}

	// A degree-0 polynomial is the constant secret.
	if threshold == 1 {
		for i := range shares {
			copy(shares[i].Value, secret)
		}
		return shares, nil
	}

	degree := threshold - 1
	random, err := ReadRandom(rng, degree*len(secret))
	if err != nil {
		return nil, err
	}
	defer Zero(random)

	// p(x) = a0 + a1*x + ... + a(m-1)*x^(m-1) where a0 is the secret byte
	// and a1..a(m-1) are the next degree bytes of random.
	coeffs := make([]byte, threshold)
	defer Zero(coeffs)
	for pos, b := range secret {
		coeffs[0] = b
		copy(coeffs[1:], random[pos*degree:(pos+1)*degree])
		for i := range shares {
			shares[i].Value[pos] = evaluatePolynomial(f, coeffs, shares[i].Index)
		}
	}
	return shares, nil
}

func combine(f *gf256.Field, threshold int, shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrNoShares
	}

	secretLen := len(shares[0].Value)
	for i, share := range shares {
		if len(share.Value) != secretLen {
			return nil, fmt.Errorf("%w: share %d has %d bytes, expected %d",
				ErrInconsistentShareLength, i, len(share.Value), secretLen)
		}
	}
	if secretLen == 0 {
		return nil, ErrEmptySecret
	}

	var seen [256]bool
	xs := make([]byte, len(shares))
	ys := make([][]byte, len(shares))
	for i, share := range shares {
		if share.Index == 0 {
			return nil, fmt.Errorf("%w: share %d has index 0", ErrInvalidShareIndex, i)
		}
		if seen[share.Index] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, share.Index)
		}
		seen[share.Index] = true
		xs[i] = share.Index
		ys[i] = share.Value
	}

	if threshold > 0 && len(shares) < threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, threshold, len(shares))
	}

	weights, err := lagrangeBasis(f, xs, 0)
	if err != nil {
		return nil, err
	}

	secret := make([]byte, secretLen)
	interpolate(f, weights, ys, secret)
	return secret, nil
}
