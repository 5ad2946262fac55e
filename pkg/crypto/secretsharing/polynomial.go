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

// evaluatePolynomial evaluates a polynomial at point x in GF(256).
// coeffs[0] is the constant term.
// Uses Horner's method: p(x) = a0 + x(a1 + x(a2 + ... + x*an))
func evaluatePolynomial(f *gf256.Field, coeffs []byte, x byte) byte {
	if len(coeffs) == 0 {
		return 0
	}
	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = f.Add(f.Mul(result, x), coeffs[i])
	}
	return result
}

// lagrangeBasis returns the Lagrange basis values l_i(at) for the points xs:
//
//	l_i(at) = prod_{j != i} (at - x_j) / (x_i - x_j)
//
// The weights depend only on the x-coordinates, so they are computed once
// and reused for every byte position.
func lagrangeBasis(f *gf256.Field, xs []byte, at byte) ([]byte, error) {
	weights := make([]byte, len(xs))
	for i, xi := range xs {
		var numerator, denominator byte = 1, 1
		for j, xj := range xs {
			if i == j {
				continue
			}
			numerator = f.Mul(numerator, f.Sub(at, xj))
			denominator = f.Mul(denominator, f.Sub(xi, xj))
		}
		w, err := f.Div(numerator, denominator)
		if err != nil {
			return nil, fmt.Errorf("%w: x=%d", ErrDuplicateIndex, xi)
		}
		weights[i] = w
	}
	return weights, nil
}

// interpolate evaluates, at the point used to build weights, the polynomial
// passing through (x_i, ys[i][pos]) for every byte position and writes the
// result into out.
func interpolate(f *gf256.Field, weights []byte, ys [][]byte, out []byte) {
	for pos := range out {
		var acc byte
		for i, w := range weights {
			acc = f.Add(acc, f.Mul(w, ys[i][pos]))
		}
		out[pos] = acc
	}
}
