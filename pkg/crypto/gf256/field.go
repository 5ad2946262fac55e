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


// Package gf256 implements arithmetic in the finite field GF(2^8).
//
// The field is defined by the AES irreducible polynomial
// x^8 + x^4 + x^3 + x + 1 (0x11B) with generator 0x03. Addition and
// subtraction are XOR; multiplication and division use precomputed
// exponent and logarithm tables.
//
// A Field is immutable once New returns and is safe for concurrent use.
package gf256

import (
	"errors"
	"sync"
)

const (
	// Polynomial is the irreducible polynomial defining the field.
	Polynomial = 0x11B

	// Generator is the multiplicative generator used to build the tables.
	Generator = 0x03

	// Order is the size of the multiplicative group.
	Order = 255
)

// ErrInvalidOperand is returned when dividing by, or inverting, zero.
var ErrInvalidOperand = errors.New("gf256: invalid operand")

// Field holds the exponent and logarithm tables for GF(256).
type Field struct {
	exp [512]byte
	log [256]byte
}

var defaultField = sync.OnceValue(New)

// Default returns the process-wide field, building its tables on first use.
func Default() *Field {
	return defaultField()
}

// New builds a Field with freshly computed tables.
func New() *Field {
	f := &Field{}
	var x byte = 1
	for i := 0; i < Order; i++ {
		f.exp[i] = x
		f.log[x] = byte(i)
		x = mulSlow(x, Generator)
	}
	// Doubling the exponent table removes the modulo from Mul.
	for i := Order; i < len(f.exp); i++ {
		f.exp[i] = f.exp[i-Order]
	}
	return f
}

// Add returns a + b.
func (f *Field) Add(a, b byte) byte {
	return a ^ b
}

// Sub returns a - b, which in characteristic 2 is the same as Add.
func (f *Field) Sub(a, b byte) byte {
	return a ^ b
}

// Mul returns a * b.
func (f *Field) Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[int(f.log[a])+int(f.log[b])]
}

// Div returns a / b. Division by zero returns ErrInvalidOperand.
func (f *Field) Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrInvalidOperand
	}
	if a == 0 {
		return 0, nil
	}
	return f.exp[int(f.log[a])+Order-int(f.log[b])], nil
}

// Inverse returns the multiplicative inverse of a.
func (f *Field) Inverse(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrInvalidOperand
	}
	return f.exp[Order-int(f.log[a])], nil
}

// Exp returns Generator^n.
func (f *Field) Exp(n int) byte {
	n %= Order
	if n < 0 {
		n += Order
	}
	return f.exp[n]
}

// Log returns the discrete logarithm of a to base Generator.
func (f *Field) Log(a byte) (int, error) {
	if a == 0 {
		return 0, ErrInvalidOperand
	}
	return int(f.log[a]), nil
}

// mulSlow multiplies without tables (Russian peasant). Only used while
// building the tables.
func mulSlow(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= Polynomial & 0xFF
		}
		b >>= 1
	}
	return p
}
