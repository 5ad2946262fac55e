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

import "errors"

var (
	// ErrInvalidThreshold is returned when threshold and share count do not
	// satisfy 1 <= threshold <= count <= 255.
	ErrInvalidThreshold = errors.New("secretsharing: invalid threshold")

	// ErrEmptySecret is returned when splitting a zero-length secret.
	ErrEmptySecret = errors.New("secretsharing: secret cannot be empty")

	// ErrRandomSourceContract is returned when the random source is missing
	// or returns a different number of bytes than requested.
	ErrRandomSourceContract = errors.New("secretsharing: random source contract violation")

	// ErrNoShares is returned when combining an empty share set.
	ErrNoShares = errors.New("secretsharing: no shares provided")

	// ErrInconsistentShareLength is returned when share payloads differ in length.
	ErrInconsistentShareLength = errors.New("secretsharing: shares don't all have the same length")

	// ErrDuplicateIndex is returned when two shares carry the same index.
	ErrDuplicateIndex = errors.New("secretsharing: duplicate share index")

	// ErrInvalidShareIndex is returned for share index 0, which is the
	// evaluation point of the secret itself.
	ErrInvalidShareIndex = errors.New("secretsharing: invalid share index")

	// ErrInsufficientShares is returned when fewer shares than the declared
	// threshold are supplied.
	ErrInsufficientShares = errors.New("secretsharing: insufficient shares")
)
