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


package sskr

import (
	"errors"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
)

var (
	// ErrInvalidGroupSet is returned when the group threshold or a group
	// descriptor is out of range.
	ErrInvalidGroupSet = errors.New("sskr: invalid group set")

	// ErrFieldOverflow is returned when a header value does not fit its
	// 4-bit field.
	ErrFieldOverflow = errors.New("sskr: header field overflow")

	// ErrTruncatedShare is returned when a serialized share is shorter than
	// the header plus one payload byte.
	ErrTruncatedShare = errors.New("sskr: truncated share")

	// ErrInvalidShare is returned for a header that decodes but is not
	// self-consistent, e.g. a group index beyond the group count.
	ErrInvalidShare = errors.New("sskr: invalid share")

	// ErrIdentifierMismatch is returned when shares from different split
	// operations are combined.
	ErrIdentifierMismatch = errors.New("sskr: shares have different identifiers")

	// ErrInconsistentMetadata is returned when shares with the same
	// identifier disagree on group count, group threshold or the member
	// threshold of a group.
	ErrInconsistentMetadata = errors.New("sskr: inconsistent share metadata")

	// ErrInsufficientGroups is returned when fewer groups than the group
	// threshold can be recovered.
	ErrInsufficientGroups = errors.New("sskr: insufficient groups")
)

// Errors shared with the flat scheme. They are re-exported so callers of
// this package can match every failure with errors.Is against one package.
var (
	ErrEmptySecret             = secretsharing.ErrEmptySecret
	ErrRandomSourceContract    = secretsharing.ErrRandomSourceContract
	ErrNoShares                = secretsharing.ErrNoShares
	ErrInconsistentShareLength = secretsharing.ErrInconsistentShareLength
	ErrDuplicateIndex          = secretsharing.ErrDuplicateIndex
)
