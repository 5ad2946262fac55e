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


package shareset

import (
	"errors"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/storage"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

var (
	// ErrSetExists is returned when a manifest is already stored for a set ID.
	ErrSetExists = errors.New("shareset: set already exists")

	// ErrSetNotFound is returned when no manifest is stored for a set ID.
	ErrSetNotFound = errors.New("shareset: set not found")

	// ErrCorruptShare is returned when a stored share does not match its
	// manifest entry.
	ErrCorruptShare = errors.New("shareset: corrupt share")

	// ErrInvalidManifest is returned for unreadable or inconsistent manifests.
	ErrInvalidManifest = errors.New("shareset: invalid manifest")
)

var errorTypes = []struct {
	err  error
	name string
}{
	{sskr.ErrInvalidGroupSet, "invalid_group_set"},
	{sskr.ErrFieldOverflow, "field_overflow"},
	{sskr.ErrTruncatedShare, "truncated_share"},
	{sskr.ErrInvalidShare, "invalid_share"},
	{sskr.ErrIdentifierMismatch, "identifier_mismatch"},
	{sskr.ErrInconsistentMetadata, "inconsistent_metadata"},
	{sskr.ErrInsufficientGroups, "insufficient_groups"},
	{secretsharing.ErrEmptySecret, "empty_secret"},
	{secretsharing.ErrRandomSourceContract, "random_source"},
	{secretsharing.ErrNoShares, "no_shares"},
	{secretsharing.ErrInconsistentShareLength, "inconsistent_share_length"},
	{secretsharing.ErrDuplicateIndex, "duplicate_index"},
	{secretsharing.ErrInvalidThreshold, "invalid_threshold"},
	{secretsharing.ErrInvalidShareIndex, "invalid_share_index"},
	{secretsharing.ErrInsufficientShares, "insufficient_shares"},
	{ErrSetExists, "set_exists"},
	{ErrSetNotFound, "set_not_found"},
	{ErrCorruptShare, "corrupt_share"},
	{ErrInvalidManifest, "invalid_manifest"},
	{storage.ErrInvalidKey, "invalid_key"},
	{storage.ErrClosed, "storage_closed"},
}

// ErrorType maps err to the metric label used for it.
func ErrorType(err error) string {
	for _, et := range errorTypes {
		if errors.Is(err, et.err) {
			return et.name
		}
	}
	return "other"
}
