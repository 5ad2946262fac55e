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
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
)

// identifierLength is the number of random bytes drawn for the identifier.
const identifierLength = 2

// Generate splits secret into groups of member shares. Any groupThreshold
// groups, each with at least its member threshold of shares, recover the
// secret. The result holds one slice per group in descriptor order.
//
// Random bytes are drawn in a fixed order: the identifier, the top-level
// split, then each group's split. The same rng output therefore always
// produces the same shares.
func Generate(groupThreshold int, groups []GroupDescriptor, secret []byte, rng secretsharing.RandomSource) ([][]*Share, error) {
	if err := validateGroups(groupThreshold, groups); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	idBytes, err := secretsharing.ReadRandom(rng, identifierLength)
	if err != nil {
		return nil, err
	}
	identifier := uint16(idBytes[0])<<8 | uint16(idBytes[1])

	groupShares, err := secretsharing.Split(groupThreshold, len(groups), secret, rng)
	if err != nil {
		return nil, fmt.Errorf("sskr: top-level split: %w", err)
	}
	defer func() {
		for _, gs := range groupShares {
			secretsharing.Zero(gs.Value)
		}
	}()

	result := make([][]*Share, len(groups))
	for g, desc := range groups {
		members, err := secretsharing.Split(desc.Threshold, desc.Count, groupShares[g].Value, rng)
		if err != nil {
			return nil, fmt.Errorf("sskr: group %d split: %w", g, err)
		}
		result[g] = make([]*Share, len(members))
		for m, member := range members {
			result[g][m] = &Share{
				Identifier:      identifier,
				GroupCount:      len(groups),
				GroupThreshold:  groupThreshold,
				GroupIndex:      g,
				MemberThreshold: desc.Threshold,
				MemberIndex:     int(member.Index) - 1,
				Value:           member.Value,
			}
		}
	}
	return result, nil
}

// Combine recovers the secret from a set of shares produced by one Generate
// call. Groups holding fewer shares than their member threshold are
// ignored; if fewer than the group threshold remain, Combine fails with
// ErrInsufficientGroups rather than returning wrong bytes.
func Combine(shares []*Share) ([]byte, error) {
	secret, _, err := CombineDetailed(shares)
	return secret, err
}

// CombineDetailed is Combine that also reports the indices of the groups
// that were recovered, in ascending order.
func CombineDetailed(shares []*Share) ([]byte, []int, error) {
	if len(shares) == 0 {
		return nil, nil, ErrNoShares
	}
	for i, s := range shares {
		if s == nil {
			return nil, nil, fmt.Errorf("%w: share %d is nil", ErrInvalidShare, i)
		}
	}

	valueLen := len(shares[0].Value)
	for i, s := range shares {
		if len(s.Value) != valueLen {
			return nil, nil, fmt.Errorf("%w: share %d has %d bytes, expected %d",
				ErrInconsistentShareLength, i, len(s.Value), valueLen)
		}
	}

	identifiers := mapset.NewThreadUnsafeSet[uint16]()
	for _, s := range shares {
		identifiers.Add(s.Identifier)
	}
	if identifiers.Cardinality() > 1 {
		return nil, nil, fmt.Errorf("%w: %v", ErrIdentifierMismatch, identifiers.ToSlice())
	}

	first := shares[0]
	for i, s := range shares {
		if err := s.Validate(); err != nil {
			return nil, nil, fmt.Errorf("share %d: %w", i, err)
		}
		if s.GroupCount != first.GroupCount || s.GroupThreshold != first.GroupThreshold {
			return nil, nil, fmt.Errorf("%w: share %d has %d-of-%d groups, share 0 has %d-of-%d",
				ErrInconsistentMetadata, i, s.GroupThreshold, s.GroupCount,
				first.GroupThreshold, first.GroupCount)
		}
	}

	byGroup := make(map[int][]*Share)
	for _, s := range shares {
		byGroup[s.GroupIndex] = append(byGroup[s.GroupIndex], s)
	}
	groupIndices := make([]int, 0, len(byGroup))
	for g := range byGroup {
		groupIndices = append(groupIndices, g)
	}
	sort.Ints(groupIndices)

	var recovered []secretsharing.Share
	defer func() {
		for _, r := range recovered {
			secretsharing.Zero(r.Value)
		}
	}()
	var recoveredGroups []int

	for _, g := range groupIndices {
		members := byGroup[g]
		groupShare, ok, err := combineGroup(g, members)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		recovered = append(recovered, secretsharing.Share{
			Index: byte(g + 1),
			Value: groupShare,
		})
		recoveredGroups = append(recoveredGroups, g)
	}

	if len(recovered) < first.GroupThreshold {
		return nil, nil, fmt.Errorf("%w: need %d, recovered %d",
			ErrInsufficientGroups, first.GroupThreshold, len(recovered))
	}

	secret, err := secretsharing.CombineWithThreshold(first.GroupThreshold, recovered)
	if err != nil {
		return nil, nil, fmt.Errorf("sskr: top-level combine: %w", err)
	}
	return secret, recoveredGroups, nil
}

// combineGroup recovers one group share. It reports ok=false when the group
// is below its member threshold.
func combineGroup(group int, members []*Share) ([]byte, bool, error) {
	threshold := members[0].MemberThreshold
	seen := mapset.NewThreadUnsafeSet[int]()
	flat := make([]secretsharing.Share, 0, len(members))
	for _, m := range members {
		if m.MemberThreshold != threshold {
			return nil, false, fmt.Errorf("%w: group %d has member thresholds %d and %d",
				ErrInconsistentMetadata, group, threshold, m.MemberThreshold)
		}
		if !seen.Add(m.MemberIndex) {
			return nil, false, fmt.Errorf("%w: group %d member %d", ErrDuplicateIndex, group, m.MemberIndex)
		}
		flat = append(flat, secretsharing.Share{
			Index: byte(m.MemberIndex + 1),
			Value: m.Value,
		})
	}
	if len(flat) < threshold {
		return nil, false, nil
	}

	groupShare, err := secretsharing.CombineWithThreshold(threshold, flat)
	if err != nil {
		return nil, false, fmt.Errorf("sskr: group %d combine: %w", group, err)
	}
	return groupShare, true, nil
}
