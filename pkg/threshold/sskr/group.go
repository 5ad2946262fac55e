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

	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
)

const (
	// MaxGroups is the largest number of groups a share header can describe.
	MaxGroups = 16

	// MaxMembers is the largest member count per group a share header can
	// describe. The flat scheme alone supports up to 255.
	MaxMembers = 16
)

// GroupDescriptor describes one group: Count member shares, any Threshold of
// which recover the group share.
type GroupDescriptor struct {
	Threshold int `json:"threshold" yaml:"threshold"`
	Count     int `json:"count" yaml:"count"`
}

// String renders the descriptor as "threshold-of-count".
func (g GroupDescriptor) String() string {
	return fmt.Sprintf("%d-of-%d", g.Threshold, g.Count)
}

// CountShares returns the total number of shares Generate would emit for
// the group set. It validates exactly as Generate does.
func CountShares(groupThreshold int, groups []GroupDescriptor) (int, error) {
	if err := validateGroups(groupThreshold, groups); err != nil {
		return 0, err
	}
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total, nil
}

func validateGroups(groupThreshold int, groups []GroupDescriptor) error {
	if len(groups) < 1 || len(groups) > MaxGroups {
		return fmt.Errorf("%w: group count must be between 1 and %d, got %d",
			ErrInvalidGroupSet, MaxGroups, len(groups))
	}
	if groupThreshold < 1 || groupThreshold > len(groups) {
		return fmt.Errorf("%w: group threshold must be between 1 and %d, got %d",
			ErrInvalidGroupSet, len(groups), groupThreshold)
	}
	for i, g := range groups {
		if g.Threshold < 1 || g.Count < g.Threshold || g.Count > secretsharing.MaxShares {
			return fmt.Errorf("%w: group %d has invalid threshold %s",
				ErrInvalidGroupSet, i, g)
		}
	}
	// The flat scheme would accept these; the 4-bit member index cannot.
	for i, g := range groups {
		if g.Count > MaxMembers {
			return fmt.Errorf("%w: group %d has %d members, header holds at most %d",
				ErrFieldOverflow, i, g.Count, MaxMembers)
		}
	}
	return nil
}
