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


// Package validation checks user supplied identifiers and group
// specifications before they reach storage or the sharing schemes.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

var (
	// setIDPattern matches safe share set identifiers
	setIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

	// groupSpecPattern matches "2-of-3", "2of3" and "2/3"
	groupSpecPattern = regexp.MustCompile(`^\s*(\d{1,3})\s*(?:-?of-?|/)\s*(\d{1,3})\s*$`)
)

// ValidateSetID validates a share set identifier. Set IDs become the top
// level directory of a stored share set, so separators and parent
// references are rejected.
func ValidateSetID(id string) error {
	if id == "" {
		return fmt.Errorf("set ID cannot be empty")
	}
	if strings.Contains(id, "\x00") {
		return fmt.Errorf("set ID contains null byte")
	}
	if len(id) > 128 {
		return fmt.Errorf("set ID too long (max 128 characters)")
	}
	if id == "." || id == ".." {
		return fmt.Errorf("set ID contains path traversal attempt")
	}
	for _, r := range id {
		if r < 32 || r == 127 {
			return fmt.Errorf("set ID contains control characters")
		}
	}
	if !setIDPattern.MatchString(id) {
		return fmt.Errorf("set ID contains invalid characters (allowed: a-z, A-Z, 0-9, -, _, .)")
	}
	return nil
}

// ParseGroupSpec parses a single group such as "2-of-3". Range checks are
// left to sskr so the error taxonomy stays in one place.
func ParseGroupSpec(spec string) (sskr.GroupDescriptor, error) {
	m := groupSpecPattern.FindStringSubmatch(spec)
	if m == nil {
		return sskr.GroupDescriptor{}, fmt.Errorf("invalid group %q (expected THRESHOLD-of-COUNT)", SanitizeForLog(spec))
	}
	threshold, _ := strconv.Atoi(m[1])
	count, _ := strconv.Atoi(m[2])
	return sskr.GroupDescriptor{Threshold: threshold, Count: count}, nil
}

// ParseGroupSpecs parses a comma separated list of groups, for example
// "1-of-1,2-of-3".
func ParseGroupSpecs(specs string) ([]sskr.GroupDescriptor, error) {
	if strings.TrimSpace(specs) == "" {
		return nil, fmt.Errorf("no groups specified")
	}
	parts := strings.Split(specs, ",")
	groups := make([]sskr.GroupDescriptor, 0, len(parts))
	for _, p := range parts {
		g, err := ParseGroupSpec(p)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// FormatGroupSpecs is the inverse of ParseGroupSpecs.
func FormatGroupSpecs(groups []sskr.GroupDescriptor) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = g.String()
	}
	return strings.Join(parts, ",")
}

// SanitizeForLog sanitizes a string for safe logging (prevents log injection).
func SanitizeForLog(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	if len(s) > 1000 {
		s = s[:1000] + "...[truncated]"
	}
	return s
}
