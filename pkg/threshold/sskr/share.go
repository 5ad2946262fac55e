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
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HeaderLength is the size of the metadata prefix of a serialized share.
const HeaderLength = 5

// Share is a single member share of a hierarchical split.
//
// Serialized layout (big-endian identifier, counts and thresholds stored
// minus one so 16 fits in four bits):
//
//	byte 0-1  identifier
//	byte 2    (GroupCount-1)<<4 | (GroupThreshold-1)
//	byte 3    GroupIndex<<4 | (MemberThreshold-1)
//	byte 4    reserved(0)<<4 | MemberIndex
//	byte 5..  payload
type Share struct {
	// Identifier is shared by every share of one split operation.
	Identifier uint16 `json:"identifier"`

	// GroupCount and GroupThreshold describe the top level.
	GroupCount     int `json:"group_count"`
	GroupThreshold int `json:"group_threshold"`

	// GroupIndex is 0-based and below GroupCount.
	GroupIndex int `json:"group_index"`

	// MemberThreshold is the threshold of this share's group.
	MemberThreshold int `json:"member_threshold"`

	// MemberIndex is 0-based within the group.
	MemberIndex int `json:"member_index"`

	// Value is the share payload, the same length as the secret.
	Value []byte `json:"-"`
}

// ParseShare decodes a serialized share.
func ParseShare(data []byte) (*Share, error) {
	s := &Share{}
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Share) MarshalBinary() ([]byte, error) {
	if err := s.checkFields(); err != nil {
		return nil, err
	}
	out := make([]byte, HeaderLength+len(s.Value))
	out[0] = byte(s.Identifier >> 8)
	out[1] = byte(s.Identifier)
	out[2] = byte(s.GroupCount-1)<<4 | byte(s.GroupThreshold-1)
	out[3] = byte(s.GroupIndex)<<4 | byte(s.MemberThreshold-1)
	out[4] = byte(s.MemberIndex)
	copy(out[HeaderLength:], s.Value)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Share) UnmarshalBinary(data []byte) error {
	if len(data) <= HeaderLength {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncatedShare, len(data), HeaderLength+1)
	}
	if data[4]>>4 != 0 {
		return fmt.Errorf("%w: reserved bits set", ErrInvalidShare)
	}
	parsed := Share{
		Identifier:      uint16(data[0])<<8 | uint16(data[1]),
		GroupCount:      int(data[2]>>4) + 1,
		GroupThreshold:  int(data[2]&0x0f) + 1,
		GroupIndex:      int(data[3] >> 4),
		MemberThreshold: int(data[3]&0x0f) + 1,
		MemberIndex:     int(data[4] & 0x0f),
		Value:           append([]byte(nil), data[HeaderLength:]...),
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*s = parsed
	return nil
}

// checkFields reports values that cannot be represented in the header.
func (s *Share) checkFields() error {
	fields := []struct {
		name     string
		value    int
		min, max int
	}{
		{"group count", s.GroupCount, 1, MaxGroups},
		{"group threshold", s.GroupThreshold, 1, MaxGroups},
		{"group index", s.GroupIndex, 0, MaxGroups - 1},
		{"member threshold", s.MemberThreshold, 1, MaxMembers},
		{"member index", s.MemberIndex, 0, MaxMembers - 1},
	}
	for _, f := range fields {
		if f.value < f.min || f.value > f.max {
			return fmt.Errorf("%w: %s %d outside %d..%d", ErrFieldOverflow, f.name, f.value, f.min, f.max)
		}
	}
	return nil
}

// Validate checks that the header fits its fields and is self-consistent.
func (s *Share) Validate() error {
	if err := s.checkFields(); err != nil {
		return err
	}
	if s.GroupThreshold > s.GroupCount {
		return fmt.Errorf("%w: group threshold %d exceeds group count %d",
			ErrInvalidShare, s.GroupThreshold, s.GroupCount)
	}
	if s.GroupIndex >= s.GroupCount {
		return fmt.Errorf("%w: group index %d not below group count %d",
			ErrInvalidShare, s.GroupIndex, s.GroupCount)
	}
	if len(s.Value) == 0 {
		return fmt.Errorf("%w: share value is empty", ErrInvalidShare)
	}
	return nil
}

// Bytes returns the serialized share, or nil if the header is invalid.
func (s *Share) Bytes() []byte {
	b, err := s.MarshalBinary()
	if err != nil {
		return nil
	}
	return b
}

// String renders the serialized share in hex (for debugging).
func (s *Share) String() string {
	return fmt.Sprintf("[%s]", hex.EncodeToString(s.Bytes()))
}

// MarshalJSON implements json.Marshaler. The header fields are spelled out
// next to the hex-encoded serialized share.
func (s *Share) MarshalJSON() ([]byte, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return nil, err
	}
	type Alias Share
	return json.Marshal(&struct {
		*Alias
		Share string `json:"share"`
	}{
		Alias: (*Alias)(s),
		Share: hex.EncodeToString(data),
	})
}

// UnmarshalJSON implements json.Unmarshaler. Only the serialized "share"
// field is authoritative; the spelled-out header must agree with it.
func (s *Share) UnmarshalJSON(data []byte) error {
	type Alias Share
	aux := &struct {
		*Alias
		Share string `json:"share"`
	}{
		Alias: &Alias{},
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	raw, err := hex.DecodeString(aux.Share)
	if err != nil {
		return fmt.Errorf("sskr: invalid share encoding: %w", err)
	}
	parsed, err := ParseShare(raw)
	if err != nil {
		return err
	}
	spelled := Share(*aux.Alias)
	if spelled.Identifier != parsed.Identifier ||
		spelled.GroupCount != parsed.GroupCount ||
		spelled.GroupThreshold != parsed.GroupThreshold ||
		spelled.GroupIndex != parsed.GroupIndex ||
		spelled.MemberThreshold != parsed.MemberThreshold ||
		spelled.MemberIndex != parsed.MemberIndex {
		return fmt.Errorf("%w: header fields disagree with encoded share", ErrInconsistentMetadata)
	}
	*s = *parsed
	return nil
}
