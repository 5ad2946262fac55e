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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleShare() *Share {
	return &Share{
		Identifier:      0xBEEF,
		GroupCount:      16,
		GroupThreshold:  16,
		GroupIndex:      15,
		MemberThreshold: 16,
		MemberIndex:     15,
		Value:           []byte{0x01, 0x02, 0x03},
	}
}

func TestShare_MarshalBinary_Layout(t *testing.T) {
	data, err := sampleShare().MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "beefffff0f010203", hex.EncodeToString(data))

	s := &Share{
		Identifier:      0x1100,
		GroupCount:      2,
		GroupThreshold:  2,
		GroupIndex:      1,
		MemberThreshold: 3,
		MemberIndex:     4,
		Value:           []byte{0xaa},
	}
	data, err = s.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "1100111204aa", hex.EncodeToString(data))
}

func TestShare_RoundTrip(t *testing.T) {
	orig := sampleShare()
	data, err := orig.MarshalBinary()
	require.NoError(t, err)

	parsed, err := ParseShare(data)
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)
}

func TestShare_MarshalBinary_FieldOverflow(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Share)
	}{
		{"group count 17", func(s *Share) { s.GroupCount = 17 }},
		{"group count 0", func(s *Share) { s.GroupCount = 0 }},
		{"group threshold 17", func(s *Share) { s.GroupThreshold = 17 }},
		{"group index 16", func(s *Share) { s.GroupIndex = 16 }},
		{"group index negative", func(s *Share) { s.GroupIndex = -1 }},
		{"member threshold 17", func(s *Share) { s.MemberThreshold = 17 }},
		{"member index 16", func(s *Share) { s.MemberIndex = 16 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleShare()
			tt.mutate(s)
			_, err := s.MarshalBinary()
			assert.ErrorIs(t, err, ErrFieldOverflow)
			assert.Nil(t, s.Bytes())
		})
	}
}

func TestParseShare_Errors(t *testing.T) {
	valid, err := sampleShare().MarshalBinary()
	require.NoError(t, err)

	for n := 0; n <= HeaderLength; n++ {
		_, err := ParseShare(valid[:n])
		assert.ErrorIs(t, err, ErrTruncatedShare, "length %d", n)
	}

	reserved := append([]byte(nil), valid...)
	reserved[4] |= 0x10
	_, err = ParseShare(reserved)
	assert.ErrorIs(t, err, ErrInvalidShare)

	// group count 2, group threshold 3
	badThreshold, _ := hex.DecodeString("0001120000ff")
	_, err = ParseShare(badThreshold)
	assert.ErrorIs(t, err, ErrInvalidShare)

	// group count 1, group index 1
	badIndex, _ := hex.DecodeString("0001001000ff")
	_, err = ParseShare(badIndex)
	assert.ErrorIs(t, err, ErrInvalidShare)
}

func TestParseShare_DoesNotAliasInput(t *testing.T) {
	data, err := sampleShare().MarshalBinary()
	require.NoError(t, err)
	parsed, err := ParseShare(data)
	require.NoError(t, err)

	data[HeaderLength] = 0xff
	assert.Equal(t, byte(0x01), parsed.Value[0])
}

func TestShare_JSON(t *testing.T) {
	orig := sampleShare()
	data, err := json.Marshal(orig)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"share":"beefffff0f010203"`)
	assert.Contains(t, string(data), `"group_index":15`)

	var decoded Share
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *orig, decoded)

	tampered := []byte(`{"identifier":1,"group_count":16,"group_threshold":16,"group_index":15,` +
		`"member_threshold":16,"member_index":15,"share":"beefffff0f010203"}`)
	assert.ErrorIs(t, json.Unmarshal(tampered, &decoded), ErrInconsistentMetadata)

	assert.Error(t, json.Unmarshal([]byte(`{"share":"zz"}`), &decoded))
}

func TestShare_String(t *testing.T) {
	assert.Equal(t, "[beefffff0f010203]", sampleShare().String())
}

func TestGroupDescriptor_String(t *testing.T) {
	assert.Equal(t, "2-of-3", GroupDescriptor{Threshold: 2, Count: 3}.String())
}
