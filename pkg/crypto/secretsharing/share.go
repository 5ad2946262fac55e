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
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Share represents a single share of a secret.
type Share struct {
	Index byte   // Share index (1-255)
	Value []byte // Share value, same length as the secret
}

// ParseShare decodes the binary form produced by MarshalBinary:
// one index byte followed by the payload.
func ParseShare(data []byte) (Share, error) {
	var s Share
	if err := s.UnmarshalBinary(data); err != nil {
		return Share{}, err
	}
	return s, nil
}

// MarshalBinary encodes the share as index || payload.
func (s Share) MarshalBinary() ([]byte, error) {
	if s.Index == 0 {
		return nil, ErrInvalidShareIndex
	}
	out := make([]byte, 1+len(s.Value))
	out[0] = s.Index
	copy(out[1:], s.Value)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Share) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("%w: share must hold an index and at least one byte", ErrInconsistentShareLength)
	}
	if data[0] == 0 {
		return ErrInvalidShareIndex
	}
	s.Index = data[0]
	s.Value = append([]byte(nil), data[1:]...)
	return nil
}

type shareJSON struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// MarshalJSON implements json.Marshaler. The payload is hex encoded.
func (s Share) MarshalJSON() ([]byte, error) {
	return json.Marshal(shareJSON{
		Index: int(s.Index),
		Value: hex.EncodeToString(s.Value),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Share) UnmarshalJSON(data []byte) error {
	var aux shareJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Index < 1 || aux.Index > MaxShares {
		return fmt.Errorf("%w: %d", ErrInvalidShareIndex, aux.Index)
	}
	value, err := hex.DecodeString(aux.Value)
	if err != nil {
		return fmt.Errorf("secretsharing: invalid share value: %w", err)
	}
	s.Index = byte(aux.Index)
	s.Value = value
	return nil
}

// String renders the share for debugging. It prints the payload, so never
// log it for real secrets.
func (s Share) String() string {
	return fmt.Sprintf("[share %d: %s]", s.Index, hex.EncodeToString(s.Value))
}
