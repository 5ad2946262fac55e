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


// Package encoding converts secrets and shares to and from their text forms.
package encoding

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownEncoding is returned for an encoding name other than hex or base64.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrInvalidText is returned when input cannot be decoded.
	ErrInvalidText = errors.New("invalid encoded text")
)

// Encoding names a text form for binary data.
type Encoding string

const (
	Hex    Encoding = "hex"
	Base64 Encoding = "base64"
)

// Parse returns the Encoding for name, case insensitive.
func Parse(name string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(name))) {
	case Hex, "":
		return Hex, nil
	case Base64:
		return Base64, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// String returns the encoding name.
func (e Encoding) String() string {
	return string(e)
}

// Encode renders data in the encoding. Unknown encodings fall back to hex.
func (e Encoding) Encode(data []byte) string {
	if e == Base64 {
		return base64.StdEncoding.EncodeToString(data)
	}
	return hex.EncodeToString(data)
}

// Decode parses text in the encoding. Surrounding whitespace is ignored and
// hex input may carry a 0x prefix.
func (e Encoding) Decode(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidText)
	}
	var (
		out []byte
		err error
	)
	switch e {
	case Base64:
		out, err = base64.StdEncoding.DecodeString(text)
	case Hex, "":
		text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
		out, err = hex.DecodeString(text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, string(e))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidText, err)
	}
	return out, nil
}

// DecodeLines decodes every non-empty, non-comment line of text.
func (e Encoding) DecodeLines(text string) ([][]byte, error) {
	var out [][]byte
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := e.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, b)
	}
	return out, nil
}
