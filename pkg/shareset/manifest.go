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
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-sskr/pkg/storage"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

// ManifestVersion is written into every manifest.
const ManifestVersion = 1

// Manifest describes a stored share set. It never contains share bytes.
type Manifest struct {
	Version        int                    `yaml:"version" json:"version"`
	SetID          string                 `yaml:"set_id" json:"set_id"`
	Identifier     string                 `yaml:"identifier" json:"identifier"`
	GroupThreshold int                    `yaml:"group_threshold" json:"group_threshold"`
	Groups         []sskr.GroupDescriptor `yaml:"groups" json:"groups"`
	SecretLength   int                    `yaml:"secret_length" json:"secret_length"`
	RandomSource   string                 `yaml:"random_source,omitempty" json:"random_source,omitempty"`
	CreatedAt      time.Time              `yaml:"created_at" json:"created_at"`
	Shares         []ManifestEntry        `yaml:"shares" json:"shares"`
}

// ManifestEntry locates one member share and records its digest.
type ManifestEntry struct {
	Group  int    `yaml:"group" json:"group"`
	Member int    `yaml:"member" json:"member"`
	Key    string `yaml:"key" json:"key"`
	SHA256 string `yaml:"sha256" json:"sha256"`
}

// TotalShares returns the number of shares the set was split into.
func (m *Manifest) TotalShares() int {
	total := 0
	for _, g := range m.Groups {
		total += g.Count
	}
	return total
}

// Validate checks the manifest against its own group layout.
func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidManifest, m.Version)
	}
	if _, err := sskr.CountShares(m.GroupThreshold, m.Groups); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if len(m.Shares) != m.TotalShares() {
		return fmt.Errorf("%w: %d share entries for %d shares",
			ErrInvalidManifest, len(m.Shares), m.TotalShares())
	}
	for _, e := range m.Shares {
		if e.Group < 0 || e.Group >= len(m.Groups) || e.Member < 0 || e.Member >= m.Groups[e.Group].Count {
			return fmt.Errorf("%w: entry %d/%d out of range", ErrInvalidManifest, e.Group, e.Member)
		}
		if e.Key != storage.ShareKey(m.SetID, e.Group, e.Member) {
			return fmt.Errorf("%w: unexpected key %q", ErrInvalidManifest, e.Key)
		}
	}
	return nil
}

func marshalManifest(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

func unmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// verifyDigest compares data against the hex digest in constant time.
func verifyDigest(data []byte, want string) bool {
	expected, err := hex.DecodeString(want)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)
	return subtle.ConstantTimeCompare(sum[:], expected) == 1
}
