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


// Package rand provides the random sources consumed when splitting secrets.
//
// Splitting never creates entropy on its own: every split call takes a
// source, and a Resolver from this package is the usual choice. A Resolver
// satisfies secretsharing.RandomSource (Rand) and io.Reader (Read).
//
// # Sources
//
//   - Software: crypto/rand
//   - TPM2: TPM 2.0 GetRandom (build tag "tpm2")
//   - PKCS11: C_GenerateRandom on an HSM slot (build tag "pkcs11")
//   - Auto: the best available of the above, hardware first
//
// Hardware sources can block while the device produces entropy. Callers
// that need a deadline wrap the split call themselves.
//
// # Deterministic sources
//
// NewDeterministic and NewCounter return fixed byte sequences for test
// vectors. They are not selectable through Config and must never be used
// for real secrets.
//
// # Thread Safety
//
// All Resolver implementations are safe for concurrent use.
package rand

import (
	"crypto/rand"
	"fmt"
)

// Mode specifies which RNG source to use.
type Mode string

const (
	// ModeAuto selects the best available source.
	// Preference order: PKCS#11 > TPM2 > Software
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand
	ModeSoftware Mode = "software"

	// ModeTPM2 uses the TPM 2.0 hardware RNG
	ModeTPM2 Mode = "tpm2"

	// ModePKCS11 uses a PKCS#11 hardware security module RNG
	ModePKCS11 Mode = "pkcs11"
)

// Config contains RNG configuration.
type Config struct {
	// Mode specifies the primary RNG source. Defaults to ModeAuto.
	Mode Mode `yaml:"mode"`

	// FallbackMode is used when the primary source fails a request.
	// Typical usage: Mode=ModeTPM2, FallbackMode=ModeSoftware
	FallbackMode Mode `yaml:"fallback_mode,omitempty"`

	TPM2   *TPM2Config   `yaml:"tpm2,omitempty"`
	PKCS11 *PKCS11Config `yaml:"pkcs11,omitempty"`
}

// TPM2Config contains configuration for the TPM 2.0 RNG.
type TPM2Config struct {
	// Device path (default: "/dev/tpmrm0"). Ignored with UseSimulator.
	Device string `yaml:"device"`

	// MaxRequestSize caps bytes per GetRandom call (default: 32).
	MaxRequestSize int `yaml:"max_request_size"`

	// UseSimulator connects to a TCP simulator such as swtpm.
	UseSimulator  bool   `yaml:"use_simulator"`
	SimulatorHost string `yaml:"simulator_host"`
	SimulatorPort int    `yaml:"simulator_port"`
}

// PKCS11Config contains configuration for the PKCS#11 RNG.
type PKCS11Config struct {
	// Module path to the PKCS#11 library (e.g., /usr/lib/softhsm/libsofthsm2.so)
	Module string `yaml:"module"`

	// SlotID specifies the slot containing the RNG
	SlotID uint `yaml:"slot_id"`

	// PIN logs the session in when non-empty
	PIN string `yaml:"pin,omitempty"`
}

// Resolver is a random source. Applications create one at startup, pass it
// to every split, and close it on shutdown.
type Resolver interface {
	// Rand returns exactly n random bytes or an error.
	Rand(n int) ([]byte, error)

	// Read implements io.Reader.
	Read(p []byte) (n int, err error)

	// Mode reports the source actually in use.
	Mode() Mode

	// Available returns true if the source is ready.
	Available() bool

	// Close releases any device handles.
	Close() error
}

// NewResolver creates a resolver. config may be nil, a Mode or a *Config.
// Returns an error if the requested mode cannot be opened.
func NewResolver(config interface{}) (Resolver, error) {
	return newResolver(normalizeConfig(config))
}

func normalizeConfig(config interface{}) *Config {
	switch v := config.(type) {
	case Mode:
		return &Config{Mode: v}
	case *Config:
		if v == nil {
			return &Config{Mode: ModeAuto}
		}
		cfg := *v
		if cfg.Mode == "" {
			cfg.Mode = ModeAuto
		}
		return &cfg
	default:
		return &Config{Mode: ModeAuto}
	}
}

func newResolver(cfg *Config) (Resolver, error) {
	var (
		primary Resolver
		err     error
	)
	switch cfg.Mode {
	case ModeAuto:
		primary, err = newAutoResolver(cfg)
	case ModeSoftware:
		primary = &SoftwareResolver{}
	case ModeTPM2:
		primary, err = newTPM2Resolver(cfg.TPM2)
	case ModePKCS11:
		primary, err = newPKCS11Resolver(cfg.PKCS11)
	default:
		return nil, fmt.Errorf("unknown RNG mode: %s", cfg.Mode)
	}
	if err != nil {
		if cfg.FallbackMode == "" || cfg.FallbackMode == cfg.Mode {
			return nil, err
		}
		return newResolver(&Config{Mode: cfg.FallbackMode, TPM2: cfg.TPM2, PKCS11: cfg.PKCS11})
	}
	if cfg.FallbackMode == "" || cfg.FallbackMode == cfg.Mode {
		return primary, nil
	}
	fallback, err := newResolver(&Config{Mode: cfg.FallbackMode, TPM2: cfg.TPM2, PKCS11: cfg.PKCS11})
	if err != nil {
		return primary, nil
	}
	return &fallbackResolver{primary: primary, fallback: fallback}, nil
}

// SoftwareResolver uses crypto/rand from the Go standard library.
type SoftwareResolver struct{}

var _ Resolver = (*SoftwareResolver)(nil)

func (s *SoftwareResolver) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *SoftwareResolver) Read(p []byte) (int, error) {
	return rand.Read(p)
}

func (s *SoftwareResolver) Mode() Mode {
	return ModeSoftware
}

func (s *SoftwareResolver) Available() bool {
	return true // crypto/rand always available
}

func (s *SoftwareResolver) Close() error {
	return nil
}

// readFrom implements io.Reader on top of a Rand function.
func readFrom(fn func(int) ([]byte, error), p []byte) (int, error) {
	b, err := fn(len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}
