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


package rand

import (
	"sync"
)

// newAutoResolver picks the best available source.
// Priority: PKCS#11 > TPM2 > Software
func newAutoResolver(cfg *Config) (Resolver, error) {
	if pkcs11Available() && cfg.PKCS11 != nil {
		if r, err := newPKCS11Resolver(cfg.PKCS11); err == nil {
			if r.Available() {
				return r, nil
			}
			_ = r.Close()
		}
	}
	if tpm2Available() {
		if r, err := newTPM2Resolver(cfg.TPM2); err == nil {
			if r.Available() {
				return r, nil
			}
			_ = r.Close()
		}
	}
	return &SoftwareResolver{}, nil
}

// fallbackResolver retries failed requests on a second source.
type fallbackResolver struct {
	primary  Resolver
	fallback Resolver
	mu       sync.RWMutex
}

var _ Resolver = (*fallbackResolver)(nil)

func (f *fallbackResolver) Rand(n int) ([]byte, error) {
	f.mu.RLock()
	primary, fallback := f.primary, f.fallback
	f.mu.RUnlock()

	b, err := primary.Rand(n)
	if err == nil && len(b) == n {
		return b, nil
	}
	return fallback.Rand(n)
}

func (f *fallbackResolver) Read(p []byte) (int, error) {
	return readFrom(f.Rand, p)
}

func (f *fallbackResolver) Mode() Mode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.primary.Mode()
}

func (f *fallbackResolver) Available() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.primary.Available() || f.fallback.Available()
}

func (f *fallbackResolver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.primary.Close()
	if ferr := f.fallback.Close(); err == nil {
		err = ferr
	}
	return err
}
