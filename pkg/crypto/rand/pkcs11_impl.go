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


//go:build pkcs11

package rand

import (
	"fmt"
	"sync"

	"github.com/miekg/pkcs11"
)

// pkcs11Resolver draws entropy with C_GenerateRandom on one HSM session.
type pkcs11Resolver struct {
	mu       sync.Mutex
	ctx      *pkcs11.Ctx
	session  pkcs11.SessionHandle
	loggedIn bool
}

var _ Resolver = (*pkcs11Resolver)(nil)

func pkcs11Available() bool {
	return true
}

func newPKCS11Resolver(config *PKCS11Config) (Resolver, error) {
	if config == nil || config.Module == "" {
		return nil, fmt.Errorf("PKCS#11 module path is required")
	}

	ctx := pkcs11.New(config.Module)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load PKCS#11 module: %s", config.Module)
	}
	if err := ctx.Initialize(); err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("failed to initialize PKCS#11: %w", err)
	}

	r := &pkcs11Resolver{ctx: ctx}

	// Some tokens (e.g. YubiKey) only expose slots after GetSlotList.
	if _, err := ctx.GetSlotList(true); err != nil {
		r.teardown()
		return nil, fmt.Errorf("failed to get PKCS#11 slot list: %w", err)
	}

	session, err := ctx.OpenSession(config.SlotID, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		r.teardown()
		return nil, fmt.Errorf("failed to open PKCS#11 session on slot %d: %w", config.SlotID, err)
	}
	r.session = session

	if config.PIN != "" {
		if err := ctx.Login(session, pkcs11.CKU_USER, config.PIN); err != nil {
			r.teardown()
			return nil, fmt.Errorf("failed to authenticate with PKCS#11: %w", err)
		}
		r.loggedIn = true
	}
	return r, nil
}

func (p *pkcs11Resolver) Rand(n int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return nil, fmt.Errorf("PKCS#11 resolver closed")
	}
	out, err := p.ctx.GenerateRandom(p.session, n)
	if err != nil {
		return nil, fmt.Errorf("PKCS#11 random generation failed: %w", err)
	}
	return out, nil
}

func (p *pkcs11Resolver) Read(b []byte) (int, error) {
	return readFrom(p.Rand, b)
}

func (p *pkcs11Resolver) Mode() Mode {
	return ModePKCS11
}

func (p *pkcs11Resolver) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx != nil
}

func (p *pkcs11Resolver) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardown()
	return nil
}

// teardown releases the session and module. Callers hold mu or own p
// exclusively.
func (p *pkcs11Resolver) teardown() {
	if p.ctx == nil {
		return
	}
	if p.loggedIn {
		_ = p.ctx.Logout(p.session)
	}
	if p.session != 0 {
		_ = p.ctx.CloseSession(p.session)
	}
	_ = p.ctx.Finalize()
	p.ctx.Destroy()
	p.ctx = nil
}
