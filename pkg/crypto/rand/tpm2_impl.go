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


//go:build tpm2

package rand

import (
	"fmt"
	"sync"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"
	"github.com/google/go-tpm/tpmutil"
)

const (
	defaultTPMDevice      = "/dev/tpmrm0"
	defaultTPMRequestSize = 32
	defaultSimulatorHost  = "localhost"
	defaultSimulatorPort  = 2321
)

// tpm2Resolver draws entropy with TPM2_GetRandom.
type tpm2Resolver struct {
	mu      sync.Mutex
	tpm     transport.TPMCloser
	maxRead int
}

var _ Resolver = (*tpm2Resolver)(nil)

func tpm2Available() bool {
	return true
}

func newTPM2Resolver(config *TPM2Config) (Resolver, error) {
	cfg := TPM2Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = defaultTPMRequestSize
	}

	var tpm transport.TPMCloser
	if cfg.UseSimulator {
		host, port := cfg.SimulatorHost, cfg.SimulatorPort
		if host == "" {
			host = defaultSimulatorHost
		}
		if port <= 0 {
			port = defaultSimulatorPort
		}
		// swtpm listens for commands on port and platform control on port+1
		conn, err := tcp.Open(tcp.Config{
			CommandAddress:  fmt.Sprintf("%s:%d", host, port),
			PlatformAddress: fmt.Sprintf("%s:%d", host, port+1),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to TPM simulator at %s:%d: %w", host, port, err)
		}
		tpm = conn
	} else {
		device := cfg.Device
		if device == "" {
			device = defaultTPMDevice
		}
		rwc, err := tpmutil.OpenTPM(device)
		if err != nil {
			return nil, fmt.Errorf("failed to open TPM2 device %s: %w", device, err)
		}
		tpm = transport.FromReadWriteCloser(rwc)
	}

	return &tpm2Resolver{tpm: tpm, maxRead: cfg.MaxRequestSize}, nil
}

// Rand splits large requests; the TPM returns at most one digest worth of
// bytes per command and may return fewer than requested.
func (t *tpm2Resolver) Rand(n int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tpm == nil {
		return nil, fmt.Errorf("TPM2 resolver closed")
	}

	out := make([]byte, 0, n)
	for len(out) < n {
		want := min(n-len(out), t.maxRead)
		getRandom := tpm2.GetRandom{BytesRequested: uint16(want)}
		rsp, err := getRandom.Execute(t.tpm)
		if err != nil {
			return nil, fmt.Errorf("TPM2 GetRandom failed: %w", err)
		}
		if len(rsp.RandomBytes.Buffer) == 0 {
			return nil, fmt.Errorf("TPM2 GetRandom returned no data")
		}
		out = append(out, rsp.RandomBytes.Buffer...)
	}
	return out[:n], nil
}

func (t *tpm2Resolver) Read(p []byte) (int, error) {
	return readFrom(t.Rand, p)
}

func (t *tpm2Resolver) Mode() Mode {
	return ModeTPM2
}

func (t *tpm2Resolver) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tpm != nil
}

func (t *tpm2Resolver) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tpm == nil {
		return nil
	}
	err := t.tpm.Close()
	t.tpm = nil
	return err
}
