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

import "sync"

// step is the increment between consecutive deterministic bytes.
const step = 17

// Deterministic yields 0, 17, 34, ... (mod 256) and restarts the sequence on
// every call. It reproduces the generator used by the published SSKR and
// Shamir test vectors.
type Deterministic struct{}

var _ Resolver = (*Deterministic)(nil)

// NewDeterministic returns a source that restarts on each call. Test use only.
func NewDeterministic() *Deterministic {
	return &Deterministic{}
}

func (d *Deterministic) Rand(n int) ([]byte, error) {
	out := make([]byte, n)
	var b byte
	for i := range out {
		out[i] = b
		b += step
	}
	return out, nil
}

func (d *Deterministic) Read(p []byte) (int, error) { return readFrom(d.Rand, p) }
func (d *Deterministic) Mode() Mode                 { return "deterministic" }
func (d *Deterministic) Available() bool            { return true }
func (d *Deterministic) Close() error               { return nil }

// Counter yields the same 0, 17, 34, ... sequence but continues where the
// previous call stopped, so consecutive splits see different bytes.
type Counter struct {
	mu   sync.Mutex
	next byte
}

var _ Resolver = (*Counter)(nil)

// NewCounter returns a stateful deterministic source. Test use only.
func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Rand(n int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = c.next
		c.next += step
	}
	return out, nil
}

func (c *Counter) Read(p []byte) (int, error) { return readFrom(c.Rand, p) }
func (c *Counter) Mode() Mode                 { return "counter" }
func (c *Counter) Available() bool            { return true }
func (c *Counter) Close() error               { return nil }
