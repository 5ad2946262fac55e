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
	"bytes"
	"errors"
	"testing"
)

func TestNewResolver_SoftwareMode(t *testing.T) {
	resolver, err := NewResolver(ModeSoftware)
	if err != nil {
		t.Fatalf("failed to create software resolver: %v", err)
	}
	defer func() { _ = resolver.Close() }()

	if !resolver.Available() {
		t.Fatal("software resolver should be available")
	}
	if resolver.Mode() != ModeSoftware {
		t.Errorf("Mode() = %s, want software", resolver.Mode())
	}
}

func TestNewResolver_NilConfig(t *testing.T) {
	// nil config defaults to auto mode, which always finds software
	resolver, err := NewResolver(nil)
	if err != nil {
		t.Fatalf("failed to create resolver with nil config: %v", err)
	}
	defer func() { _ = resolver.Close() }()

	if !resolver.Available() {
		t.Fatal("resolver should be available")
	}
}

func TestNewResolver_ConfigNotMutated(t *testing.T) {
	cfg := &Config{}
	resolver, err := NewResolver(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resolver.Close() }()
	if cfg.Mode != "" {
		t.Errorf("NewResolver mutated config mode to %q", cfg.Mode)
	}
}

func TestNewResolver_InvalidMode(t *testing.T) {
	_, err := NewResolver(&Config{Mode: "invalid"})
	if err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestNewResolver_FallbackWhenPrimaryUnavailable(t *testing.T) {
	// Without the pkcs11 build tag the primary cannot open.
	resolver, err := NewResolver(&Config{
		Mode:         ModePKCS11,
		FallbackMode: ModeSoftware,
		PKCS11:       &PKCS11Config{Module: "/nonexistent/libpkcs11.so"},
	})
	if err != nil {
		t.Fatalf("expected fallback to software, got %v", err)
	}
	defer func() { _ = resolver.Close() }()

	if resolver.Mode() != ModeSoftware {
		t.Errorf("Mode() = %s, want software", resolver.Mode())
	}
}

func TestSoftwareResolver_Rand(t *testing.T) {
	resolver := &SoftwareResolver{}
	for _, n := range []int{0, 1, 2, 32, 1024} {
		b, err := resolver.Rand(n)
		if err != nil {
			t.Fatalf("Rand(%d) error: %v", n, err)
		}
		if len(b) != n {
			t.Errorf("Rand(%d) returned %d bytes", n, len(b))
		}
	}

	a, _ := resolver.Rand(32)
	b, _ := resolver.Rand(32)
	if bytes.Equal(a, b) {
		t.Error("two 32 byte draws were identical")
	}
}

func TestSoftwareResolver_Read(t *testing.T) {
	buf := make([]byte, 16)
	n, err := (&SoftwareResolver{}).Read(buf)
	if err != nil || n != 16 {
		t.Fatalf("Read() = %d, %v", n, err)
	}
}

func TestDeterministic_RestartsEachCall(t *testing.T) {
	d := NewDeterministic()
	want := []byte{0, 17, 34, 51, 68}
	for i := 0; i < 2; i++ {
		got, err := d.Rand(5)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("call %d = %v, want %v", i, got, want)
		}
	}

	long, _ := d.Rand(17)
	if long[15] != 255 || long[16] != 16 {
		t.Errorf("sequence does not wrap: %v", long)
	}
}

func TestCounter_Continues(t *testing.T) {
	c := NewCounter()
	first, _ := c.Rand(2)
	second, _ := c.Rand(2)
	if !bytes.Equal(first, []byte{0, 17}) || !bytes.Equal(second, []byte{34, 51}) {
		t.Errorf("counter sequence = %v %v", first, second)
	}

	buf := make([]byte, 1)
	if _, err := c.Read(buf); err != nil || buf[0] != 68 {
		t.Errorf("Read() = %v, %v", buf, err)
	}
}

type failingResolver struct {
	SoftwareResolver
	closed bool
}

func (f *failingResolver) Rand(int) ([]byte, error) { return nil, errors.New("device busy") }
func (f *failingResolver) Available() bool          { return false }
func (f *failingResolver) Close() error             { f.closed = true; return nil }

func TestFallbackResolver(t *testing.T) {
	primary := &failingResolver{}
	r := &fallbackResolver{primary: primary, fallback: NewCounter()}

	b, err := r.Rand(2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{0, 17}) {
		t.Errorf("fallback bytes = %v", b)
	}
	if !r.Available() {
		t.Error("fallback resolver should be available")
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if !primary.closed {
		t.Error("primary not closed")
	}
}
