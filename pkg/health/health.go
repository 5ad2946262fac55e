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


// Package health runs self checks of the components a split or combine
// depends on: the random source, the field arithmetic and share storage.
package health

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/storage"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is operating normally.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the component is not functioning.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the component works but should not be
	// trusted for production secrets.
	StatusDegraded Status = "degraded"
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// CheckFunc performs one check.
type CheckFunc func(ctx context.Context) CheckResult

// Checker holds named checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates a new health checker.
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a health check with the given name.
// If a check with this name already exists, it will be replaced.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	if check == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes every check in name order.
func (c *Checker) Run(ctx context.Context) []CheckResult {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()
	sort.Strings(names)

	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			results = append(results, unhealthy(name, "check skipped", err))
			continue
		}
		start := time.Now()
		result := checks[name](ctx)
		result.Latency = time.Since(start)
		if result.Name == "" {
			result.Name = name
		}
		results = append(results, result)
	}
	return results
}

// AggregateStatus returns the overall status based on check results.
// - If all checks are healthy, returns StatusHealthy
// - If any check is unhealthy, returns StatusUnhealthy
// - If any check is degraded (and none unhealthy), returns StatusDegraded
func AggregateStatus(results []CheckResult) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func unhealthy(name, msg string, err error) CheckResult {
	r := CheckResult{Name: name, Status: StatusUnhealthy, Message: msg}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// RandomCheck draws from rng twice. Errors are unhealthy; repeated or
// all-zero output is degraded.
func RandomCheck(rng secretsharing.RandomSource) CheckFunc {
	const name, n = "random", 32
	return func(ctx context.Context) CheckResult {
		a, err := secretsharing.ReadRandom(rng, n)
		if err != nil {
			return unhealthy(name, "random source failed", err)
		}
		b, err := secretsharing.ReadRandom(rng, n)
		if err != nil {
			return unhealthy(name, "random source failed", err)
		}
		if bytes.Equal(a, b) || bytes.Equal(a, make([]byte, n)) {
			return CheckResult{Name: name, Status: StatusDegraded, Message: "random source repeats its output"}
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: fmt.Sprintf("%d bytes drawn", 2*n)}
	}
}

// SelfTestCheck splits a fixed secret with a fixed layout and recovers it
// from every qualifying pair of groups.
func SelfTestCheck() CheckFunc {
	const name = "self-test"
	return func(ctx context.Context) CheckResult {
		secret := []byte("sskr self-test secret 0123456789")
		var counter byte
		rng := secretsharing.RandomFunc(func(n int) ([]byte, error) {
			out := make([]byte, n)
			for i := range out {
				counter += 0x3b
				out[i] = counter
			}
			return out, nil
		})
		groups := []sskr.GroupDescriptor{{Threshold: 1, Count: 1}, {Threshold: 2, Count: 3}, {Threshold: 3, Count: 5}}
		shares, err := sskr.Generate(2, groups, secret, rng)
		if err != nil {
			return unhealthy(name, "split failed", err)
		}
		pick := func(g int) []*sskr.Share {
			return shares[g][:groups[g].Threshold]
		}
		for _, pair := range [][2]int{{0, 1}, {0, 2}, {1, 2}} {
			subset := append(append([]*sskr.Share{}, pick(pair[0])...), pick(pair[1])...)
			got, err := sskr.Combine(subset)
			if err != nil {
				return unhealthy(name, fmt.Sprintf("combine of groups %d and %d failed", pair[0], pair[1]), err)
			}
			if !bytes.Equal(got, secret) {
				return unhealthy(name, fmt.Sprintf("groups %d and %d recovered the wrong secret", pair[0], pair[1]), nil)
			}
		}
		if _, err := sskr.Combine(pick(1)); err == nil {
			return unhealthy(name, "a single group recovered the secret", nil)
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "split and combine agree"}
	}
}

// ProbeKey is written and removed by StorageCheck.
const ProbeKey = ".health/probe"

// StorageCheck writes, reads back and deletes a probe value.
func StorageCheck(backend storage.Backend) CheckFunc {
	const name = "storage"
	return func(ctx context.Context) CheckResult {
		probe := []byte(time.Now().UTC().Format(time.RFC3339Nano))
		if err := backend.Put(ProbeKey, probe, nil); err != nil {
			return unhealthy(name, "write failed", err)
		}
		got, err := backend.Get(ProbeKey)
		if err != nil {
			return unhealthy(name, "read failed", err)
		}
		if err := backend.Delete(ProbeKey); err != nil {
			return unhealthy(name, "delete failed", err)
		}
		if !bytes.Equal(got, probe) {
			return unhealthy(name, "read back different data", nil)
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "read and write succeeded"}
	}
}
