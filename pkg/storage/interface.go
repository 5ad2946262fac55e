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


// Package storage defines the key/value backend used to persist share sets.
//
// Keys are slash separated paths. A share set written by package shareset
// looks like:
//
//	<set-id>/manifest.yaml
//	<set-id>/group-00/member-00.share
//	<set-id>/group-00/member-01.share
//
// Backends store opaque bytes and never interpret share contents.
package storage

import (
	"fmt"
	"io/fs"
)

// Backend is a key/value store.
type Backend interface {
	// Get returns the value for key or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing any existing value.
	Put(key string, value []byte, opts *Options) error

	// Delete removes key or returns ErrNotFound.
	Delete(key string) error

	// List returns all keys with the given prefix in sorted order.
	List(prefix string) ([]string, error)

	// Exists reports whether key is present.
	Exists(key string) (bool, error)

	// Close releases resources held by the backend.
	Close() error
}

// Options controls how a value is written.
type Options struct {
	// Permissions for file based backends. Zero uses the backend default.
	Permissions fs.FileMode
}

// DefaultOptions returns owner read/write permissions.
func DefaultOptions() *Options {
	return &Options{Permissions: 0600}
}

// ShareKey returns the key of one member share within a share set.
func ShareKey(setID string, group, member int) string {
	return fmt.Sprintf("%s/group-%02d/member-%02d.share", setID, group, member)
}

// ManifestKey returns the key of a share set's manifest.
func ManifestKey(setID string) string {
	return setID + "/manifest.yaml"
}
