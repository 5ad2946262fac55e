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


// Package correlation tags split and combine operations with an ID that
// appears in logs, manifests and storage keys.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// OperationIDKey is the context key for operation IDs.
const OperationIDKey contextKey = "operation-id"

// WithOperationID adds an operation ID to the context.
func WithOperationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, OperationIDKey, id)
}

// GetOperationID returns the operation ID from ctx or "".
func GetOperationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(OperationIDKey).(string); ok {
		return id
	}
	return ""
}

// NewID generates a new UUID v4.
func NewID() string {
	return uuid.New().String()
}

// GetOrGenerate returns the ID carried by ctx or a fresh one.
func GetOrGenerate(ctx context.Context) string {
	if id := GetOperationID(ctx); id != "" {
		return id
	}
	return NewID()
}

// IsValid reports whether id parses as a UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
