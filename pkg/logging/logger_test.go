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


package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_TextLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	l.Debug("hidden")
	l.Infof("split %d-of-%d", 2, 3)
	l.Warn("careful", "group", 1)
	l.Error(errors.New("boom"))
	l.MaybeError(nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="split 2-of-3"`)
	assert.Contains(t, out, "group=1")
	assert.Contains(t, out, "level=ERROR msg=boom")
}

func TestLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Debug: true})
	l.Debugf("member %d", 4)
	assert.Contains(t, buf.String(), `msg="member 4"`)
}

func TestLogger_JSONWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Format: "JSON"}).With("operation_id", "abc")
	l.Info("combined", "groups", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "combined", rec["msg"])
	assert.Equal(t, "abc", rec["operation_id"])
	assert.EqualValues(t, 2, rec["groups"])
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("nothing")
	l.Error(errors.New("nothing"))
	assert.NotNil(t, l.Slog())
}
