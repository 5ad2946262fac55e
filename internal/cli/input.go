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


package cli

import (
	"fmt"
	"io"
	"os"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jeremyhahn/go-sskr/internal/encoding"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
	"github.com/jeremyhahn/go-sskr/pkg/validation"
)

func (a *app) encoding() encoding.Encoding {
	e, err := encoding.Parse(a.cfg.Output.Encoding)
	if err != nil {
		return encoding.Hex
	}
	return e
}

// readSecret returns the secret from --secret, --secret-file or stdin,
// decoded with the configured encoding.
func (a *app) readSecret() ([]byte, error) {
	enc := a.encoding()
	if s := a.v.GetString("secret"); s != "" {
		return enc.Decode(s)
	}
	if path := a.v.GetString("secret-file"); path != "" {
		// #nosec G304 - path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret file: %w", err)
		}
		defer zeroBytes(data)
		return enc.Decode(string(data))
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from stdin: %w", err)
	}
	defer zeroBytes(data)
	return enc.Decode(string(data))
}

// readShareInputs decodes shares from args, or one per line from stdin
// when no args are given. Repeated shares are dropped.
func (a *app) readShareInputs(args []string) ([][]byte, error) {
	enc := a.encoding()
	var raw [][]byte
	if len(args) > 0 {
		for i, arg := range args {
			b, err := enc.Decode(arg)
			if err != nil {
				return nil, fmt.Errorf("share %d: %w", i+1, err)
			}
			raw = append(raw, b)
		}
	} else {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read shares from stdin: %w", err)
		}
		raw, err = enc.DecodeLines(string(data))
		if err != nil {
			return nil, err
		}
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	unique := raw[:0]
	for _, b := range raw {
		if !seen.Add(string(b)) {
			a.logger.Debug("ignoring repeated share")
			continue
		}
		unique = append(unique, b)
	}
	return unique, nil
}

// layout returns the group threshold and groups from flags, env or the
// config defaults.
func (a *app) layout() (int, []sskr.GroupDescriptor, error) {
	groupThreshold := a.cfg.Defaults.GroupThreshold
	if a.v.IsSet("group-threshold") {
		groupThreshold = a.v.GetInt("group-threshold")
	}
	spec := a.cfg.Defaults.Groups
	if a.v.IsSet("groups") {
		spec = a.v.GetString("groups")
	}
	groups, err := validation.ParseGroupSpecs(spec)
	if err != nil {
		return 0, nil, err
	}
	return groupThreshold, groups, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
