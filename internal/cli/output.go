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
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/jeremyhahn/go-sskr/internal/encoding"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/health"
	"github.com/jeremyhahn/go-sskr/pkg/shareset"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format   OutputFormat
	encoding encoding.Encoding
	writer   io.Writer
}

// NewPrinter creates a new Printer. Unknown encodings print as hex.
func NewPrinter(format, enc string, writer io.Writer) *Printer {
	e, err := encoding.Parse(enc)
	if err != nil {
		e = encoding.Hex
	}
	return &Printer{
		format:   OutputFormat(format),
		encoding: e,
		writer:   writer,
	}
}

type groupOutput struct {
	Index     int      `json:"index"`
	Threshold int      `json:"threshold"`
	Count     int      `json:"count"`
	Shares    []string `json:"shares"`
}

// PrintSplit prints the shares of a split, grouped.
func (p *Printer) PrintSplit(res *shareset.SplitResult, storedIn string) error {
	m := res.Manifest
	groups := make([]groupOutput, len(res.Shares))
	for g, members := range res.Shares {
		out := groupOutput{
			Index:     g,
			Threshold: m.Groups[g].Threshold,
			Count:     m.Groups[g].Count,
			Shares:    make([]string, len(members)),
		}
		for i, share := range members {
			out.Shares[i] = p.encoding.Encode(share.Bytes())
		}
		groups[g] = out
	}

	switch p.format {
	case OutputFormatJSON:
		doc := map[string]interface{}{
			"identifier":      m.Identifier,
			"group_threshold": m.GroupThreshold,
			"encoding":        p.encoding.String(),
			"groups":          groups,
		}
		if storedIn != "" {
			doc["set_id"] = res.SetID
			doc["storage_dir"] = storedIn
		}
		return p.printJSON(doc)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Identifier: %s\n", m.Identifier)
		fmt.Fprintf(p.writer, "Groups required: %d of %d\n", m.GroupThreshold, len(m.Groups))
		for _, g := range groups {
			fmt.Fprintf(p.writer, "Group %d (%d-of-%d):\n", g.Index, g.Threshold, g.Count)
			for _, s := range g.Shares {
				fmt.Fprintf(p.writer, "  %s\n", s)
			}
		}
		if storedIn != "" {
			fmt.Fprintf(p.writer, "Stored set %s in %s\n", res.SetID, storedIn)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSecret prints a recovered secret. groups may be nil for flat shares.
func (p *Printer) PrintSecret(secret []byte, groups []int) error {
	switch p.format {
	case OutputFormatJSON:
		doc := map[string]interface{}{
			"secret":   p.encoding.Encode(secret),
			"encoding": p.encoding.String(),
		}
		if groups != nil {
			doc["groups"] = groups
		}
		return p.printJSON(doc)
	case OutputFormatText:
		fmt.Fprintln(p.writer, p.encoding.Encode(secret))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintFlatShares prints shares of the flat scheme in binary form.
func (p *Printer) PrintFlatShares(threshold int, shares []secretsharing.Share) error {
	encoded := make([]string, len(shares))
	for i, s := range shares {
		data, err := s.MarshalBinary()
		if err != nil {
			return err
		}
		encoded[i] = p.encoding.Encode(data)
	}
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"threshold": threshold,
			"encoding":  p.encoding.String(),
			"shares":    encoded,
		})
	case OutputFormatText:
		for _, s := range encoded {
			fmt.Fprintln(p.writer, s)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintShareInfo prints decoded share headers.
func (p *Printer) PrintShareInfo(shares []*sskr.Share) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"shares": shares,
		})
	case OutputFormatText:
		for i, s := range shares {
			if i > 0 {
				fmt.Fprintln(p.writer)
			}
			fmt.Fprintf(p.writer, "Share:        %s\n", p.encoding.Encode(s.Bytes()))
			fmt.Fprintf(p.writer, "  Identifier: %04x\n", s.Identifier)
			fmt.Fprintf(p.writer, "  Groups:     %d required of %d\n", s.GroupThreshold, s.GroupCount)
			fmt.Fprintf(p.writer, "  Group:      %d\n", s.GroupIndex)
			fmt.Fprintf(p.writer, "  Member:     %d (%d required)\n", s.MemberIndex, s.MemberThreshold)
			fmt.Fprintf(p.writer, "  Length:     %d bytes\n", len(s.Value))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintCount prints the total share count for a layout.
func (p *Printer) PrintCount(groupThreshold int, groups []sskr.GroupDescriptor, total int) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"group_threshold": groupThreshold,
			"groups":          groups,
			"shares":          total,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, total)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSetList prints stored share set IDs.
func (p *Printer) PrintSetList(ids []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"sets": ids,
		})
	case OutputFormatText:
		if len(ids) == 0 {
			fmt.Fprintln(p.writer, "No share sets found")
			return nil
		}
		fmt.Fprintln(p.writer, "Share sets:")
		for _, id := range ids {
			fmt.Fprintf(p.writer, "  - %s\n", id)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintHealth prints self check results.
func (p *Printer) PrintHealth(status health.Status, results []health.CheckResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": status,
			"checks": results,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Status: %s\n", status)
		for _, r := range results {
			fmt.Fprintf(p.writer, "  %-10s %-9s %s", r.Name, r.Status, r.Message)
			if r.Error != "" {
				fmt.Fprintf(p.writer, " (%s)", r.Error)
			}
			fmt.Fprintln(p.writer)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVersion prints build information.
func (p *Printer) PrintVersion() error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"version":    Version,
			"commit":     GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "sskr version %s\n", Version)
		fmt.Fprintf(p.writer, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(p.writer, "Build date: %s\n", BuildDate)
		fmt.Fprintf(p.writer, "Go version: %s\n", runtime.Version())
		fmt.Fprintf(p.writer, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) printJSON(v interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
