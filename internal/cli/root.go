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


// Package cli implements the sskr command line tool.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-sskr/internal/config"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/logging"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *logging.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// random overrides the configured RNG when set
	random secretsharing.RandomSource
	now    func() time.Time
}

// Option customizes NewRootCommand.
type Option func(*app)

// WithIO replaces the standard streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *app) {
		a.stdin = in
		a.stdout = out
		a.stderr = errOut
	}
}

// WithRandom replaces the configured random source.
func WithRandom(rng secretsharing.RandomSource) Option {
	return func(a *app) {
		a.random = rng
	}
}

// WithClock replaces time.Now for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *app) {
		a.now = now
	}
}

func newApp(opts ...Option) *app {
	a := &app{
		v:      viper.New(),
		cfg:    config.Default(),
		logger: logging.Discard(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewRootCommand builds the sskr command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	return newApp(opts...).rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sskr",
		Short: "Sharded secret key reconstruction",
		Long: `sskr splits a secret into shares arranged in groups and recovers it
from any qualifying subset.

A secret is split into groups; each group into member shares. Recovering
requires the member threshold of shares from at least the group threshold
of groups. Up to 16 groups of up to 16 members are supported.

Examples:
  sskr split --groups 2-of-3 --secret 00112233445566778899aabbccddeeff
  sskr split --group-threshold 2 --groups 1-of-1,2-of-3,3-of-5 --store
  sskr combine <share> <share>
  sskr combine --set-id <id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (env SSKR_CONFIG)")
	pf.StringP("output", "o", "text", "output format (text, json)")
	pf.String("encoding", "hex", "encoding for secrets and shares (hex, base64)")
	pf.BoolP("verbose", "v", false, "verbose output and debug logging")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("rng", "auto", "random source (auto, software, tpm2, pkcs11)")
	pf.String("storage-dir", "shares", "directory for stored share sets")
	pf.String("metrics-textfile", "", "write Prometheus metrics to this file after each command")

	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(
		a.newSplitCmd(),
		a.newCombineCmd(),
		a.newCountCmd(),
		a.newInspectCmd(),
		a.newShamirCmd(),
		a.newSetsCmd(),
		a.newDoctorCmd(),
		a.newVersionCmd(),
	)
	return root
}

// Execute runs the root command against the process streams and prints
// any error to stderr.
func Execute() error {
	a := newApp()
	err := a.rootCommand().Execute()
	if err != nil {
		a.printError(err)
	}
	return err
}

func (a *app) printer() *Printer {
	return NewPrinter(a.cfg.Output.Format, a.cfg.Output.Encoding, a.stdout)
}

// printError prints err to stderr in the configured output format.
func (a *app) printError(err error) {
	printer := NewPrinter(a.cfg.Output.Format, a.cfg.Output.Encoding, a.stderr)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
}

// printVerbose prints a message to stderr if verbose mode is enabled
func (a *app) printVerbose(format string, args ...interface{}) {
	if a.v.GetBool("verbose") {
		fmt.Fprintf(a.stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
