// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"reflect"

	"github.com/Fantom-foundation/Floria/go/executive"
	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// config holds the execution environment. Values are taken from the
// defaults, the configuration file and the command line, in this order.
type config struct {
	Interpreter   string
	Revision      floria.Revision
	Coinbase      floria.Address
	BlockNumber   int64
	BlockGasLimit int64
	ChainID       uint64
	StepLimit     int
}

var defaultConfig = config{
	Interpreter:   "stepvm",
	Revision:      floria.R07_Istanbul,
	BlockGasLimit: 30_000_000,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in the configuration", field)
	},
}

func loadConfigFile(file string, cfg *config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

func loadConfig(ctx *cli.Context) (config, error) {
	cfg := defaultConfig
	if file := ConfigFlag.Fetch(ctx); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet(InterpreterFlag.Name) {
		cfg.Interpreter = ctx.String(InterpreterFlag.Name)
	}
	if ctx.IsSet(RevisionFlag.Name) {
		revision, err := floria.ParseRevision(ctx.String(RevisionFlag.Name))
		if err != nil {
			return cfg, err
		}
		cfg.Revision = revision
	}
	if ctx.IsSet(CoinbaseFlag.Name) {
		coinbase, err := parseAddress(ctx.String(CoinbaseFlag.Name))
		if err != nil {
			return cfg, err
		}
		cfg.Coinbase = coinbase
	}
	if ctx.IsSet(BlockNumberFlag.Name) {
		cfg.BlockNumber = ctx.Int64(BlockNumberFlag.Name)
	}
	if ctx.IsSet(BlockGasLimitFlag.Name) {
		cfg.BlockGasLimit = ctx.Int64(BlockGasLimitFlag.Name)
	}
	if ctx.IsSet(ChainIDFlag.Name) {
		cfg.ChainID = ctx.Uint64(ChainIDFlag.Name)
	}
	if ctx.IsSet(StepLimitFlag.Name) {
		cfg.StepLimit = ctx.Int(StepLimitFlag.Name)
	}
	return cfg, nil
}

func (c *config) block() floria.BlockParameters {
	return floria.BlockParameters{
		Number:   c.BlockNumber,
		Coinbase: c.Coinbase,
		GasLimit: floria.Gas(c.BlockGasLimit),
		Revision: c.Revision,
	}
}

func (c *config) signer() types.Signer {
	if c.ChainID == 0 {
		return types.HomesteadSigner{}
	}
	return types.LatestSignerForChainID(new(big.Int).SetUint64(c.ChainID))
}

func (c *config) interpreter() (floria.Interpreter, error) {
	return floria.NewInterpreter(c.Interpreter)
}

func (c *config) executiveOptions(trace bool) []executive.Option {
	options := []executive.Option{
		executive.WithSigner(c.signer()),
		executive.WithStepLimit(c.StepLimit),
	}
	if trace {
		options = append(options, executive.WithObserver(executive.NewLoggingObserver(log.Root())))
	}
	return options
}

// setupLogging installs the root logger writing to the error stream of the
// application.
func setupLogging(ctx *cli.Context) error {
	installLogger(ctx, log.FromLegacyLevel(VerbosityFlag.Fetch(ctx)))
	return nil
}

func enableTracing(ctx *cli.Context) {
	installLogger(ctx, log.LevelTrace)
}

func installLogger(ctx *cli.Context, level slog.Level) {
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(ctx.App.ErrWriter, level, false)))
}
