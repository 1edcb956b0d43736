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
	"fmt"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

type configFlagType struct {
	cli.StringFlag
}

var ConfigFlag = &configFlagType{
	cli.StringFlag{
		Name:      "config",
		Usage:     "TOML configuration file",
		TakesFile: true,
	},
}

func (f *configFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type verbosityFlagType struct {
	cli.IntFlag
}

var VerbosityFlag = &verbosityFlagType{
	cli.IntFlag{
		Name:  "verbosity",
		Usage: "logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	},
}

func (f *verbosityFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

type stateFlagType struct {
	cli.StringFlag
}

var StateFlag = &stateFlagType{
	cli.StringFlag{
		Name:      "state",
		Usage:     "JSON file holding the world state",
		TakesFile: true,
	},
}

func (f *stateFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type dbFlagType struct {
	cli.StringFlag
}

var DbFlag = &dbFlagType{
	cli.StringFlag{
		Name:      "db",
		Usage:     "LevelDB directory holding the world state, updated after execution",
		TakesFile: true,
	},
}

func (f *dbFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type outFlagType struct {
	cli.StringFlag
}

var OutFlag = &outFlagType{
	cli.StringFlag{
		Name:      "out",
		Aliases:   []string{"o"},
		Usage:     "JSON file the resulting world state is written to",
		TakesFile: true,
	},
}

func (f *outFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type txFlagType struct {
	cli.StringFlag
}

var TxFlag = &txFlagType{
	cli.StringFlag{
		Name:      "tx",
		Usage:     "JSON file describing the transaction",
		TakesFile: true,
	},
}

func (f *txFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type rawFlagType struct {
	cli.StringFlag
}

var RawFlag = &rawFlagType{
	cli.StringFlag{
		Name:  "raw",
		Usage: "hex encoded, signed transaction",
	},
}

func (f *rawFlagType) Fetch(context *cli.Context) ([]byte, error) {
	raw, err := hexutil.Decode(context.String(f.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid raw transaction: %w", err)
	}
	return raw, nil
}

type txsFlagType struct {
	cli.StringFlag
}

var TxsFlag = &txsFlagType{
	cli.StringFlag{
		Name:      "txs",
		Usage:     "file listing hex encoded, signed transactions, one per line",
		TakesFile: true,
	},
}

func (f *txsFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type traceFlagType struct {
	cli.BoolFlag
}

var TraceFlag = &traceFlagType{
	cli.BoolFlag{
		Name:  "trace",
		Usage: "log every executed instruction",
	},
}

func (f *traceFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}

type senderFlagType struct {
	cli.StringFlag
}

var SenderFlag = &senderFlagType{
	cli.StringFlag{
		Name:     "sender",
		Usage:    "address of the creating account",
		Required: true,
	},
}

func (f *senderFlagType) Fetch(context *cli.Context) (floria.Address, error) {
	return parseAddress(context.String(f.Name))
}

type nonceFlagType struct {
	cli.Uint64Flag
}

var NonceFlag = &nonceFlagType{
	cli.Uint64Flag{
		Name:  "nonce",
		Usage: "nonce of the creating account at the time of the creation",
	},
}

func (f *nonceFlagType) Fetch(context *cli.Context) uint64 {
	return context.Uint64(f.Name)
}

// The following flags override the values of the configuration file.

var (
	InterpreterFlag = &cli.StringFlag{
		Name:  "interpreter",
		Usage: "name of the registered interpreter to run contracts with",
	}
	RevisionFlag = &cli.StringFlag{
		Name:  "revision",
		Usage: "revision of the block, e.g. Istanbul",
	}
	CoinbaseFlag = &cli.StringFlag{
		Name:  "coinbase",
		Usage: "recipient of the transaction fees",
	}
	BlockGasLimitFlag = &cli.Int64Flag{
		Name:  "block-gas-limit",
		Usage: "gas limit of the block",
	}
	BlockNumberFlag = &cli.Int64Flag{
		Name:  "block-number",
		Usage: "number of the block",
	}
	ChainIDFlag = &cli.Uint64Flag{
		Name:  "chain-id",
		Usage: "chain ID used to recover senders, 0 for unprotected transactions",
	}
	StepLimitFlag = &cli.IntFlag{
		Name:  "step-limit",
		Usage: "number of instructions executed between suspensions, 0 for none",
	}
)

var executionFlags = []cli.Flag{
	StateFlag,
	DbFlag,
	OutFlag,
	TraceFlag,
	InterpreterFlag,
	RevisionFlag,
	CoinbaseFlag,
	BlockGasLimitFlag,
	BlockNumberFlag,
	ChainIDFlag,
	StepLimitFlag,
}

func parseAddress(text string) (floria.Address, error) {
	var address floria.Address
	if err := address.UnmarshalText([]byte(text)); err != nil {
		return address, fmt.Errorf("invalid address %q: %w", text, err)
	}
	return address, nil
}
