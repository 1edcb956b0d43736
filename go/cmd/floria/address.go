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

	"github.com/Fantom-foundation/Floria/go/executive"
	"github.com/urfave/cli/v2"
)

var AddressCmd = cli.Command{
	Action: doAddress,
	Name:   "address",
	Usage:  "Print the address of a contract created by the given account",
	Flags: []cli.Flag{
		SenderFlag,
		NonceFlag,
	},
}

func doAddress(ctx *cli.Context) error {
	sender, err := SenderFlag.Fetch(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, executive.ContractAddress(sender, NonceFlag.Fetch(ctx)))
	return err
}
