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

	"github.com/Fantom-foundation/Floria/go/state"
	"github.com/urfave/cli/v2"
)

var DumpCmd = cli.Command{
	Action: doDump,
	Name:   "dump",
	Usage:  "Print the world state stored in a LevelDB as JSON",
	Flags: []cli.Flag{
		DbFlag,
		OutFlag,
	},
}

func doDump(ctx *cli.Context) error {
	db := DbFlag.Fetch(ctx)
	if db == "" {
		return fmt.Errorf("missing --%s", DbFlag.Name)
	}
	store, err := state.OpenStore(db)
	if err != nil {
		return err
	}
	defer store.Close()

	memory, err := store.Load()
	if err != nil {
		return err
	}
	if out := OutFlag.Fetch(ctx); out != "" {
		return state.SaveJSON(out, memory)
	}
	return state.WriteJSON(ctx.App.Writer, memory)
}

var ImportCmd = cli.Command{
	Action: doImport,
	Name:   "import",
	Usage:  "Replace the world state stored in a LevelDB by the content of a JSON file",
	Flags: []cli.Flag{
		StateFlag,
		DbFlag,
	},
}

func doImport(ctx *cli.Context) error {
	file, db := StateFlag.Fetch(ctx), DbFlag.Fetch(ctx)
	if file == "" || db == "" {
		return fmt.Errorf("both --%s and --%s must be given", StateFlag.Name, DbFlag.Name)
	}
	memory, err := state.LoadJSON(file)
	if err != nil {
		return err
	}
	store, err := state.OpenStore(db)
	if err != nil {
		return err
	}
	if err := store.Save(memory); err != nil {
		store.Close()
		return err
	}
	return store.Close()
}
