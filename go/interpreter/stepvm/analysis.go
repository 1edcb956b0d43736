// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package stepvm

import (
	"github.com/Fantom-foundation/Floria/go/floria"
	geth "github.com/ethereum/go-ethereum/core/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// jumpDests marks the code positions holding a JUMPDEST instruction that is
// not part of push data.
type jumpDests []bool

func (j jumpDests) isValid(pos uint64) bool {
	return pos < uint64(len(j)) && j[pos]
}

func analyze(code floria.Code) jumpDests {
	res := make(jumpDests, len(code))
	for i := 0; i < len(code); i++ {
		op := geth.OpCode(code[i])
		if op == geth.JUMPDEST {
			res[i] = true
		} else if op >= geth.PUSH1 && op <= geth.PUSH32 {
			i += int(op-geth.PUSH1) + 1
		}
	}
	return res
}

// analyzer caches jump destination analyses by code hash.
type analyzer struct {
	cache *lru.Cache[floria.Hash, jumpDests]
}

func newAnalyzer(size int) (*analyzer, error) {
	if size < 0 {
		return &analyzer{}, nil
	}
	if size == 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[floria.Hash, jumpDests](size)
	if err != nil {
		return nil, err
	}
	return &analyzer{cache: cache}, nil
}

// analyze produces the jump destinations of the given code. If the code hash
// is not nil, it is assumed to be the valid hash of the code and is used to
// cache the result.
func (a *analyzer) analyze(code floria.Code, codeHash *floria.Hash) jumpDests {
	if a.cache == nil || codeHash == nil {
		return analyze(code)
	}
	if res, found := a.cache.Get(*codeHash); found {
		return res
	}
	res := analyze(code)
	a.cache.Add(*codeHash, res)
	return res
}
