// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package floria

import (
	"fmt"
	"strings"
)

// Revision enumerates the hard-forks of the EVM specification. The
// executive derives gas schedules and the set of precompiled contracts from
// the revision of a block.
type Revision int

const (
	R00_Frontier Revision = iota
	R01_Homestead
	R05_Byzantium
	R07_Istanbul
	R09_Berlin
	R10_London
	R11_Paris
	R12_Shanghai
	R13_Cancun
	numRevisions int = iota
)

const NewestSupportedRevision = R13_Cancun

var revisionNames = [numRevisions]string{
	"Frontier",
	"Homestead",
	"Byzantium",
	"Istanbul",
	"Berlin",
	"London",
	"Paris",
	"Shanghai",
	"Cancun",
}

func (r Revision) isValid() bool {
	return r >= 0 && int(r) < numRevisions
}

func (r Revision) String() string {
	if !r.isValid() {
		return fmt.Sprintf("Revision(%d)", int(r))
	}
	return revisionNames[r]
}

// ParseRevision resolves a revision name, ignoring case.
func ParseRevision(name string) (Revision, error) {
	for r, cur := range revisionNames {
		if strings.EqualFold(cur, name) {
			return Revision(r), nil
		}
	}
	return 0, fmt.Errorf("unknown revision: %s", name)
}

func (r Revision) MarshalText() ([]byte, error) {
	if !r.isValid() {
		return nil, fmt.Errorf("invalid revision: %d", int(r))
	}
	return []byte(revisionNames[r]), nil
}

func (r *Revision) UnmarshalText(text []byte) error {
	revision, err := ParseRevision(string(text))
	if err != nil {
		return err
	}
	*r = revision
	return nil
}
