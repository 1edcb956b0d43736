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
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Address is the 20 byte identifier of an account.
type Address [20]byte

// Key addresses a storage slot of an account.
type Key [32]byte

// Word is a 256-bit storage value or stack element.
type Word [32]byte

// Value is an amount of the native currency, in wei. Values are big-endian
// unsigned 256-bit integers; arithmetic wraps around unless an Overflow
// variant is used.
type Value [32]byte

// Hash is a 32 byte digest, e.g. of a code or a log topic.
type Hash [32]byte

// Code is the byte-code of a contract.
type Code []byte

// Data is the input or output of a contract invocation.
type Data []byte

// Gas counts units of gas. It is signed so that deductions may be checked
// after the fact.
type Gas int64

// Log is an entry emitted by a contract through one of the LOG instructions.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}

func (a Address) String() string { return hexutil.Encode(a[:]) }
func (k Key) String() string     { return hexutil.Encode(k[:]) }
func (w Word) String() string    { return hexutil.Encode(w[:]) }
func (h Hash) String() string    { return hexutil.Encode(h[:]) }

func (a Address) MarshalText() ([]byte, error) { return encodeHex(a[:]) }
func (k Key) MarshalText() ([]byte, error)     { return encodeHex(k[:]) }
func (w Word) MarshalText() ([]byte, error)    { return encodeHex(w[:]) }
func (h Hash) MarshalText() ([]byte, error)    { return encodeHex(h[:]) }

// Addresses and hashes need all of their digits, keys and words may omit
// leading zeros.

func (a *Address) UnmarshalText(text []byte) error { return decodeHex(a[:], text) }
func (h *Hash) UnmarshalText(text []byte) error    { return decodeHex(h[:], text) }
func (k *Key) UnmarshalText(text []byte) error     { return decodePaddedHex(k[:], text) }
func (w *Word) UnmarshalText(text []byte) error    { return decodePaddedHex(w[:], text) }

// NewValue creates a value from up to four 64-bit limbs, most significant
// first. Missing leading limbs are zero.
func NewValue(limbs ...uint64) Value {
	if len(limbs) > 4 {
		panic("Too many arguments")
	}
	var z uint256.Int
	for i, limb := range limbs {
		z[len(limbs)-1-i] = limb
	}
	return z.Bytes32()
}

// ValueFromUint256 converts a uint256 integer into a Value. Nil is zero.
func ValueFromUint256(value *uint256.Int) Value {
	if value == nil {
		return Value{}
	}
	return value.Bytes32()
}

func (v Value) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(v[:])
}

func (v Value) ToBig() *big.Int {
	return v.ToUint256().ToBig()
}

// String prints the value in decimal.
func (v Value) String() string {
	return v.ToUint256().Dec()
}

func (v Value) Cmp(o Value) int {
	return bytes.Compare(v[:], o[:])
}

func (v Value) IsZero() bool {
	return v == Value{}
}

// Add computes a+b modulo 2^256.
func Add(a, b Value) Value {
	return ValueFromUint256(new(uint256.Int).Add(a.ToUint256(), b.ToUint256()))
}

// Sub computes a-b modulo 2^256.
func Sub(a, b Value) Value {
	return ValueFromUint256(new(uint256.Int).Sub(a.ToUint256(), b.ToUint256()))
}

// AddOverflow computes a+b and reports whether the result exceeded 2^256-1.
func AddOverflow(a, b Value) (Value, bool) {
	z, overflow := new(uint256.Int).AddOverflow(a.ToUint256(), b.ToUint256())
	return ValueFromUint256(z), overflow
}

// Scale computes v*s modulo 2^256.
func (v Value) Scale(s uint64) Value {
	z, _ := v.ScaleOverflow(s)
	return z
}

// ScaleOverflow computes v*s and reports whether the result exceeded
// 2^256-1.
func (v Value) ScaleOverflow(s uint64) (Value, bool) {
	z, overflow := new(uint256.Int).MulOverflow(v.ToUint256(), uint256.NewInt(s))
	return ValueFromUint256(z), overflow
}

// MarshalText produces the shortest hex form, e.g. 0x0 or 0x186a0.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.ToUint256().Hex()), nil
}

func (v *Value) UnmarshalText(text []byte) error {
	return decodePaddedHex(v[:], text)
}

func encodeHex(data []byte) ([]byte, error) {
	return []byte(hexutil.Encode(data)), nil
}

// decodeHex fills trg with the bytes encoded in text, which must have
// exactly the length of trg.
func decodeHex(trg []byte, text []byte) error {
	data, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid hex string %q: %w", text, err)
	}
	if len(data) != len(trg) {
		return fmt.Errorf("invalid hex string %q: wanted %d bytes, got %d", text, len(trg), len(data))
	}
	copy(trg, data)
	return nil
}

// decodePaddedHex is like decodeHex but accepts shorter inputs, including
// odd numbers of digits, which are padded with leading zeros.
func decodePaddedHex(trg []byte, text []byte) error {
	digits, found := strings.CutPrefix(string(text), "0x")
	if !found {
		return fmt.Errorf("invalid hex string %q: missing 0x prefix", text)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	data, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return fmt.Errorf("invalid hex string %q: %w", text, err)
	}
	if len(data) > len(trg) {
		return fmt.Errorf("invalid hex string %q: wanted at most %d bytes, got %d", text, len(trg), len(data))
	}
	clear(trg)
	copy(trg[len(trg)-len(data):], data)
	return nil
}
