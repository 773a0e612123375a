// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"strings"

	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/util"
)

// Mode - how payments are accounted
type Mode uint64

// the modes
const (
	ModeExternal Mode = 1
	ModeIssued   Mode = 2
)

// token info limits
const (
	DefaultCap      = 10000
	MinNameLength   = 3
	MaxNameLength   = 50
	MinSymbolLength = 3
	MaxSymbolLength = 12
	MaxDecimals     = 18
)

// String - mode as text
func (m Mode) String() string {
	switch m {
	case ModeExternal:
		return "external"
	case ModeIssued:
		return "issued"
	default:
		return "unknown"
	}
}

// MarshalText - mode for JSON
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// TokenInfo - the self issued token
type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply uint64 `json:"totalSupply"`
	Cap         uint64 `json:"cap"`
}

// Validate - check token parameters given at set up
func (info *TokenInfo) Validate() error {
	if len(info.Name) < MinNameLength || len(info.Name) > MaxNameLength {
		return fault.ErrInvalidTokenInfo
	}
	if len(info.Symbol) < MinSymbolLength || len(info.Symbol) > MaxSymbolLength {
		return fault.ErrInvalidTokenInfo
	}
	if "" != strings.TrimFunc(info.Symbol, isSymbolRune) {
		return fault.ErrInvalidTokenInfo
	}
	if info.Decimals > MaxDecimals || 0 == info.Cap || info.TotalSupply > info.Cap {
		return fault.ErrInvalidTokenInfo
	}
	return nil
}

func isSymbolRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || '-' == r
}

// Config - the single configuration record
type Config struct {
	Admin     *account.Account `json:"admin"`
	Contract  *account.Account `json:"contract"`
	Mode      Mode             `json:"mode"`
	Collected uint64           `json:"collected"`
	Token     *account.Account `json:"token,omitempty"` // external mode
	Info      *TokenInfo       `json:"tokenInfo,omitempty"`
}

// Pack - stored form of the config
//
//   varint(mode) ++ bytes(admin) ++ bytes(contract) ++ varint(collected) ++
//   external: bytes(token)
//   issued:   bytes(name) ++ bytes(symbol) ++ varint(decimals) ++ varint(supply) ++ varint(cap)
func (c *Config) Pack() []byte {
	p := util.Packed{}.
		PackUint64(uint64(c.Mode)).
		PackBytes(c.Admin.Bytes()).
		PackBytes(c.Contract.Bytes()).
		PackUint64(c.Collected)

	switch c.Mode {
	case ModeExternal:
		p = p.PackBytes(c.Token.Bytes())
	case ModeIssued:
		p = p.PackBytes([]byte(c.Info.Name)).
			PackBytes([]byte(c.Info.Symbol)).
			PackUint64(uint64(c.Info.Decimals)).
			PackUint64(c.Info.TotalSupply).
			PackUint64(c.Info.Cap)
	}
	return p
}

// UnpackConfig - decode the stored config
func UnpackConfig(record []byte) (*Config, error) {
	u := util.NewUnpacker(record)

	c := &Config{
		Mode: Mode(u.Uint64()),
	}
	admin := u.Bytes()
	contract := u.Bytes()
	c.Collected = u.Uint64()

	var token []byte
	switch c.Mode {
	case ModeExternal:
		token = u.Bytes()
	case ModeIssued:
		c.Info = &TokenInfo{
			Name:   string(u.Bytes()),
			Symbol: string(u.Bytes()),
		}
		decimals := u.Uint64()
		c.Info.TotalSupply = u.Uint64()
		c.Info.Cap = u.Uint64()
		if decimals > MaxDecimals {
			return nil, fault.ErrCorruptRecord
		}
		c.Info.Decimals = uint8(decimals)
	default:
		return nil, fault.ErrCorruptRecord
	}
	if err := u.Finish(); nil != err {
		return nil, err
	}

	var err error
	if c.Admin, err = account.FromBytes(admin); nil != err {
		return nil, fault.ErrCorruptRecord
	}
	if c.Contract, err = account.FromBytes(contract); nil != err {
		return nil, fault.ErrCorruptRecord
	}
	if ModeExternal == c.Mode {
		if c.Token, err = account.FromBytes(token); nil != err {
			return nil, fault.ErrCorruptRecord
		}
	} else if c.Info.TotalSupply > c.Info.Cap || c.Collected > c.Info.TotalSupply {
		return nil, fault.ErrCorruptRecord
	}
	return c, nil
}
