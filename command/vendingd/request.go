// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/fault"
	"github.com/bitmark-inc/vendingd/ledger"
	"github.com/bitmark-inc/vendingd/sequencer"
	"github.com/bitmark-inc/vendingd/vending"
)

const (
	operationInstantiate = "instantiate"
)

type fundsArguments struct {
	Token  string `json:"token"`
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

type request struct {
	Caller    string          `json:"caller"`
	Operation string          `json:"operation"`
	Block     uint64          `json:"block"`
	Item      string          `json:"item"`
	Stock     uint64          `json:"stock"`
	Price     uint64          `json:"price"`
	Amount    uint64          `json:"amount"`
	Recipient string          `json:"recipient"`
	Funds     *fundsArguments `json:"funds"`

	// instantiate only
	Mode     string `json:"mode"`
	Token    string `json:"token"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Cap      uint64 `json:"cap"`
}

type batch struct {
	Requests []request `json:"requests"`
}

type response struct {
	Index          int              `json:"index"`
	Operation      string           `json:"operation"`
	Success        bool             `json:"success"`
	Outcome        *vending.Outcome `json:"outcome,omitempty"`
	Kind           fault.Kind       `json:"kind,omitempty"`
	Error          string           `json:"error,omitempty"`
	TransferErrors []string         `json:"transferErrors,omitempty"`
}

type batchResult struct {
	File    string     `json:"file"`
	Error   string     `json:"error,omitempty"`
	Results []response `json:"results"`
}

// the environment of a request
func (r *request) env(contract *account.Account) (vending.Env, error) {
	caller, err := account.FromBase58(r.Caller)
	if nil != err {
		return vending.Env{}, fault.ErrUnauthorized
	}
	return vending.Env{
		Caller:   caller,
		Contract: contract,
		Block:    r.Block,
	}, nil
}

// the state transition described by a request
func (r *request) operation() (vending.Operation, error) {
	switch r.Operation {
	case vending.NameAddItem:
		return vending.AddItem{Item: r.Item, Stock: r.Stock, Price: r.Price}, nil

	case vending.NameSetPrice:
		return vending.SetPrice{Item: r.Item, Price: r.Price}, nil

	case vending.NameRestock:
		return vending.Restock{Item: r.Item, Amount: r.Amount}, nil

	case vending.NamePurchase:
		p := vending.Purchase{Item: r.Item}
		if nil != r.Funds {
			p.Funds = &vending.Funds{
				Denom:  r.Funds.Denom,
				Amount: r.Funds.Amount,
			}
			if "" != r.Funds.Token {
				token, err := account.FromBase58(r.Funds.Token)
				if nil != err {
					return nil, fault.ErrWrongToken
				}
				p.Funds.Token = token
			}
		}
		return p, nil

	case vending.NameWithdraw:
		return vending.Withdraw{Amount: r.Amount}, nil

	case vending.NameIssue:
		return vending.Issue{Recipient: r.Recipient, Amount: r.Amount}, nil

	default:
		return nil, fault.ErrUnknownOperation
	}
}

// the set up of an instantiate request
func (r *request) setup() (vending.Setup, error) {
	switch r.Mode {
	case ledger.ModeExternal.String():
		token, err := account.FromBase58(r.Token)
		if nil != err {
			return nil, fault.ErrInvalidTokenInfo
		}
		return vending.External{Token: token}, nil

	case ledger.ModeIssued.String():
		limit := r.Cap
		if 0 == limit {
			limit = ledger.DefaultCap
		}
		return vending.Issued{
			Name:     r.Name,
			Symbol:   r.Symbol,
			Decimals: r.Decimals,
			Cap:      limit,
		}, nil

	default:
		return nil, fault.ErrInvalidTokenInfo
	}
}

// fill in a response from the result of submitting a request
func makeResponse(index int, operation string, result *sequencer.Result, err error) response {
	r := response{
		Index:     index,
		Operation: operation,
		Success:   nil == err,
	}
	if nil != err {
		r.Kind = fault.KindOf(err)
		r.Error = err.Error()
		return r
	}

	r.Outcome = result.Outcome
	for _, e := range result.TransferErrors {
		r.TransferErrors = append(r.TransferErrors, e.Error())
	}
	return r
}
