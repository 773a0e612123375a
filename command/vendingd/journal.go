// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vendingd/account"
)

const transferJournalFile = "transfers.json"

// a transfer instruction as written to the journal
type journalEntry struct {
	Token  *account.Account `json:"token"`
	From   *account.Account `json:"from"`
	To     *account.Account `json:"to"`
	Amount uint64           `json:"amount"`
}

// journal - hands token transfers to the external token ledger by
// appending them to a file
type journal struct {
	sync.Mutex
	log      *logger.L
	fileName string
}

func newJournal(fileName string) *journal {
	return &journal{
		log:      logger.New("transfer"),
		fileName: fileName,
	}
}

// Transfer - append one transfer instruction
func (j *journal) Transfer(token *account.Account, from *account.Account, to *account.Account, amount uint64) error {
	j.Lock()
	defer j.Unlock()

	line, err := json.Marshal(journalEntry{
		Token:  token,
		From:   from,
		To:     to,
		Amount: amount,
	})
	if nil != err {
		return err
	}

	f, err := os.OpenFile(j.fileName, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if nil != err {
		j.log.Errorf("open: %q  error: %s", j.fileName, err)
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	if nil != err {
		j.log.Errorf("write: %q  error: %s", j.fileName, err)
		return err
	}

	j.log.Infof("transfer: %d from: %s  to: %s", amount, from, to)
	return f.Sync()
}
