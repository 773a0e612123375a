// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// Kind - stable name for a rejection reason
type Kind string

// kinds reported to callers
const (
	KindNone               Kind = ""
	KindAlreadyExists      Kind = "AlreadyExists"
	KindAlreadyInitialised Kind = "AlreadyInitialised"
	KindAmountTooBig       Kind = "AmountTooBig"
	KindBalanceOverflow    Kind = "BalanceOverflow"
	KindCapExceeded        Kind = "CapExceeded"
	KindCorruptRecord      Kind = "CorruptRecord"
	KindInvalid            Kind = "Invalid"
	KindInvalidName        Kind = "InvalidName"
	KindInvalidRecipient   Kind = "InvalidRecipient"
	KindInvalidTokenInfo   Kind = "InvalidTokenInfo"
	KindInvalidZeroAmount  Kind = "InvalidZeroAmount"
	KindInvalidZeroPrice   Kind = "InvalidZeroPrice"
	KindIssueNotSupported  Kind = "IssueNotSupported"
	KindNotEnoughFunds     Kind = "NotEnoughFunds"
	KindNotFound           Kind = "NotFound"
	KindNotInitialised     Kind = "NotInitialised"
	KindOutOfStock         Kind = "OutOfStock"
	KindProcess            Kind = "Process"
	KindStorageError       Kind = "StorageError"
	KindTransactionInUse   Kind = "TransactionInUse"
	KindUnauthorized       Kind = "Unauthorized"
	KindWrongToken         Kind = "WrongToken"
)

var kinds = map[error]Kind{
	ErrAlreadyExists:      KindAlreadyExists,
	ErrAlreadyInitialised: KindAlreadyInitialised,
	ErrAmountTooBig:       KindAmountTooBig,
	ErrBalanceOverflow:    KindBalanceOverflow,
	ErrCapExceeded:        KindCapExceeded,
	ErrCorruptRecord:      KindCorruptRecord,
	ErrInvalidName:        KindInvalidName,
	ErrInvalidRecipient:   KindInvalidRecipient,
	ErrInvalidTokenInfo:   KindInvalidTokenInfo,
	ErrInvalidZeroAmount:  KindInvalidZeroAmount,
	ErrInvalidZeroPrice:   KindInvalidZeroPrice,
	ErrIssueNotSupported:  KindIssueNotSupported,
	ErrNotEnoughFunds:     KindNotEnoughFunds,
	ErrNotFound:           KindNotFound,
	ErrNotInitialised:     KindNotInitialised,
	ErrOutOfStock:         KindOutOfStock,
	ErrTransactionInUse:   KindTransactionInUse,
	ErrUnauthorized:       KindUnauthorized,
	ErrWrongToken:         KindWrongToken,
}

// KindOf - classify an error for reporting
//
// errors that are not one of the fault instances fall back to their
// class; nil is KindNone
func KindOf(err error) Kind {
	if nil == err {
		return KindNone
	}
	switch err.(type) {
	case ExistsError, InvalidError, LimitError, NotFoundError, PermissionError, ProcessError, RecordError:
		if k, ok := kinds[err]; ok {
			return k
		}
	}
	switch {
	case IsErrStorage(err):
		return KindStorageError
	case IsErrRecord(err):
		return KindCorruptRecord
	case IsErrInvalid(err):
		return KindInvalid
	}
	return KindProcess
}
