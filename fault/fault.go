// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LimitError GenericError
type NotFoundError GenericError
type PermissionError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyExists         = ExistsError("item already exists")
	ErrAlreadyInitialised    = ExistsError("already initialised")
	ErrAmountTooBig          = LimitError("stock amount cannot be more than 50")
	ErrBalanceOverflow       = LimitError("balance overflow")
	ErrCapExceeded           = LimitError("issue cannot exceed the cap")
	ErrCorruptRecord         = RecordError("corrupt record")
	ErrInvalidCount          = InvalidError("invalid count")
	ErrInvalidCursor         = InvalidError("invalid cursor")
	ErrInvalidKeyLength      = InvalidError("invalid key length")
	ErrInvalidKeyType        = InvalidError("invalid key type")
	ErrInvalidLoggerChannel  = InvalidError("invalid logger channel")
	ErrInvalidName           = InvalidError("invalid item name")
	ErrInvalidRecipient      = InvalidError("invalid recipient")
	ErrInvalidTokenInfo      = InvalidError("invalid token info")
	ErrInvalidZeroAmount     = InvalidError("invalid zero amount")
	ErrInvalidZeroPrice      = InvalidError("invalid zero price")
	ErrIssueNotSupported     = InvalidError("issue is not supported for an external token")
	ErrNotEnoughFunds        = LimitError("not enough funds")
	ErrNotFound              = NotFoundError("item not found")
	ErrNotInitialised        = NotFoundError("not initialised")
	ErrNotPublicKey          = InvalidError("not a public key")
	ErrChecksumMismatch      = InvalidError("checksum mismatch")
	ErrCannotDecodeAccount   = InvalidError("cannot decode account")
	ErrOutOfStock            = LimitError("item is out of stock")
	ErrSequencerStopped      = ProcessError("sequencer stopped")
	ErrTransactionInUse      = ProcessError("transaction already in use")
	ErrTransactionNotStarted = ProcessError("transaction not started")
	ErrUnauthorized          = PermissionError("unauthorized")
	ErrUnknownOperation      = InvalidError("unknown operation")
	ErrWrongToken            = InvalidError("wrong token")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string     { return string(e) }
func (e InvalidError) Error() string    { return string(e) }
func (e LimitError) Error() string      { return string(e) }
func (e NotFoundError) Error() string   { return string(e) }
func (e PermissionError) Error() string { return string(e) }
func (e ProcessError) Error() string    { return string(e) }
func (e RecordError) Error() string     { return string(e) }

// StorageError - failure of the underlying key-value store
//
// the original database error is preserved and can be retrieved
// with errors.Unwrap
type StorageError struct {
	Operation string
	Err       error
}

// Storage - wrap a database error, nil stays nil
func Storage(operation string, err error) error {
	if nil == err {
		return nil
	}
	if _, ok := err.(*StorageError); ok {
		return err
	}
	return &StorageError{Operation: operation, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %s", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// determine the class of an error
func IsErrExists(e error) bool     { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool    { _, ok := e.(InvalidError); return ok }
func IsErrLimit(e error) bool      { _, ok := e.(LimitError); return ok }
func IsErrNotFound(e error) bool   { _, ok := e.(NotFoundError); return ok }
func IsErrPermission(e error) bool { _, ok := e.(PermissionError); return ok }
func IsErrProcess(e error) bool    { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool     { _, ok := e.(RecordError); return ok }
func IsErrStorage(e error) bool    { _, ok := e.(*StorageError); return ok }
