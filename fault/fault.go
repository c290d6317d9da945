// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// ledger specific classes
//
// MissingDataError: recoverable, fetch and retry later
// ValidationError:  terminal rejection of a single batch
// DisproofError:    a previously accepted batch is now known invalid
type MissingDataError GenericError
type ValidationError GenericError
type DisproofError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised           = ExistsError("already initialised")
	ErrBadHashListEntries           = LengthError("hash list has too many entries")
	ErrBadPackedLength              = LengthError("packed record length is invalid")
	ErrConfigurationNotTable        = InvalidError("configuration did not return a table")
	ErrDigestLength                 = LengthError("digest length is invalid")
	ErrInvalidCount                 = InvalidError("invalid count")
	ErrInvalidCursor                = InvalidError("invalid cursor")
	ErrInvalidLoggerChannel         = InvalidError("invalid logger channel")
	ErrInvalidStructPointer         = InvalidError("invalid struct pointer")
	ErrNotInitialised               = NotFoundError("not initialised")
	ErrProofNotFound                = ProcessError("no proof found within attempt limit")
	ErrTransactionAlreadyInProgress = ProcessError("transaction already in progress")
	ErrUnrecoverableHashList        = NotFoundError("hash list cannot be recovered")
	ErrVarintTruncated              = LengthError("varint is truncated")
)

// missing data - keep in alphabetic order
var (
	ErrMissingCalend          = MissingDataError("missing calend")
	ErrMissingEnclosedData    = MissingDataError("missing enclosed data")
	ErrMissingMessage         = MissingDataError("missing mined credit message")
	ErrMissingPredecessor     = MissingDataError("missing predecessor")
	ErrMissingPrecedingCalend = MissingDataError("missing data back to preceding calend")
)

// validation failures - keep in alphabetic order
var (
	ErrBatchNumberZero            = ValidationError("batch number is zero")
	ErrCalendarNotConsistent      = ValidationError("calendar is not consistent")
	ErrCreditNotInBatch           = ValidationError("credit is not in batch")
	ErrDoubleSpend                = ValidationError("credit already spent")
	ErrHashListMissingPredecessor = ValidationError("hash list does not contain predecessor")
	ErrInvalidAmount              = ValidationError("amount is not one credit")
	ErrInvalidBatchNumber         = ValidationError("batch number is invalid")
	ErrInvalidBatchOffset         = ValidationError("batch offset is invalid")
	ErrInvalidBatchRoot           = ValidationError("batch root is invalid")
	ErrInvalidBatchSize           = ValidationError("batch size is invalid")
	ErrInvalidDifficulty          = ValidationError("difficulty is invalid")
	ErrInvalidDiurnalBlockRoot    = ValidationError("diurnal block root is invalid")
	ErrInvalidDiurnalDifficulty   = ValidationError("diurnal difficulty is invalid")
	ErrInvalidMessageListHash     = ValidationError("message list hash is invalid")
	ErrInvalidNetworkID           = ValidationError("network id is invalid")
	ErrInvalidPreviousCalendHash  = ValidationError("previous calend hash is invalid")
	ErrInvalidPreviousDiurnRoot   = ValidationError("previous diurn root is invalid")
	ErrInvalidPreviousTotalWork   = ValidationError("previous total work is invalid")
	ErrInvalidProofOfWork         = ValidationError("proof of work fails quick check")
	ErrInvalidSpentChainHash      = ValidationError("spent chain hash is invalid")
	ErrNotExtendingTip            = ValidationError("message does not extend the tip")
	ErrPredecessorFailed          = ValidationError("predecessor failed verification")
	ErrTimestampBeforePredecessor = ValidationError("timestamp is not after predecessor")
	ErrTimestampInFuture          = ValidationError("timestamp is in the future")
)

// disproofs
var (
	ErrDisproofNotValid = InvalidError("disproof does not demonstrate a failure")
	ErrSpotCheckFailed  = DisproofError("proof of work failed spot check")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string      { return string(e) }
func (e InvalidError) Error() string     { return string(e) }
func (e LengthError) Error() string      { return string(e) }
func (e NotFoundError) Error() string    { return string(e) }
func (e ProcessError) Error() string     { return string(e) }
func (e MissingDataError) Error() string { return string(e) }
func (e ValidationError) Error() string  { return string(e) }
func (e DisproofError) Error() string    { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool      { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool     { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool      { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool    { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool     { _, ok := e.(ProcessError); return ok }
func IsErrMissingData(e error) bool { _, ok := e.(MissingDataError); return ok }
func IsErrValidation(e error) bool  { _, ok := e.(ValidationError); return ok }
func IsErrDisproof(e error) bool    { _, ok := e.(DisproofError); return ok }
