// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import "errors"

var (
	ErrNotVoting             = errors.New("proposal is not in voting")
	ErrProposalCanceled      = errors.New("proposal is canceled")
	ErrProposalNotDeveloping = errors.New("proposal is not in development")
	ErrTooEarly              = errors.New("period has not elapsed")
	ErrFreezeClosed          = errors.New("freeze period is closed")
	ErrNotResolved           = errors.New("freeze period is not resolved")
	ErrBlacklisted           = errors.New("account is blacklisted")
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrAlreadyClaimed        = errors.New("token already claimed")
	ErrAlreadyPaid           = errors.New("reward already paid")
	ErrAlreadySubmitted      = errors.New("submission already exists for caller")
	ErrAlreadyTerminal       = errors.New("proposal is already closed")
	ErrNotWinner             = errors.New("submission is not the winner")
	ErrInvalidOption         = errors.New("invalid vote option")
	ErrInvalidTarget         = errors.New("invalid vote target")
	ErrInvalidPage           = errors.New("page numbers start at 1")
	ErrProposalNotFound      = errors.New("proposal not found")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrTokenTransfer         = errors.New("token transfer failed")
)

// ErrorClass groups ledger errors by how a caller should react to them
type ErrorClass string

const (
	ErrorClassNone          ErrorClass = "ok"
	ErrorClassPrecondition  ErrorClass = "precondition"
	ErrorClassAuthorization ErrorClass = "authorization"
	ErrorClassIdempotency   ErrorClass = "idempotency"
	ErrorClassResolution    ErrorClass = "resolution"
	ErrorClassNotFound      ErrorClass = "not_found"
	ErrorClassInvalid       ErrorClass = "invalid"
	ErrorClassTransfer      ErrorClass = "transfer"
	ErrorClassInternal      ErrorClass = "internal"
)

var errorClasses = []struct {
	err   error
	class ErrorClass
}{
	{ErrNotVoting, ErrorClassPrecondition},
	{ErrProposalCanceled, ErrorClassPrecondition},
	{ErrProposalNotDeveloping, ErrorClassPrecondition},
	{ErrTooEarly, ErrorClassPrecondition},
	{ErrFreezeClosed, ErrorClassPrecondition},
	{ErrNotResolved, ErrorClassPrecondition},
	{ErrBlacklisted, ErrorClassAuthorization},
	{ErrUnauthorized, ErrorClassAuthorization},
	{ErrAlreadyClaimed, ErrorClassIdempotency},
	{ErrAlreadyPaid, ErrorClassIdempotency},
	{ErrAlreadySubmitted, ErrorClassIdempotency},
	{ErrAlreadyTerminal, ErrorClassIdempotency},
	{ErrNotWinner, ErrorClassResolution},
	{ErrProposalNotFound, ErrorClassNotFound},
	{ErrSubmissionNotFound, ErrorClassNotFound},
	{ErrInvalidOption, ErrorClassInvalid},
	{ErrInvalidTarget, ErrorClassInvalid},
	{ErrInvalidPage, ErrorClassInvalid},
	{ErrTokenTransfer, ErrorClassTransfer},
}

// Classify returns the class of a ledger error. Errors that don't originate
// from a ledger precondition are internal
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorClassNone
	}
	for _, tmp := range errorClasses {
		if errors.Is(err, tmp.err) {
			return tmp.class
		}
	}
	return ErrorClassInternal
}
