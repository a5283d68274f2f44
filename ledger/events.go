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

import "github.com/blinklabs-io/messiah/event"

// JournalEventType is published with a database.JournalEntry payload for every
// committed journal entry
const JournalEventType event.EventType = "ledger.journal"

// Journal entry types
const (
	JournalAccountRegistered = "account.registered"
	JournalBallotCast        = "ballot.cast"
	JournalFreezeStarted     = "freeze.started"
	JournalFreezeEnded       = "freeze.ended"
	JournalTokenClaimed      = "token.claimed"
	JournalProposalCreated   = "proposal.created"
	JournalProposalState     = "proposal.state"
	JournalSubmissionCreated = "submission.created"
	JournalRewardPaid        = "reward.paid"
)
