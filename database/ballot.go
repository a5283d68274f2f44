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

package database

import (
	"fmt"

	"github.com/blinklabs-io/messiah/database/models"
)

// GetBallot returns a voter's ballot on a target, or nil if there is none
func (d *Database) GetBallot(
	targetKind uint8,
	targetId uint64,
	voterId uint64,
	txn *Txn,
) (*models.Ballot, error) {
	ret, err := d.metadata.GetBallot(targetKind, targetId, voterId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"get ballot of voter %d on target %d/%d: %w",
			voterId,
			targetKind,
			targetId,
			err,
		)
	}
	return ret, nil
}

// SetBallot creates or replaces a voter's ballot on a target
func (d *Database) SetBallot(ballot *models.Ballot, txn *Txn) error {
	if err := d.metadata.SetBallot(ballot, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"set ballot of voter %d on target %d/%d: %w",
			ballot.VoterID,
			ballot.TargetKind,
			ballot.TargetID,
			err,
		)
	}
	return nil
}

// GetTally returns the tally for a target, or nil if nobody has voted on it
func (d *Database) GetTally(
	targetKind uint8,
	targetId uint64,
	txn *Txn,
) (*models.Tally, error) {
	ret, err := d.metadata.GetTally(targetKind, targetId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"get tally of target %d/%d: %w",
			targetKind,
			targetId,
			err,
		)
	}
	return ret, nil
}

// SetTally creates or replaces the tally for a target
func (d *Database) SetTally(tally *models.Tally, txn *Txn) error {
	if err := d.metadata.SetTally(tally, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"set tally of target %d/%d: %w",
			tally.TargetKind,
			tally.TargetID,
			err,
		)
	}
	return nil
}

// CountBallots returns the number of ballots per option for a target
func (d *Database) CountBallots(
	targetKind uint8,
	targetId uint64,
	txn *Txn,
) (map[uint8]uint64, error) {
	ret, err := d.metadata.CountBallots(targetKind, targetId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"count ballots of target %d/%d: %w",
			targetKind,
			targetId,
			err,
		)
	}
	return ret, nil
}
