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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/messiah/database/models"
	"github.com/blinklabs-io/messiah/database/types"
	"gorm.io/gorm"
)

// CreateSubmission inserts a new submission. The id is assigned by the
// database and set on the passed model
func (d *MetadataStoreSqlite) CreateSubmission(
	submission *models.Submission,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(submission).Error
}

// GetSubmission returns a submission by id, or nil if it doesn't exist
func (d *MetadataStoreSqlite) GetSubmission(
	id uint64,
	txn types.Txn,
) (*models.Submission, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Submission{}
	result := db.First(ret, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetSubmissionBySubmitter returns the submission of an account for a
// proposal, or nil if there is none
func (d *MetadataStoreSqlite) GetSubmissionBySubmitter(
	proposalId uint64,
	submitterId uint64,
	txn types.Txn,
) (*models.Submission, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Submission{}
	result := db.Where(
		"proposal_id = ? AND submitter_id = ?",
		proposalId,
		submitterId,
	).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetSubmissions returns the submissions for a proposal in ascending id order
func (d *MetadataStoreSqlite) GetSubmissions(
	proposalId uint64,
	offset int,
	limit int,
	txn types.Txn,
) ([]models.Submission, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Submission
	result := db.Where("proposal_id = ?", proposalId).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CountSubmissions returns the total number of submissions
func (d *MetadataStoreSqlite) CountSubmissions(txn types.Txn) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.Submission{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil //nolint:gosec // count is never negative
}

// GetLeadingSubmission returns the submission for a proposal with the most
// For votes, preferring the lowest id on ties. Submissions without any For
// vote are never returned. It returns nil if there is no such submission
func (d *MetadataStoreSqlite) GetLeadingSubmission(
	proposalId uint64,
	txn types.Txn,
) (*models.Submission, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Submission
	result := db.Model(&models.Submission{}).
		Select("submission.*").
		Joins(
			"JOIN tally ON tally.target_kind = ? AND tally.target_id = submission.id",
			models.TargetKindSubmission,
		).
		Where("submission.proposal_id = ? AND tally.total_for > 0", proposalId).
		Order("tally.total_for DESC, submission.id ASC").
		Limit(1).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(ret) == 0 {
		return nil, nil
	}
	return &ret[0], nil
}

// CreateRewardPayout records the reward payout for a proposal
func (d *MetadataStoreSqlite) CreateRewardPayout(
	payout *models.RewardPayout,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(payout).Error
}

// GetRewardPayout returns the payout made for a proposal, or nil if none has
// been made
func (d *MetadataStoreSqlite) GetRewardPayout(
	proposalId uint64,
	txn types.Txn,
) (*models.RewardPayout, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.RewardPayout{}
	result := db.Where("proposal_id = ?", proposalId).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}
