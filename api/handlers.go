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

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blinklabs-io/messiah/ledger"
)

// maxRequestBody bounds the size of JSON request bodies
const maxRequestBody = 64 * 1024

func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

var classStatus = map[ledger.ErrorClass]int{
	ledger.ErrorClassPrecondition:  http.StatusConflict,
	ledger.ErrorClassAuthorization: http.StatusForbidden,
	ledger.ErrorClassIdempotency:   http.StatusConflict,
	ledger.ErrorClassResolution:    http.StatusUnprocessableEntity,
	ledger.ErrorClassNotFound:      http.StatusNotFound,
	ledger.ErrorClassInvalid:       http.StatusBadRequest,
	ledger.ErrorClassTransfer:      http.StatusBadGateway,
}

// writeRequestError reports an error, mapping ledger errors to a status by
// their class
func (a *API) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrMissingCaller) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if errors.Is(err, ErrInvalidParameter) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	class := ledger.Classify(err)
	status, ok := classStatus[class]
	if !ok {
		a.logger.Error(
			"request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    err.Error(),
		Class:      string(class),
		Idempotent: class == ledger.ErrorClassIdempotency,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrInvalidParameter, err)
	}
	return nil
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (a *API) handleGetProposals(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	proposals, err := a.ledger.GetProposals(r.Context(), page)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if proposals == nil {
		proposals = []ledger.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (a *API) handlePropose(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	var req ProposeRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	id, err := a.ledger.Propose(r.Context(), addr, req.Title, req.Description, req.Reward)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProposeResponse{ID: id})
}

func (a *API) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	proposal, err := a.ledger.GetProposal(r.Context(), ledger.ProposalId(id))
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (a *API) handleVoteForProposal(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	var req VoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if err := a.ledger.VoteForProposal(r.Context(), addr, ledger.ProposalId(id), req.Option); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (a *API) handleEndVoting(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	state, err := a.ledger.EndVoting(r.Context(), ledger.ProposalId(id))
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EndVotingResponse{
		ID:    ledger.ProposalId(id),
		State: state,
	})
}

func (a *API) handleCancelProposal(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if err := a.ledger.CancelProposal(r.Context(), addr, ledger.ProposalId(id)); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (a *API) handleGetSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	submissions, err := a.ledger.GetSubmissions(r.Context(), ledger.ProposalId(id), page)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if submissions == nil {
		submissions = []ledger.Submission{}
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	var req SubmitRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	subId, err := a.ledger.Submit(r.Context(), addr, ledger.ProposalId(id), req.Url, req.Comment)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{ID: subId})
}

func (a *API) handleResolveWinner(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	winner, found, err := a.ledger.ResolveWinner(r.Context(), ledger.ProposalId(id))
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	resp := WinnerResponse{ProposalID: ledger.ProposalId(id)}
	if found {
		resp.Winner = &winner
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	submission, err := a.ledger.GetSubmission(r.Context(), ledger.SubmissionId(id))
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (a *API) handleVoteForSubmission(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	var req VoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if err := a.ledger.VoteForSubmission(r.Context(), addr, ledger.SubmissionId(id), req.Option); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (a *API) handleClaimReward(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	id, err := pathId(r, "id")
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if err := a.ledger.ClaimReward(r.Context(), addr, ledger.SubmissionId(id)); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (a *API) handleTallyOf(w http.ResponseWriter, r *http.Request) {
	target, found, err := a.parseTarget(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, ledger.Tally{})
		return
	}
	tally, err := a.ledger.TallyOf(r.Context(), target)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

func (a *API) handleBallotOf(w http.ResponseWriter, r *http.Request) {
	voter, err := parseAddress(r.PathValue("voter"))
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	target, found, err := a.parseTarget(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	resp := BallotResponse{
		Target: target,
		Voter:  voter,
		Option: ledger.OptionUnvoted,
	}
	if found {
		resp.Option, err = a.ledger.BallotOf(r.Context(), target, voter)
		if err != nil {
			a.writeRequestError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(r.PathValue("address"))
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	resp := AccountResponse{Address: addr}
	id, found, err := a.ledger.AccountId(r.Context(), addr)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if found {
		resp.ID = &id
		if resp.Blacklisted, err = a.ledger.IsBlacklisted(r.Context(), addr); err != nil {
			a.writeRequestError(w, r, err)
			return
		}
		if resp.ClaimedToken, err = a.ledger.HasClaimedToken(r.Context(), addr); err != nil {
			a.writeRequestError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleFreezeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.ledger.FreezeStatus(r.Context())
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handleGetBlacklist(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	accounts, err := a.ledger.GetBlacklist(r.Context(), page)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []ledger.BlacklistedAccount{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (a *API) handleVoteBlacklist(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	var req BlacklistVoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if err := a.ledger.VoteBlacklist(r.Context(), addr, req.Target, req.Option); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (a *API) handleEndFreezing(w http.ResponseWriter, r *http.Request) {
	if err := a.ledger.EndFreezing(r.Context()); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	a.handleFreezeStatus(w, r)
}

func (a *API) handleClaimToken(w http.ResponseWriter, r *http.Request) {
	addr, err := caller(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	if err := a.ledger.ClaimToken(r.Context(), addr); err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (a *API) handleJournal(w http.ResponseWriter, r *http.Request) {
	from, limit, err := parseJournalWindow(r)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	entries, err := a.ledger.Journal(r.Context(), from, limit)
	if err != nil {
		a.writeRequestError(w, r, err)
		return
	}
	resp := make([]JournalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, journalEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, resp)
}
