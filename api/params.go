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
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/messiah/ledger"
	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultPage         = 1
	DefaultJournalLimit = 100
	MaxJournalLimit     = 1000
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingCaller    = errors.New("missing " + CallerHeader + " header")
)

// parsePage returns the page query parameter. Validation of the page number
// itself is left to the ledger
func parsePage(r *http.Request) (int, error) {
	pageParam := r.URL.Query().Get("page")
	if pageParam == "" {
		return DefaultPage, nil
	}
	page, err := strconv.Atoi(pageParam)
	if err != nil {
		return 0, fmt.Errorf("%w: page %q", ErrInvalidParameter, pageParam)
	}
	return page, nil
}

// parseJournalWindow returns the from and limit query parameters, clamping
// the limit to MaxJournalLimit
func parseJournalWindow(r *http.Request) (uint64, int, error) {
	query := r.URL.Query()
	var from uint64 = 1
	if fromParam := query.Get("from"); fromParam != "" {
		tmp, err := strconv.ParseUint(fromParam, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: from %q", ErrInvalidParameter, fromParam)
		}
		from = tmp
	}
	limit := DefaultJournalLimit
	if limitParam := query.Get("limit"); limitParam != "" {
		tmp, err := strconv.Atoi(limitParam)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: limit %q", ErrInvalidParameter, limitParam)
		}
		limit = tmp
	}
	// Bounds clamping
	if limit < 1 {
		limit = 1
	}
	if limit > MaxJournalLimit {
		limit = MaxJournalLimit
	}
	return from, limit, nil
}

func pathId(r *http.Request, name string) (uint64, error) {
	val := r.PathValue(name)
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidParameter, name, val)
	}
	return id, nil
}

func parseAddress(val string) (common.Address, error) {
	if !common.IsHexAddress(val) {
		return common.Address{}, fmt.Errorf("%w: address %q", ErrInvalidParameter, val)
	}
	return common.HexToAddress(val), nil
}

func parseTargetKind(val string) (ledger.TargetKind, error) {
	var kind ledger.TargetKind
	if err := kind.UnmarshalText([]byte(val)); err != nil {
		return 0, fmt.Errorf("%w: target kind %q", ErrInvalidParameter, val)
	}
	return kind, nil
}

// parseTarget reads a target from the kind and id path values. Account
// targets may be given by address, in which case the account must exist
func (a *API) parseTarget(r *http.Request) (ledger.Target, bool, error) {
	kind, err := parseTargetKind(r.PathValue("kind"))
	if err != nil {
		return ledger.Target{}, false, err
	}
	if kind == ledger.TargetKindAccount && common.IsHexAddress(r.PathValue("id")) {
		addr := common.HexToAddress(r.PathValue("id"))
		id, found, err := a.ledger.AccountId(r.Context(), addr)
		if err != nil || !found {
			return ledger.Target{Kind: kind}, found, err
		}
		return ledger.AccountTarget(id), true, nil
	}
	id, err := pathId(r, "id")
	if err != nil {
		return ledger.Target{}, false, err
	}
	return ledger.Target{Kind: kind, ID: id}, true, nil
}

// caller returns the authenticated caller address set by the host
func caller(r *http.Request) (common.Address, error) {
	val := r.Header.Get(CallerHeader)
	if val == "" {
		return common.Address{}, ErrMissingCaller
	}
	return parseAddress(val)
}
