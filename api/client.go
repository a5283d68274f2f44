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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/messiah/ledger"
	"github.com/google/uuid"
)

// maxResponseBytes limits API responses read by the client
const maxResponseBytes = 10 << 20

// ResponseError is returned by the client for a non-2xx response
type ResponseError struct {
	Response ErrorResponse
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Response.StatusCode, e.Response.Error)
	if e.Response.Message != "" {
		msg += ": " + e.Response.Message
	}
	return msg
}

// Client calls the REST API of a running node
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a functional option for configuring a Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom *http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var ret HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &ret)
	return ret, err
}

// EndFreezing closes the blacklist freeze period and returns the resulting status
func (c *Client) EndFreezing(ctx context.Context) (ledger.FreezeStatus, error) {
	var ret ledger.FreezeStatus
	err := c.do(ctx, http.MethodPost, "/api/v0/freeze/end", nil, &ret)
	return ret, err
}

// EndVoting closes the voting window of a proposal
func (c *Client) EndVoting(
	ctx context.Context,
	id ledger.ProposalId,
) (EndVotingResponse, error) {
	var ret EndVotingResponse
	err := c.do(
		ctx,
		http.MethodPost,
		"/api/v0/proposals/"+strconv.FormatUint(uint64(id), 10)+"/end-voting",
		nil,
		&ret,
	)
	return ret, err
}

func (c *Client) Proposals(
	ctx context.Context,
	page int,
) ([]ledger.Proposal, error) {
	var ret []ledger.Proposal
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	err := c.do(ctx, http.MethodGet, "/api/v0/proposals", q, &ret)
	return ret, err
}

func (c *Client) Blacklist(
	ctx context.Context,
	page int,
) ([]ledger.BlacklistedAccount, error) {
	var ret []ledger.BlacklistedAccount
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	err := c.do(ctx, http.MethodGet, "/api/v0/blacklist", q, &ret)
	return ret, err
}

func (c *Client) Submissions(
	ctx context.Context,
	proposalId ledger.ProposalId,
	page int,
) ([]ledger.Submission, error) {
	var ret []ledger.Submission
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	err := c.do(
		ctx,
		http.MethodGet,
		"/api/v0/proposals/"+strconv.FormatUint(uint64(proposalId), 10)+"/submissions",
		q,
		&ret,
	)
	return ret, err
}

func (c *Client) Journal(
	ctx context.Context,
	from uint64,
	limit int,
) ([]JournalEntryResponse, error) {
	var ret []JournalEntryResponse
	q := url.Values{}
	q.Set("from", strconv.FormatUint(from, 10))
	q.Set("limit", strconv.Itoa(limit))
	err := c.do(ctx, http.MethodGet, "/api/v0/journal", q, &ret)
	return ret, err
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	out any,
) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIdHeader, uuid.NewString())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return errors.New("nil response from server")
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &ResponseError{}
		if err := json.NewDecoder(body).Decode(&respErr.Response); err != nil {
			respErr.Response.Error = http.StatusText(resp.StatusCode)
		}
		respErr.Response.StatusCode = resp.StatusCode
		return respErr
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
