// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client to interact with an oracle network node.
// Reads are plain requests, state changes are signed envelopes sent through a Sender.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/oracleclient/common"
	"github.com/vechain/oraclenet/thor"
)

// Client represents the HTTP client for interacting with a node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// URL returns the node url.
func (c *Client) URL() string {
	return c.url
}

// GetNode returns the ledger head of the node.
func (c *Client) GetNode() (*types.Node, error) {
	var node types.Node
	if err := c.get("/node", &node); err != nil {
		return nil, fmt.Errorf("unable to retrieve node - %w", err)
	}
	return &node, nil
}

// GetNetwork returns the network config.
func (c *Client) GetNetwork() (*types.Network, error) {
	var network types.Network
	if err := c.get("/network", &network); err != nil {
		return nil, fmt.Errorf("unable to retrieve network - %w", err)
	}
	return &network, nil
}

// GetNonce returns the last nonce accepted from signer.
func (c *Client) GetNonce(signer thor.Address) (uint64, error) {
	var nonce types.Nonce
	if err := c.get("/network/nonces/"+signer.String(), &nonce); err != nil {
		return 0, fmt.Errorf("unable to retrieve nonce - %w", err)
	}
	return nonce.Nonce, nil
}

// GetFeeds returns all feeds.
func (c *Client) GetFeeds() ([]*types.Feed, error) {
	var list []*types.Feed
	if err := c.get("/feeds", &list); err != nil {
		return nil, fmt.Errorf("unable to retrieve feeds - %w", err)
	}
	return list, nil
}

// GetFeed returns a feed, nil if unknown.
func (c *Client) GetFeed(id oracle.FeedID) (*types.Feed, error) {
	var feed *types.Feed
	if err := c.get("/feeds/"+url.PathEscape(string(id)), &feed); err != nil {
		return nil, fmt.Errorf("unable to retrieve feed - %w", err)
	}
	return feed, nil
}

// GetRound returns the in-flight round of a feed, nil if no report is pending.
func (c *Client) GetRound(id oracle.FeedID) (*types.Round, error) {
	var round *types.Round
	if err := c.get("/feeds/"+url.PathEscape(string(id))+"/round", &round); err != nil {
		return nil, fmt.Errorf("unable to retrieve round - %w", err)
	}
	return round, nil
}

// GetLatest returns the latest value of a feed, nil if absent or older than maxAge seconds.
// A nil maxAge accepts any age.
func (c *Client) GetLatest(id oracle.FeedID, maxAge *uint64) (*types.Latest, error) {
	path := "/feeds/" + url.PathEscape(string(id)) + "/latest"
	if maxAge != nil {
		path += "?maxAge=" + strconv.FormatUint(*maxAge, 10)
	}
	var latest *types.Latest
	if err := c.get(path, &latest); err != nil {
		return nil, fmt.Errorf("unable to retrieve latest value - %w", err)
	}
	return latest, nil
}

// GetLatestWithFallback returns the latest fresh value of primary, else of fallback.
func (c *Client) GetLatestWithFallback(primary, fallback oracle.FeedID, maxAge, fallbackMaxAge uint64) (*types.Latest, error) {
	query := url.Values{}
	query.Set("maxAge", strconv.FormatUint(maxAge, 10))
	query.Set("fallbackMaxAge", strconv.FormatUint(fallbackMaxAge, 10))
	path := "/feeds/" + url.PathEscape(string(primary)) + "/latest/fallback/" + url.PathEscape(string(fallback)) + "?" + query.Encode()

	var latest *types.Latest
	if err := c.get(path, &latest); err != nil {
		return nil, fmt.Errorf("unable to retrieve latest value - %w", err)
	}
	return latest, nil
}

// GetStake returns the staking account of an oracle.
func (c *Client) GetStake(oracle thor.Address) (*types.Stake, error) {
	var stake types.Stake
	if err := c.get("/staking/"+oracle.String(), &stake); err != nil {
		return nil, fmt.Errorf("unable to retrieve stake - %w", err)
	}
	return &stake, nil
}

// GetTokens returns the builtin tokens.
func (c *Client) GetTokens() ([]*types.Token, error) {
	var list []*types.Token
	if err := c.get("/tokens", &list); err != nil {
		return nil, fmt.Errorf("unable to retrieve tokens - %w", err)
	}
	return list, nil
}

// GetToken returns a builtin token.
func (c *Client) GetToken(token thor.Address) (*types.Token, error) {
	var tok types.Token
	if err := c.get("/tokens/"+token.String(), &tok); err != nil {
		return nil, fmt.Errorf("unable to retrieve token - %w", err)
	}
	return &tok, nil
}

// GetBalance returns the token balance of owner.
func (c *Client) GetBalance(token, owner thor.Address) (*types.Balance, error) {
	var bal types.Balance
	if err := c.get("/tokens/"+token.String()+"/balances/"+owner.String(), &bal); err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}
	return &bal, nil
}

// FilterEvents queries the event logs.
func (c *Client) FilterEvents(req *types.EventFilter) ([]*types.FilteredEvent, error) {
	var events []*types.FilteredEvent
	if err := c.post("/logs/event", req, &events); err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}
	return events, nil
}

// FilterTransfers queries the transfer logs.
func (c *Client) FilterTransfers(req *types.TransferFilter) ([]*types.FilteredTransfer, error) {
	var transfers []*types.FilteredTransfer
	if err := c.post("/logs/transfer", req, &transfers); err != nil {
		return nil, fmt.Errorf("unable to filter transfers - %w", err)
	}
	return transfers, nil
}

func (c *Client) get(path string, out any) error {
	body, err := c.httpRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) post(path string, payload, out any) error {
	return c.send(http.MethodPost, path, payload, out)
}

func (c *Client) send(method, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to marshal payload - %w", err)
	}
	body, err := c.httpRequest(method, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) httpRequest(method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, c.url+path, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &common.StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(responseBody))}
	}
	return responseBody, nil
}
