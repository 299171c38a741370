package signaling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin typed wrapper over the signaling HTTP API. One
// method per endpoint, no retries: the polling layer owns retry
// semantics, a failed call here simply surfaces as an error.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a signaling client for the given server base URL,
// e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// BaseURL returns the server base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health pings the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		OK bool `json:"ok"`
	}
	return c.getJSON(ctx, "/health", &resp)
}

// GetOffer fetches the room's current offer together with the stopped
// flag and revision counter.
func (c *Client) GetOffer(ctx context.Context, room string) (*OfferResponse, error) {
	var resp OfferResponse
	if err := c.getJSON(ctx, "/offer?room="+url.QueryEscape(room), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostOffer publishes the presenter's offer for the room.
func (c *Client) PostOffer(ctx context.Context, room string, sdp SessionDescription) error {
	return c.postJSON(ctx, "/offer", PostSDPRequest{Room: room, SDP: &sdp})
}

// GetAnswer fetches the room's current answer.
func (c *Client) GetAnswer(ctx context.Context, room string) (*AnswerResponse, error) {
	var resp AnswerResponse
	if err := c.getJSON(ctx, "/answer?room="+url.QueryEscape(room), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostAnswer publishes the viewer's answer for the room.
func (c *Client) PostAnswer(ctx context.Context, room string, sdp SessionDescription) error {
	return c.postJSON(ctx, "/answer", PostSDPRequest{Room: room, SDP: &sdp})
}

// PostCandidate appends an ICE candidate to the named side's sequence.
func (c *Client) PostCandidate(ctx context.Context, room string, side Side, cand CandidateInit) error {
	return c.postJSON(ctx, "/candidate", PostCandidateRequest{Room: room, Side: side, Candidate: &cand})
}

// GetCandidates returns the candidates appended to the named side
// since the given cursor, plus the new cursor.
func (c *Client) GetCandidates(ctx context.Context, room string, side Side, since int) (*CandidatesResponse, error) {
	var resp CandidatesResponse
	path := "/candidate?room=" + url.QueryEscape(room) +
		"&side=" + string(side) +
		"&since=" + strconv.Itoa(since)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Close ends the room's current session generation.
func (c *Client) Close(ctx context.Context, room string) error {
	return c.postJSON(ctx, "/close", CloseRequest{Room: room})
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s -> %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
