// Package client talks to the GameMate REST API on behalf of a signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/gamesync"
	"github.com/ionutdr23/GameMate/internal/relationship"
	"github.com/ionutdr23/GameMate/internal/session"
)

var (
	_ session.ProfileFetcher = (*Client)(nil)
	_ relationship.Backend   = (*Client)(nil)
	_ gamesync.Backend       = (*Client)(nil)
)

const (
	defaultUserAgent = "gamemate-cli/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
)

type Options struct {
	BaseURL     string
	TokenSource oauth2.TokenSource
	Timeout     time.Duration
	UserAgent   string
	// Transport is the base round tripper under the bearer transport.
	Transport http.RoundTripper
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// StaticToken wraps a fixed bearer credential.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

func New(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.TokenSource == nil {
		return nil, fmt.Errorf("token source required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	baseTransport := opts.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: opts.TokenSource, Base: baseTransport},
		},
		userAgent: ua,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("api url required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api url %q has no host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	return u, nil
}

func (c *Client) FetchMyProfile(ctx context.Context) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, http.MethodGet, "v1/profiles/me", nil, nil, &p)
	return p, err
}

func (c *Client) FetchProfile(ctx context.Context, profileID string) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, http.MethodGet, "v1/profiles/"+url.PathEscape(profileID), nil, nil, &p)
	return p, err
}

func (c *Client) SearchProfiles(ctx context.Context, nickname string) ([]domain.SearchResult, error) {
	var payload struct {
		Results []domain.SearchResult `json:"results"`
	}
	q := url.Values{"nickname": {nickname}}
	err := c.do(ctx, http.MethodGet, "v1/profiles/search", q, nil, &payload)
	return payload.Results, err
}

func (c *Client) CreateProfile(ctx context.Context, in domain.ProfileInput) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, http.MethodPost, "v1/profiles", nil, in, &p)
	return p, err
}

func (c *Client) UpdateProfile(ctx context.Context, in domain.ProfileInput) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, http.MethodPut, "v1/profiles/me", nil, in, &p)
	return p, err
}

func (c *Client) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	var payload struct {
		Available bool `json:"available"`
	}
	q := url.Values{"nickname": {nickname}}
	err := c.do(ctx, http.MethodGet, "v1/profiles/check-nickname", q, nil, &payload)
	return payload.Available, err
}

func (c *Client) ListGames(ctx context.Context) ([]domain.Game, error) {
	var payload struct {
		Games []domain.Game `json:"games"`
	}
	err := c.do(ctx, http.MethodGet, "v1/games", nil, nil, &payload)
	return payload.Games, err
}

func (c *Client) CreateGameProfile(ctx context.Context, req domain.GameProfileRequest) (domain.GameProfile, error) {
	var gp domain.GameProfile
	err := c.do(ctx, http.MethodPost, "v1/profiles/me/games", nil, req, &gp)
	return gp, err
}

func (c *Client) UpdateGameProfile(ctx context.Context, req domain.GameProfileRequest) (domain.GameProfile, error) {
	var gp domain.GameProfile
	err := c.do(ctx, http.MethodPut, "v1/profiles/me/games", nil, req, &gp)
	return gp, err
}

func (c *Client) DeleteGameProfile(ctx context.Context, gameProfileID string) error {
	return c.do(ctx, http.MethodDelete, "v1/profiles/me/games/"+url.PathEscape(gameProfileID), nil, nil, nil)
}

func (c *Client) SendFriendRequest(ctx context.Context, receiverID string) (domain.FriendRequest, error) {
	var fr domain.FriendRequest
	body := map[string]string{"receiverProfileId": receiverID}
	err := c.do(ctx, http.MethodPost, "v1/friends/requests", nil, body, &fr)
	return fr, err
}

func (c *Client) CancelFriendRequest(ctx context.Context, requestID string) error {
	return c.do(ctx, http.MethodDelete, "v1/friends/requests/"+url.PathEscape(requestID), nil, nil, nil)
}

func (c *Client) RespondFriendRequest(ctx context.Context, requestID string, accept bool) error {
	body := map[string]bool{"accept": accept}
	return c.do(ctx, http.MethodPost, "v1/friends/requests/"+url.PathEscape(requestID)+"/respond", nil, body, nil)
}

func (c *Client) Unfriend(ctx context.Context, friendID string) error {
	return c.do(ctx, http.MethodDelete, "v1/friends/"+url.PathEscape(friendID), nil, nil, nil)
}

func (c *Client) ListFriends(ctx context.Context) ([]domain.ProfilePreview, error) {
	var payload struct {
		Friends []domain.ProfilePreview `json:"friends"`
	}
	err := c.do(ctx, http.MethodGet, "v1/friends", nil, nil, &payload)
	return payload.Friends, err
}

// FriendRequests are the viewer's pending requests in both directions.
type FriendRequests struct {
	Incoming []domain.FriendRequest `json:"incoming"`
	Outgoing []domain.FriendRequest `json:"outgoing"`
}

func (c *Client) ListFriendRequests(ctx context.Context) (FriendRequests, error) {
	var payload FriendRequests
	err := c.do(ctx, http.MethodGet, "v1/friends/requests", nil, nil, &payload)
	return payload, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: "/" + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Fields = envelope.Error.Fields
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
