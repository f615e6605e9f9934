// Package client talks to the chat server the way the chat page does: join,
// long poll, post and leave, over the same HTTP endpoints.
package client

import (
	"chat-collect/domain"
	"chat-collect/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const pollExpired = "poll expired"

// PollResult is the answer to a poll. Expired means nothing happened before
// the server timeout, Empty that the chatroom does not exist anymore.
type PollResult struct {
	View    domain.ChatroomView
	Expired bool
	Empty   bool
}

// Backend is the server as seen by a Session.
type Backend interface {
	Join(ctx context.Context) (domain.JoinInfo, error)
	Poll(ctx context.Context, chatroomID, since string) (PollResult, error)
	Post(ctx context.Context, chatroomID, message string) (domain.ChatroomView, error)
	Leave(ctx context.Context, chatroomID string, reason domain.LeaveReason) (domain.ChatroomView, error)
}

// API is the HTTP Backend. The session cookie set by the server on join is
// kept in a cookie jar.
type API struct {
	base  string
	tabID string
	http  *http.Client
	log   *slog.Logger
}

// NewAPI targets the web context at baseURL, e.g. http://host:8993/ChatCollectionServer.
// The timeout must be longer than the server poll timeout.
func NewAPI(baseURL, tabID string, timeout time.Duration, log *slog.Logger) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &API{
		base:  strings.TrimSuffix(baseURL, "/"),
		tabID: tabID,
		http:  &http.Client{Jar: jar, Timeout: timeout},
		log:   log,
	}, nil
}

func (a *API) TabID() string {
	return a.tabID
}

func (a *API) Join(ctx context.Context) (domain.JoinInfo, error) {
	form := url.Values{"clientTabId": {a.tabID}, "format": {"json"}}
	var info domain.JoinInfo
	err := a.do(ctx, http.MethodPost, "join", form, &info)
	return info, err
}

func (a *API) Poll(ctx context.Context, chatroomID, since string) (PollResult, error) {
	query := url.Values{"clientTabId": {a.tabID}, "id": {chatroomID}, "timestamp": {since}}
	var resp struct {
		domain.ChatroomView
		Msg string `json:"msg"`
	}
	if err := a.do(ctx, http.MethodGet, "chatroom", query, &resp); err != nil {
		return PollResult{}, err
	}
	switch {
	case resp.Msg == pollExpired:
		return PollResult{Expired: true}, nil
	case resp.ID == "":
		return PollResult{Empty: true}, nil
	default:
		return PollResult{View: resp.ChatroomView}, nil
	}
}

func (a *API) Post(ctx context.Context, chatroomID, message string) (domain.ChatroomView, error) {
	form := url.Values{"clientTabId": {a.tabID}, "chatroom": {chatroomID}, "message": {message}}
	var view domain.ChatroomView
	err := a.do(ctx, http.MethodPost, "post", form, &view)
	return view, err
}

func (a *API) Leave(ctx context.Context, chatroomID string, reason domain.LeaveReason) (domain.ChatroomView, error) {
	query := url.Values{"clientTabId": {a.tabID}, "chatroom": {chatroomID}, "call": {strconv.Itoa(int(reason))}}
	var view domain.ChatroomView
	err := a.do(ctx, http.MethodGet, "leave", query, &view)
	return view, err
}

// Get fetches a JSON document of the server, e.g. an admin endpoint.
func (a *API) Get(ctx context.Context, path string, query url.Values, out any) error {
	return a.do(ctx, http.MethodGet, path, query, out)
}

// SetBasicAuth is used for the admin endpoints.
func (a *API) SetBasicAuth(user, password string) {
	a.http.Transport = basicAuthTransport{user: user, password: password, next: http.DefaultTransport}
}

type basicAuthTransport struct {
	user, password string
	next           http.RoundTripper
}

func (t basicAuthTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.SetBasicAuth(t.user, t.password)
	return t.next.RoundTrip(r)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *API) do(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := a.base + "/" + path
	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
	} else {
		body = strings.NewReader(params.Encode())
	}
	r, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	r.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorBody
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if sentinel := errors.FromCode(e.Code); sentinel != nil {
			return fmt.Errorf("%s %s: %w", method, path, sentinel)
		}
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, e.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	a.log.Debug("Server answered", "method", method, "path", path)
	return nil
}
