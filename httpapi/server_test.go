package httpapi

import (
	"chat-collect/archive"
	"chat-collect/auth"
	"chat-collect/domain"
	"chat-collect/errors"
	"chat-collect/mocks"
	"chat-collect/observability"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testSecret   = "secret"
	testSession  = "sid-1"
	testChatroom = "0b7c2a9e-6c1f-4a8e-9d0e-3f5b8f1c2d4a"
)

type fixture struct {
	service *mocks.MockIChatService
	handler http.Handler
	cookie  *http.Cookie
}

func newFixture(t *testing.T, cfg Config) fixture {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockIChatService(ctrl)
	tokens := auth.NewSessionTokens(testSecret, time.Hour)
	sessions := auth.NewSessions(tokens, "/chat", false, slog.Default())
	token, err := tokens.Issue(testSession)
	require.NoError(t, err)
	if cfg.WebContext == "" {
		cfg.WebContext = "chat"
	}
	return fixture{
		service: service,
		handler: NewRouter(slog.Default(), cfg, service, sessions),
		cookie:  &http.Cookie{Name: auth.SessionCookie, Value: token},
	}
}

func (f fixture) do(method, target string, form url.Values, withCookie bool) *httptest.ResponseRecorder {
	var r *http.Request
	if method == http.MethodPost {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		if len(form) > 0 {
			target += "?" + form.Encode()
		}
		r = httptest.NewRequest(method, target, nil)
	}
	if withCookie {
		r.AddCookie(f.cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServer_StaticPages(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})

	rec := f.do(http.MethodGet, "/chat/version", nil, false)
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), "Version: 1.0")

	rec = f.do(http.MethodGet, "/chat/index", nil, false)
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `<form id="form-join" action="join" method="POST">`)

	rec = f.do(http.MethodGet, "/chat/static/img/progress-green.svg", nil, false)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("image/svg+xml", rec.Header().Get("Content-Type"))

	rec = f.do(http.MethodGet, "/chat/static/missing.css", nil, false)
	req.Equal(http.StatusNotFound, rec.Code)

	// Routes live under the web context only
	rec = f.do(http.MethodGet, "/version", nil, false)
	req.Equal(http.StatusNotFound, rec.Code)
}

func TestServer_JoinPage(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	info := domain.JoinInfo{ClientTabID: "tab-1", ChatroomID: testChatroom, IsFirstUser: true, MsgCountLow: 2, MsgCountHigh: 10}

	// Given a chatroom where the user already wrote
	f.service.EXPECT().
		Join(gomock.Any()).
		DoAndReturn(func(user domain.User) (domain.JoinInfo, error) {
			req.Equal(domain.UserID(testSession, "tab-1"), user.ID)
			req.Equal(map[string]string{"gender": "f"}, user.Attribs)
			return info, nil
		})
	f.service.EXPECT().Transcript(testChatroom).Return([]domain.Event{
		{Type: domain.MsgEvent, From: domain.UserID(testSession, "tab-1"), Timestamp: "2024-03-01T10:00:01.000000", Body: "<b>hi</b>"},
	}, nil)

	// When joining with the HTML form
	rec := f.do(http.MethodPost, "/chat/join", url.Values{"clientTabId": {"tab-1"}, "gender": {"f"}}, true)

	// Then the chatroom page is rendered with the history
	req.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	req.Contains(body, `id="main-box"`)
	req.Contains(body, `id="send"`)
	req.Contains(body, `id="chat-progressbar"`)
	chatroomID := regexp.MustCompile(`(?m)^\s+var chatroomId = '(.+)';$`).FindStringSubmatch(body)
	req.Len(chatroomID, 2)
	req.Equal(testChatroom, chatroomID[1])
	req.Contains(body, `<div class="msg-body">&lt;b&gt;hi&lt;&#x2F;b&gt;</div>`)
	req.Contains(body, `<div class="msg-user">あなた</div>`)
}

func TestServer_JoinIssuesSession(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	f.service.EXPECT().Join(gomock.Any()).Return(domain.JoinInfo{ChatroomID: testChatroom, PollInterval: time.Second}, nil)

	rec := f.do(http.MethodPost, "/chat/join", url.Values{"clientTabId": {"tab-1"}, "format": {"json"}}, false)

	req.Equal(http.StatusOK, rec.Code)
	req.Len(rec.Result().Cookies(), 1)
	info := decode[domain.JoinInfo](t, rec)
	req.Equal(testChatroom, info.ChatroomID)
	req.Equal(time.Second, info.PollInterval)
}

func TestServer_JoinRefused(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})

	// Without tab id
	rec := f.do(http.MethodPost, "/chat/join", url.Values{}, true)
	req.Equal(http.StatusBadRequest, rec.Code)
	req.Equal("invalid_request", decode[errorBody](t, rec).Code)

	// While chatting from another tab
	f.service.EXPECT().Join(gomock.Any()).Return(domain.JoinInfo{}, errors.ErrSessionBusy).Times(2)
	rec = f.do(http.MethodPost, "/chat/join", url.Values{"clientTabId": {"tab-2"}}, true)
	req.Equal(http.StatusForbidden, rec.Code)
	req.Contains(rec.Body.String(), `id="busy"`)

	rec = f.do(http.MethodPost, "/chat/join", url.Values{"clientTabId": {"tab-2"}, "format": {"json"}}, true)
	req.Equal(http.StatusForbidden, rec.Code)
	req.Equal("session_busy", decode[errorBody](t, rec).Code)
}

func TestServer_Poll(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	userID := domain.UserID(testSession, "tab-1")
	query := url.Values{"clientTabId": {"tab-1"}, "id": {testChatroom}, "timestamp": {"2024-03-01T10:00:00.000000"}}

	// A session cookie is required
	rec := f.do(http.MethodGet, "/chat/chatroom", query, false)
	req.Equal(http.StatusUnauthorized, rec.Code)
	req.Equal("invalid_session", decode[errorBody](t, rec).Code)

	gomock.InOrder(
		f.service.EXPECT().Poll(gomock.Any(), userID, testChatroom, "2024-03-01T10:00:00.000000").
			Return(domain.ChatroomView{ID: testChatroom, Users: []string{domain.Self}}, nil),
		f.service.EXPECT().Poll(gomock.Any(), userID, testChatroom, gomock.Any()).
			Return(domain.ChatroomView{}, errors.ErrPollExpired),
		f.service.EXPECT().Poll(gomock.Any(), userID, testChatroom, gomock.Any()).
			Return(domain.ChatroomView{}, errors.ErrChatroomNotFound),
		f.service.EXPECT().Poll(gomock.Any(), userID, testChatroom, gomock.Any()).
			Return(domain.ChatroomView{}, errors.ErrNotInChatroom),
	)

	rec = f.do(http.MethodGet, "/chat/chatroom", query, true)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal(testChatroom, decode[domain.ChatroomView](t, rec).ID)

	rec = f.do(http.MethodGet, "/chat/chatroom", query, true)
	req.JSONEq(`{"msg":"poll expired"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/chat/chatroom", query, true)
	req.JSONEq(`{}`, rec.Body.String())

	// Somebody else's chatroom looks unknown
	rec = f.do(http.MethodGet, "/chat/chatroom", query, true)
	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`{}`, rec.Body.String())

	// A malformed chatroom id never reaches the lobby
	rec = f.do(http.MethodGet, "/chat/chatroom", url.Values{"clientTabId": {"tab-1"}, "id": {"nope"}}, true)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestServer_Post(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	userID := domain.UserID(testSession, "tab-1")
	form := url.Values{"clientTabId": {"tab-1"}, "chatroom": {testChatroom}, "message": {"hello"}}

	f.service.EXPECT().Post(userID, testChatroom, "hello").Return(domain.ChatroomView{ID: testChatroom}, nil)
	rec := f.do(http.MethodPost, "/chat/post", form, true)
	req.Equal(http.StatusOK, rec.Code)

	f.service.EXPECT().Post(userID, testChatroom, "hello").Return(domain.ChatroomView{}, errors.ErrNotInChatroom)
	rec = f.do(http.MethodPost, "/chat/post", form, true)
	req.Equal(http.StatusForbidden, rec.Code)
	req.Equal("not_in_chatroom", decode[errorBody](t, rec).Code)

	form.Set("message", strings.Repeat("a", auth.MaxMessageLength+1))
	rec = f.do(http.MethodPost, "/chat/post", form, true)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestServer_Leave(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	userID := domain.UserID(testSession, "tab-1")
	query := url.Values{"clientTabId": {"tab-1"}, "chatroom": {testChatroom}, "call": {"4"}}

	gomock.InOrder(
		f.service.EXPECT().Leave(userID, testChatroom, domain.LeaveStopConfirmed).
			Return(domain.ChatroomView{ID: testChatroom, Users: []string{domain.Other}}, true, nil),
		f.service.EXPECT().Leave(userID, testChatroom, domain.LeaveStopConfirmed).
			Return(domain.ChatroomView{}, false, nil),
		f.service.EXPECT().Leave(userID, testChatroom, domain.LeaveStopConfirmed).
			Return(domain.ChatroomView{}, false, errors.ErrChatroomNotFound),
		f.service.EXPECT().Leave(userID, testChatroom, domain.LeaveUnspecified).
			Return(domain.ChatroomView{ID: testChatroom, Users: []string{domain.Other}}, true, nil),
	)

	rec := f.do(http.MethodGet, "/chat/leave", query, true)
	req.Equal(testChatroom, decode[domain.ChatroomView](t, rec).ID)

	rec = f.do(http.MethodGet, "/chat/leave", query, true)
	req.JSONEq(`{}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/chat/leave", query, true)
	req.JSONEq(`{}`, rec.Body.String())

	// A leave without call is accepted
	rec = f.do(http.MethodGet, "/chat/leave", url.Values{"clientTabId": {"tab-1"}, "chatroom": {testChatroom}}, true)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal(testChatroom, decode[domain.ChatroomView](t, rec).ID)

	query.Set("call", "9")
	rec = f.do(http.MethodGet, "/chat/leave", query, true)
	req.Equal(http.StatusBadRequest, rec.Code)

	query.Set("call", "x")
	rec = f.do(http.MethodGet, "/chat/leave", query, true)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestServer_AdminPage(t *testing.T) {
	req := require.New(t)
	loc := time.FixedZone("JST", 9*3600)
	f := newFixture(t, Config{Location: loc})
	created := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	f.service.EXPECT().ExperimentID().Return("exp-1")
	f.service.EXPECT().Chatrooms().Return(
		[]domain.ChatroomSummary{{ID: "room-1", Users: []string{"a_1", "b_2"}, Events: 3, Created: created, Modified: created}},
		[]domain.ChatroomSummary{{ID: "room-2"}, {ID: "room-3"}},
	)

	rec := f.do(http.MethodGet, "/chat/admin", nil, false)

	req.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	req.Contains(body, "<h2>チャットサーバー (対話: exp-1)</h2>")
	req.Contains(body, "チャットルーム(Active) (1)")
	req.Contains(body, "チャットルーム(Disactive) (2)")
	req.Contains(body, "<td>a_1, b_2</td><td>3</td><td>2024-03-01 10:00:00</td>")
	req.Contains(body, `href="/chat/admin/chatrooms/room-1"`)
}

func TestServer_AdminJSON(t *testing.T) {
	req := require.New(t)
	inspected := false
	f := newFixture(t, Config{Store: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { inspected = true })})

	f.service.EXPECT().ExperimentID().Return("exp-1")
	f.service.EXPECT().Chatrooms().Return(nil, nil)
	rec := f.do(http.MethodGet, "/chat/admin/chatrooms", nil, false)
	req.JSONEq(`{"experimentId":"exp-1","active":[],"released":[]}`, rec.Body.String())

	f.service.EXPECT().Transcript("room-1").Return([]domain.Event{{Type: domain.MsgEvent, Body: "hi"}}, nil)
	rec = f.do(http.MethodGet, "/chat/admin/chatrooms/room-1", nil, false)
	req.Len(decode[[]domain.Event](t, rec), 1)

	f.service.EXPECT().Transcript("room-9").Return(nil, nil)
	rec = f.do(http.MethodGet, "/chat/admin/chatrooms/room-9", nil, false)
	req.Equal(http.StatusNotFound, rec.Code)

	f.service.EXPECT().Stats().Return(observability.MonitoringStats{Joins: 4})
	rec = f.do(http.MethodGet, "/chat/admin/stats", nil, false)
	req.Equal(uint64(4), decode[observability.MonitoringStats](t, rec).Joins)

	f.service.EXPECT().Search(gomock.Any(), "hello", "exp-1", 5).Return([]archive.Hit{{ChatroomID: "room-1"}}, nil)
	rec = f.do(http.MethodGet, "/chat/admin/search", url.Values{"q": {"hello"}, "experiment": {"exp-1"}, "limit": {"5"}}, false)
	req.Len(decode[[]archive.Hit](t, rec), 1)

	rec = f.do(http.MethodGet, "/chat/admin/search", url.Values{"q": {""}}, false)
	req.Equal(http.StatusBadRequest, rec.Code)

	f.do(http.MethodGet, "/chat/admin/store", nil, false)
	req.True(inspected)
}

func TestServer_AdminAuth(t *testing.T) {
	req := require.New(t)
	hash, err := auth.HashPassword("s3cret")
	req.NoError(err)
	f := newFixture(t, Config{AdminUser: "admin", AdminPasswordHash: hash})

	rec := f.do(http.MethodGet, "/chat/admin/stats", nil, false)
	req.Equal(http.StatusUnauthorized, rec.Code)

	f.service.EXPECT().Stats().Return(observability.MonitoringStats{})
	r := httptest.NewRequest(http.MethodGet, "/chat/admin/stats", nil)
	r.SetBasicAuth("admin", "s3cret")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	req.Equal(http.StatusOK, rec.Code)
}
