package auth

import (
	"chat-collect/errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "AdminPassw0rd!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password
	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword(password, "$bcrypt$nope")
	req.ErrorIs(err, errors.ErrInvalidHash)
}

func TestSessionTokens(t *testing.T) {
	req := require.New(t)
	tokens := NewSessionTokens("secret", time.Hour)

	token, err := tokens.Issue("session-1")
	req.NoError(err)
	sid, err := tokens.Parse(token)
	req.NoError(err)
	req.Equal("session-1", sid)

	// A token signed with another key is refused
	_, err = NewSessionTokens("other", time.Hour).Parse(token)
	req.ErrorIs(err, errors.ErrInvalidSession)

	// An expired token is refused
	expired := NewSessionTokens("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	req.ErrorIs(err, errors.ErrInvalidSession)
}

func TestRequestValidation(t *testing.T) {
	req := require.New(t)
	roomID := "0b7c2a9e-6c1f-4a8e-9d0e-3f5b8f1c2d4a"
	tests := []struct {
		name    string
		request any
		wantErr bool
	}{
		{"Valid join", JoinRequest{ClientTabID: "11111"}, false},
		{"Missing tab", JoinRequest{}, true},
		{"Valid poll", PollRequest{ClientTabID: "1", ChatroomID: roomID}, false},
		{"Chatroom is not a uuid", PollRequest{ClientTabID: "1", ChatroomID: "room-1"}, true},
		{"Message too long", PostRequest{ClientTabID: "1", ChatroomID: roomID, Message: strings.Repeat("a", MaxMessageLength+1)}, true},
		{"Valid leave", LeaveRequest{ClientTabID: "1", ChatroomID: roomID, Call: 4}, false},
		{"Unknown call", LeaveRequest{ClientTabID: "1", ChatroomID: roomID, Call: 5}, true},
		{"Search without query", SearchRequest{Limit: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.request)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidRequest)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestSessions_EnsureThenRequire(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(NewSessionTokens("secret", time.Hour), "/chat", false, slog.Default())
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFrom(r.Context())
	})

	// Given a request without cookie, a session is required
	rec := httptest.NewRecorder()
	sessions.Require(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/chatroom", nil))
	req.Equal(http.StatusUnauthorized, rec.Code)

	// When the join page is requested
	rec = httptest.NewRecorder()
	sessions.Ensure(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/join", nil))

	// Then a session cookie is issued
	cookies := rec.Result().Cookies()
	req.Len(cookies, 1)
	req.Equal(SessionCookie, cookies[0].Name)
	req.Equal("/chat", cookies[0].Path)
	req.NotEmpty(seen)
	first := seen

	// And it is accepted by the other endpoints
	r := httptest.NewRequest(http.MethodGet, "/chat/chatroom", nil)
	r.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	sessions.Require(handler).ServeHTTP(rec, r)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal(first, seen)
}

func TestAdminOnly(t *testing.T) {
	req := require.New(t)
	hash, err := HashPassword("s3cret")
	req.NoError(err)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	protected := AdminOnly("admin", hash, slog.Default())(ok)

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	req.Equal(http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.SetBasicAuth("admin", "s3cret")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, r)
	req.Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	AdminOnly("admin", "", slog.Default())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	req.Equal(http.StatusOK, rec.Code)
}
