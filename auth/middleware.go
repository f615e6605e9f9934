package auth

import (
	"chat-collect/errors"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "CGISESSID"

type contextKey string

const SessionIDKey contextKey = "session_id"

// SessionFrom returns the session id injected by the session middlewares.
func SessionFrom(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(SessionIDKey).(string)
	return sid, ok && sid != ""
}

func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// Sessions reads and writes the session cookie.
type Sessions struct {
	tokens SessionTokens
	path   string
	secure bool
	log    *slog.Logger
}

func NewSessions(tokens SessionTokens, path string, secure bool, log *slog.Logger) Sessions {
	return Sessions{tokens: tokens, path: path, secure: secure, log: log}
}

func (s Sessions) fromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", errors.ErrInvalidSession
	}
	return s.tokens.Parse(cookie.Value)
}

// Require rejects requests without a valid session cookie with 401.
func (s Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.fromRequest(r)
		if err != nil {
			s.log.Debug("Request without valid session", "path", r.URL.Path, "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(errors.HTTPStatus(err))
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "code": errors.Code(err)})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sid)))
	})
}

// Ensure starts a new session, and sets its cookie, when the request does not
// carry a valid one.
func (s Sessions) Ensure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.fromRequest(r)
		if err != nil {
			sid = NewSessionID()
			token, err := s.tokens.Issue(sid)
			if err != nil {
				s.log.Error("Session token not issued", "error", err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     s.path,
				Secure:   s.secure,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			s.log.Info("Session started", "session", sid)
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sid)))
	})
}

// AdminOnly protects the admin pages with HTTP basic auth checked against
// an Argon2id hash. An empty hash leaves the pages open.
func AdminOnly(user, passwordHash string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, password, ok := r.BasicAuth()
			if ok && name == user {
				match, err := ComparePassword(password, passwordHash)
				if err != nil {
					log.Error("Admin password hash unusable", "error", err)
				}
				if match {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="chat-collect admin"`)
			http.Error(w, errors.ErrUnauthorized.Error(), http.StatusUnauthorized)
		})
	}
}
