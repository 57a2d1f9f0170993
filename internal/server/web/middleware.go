package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/learning-journal/journal/internal/common"
)

type ctxKey string

const (
	authorKey    ctxKey = "author"
	requestIDKey ctxKey = "requestID"
)

func authorFromContext(ctx context.Context) string {
	author, _ := ctx.Value(authorKey).(string)
	return author
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// missWriter swallows the mux's plain-text 404 so a page can be rendered
// in its place. Other statuses pass through untouched.
type missWriter struct {
	http.ResponseWriter
	missed bool
}

func (m *missWriter) WriteHeader(status int) {
	if status == http.StatusNotFound {
		m.missed = true
		return
	}
	m.ResponseWriter.WriteHeader(status)
}

func (m *missWriter) Write(b []byte) (int, error) {
	if m.missed {
		return len(b), nil
	}
	return m.ResponseWriter.Write(b)
}

// withNotFoundPage serves the HTML error page for paths no route matches.
// Method mismatches keep the mux's 405 reply.
func (s *Server) withNotFoundPage(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		mw := &missWriter{ResponseWriter: w}
		h.ServeHTTP(mw, r)
		if mw.missed {
			s.renderError(w, r, http.StatusNotFound, "")
		}
	})
}

// logRequests tags each request with an id and logs its outcome.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Info(ctx, "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// withSession resolves the session cookie into the author name. Stale or
// forged cookies are cleared and the request continues anonymously.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		author, err := s.auth.Authenticate(ctx, cookie.Value)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrSessionExpired) {
				s.logger.Debug(ctx, "dropping session cookie", "request_id", requestIDFromContext(ctx), "reason", err)
			} else {
				s.logger.Error(ctx, "session lookup failed", "request_id", requestIDFromContext(ctx), "error", err)
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, authorKey, author)))
	})
}

// requireAuthor answers 403 to anonymous requests.
func (s *Server) requireAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authorFromContext(r.Context()) == "" {
			s.renderError(w, r, http.StatusForbidden, "You need to be logged in to do this.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
