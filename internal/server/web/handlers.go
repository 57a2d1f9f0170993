package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/server/models"
)

const maxFormBytes = 1 << 20

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "list", &pageData{Entries: entries})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadEntry(w, r)
	if !ok {
		return
	}

	body, err := s.markdown.Render([]byte(entry.BodyText))
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "detail", &pageData{
		Title: entry.Title,
		Entry: entry,
		// goldmark drops raw HTML from the source, the output is safe to embed.
		Body: template.HTML(body),
	})
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "form", &pageData{
		Title: "New entry",
		Form:  &entryForm{Action: "/new", Submit: "new"},
	})
}

func (s *Server) handleNewSubmit(w http.ResponseWriter, r *http.Request) {
	title, body, ok := s.readEntryForm(w, r)
	if !ok {
		return
	}

	_, err := s.entries.Create(r.Context(), title, body)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			s.render(w, r, http.StatusOK, "form", &pageData{
				Title: "New entry",
				Form:  failedForm("/new", "new", title, body, err),
			})
			return
		}
		s.internalError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadEntry(w, r)
	if !ok {
		return
	}

	s.render(w, r, http.StatusOK, "form", &pageData{
		Title: "Edit " + entry.Title,
		Entry: entry,
		Form: &entryForm{
			Action:   editPath(entry.ID),
			Submit:   "save",
			Title:    entry.Title,
			BodyText: entry.BodyText,
		},
	})
}

func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "")
		return
	}
	title, body, ok := s.readEntryForm(w, r)
	if !ok {
		return
	}

	_, err := s.entries.Update(r.Context(), id, title, body)
	switch {
	case err == nil:
		http.Redirect(w, r, detailPath(id), http.StatusFound)
	case errors.Is(err, common.ErrorNotFound):
		s.renderError(w, r, http.StatusNotFound, "")
	case errors.Is(err, common.ErrorValidation):
		s.render(w, r, http.StatusOK, "form", &pageData{
			Title: "Edit entry",
			Form:  failedForm(editPath(id), "save", title, body, err),
		})
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", &pageData{Title: "Log in"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form data.")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	session, err := s.auth.Login(r.Context(), username, password)
	switch {
	case err == nil:
		s.setSessionCookie(w, session.Token, session.Expires)
		s.logger.Info(r.Context(), "author logged in", "request_id", requestIDFromContext(r.Context()), "username", session.Username)
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, common.ErrorMissingCredentials):
		s.render(w, r, http.StatusBadRequest, "login", &pageData{
			Title:    "Log in",
			Username: username,
			Message:  "Username and password are required.",
		})
	case errors.Is(err, common.ErrorUnauthorized):
		s.logger.Warn(r.Context(), "failed login", "request_id", requestIDFromContext(r.Context()), "username", username)
		s.render(w, r, http.StatusOK, "login", &pageData{
			Title:    "Log in",
			Username: username,
			Message:  "Login Failed",
		})
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(common.SessionCookieName); err == nil && cookie.Value != "" {
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			s.logger.Error(r.Context(), "logout failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.css)
}

// loadEntry fetches the entry named by the {id} path value, answering 404
// itself when there is none.
func (s *Server) loadEntry(w http.ResponseWriter, r *http.Request) (*models.Entry, bool) {
	id, ok := entryID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "")
		return nil, false
	}

	entry, err := s.entries.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.renderError(w, r, http.StatusNotFound, "")
		} else {
			s.internalError(w, r, err)
		}
		return nil, false
	}
	return entry, true
}

func (s *Server) readEntryForm(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form data.")
		return "", "", false
	}
	return r.PostForm.Get("title"), r.PostForm.Get("body_text"), true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	s.renderError(w, r, http.StatusInternalServerError, "")
}

func entryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func failedForm(action, submit, title, body string, err error) *entryForm {
	f := &entryForm{Action: action, Submit: submit, Title: title, BodyText: body, Failed: true}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for field := range verrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			f.Problems = append(f.Problems, fmt.Sprintf("%s: %v", field, verrs[field]))
		}
	}
	return f
}

func detailPath(id int64) string { return "/detail/" + strconv.FormatInt(id, 10) }
func editPath(id int64) string   { return "/edit/" + strconv.FormatInt(id, 10) }
