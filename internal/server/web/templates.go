package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"list", "detail", "form", "login", "error"}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"isodate": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}

// pageData is the single view model shared by all pages.
type pageData struct {
	Author string
	Title  string

	Entries []*models.Entry
	Entry   *models.Entry
	Body    template.HTML

	Form           *entryForm
	TitleMaxLength int

	Username string
	Message  string

	Status     int
	StatusText string
}

type entryForm struct {
	Action   string
	Submit   string
	Title    string
	BodyText string
	Failed   bool
	Problems []string
}

// parseTemplates builds one template set per page, each combined with the
// shared layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// render executes page into a buffer first so that a template failure
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	data.Author = authorFromContext(r.Context())
	data.TitleMaxLength = common.TitleMaxLength

	t, ok := s.pages[page]
	if !ok {
		s.logger.Error(r.Context(), "unknown template", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error(r.Context(), "template error", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	text := http.StatusText(status)
	s.render(w, r, status, "error", &pageData{
		Title:      fmt.Sprintf("%d %s", status, text),
		Status:     status,
		StatusText: text,
		Message:    message,
	})
}
