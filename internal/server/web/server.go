// Package web serves the journal over HTTP: server-rendered pages for
// listing, reading and editing entries, plus the author login.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/learning-journal/journal/internal/logging"
	"github.com/learning-journal/journal/internal/server/models"
	"github.com/learning-journal/journal/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// EntryService is the entry logic the handlers depend on.
type EntryService interface {
	List(ctx context.Context) ([]*models.Entry, error)
	Get(ctx context.Context, id int64) (*models.Entry, error)
	Create(ctx context.Context, title, body string) (*models.Entry, error)
	Update(ctx context.Context, id int64, title, body string) (*models.Entry, error)
}

// AuthService is the login and session logic the handlers depend on.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}

// Renderer turns entry bodies into HTML.
type Renderer interface {
	Render(source []byte) ([]byte, error)
	WriteCSS(w io.Writer) error
}

type Server struct {
	address      string
	entries      EntryService
	auth         AuthService
	markdown     Renderer
	logger       logging.Logger
	cookieSecure bool

	pages   map[string]*template.Template
	css     []byte
	handler http.Handler
}

// NewServer parses the page templates, prepares the highlight stylesheet and
// builds the routing table.
func NewServer(address string, l logging.Logger, es EntryService, as AuthService, md Renderer, cookieSecure bool) (*Server, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	var css bytes.Buffer
	if err := md.WriteCSS(&css); err != nil {
		return nil, err
	}

	s := &Server{
		address:      address,
		entries:      es,
		auth:         as,
		markdown:     md,
		logger:       l.With("module", "http_server"),
		cookieSecure: cookieSecure,
		pages:        pages,
		css:          css.Bytes(),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleList)
	mux.HandleFunc("GET /detail/{id}", s.handleDetail)

	mux.HandleFunc("GET /new", s.handleNewForm)
	mux.Handle("POST /new", s.requireAuthor(http.HandlerFunc(s.handleNewSubmit)))
	mux.HandleFunc("GET /edit/{id}", s.handleEditForm)
	mux.Handle("POST /edit/{id}", s.requireAuthor(http.HandlerFunc(s.handleEditSubmit)))

	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /static/highlight.css", s.handleCSS)

	return s.logRequests(s.withSession(s.withNotFoundPage(mux)))
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
