package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/cryptox"
	"github.com/learning-journal/journal/internal/dbx"
	"github.com/learning-journal/journal/internal/server/auth"
	"github.com/learning-journal/journal/internal/server/config"
	"github.com/learning-journal/journal/internal/server/repositories/repomanager"
)

// Session is what a successful login hands back to the web layer: the signed
// token to put into the cookie and when it stops being valid.
type Session struct {
	Token    string
	Username string
	Expires  time.Time
}

// AuthService checks the author's credentials against the configured
// username and bcrypt hash and manages server-side sessions.
type AuthService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	secret           []byte
	username         string
	passwordHash     string
	validityDuration time.Duration
	now              func() time.Time
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:               db,
		repomanager:      m,
		secret:           []byte(cfg.SecretKey),
		username:         cfg.AuthUsername,
		passwordHash:     cfg.AuthPasswordHash,
		validityDuration: cfg.SessionValidityDuration,
		now:              time.Now,
	}
}

// Login verifies username and password. On success it purges expired
// sessions, stores a new one in the same transaction and returns the signed
// session token.
//
// Errors: common.ErrorMissingCredentials when either value is empty,
// common.ErrorUnauthorized on mismatch, common.ErrorInternal otherwise.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, common.ErrorMissingCredentials
	}
	if !s.checkCredentials(username, password) {
		return nil, common.ErrorUnauthorized
	}

	sessionID, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var expires time.Time
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		if _, err := repo.DeleteExpired(ctx, s.now()); err != nil {
			return fmt.Errorf("error purging sessions: %w", err)
		}
		session, err := repo.Create(ctx, sessionID, username, s.validityDuration)
		if err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
		expires = session.Expires
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	token, err := auth.GenerateToken(sessionID, username, s.secret, s.validityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{Token: token, Username: username, Expires: expires}, nil
}

// Authenticate resolves a session token into the author's username. The
// token must verify and its session must still exist and be unexpired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return "", err
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if session.Expired(s.now()) {
		return "", common.ErrSessionExpired
	}
	if session.Username != claims.Username() {
		return "", common.ErrInvalidToken
	}

	return session.Username, nil
}

// Logout deletes the session behind token. Tokens that no longer verify
// have nothing to revoke and are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// checkCredentials always runs the bcrypt comparison so an unknown username
// costs the same as a wrong password.
func (s *AuthService) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := cryptox.CheckPassword(s.passwordHash, []byte(password))
	return userOK && passOK
}
