// Package common contains shared constants and sentinel errors used across
// the journal components.
package common

// SessionCookieName is the cookie that carries the signed session token
// between the browser and the server.
const SessionCookieName = "journal_session"

// TitleMaxLength is the maximum number of characters in an entry title.
const TitleMaxLength = 127
