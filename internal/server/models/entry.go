// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/learning-journal/journal/internal/common"
)

// Entry is a single journal post.
type Entry struct {
	// ID is assigned by the database on insert.
	ID int64 `json:"id"`
	// Title is plain text, at most common.TitleMaxLength characters.
	Title string `json:"title"`
	// BodyText is markdown source.
	BodyText string `json:"body_text"`
	// Created is set by the database on insert and never changes.
	Created time.Time `json:"created"`
}

// Validate checks the fields an author controls. Both must be non-empty.
func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Title, validation.Required, validation.RuneLength(1, common.TitleMaxLength)),
		validation.Field(&e.BodyText, validation.Required),
	)
}
