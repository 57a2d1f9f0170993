// Package archive moves entries in and out of the database as markdown
// documents with YAML front matter: export to S3-compatible storage and
// import from a directory.
package archive

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/learning-journal/journal/internal/server/models"
)

// FrontMatter is the metadata block at the top of an entry document.
type FrontMatter struct {
	ID      int64     `yaml:"id,omitempty"`
	Title   string    `yaml:"title"`
	Created time.Time `yaml:"created,omitempty"`
}

// Document is a parsed entry file.
type Document struct {
	FrontMatter
	Body string
}

// Encode renders an entry as front matter followed by its markdown body.
func Encode(e *models.Entry) ([]byte, error) {
	meta, err := yaml.Marshal(FrontMatter{ID: e.ID, Title: e.Title, Created: e.Created.UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(e.BodyText)
	if !strings.HasSuffix(e.BodyText, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Decode splits a document into front matter and body. A document without a
// front matter block decodes to an empty FrontMatter and the full text.
func Decode(source []byte) (*Document, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	return &Document{
		FrontMatter: meta,
		Body:        strings.TrimLeft(string(body), "\n"),
	}, nil
}
