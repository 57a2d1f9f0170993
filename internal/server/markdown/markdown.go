// Package markdown renders entry bodies to HTML with syntax highlighted
// code blocks.
package markdown

import (
	"bytes"
	"fmt"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/util"
)

// DefaultStyle is the chroma style used for the highlight stylesheet.
const DefaultStyle = "friendly"

// Renderer converts markdown to HTML. It is stateless and safe for
// concurrent use.
type Renderer struct {
	engine goldmark.Markdown
	style  string
}

// New constructs a Renderer. An unknown style falls back to chroma's default.
func New(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{
		engine: newEngine(style),
		style:  style,
	}
}

// newEngine builds goldmark with GFM and class-based chroma highlighting.
// Raw HTML is left out of the output (goldmark's default).
func newEngine(style string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
				highlighting.WithWrapperRenderer(codeWrapper),
			),
		),
	)
}

// codeWrapper wraps every fenced block in the codehilite div. Blocks chroma
// did not highlight (no or unknown language) arrive as bare escaped text, so
// they also get pre and code to keep their line breaks and indentation.
func codeWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if entering {
		_, _ = w.WriteString(`<div class="codehilite">`)
		if !c.Highlighted() {
			_, _ = w.WriteString("<pre><code>")
		}
		return
	}
	if !c.Highlighted() {
		_, _ = w.WriteString("</code></pre>")
	}
	_, _ = w.WriteString("</div>\n")
}

// Render converts markdown source into an HTML fragment.
func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSS writes the stylesheet for the classes emitted in code blocks.
func (r *Renderer) WriteCSS(w io.Writer) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(w, styles.Get(r.style)); err != nil {
		return fmt.Errorf("write css: %w", err)
	}
	return nil
}
