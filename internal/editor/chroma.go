package editor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ChromaHighlighter highlights source with chroma, emitting CSS classes so
// the theme stylesheet decides the colours.
type ChromaHighlighter struct {
	lexer     chroma.Lexer
	formatter *html.Formatter
	style     *chroma.Style
}

// NewChromaHighlighter returns a highlighter for language ("python" when
// empty). Unknown languages fall back to chroma's plain-text lexer.
func NewChromaHighlighter(language, styleName string) *ChromaHighlighter {
	if language == "" {
		language = "python"
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &ChromaHighlighter{
		lexer:     chroma.Coalesce(lexer),
		formatter: html.New(html.WithClasses(true), html.PreventSurroundingPre(true)),
		style:     styles.Get(styleName),
	}
}

func (c *ChromaHighlighter) Highlight(source string) (string, error) {
	iterator, err := c.lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise: %w", err)
	}
	var buf bytes.Buffer
	if err := c.formatter.Format(&buf, c.style, iterator); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return buf.String(), nil
}

// WriteCSS writes the stylesheet for the highlighter's classes
func (c *ChromaHighlighter) WriteCSS(w io.Writer) error {
	return c.formatter.WriteCSS(w, c.style)
}
