package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// StylesheetWriter writes CSS for highlighted markup
type StylesheetWriter interface {
	WriteCSS(w io.Writer) error
}

// HighlightCSS renders the highlighter stylesheet once and serves it from memory
func HighlightCSS(css StylesheetWriter) (http.HandlerFunc, error) {
	var buf bytes.Buffer
	if err := css.WriteCSS(&buf); err != nil {
		return nil, fmt.Errorf("failed to render highlight stylesheet: %w", err)
	}
	body := buf.Bytes()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(body)
	}, nil
}
