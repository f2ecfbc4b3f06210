// Package editor backs the code editor view: tab insertion on the buffer and
// the highlighted layer drawn underneath the transparent textarea.
package editor

import (
	"html/template"
	"strings"
	"unicode/utf16"
)

// TabWidth is the number of spaces a Tab key press inserts
const TabWidth = 4

var tabSpaces = strings.Repeat(" ", TabWidth)

// InsertTab replaces text[selStart:selEnd] with four spaces and returns the
// new text and caret. Positions are UTF-16 code units, the unit a textarea's
// selectionStart and selectionEnd count in. Out-of-range positions are
// clamped, a reversed selection is normalised and a position inside a
// surrogate pair is moved off it so the selection covers whole characters.
func InsertTab(text string, selStart, selEnd int) (string, int) {
	units := utf16.Encode([]rune(text))
	n := len(units)
	selStart = clampPos(selStart, n)
	selEnd = clampPos(selEnd, n)
	if selEnd < selStart {
		selStart, selEnd = selEnd, selStart
	}
	collapsed := selStart == selEnd
	if splitsPair(units, selStart) {
		selStart--
	}
	if collapsed {
		selEnd = selStart
	} else if splitsPair(units, selEnd) {
		selEnd++
	}

	var b strings.Builder
	b.Grow(len(text) + TabWidth)
	b.WriteString(string(utf16.Decode(units[:selStart])))
	b.WriteString(tabSpaces)
	b.WriteString(string(utf16.Decode(units[selEnd:])))
	return b.String(), selStart + TabWidth
}

// splitsPair reports whether pos falls between the halves of a surrogate pair
func splitsPair(units []uint16, pos int) bool {
	if pos <= 0 || pos >= len(units) {
		return false
	}
	high, low := units[pos-1], units[pos]
	return high >= 0xd800 && high < 0xdc00 && low >= 0xdc00 && low < 0xe000
}

func clampPos(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}

// Highlighter turns source text into highlighted HTML
type Highlighter interface {
	Highlight(source string) (string, error)
}

// Render produces the markup for the read-only layer. With no highlighter,
// or when highlighting fails, the source is only escaped.
func Render(source string, h Highlighter) template.HTML {
	if h != nil {
		if out, err := h.Highlight(source); err == nil {
			return template.HTML(out)
		}
	}
	return template.HTML(Escape(source))
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape replaces the five HTML special characters with entities
func Escape(source string) string {
	return escaper.Replace(source)
}
