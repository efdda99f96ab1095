package response

import (
	"bytes"
	"encoding/json"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// jsonTokenType identifies the kind of JSON token for syntax coloring.
type jsonTokenType int

const (
	jsonTokenKey jsonTokenType = iota
	jsonTokenString
	jsonTokenNumber
	jsonTokenBool
	jsonTokenNull
	jsonTokenPunct
	jsonTokenWhitespace
)

type jsonToken struct {
	typ   jsonTokenType
	value string
}

var tokenColorName = map[jsonTokenType]fyne.ThemeColorName{
	jsonTokenKey:        theme.ColorNamePrimary,
	jsonTokenString:     theme.ColorNameSuccess,
	jsonTokenNumber:     theme.ColorNameWarning,
	jsonTokenBool:       theme.ColorNameError,
	jsonTokenNull:       theme.ColorNameDisabled,
	jsonTokenPunct:      theme.ColorNameForeground,
	jsonTokenWhitespace: theme.ColorNameForeground,
}

// prettyJSON indents body when it is valid JSON.
func prettyJSON(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return body, false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", "  "); err != nil {
		return body, false
	}
	return buf.String(), true
}

// bodySegments renders a response body: highlighted when it is JSON,
// plain monospace otherwise.
func bodySegments(body string) []widget.RichTextSegment {
	if pretty, ok := prettyJSON(body); ok {
		return highlightJSON(pretty)
	}
	if body == "" {
		return nil
	}
	return []widget.RichTextSegment{monoSegment(body, theme.ColorNameForeground)}
}

func monoSegment(text string, color fyne.ThemeColorName) *widget.TextSegment {
	return &widget.TextSegment{
		Style: widget.RichTextStyle{
			ColorName: color,
			Inline:    true,
			SizeName:  theme.SizeNameText,
			TextStyle: fyne.TextStyle{Monospace: true},
		},
		Text: text,
	}
}

// highlightJSON converts a pretty-printed JSON string into colored segments.
func highlightJSON(input string) []widget.RichTextSegment {
	tokens := tokenizeJSON(input)
	segments := make([]widget.RichTextSegment, 0, len(tokens))
	for _, tok := range tokens {
		segments = append(segments, monoSegment(tok.value, tokenColorName[tok.typ]))
	}
	return segments
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || strings.IndexByte(".eE+-", c) >= 0
}

// scanWhile returns the end of the run starting at i whose bytes satisfy ok.
func scanWhile(input string, i int, ok func(byte) bool) int {
	for i < len(input) && ok(input[i]) {
		i++
	}
	return i
}

// scanString returns the end of the string literal opening at i.
func scanString(input string, i int) int {
	for j := i + 1; j < len(input); j++ {
		switch input[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(input)
}

// tokenizeJSON breaks a JSON string into typed tokens. Strings followed by a
// colon are keys.
func tokenizeJSON(input string) []jsonToken {
	tokens := make([]jsonToken, 0, 128)
	emit := func(typ jsonTokenType, from, to int) int {
		tokens = append(tokens, jsonToken{typ: typ, value: input[from:to]})
		return to
	}
	literal := func(i int, word string) bool {
		return strings.HasPrefix(input[i:], word)
	}

	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == '"':
			i = emit(jsonTokenString, i, scanString(input, i))
		case ch == '-' || (ch >= '0' && ch <= '9'):
			i = emit(jsonTokenNumber, i, scanWhile(input, i+1, isNumberByte))
		case literal(i, "true"):
			i = emit(jsonTokenBool, i, i+4)
		case literal(i, "false"):
			i = emit(jsonTokenBool, i, i+5)
		case literal(i, "null"):
			i = emit(jsonTokenNull, i, i+4)
		case isJSONSpace(ch):
			i = emit(jsonTokenWhitespace, i, scanWhile(input, i, isJSONSpace))
		default:
			i = emit(jsonTokenPunct, i, i+1)
		}
	}

	last := -1 // index of the previous string token awaiting a colon
	for idx, tok := range tokens {
		switch {
		case tok.typ == jsonTokenWhitespace:
		case tok.typ == jsonTokenString:
			last = idx
		case tok.typ == jsonTokenPunct && tok.value == ":" && last >= 0:
			tokens[last].typ = jsonTokenKey
			last = -1
		default:
			last = -1
		}
	}
	return tokens
}
