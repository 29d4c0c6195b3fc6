package parsing

import "strings"

// TokenHandler maps the content found between a delimiter pair to its
// replacement text. Errors abort the parse and surface to the caller
// unchanged.
type TokenHandler interface {
	HandleToken(content string) (string, error)
}

// TokenHandlerFunc adapts a plain function to a TokenHandler.
type TokenHandlerFunc func(content string) (string, error)

func (f TokenHandlerFunc) HandleToken(content string) (string, error) {
	return f(content)
}

// TokenParser scans text for open/close delimited spans and replaces each
// well-formed span with the handler's result. Delimiters are matched as
// literal substrings, never as pattern syntax. A delimiter immediately
// preceded by a backslash is emitted literally with the backslash stripped
// and does not open or close a span. A span whose close token never arrives
// is emitted verbatim from the open token onward.
//
// A parser holds no per-call state and is safe for concurrent use.
type TokenParser struct {
	open    string
	close   string
	handler TokenHandler
}

// NewTokenParser builds a parser for the given delimiter pair.
func NewTokenParser(open, close string, handler TokenHandler) *TokenParser {
	return &TokenParser{open: open, close: close, handler: handler}
}

// Parse returns text with every unescaped open...close span replaced by the
// handler's output. Empty input yields "".
func (p *TokenParser) Parse(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	start := strings.Index(text, p.open)
	if start == -1 {
		return text, nil
	}

	var out strings.Builder
	out.Grow(len(text))
	var expr strings.Builder
	offset := 0

	for start > -1 {
		if start > 0 && text[start-1] == '\\' {
			// Escaped open token: drop the backslash, keep the token literally.
			out.WriteString(text[offset : start-1])
			out.WriteString(p.open)
			offset = start + len(p.open)
		} else {
			expr.Reset()
			out.WriteString(text[offset:start])
			offset = start + len(p.open)
			end := indexFrom(text, p.close, offset)
			for end > -1 {
				if end > offset && text[end-1] == '\\' {
					// Escaped close token inside the span: literal, keep searching.
					expr.WriteString(text[offset : end-1])
					expr.WriteString(p.close)
					offset = end + len(p.close)
					end = indexFrom(text, p.close, offset)
				} else {
					expr.WriteString(text[offset:end])
					offset = end + len(p.close)
					break
				}
			}
			if end == -1 {
				// Unterminated span: not a substitution candidate.
				out.WriteString(text[start:])
				offset = len(text)
			} else {
				sub, err := p.handler.HandleToken(expr.String())
				if err != nil {
					return "", err
				}
				out.WriteString(sub)
			}
		}
		start = indexFrom(text, p.open, offset)
	}
	if offset < len(text) {
		out.WriteString(text[offset:])
	}
	return out.String(), nil
}

// indexFrom is strings.Index anchored at a starting offset.
func indexFrom(s, sub string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.Index(s[from:], sub)
	if i == -1 {
		return -1
	}
	return from + i
}
