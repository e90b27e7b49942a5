package generator

import (
	"encoding/json"
	"strings"
)

// Repair applies best-effort textual fixes to malformed JSON coming back from
// a model: markdown fences, raw control characters inside string literals,
// stray non-printables and truncated output. Each step runs only while the
// accumulated text still fails a strict decode. Well-formed JSON passes
// through untouched, and irreparable input is returned unchanged so that the
// parser reports a decode failure instead of crashing.
func Repair(raw string) string {
	if raw == "" || json.Valid([]byte(raw)) {
		return raw
	}

	s := stripFence(raw)
	if json.Valid([]byte(s)) {
		return s
	}

	s = escapeControlInStrings(s)
	if json.Valid([]byte(s)) {
		return s
	}

	s = stripControlChars(s)
	if json.Valid([]byte(s)) {
		return s
	}

	s = closeTruncated(s)
	if json.Valid([]byte(s)) {
		return s
	}

	return raw
}

// stripFence removes a single enclosing markdown code fence. A missing
// closing fence is tolerated: end of string counts as the close.
func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	nl := strings.IndexByte(t, '\n')
	if nl < 0 {
		// Fence marker with nothing after it.
		return strings.TrimSpace(strings.TrimPrefix(t, "```"))
	}
	t = t[nl+1:]
	if end := strings.LastIndex(t, "```"); end >= 0 {
		t = t[:end]
	}
	return strings.TrimSpace(t)
}

// escapeControlInStrings rewrites raw newline, carriage-return and tab
// characters that occur inside JSON string literals to their escaped forms.
// Pretty-printed strings with literal line breaks are the usual culprit. The
// scan tracks string boundaries and backslash escapes explicitly; characters
// outside strings are copied through.
func escapeControlInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	inString := false
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case inString && r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case inString && r == '\n':
			b.WriteString(`\n`)
		case inString && r == '\r':
			b.WriteString(`\r`)
		case inString && r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripControlChars drops the non-printable control characters a strict JSON
// decoder rejects (0x00-0x08, 0x0B, 0x0C, 0x0E-0x1F). Tab, LF and CR are
// kept: outside strings they are legal whitespace and inside strings the
// previous step already escaped them.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// closeTruncated completes JSON cut off mid-stream: it closes an open string
// literal if the text ends inside one, then appends closers for any
// unmatched brackets and braces in reverse nesting order.
func closeTruncated(s string) string {
	t := strings.TrimRight(s, " \t\n\r")
	if t == "" {
		return s
	}

	inString := false
	escaped := false
	var stack []byte
	for i := 0; i < len(t); i++ {
		c := t[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	// A trailing backslash would escape the quote we are about to add.
	if escaped {
		t = t[:len(t)-1]
	}
	if inString {
		t += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			t += "}"
		} else {
			t += "]"
		}
	}
	return t
}
