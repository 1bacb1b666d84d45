package scanner

import (
	"fmt"
)

// checkDelimiters verifies that parentheses, braces, and brackets are
// balanced outside of strings, character literals, and comments, and
// that strings and block comments are terminated. This is the one
// condition the scanner treats as fatal for a file.
func checkDelimiters(source []byte) error {
	type open struct {
		ch   byte
		line int
	}

	var stack []open
	line := 1
	i := 0
	n := len(source)

	for i < n {
		c := source[i]

		switch c {
		case '\n':
			line++
			i++

		case '/':
			if i+1 < n && source[i+1] == '/' {
				for i < n && source[i] != '\n' {
					i++
				}
			} else if i+1 < n && source[i+1] == '*' {
				depth := 1
				openedAt := line
				i += 2
				for i < n && depth > 0 {
					if source[i] == '\n' {
						line++
					}
					if i+1 < n && source[i] == '/' && source[i+1] == '*' {
						depth++
						i += 2
						continue
					}
					if i+1 < n && source[i] == '*' && source[i+1] == '/' {
						depth--
						i += 2
						continue
					}
					i++
				}
				if depth > 0 {
					return fmt.Errorf("unterminated block comment opened at line %d", openedAt)
				}
			} else {
				i++
			}

		case '"':
			openedAt := line
			i++
			for i < n {
				if source[i] == '\\' {
					i += 2
					continue
				}
				if source[i] == '\n' {
					line++
				}
				if source[i] == '"' {
					break
				}
				i++
			}
			if i >= n {
				return fmt.Errorf("unterminated string literal opened at line %d", openedAt)
			}
			i++

		case '\'':
			// Rust char literals and lifetimes both start with a quote.
			// A char literal closes within a few bytes; a lifetime has
			// no closing quote. Only treat it as a literal when one is
			// in sight.
			closed := false
			j := i + 1
			if j < n && source[j] == '\\' {
				j++
			}
			for k := j + 1; k < n && k <= i+4; k++ {
				if source[k] == '\'' {
					i = k + 1
					closed = true
					break
				}
			}
			if !closed {
				i++
			}

		case '(', '{', '[':
			stack = append(stack, open{ch: c, line: line})
			i++

		case ')', '}', ']':
			if len(stack) == 0 {
				return fmt.Errorf("unmatched %q at line %d", string(c), line)
			}
			top := stack[len(stack)-1]
			if !delimitersMatch(top.ch, c) {
				return fmt.Errorf("mismatched %q at line %d (opened with %q at line %d)",
					string(c), line, string(top.ch), top.line)
			}
			stack = stack[:len(stack)-1]
			i++

		default:
			i++
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return fmt.Errorf("unclosed %q opened at line %d", string(top.ch), top.line)
	}

	return nil
}

func delimitersMatch(open, close byte) bool {
	switch open {
	case '(':
		return close == ')'
	case '{':
		return close == '}'
	case '[':
		return close == ']'
	}
	return false
}
