// Package scan provides nesting-aware text scanning for M source.
//
// M expressions mix three bracket kinds with string literals and quoted
// identifiers (#"Some Name"). Structural splitting must ignore anything
// inside a string or quoted identifier and anything below the top nesting
// level, so every scan here runs through one shared state machine instead
// of regular expressions.
package scan

import (
	"fmt"
	"strings"
)

// closers maps an opening bracket to its required closer.
var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// state tracks the scanner position inside one pass over M text.
// Brackets are kept on a stack so crossed pairs like {[}] are rejected,
// not just counted.
type state struct {
	stack  []byte
	inStr  bool
	inQID  bool // inside #"..."
	strOff int  // offset where the open string/quoted identifier began
}

// depth is the bracket nesting depth.
func (s *state) depth() int {
	return len(s.stack)
}

// atomic reports whether the scanner is inside a string or quoted identifier.
func (s *state) atomic() bool {
	return s.inStr || s.inQID
}

// step advances the state over src[i]. It returns the number of extra bytes
// consumed beyond the current one (for doubled-quote escapes) and an error
// for a closing bracket that does not match the innermost opener.
//
// M strings are double-quoted with "" as the escaped quote; quoted
// identifiers follow the same quoting rule after the leading #.
func (s *state) step(src string, i int) (int, error) {
	ch := src[i]

	if s.atomic() {
		if ch != '"' {
			return 0, nil
		}
		// "" is an escaped quote, not a terminator.
		if i+1 < len(src) && src[i+1] == '"' {
			return 1, nil
		}
		s.inStr = false
		s.inQID = false
		return 0, nil
	}

	switch ch {
	case '#':
		if i+1 < len(src) && src[i+1] == '"' {
			s.inQID = true
			s.strOff = i
			return 1, nil
		}
	case '"':
		s.inStr = true
		s.strOff = i
	case '(', '[', '{':
		s.stack = append(s.stack, ch)
	case ')', ']', '}':
		if len(s.stack) == 0 {
			return 0, fmt.Errorf("unbalanced %q at offset %d: no opener", string(ch), i)
		}
		open := s.stack[len(s.stack)-1]
		if closers[open] != ch {
			return 0, fmt.Errorf("unbalanced %q at offset %d: expected %q", string(ch), i, string(closers[open]))
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
	return 0, nil
}

// CheckBalance verifies that all brackets pair up in order and every string
// literal and quoted identifier is terminated.
func CheckBalance(src string) error {
	var st state
	for i := 0; i < len(src); i++ {
		skip, err := st.step(src, i)
		if err != nil {
			return err
		}
		i += skip
	}
	if st.atomic() {
		return fmt.Errorf("unterminated string or quoted identifier at offset %d", st.strOff)
	}
	if len(st.stack) > 0 {
		return fmt.Errorf("unbalanced %q: %d unclosed", string(st.stack[len(st.stack)-1]), len(st.stack))
	}
	return nil
}

// SplitTop splits src on sep occurrences at nesting depth zero, outside
// strings and quoted identifiers. Empty pieces are dropped.
func SplitTop(src string, sep byte) []string {
	var parts []string
	var st state
	start := 0
	for i := 0; i < len(src); i++ {
		if !st.atomic() && st.depth() == 0 && src[i] == sep {
			if p := strings.TrimSpace(src[start:i]); p != "" {
				parts = append(parts, p)
			}
			start = i + 1
			continue
		}
		skip, err := st.step(src, i)
		if err != nil {
			// Best effort: callers validate balance separately.
			continue
		}
		i += skip
	}
	if p := strings.TrimSpace(src[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// CutTop splits src around the first top-level occurrence of sep.
func CutTop(src string, sep byte) (before, after string, found bool) {
	i := IndexTop(src, sep)
	if i < 0 {
		return src, "", false
	}
	return src[:i], src[i+1:], true
}

// IndexTop returns the offset of the first top-level occurrence of sep,
// or -1 if none exists.
func IndexTop(src string, sep byte) int {
	var st state
	for i := 0; i < len(src); i++ {
		if !st.atomic() && st.depth() == 0 && src[i] == sep {
			return i
		}
		skip, err := st.step(src, i)
		if err != nil {
			continue
		}
		i += skip
	}
	return -1
}

// isWordByte reports whether b can be part of a bare M identifier.
func isWordByte(b byte) bool {
	return b == '_' || b == '.' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// TopLevelWords returns the start offset of every occurrence of word as a
// standalone identifier at nesting depth zero, outside strings and quoted
// identifiers.
func TopLevelWords(src, word string) []int {
	var hits []int
	var st state
	for i := 0; i < len(src); i++ {
		if !st.atomic() && st.depth() == 0 && strings.HasPrefix(src[i:], word) {
			beforeOK := i == 0 || !isWordByte(src[i-1])
			end := i + len(word)
			afterOK := end >= len(src) || !isWordByte(src[end])
			if beforeOK && afterOK {
				hits = append(hits, i)
				i = end - 1
				continue
			}
		}
		skip, err := st.step(src, i)
		if err != nil {
			continue
		}
		i += skip
	}
	return hits
}

// StripComments removes // line comments outside strings and quoted
// identifiers, preserving line structure.
func StripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for _, line := range strings.Split(src, "\n") {
		var st state
		cut := len(line)
		for i := 0; i < len(line); i++ {
			if !st.atomic() && line[i] == '/' && i+1 < len(line) && line[i+1] == '/' {
				cut = i
				break
			}
			skip, err := st.step(line, i)
			if err != nil {
				continue
			}
			i += skip
		}
		b.WriteString(line[:cut])
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// StripStrings replaces the contents of string literals with spaces so
// token scans cannot match text inside them. Quoted identifiers are kept
// verbatim: they are references, not data.
func StripStrings(src string) string {
	out := []byte(src)
	var st state
	for i := 0; i < len(src); i++ {
		wasStr := st.inStr
		skip, err := st.step(src, i)
		if err != nil {
			continue
		}
		// Blank everything inside the literal, including the escape pair,
		// but keep the delimiters so offsets stay aligned.
		if wasStr && st.inStr {
			out[i] = ' '
			for j := 1; j <= skip; j++ {
				out[i+j] = ' '
			}
		}
		i += skip
	}
	return string(out)
}
