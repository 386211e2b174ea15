// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package splitter breaks a SQL script into individual statements.
//
// Semicolons only terminate a statement when they appear outside string literals,
// quoted identifiers, comments, and the BEGIN ... END body of a trigger. Statement
// text is returned exactly as written, surrounding whitespace and comments included,
// so joining the pieces back with ";" reproduces the literals of the source.
//
// Unterminated quotes or comments are not an error: everything after the opening
// delimiter is treated as part of the final statement.
package splitter

import "strings"

// Statement is one SQL statement in source order.
type Statement struct {
	// Index is the zero-based position among the returned statements.
	Index int
	SQL   string
}

type state int

const (
	stateCode state = iota
	stateSingle
	stateDouble
	stateBacktick
	stateBracket
	stateLineComment
	stateBlockComment
)

// scanner holds the per-statement bookkeeping while walking a script.
type scanner struct {
	src   string
	start int
	st    state
	// hasCode is set once the current statement contains something other
	// than whitespace and comments.
	hasCode bool
	// words holds the leading keywords of the current statement, uppercased.
	words   []string
	trigger bool
	depth   int
	out     []Statement
}

// Split returns the statements of script in order. Whitespace-only and
// comment-only fragments are dropped; a final statement without a trailing
// semicolon is still returned.
func Split(script string) []Statement {
	s := &scanner{src: script}
	s.run()
	return s.out
}

// Strings is Split without the position metadata.
func Strings(script string) []string {
	stmts := Split(script)
	out := make([]string, len(stmts))
	for i, st := range stmts {
		out[i] = st.SQL
	}
	return out
}

func (s *scanner) run() {
	src := s.src
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch s.st {
		case stateSingle:
			if c == '\'' {
				s.st = stateCode
			}
		case stateDouble:
			if c == '"' {
				s.st = stateCode
			}
		case stateBacktick:
			if c == '`' {
				s.st = stateCode
			}
		case stateBracket:
			if c == ']' {
				s.st = stateCode
			}
		case stateLineComment:
			if c == '\n' {
				s.st = stateCode
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				s.st = stateCode
				i++
			}
		case stateCode:
			switch {
			case c == '\'':
				s.st, s.hasCode = stateSingle, true
			case c == '"':
				s.st, s.hasCode = stateDouble, true
			case c == '`':
				s.st, s.hasCode = stateBacktick, true
			case c == '[':
				s.st, s.hasCode = stateBracket, true
			case c == '-' && i+1 < len(src) && src[i+1] == '-':
				s.st = stateLineComment
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				s.st = stateBlockComment
				i++
			case c == ';':
				if s.depth > 0 {
					continue
				}
				s.emit(i)
				s.start = i + 1
			case isWordStart(c):
				j := i + 1
				for j < len(src) && isWordPart(src[j]) {
					j++
				}
				s.keyword(src[i:j])
				i = j - 1
			case !isSpace(c):
				s.hasCode = true
			}
		}
	}
	s.emit(len(src))
}

// keyword records a bare word seen outside quotes and comments.
func (s *scanner) keyword(word string) {
	s.hasCode = true
	w := strings.ToUpper(word)
	if len(s.words) < 4 {
		s.words = append(s.words, w)
		if len(s.words) >= 2 && s.words[0] == "CREATE" && w == "TRIGGER" {
			s.trigger = true
		}
	}
	if !s.trigger {
		return
	}
	switch w {
	case "BEGIN", "CASE":
		s.depth++
	case "END":
		if s.depth > 0 {
			s.depth--
		}
	}
}

// emit closes the statement ending at end (exclusive) and resets per-statement state.
func (s *scanner) emit(end int) {
	if s.hasCode {
		s.out = append(s.out, Statement{Index: len(s.out), SQL: s.src[s.start:end]})
	}
	s.hasCode = false
	s.words = s.words[:0]
	s.trigger = false
	s.depth = 0
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9') || c == '$'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
