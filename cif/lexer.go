package cif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// tokenKind identifies the syntactic role of a token.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenDataBlock
	tokenTag
	tokenLoop
	tokenValue
)

// token is one lexical unit of a CIF stream.
type token struct {
	kind tokenKind
	text string
	line int
}

// lexer tokenizes the CIF 1.1 subset needed for coordinate files:
// data block headings, tags, loop_ keywords, quoted and unquoted
// values, and semicolon-delimited text fields. Comments are dropped.
type lexer struct {
	scanner *bufio.Scanner
	line    int
	// pending holds tokens lexed from the current line.
	pending []token
}

func newLexer(r io.Reader) *lexer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &lexer{scanner: sc}
}

// next returns the next token, or a tokenEOF token at end of input.
func (lx *lexer) next() (token, error) {
	for len(lx.pending) == 0 {
		if !lx.scanner.Scan() {
			if err := lx.scanner.Err(); err != nil {
				return token{}, fmt.Errorf("failed to read input: %w", err)
			}
			return token{kind: tokenEOF, line: lx.line}, nil
		}
		lx.line++
		line := lx.scanner.Text()

		// Text fields start with a semicolon in column one and run
		// until a line holding only a semicolon.
		if strings.HasPrefix(line, ";") {
			text, err := lx.lexTextField(line[1:])
			if err != nil {
				return token{}, err
			}
			return token{kind: tokenValue, text: text, line: lx.line}, nil
		}

		if err := lx.lexLine(line); err != nil {
			return token{}, err
		}
	}
	t := lx.pending[0]
	lx.pending = lx.pending[1:]
	return t, nil
}

// lexTextField consumes the remainder of a semicolon-delimited field.
func (lx *lexer) lexTextField(first string) (string, error) {
	var parts []string
	if first != "" {
		parts = append(parts, first)
	}
	for lx.scanner.Scan() {
		lx.line++
		line := lx.scanner.Text()
		if strings.HasPrefix(line, ";") {
			return strings.Join(parts, "\n"), nil
		}
		parts = append(parts, line)
	}
	if err := lx.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return "", fmt.Errorf("line %d: unterminated text field", lx.line)
}

// lexLine splits one line into tokens, honoring quoting rules.
func (lx *lexer) lexLine(line string) error {
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case c == '#':
			// Comment runs to end of line.
			return nil

		case c == '\'' || c == '"':
			// A quote closes only when followed by whitespace or EOL.
			j := i + 1
			for j < len(line) {
				if line[j] == c && (j+1 == len(line) || line[j+1] == ' ' || line[j+1] == '\t') {
					break
				}
				j++
			}
			if j >= len(line) {
				return fmt.Errorf("line %d: unterminated quoted value", lx.line)
			}
			lx.emit(tokenValue, line[i+1:j])
			i = j + 1

		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			lx.emitBare(line[i:j])
			i = j
		}
	}
	return nil
}

func (lx *lexer) emit(kind tokenKind, text string) {
	lx.pending = append(lx.pending, token{kind: kind, text: text, line: lx.line})
}

// emitBare classifies an unquoted word.
func (lx *lexer) emitBare(word string) {
	lower := strings.ToLower(word)
	switch {
	case strings.HasPrefix(lower, "data_"):
		lx.emit(tokenDataBlock, word[len("data_"):])
	case lower == "loop_":
		lx.emit(tokenLoop, word)
	case strings.HasPrefix(word, "_"):
		lx.emit(tokenTag, word)
	default:
		lx.emit(tokenValue, word)
	}
}
