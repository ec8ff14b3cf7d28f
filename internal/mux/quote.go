package mux

import (
	"fmt"
	"strings"
)

// QuoteArg renders a single argument for display. Arguments containing
// whitespace, quotes, or backslashes are wrapped in double quotes with
// the embedded quotes and backslashes escaped; everything else passes
// through untouched so typical flag text stays readable.
func QuoteArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"\\") {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// CommandLine renders a binary plus argument list as a single
// copy-pasteable line.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, QuoteArg(binary))
	for _, arg := range args {
		parts = append(parts, QuoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// Tokenize splits a rendered command line back into its arguments. It is
// the exact inverse of CommandLine for any argument list: quoted regions
// may contain whitespace and the escapes \" and \\.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		inToken bool
		quoted  bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
			inToken = true
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if escaped || quoted {
		return nil, fmt.Errorf("tokenize: unterminated quote in %q", line)
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
