// Package asciiplist implements Xcode's "old-style" ASCII property list
// dialect: a tokenizer, a precise-error classic recursive-descent parser, a
// throughput-oriented fast parser that rewrites the input to JSON, and a
// canonical unparser that reproduces Xcode's own formatting byte for byte.
package asciiplist

import (
	"iter"
	"regexp"
)

// token is one lexeme together with the byte offset it starts at, the
// same shape the teacher's lexer.go used for its regex-driven token
// stream.
type token struct {
	i int
	b []byte
}

type lexer struct {
	data     []byte
	i        int
	yieldTok func(token, error) bool
}

func (l *lexer) yield(n int) bool {
	if !l.yieldTok(token{l.i, l.data[l.i : l.i+n]}, nil) {
		return false
	}
	l.i += n
	return true
}

// spaceRE skips whitespace, "//" line comments, and non-nesting /* */
// block comments, mirroring the teacher's spaceRE but restricted to the
// two comment forms the ASCII plist dialect actually allows ("//", not
// "#", and no nested block comments).
var spaceRE = regexp.MustCompile(`^([[:space:]]|//[^\n]*|/\*([^*]|\*[^/])*\*?\*/)*`)

func (l *lexer) skipSpace() {
	l.i += len(spaceRE.Find(l.data[l.i:]))
}

var (
	quotedStringRE = regexp.MustCompile(`(?s)^(([^"\\]|\\.)*)"`)
	unquotedRE     = regexp.MustCompile(`^[A-Za-z0-9_$/:.-]+`)
	dataRE         = regexp.MustCompile(`^[0-9A-Fa-f \t\r\n]*>`)
)

// tokens lexes data into a stream of single-byte structural tokens
// ('{','}','(',')','=',';',',') and multi-byte tokens for quoted
// strings, unquoted strings, and data blobs ('<' through '>'). Errors are reported through
// the iterator's second yielded value, the same convention lexer.go used.
func tokens(data []byte) iter.Seq2[token, error] {
	return func(yield func(token, error) bool) {
		l := &lexer{data: data, yieldTok: yield}
		for l.i = 0; ; {
			l.skipSpace()
			if l.i == len(l.data) {
				return
			}
			switch c := l.data[l.i]; c {
			case '{', '}', '(', ')', '=', ';', ',':
				if !l.yield(1) {
					return
				}
				continue
			case '"':
				m := quotedStringRE.Find(l.data[l.i+1:])
				if m == nil {
					yield(token{}, newSyntaxError(data, l.i, "unterminated quoted string"))
					return
				}
				if !l.yield(1 + len(m)) {
					return
				}
				continue
			case '<':
				m := dataRE.Find(l.data[l.i+1:])
				if m == nil {
					yield(token{}, newSyntaxError(data, l.i, "unterminated data blob"))
					return
				}
				if !l.yield(1 + len(m)) {
					return
				}
				continue
			}
			if m := unquotedRE.Find(l.data[l.i:]); m != nil {
				if !l.yield(len(m)) {
					return
				}
				continue
			}
			yield(token{}, newSyntaxError(data, l.i, "unexpected byte %q", l.data[l.i]))
			return
		}
	}
}
