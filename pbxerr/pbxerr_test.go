package pbxerr

import (
	"strings"
	"testing"
)

func TestNewComputesLineColumnAndSnippet(t *testing.T) {
	t.Parallel()
	data := []byte("abc\ndef\nghi")
	// idx 5 is the 'e' in "def".
	e := New(ParseSyntax, data, 5, "unexpected %s", "token")
	if e.Line != 2 || e.Col != 2 {
		t.Errorf("Line,Col = %d,%d, want 2,2", e.Line, e.Col)
	}
	if e.Snippet != "def" {
		t.Errorf("Snippet = %q, want %q", e.Snippet, "def")
	}
	if e.CaretIndex != 1 {
		t.Errorf("CaretIndex = %d, want 1", e.CaretIndex)
	}
	if e.Reason != "unexpected token" {
		t.Errorf("Reason = %q, want %q", e.Reason, "unexpected token")
	}
}

func TestNewAtStartOfInput(t *testing.T) {
	t.Parallel()
	data := []byte("abc\ndef")
	e := New(ParseSyntax, data, 0, "bad start")
	if e.Line != 1 || e.Col != 1 {
		t.Errorf("Line,Col = %d,%d, want 1,1", e.Line, e.Col)
	}
	if e.Snippet != "abc" {
		t.Errorf("Snippet = %q, want %q", e.Snippet, "abc")
	}
}

func TestErrorStringIncludesPositionAndKind(t *testing.T) {
	t.Parallel()
	e := New(InvalidEscape, []byte("a"), 0, "bad escape %q", `\q`)
	got := e.Error()
	if !strings.Contains(got, "1:1:") {
		t.Errorf("Error() = %q, missing position", got)
	}
	if !strings.Contains(got, "invalid escape") {
		t.Errorf("Error() = %q, missing kind", got)
	}
	if !strings.Contains(got, `bad escape "\\q"`) {
		t.Errorf("Error() = %q, missing reason", got)
	}
}

func TestReportRendersCaretUnderColumn(t *testing.T) {
	t.Parallel()
	data := []byte("{ a = @; }")
	e := New(ParseSyntax, data, 6, "unexpected '@'")
	got := e.Report()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Report() = %q, want 3 lines", got)
	}
	if lines[1] != "{ a = @; }" {
		t.Errorf("Report() snippet line = %q, want the source line", lines[1])
	}
	caretLine := lines[2]
	if !strings.HasPrefix(caretLine, strings.Repeat(" ", e.CaretIndex)+"^") {
		t.Errorf("Report() caret line = %q, caret not under column %d", caretLine, e.CaretIndex)
	}
}

func TestKindStrings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		k    Kind
		want string
	}{
		{ParseSyntax, "syntax error"},
		{RecursionLimit, "recursion limit exceeded"},
		{MissingTerminator, "missing terminator"},
		{InvalidEscape, "invalid escape"},
		{UnknownFormat, "unknown format"},
		{XMLSyntax, "XML syntax error"},
		{JSONSyntax, "JSON syntax error"},
		{LintMismatch, "lint mismatch"},
	}
	for _, tc := range tests {
		if got := tc.k.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.k, got, tc.want)
		}
	}
}

func TestListAggregatesErrors(t *testing.T) {
	t.Parallel()
	var l List
	if err := l.Err(); err != nil {
		t.Errorf("Err() on empty list = %v, want nil", err)
	}
	l.Add(New(ParseSyntax, []byte("a"), 0, "first"))
	l.Add(New(ParseSyntax, []byte("b"), 0, "second"))
	err := l.Err()
	if err == nil {
		t.Fatal("Err() on non-empty list = nil, want error")
	}
	got := err.Error()
	if !strings.Contains(got, "first") || !strings.Contains(got, "second") {
		t.Errorf("List.Error() = %q, want both messages", got)
	}
}
