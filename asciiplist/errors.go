package asciiplist

import "github.com/pbxfmt/pbx/pbxerr"

func newSyntaxError(data []byte, idx int, reason string, args ...any) error {
	return pbxerr.New(pbxerr.ParseSyntax, data, idx, reason, args...)
}

func newMissingTerminator(data []byte, idx int, reason string, args ...any) error {
	return pbxerr.New(pbxerr.MissingTerminator, data, idx, reason, args...)
}

func newRecursionLimit(data []byte, idx int) error {
	return pbxerr.New(pbxerr.RecursionLimit, data, idx, "nesting depth exceeds maximum")
}

func newInvalidEscape(data []byte, idx int, reason string, args ...any) error {
	return pbxerr.New(pbxerr.InvalidEscape, data, idx, reason, args...)
}
