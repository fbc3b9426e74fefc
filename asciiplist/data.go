package asciiplist

import (
	"fmt"
	"strings"

	"github.com/pbxfmt/pbx/pbxval"
)

// decodeDataLiteral decodes the whitespace-separated hex digits of a
// plist <data> blob, as found between the angle brackets, into bytes.
func decodeDataLiteral(inner string) (pbxval.Data, error) {
	inner = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, inner)
	if len(inner)%2 != 0 {
		return nil, fmt.Errorf("data blob has odd number of hex digits")
	}
	out := make([]byte, len(inner)/2)
	for i := 0; i < len(out); i++ {
		hi, ok1 := hexVal(inner[2*i])
		lo, ok2 := hexVal(inner[2*i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid hex digit in data blob")
		}
		out[i] = hi<<4 | lo
	}
	return pbxval.Data(out), nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
