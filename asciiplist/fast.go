package asciiplist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/pbxfmt/pbx/pbxval"
)

// ParseFast parses an ASCII plist document by rewriting it into strict
// JSON and delegating to encoding/json's streaming Token decoder, trading
// precise error position for throughput. json.Decoder.Token is used
// rather than Decode-into-any so that object key order is preserved
// (Go's map[string]any decode target would discard it), satisfying the
// same key-order invariant ParseClassic provides.
func ParseFast(data []byte) (pbxval.Value, error) {
	data = stripHeader(data)
	rewritten, err := rewriteToJSON(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(rewritten))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing Xcode plist via JSON failed: %w", err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (pbxval.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			var seq pbxval.Sequence
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				seq = append(seq, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			if seq == nil {
				seq = pbxval.Sequence{}
			}
			return seq, nil
		default:
			return nil, fmt.Errorf("unexpected JSON delimiter %v", t)
		}
	case json.Number:
		return pbxval.String(t.String()), nil
	case string:
		return pbxval.String(t), nil
	default:
		return pbxval.String(fmt.Sprint(t)), nil
	}
}

func decodeJSONObject(dec *json.Decoder) (pbxval.Value, error) {
	m := pbxval.NewMapping()
	var dataLiteral string
	hasDataLiteral := false
	fieldCount := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)
		fieldCount++
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		if key == "$data" {
			if s, ok := v.(pbxval.String); ok {
				dataLiteral = string(s)
				hasDataLiteral = true
				continue
			}
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	if hasDataLiteral && fieldCount == 1 {
		return decodeDataLiteral(dataLiteral)
	}
	return m, nil
}

// jsonRewriter walks the same token stream the classic parser uses and
// emits the strict-JSON equivalent of spec.md §4.3's rewrite rules,
// rather than building a tree: "{ k = v; k2 = v2; }" becomes
// "{"k": v, "k2": v2}", "( a, b, c, )" becomes "[a, b, c]", and bare
// unquoted tokens are wrapped in quotes.
type jsonRewriter struct {
	nextTok func() (token, error, bool)
	tok     token
	havePos bool
	err     error
	data    []byte
	out     bytes.Buffer
}

func rewriteToJSON(data []byte) ([]byte, error) {
	nextTok, stop := iter.Pull2(tokens(data))
	defer stop()
	r := &jsonRewriter{nextTok: nextTok, data: data}
	tok, err := r.next()
	if err != nil {
		if err == errEOF {
			r.out.WriteString("{}")
			return r.out.Bytes(), nil
		}
		return nil, err
	}
	if err := r.rewriteValue(tok); err != nil {
		return nil, err
	}
	return r.out.Bytes(), nil
}

func (r *jsonRewriter) peek() (token, error) {
	if r.err != nil || r.havePos {
		return r.tok, r.err
	}
	tok, err, ok := r.nextTok()
	if !ok {
		r.err = errEOF
		return token{}, r.err
	}
	if err != nil {
		r.err = err
		return token{}, r.err
	}
	r.tok = tok
	r.havePos = true
	return r.tok, nil
}

func (r *jsonRewriter) next() (token, error) {
	tok, err := r.peek()
	if err != nil {
		return token{}, err
	}
	r.havePos = false
	return tok, nil
}

func (r *jsonRewriter) rewriteValue(tok token) error {
	switch tok.b[0] {
	case '{':
		return r.rewriteDict()
	case '(':
		return r.rewriteArray()
	case '<':
		r.out.WriteString(`{"$data":`)
		writeJSONString(&r.out, string(tok.b[1:len(tok.b)-1]))
		r.out.WriteByte('}')
		return nil
	case '"':
		s, err := unquote(r.data, tok.i+1, tok.b[1:len(tok.b)-1])
		if err != nil {
			return err
		}
		writeJSONString(&r.out, s)
		return nil
	default:
		writeJSONString(&r.out, string(tok.b))
		return nil
	}
}

func (r *jsonRewriter) rewriteDict() error {
	r.out.WriteByte('{')
	first := true
	for {
		tok, err := r.next()
		if err != nil {
			return errOrEOF(r.data, 0, err, "unterminated dictionary")
		}
		if tok.b[0] == '}' {
			r.out.WriteByte('}')
			return nil
		}
		if !first {
			r.out.WriteByte(',')
		}
		first = false
		key := string(tok.b)
		if tok.b[0] == '"' {
			k, err := unquote(r.data, tok.i+1, tok.b[1:len(tok.b)-1])
			if err != nil {
				return err
			}
			key = k
		}
		writeJSONString(&r.out, key)
		r.out.WriteByte(':')
		eq, err := r.next()
		if err != nil {
			return errOrEOF(r.data, 0, err, "expected '=' after key")
		}
		if eq.b[0] != '=' {
			return newSyntaxError(r.data, eq.i, "expected '=' after dictionary key, got %q", eq.b)
		}
		vtok, err := r.next()
		if err != nil {
			return errOrEOF(r.data, 0, err, "expected value")
		}
		if err := r.rewriteValue(vtok); err != nil {
			return err
		}
		semi, err := r.next()
		if err != nil {
			return errOrEOF(r.data, 0, err, "expected ';' after dictionary entry")
		}
		if semi.b[0] != ';' {
			return newMissingTerminator(r.data, semi.i, "expected ';' after dictionary entry, got %q", semi.b)
		}
	}
}

func (r *jsonRewriter) rewriteArray() error {
	r.out.WriteByte('[')
	first := true
	for {
		tok, err := r.next()
		if err != nil {
			return errOrEOF(r.data, 0, err, "unterminated array")
		}
		if tok.b[0] == ')' {
			r.out.WriteByte(']')
			return nil
		}
		if !first {
			if tok.b[0] != ',' {
				return newSyntaxError(r.data, tok.i, "expected ',' between array elements, got %q", tok.b)
			}
			tok, err = r.next()
			if err != nil {
				return errOrEOF(r.data, 0, err, "unterminated array")
			}
			if tok.b[0] == ')' {
				r.out.WriteByte(']')
				return nil
			}
			r.out.WriteByte(',')
		}
		first = false
		if err := r.rewriteValue(tok); err != nil {
			return err
		}
	}
}

func writeJSONString(out *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	out.Write(b)
}
