// Package jsonplist converts between this module's shared Value tree and
// JSON, preserving Mapping key order by decoding through encoding/json's
// streaming Token API rather than its map[string]any convenience path.
package jsonplist

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/pbxfmt/pbx/pbxerr"
	"github.com/pbxfmt/pbx/pbxval"
)

// Parse decodes a JSON document into the shared Value tree. Data blobs
// are not representable in plain JSON; they round-trip through the same
// {"$data": "<hex>"} convention asciiplist's fast parser uses.
func Parse(data []byte) (pbxval.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec, data)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, pbxerr.New(pbxerr.JSONSyntax, data, int(dec.InputOffset()), "unexpected trailing data")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, src []byte) (pbxval.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, jsonErr(dec, src, err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := pbxval.NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, jsonErr(dec, src, err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, pbxerr.New(pbxerr.JSONSyntax, src, int(dec.InputOffset()), "object key must be a string")
				}
				v, err := decodeValue(dec, src)
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, jsonErr(dec, src, err)
			}
			if d, ok := asDataSentinel(m); ok {
				return d, nil
			}
			return m, nil
		case '[':
			var seq pbxval.Sequence
			for dec.More() {
				v, err := decodeValue(dec, src)
				if err != nil {
					return nil, err
				}
				seq = append(seq, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, jsonErr(dec, src, err)
			}
			if seq == nil {
				seq = pbxval.Sequence{}
			}
			return seq, nil
		}
	case json.Number:
		return pbxval.String(t.String()), nil
	case string:
		return pbxval.String(t), nil
	case bool:
		if t {
			return pbxval.String("1"), nil
		}
		return pbxval.String("0"), nil
	case nil:
		return pbxval.String(""), nil
	}
	return nil, pbxerr.New(pbxerr.JSONSyntax, src, int(dec.InputOffset()), "unexpected JSON token %v", tok)
}

func jsonErr(dec *json.Decoder, src []byte, err error) error {
	return pbxerr.New(pbxerr.JSONSyntax, src, int(dec.InputOffset()), "%s", err)
}

// asDataSentinel reports whether m is exactly the {"$data": "<hex>"}
// shape Unparse emits for a Data blob, decoding it back if so.
func asDataSentinel(m *pbxval.Mapping) (pbxval.Data, bool) {
	keys := m.Keys()
	if len(keys) != 1 || keys[0] != "$data" {
		return nil, false
	}
	v, _ := m.Get("$data")
	s, ok := v.(pbxval.String)
	if !ok {
		return nil, false
	}
	raw, err := hex.DecodeString(string(s))
	if err != nil {
		return nil, false
	}
	return pbxval.Data(raw), true
}

// Unparse renders v as JSON. Mapping key order is preserved by encoding
// the tree manually rather than through json.Marshal's (order-losing)
// map handling.
func Unparse(v pbxval.Value, indent bool) ([]byte, error) {
	var b bytes.Buffer
	if err := encodeValue(&b, v, 0, indent); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func encodeValue(b *bytes.Buffer, v pbxval.Value, depth int, indent bool) error {
	switch v := v.(type) {
	case pbxval.String:
		enc, _ := json.Marshal(string(v))
		b.Write(enc)
	case pbxval.Data:
		enc, _ := json.Marshal(map[string]string{"$data": fmt.Sprintf("%X", []byte(v))})
		b.Write(enc)
	case pbxval.Sequence:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			writeIndent(b, depth+1, indent)
			if err := encodeValue(b, item, depth+1, indent); err != nil {
				return err
			}
		}
		if len(v) > 0 {
			writeIndent(b, depth, indent)
		}
		b.WriteByte(']')
	case *pbxval.Mapping:
		b.WriteByte('{')
		keys := v.Keys()
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeIndent(b, depth+1, indent)
			enc, _ := json.Marshal(k)
			b.Write(enc)
			b.WriteByte(':')
			if indent {
				b.WriteByte(' ')
			}
			val, _ := v.Get(k)
			if err := encodeValue(b, val, depth+1, indent); err != nil {
				return err
			}
		}
		if len(keys) > 0 {
			writeIndent(b, depth, indent)
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("JSON plist: unsupported value type %T", v)
	}
	return nil
}

func writeIndent(b *bytes.Buffer, depth int, indent bool) {
	if !indent {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteByte('\t')
	}
}
