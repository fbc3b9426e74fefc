// Package xmlplist reads and writes Apple's XML property-list dialect,
// converting to and from this module's shared Value tree.
package xmlplist

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/pbxfmt/pbx/pbxerr"
	"github.com/pbxfmt/pbx/pbxval"
)

const docType = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
`

// decoder wraps an *xml.Decoder together with the original bytes, so a
// token failure can be reported with the same line/column/snippet shape
// every other format reader in this module uses (xml.Decoder's own
// SyntaxError carries only a line number).
type decoder struct {
	xd   *xml.Decoder
	data []byte
}

func (d *decoder) token() (xml.Token, error) {
	tok, err := d.xd.Token()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, pbxerr.New(pbxerr.XMLSyntax, d.data, int(d.xd.InputOffset()), "%s", err)
	}
	return tok, nil
}

// Parse decodes an XML plist document into the shared Value tree.
// Mapping key order is preserved; integers and reals are kept as their
// literal source text, since the ASCII plist dialect this module centers
// on has no numeric type of its own.
func Parse(data []byte) (pbxval.Value, error) {
	d := &decoder{xd: xml.NewDecoder(bytes.NewReader(data)), data: data}
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "plist" {
			break
		}
	}
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return d.decodeElement(se)
		}
		if _, ok := tok.(xml.EndElement); ok {
			return pbxval.NewMapping(), nil
		}
	}
}

func (d *decoder) decodeElement(start xml.StartElement) (pbxval.Value, error) {
	switch start.Name.Local {
	case "dict":
		return d.decodeDict()
	case "array":
		return d.decodeArray()
	case "string", "integer", "real", "date":
		s, err := d.decodeCharData(start)
		if err != nil {
			return nil, err
		}
		return pbxval.String(s), nil
	case "true":
		if err := d.skipToEnd(); err != nil {
			return nil, err
		}
		return pbxval.String("1"), nil
	case "false":
		if err := d.skipToEnd(); err != nil {
			return nil, err
		}
		return pbxval.String("0"), nil
	case "data":
		s, err := d.decodeCharData(start)
		if err != nil {
			return nil, err
		}
		raw, err := base64.StdEncoding.DecodeString(collapseWhitespace(s))
		if err != nil {
			return nil, pbxerr.New(pbxerr.XMLSyntax, d.data, int(d.xd.InputOffset()), "invalid <data>: %s", err)
		}
		return pbxval.Data(raw), nil
	default:
		return nil, pbxerr.New(pbxerr.XMLSyntax, d.data, int(d.xd.InputOffset()), "unexpected element <%s>", start.Name.Local)
	}
}

func (d *decoder) decodeCharData(start xml.StartElement) (string, error) {
	var b bytes.Buffer
	for {
		tok, err := d.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return b.String(), nil
			}
		}
	}
}

func (d *decoder) skipToEnd() error {
	depth := 1
	for depth > 0 {
		tok, err := d.token()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func (d *decoder) decodeDict() (pbxval.Value, error) {
	m := pbxval.NewMapping()
	var pendingKey *string
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "key" {
				k, err := d.decodeCharData(t)
				if err != nil {
					return nil, err
				}
				pendingKey = &k
				continue
			}
			if pendingKey == nil {
				return nil, pbxerr.New(pbxerr.XMLSyntax, d.data, int(d.xd.InputOffset()), "dict value without preceding <key>")
			}
			v, err := d.decodeElement(t)
			if err != nil {
				return nil, err
			}
			m.Set(*pendingKey, v)
			pendingKey = nil
		case xml.EndElement:
			if t.Name.Local == "dict" {
				return m, nil
			}
		}
	}
}

func (d *decoder) decodeArray() (pbxval.Value, error) {
	var seq pbxval.Sequence
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			v, err := d.decodeElement(t)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		case xml.EndElement:
			if t.Name.Local == "array" {
				if seq == nil {
					seq = pbxval.Sequence{}
				}
				return seq, nil
			}
		}
	}
}

func collapseWhitespace(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Unparse renders v as an XML plist document.
func Unparse(v pbxval.Value) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(docType)
	b.WriteString(`<plist version="1.0">` + "\n")
	if err := encodeValue(&b, v, 0); err != nil {
		return nil, err
	}
	b.WriteString("\n</plist>\n")
	return b.Bytes(), nil
}

func encodeValue(w io.Writer, v pbxval.Value, depth int) error {
	ind := indentStr(depth)
	switch v := v.(type) {
	case pbxval.String:
		fmt.Fprintf(w, "%s<string>%s</string>", ind, xmlEscape(string(v)))
	case pbxval.Data:
		fmt.Fprintf(w, "%s<data>%s</data>", ind, base64.StdEncoding.EncodeToString(v))
	case pbxval.Sequence:
		if len(v) == 0 {
			fmt.Fprintf(w, "%s<array/>", ind)
			return nil
		}
		fmt.Fprintf(w, "%s<array>\n", ind)
		for _, item := range v {
			if err := encodeValue(w, item, depth+1); err != nil {
				return err
			}
			fmt.Fprint(w, "\n")
		}
		fmt.Fprintf(w, "%s</array>", ind)
	case *pbxval.Mapping:
		if v.Len() == 0 {
			fmt.Fprintf(w, "%s<dict/>", ind)
			return nil
		}
		fmt.Fprintf(w, "%s<dict>\n", ind)
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			fmt.Fprintf(w, "%s<key>%s</key>\n", indentStr(depth+1), xmlEscape(k))
			if err := encodeValue(w, val, depth+1); err != nil {
				return err
			}
			fmt.Fprint(w, "\n")
		}
		fmt.Fprintf(w, "%s</dict>", ind)
	default:
		return fmt.Errorf("XML plist: unsupported value type %T", v)
	}
	return nil
}

func indentStr(depth int) string {
	b := make([]byte, depth)
	for i := range b {
		b[i] = '\t'
	}
	return string(b)
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
