package asciiplist

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/pbxfmt/pbx/pbxval"
)

// CommentFunc looks up the synthesized "/* ... */" comment for a gid, if
// any. Supplying nil disables comment emission entirely.
type CommentFunc func(gid string) (string, bool)

// inlineISA is the set of object classes Xcode always writes as a single
// line, per spec.md §4.7.
var inlineISA = map[string]bool{
	"PBXBuildFile":     true,
	"PBXFileReference": true,
}

// UnparseOptions configures canonical ASCII plist serialization.
type UnparseOptions struct {
	// Comment resolves the trailing comment for a gid string, wherever one
	// appears: as an "objects" key, an array element, or a scalar value.
	Comment CommentFunc
	// NoHeader, when true, omits the "// !$*UTF8*$!" marker line that is
	// otherwise written before the root dictionary (the zero value writes
	// it).
	NoHeader bool
}

// Unparse renders v in Xcode's canonical ASCII plist textual form.
func Unparse(v pbxval.Value, opts UnparseOptions) ([]byte, error) {
	root, ok := v.(*pbxval.Mapping)
	if !ok {
		return nil, fmt.Errorf("cannot unparse top-level value of type %T as an ASCII plist", v)
	}
	p := &printer{comment: opts.Comment}
	if !opts.NoHeader {
		p.out.WriteString(header + "\n")
	}
	if err := p.printRootDict(root); err != nil {
		return nil, err
	}
	p.out.WriteByte('\n')
	return p.out.Bytes(), nil
}

type printer struct {
	out     bytes.Buffer
	comment CommentFunc
}

func (p *printer) indent(n int) {
	for i := 0; i < n; i++ {
		p.out.WriteByte('\t')
	}
}

// sortedKeys returns m's keys with "isa" first (if present) and the rest
// in lexicographic order, matching the canonical field order Xcode
// itself writes.
func sortedKeys(m *pbxval.Mapping) []string {
	keys := m.Keys()
	rest := make([]string, 0, len(keys))
	hasISA := false
	for _, k := range keys {
		if k == "isa" {
			hasISA = true
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	if hasISA {
		return append([]string{"isa"}, rest...)
	}
	return rest
}

// printRootDict prints the top-level mapping, special-casing "objects"
// so that it is rendered with isa section banners rather than the
// generic multi-line mapping layout.
func (p *printer) printRootDict(m *pbxval.Mapping) error {
	p.out.WriteByte('{')
	p.out.WriteByte('\n')
	for _, k := range sortedKeys(m) {
		v, _ := m.Get(k)
		p.indent(1)
		p.writeKey(k)
		p.out.WriteString(" = ")
		if k == "objects" {
			objects, ok := v.(*pbxval.Mapping)
			if !ok {
				return fmt.Errorf(`"objects" must be a mapping, got %T`, v)
			}
			if err := p.printObjectsDict(objects, 1); err != nil {
				return err
			}
		} else {
			if err := p.printValue(v, 1, false); err != nil {
				return err
			}
		}
		p.out.WriteString(";\n")
	}
	p.out.WriteByte('}')
	return nil
}

func (p *printer) writeKey(k string) {
	if quoteNeeded(k) {
		p.out.WriteString(quoteString(k))
	} else {
		p.out.WriteString(k)
	}
}

// printObjectsDict renders the "objects" mapping grouped into isa
// sections with "Begin"/"End" banner comments, gid-ascending within each
// section.
func (p *printer) printObjectsDict(objects *pbxval.Mapping, depth int) error {
	groups := map[string][]string{}
	for _, gid := range objects.Keys() {
		obj, _ := objects.Get(gid)
		m, ok := obj.(*pbxval.Mapping)
		if !ok {
			return fmt.Errorf("objects[%q] must be a mapping, got %T", gid, obj)
		}
		isa, _ := m.ISA()
		groups[isa] = append(groups[isa], gid)
	}
	isas := make([]string, 0, len(groups))
	for isa := range groups {
		isas = append(isas, isa)
	}
	sort.Strings(isas)
	for _, gids := range groups {
		sort.Strings(gids)
	}

	p.out.WriteByte('{')
	p.out.WriteByte('\n')
	for gi, isa := range isas {
		if gi > 0 {
			p.out.WriteByte('\n')
		}
		p.indent(depth + 1)
		fmt.Fprintf(&p.out, "/* Begin %s section */\n", isa)
		for _, gid := range groups[isa] {
			obj, _ := objects.Get(gid)
			p.indent(depth + 1)
			p.writeKey(gid)
			p.writeComment(gid)
			p.out.WriteString(" = ")
			if err := p.printValue(obj, depth+1, inlineISA[isa]); err != nil {
				return err
			}
			p.out.WriteString(";\n")
		}
		p.indent(depth + 1)
		fmt.Fprintf(&p.out, "/* End %s section */\n", isa)
	}
	p.indent(depth)
	p.out.WriteByte('}')
	return nil
}

func (p *printer) writeComment(gid string) {
	if p.comment == nil {
		return
	}
	if c, ok := p.comment(gid); ok {
		fmt.Fprintf(&p.out, " /* %s */", c)
	}
}

// printValue renders v at the given indent depth. inline, once true,
// cascades to every value nested under it: an object whose isa is in
// inlineISA is written on a single line (spec.md §4.7), and that means
// everything the object contains — nested mappings and sequences alike —
// stays on that same line too.
func (p *printer) printValue(v pbxval.Value, depth int, inline bool) error {
	switch v := v.(type) {
	case pbxval.String:
		p.writeScalar(string(v))
		return nil
	case pbxval.Data:
		p.writeData(v)
		return nil
	case pbxval.Sequence:
		return p.printSequence(v, depth, inline)
	case *pbxval.Mapping:
		if inline || v.Len() == 0 {
			return p.printMappingInline(v)
		}
		return p.printMappingMultiline(v, depth)
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

func (p *printer) writeScalar(s string) {
	if quoteNeeded(s) {
		p.out.WriteString(quoteString(s))
	} else {
		p.out.WriteString(s)
	}
	p.writeComment(s)
}

func (p *printer) writeData(d pbxval.Data) {
	const hex = "0123456789ABCDEF"
	p.out.WriteByte('<')
	for i, b := range d {
		if i > 0 && i%4 == 0 {
			p.out.WriteByte(' ')
		}
		p.out.WriteByte(hex[b>>4])
		p.out.WriteByte(hex[b&0xf])
	}
	p.out.WriteByte('>')
}

func (p *printer) printMappingInline(m *pbxval.Mapping) error {
	p.out.WriteByte('{')
	for _, k := range sortedKeys(m) {
		v, _ := m.Get(k)
		p.writeKey(k)
		p.out.WriteString(" = ")
		if err := p.printValue(v, 0, true); err != nil {
			return err
		}
		p.out.WriteString("; ")
	}
	p.out.WriteByte('}')
	return nil
}

func (p *printer) printMappingMultiline(m *pbxval.Mapping, depth int) error {
	p.out.WriteByte('{')
	p.out.WriteByte('\n')
	for _, k := range sortedKeys(m) {
		v, _ := m.Get(k)
		p.indent(depth + 1)
		p.writeKey(k)
		p.out.WriteString(" = ")
		if err := p.printValue(v, depth+1, false); err != nil {
			return err
		}
		p.out.WriteString(";\n")
	}
	p.indent(depth)
	p.out.WriteByte('}')
	return nil
}

func (p *printer) printSequence(seq pbxval.Sequence, depth int, inline bool) error {
	if len(seq) == 0 {
		p.out.WriteString("()")
		return nil
	}
	if inline {
		p.out.WriteByte('(')
		for _, v := range seq {
			if err := p.printValue(v, 0, true); err != nil {
				return err
			}
			p.out.WriteString(", ")
		}
		p.out.WriteByte(')')
		return nil
	}
	p.out.WriteByte('(')
	p.out.WriteByte('\n')
	for _, v := range seq {
		p.indent(depth + 1)
		if err := p.printValue(v, depth+1, false); err != nil {
			return err
		}
		p.out.WriteString(",\n")
	}
	p.indent(depth)
	p.out.WriteByte(')')
	return nil
}
