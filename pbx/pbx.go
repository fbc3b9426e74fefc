// Package pbx ties together the format parsers, the comment synthesizer,
// and the gid package behind the surface described in this module's
// SPEC_FULL.md §6: format autodetection, parse/unparse orchestration, and
// the small filesystem helpers the CLI builds on.
package pbx

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pbxfmt/pbx/asciiplist"
	"github.com/pbxfmt/pbx/comments"
	"github.com/pbxfmt/pbx/jsonplist"
	"github.com/pbxfmt/pbx/pbxerr"
	"github.com/pbxfmt/pbx/pbxval"
	"github.com/pbxfmt/pbx/xmlplist"
	"golang.org/x/text/unicode/norm"
)

// Value, Mapping, Sequence, and Data are re-exported as aliases of the
// pbxval tree types, so callers of this package never need to import
// pbxval directly. pbxval exists as a separate leaf package purely to
// avoid an import cycle (pbx -> asciiplist -> pbx).
type (
	Value    = pbxval.Value
	String   = pbxval.String
	Data     = pbxval.Data
	Sequence = pbxval.Sequence
	Mapping  = pbxval.Mapping
)

// NewMapping constructs an empty, insertion-ordered Mapping.
func NewMapping() *Mapping {
	return pbxval.NewMapping()
}

// Format names one of the three file formats this module understands.
type Format int

const (
	// Auto selects format autodetection (§4.5).
	Auto Format = iota
	// Xcode is the ASCII "old-style" property list dialect.
	Xcode
	// XML is Apple's XML property-list dialect.
	XML
	// JSON is plain JSON, used only for conversion, never for comments.
	JSON
)

func (f Format) String() string {
	switch f {
	case Xcode:
		return "xcode"
	case XML:
		return "xml"
	case JSON:
		return "json"
	default:
		return "auto"
	}
}

// ParseFormat maps a CLI-facing format name to a Format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "xcode":
		return Xcode, nil
	case "xml":
		return XML, nil
	case "json":
		return JSON, nil
	default:
		return Auto, fmt.Errorf("unknown format %q", s)
	}
}

// ParserKind selects which ASCII plist parser implementation to use.
// It has no effect unless the resolved Format is Xcode.
type ParserKind int

const (
	// Classic is the recursive-descent parser with precise positions.
	Classic ParserKind = iota
	// Fast rewrites the input to JSON and delegates to encoding/json.
	Fast
)

// ParseOptions configures Parse.
type ParseOptions struct {
	Format Format
	Parser ParserKind
}

// ParseInfo describes how an input was parsed, for ReportParseStatus and
// for the CLI's --lint diagnostics.
type ParseInfo struct {
	Detected Format
	Parser   ParserKind
	Err      error
}

// Parse decodes data into a Value tree, autodetecting the format unless
// opts.Format pins one (§4.5).
func Parse(data []byte, opts ParseOptions) (Value, ParseInfo, error) {
	format := opts.Format
	if format == Auto {
		format = detectFormat(data)
	}
	info := ParseInfo{Detected: format, Parser: opts.Parser}

	var (
		v   Value
		err error
	)
	switch format {
	case Xcode:
		if opts.Parser == Fast {
			v, err = asciiplist.ParseFast(data)
		} else {
			v, err = asciiplist.ParseClassic(data)
		}
	case XML:
		v, err = xmlplist.Parse(data)
	case JSON:
		v, err = jsonplist.Parse(data)
	default:
		err = pbxerr.New(pbxerr.UnknownFormat, data, 0, "cannot determine file format")
	}
	info.Err = err
	if err != nil {
		return nil, info, err
	}
	return v, info, nil
}

// detectFormat implements §4.5's autodetection rule: the first
// non-whitespace byte decides between XML, JSON, and the ASCII plist
// dialect, with the "// !$*UTF8*$!" header as a strong ASCII-plist hint.
func detectFormat(data []byte) Format {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "// !$*UTF8*$!") {
		return Xcode
	}
	if len(trimmed) == 0 {
		return Xcode
	}
	switch trimmed[0] {
	case '<':
		return XML
	case '{':
		if looksLikeJSON(trimmed) {
			return JSON
		}
		return Xcode
	default:
		return Xcode
	}
}

// looksLikeJSON distinguishes strict JSON ({"key": ...}) from the ASCII
// plist dialect's { key = value; } form by checking whether the first
// key after '{' is quoted and followed by ':' rather than '='.
func looksLikeJSON(s string) bool {
	i := 1
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) || s[i] != '"' {
		return false
	}
	i++
	for i < len(s) && s[i] != '"' {
		if s[i] == '\\' {
			i++
		}
		i++
	}
	i++
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i < len(s) && s[i] == ':'
}

// UnparseOptions configures Unparse.
type UnparseOptions struct {
	// Format selects the output dialect. Auto means Xcode.
	Format Format
	// ProjectName names the owning .xcodeproj, used by the comment
	// synthesizer's PBXProject rule. Ignored for XML/JSON output.
	ProjectName string
	// NoComments disables comment synthesis even when Format is Xcode.
	NoComments bool
}

// Unparse renders v back to bytes in the requested format. For Xcode
// output it runs the comment synthesizer first (§4.6) unless disabled.
func Unparse(v Value, opts UnparseOptions) ([]byte, error) {
	format := opts.Format
	if format == Auto {
		format = Xcode
	}
	switch format {
	case Xcode:
		root, ok := v.(*Mapping)
		if !ok {
			return nil, fmt.Errorf("cannot unparse top-level value of type %T as xcode", v)
		}
		var commentFn asciiplist.CommentFunc
		if !opts.NoComments {
			table := comments.Synthesize(root, opts.ProjectName)
			commentFn = table.Lookup
		}
		return asciiplist.Unparse(v, asciiplist.UnparseOptions{Comment: commentFn})
	case XML:
		return xmlplist.Unparse(v)
	case JSON:
		return jsonplist.Unparse(v, true)
	default:
		return nil, fmt.Errorf("unsupported output format %v", format)
	}
}

// ReportParseStatus writes a human-readable parse summary to w: the
// detected format and parser on success, or the position-carrying error
// report on failure (§7).
func ReportParseStatus(w io.Writer, info ParseInfo, filename string) {
	if info.Err == nil {
		fmt.Fprintf(w, "%s: parsed as %s\n", filename, info.Detected)
		return
	}
	fmt.Fprintf(w, "%s: failed to parse\n", filename)
	if pe, ok := info.Err.(*pbxerr.Error); ok {
		io.WriteString(w, pe.Report())
		return
	}
	fmt.Fprintf(w, "%s\n", info.Err)
}

// ProjectNameForPath derives the project name from a path ending in
// "X.xcodeproj" or ".../X.xcodeproj/project.pbxproj", NFC-normalized so
// international project names compare consistently (§4.1, §8).
func ProjectNameForPath(path string) string {
	dir := path
	if filepath.Base(dir) == "project.pbxproj" {
		dir = filepath.Dir(dir)
	}
	base := filepath.Base(dir)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if !norm.NFC.IsNormalString(name) {
		name = norm.NFC.String(name)
	}
	return name
}

// FindProjectFiles walks root collecting every project.pbxproj path
// below it, mirroring what a directory-wide batch relint/convert driver
// needs (§4.10).
func FindProjectFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Base(path) == "project.pbxproj" {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
